package kafka

import (
	"Prism/internal/api/config"
	"Prism/internal/model"
	"context"
	log "log/slog"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// Producer 媒体创建事件生产端，实现 service.EventPublisher
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg *config.Config) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, newProducerConfig(cfg.Kafka))
	if err != nil {
		return nil, err
	}
	return &Producer{
		producer: producer,
		topic:    cfg.KafkaMediaConsumer.Topic,
	}, nil
}

// PublishMediaCreated 按媒体 ID 作为分区键发布创建事件
func (s *Producer) PublishMediaCreated(ctx context.Context, obj *model.MediaObject) error {
	event := MediaCreatedEvent{
		MediaID:     obj.ID,
		AppName:     obj.AppName,
		Destination: obj.Destination,
		FileKind:    obj.FileKind,
	}

	value, err := json.Marshal(&event)
	if err != nil {
		return err
	}

	partition, offset, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(obj.ID, 10)),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "media created event published", "media_id", obj.ID, "partition", partition, "offset", offset)
	return nil
}

func (s *Producer) Close() error {
	return s.producer.Close()
}
