package kafka

import (
	"Prism/internal/api/config"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	mediaConsumer sarama.ConsumerGroup
	mediaHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, mediaHandler *MediaHandler) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	mediaConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaMediaConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		mediaConsumer: mediaConsumer,
		mediaHandler:  mediaHandler,
	}, nil
}

// Start 启动所有消费者
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		topic := cfg.KafkaMediaConsumer.Topic
		log.Info("Media consumer started", "topic", topic)
		for {
			if err := m.mediaConsumer.Consume(ctx, []string{topic}, m.mediaHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.mediaConsumer.Close(); err != nil {
		log.Error("Failed to close media consumer", "err", err)
	}

	return nil
}
