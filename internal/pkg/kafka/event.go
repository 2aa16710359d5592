package kafka

import (
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// MediaCreatedEvent 媒体创建事件的线缆格式
type MediaCreatedEvent struct {
	MediaID     uint64 `json:"media_id"`
	AppName     string `json:"app_name"`
	Destination string `json:"destination"`
	FileKind    string `json:"file_kind"`
}

// ToMediaCreatedEvent 将 kafka 消息解析为媒体创建事件
func ToMediaCreatedEvent(msg *sarama.ConsumerMessage) (*MediaCreatedEvent, error) {
	var event MediaCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("unmarshal media created event error", "err", err)
		return nil, err
	}
	return &event, nil
}
