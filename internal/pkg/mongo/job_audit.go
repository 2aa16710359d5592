package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobRunAudit 一次批处理运行的审计记录。
// 汇总计数本身只在内存中返回给调用方，这里仅为运维留痕。
type JobRunAudit struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Job        string             `bson:"job"`
	TraceID    string             `bson:"trace_id,omitempty"`
	StartedAt  time.Time          `bson:"started_at"`
	FinishedAt time.Time          `bson:"finished_at"`
	Counters   map[string]int64   `bson:"counters"`
	Errors     []string           `bson:"errors,omitempty"`
}
