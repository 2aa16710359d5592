package job

import (
	"Prism/internal/pkg/mongo"
	"context"
	log "log/slog"
	"time"
)

// saveAudit 把一次运行的计数落到 Mongo，失败只告警不影响任务结果
func saveAudit(ctx context.Context, auditRepo mongo.JobAuditRepo, jobName string, traceID string, startedAt time.Time, counters map[string]int64) {
	if auditRepo == nil {
		return
	}

	run := &mongo.JobRunAudit{
		Job:        jobName,
		TraceID:    traceID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Counters:   counters,
	}
	if err := auditRepo.SaveRun(ctx, run); err != nil {
		log.WarnContext(ctx, "save job run audit failed", "job", jobName, "err", err)
	}
}
