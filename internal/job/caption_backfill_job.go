package job

import (
	"Prism/internal/api/config"
	"Prism/internal/pkg/llm"
	"Prism/internal/pkg/logger"
	"Prism/internal/pkg/mongo"
	"Prism/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// Captioner 外部图片描述协作方
type Captioner interface {
	Caption(ctx context.Context, url string) (string, error)
}

type llmCaptioner struct{}

func (llmCaptioner) Caption(ctx context.Context, url string) (string, error) {
	return llm.Caption(ctx, url)
}

// CaptionBackfillJob 为缺少描述的图片补齐 AI 生成的一句话描述
type CaptionBackfillJob struct {
	mediaRepo    repository.MediaObjectRepo
	metadataRepo repository.MediaMetadataRepo
	captioner    Captioner
	auditRepo    mongo.JobAuditRepo
	batchSize    int
	enabled      bool
}

func NewCaptionBackfillJob(
	mediaRepo repository.MediaObjectRepo,
	metadataRepo repository.MediaMetadataRepo,
	auditRepo mongo.JobAuditRepo,
) *CaptionBackfillJob {
	return &CaptionBackfillJob{
		mediaRepo:    mediaRepo,
		metadataRepo: metadataRepo,
		captioner:    llmCaptioner{},
		auditRepo:    auditRepo,
		batchSize:    config.Cfg.Jobs.BatchSize,
		enabled:      config.Cfg.Jobs.CaptionEnabled,
	}
}

func (s *CaptionBackfillJob) Run() {
	if !s.enabled {
		return
	}

	traceID := "job-caption-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	startedAt := time.Now()

	log.InfoContext(ctx, "start caption backfill job")

	rows, err := s.mediaRepo.FindMissingCaption(ctx, s.batchSize)
	if err != nil {
		log.ErrorContext(ctx, "query missing caption rows failed", "err", err)
		return
	}
	log.InfoContext(ctx, "caption backfill batch loaded", "count", len(rows))

	var processed, failed int64
	for _, row := range rows {
		if row.PublicURL == nil || *row.PublicURL == "" {
			log.WarnContext(ctx, "media has no public url, skip caption", "media_id", row.ID)
			failed++
			continue
		}

		caption, err := s.captioner.Caption(ctx, *row.PublicURL)
		if err != nil {
			log.ErrorContext(ctx, "caption generation failed", "media_id", row.ID, "err", err)
			failed++
			continue
		}

		if err = s.metadataRepo.UpsertCaption(ctx, row.ID, caption); err != nil {
			log.ErrorContext(ctx, "caption metadata write failed", "media_id", row.ID, "err", err)
			failed++
			continue
		}
		processed++
	}

	log.InfoContext(ctx, "caption backfill job finished", "processed", processed, "failed", failed)
	saveAudit(ctx, s.auditRepo, "caption-backfill", traceID, startedAt, map[string]int64{
		"processed": processed,
		"failed":    failed,
	})
}
