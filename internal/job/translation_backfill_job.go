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

// Translator 外部翻译协作方
type Translator interface {
	Translate(ctx context.Context, text string, source string, target string) (string, error)
}

type llmTranslator struct{}

func (llmTranslator) Translate(ctx context.Context, text string, source string, target string) (string, error) {
	return llm.Translate(ctx, text, source, target)
}

// TranslationBackfillJob 为已有描述但缺少译文的对象补齐翻译，
// 配置关闭时整个任务直接短路退出
type TranslationBackfillJob struct {
	mediaRepo    repository.MediaObjectRepo
	metadataRepo repository.MediaMetadataRepo
	translator   Translator
	auditRepo    mongo.JobAuditRepo
	batchSize    int
	enabled      bool
	source       string
	target       string
}

func NewTranslationBackfillJob(
	mediaRepo repository.MediaObjectRepo,
	metadataRepo repository.MediaMetadataRepo,
	auditRepo mongo.JobAuditRepo,
) *TranslationBackfillJob {
	return &TranslationBackfillJob{
		mediaRepo:    mediaRepo,
		metadataRepo: metadataRepo,
		translator:   llmTranslator{},
		auditRepo:    auditRepo,
		batchSize:    config.Cfg.Jobs.BatchSize,
		enabled:      config.Cfg.Jobs.TranslationEnabled,
		source:       config.Cfg.Jobs.TranslationSource,
		target:       config.Cfg.Jobs.TranslationTarget,
	}
}

func (s *TranslationBackfillJob) Run() {
	if !s.enabled {
		return
	}

	traceID := "job-translation-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	startedAt := time.Now()

	log.InfoContext(ctx, "start translation backfill job")

	rows, err := s.mediaRepo.FindMissingTranslation(ctx, s.batchSize)
	if err != nil {
		log.ErrorContext(ctx, "query missing translation rows failed", "err", err)
		return
	}
	log.InfoContext(ctx, "translation backfill batch loaded", "count", len(rows))

	var processed, failed int64
	for _, row := range rows {
		if row.Metadata == nil || row.Metadata.Caption == nil || *row.Metadata.Caption == "" {
			log.WarnContext(ctx, "media has no caption, skip translation", "media_id", row.ID)
			failed++
			continue
		}

		translated, err := s.translator.Translate(ctx, *row.Metadata.Caption, s.source, s.target)
		if err != nil {
			log.ErrorContext(ctx, "caption translation failed", "media_id", row.ID, "err", err)
			failed++
			continue
		}

		if err = s.metadataRepo.UpsertTranslatedCaption(ctx, row.ID, translated); err != nil {
			log.ErrorContext(ctx, "translation metadata write failed", "media_id", row.ID, "err", err)
			failed++
			continue
		}
		processed++
	}

	log.InfoContext(ctx, "translation backfill job finished", "processed", processed, "failed", failed)
	saveAudit(ctx, s.auditRepo, "translation-backfill", traceID, startedAt, map[string]int64{
		"processed": processed,
		"failed":    failed,
	})
}
