package job

import (
	"Prism/internal/api/config"
	"Prism/internal/pkg/checksum"
	"Prism/internal/pkg/logger"
	"Prism/internal/pkg/mongo"
	"Prism/internal/repository"
	"context"
	"io"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// ObjectStreamer 回填任务只需要对象存储的读能力
type ObjectStreamer interface {
	GetStream(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	MainBucket() string
}

// ChecksumBackfillJob 扫描缺少校验和的上传对象，流式计算后补齐元数据。
// 单条失败只记录日志，任务本身不会中断。
type ChecksumBackfillJob struct {
	mediaRepo    repository.MediaObjectRepo
	metadataRepo repository.MediaMetadataRepo
	gateway      ObjectStreamer
	auditRepo    mongo.JobAuditRepo
	batchSize    int
}

func NewChecksumBackfillJob(
	mediaRepo repository.MediaObjectRepo,
	metadataRepo repository.MediaMetadataRepo,
	gateway ObjectStreamer,
	auditRepo mongo.JobAuditRepo,
) *ChecksumBackfillJob {
	return &ChecksumBackfillJob{
		mediaRepo:    mediaRepo,
		metadataRepo: metadataRepo,
		gateway:      gateway,
		auditRepo:    auditRepo,
		batchSize:    config.Cfg.Jobs.BatchSize,
	}
}

func (s *ChecksumBackfillJob) Run() {
	traceID := "job-checksum-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	startedAt := time.Now()

	log.InfoContext(ctx, "start checksum backfill job")

	rows, err := s.mediaRepo.FindMissingChecksum(ctx, s.batchSize)
	if err != nil {
		log.ErrorContext(ctx, "query missing checksum rows failed", "err", err)
		return
	}
	log.InfoContext(ctx, "checksum backfill batch loaded", "count", len(rows))

	var processed, failed int64
	for _, row := range rows {
		if err = s.backfillOne(ctx, row.ID, row.StorageKey); err != nil {
			log.ErrorContext(ctx, "checksum backfill item failed", "media_id", row.ID, "key", row.StorageKey, "err", err)
			failed++
			continue
		}
		processed++
	}

	log.InfoContext(ctx, "checksum backfill job finished", "processed", processed, "failed", failed)
	saveAudit(ctx, s.auditRepo, "checksum-backfill", traceID, startedAt, map[string]int64{
		"processed": processed,
		"failed":    failed,
	})
}

func (s *ChecksumBackfillJob) backfillOne(ctx context.Context, id uint64, key string) error {
	stream, err := s.gateway.GetStream(ctx, s.gateway.MainBucket(), key)
	if err != nil {
		return err
	}
	defer func() {
		_ = stream.Close()
	}()

	digest, err := checksum.Digest(stream, checksum.SHA256)
	if err != nil {
		return err
	}

	return s.metadataRepo.UpsertChecksum(ctx, id, digest)
}
