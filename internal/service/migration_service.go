package service

import (
	"Prism/internal/api/dto"
	"Prism/internal/model"
	"Prism/internal/pkg/consts"
	"Prism/internal/pkg/minio"
	"Prism/internal/pkg/mongo"
	"Prism/internal/pkg/util"
	"context"
	log "log/slog"
	"path"
	"time"
)

// migrationPageSize 对账按对象存储允许的最大页拉取
const migrationPageSize = minio.MaxPageSize

type MigrationService interface {
	Migrate(ctx context.Context, bucket string, prefix string, appName string, userID uint64) (*dto.MigrationResult, error)
}

type MigrationServiceImpl struct {
	mediaRepo mediaCatalog
	gateway   ObjectGateway
	auditRepo mongo.JobAuditRepo
}

// mediaCatalog 对账需要的最小目录能力
type mediaCatalog interface {
	FindByKey(ctx context.Context, key string, appName string, destination string) (*model.MediaObject, error)
	Save(ctx context.Context, obj *model.MediaObject) error
}

func NewMigrationService(mediaRepo mediaCatalog, gateway ObjectGateway, auditRepo mongo.JobAuditRepo) MigrationService {
	return &MigrationServiceImpl{
		mediaRepo: mediaRepo,
		gateway:   gateway,
		auditRepo: auditRepo,
	}
}

// Migrate 分页遍历桶并与目录对账，缺失的记录幂等补录。
// 单条持久化失败只计数不中断，重复执行时第二遍 migrated 恒为 0。
// 目录行不记录桶名，回填与转码一律从主桶读流，对账非主桶只应在桶内容
// 已并入主桶之后执行。
func (s *MigrationServiceImpl) Migrate(ctx context.Context, bucket string, prefix string, appName string, userID uint64) (*dto.MigrationResult, error) {
	startedAt := time.Now()
	result := &dto.MigrationResult{}

	log.InfoContext(ctx, "bucket migration started", "bucket", bucket, "prefix", prefix, "app", appName)

	continuationToken := ""
	for {
		page, err := s.gateway.List(ctx, bucket, prefix, continuationToken, migrationPageSize)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Key == "" {
				continue
			}
			result.TotalObjects++

			existing, err := s.mediaRepo.FindByKey(ctx, item.Key, appName, consts.DestinationUpload)
			if err != nil {
				log.ErrorContext(ctx, "catalog lookup failed, object skipped", "key", item.Key, "err", err)
				result.FailedObjects++
				continue
			}
			if existing != nil {
				result.ExistingObjects++
				continue
			}

			// 零字节对象视为目录占位符
			if item.Size == 0 {
				result.ExistingObjects++
				continue
			}

			url := s.gateway.PublicURL(bucket, item.Key)
			obj := &model.MediaObject{
				AppName:      appName,
				StorageKey:   item.Key,
				PublicURL:    &url,
				OriginalName: path.Base(item.Key),
				Size:         item.Size,
				MimeType:     util.MimeFromFilename(item.Key),
				FileKind:     util.KindFromFilename(item.Key),
				Destination:  consts.DestinationUpload,
				Status:       consts.StatusActive,
				UserID:       userID,
			}

			if err = s.mediaRepo.Save(ctx, obj); err != nil {
				log.ErrorContext(ctx, "migration persist failed, object skipped", "key", item.Key, "err", err)
				result.FailedObjects++
				continue
			}
			result.MigratedObjects++
		}

		if page.NextContinuationToken == "" {
			break
		}
		continuationToken = page.NextContinuationToken
	}

	log.InfoContext(ctx, "bucket migration finished",
		"bucket", bucket,
		"total", result.TotalObjects,
		"existing", result.ExistingObjects,
		"migrated", result.MigratedObjects,
		"failed", result.FailedObjects,
	)

	if s.auditRepo != nil {
		audit := &mongo.JobRunAudit{
			Job:        "bucket-migration",
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
			Counters: map[string]int64{
				"total":    int64(result.TotalObjects),
				"existing": int64(result.ExistingObjects),
				"migrated": int64(result.MigratedObjects),
				"failed":   int64(result.FailedObjects),
			},
		}
		if err := s.auditRepo.SaveRun(ctx, audit); err != nil {
			log.WarnContext(ctx, "migration audit write failed", "err", err)
		}
	}

	return result, nil
}
