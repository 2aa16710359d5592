package service

import (
	"Prism/internal/model"
	"Prism/internal/pkg/checksum"
	"Prism/internal/pkg/consts"
	"Prism/internal/pkg/minio"
	"Prism/internal/pkg/util"
	"Prism/internal/repository"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	log "log/slog"
	"path"
	"time"

	"github.com/google/uuid"
)

// ObjectGateway 对象存储抽象，由 minio.Gateway 实现
type ObjectGateway interface {
	List(ctx context.Context, bucket, prefix, continuationToken string, pageSize int) (*minio.ListPage, error)
	GetStream(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	PutStream(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) (*minio.PutResult, error)
	Delete(ctx context.Context, bucket, key string) error
	PublicURL(bucket, key string) string
	MainBucket() string
}

// EventPublisher 媒体创建事件发布端，由 kafka.Producer 实现
type EventPublisher interface {
	PublishMediaCreated(ctx context.Context, obj *model.MediaObject) error
}

// SearchIndex 检索索引维护端，由 es.MediaRepo 实现
type SearchIndex interface {
	DeleteMedia(ctx context.Context, id uint64) error
}

// UploadOptions 上传入口的可选项
type UploadOptions struct {
	Destination          string
	SuppressCreatedEvent bool
}

type MediaService interface {
	Upload(ctx context.Context, reader io.Reader, size int64, originalName string, contentType string, appName string, userID uint64, opts UploadOptions) (*model.MediaObject, error)
	UploadDerivative(ctx context.Context, data []byte, filename string, contentType string, appName string, userID uint64, destination string) (*model.MediaObject, error)
	Get(ctx context.Context, id uint64) (*model.MediaObject, error)
	Deactivate(ctx context.Context, id uint64) error
}

type MediaServiceImpl struct {
	mediaRepo    repository.MediaObjectRepo
	metadataRepo repository.MediaMetadataRepo
	gateway      ObjectGateway
	publisher    EventPublisher
	index        SearchIndex
}

func NewMediaService(
	mediaRepo repository.MediaObjectRepo,
	metadataRepo repository.MediaMetadataRepo,
	gateway ObjectGateway,
	publisher EventPublisher,
	index SearchIndex,
) MediaService {
	return &MediaServiceImpl{
		mediaRepo:    mediaRepo,
		metadataRepo: metadataRepo,
		gateway:      gateway,
		publisher:    publisher,
		index:        index,
	}
}

// Upload 上传入口：流式写入对象存储，边写边算校验和，落目录行后发布创建事件。
// 对象存储写入与目录写入之间接受最终一致，失败由对账任务兜底。
func (s *MediaServiceImpl) Upload(ctx context.Context, reader io.Reader, size int64, originalName string, contentType string, appName string, userID uint64, opts UploadOptions) (*model.MediaObject, error) {
	destination := opts.Destination
	if destination == "" {
		destination = consts.DestinationUpload
	}

	if contentType == "" {
		contentType = util.MimeFromFilename(originalName)
	}

	ext := path.Ext(originalName)
	objectKey := time.Now().Format("2006/01/02/") + uuid.NewString() + ext

	hasher, err := checksum.NewHasher(checksum.SHA256)
	if err != nil {
		return nil, err
	}
	tee := io.TeeReader(reader, hasher)

	bucket := s.gateway.MainBucket()
	putResult, err := s.gateway.PutStream(ctx, bucket, objectKey, tee, size, contentType)
	if err != nil {
		log.ErrorContext(ctx, "object store upload failed", "key", objectKey, "err", err)
		return nil, errors.Join(ErrStream, err)
	}

	fileKind := util.KindFromMime(contentType)
	if fileKind == consts.FileKindOther {
		fileKind = util.KindFromFilename(originalName)
	}

	obj := &model.MediaObject{
		AppName:      appName,
		StorageKey:   objectKey,
		PublicURL:    &putResult.URL,
		OriginalName: path.Base(originalName),
		Size:         putResult.Size,
		MimeType:     contentType,
		FileKind:     fileKind,
		Destination:  destination,
		Status:       consts.StatusActive,
		UserID:       userID,
	}

	if err = s.mediaRepo.Save(ctx, obj); err != nil {
		log.ErrorContext(ctx, "catalog write failed after upload", "key", objectKey, "err", err)
		if isDuplicateError(err) {
			return nil, errors.Join(ErrAlreadyExists, err)
		}
		return nil, errors.Join(ErrPersistence, err)
	}

	digest := hex.EncodeToString(hasher.Sum(nil))
	if err = s.metadataRepo.UpsertChecksum(ctx, obj.ID, digest); err != nil {
		// 校验和缺失由回填任务补齐，不阻塞上传
		log.WarnContext(ctx, "checksum metadata write failed", "media_id", obj.ID, "err", err)
	}

	if !opts.SuppressCreatedEvent && s.publisher != nil {
		if err = s.publisher.PublishMediaCreated(ctx, obj); err != nil {
			log.ErrorContext(ctx, "publish media created event failed", "media_id", obj.ID, "err", err)
		}
	}

	log.InfoContext(ctx, "media uploaded", "media_id", obj.ID, "key", objectKey, "kind", fileKind, "destination", destination)
	return obj, nil
}

// UploadDerivative 衍生物上传：固定角色、不再发布创建事件，避免管道自触发
func (s *MediaServiceImpl) UploadDerivative(ctx context.Context, data []byte, filename string, contentType string, appName string, userID uint64, destination string) (*model.MediaObject, error) {
	return s.Upload(ctx, bytes.NewReader(data), int64(len(data)), filename, contentType, appName, userID, UploadOptions{
		Destination:          destination,
		SuppressCreatedEvent: true,
	})
}

func (s *MediaServiceImpl) Get(ctx context.Context, id uint64) (*model.MediaObject, error) {
	obj, err := s.mediaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrMediaNotFound
	}
	return obj, nil
}

// Deactivate 软下线：翻转目录状态并移除检索文档，不删除对象存储中的字节
func (s *MediaServiceImpl) Deactivate(ctx context.Context, id uint64) error {
	obj, err := s.mediaRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if obj == nil {
		return ErrMediaNotFound
	}
	if err = s.mediaRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	// 索引删除尽力而为，失败不回滚目录状态
	if s.index != nil {
		if err = s.index.DeleteMedia(ctx, id); err != nil {
			log.WarnContext(ctx, "search index delete failed", "media_id", id, "err", err)
		}
	}
	return nil
}
