package kafka

import (
	"Prism/internal/model"
	"Prism/internal/pkg/analysis"
	"Prism/internal/pkg/consts"
	"Prism/internal/pkg/es"
	"Prism/internal/pkg/redis"
	"Prism/internal/repository"
	"bytes"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/disintegration/imaging"
)

// thumbnailInflightTTL 幂等键的保底过期时间，防止消费者崩溃后永久锁死
const thumbnailInflightTTL = 10 * time.Minute

// thumbnailMaxWidth 缩略图归一化后的最大宽度
const thumbnailMaxWidth = 640

// Analyzer 外部媒体分析协作方，由 analysis.Client 实现
type Analyzer interface {
	AnalyzeImage(ctx context.Context, url string) ([]analysis.Label, error)
	AnalyzeVideoAndThumbnail(ctx context.Context, url string) (*analysis.VideoAnalysis, error)
}

// Uploader 衍生物回传入口，由 service.MediaService 实现
type Uploader interface {
	UploadDerivative(ctx context.Context, data []byte, filename string, contentType string, appName string, userID uint64, destination string) (*model.MediaObject, error)
}

// MediaHandler 消费媒体创建事件，派生情感标签与视频缩略图。
// 事件总线没有可回报的调用方，所有失败只记录日志，不向上抛出。
type MediaHandler struct {
	mediaRepo   repository.MediaObjectRepo
	tagRepo     repository.MediaTagRepo
	uploader    Uploader
	analyzer    Analyzer
	mediaESRepo es.MediaRepo
}

func NewMediaHandler(
	mediaRepo repository.MediaObjectRepo,
	tagRepo repository.MediaTagRepo,
	uploader Uploader,
	analyzer Analyzer,
	mediaESRepo es.MediaRepo,
) *MediaHandler {
	return &MediaHandler{
		mediaRepo:   mediaRepo,
		tagRepo:     tagRepo,
		uploader:    uploader,
		analyzer:    analyzer,
		mediaESRepo: mediaESRepo,
	}
}

func (s *MediaHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("media consumer setup")
	return nil
}

func (s *MediaHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("media consumer cleanup")
	return nil
}

func (s *MediaHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-media consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-media process batch error", "err", err)
		return err
	}
	log.Info("topic-media consume claim end")
	return nil
}

func (s *MediaHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	event, err := ToMediaCreatedEvent(msg)
	if err != nil {
		// 坏消息直接丢弃，重试不会让它变好
		return nil
	}

	// 衍生物自身不再触发管道，避免自激
	if event.Destination != consts.DestinationUpload {
		return nil
	}

	obj, err := s.mediaRepo.FindByID(ctx, event.MediaID)
	if err != nil {
		log.ErrorContext(ctx, "load media for pipeline failed", "media_id", event.MediaID, "err", err)
		return nil
	}
	if obj == nil {
		log.WarnContext(ctx, "media not found for pipeline", "media_id", event.MediaID)
		return nil
	}

	switch {
	case obj.IsImage():
		s.enrichImage(ctx, obj)
	case obj.IsVideo():
		s.enrichVideo(ctx, obj)
	}

	s.indexMedia(ctx, obj.ID)
	return nil
}

// enrichImage 图片打标：分析结果按置信度过滤后挂到对象上
func (s *MediaHandler) enrichImage(ctx context.Context, obj *model.MediaObject) {
	if obj.PublicURL == nil || *obj.PublicURL == "" {
		log.WarnContext(ctx, "image has no public url, skip analysis", "media_id", obj.ID)
		return
	}

	labels, err := s.analyzer.AnalyzeImage(ctx, *obj.PublicURL)
	if err != nil {
		log.ErrorContext(ctx, "image analysis failed", "media_id", obj.ID, "err", err)
		return
	}

	names := make([]string, 0, len(labels))
	for _, label := range labels {
		if label.Score >= consts.EmotionScoreThreshold {
			names = append(names, label.Name)
		}
	}
	if len(names) == 0 {
		return
	}

	tags, err := s.tagRepo.GetOrCreateTags(ctx, names, consts.TagTypeEmotion, consts.TagDefaultColor)
	if err != nil {
		log.ErrorContext(ctx, "get or create tags failed", "media_id", obj.ID, "err", err)
		return
	}

	if err = s.mediaRepo.AttachTags(ctx, obj, tags); err != nil {
		log.ErrorContext(ctx, "attach tags failed", "media_id", obj.ID, "err", err)
		return
	}

	log.InfoContext(ctx, "image tagged", "media_id", obj.ID, "tags", len(tags))
}

// enrichVideo 视频管道：抽帧生成缩略图并建立双向关联，附带情感标签
func (s *MediaHandler) enrichVideo(ctx context.Context, obj *model.MediaObject) {
	// 已有缩略图的视频不重复生成，重复投递在这里被吸收
	if obj.ThumbnailID != nil {
		log.DebugContext(ctx, "video already has thumbnail, skip", "media_id", obj.ID)
		return
	}

	inflightKey := consts.ThumbnailInflightKey + strconv.FormatUint(obj.ID, 10)
	acquired, err := redis.SetNX(ctx, inflightKey, 1, thumbnailInflightTTL)
	if err != nil {
		log.ErrorContext(ctx, "acquire thumbnail inflight key failed", "media_id", obj.ID, "err", err)
		return
	}
	if !acquired {
		log.DebugContext(ctx, "thumbnail generation already in flight, skip", "media_id", obj.ID)
		return
	}
	defer func() {
		if err := redis.DeleteKey(ctx, inflightKey); err != nil {
			log.WarnContext(ctx, "release thumbnail inflight key failed", "media_id", obj.ID, "err", err)
		}
	}()

	if obj.PublicURL == nil || *obj.PublicURL == "" {
		log.WarnContext(ctx, "video has no public url, skip analysis", "media_id", obj.ID)
		return
	}

	result, err := s.analyzer.AnalyzeVideoAndThumbnail(ctx, *obj.PublicURL)
	if err != nil {
		log.ErrorContext(ctx, "video analysis failed", "media_id", obj.ID, "err", err)
		return
	}

	data, contentType := normalizeThumbnail(result.Thumbnail, result.MimeType)

	thumb, err := s.uploader.UploadDerivative(ctx, data, result.Filename, contentType,
		obj.AppName, obj.UserID, consts.DestinationThumbnail)
	if err != nil {
		log.ErrorContext(ctx, "thumbnail upload failed", "media_id", obj.ID, "err", err)
		return
	}

	if err = s.mediaRepo.LinkThumbnail(ctx, obj.ID, thumb.ID); err != nil {
		log.ErrorContext(ctx, "link thumbnail failed", "media_id", obj.ID, "thumbnail_id", thumb.ID, "err", err)
		return
	}

	if result.Emotion != "" && result.Confidence >= consts.EmotionScoreThreshold {
		tag, err := s.tagRepo.GetOrCreateTag(ctx, result.Emotion, consts.TagTypeEmotion, consts.TagDefaultColor)
		if err != nil {
			log.ErrorContext(ctx, "get or create emotion tag failed", "media_id", obj.ID, "err", err)
		} else if err = s.mediaRepo.AttachTags(ctx, obj, []*model.MediaObjectTag{tag}); err != nil {
			log.ErrorContext(ctx, "attach emotion tag failed", "media_id", obj.ID, "err", err)
		}
	}

	log.InfoContext(ctx, "video thumbnail generated", "media_id", obj.ID, "thumbnail_id", thumb.ID)
}

// indexMedia 富化之后重新读取目录行并覆写 ES 文档
func (s *MediaHandler) indexMedia(ctx context.Context, id uint64) {
	obj, err := s.mediaRepo.FindByID(ctx, id)
	if err != nil || obj == nil {
		log.ErrorContext(ctx, "reload media for index failed", "media_id", id, "err", err)
		return
	}

	if err = s.mediaESRepo.IndexMedia(ctx, es.FromMediaObject(obj)); err != nil {
		log.ErrorContext(ctx, "index media failed", "media_id", id, "err", err)
	}
}

// normalizeThumbnail 将缩略图统一压到最大宽度内并重编码为 JPEG，
// 解码失败时原样返回分析服务给出的缓冲与类型
func normalizeThumbnail(data []byte, mimeType string) ([]byte, string) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mimeType
	}

	if img.Bounds().Dx() > thumbnailMaxWidth {
		img = imaging.Resize(img, thumbnailMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return data, mimeType
	}
	return buf.Bytes(), "image/jpeg"
}
