package repository

import (
	"Prism/internal/model"
	"Prism/internal/pkg/consts"
	"context"
	"errors"

	"gorm.io/gorm"
)

type MediaObjectRepo interface {
	FindByID(ctx context.Context, id uint64) (*model.MediaObject, error)
	FindByKey(ctx context.Context, key string, appName string, destination string) (*model.MediaObject, error)
	Save(ctx context.Context, obj *model.MediaObject) error
	Update(ctx context.Context, obj *model.MediaObject) error
	Deactivate(ctx context.Context, id uint64) error
	AttachTags(ctx context.Context, obj *model.MediaObject, tags []*model.MediaObjectTag) error
	LinkThumbnail(ctx context.Context, videoID uint64, thumbnailID uint64) error
	LinkLowRes(ctx context.Context, sourceID uint64, renditionID uint64) error
	FindMissingChecksum(ctx context.Context, limit int) ([]*model.MediaObject, error)
	FindMissingCaption(ctx context.Context, limit int) ([]*model.MediaObject, error)
	FindMissingTranslation(ctx context.Context, limit int) ([]*model.MediaObject, error)
}

type mediaObjectRepoImpl struct {
	db *gorm.DB
}

func NewMediaObjectRepo(db *gorm.DB) MediaObjectRepo {
	return &mediaObjectRepoImpl{db: db}
}

func (s *mediaObjectRepoImpl) FindByID(ctx context.Context, id uint64) (*model.MediaObject, error) {
	var obj model.MediaObject
	err := s.db.WithContext(ctx).
		Preload("Metadata").
		Preload("Tags").
		First(&obj, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &obj, nil
}

// FindByKey 按精确键匹配查找，不做前缀查询
func (s *mediaObjectRepoImpl) FindByKey(ctx context.Context, key string, appName string, destination string) (*model.MediaObject, error) {
	var obj model.MediaObject
	err := s.db.WithContext(ctx).
		Where("storage_key = ? AND app_name = ? AND destination = ?", key, appName, destination).
		First(&obj).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &obj, nil
}

func (s *mediaObjectRepoImpl) Save(ctx context.Context, obj *model.MediaObject) error {
	return s.db.WithContext(ctx).Create(obj).Error
}

func (s *mediaObjectRepoImpl) Update(ctx context.Context, obj *model.MediaObject) error {
	return s.db.WithContext(ctx).Save(obj).Error
}

// Deactivate 仅翻转状态，不删除目录行，也不触碰对象存储中的字节
func (s *mediaObjectRepoImpl) Deactivate(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).
		Model(&model.MediaObject{}).
		Where("id = ?", id).
		Update("status", consts.StatusInactive).Error
}

func (s *mediaObjectRepoImpl) AttachTags(ctx context.Context, obj *model.MediaObject, tags []*model.MediaObjectTag) error {
	return s.db.WithContext(ctx).Model(obj).Association("Tags").Append(tags)
}

// LinkThumbnail 在同一事务中写入视频与缩略图的双向链接，避免悬挂引用
func (s *mediaObjectRepoImpl) LinkThumbnail(ctx context.Context, videoID uint64, thumbnailID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.MediaObject{}).
			Where("id = ?", videoID).
			Update("thumbnail_id", thumbnailID).Error; err != nil {
			return err
		}
		return tx.Model(&model.MediaObject{}).
			Where("id = ?", thumbnailID).
			Update("video_source_id", videoID).Error
	})
}

// LinkLowRes 在同一事务中写入源与低清版本的双向链接
func (s *mediaObjectRepoImpl) LinkLowRes(ctx context.Context, sourceID uint64, renditionID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.MediaObject{}).
			Where("id = ?", sourceID).
			Update("low_res_id", renditionID).Error; err != nil {
			return err
		}
		return tx.Model(&model.MediaObject{}).
			Where("id = ?", renditionID).
			Update("low_res_source_id", sourceID).Error
	})
}

func (s *mediaObjectRepoImpl) FindMissingChecksum(ctx context.Context, limit int) ([]*model.MediaObject, error) {
	objs := make([]*model.MediaObject, 0)
	err := s.db.WithContext(ctx).
		Joins("LEFT JOIN media_object_metadata m ON m.media_object_id = media_objects.id").
		Where("media_objects.destination = ?", consts.DestinationUpload).
		Where("media_objects.status = ?", consts.StatusActive).
		Where("m.id IS NULL OR m.checksum IS NULL").
		Limit(limit).
		Find(&objs).Error
	if err != nil {
		return nil, err
	}
	return objs, nil
}

// FindMissingCaption 只针对图片，视觉模型不处理其它类型
func (s *mediaObjectRepoImpl) FindMissingCaption(ctx context.Context, limit int) ([]*model.MediaObject, error) {
	objs := make([]*model.MediaObject, 0)
	err := s.db.WithContext(ctx).
		Joins("LEFT JOIN media_object_metadata m ON m.media_object_id = media_objects.id").
		Where("media_objects.destination = ?", consts.DestinationUpload).
		Where("media_objects.status = ?", consts.StatusActive).
		Where("media_objects.file_kind = ?", consts.FileKindImage).
		Where("m.id IS NULL OR m.caption IS NULL").
		Limit(limit).
		Find(&objs).Error
	if err != nil {
		return nil, err
	}
	return objs, nil
}

func (s *mediaObjectRepoImpl) FindMissingTranslation(ctx context.Context, limit int) ([]*model.MediaObject, error) {
	objs := make([]*model.MediaObject, 0)
	err := s.db.WithContext(ctx).
		Preload("Metadata").
		Joins("JOIN media_object_metadata m ON m.media_object_id = media_objects.id").
		Where("media_objects.destination = ?", consts.DestinationUpload).
		Where("media_objects.status = ?", consts.StatusActive).
		Where("m.caption IS NOT NULL AND m.translated_caption IS NULL").
		Limit(limit).
		Find(&objs).Error
	if err != nil {
		return nil, err
	}
	return objs, nil
}
