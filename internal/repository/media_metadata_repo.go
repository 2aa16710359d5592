package repository

import (
	"Prism/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MediaMetadataRepo interface {
	UpsertChecksum(ctx context.Context, mediaObjectID uint64, checksum string) error
	UpsertCaption(ctx context.Context, mediaObjectID uint64, caption string) error
	UpsertTranslatedCaption(ctx context.Context, mediaObjectID uint64, translated string) error
}

type mediaMetadataRepoImpl struct {
	db *gorm.DB
}

func NewMediaMetadataRepo(db *gorm.DB) MediaMetadataRepo {
	return &mediaMetadataRepoImpl{db: db}
}

// upsertField 元数据行不存在时惰性创建，存在时只覆盖目标列
func (s *mediaMetadataRepoImpl) upsertField(ctx context.Context, row *model.MediaObjectMetadata, column string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "media_object_id"}},
		DoUpdates: clause.AssignmentColumns([]string{column, "updated_at"}),
	}).Create(row).Error
}

func (s *mediaMetadataRepoImpl) UpsertChecksum(ctx context.Context, mediaObjectID uint64, checksum string) error {
	return s.upsertField(ctx, &model.MediaObjectMetadata{
		MediaObjectID: mediaObjectID,
		Checksum:      &checksum,
		UpdatedAt:     time.Now(),
	}, "checksum")
}

func (s *mediaMetadataRepoImpl) UpsertCaption(ctx context.Context, mediaObjectID uint64, caption string) error {
	return s.upsertField(ctx, &model.MediaObjectMetadata{
		MediaObjectID: mediaObjectID,
		Caption:       &caption,
		UpdatedAt:     time.Now(),
	}, "caption")
}

func (s *mediaMetadataRepoImpl) UpsertTranslatedCaption(ctx context.Context, mediaObjectID uint64, translated string) error {
	return s.upsertField(ctx, &model.MediaObjectMetadata{
		MediaObjectID:     mediaObjectID,
		TranslatedCaption: &translated,
		UpdatedAt:         time.Now(),
	}, "translated_caption")
}
