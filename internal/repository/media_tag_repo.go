package repository

import (
	"Prism/internal/model"
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MediaTagRepo interface {
	GetOrCreateTag(ctx context.Context, name string, tagType string, color string) (*model.MediaObjectTag, error)
	GetOrCreateTags(ctx context.Context, names []string, tagType string, color string) ([]*model.MediaObjectTag, error)
}

type mediaTagRepoImpl struct {
	db *gorm.DB
}

func NewMediaTagRepo(db *gorm.DB) MediaTagRepo {
	return &mediaTagRepoImpl{db: db}
}

// NormalizeTagName 标签名大小写不敏感，统一小写入库
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *mediaTagRepoImpl) GetOrCreateTag(ctx context.Context, name string, tagType string, color string) (*model.MediaObjectTag, error) {
	normalized := NormalizeTagName(name)

	tag := model.MediaObjectTag{
		Name:      normalized,
		Type:      tagType,
		Color:     color,
		CreatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error
	if err != nil {
		return nil, err
	}

	// 如果记录已存在，查询获取完整数据
	var existingTag model.MediaObjectTag
	err = s.db.WithContext(ctx).Where("name = ?", normalized).First(&existingTag).Error
	if err != nil {
		return nil, err
	}
	return &existingTag, nil
}

func (s *mediaTagRepoImpl) GetOrCreateTags(ctx context.Context, names []string, tagType string, color string) ([]*model.MediaObjectTag, error) {
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		normalized = append(normalized, NormalizeTagName(name))
	}

	for _, name := range normalized {
		tag := model.MediaObjectTag{
			Name:      name,
			Type:      tagType,
			Color:     color,
			CreatedAt: time.Now(),
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error
		if err != nil {
			return nil, err
		}
	}

	var tags []*model.MediaObjectTag
	err := s.db.WithContext(ctx).Where("name IN ?", normalized).Find(&tags).Error
	if err != nil {
		return nil, err
	}

	return tags, nil
}
