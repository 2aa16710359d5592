package model

import "time"

// MediaObjectTag 图片标签，名称入库前统一转为小写以保证大小写不敏感的唯一性
type MediaObjectTag struct {
	ID    uint64 `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"type:varchar(50);not null;uniqueIndex:idx_media_tag_name" json:"name"`
	Color string `gorm:"type:varchar(16);not null;default:'#A9A9A9'" json:"color"`
	Type  string `gorm:"type:varchar(16);not null;default:'USER'" json:"type"`

	CreatedAt time.Time `json:"created_at"`
}

func (MediaObjectTag) TableName() string {
	return "media_object_tags"
}
