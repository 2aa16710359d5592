package model

import "time"

// MediaObjectMetadata 媒体对象的扩展信息，首次计算任意字段时惰性创建
type MediaObjectMetadata struct {
	ID                uint64  `gorm:"primaryKey" json:"id"`
	MediaObjectID     uint64  `gorm:"not null;uniqueIndex" json:"media_object_id"`
	Checksum          *string `gorm:"type:varchar(128)" json:"checksum"`
	Caption           *string `gorm:"type:text" json:"caption"`
	TranslatedCaption *string `gorm:"type:text" json:"translated_caption"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MediaObjectMetadata) TableName() string {
	return "media_object_metadata"
}
