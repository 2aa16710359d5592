package model

import (
	"Prism/internal/pkg/consts"
	"path"
	"strings"
	"time"
)

// MediaObject 一个已入库的对象记录。
// 注意：删除目录行不会级联删除对象存储中的字节，两者的生命周期刻意解耦。
type MediaObject struct {
	ID           uint64  `gorm:"primaryKey" json:"id"`
	AppName      string  `gorm:"type:varchar(64);not null;uniqueIndex:idx_app_key,priority:1" json:"app_name"`
	StorageKey   string  `gorm:"type:varchar(512);not null;uniqueIndex:idx_app_key,priority:2" json:"storage_key"`
	PublicURL    *string `gorm:"type:varchar(1024)" json:"public_url"`
	OriginalName string  `gorm:"type:varchar(255);not null" json:"original_name"`
	Size         int64   `gorm:"not null;default:0" json:"size"`
	MimeType     string  `gorm:"type:varchar(128);not null" json:"mime_type"`
	FileKind     string  `gorm:"type:varchar(16);not null" json:"file_kind"`
	Destination  string  `gorm:"type:varchar(16);not null;default:'UPLOAD';index" json:"destination"`
	Status       string  `gorm:"type:varchar(16);not null;default:'ACTIVE';index" json:"status"`
	UserID       uint64  `gorm:"not null;index" json:"user_id"`

	// 衍生关系，正反两侧必须在同一事务中写入
	ThumbnailID    *uint64 `gorm:"uniqueIndex" json:"thumbnail_id"`
	VideoSourceID  *uint64 `gorm:"uniqueIndex" json:"video_source_id"`
	LowResID       *uint64 `gorm:"uniqueIndex" json:"low_res_id"`
	LowResSourceID *uint64 `gorm:"uniqueIndex" json:"low_res_source_id"`

	Thumbnail    *MediaObject `gorm:"foreignKey:ThumbnailID" json:"thumbnail,omitempty"`
	VideoSource  *MediaObject `gorm:"foreignKey:VideoSourceID" json:"video_source,omitempty"`
	LowRes       *MediaObject `gorm:"foreignKey:LowResID" json:"low_res,omitempty"`
	LowResSource *MediaObject `gorm:"foreignKey:LowResSourceID" json:"low_res_source,omitempty"`

	Metadata *MediaObjectMetadata `gorm:"foreignKey:MediaObjectID" json:"metadata,omitempty"`
	Tags     []MediaObjectTag     `gorm:"many2many:media_object_tag_links" json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MediaObject) TableName() string {
	return "media_objects"
}

func (m *MediaObject) IsImage() bool {
	return m.FileKind == consts.FileKindImage
}

func (m *MediaObject) IsVideo() bool {
	return m.FileKind == consts.FileKindVideo
}

// Extension 返回原始文件名的扩展名，含点号
func (m *MediaObject) Extension() string {
	ext := path.Ext(m.OriginalName)
	if ext == "" {
		ext = path.Ext(m.StorageKey)
	}
	return strings.ToLower(ext)
}
