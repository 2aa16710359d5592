package es

import (
	"Prism/internal/model"
	"time"
)

// MediaES 写入 ES 的媒体文档
type MediaES struct {
	ID                uint64   `json:"id"`
	AppName           string   `json:"app_name"`
	UserID            uint64   `json:"user_id"`
	OriginalName      string   `json:"original_name"`
	PublicURL         string   `json:"public_url"`
	MimeType          string   `json:"mime_type"`
	FileKind          string   `json:"file_kind"`
	Destination       string   `json:"destination"`
	Status            string   `json:"status"`
	Caption           string   `json:"caption"`
	TranslatedCaption string   `json:"translated_caption"`
	Tags              []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromMediaObject 将目录行折叠为可检索文档，要求调用方已预加载元数据与标签
func FromMediaObject(obj *model.MediaObject) *MediaES {
	doc := &MediaES{
		ID:           obj.ID,
		AppName:      obj.AppName,
		UserID:       obj.UserID,
		OriginalName: obj.OriginalName,
		MimeType:     obj.MimeType,
		FileKind:     obj.FileKind,
		Destination:  obj.Destination,
		Status:       obj.Status,
		Tags:         make([]string, 0, len(obj.Tags)),
		CreatedAt:    obj.CreatedAt,
		UpdatedAt:    obj.UpdatedAt,
	}

	if obj.PublicURL != nil {
		doc.PublicURL = *obj.PublicURL
	}
	if obj.Metadata != nil {
		if obj.Metadata.Caption != nil {
			doc.Caption = *obj.Metadata.Caption
		}
		if obj.Metadata.TranslatedCaption != nil {
			doc.TranslatedCaption = *obj.Metadata.TranslatedCaption
		}
	}
	for _, tag := range obj.Tags {
		doc.Tags = append(doc.Tags, tag.Name)
	}

	return doc
}
