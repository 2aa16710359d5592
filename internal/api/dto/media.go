package dto

// MediaUploadResponse 上传成功后的返回体，字段名与目录行保持一致以便直接拷贝
type MediaUploadResponse struct {
	ID           uint64  `json:"id"`
	StorageKey   string  `json:"key"`
	PublicURL    *string `json:"url"`
	MimeType     string  `json:"mime"`
	FileKind     string  `json:"file_kind"`
	Size         int64   `json:"size"`
	OriginalName string  `json:"original"`
	Destination  string  `json:"destination"`
}

// MediaSearchQuery 检索请求
type MediaSearchQuery struct {
	Keyword string `form:"q" binding:"required,min=1,max=128"`
	From    int    `form:"from" binding:"min=0"`
	Size    int    `form:"size" binding:"min=0,max=100"`
}
