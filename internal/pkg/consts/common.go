package consts

const (
	MimePrefixImage = "image"
	MimePrefixAudio = "audio"
	MimePrefixVideo = "video"
)

// MimeFallback 无法从扩展名推断时的兜底类型
const MimeFallback = "application/octet-stream"

// Destination 媒体对象角色
const (
	DestinationUpload    = "UPLOAD"
	DestinationThumbnail = "THUMBNAIL"
	DestinationLowRes    = "LOW_RES"
)

// FileKind 文件分类
const (
	FileKindImage = "IMAGE"
	FileKindVideo = "VIDEO"
	FileKindAudio = "AUDIO"
	FileKindOther = "OTHER"
)

// Status 媒体对象状态
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Tag 类型与默认颜色
const (
	TagTypeEmotion  = "EMOTION"
	TagTypeUser     = "USER"
	TagDefaultColor = "#A9A9A9"
)

// EmotionScoreThreshold 情绪标签最低置信度
const EmotionScoreThreshold = 0.3
