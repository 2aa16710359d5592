package consts

const (
	// TranscodeLockKey 转码锁前缀，后接媒体对象 ID
	TranscodeLockKey = "media:transcode:lock:"
	// ThumbnailInflightKey 缩略图生成幂等键前缀，后接媒体对象 ID
	ThumbnailInflightKey = "media:thumbnail:inflight:"
)
