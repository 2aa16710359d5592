package util

import (
	"Prism/internal/pkg/consts"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
)

var kindByExtension = map[string]string{
	".jpg":  consts.FileKindImage,
	".jpeg": consts.FileKindImage,
	".png":  consts.FileKindImage,
	".gif":  consts.FileKindImage,
	".webp": consts.FileKindImage,
	".bmp":  consts.FileKindImage,
	".heic": consts.FileKindImage,
	".mp4":  consts.FileKindVideo,
	".mov":  consts.FileKindVideo,
	".avi":  consts.FileKindVideo,
	".mkv":  consts.FileKindVideo,
	".webm": consts.FileKindVideo,
	".m4v":  consts.FileKindVideo,
	".wmv":  consts.FileKindVideo,
	".mp3":  consts.FileKindAudio,
	".wav":  consts.FileKindAudio,
	".ogg":  consts.FileKindAudio,
	".m4a":  consts.FileKindAudio,
	".aac":  consts.FileKindAudio,
	".flac": consts.FileKindAudio,
}

// KindFromFilename 按扩展名推断文件分类
func KindFromFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if kind, ok := kindByExtension[ext]; ok {
		return kind
	}
	return consts.FileKindOther
}

// KindFromMime 按 MIME 前缀推断文件分类
func KindFromMime(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, consts.MimePrefixImage):
		return consts.FileKindImage
	case strings.HasPrefix(contentType, consts.MimePrefixVideo):
		return consts.FileKindVideo
	case strings.HasPrefix(contentType, consts.MimePrefixAudio):
		return consts.FileKindAudio
	default:
		return consts.FileKindOther
	}
}

// MimeFromFilename 按扩展名推断 MIME，无法识别时回退为通用二进制类型
func MimeFromFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return consts.MimeFallback
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return mimeType
	}
	return consts.MimeFallback
}

// SanitizeSizeLabel 将字节数转为只含数字的文件名片段
func SanitizeSizeLabel(size int64) string {
	if size < 0 {
		size = 0
	}
	return strconv.FormatInt(size, 10)
}

// GetSafeContentType 基于文件头嗅探真实类型，读取后回退到文件起点
func GetSafeContentType(reader io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := reader.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
