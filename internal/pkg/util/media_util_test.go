package util

import (
	"Prism/internal/pkg/consts"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromFilename(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":        consts.FileKindImage,
		"photo.JPG":        consts.FileKindImage,
		"clip.mp4":         consts.FileKindVideo,
		"2024/01/clip.mov": consts.FileKindVideo,
		"track.mp3":        consts.FileKindAudio,
		"report.pdf":       consts.FileKindOther,
		"noext":            consts.FileKindOther,
	}
	for filename, want := range cases {
		assert.Equal(t, want, KindFromFilename(filename), filename)
	}
}

func TestKindFromMime(t *testing.T) {
	assert.Equal(t, consts.FileKindImage, KindFromMime("image/png"))
	assert.Equal(t, consts.FileKindVideo, KindFromMime("video/mp4"))
	assert.Equal(t, consts.FileKindAudio, KindFromMime("audio/mpeg"))
	assert.Equal(t, consts.FileKindOther, KindFromMime("application/zip"))
	assert.Equal(t, consts.FileKindOther, KindFromMime(""))
}

func TestMimeFromFilenameFallback(t *testing.T) {
	assert.Equal(t, consts.MimeFallback, MimeFromFilename("archive"))
	assert.Equal(t, consts.MimeFallback, MimeFromFilename("file.unknownext"))
	assert.Equal(t, "image/png", MimeFromFilename("a/b/photo.png"))
}

func TestSanitizeSizeLabel(t *testing.T) {
	assert.Equal(t, "0", SanitizeSizeLabel(0))
	assert.Equal(t, "0", SanitizeSizeLabel(-5))
	assert.Equal(t, "1048576", SanitizeSizeLabel(1048576))
}

func TestGetSafeContentType(t *testing.T) {
	// PNG 魔数
	payload := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	reader := bytes.NewReader(payload)

	contentType, err := GetSafeContentType(reader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	// 嗅探后必须回到流起点
	pos, err := reader.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}
