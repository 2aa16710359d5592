package transcode

import (
	"Prism/internal/model"
	"Prism/internal/pkg/consts"
	"Prism/internal/pkg/minio"
	"Prism/internal/service"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	content  []byte
	getErr   error
	getCalls int
}

func (s *fakeGateway) GetStream(_ context.Context, _ string, _ string) (io.ReadCloser, error) {
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return io.NopCloser(bytes.NewReader(s.content)), nil
}

func (s *fakeGateway) MainBucket() string { return "main" }

type fakeUploader struct {
	uploaded    []byte
	destination string
	calls       int
}

func (s *fakeUploader) UploadDerivative(_ context.Context, data []byte, _ string, _ string, _ string, _ uint64, destination string) (*model.MediaObject, error) {
	s.calls++
	s.uploaded = data
	s.destination = destination
	return &model.MediaObject{ID: 77, Destination: destination}, nil
}

type fakeLinker struct {
	sourceID    uint64
	renditionID uint64
	calls       int
}

func (s *fakeLinker) LinkLowRes(_ context.Context, sourceID uint64, renditionID uint64) error {
	s.calls++
	s.sourceID = sourceID
	s.renditionID = renditionID
	return nil
}

type memLocker struct {
	held map[string]bool
}

func newMemLocker() *memLocker { return &memLocker{held: make(map[string]bool)} }

func (s *memLocker) TryAcquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.held[key] {
		return false, nil
	}
	s.held[key] = true
	return true, nil
}

func (s *memLocker) Release(_ context.Context, key string) {
	delete(s.held, key)
}

// fakeEncoderScript 写一个把最后一个参数当输出文件的假编码器
func fakeEncoderScript(t *testing.T, dir string, body string) string {
	t.Helper()
	scriptPath := filepath.Join(dir, "fake-ffmpeg.sh")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o755))
	return scriptPath
}

func newTestTranscoder(t *testing.T, gateway *fakeGateway, uploader *fakeUploader, linker *fakeLinker, ffmpegPath string) *Transcoder {
	t.Helper()
	return &Transcoder{
		gateway:    gateway,
		uploader:   uploader,
		linker:     linker,
		locker:     newMemLocker(),
		assetsDir:  t.TempDir(),
		ffmpegPath: ffmpegPath,
	}
}

func videoObject() *model.MediaObject {
	return &model.MediaObject{
		ID:           5,
		AppName:      "prism",
		StorageKey:   "2024/01/01/clip.mp4",
		OriginalName: "clip.mp4",
		Size:         4096,
		MimeType:     "video/mp4",
		FileKind:     consts.FileKindVideo,
		Destination:  consts.DestinationUpload,
		Status:       consts.StatusActive,
		UserID:       1,
	}
}

func TestGenerateLowResRejectsNonVideoBeforeAnyIO(t *testing.T) {
	gateway := &fakeGateway{}
	uploader := &fakeUploader{}
	tc := newTestTranscoder(t, gateway, uploader, &fakeLinker{}, "/bin/true")

	obj := videoObject()
	obj.FileKind = consts.FileKindImage
	obj.OriginalName = "photo.jpg"
	obj.StorageKey = "photo.jpg"

	_, err := tc.GenerateLowRes(context.Background(), obj)
	assert.ErrorIs(t, err, service.ErrInvalidMediaInput)
	assert.Zero(t, gateway.getCalls)
	assert.Zero(t, uploader.calls)
}

func TestGenerateLowResRejectsMissingExtension(t *testing.T) {
	gateway := &fakeGateway{}
	tc := newTestTranscoder(t, gateway, &fakeUploader{}, &fakeLinker{}, "/bin/true")

	obj := videoObject()
	obj.OriginalName = "clip"
	obj.StorageKey = "clip"

	_, err := tc.GenerateLowRes(context.Background(), obj)
	assert.ErrorIs(t, err, service.ErrInvalidMediaInput)
	assert.Zero(t, gateway.getCalls)
}

func TestGenerateLowResSuccess(t *testing.T) {
	gateway := &fakeGateway{content: []byte("source video bytes")}
	uploader := &fakeUploader{}
	linker := &fakeLinker{}
	tc := newTestTranscoder(t, gateway, uploader, linker, "")

	// 假编码器把固定内容写进最后一个参数指定的输出文件
	tc.ffmpegPath = fakeEncoderScript(t, tc.assetsDir, `for last; do :; done; printf 'encoded' > "$last"`)

	rendition, err := tc.GenerateLowRes(context.Background(), videoObject())
	require.NoError(t, err)

	assert.Equal(t, uint64(77), rendition.ID)
	assert.Equal(t, []byte("encoded"), uploader.uploaded)
	assert.Equal(t, consts.DestinationLowRes, uploader.destination)

	// 双向关联在一个逻辑操作里建立
	assert.Equal(t, 1, linker.calls)
	assert.Equal(t, uint64(5), linker.sourceID)
	assert.Equal(t, uint64(77), linker.renditionID)

	assertNoScratchFiles(t, tc.assetsDir)
}

func TestGenerateLowResMissingSourceMapsToNotFound(t *testing.T) {
	gateway := &fakeGateway{getErr: minio.ErrObjectNotFound}
	uploader := &fakeUploader{}
	linker := &fakeLinker{}
	tc := newTestTranscoder(t, gateway, uploader, linker, "/bin/true")

	_, err := tc.GenerateLowRes(context.Background(), videoObject())
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrObjectNotFound)
	assert.NotErrorIs(t, err, service.ErrStream)
	assert.Equal(t, service.NotFound, service.ErrorMap[service.ErrObjectNotFound])

	assert.Zero(t, uploader.calls)
	assert.Zero(t, linker.calls)
	assertNoScratchFiles(t, tc.assetsDir)
}

func TestGenerateLowResCleansUpOnSubprocessFailure(t *testing.T) {
	gateway := &fakeGateway{content: []byte("source video bytes")}
	uploader := &fakeUploader{}
	linker := &fakeLinker{}
	tc := newTestTranscoder(t, gateway, uploader, linker, "/bin/false")

	_, err := tc.GenerateLowRes(context.Background(), videoObject())
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrSubprocess)

	assert.Zero(t, uploader.calls)
	assert.Zero(t, linker.calls)
	assertNoScratchFiles(t, tc.assetsDir)
}

func TestGenerateLowResBusyLock(t *testing.T) {
	locker := newMemLocker()
	locker.held[consts.TranscodeLockKey+"5"] = true

	tc := &Transcoder{
		gateway:    &fakeGateway{content: []byte("x")},
		uploader:   &fakeUploader{},
		linker:     &fakeLinker{},
		locker:     locker,
		assetsDir:  t.TempDir(),
		ffmpegPath: "/bin/true",
	}

	_, err := tc.GenerateLowRes(context.Background(), videoObject())
	assert.ErrorIs(t, err, service.ErrTranscodeBusy)
}

func assertNoScratchFiles(t *testing.T, assetsDir string) {
	t.Helper()
	for _, sub := range []string{"low-res", "temp"} {
		entries, err := os.ReadDir(filepath.Join(assetsDir, sub))
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)
		for _, entry := range entries {
			t.Errorf("scratch file leaked: %s/%s", sub, entry.Name())
		}
	}
}
