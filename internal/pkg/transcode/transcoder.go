package transcode

import (
	"Prism/internal/api/config"
	"Prism/internal/model"
	"Prism/internal/pkg/consts"
	"Prism/internal/pkg/minio"
	"Prism/internal/pkg/redis"
	"Prism/internal/pkg/util"
	"Prism/internal/service"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"
)

// transcodeLockTTL 单个对象转码锁的保底过期时间
const transcodeLockTTL = 30 * time.Minute

// Gateway 转码侧只需要对象存储的读能力
type Gateway interface {
	GetStream(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	MainBucket() string
}

// Uploader 渲染产物回传入口，由 service.MediaService 实现
type Uploader interface {
	UploadDerivative(ctx context.Context, data []byte, filename string, contentType string, appName string, userID uint64, destination string) (*model.MediaObject, error)
}

// Linker 源对象与低清产物的双向关联写入
type Linker interface {
	LinkLowRes(ctx context.Context, sourceID uint64, renditionID uint64) error
}

// Locker 对象级互斥，防止同一 ID 的两次转码争用同一暂存路径
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string)
}

type redisLocker struct{}

func (redisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return redis.SetNX(ctx, key, 1, ttl)
}

func (redisLocker) Release(ctx context.Context, key string) {
	if err := redis.DeleteKey(ctx, key); err != nil {
		log.WarnContext(ctx, "release transcode lock failed", "key", key, "err", err)
	}
}

// Transcoder 低清转码器：下载源流到本地暂存，调用外部编码器，回传产物并建立双向关联。
// 所有暂存文件在任意退出路径上都会被删除。
type Transcoder struct {
	gateway    Gateway
	uploader   Uploader
	linker     Linker
	locker     Locker
	assetsDir  string
	ffmpegPath string
}

func NewTranscoder(gateway Gateway, uploader Uploader, linker Linker) *Transcoder {
	return &Transcoder{
		gateway:    gateway,
		uploader:   uploader,
		linker:     linker,
		locker:     redisLocker{},
		assetsDir:  config.Cfg.Transcode.AssetsDir,
		ffmpegPath: config.Cfg.LibPath.FFmpeg,
	}
}

// GenerateLowRes 为视频对象生成 360p 低清渲染版
func (s *Transcoder) GenerateLowRes(ctx context.Context, obj *model.MediaObject) (*model.MediaObject, error) {
	ext := obj.Extension()
	if ext == "" || !obj.IsVideo() {
		return nil, service.ErrInvalidMediaInput
	}

	lockKey := consts.TranscodeLockKey + strconv.FormatUint(obj.ID, 10)
	acquired, err := s.locker.TryAcquire(ctx, lockKey, transcodeLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, service.ErrTranscodeBusy
	}
	defer s.locker.Release(ctx, lockKey)

	outputPath := filepath.Join(s.assetsDir, "low-res",
		fmt.Sprintf("%d-%s.mp4", obj.ID, util.SanitizeSizeLabel(obj.Size)))
	inputPath := filepath.Join(s.assetsDir, "temp",
		fmt.Sprintf("%d-input%s", obj.ID, ext))

	// 无论成功失败，暂存文件都必须清掉
	defer func() {
		removeScratch(ctx, inputPath)
		removeScratch(ctx, outputPath)
	}()

	if err = os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, errors.Join(service.ErrStream, err)
	}
	if err = os.MkdirAll(filepath.Dir(inputPath), 0o755); err != nil {
		return nil, errors.Join(service.ErrStream, err)
	}

	if err = s.downloadSource(ctx, obj.StorageKey, inputPath); err != nil {
		return nil, err
	}

	if err = s.runEncoder(ctx, obj.ID, inputPath, outputPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, errors.Join(service.ErrStream, err)
	}

	rendition, err := s.uploader.UploadDerivative(ctx, data, filepath.Base(outputPath), "video/mp4",
		obj.AppName, obj.UserID, consts.DestinationLowRes)
	if err != nil {
		return nil, err
	}

	if err = s.linker.LinkLowRes(ctx, obj.ID, rendition.ID); err != nil {
		return nil, errors.Join(service.ErrPersistence, err)
	}

	log.InfoContext(ctx, "low-res rendition generated", "source_id", obj.ID, "rendition_id", rendition.ID, "size", len(data))
	return rendition, nil
}

// downloadSource 把源对象直接写入暂存文件，不在内存中整体缓冲
func (s *Transcoder) downloadSource(ctx context.Context, key string, inputPath string) error {
	stream, err := s.gateway.GetStream(ctx, s.gateway.MainBucket(), key)
	if err != nil {
		if errors.Is(err, minio.ErrObjectNotFound) {
			return errors.Join(service.ErrObjectNotFound, err)
		}
		return errors.Join(service.ErrStream, err)
	}
	defer func() {
		_ = stream.Close()
	}()

	file, err := os.Create(inputPath)
	if err != nil {
		return errors.Join(service.ErrStream, err)
	}

	_, copyErr := io.Copy(file, stream)
	closeErr := file.Close()
	if copyErr != nil {
		return errors.Join(service.ErrStream, copyErr)
	}
	if closeErr != nil {
		return errors.Join(service.ErrStream, closeErr)
	}
	return nil
}

// runEncoder 以固定画质参数调用外部编码器，子进程随任务上下文一起终止
func (s *Transcoder) runEncoder(ctx context.Context, id uint64, inputPath string, outputPath string) error {
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-vf", "scale=-2:360",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-maxrate", "1500k",
		"-bufsize", "4000k",
		"-profile:v", "high",
		"-level", "4.0",
		"-pix_fmt", "yuv420p",
		"-r", "30",
		"-g", "30",
		"-sc_threshold", "0",
		"-c:a", "aac",
		"-ar", "44100",
		"-b:a", "128k",
		"-movflags", "+faststart",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// 编码器自己会派生子进程，按进程组杀干净
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	log.DebugContext(ctx, "encoder start", "media_id", id, "input", inputPath, "output", outputPath)
	if err := cmd.Run(); err != nil {
		log.ErrorContext(ctx, "encoder failed", "media_id", id, "err", err, "stderr", stderr.String())
		return errors.Join(service.ErrSubprocess, err)
	}
	log.DebugContext(ctx, "encoder done", "media_id", id)
	return nil
}

func removeScratch(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WarnContext(ctx, "remove scratch file failed", "path", path, "err", err)
	}
}
