package service

import (
	"Prism/internal/model"
	"Prism/internal/pkg/consts"
	"Prism/internal/pkg/minio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMediaRepo struct {
	byID   map[uint64]*model.MediaObject
	nextID uint64
}

func newMemMediaRepo() *memMediaRepo {
	return &memMediaRepo{byID: make(map[uint64]*model.MediaObject), nextID: 1}
}

func (s *memMediaRepo) FindByID(_ context.Context, id uint64) (*model.MediaObject, error) {
	return s.byID[id], nil
}

func (s *memMediaRepo) FindByKey(_ context.Context, key string, _ string, _ string) (*model.MediaObject, error) {
	for _, obj := range s.byID {
		if obj.StorageKey == key {
			return obj, nil
		}
	}
	return nil, nil
}

func (s *memMediaRepo) Save(_ context.Context, obj *model.MediaObject) error {
	obj.ID = s.nextID
	s.nextID++
	s.byID[obj.ID] = obj
	return nil
}

func (s *memMediaRepo) Update(_ context.Context, obj *model.MediaObject) error {
	s.byID[obj.ID] = obj
	return nil
}

func (s *memMediaRepo) Deactivate(_ context.Context, id uint64) error {
	if obj, ok := s.byID[id]; ok {
		obj.Status = consts.StatusInactive
	}
	return nil
}

func (s *memMediaRepo) AttachTags(_ context.Context, obj *model.MediaObject, tags []*model.MediaObjectTag) error {
	for _, tag := range tags {
		obj.Tags = append(obj.Tags, *tag)
	}
	return nil
}

func (s *memMediaRepo) LinkThumbnail(_ context.Context, videoID uint64, thumbnailID uint64) error {
	s.byID[videoID].ThumbnailID = &thumbnailID
	s.byID[thumbnailID].VideoSourceID = &videoID
	return nil
}

func (s *memMediaRepo) LinkLowRes(_ context.Context, sourceID uint64, renditionID uint64) error {
	s.byID[sourceID].LowResID = &renditionID
	s.byID[renditionID].LowResSourceID = &sourceID
	return nil
}

func (s *memMediaRepo) FindMissingChecksum(context.Context, int) ([]*model.MediaObject, error) {
	return nil, nil
}

func (s *memMediaRepo) FindMissingCaption(context.Context, int) ([]*model.MediaObject, error) {
	return nil, nil
}

func (s *memMediaRepo) FindMissingTranslation(context.Context, int) ([]*model.MediaObject, error) {
	return nil, nil
}

type memMetadataRepo struct {
	checksums map[uint64]string
}

func (s *memMetadataRepo) UpsertChecksum(_ context.Context, id uint64, checksum string) error {
	if s.checksums == nil {
		s.checksums = make(map[uint64]string)
	}
	s.checksums[id] = checksum
	return nil
}

func (s *memMetadataRepo) UpsertCaption(context.Context, uint64, string) error { return nil }

func (s *memMetadataRepo) UpsertTranslatedCaption(context.Context, uint64, string) error {
	return nil
}

type memGateway struct {
	objects map[string][]byte
	putErr  error
}

func newMemGateway() *memGateway {
	return &memGateway{objects: make(map[string][]byte)}
}

func (s *memGateway) List(context.Context, string, string, string, int) (*minio.ListPage, error) {
	return &minio.ListPage{}, nil
}

func (s *memGateway) GetStream(_ context.Context, _ string, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memGateway) PutStream(_ context.Context, _ string, key string, reader io.Reader, _ int64, _ string) (*minio.PutResult, error) {
	if s.putErr != nil {
		return nil, s.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	s.objects[key] = data
	return &minio.PutResult{URL: "https://media.test/main/" + key, Size: int64(len(data))}, nil
}

func (s *memGateway) Delete(_ context.Context, _ string, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *memGateway) PublicURL(bucket, key string) string {
	return "https://media.test/" + bucket + "/" + key
}

func (s *memGateway) MainBucket() string { return "main" }

type recordingPublisher struct {
	published []uint64
}

func (s *recordingPublisher) PublishMediaCreated(_ context.Context, obj *model.MediaObject) error {
	s.published = append(s.published, obj.ID)
	return nil
}

type recordingIndex struct {
	deleted   []uint64
	deleteErr error
}

func (s *recordingIndex) DeleteMedia(_ context.Context, id uint64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func TestUploadPersistsAndPublishes(t *testing.T) {
	mediaRepo := newMemMediaRepo()
	metadataRepo := &memMetadataRepo{}
	gateway := newMemGateway()
	publisher := &recordingPublisher{}
	svc := NewMediaService(mediaRepo, metadataRepo, gateway, publisher, &recordingIndex{})

	payload := "fake image bytes"
	obj, err := svc.Upload(context.Background(), strings.NewReader(payload), int64(len(payload)),
		"photo.jpg", "image/jpeg", "prism", 42, UploadOptions{})
	require.NoError(t, err)

	assert.Equal(t, consts.DestinationUpload, obj.Destination)
	assert.Equal(t, consts.StatusActive, obj.Status)
	assert.Equal(t, consts.FileKindImage, obj.FileKind)
	assert.Equal(t, "photo.jpg", obj.OriginalName)
	assert.Equal(t, uint64(42), obj.UserID)
	assert.True(t, strings.HasSuffix(obj.StorageKey, ".jpg"))

	// 对象字节确实写入了存储
	stored := gateway.objects[obj.StorageKey]
	assert.Equal(t, payload, string(stored))

	// 校验和与载荷一致
	sum := sha256.Sum256([]byte(payload))
	assert.Equal(t, hex.EncodeToString(sum[:]), metadataRepo.checksums[obj.ID])

	// 创建事件已发布
	assert.Equal(t, []uint64{obj.ID}, publisher.published)
}

func TestUploadDerivativeSuppressesEvent(t *testing.T) {
	mediaRepo := newMemMediaRepo()
	metadataRepo := &memMetadataRepo{}
	gateway := newMemGateway()
	publisher := &recordingPublisher{}
	svc := NewMediaService(mediaRepo, metadataRepo, gateway, publisher, &recordingIndex{})

	obj, err := svc.UploadDerivative(context.Background(), []byte("thumb"), "thumb.jpg", "image/jpeg",
		"prism", 42, consts.DestinationThumbnail)
	require.NoError(t, err)

	assert.Equal(t, consts.DestinationThumbnail, obj.Destination)
	assert.Empty(t, publisher.published)
}

func TestUploadStreamFailure(t *testing.T) {
	mediaRepo := newMemMediaRepo()
	gateway := newMemGateway()
	gateway.putErr = errors.New("connection reset")
	svc := NewMediaService(mediaRepo, &memMetadataRepo{}, gateway, &recordingPublisher{}, &recordingIndex{})

	_, err := svc.Upload(context.Background(), strings.NewReader("x"), 1,
		"clip.mp4", "video/mp4", "prism", 1, UploadOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStream)
	assert.Empty(t, mediaRepo.byID)
}

func TestGetMissingMedia(t *testing.T) {
	svc := NewMediaService(newMemMediaRepo(), &memMetadataRepo{}, newMemGateway(), &recordingPublisher{}, &recordingIndex{})

	_, err := svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

func TestDeactivateFlipsStatusAndEvictsIndex(t *testing.T) {
	mediaRepo := newMemMediaRepo()
	gateway := newMemGateway()
	index := &recordingIndex{}
	svc := NewMediaService(mediaRepo, &memMetadataRepo{}, gateway, &recordingPublisher{}, index)

	obj, err := svc.Upload(context.Background(), strings.NewReader("data"), 4,
		"a.jpg", "image/jpeg", "prism", 1, UploadOptions{})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), obj.ID))
	assert.Equal(t, consts.StatusInactive, mediaRepo.byID[obj.ID].Status)

	// 下线对象同步移出检索索引，避免继续命中 ACTIVE 过滤
	assert.Equal(t, []uint64{obj.ID}, index.deleted)

	// 软下线不触碰对象存储中的字节
	assert.Contains(t, gateway.objects, obj.StorageKey)
}

func TestDeactivateToleratesIndexFailure(t *testing.T) {
	mediaRepo := newMemMediaRepo()
	index := &recordingIndex{deleteErr: errors.New("es unavailable")}
	svc := NewMediaService(mediaRepo, &memMetadataRepo{}, newMemGateway(), &recordingPublisher{}, index)

	obj, err := svc.Upload(context.Background(), strings.NewReader("data"), 4,
		"a.jpg", "image/jpeg", "prism", 1, UploadOptions{})
	require.NoError(t, err)

	// 索引删除失败不回滚目录状态，也不向调用方冒泡
	require.NoError(t, svc.Deactivate(context.Background(), obj.ID))
	assert.Equal(t, consts.StatusInactive, mediaRepo.byID[obj.ID].Status)
}
