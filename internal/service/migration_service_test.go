package service

import (
	"Prism/internal/model"
	"Prism/internal/pkg/consts"
	"Prism/internal/pkg/minio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	rows     map[string]*model.MediaObject
	failKeys map[string]bool
	saves    int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		rows:     make(map[string]*model.MediaObject),
		failKeys: make(map[string]bool),
	}
}

func (s *fakeCatalog) FindByKey(_ context.Context, key string, _ string, _ string) (*model.MediaObject, error) {
	if obj, ok := s.rows[key]; ok {
		return obj, nil
	}
	return nil, nil
}

func (s *fakeCatalog) Save(_ context.Context, obj *model.MediaObject) error {
	s.saves++
	if s.failKeys[obj.StorageKey] {
		return errors.New("duplicate entry")
	}
	obj.ID = uint64(len(s.rows) + 1)
	s.rows[obj.StorageKey] = obj
	return nil
}

type fakeListGateway struct {
	pages map[string]*minio.ListPage
}

func (s *fakeListGateway) List(_ context.Context, _ string, _ string, continuationToken string, _ int) (*minio.ListPage, error) {
	page, ok := s.pages[continuationToken]
	if !ok {
		return &minio.ListPage{}, nil
	}
	return page, nil
}

func (s *fakeListGateway) GetStream(context.Context, string, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeListGateway) PutStream(context.Context, string, string, io.Reader, int64, string) (*minio.PutResult, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeListGateway) Delete(context.Context, string, string) error { return nil }

func (s *fakeListGateway) PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://media.test/%s/%s", bucket, key)
}

func (s *fakeListGateway) MainBucket() string { return "main" }

func buildScenario(t *testing.T) (*fakeCatalog, *fakeListGateway) {
	t.Helper()

	catalog := newFakeCatalog()

	// 两页共 150 个对象，前 100 个已在目录中
	firstPage := &minio.ListPage{NextContinuationToken: "t1"}
	secondPage := &minio.ListPage{}
	for i := 0; i < 150; i++ {
		key := "legacy/" + strconv.Itoa(i) + ".jpg"
		item := minio.ListedObject{Key: key, Size: int64(1000 + i)}
		if i < 75 {
			firstPage.Items = append(firstPage.Items, item)
		} else {
			secondPage.Items = append(secondPage.Items, item)
		}
		if i < 100 {
			catalog.rows[key] = &model.MediaObject{ID: uint64(i + 1), StorageKey: key}
		}
	}

	gateway := &fakeListGateway{pages: map[string]*minio.ListPage{
		"":   firstPage,
		"t1": secondPage,
	}}
	return catalog, gateway
}

func TestMigrateCountsNewAndExisting(t *testing.T) {
	catalog, gateway := buildScenario(t)
	svc := NewMigrationService(catalog, gateway, nil)

	result, err := svc.Migrate(context.Background(), "legacy-bucket", "", "prism", 7)
	require.NoError(t, err)

	assert.Equal(t, 150, result.TotalObjects)
	assert.Equal(t, 100, result.ExistingObjects)
	assert.Equal(t, 50, result.MigratedObjects)
	assert.Equal(t, 0, result.FailedObjects)

	migrated := catalog.rows["legacy/120.jpg"]
	require.NotNil(t, migrated)
	assert.Equal(t, "120.jpg", migrated.OriginalName)
	assert.Equal(t, consts.DestinationUpload, migrated.Destination)
	assert.Equal(t, consts.StatusActive, migrated.Status)
	assert.Equal(t, consts.FileKindImage, migrated.FileKind)
	assert.Equal(t, uint64(7), migrated.UserID)
	require.NotNil(t, migrated.PublicURL)
	assert.Contains(t, *migrated.PublicURL, "legacy/120.jpg")
}

func TestMigrateIsIdempotent(t *testing.T) {
	catalog, gateway := buildScenario(t)
	svc := NewMigrationService(catalog, gateway, nil)

	_, err := svc.Migrate(context.Background(), "legacy-bucket", "", "prism", 7)
	require.NoError(t, err)

	second, err := svc.Migrate(context.Background(), "legacy-bucket", "", "prism", 7)
	require.NoError(t, err)

	assert.Equal(t, 150, second.TotalObjects)
	assert.Equal(t, 150, second.ExistingObjects)
	assert.Equal(t, 0, second.MigratedObjects)
}

func TestMigrateZeroByteObjectsCountAsExisting(t *testing.T) {
	catalog := newFakeCatalog()
	gateway := &fakeListGateway{pages: map[string]*minio.ListPage{
		"": {Items: []minio.ListedObject{
			{Key: "placeholder/", Size: 0},
			{Key: "real/file.mp4", Size: 2048},
		}},
	}}
	svc := NewMigrationService(catalog, gateway, nil)

	result, err := svc.Migrate(context.Background(), "b", "", "prism", 1)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalObjects)
	assert.Equal(t, 1, result.ExistingObjects)
	assert.Equal(t, 1, result.MigratedObjects)
	assert.NotContains(t, catalog.rows, "placeholder/")
}

func TestMigratePerItemFailureDoesNotAbort(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.failKeys["bad/item.jpg"] = true
	gateway := &fakeListGateway{pages: map[string]*minio.ListPage{
		"": {Items: []minio.ListedObject{
			{Key: "ok/a.jpg", Size: 10},
			{Key: "bad/item.jpg", Size: 20},
			{Key: "ok/b.jpg", Size: 30},
		}},
	}}
	svc := NewMigrationService(catalog, gateway, nil)

	result, err := svc.Migrate(context.Background(), "b", "", "prism", 1)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalObjects)
	assert.Equal(t, 2, result.MigratedObjects)
	assert.Equal(t, 1, result.FailedObjects)
	assert.Contains(t, catalog.rows, "ok/b.jpg")
}

func TestMigrateSkipsEmptyKeys(t *testing.T) {
	catalog := newFakeCatalog()
	gateway := &fakeListGateway{pages: map[string]*minio.ListPage{
		"": {Items: []minio.ListedObject{
			{Key: "", Size: 10},
			{Key: "ok/a.jpg", Size: 10},
		}},
	}}
	svc := NewMigrationService(catalog, gateway, nil)

	result, err := svc.Migrate(context.Background(), "b", "", "prism", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalObjects)
	assert.Equal(t, 1, result.MigratedObjects)
}
