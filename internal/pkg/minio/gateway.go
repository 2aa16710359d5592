package minio

import (
	"Prism/internal/api/config"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
)

// ErrObjectNotFound 对象不存在
var ErrObjectNotFound = errors.New("object not found in store")

const (
	// DefaultPageSize 未指定分页大小时的默认值
	DefaultPageSize = 100
	// MaxPageSize 单页上限
	MaxPageSize = 1000
)

// ListedObject 列举结果中的单个条目
type ListedObject struct {
	Key          string
	Size         int64
	LastModified time.Time
	StorageClass string
}

// ListPage 一页列举结果，NextContinuationToken 为空表示已到末尾
type ListPage struct {
	Items                 []ListedObject
	NextContinuationToken string
}

// PutResult 上传结果
type PutResult struct {
	URL  string
	Size int64
}

// Gateway 对象存储网关，持有客户端池
type Gateway struct {
	pool *ClientPool
	cfg  config.MinIOConfig
}

func NewGateway(cfg config.MinIOConfig) (*Gateway, error) {
	g := &Gateway{
		pool: NewClientPool(),
		cfg:  cfg,
	}

	client, err := g.client()
	if err != nil {
		return nil, err
	}

	// 连通性检查
	if _, err = client.ListBuckets(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to minio server: %w", err)
	}
	return g, nil
}

// MainBucket 主存储桶名
func (g *Gateway) MainBucket() string {
	return g.cfg.MainBucket
}

func (g *Gateway) client() (*minio.Core, error) {
	endpoint := g.cfg.ExternalEndpoint
	useSSL := g.cfg.ExternalUseSSL
	if g.cfg.InternalEndpoint != "" {
		endpoint = g.cfg.InternalEndpoint
		useSSL = g.cfg.InternalUseSSL
	}
	return g.pool.Get(endpoint, g.cfg.AccessKey, g.cfg.SecretKey, useSSL)
}

// List 按续传令牌分页列举对象，纯分页封装，不做客户端过滤
func (g *Gateway) List(ctx context.Context, bucket, prefix, continuationToken string, pageSize int) (*ListPage, error) {
	pageSize = ClampPageSize(pageSize)

	client, err := g.client()
	if err != nil {
		return nil, err
	}

	result, err := client.ListObjectsV2(bucket, prefix, "", continuationToken, "", pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	page := &ListPage{
		Items: make([]ListedObject, 0, len(result.Contents)),
	}
	for _, obj := range result.Contents {
		page.Items = append(page.Items, ListedObject{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			StorageClass: obj.StorageClass,
		})
	}
	if result.IsTruncated {
		page.NextContinuationToken = result.NextContinuationToken
	}
	return page, nil
}

// GetStream 以流式方式读取对象，对象不存在时返回 ErrObjectNotFound
func (g *Gateway) GetStream(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	client, err := g.client()
	if err != nil {
		return nil, err
	}

	reader, _, _, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	return reader, nil
}

// PutStream 以流式方式写入对象，size 未知时传 -1
func (g *Gateway) PutStream(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) (*PutResult, error) {
	client, err := g.client()
	if err != nil {
		return nil, err
	}

	uploadInfo, err := client.Client.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object %q: %w", key, err)
	}

	return &PutResult{
		URL:  g.PublicURL(bucket, uploadInfo.Key),
		Size: uploadInfo.Size,
	}, nil
}

// Delete 删除对象
func (g *Gateway) Delete(ctx context.Context, bucket, key string) error {
	client, err := g.client()
	if err != nil {
		return err
	}

	if err = client.Client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

// PublicURL 拼接公共访问URL
func (g *Gateway) PublicURL(bucket, key string) string {
	protocol := "http"
	if g.cfg.ExternalUseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, g.cfg.ExternalEndpoint, bucket, key)
}

// ClampPageSize 将分页大小收敛到 [1, MaxPageSize]，缺省为 DefaultPageSize
func ClampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	if pageSize > MaxPageSize {
		return MaxPageSize
	}
	return pageSize
}
