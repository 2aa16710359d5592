package minio

import (
	"fmt"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type poolKey struct {
	endpoint  string
	accessKey string
}

// ClientPool 按 (endpoint, accessKey) 缓存 MinIO 客户端，
// 客户端构造一次后并发复用，不再使用包级全局变量
type ClientPool struct {
	mu      sync.Mutex
	clients map[poolKey]*minio.Core
}

func NewClientPool() *ClientPool {
	return &ClientPool{
		clients: make(map[poolKey]*minio.Core),
	}
}

// Get 获取或创建客户端
func (p *ClientPool) Get(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Core, error) {
	key := poolKey{endpoint: endpoint, accessKey: accessKey}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[key]; ok {
		return client, nil
	}

	client, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	p.clients[key] = client
	return client, nil
}
