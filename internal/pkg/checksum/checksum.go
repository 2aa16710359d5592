package checksum

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

// Algorithm 摘要算法
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// Digest 对流做增量摘要并返回十六进制结果，内存占用与对象大小无关
func Digest(reader io.Reader, algorithm Algorithm) (string, error) {
	var h hash.Hash
	switch algorithm {
	case SHA256:
		h = sha256.New()
	case SHA512:
		h = sha512.New()
	default:
		return "", fmt.Errorf("unsupported digest algorithm: %s", algorithm)
	}

	if _, err := io.Copy(h, reader); err != nil {
		return "", fmt.Errorf("stream read failed during digest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NewHasher 返回可边写边算的 hash.Hash，供上传路径 TeeReader 使用
func NewHasher(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm: %s", algorithm)
	}
}
