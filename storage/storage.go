package storage

import (
	"context"
	"fmt"
	"io"

	"slumberpod/config"
)

// ObjectStore 对象存储抽象。核心业务只持有解析出的URL字符串，
// 上传/删除细节由具体后端实现。
type ObjectStore interface {
	// Upload 上传对象并返回可公开访问的URL
	Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error)
	// Remove 根据对象路径或公开URL删除对象
	Remove(ctx context.Context, objectPath string) error
}

// New 根据配置选择存储后端: supabase(默认) 或自托管 minio
func New(cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageBackend {
	case "supabase", "":
		return NewSupabaseStore(cfg)
	case "minio":
		return NewMinioStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
