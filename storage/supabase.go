package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	storage_go "github.com/supabase-community/storage-go"

	"slumberpod/config"
)

// SupabaseStore 基于 Supabase Storage 的对象存储
type SupabaseStore struct {
	client  *storage_go.Client
	baseURL string
	key     string
	bucket  string
	httpc   *http.Client
}

// NewSupabaseStore 创建Supabase存储客户端
func NewSupabaseStore(cfg *config.Config) (*SupabaseStore, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be configured")
	}

	baseURL := strings.TrimRight(cfg.SupabaseURL, "/")
	client := storage_go.NewClient(baseURL+"/storage/v1", cfg.SupabaseKey, nil)

	return &SupabaseStore{
		client:  client,
		baseURL: baseURL,
		key:     cfg.SupabaseKey,
		bucket:  cfg.SupabaseBucket,
		httpc:   &http.Client{},
	}, nil
}

// Upload 上传对象到 bucket 并返回公开URL
func (s *SupabaseStore) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error) {
	options := storage_go.FileOptions{
		ContentType: &contentType,
	}

	if _, err := s.client.UploadFile(s.bucket, objectPath, r, options); err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
	return publicURL, nil
}

// Remove 删除对象。objectPath 可以是对象路径，也可以是 Upload 返回的公开URL。
func (s *SupabaseStore) Remove(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return nil
	}

	bucket := s.bucket
	object := objectPath
	// 公开URL形如 .../storage/v1/object/public/<bucket>/<path>
	if idx := strings.Index(objectPath, "/storage/v1/object/"); idx != -1 {
		rest := strings.TrimPrefix(objectPath[idx+len("/storage/v1/object/"):], "public/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) < 2 {
			return fmt.Errorf("cannot parse bucket/object from URL: %s", objectPath)
		}
		bucket = parts[0]
		object = parts[1]
		if qIdx := strings.Index(object, "?"); qIdx != -1 {
			object = object[:qIdx]
		}
	}

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, object)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete supabase object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to delete supabase object: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
