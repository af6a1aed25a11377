package config_test

import (
	"os"
	"testing"

	"slumberpod/config"
)

// unsetEnv 删除环境变量，测试结束后由 t.Setenv 注册的清理恢复原值
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_HOST", "REDIS_PORT", "MINIO_BUCKET"} {
		unsetEnv(t, key)
	}
	cfg := config.Load()

	if cfg.DBHost != "127.0.0.1" {
		t.Errorf("expected default db host 127.0.0.1, got %s", cfg.DBHost)
	}
	if cfg.RedisPort != "6379" {
		t.Errorf("expected default redis port 6379, got %s", cfg.RedisPort)
	}
	if cfg.MinioBucket != "slumberpod" {
		t.Errorf("expected default minio bucket slumberpod, got %s", cfg.MinioBucket)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_NAME", "slumberpod_test")
	t.Setenv("TOKEN_TTL_HOURS", "24")
	t.Setenv("STORAGE_BACKEND", "minio")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := config.Load()

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("expected HTTP addr :9090, got %s", cfg.HTTPAddr)
	}
	if cfg.DBName != "slumberpod_test" {
		t.Errorf("expected db name slumberpod_test, got %s", cfg.DBName)
	}
	if cfg.TokenTTLHours != 24 {
		t.Errorf("expected token ttl 24, got %d", cfg.TokenTTLHours)
	}
	if cfg.StorageBackend != "minio" {
		t.Errorf("expected storage backend minio, got %s", cfg.StorageBackend)
	}
	if !cfg.MinioUseSSL {
		t.Error("expected minio ssl enabled")
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("TOKEN_TTL_HOURS", "not-a-number")
	t.Setenv("REDIS_DB", "3")

	cfg := config.Load()

	if cfg.TokenTTLHours != 72 {
		t.Errorf("bad int must fall back to 72, got %d", cfg.TokenTTLHours)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.RedisDB)
	}
}
