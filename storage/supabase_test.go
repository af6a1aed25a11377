package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"slumberpod/config"
)

func newTestSupabaseStore(t *testing.T, handler http.HandlerFunc) *SupabaseStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewSupabaseStore(&config.Config{
		SupabaseURL:    srv.URL,
		SupabaseKey:    "test-key",
		SupabaseBucket: "uploads",
	})
	if err != nil {
		t.Fatalf("NewSupabaseStore returned error: %v", err)
	}
	return store
}

func TestSupabaseRemoveByObjectPath(t *testing.T) {
	var gotPath, gotAuth string
	store := newTestSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	if err := store.Remove(context.Background(), "uploads/7/abc.mp3"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if gotPath != "/storage/v1/object/uploads/uploads/7/abc.mp3" {
		t.Errorf("unexpected delete path: %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
}

func TestSupabaseRemoveByPublicURL(t *testing.T) {
	var gotPath string
	store := newTestSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	// Upload 返回的公开URL应能直接用于删除，bucket和对象路径从URL解析
	publicURL := store.baseURL + "/storage/v1/object/public/covers/uploads/7/cover.png?width=300"
	if err := store.Remove(context.Background(), publicURL); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if gotPath != "/storage/v1/object/covers/uploads/7/cover.png" {
		t.Errorf("unexpected delete path: %s", gotPath)
	}
}

func TestSupabaseRemoveEmptyPathIsNoop(t *testing.T) {
	called := false
	store := newTestSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if err := store.Remove(context.Background(), ""); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if called {
		t.Error("empty path must not hit the API")
	}
}

func TestSupabaseRemoveReportsFailure(t *testing.T) {
	store := newTestSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if err := store.Remove(context.Background(), "uploads/missing.mp3"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNewSupabaseStoreRequiresConfig(t *testing.T) {
	if _, err := NewSupabaseStore(&config.Config{}); err == nil {
		t.Fatal("expected error when url/key missing")
	}
}
