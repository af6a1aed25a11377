package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"slumberpod/core/apperr"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return env
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(rec, http.StatusCreated, map[string]int{"id": 1}, "created")

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected json content type, got %s", got)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("expected success=true")
	}
	if env.Message != "created" {
		t.Errorf("expected message %q, got %q", "created", env.Message)
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.AuthRequired("login required"), http.StatusUnauthorized},
		{apperr.Forbidden("not yours"), http.StatusForbidden},
		{apperr.NotFound("missing"), http.StatusNotFound},
		{apperr.InvalidParam("bad id"), http.StatusBadRequest},
		{apperr.Validation("bad body"), http.StatusBadRequest},
		{apperr.Conflict("duplicate"), http.StatusConflict},
		{apperr.Dependency(errors.New("mysql: gone away")), http.StatusInternalServerError},
		{errors.New("raw error"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, c.err)
		if rec.Code != c.status {
			t.Errorf("%v: expected status %d, got %d", c.err, c.status, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Success {
			t.Errorf("%v: expected success=false", c.err)
		}
	}
}

// 依赖错误绝不把驱动细节回传给客户端
func TestWriteErrorHidesDependencyDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperr.Dependency(errors.New("dial tcp 127.0.0.1:3306: connection refused")))

	env := decodeEnvelope(t, rec)
	if env.Error != "internal server error" {
		t.Errorf("dependency errors must return a generic message, got %q", env.Error)
	}
}
