package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slumberpod/core/auth"
	"slumberpod/core/catalog"
	"slumberpod/model"
)

// fakeAudioRepo 只实现测试用到的方法，其余panic以暴露意外调用
type fakeAudioRepo struct {
	audios map[int64]*model.Audio
}

func (f *fakeAudioRepo) Create(ctx context.Context, audio *model.Audio, categoryIDs []int64) (int64, error) {
	panic("not implemented")
}

func (f *fakeAudioRepo) GetByID(ctx context.Context, id int64) (*model.Audio, error) {
	return f.audios[id], nil
}

func (f *fakeAudioRepo) GetByIDs(ctx context.Context, ids []int64) ([]*model.Audio, error) {
	out := make([]*model.Audio, 0, len(ids))
	for _, id := range ids {
		if a, ok := f.audios[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAudioRepo) ListAudios(ctx context.Context, q *catalog.Query) ([]*model.Audio, error) {
	panic("not implemented")
}

func (f *fakeAudioRepo) GetCategoryIDs(ctx context.Context, audioID int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeAudioRepo) IncrementPlayCount(ctx context.Context, id int64) error {
	panic("not implemented")
}

func (f *fakeAudioRepo) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	panic("not implemented")
}

func (f *fakeAudioRepo) Delete(ctx context.Context, id int64) error {
	panic("not implemented")
}

func newTestHandler(audios map[int64]*model.Audio) *APIHandler {
	return NewAPIHandler(Deps{
		AudioRepo: &fakeAudioRepo{audios: audios},
		Tokens:    auth.NewTokenManager("test-secret", time.Hour),
	})
}

func planRequestBody(t *testing.T, ids []int64, mode string, volumes map[string]float64) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(PlanRequest{TrackIDs: ids, Mode: mode, Volumes: volumes})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestPlanPlaybackHandler(t *testing.T) {
	h := newTestHandler(map[int64]*model.Audio{
		1: {ID: 1, Title: "rain", AudioURL: "https://cdn.example.com/rain.mp3", DurationSeconds: 600},
		2: {ID: 2, Title: "waves", AudioURL: "https://cdn.example.com/waves.mp3", DurationSeconds: 480},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/playback/plan",
		planRequestBody(t, []int64{1, 2}, "parallel", nil))
	rec := httptest.NewRecorder()
	h.PlanPlaybackHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Success bool                `json:"success"`
		Data    *model.PlaybackPlan `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !env.Success || env.Data == nil {
		t.Fatal("expected a successful plan response")
	}
	if len(env.Data.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(env.Data.Tracks))
	}
	if env.Data.TotalDuration != 600 {
		t.Errorf("parallel total must be max duration 600, got %v", env.Data.TotalDuration)
	}
	for i, tr := range env.Data.Tracks {
		if tr.Volume != 0.6 {
			t.Errorf("track %d: expected volume 0.6, got %v", i, tr.Volume)
		}
	}
}

func TestPlanPlaybackHandlerMissingTrack(t *testing.T) {
	h := newTestHandler(map[int64]*model.Audio{
		1: {ID: 1, Title: "rain", AudioURL: "https://cdn.example.com/rain.mp3", DurationSeconds: 600},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/playback/plan",
		planRequestBody(t, []int64{1, 999}, "sequential", nil))
	rec := httptest.NewRecorder()
	h.PlanPlaybackHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown track, got %d", rec.Code)
	}
}

func TestPlanPlaybackHandlerInlineTracks(t *testing.T) {
	h := newTestHandler(nil)

	body, err := json.Marshal(PlanRequest{
		Tracks: []InlineTrack{
			{ID: 1, Title: "rain", URL: "https://cdn.example.com/rain.mp3", DurationSeconds: 120},
			{ID: 2, Title: "wind", URL: "https://cdn.example.com/wind.mp3", DurationSeconds: 90},
		},
		Mode: "sequential",
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/playback/plan", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	h.PlanPlaybackHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for inline tracks, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data *model.PlaybackPlan `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if env.Data.TotalDuration != 210 {
		t.Errorf("sequential inline total must be 210, got %v", env.Data.TotalDuration)
	}
}

func TestPlanPlaybackHandlerEmptyTracks(t *testing.T) {
	h := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/playback/plan",
		planRequestBody(t, nil, "parallel", nil))
	rec := httptest.NewRecorder()
	h.PlanPlaybackHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty track list, got %d", rec.Code)
	}
}

func TestPlanPlaybackHandlerBadVolumeKey(t *testing.T) {
	h := newTestHandler(map[int64]*model.Audio{
		1: {ID: 1, AudioURL: "https://cdn.example.com/a.mp3", DurationSeconds: 60},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/playback/plan",
		planRequestBody(t, []int64{1}, "sequential", map[string]float64{"abc": 0.5}))
	rec := httptest.NewRecorder()
	h.PlanPlaybackHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric volume key, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestHandler(nil)

	var gotUserID int64
	protected := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("user id missing from context: %v", err)
		}
		gotUserID = id
		w.WriteHeader(http.StatusOK)
	})

	// 无token
	rec := httptest.NewRecorder()
	protected(rec, httptest.NewRequest(http.MethodGet, "/api/favorites", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	// 错误token
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	protected(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}

	// 有效token
	token, err := h.tokens.GenerateToken(42, "nightowl")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d", rec.Code)
	}
	if gotUserID != 42 {
		t.Errorf("expected user id 42 in context, got %d", gotUserID)
	}
}
