package catalog_test

import (
	"context"
	"testing"

	"slumberpod/core/apperr"
	"slumberpod/core/catalog"
	"slumberpod/model"
)

func TestBuildQueryDefaults(t *testing.T) {
	q, err := catalog.BuildQuery(catalog.Filter{}, catalog.Sort{}, catalog.Page{Limit: catalog.DefaultLimit()})
	if err != nil {
		t.Fatalf("BuildQuery returned error: %v", err)
	}
	if q.Scope != catalog.ScopePublic {
		t.Errorf("empty filter must resolve to public scope, got %v", q.Scope)
	}
	if q.OrderColumn != "play_count" || !q.OrderDesc {
		t.Errorf("default sort must be play_count DESC, got %s desc=%v", q.OrderColumn, q.OrderDesc)
	}
	if q.Limit != 20 || q.Offset != 0 {
		t.Errorf("expected limit 20 offset 0, got %d/%d", q.Limit, q.Offset)
	}
}

func TestBuildQuerySortAllowList(t *testing.T) {
	cases := []struct {
		field string
		want  string
	}{
		{"created_at", "created_at"},
		{"favorite_count", "favorite_count"},
		{"duration_seconds", "duration_seconds"},
		{"play_count", "play_count"},
		// 不认识的字段静默退回默认，绝不进入SQL文本
		{"title; DROP TABLE audios", "play_count"},
		{"rand()", "play_count"},
		{"", "play_count"},
	}
	for _, c := range cases {
		q, err := catalog.BuildQuery(catalog.Filter{}, catalog.Sort{Field: c.field}, catalog.Page{Limit: 10})
		if err != nil {
			t.Fatalf("field %q: unexpected error: %v", c.field, err)
		}
		if q.OrderColumn != c.want {
			t.Errorf("field %q: expected column %q, got %q", c.field, c.want, q.OrderColumn)
		}
	}
}

func TestBuildQuerySortDirection(t *testing.T) {
	q, _ := catalog.BuildQuery(catalog.Filter{}, catalog.Sort{Field: "created_at", Direction: "asc"}, catalog.Page{Limit: 10})
	if q.OrderDesc {
		t.Errorf("asc (any case) must produce ascending order")
	}
	q, _ = catalog.BuildQuery(catalog.Filter{}, catalog.Sort{Field: "created_at", Direction: "descending; --"}, catalog.Page{Limit: 10})
	if !q.OrderDesc {
		t.Errorf("anything but ASC must fall back to DESC")
	}
}

func TestBuildQueryPagination(t *testing.T) {
	q, _ := catalog.BuildQuery(catalog.Filter{}, catalog.Sort{}, catalog.Page{Limit: 0, Offset: -5})
	if q.Limit != 1 || q.Offset != 0 {
		t.Errorf("limit/offset must clamp to 1/0, got %d/%d", q.Limit, q.Offset)
	}
	q, _ = catalog.BuildQuery(catalog.Filter{}, catalog.Sort{}, catalog.Page{Limit: 500, Offset: 40})
	if q.Limit != 100 || q.Offset != 40 {
		t.Errorf("limit must clamp to 100, got %d/%d", q.Limit, q.Offset)
	}
}

func TestBuildQueryCategoryScopes(t *testing.T) {
	q, err := catalog.BuildQuery(catalog.Filter{Category: "42"}, catalog.Sort{}, catalog.Page{Limit: 10})
	if err != nil {
		t.Fatalf("numeric category: %v", err)
	}
	if q.Scope != catalog.ScopeCategory || q.CategoryID != 42 {
		t.Errorf("expected category scope with id 42, got scope %v id %d", q.Scope, q.CategoryID)
	}

	q, err = catalog.BuildQuery(catalog.Filter{Category: catalog.CategoryFree}, catalog.Sort{}, catalog.Page{Limit: 10})
	if err != nil {
		t.Fatalf("free keyword: %v", err)
	}
	if q.Scope != catalog.ScopeFree {
		t.Errorf("expected free scope, got %v", q.Scope)
	}
}

func TestBuildQueryInvalidCategory(t *testing.T) {
	for _, raw := range []string{"abc", "-1", "0", "1 OR 1=1"} {
		_, err := catalog.BuildQuery(catalog.Filter{Category: raw}, catalog.Sort{}, catalog.Page{Limit: 10})
		if err == nil {
			t.Errorf("category %q: expected error", raw)
			continue
		}
		if apperr.KindOf(err) != apperr.KindInvalidParam {
			t.Errorf("category %q: expected invalid param, got kind %v", raw, apperr.KindOf(err))
		}
	}
}

func TestBuildQueryMineRequiresCaller(t *testing.T) {
	_, err := catalog.BuildQuery(catalog.Filter{Category: catalog.CategoryMine}, catalog.Sort{}, catalog.Page{Limit: 10})
	if apperr.KindOf(err) != apperr.KindAuthRequired {
		t.Fatalf("my_creations without caller must require auth, got %v", err)
	}

	_, err = catalog.BuildQuery(catalog.Filter{MineOnly: true}, catalog.Sort{}, catalog.Page{Limit: 10})
	if apperr.KindOf(err) != apperr.KindAuthRequired {
		t.Fatalf("user_creations flag without caller must require auth, got %v", err)
	}

	caller := int64(7)
	q, err := catalog.BuildQuery(catalog.Filter{Category: catalog.CategoryMine, CallerID: &caller}, catalog.Sort{}, catalog.Page{Limit: 10})
	if err != nil {
		t.Fatalf("authenticated caller: %v", err)
	}
	if q.Scope != catalog.ScopeMine || q.CallerID != 7 {
		t.Errorf("expected mine scope for caller 7, got scope %v caller %d", q.Scope, q.CallerID)
	}
}

// fakeAudioStore 记录收到的查询计划
type fakeAudioStore struct {
	lastQuery *catalog.Query
	audios    []*model.Audio
}

func (f *fakeAudioStore) ListAudios(_ context.Context, q *catalog.Query) ([]*model.Audio, error) {
	f.lastQuery = q
	return f.audios, nil
}

type fakeCategoryStore struct {
	closure []int64
	err     error
}

func (f *fakeCategoryStore) ResolveWithChildren(_ context.Context, id int64) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.closure, nil
}

func TestServiceResolvesCategoryClosure(t *testing.T) {
	audios := &fakeAudioStore{audios: []*model.Audio{{ID: 1}}}
	categories := &fakeCategoryStore{closure: []int64{5, 8, 9}}
	svc := catalog.NewService(audios, categories)

	got, err := svc.List(context.Background(), catalog.Filter{Category: "5"}, catalog.Sort{}, catalog.Page{Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 audio, got %d", len(got))
	}
	if audios.lastQuery == nil {
		t.Fatal("store never called")
	}
	if len(audios.lastQuery.CategoryIDs) != 3 {
		t.Errorf("expected closure {5,8,9} passed through, got %v", audios.lastQuery.CategoryIDs)
	}
}

func TestServiceCategoryNotFound(t *testing.T) {
	audios := &fakeAudioStore{}
	categories := &fakeCategoryStore{err: apperr.NotFound("category not found")}
	svc := catalog.NewService(audios, categories)

	_, err := svc.List(context.Background(), catalog.Filter{Category: "99"}, catalog.Sort{}, catalog.Page{Limit: 10})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if audios.lastQuery != nil {
		t.Error("audio store must not be queried when closure resolution fails")
	}
}

func TestServicePublicSkipsClosure(t *testing.T) {
	audios := &fakeAudioStore{}
	categories := &fakeCategoryStore{err: apperr.Dependency(nil)}
	svc := catalog.NewService(audios, categories)

	_, err := svc.List(context.Background(), catalog.Filter{}, catalog.Sort{}, catalog.Page{Limit: 10})
	if err != nil {
		t.Fatalf("public listing must not touch category store: %v", err)
	}
}
