package repository

import (
	"strings"
	"testing"

	"slumberpod/core/catalog"
)

func TestBuildListQueryPublic(t *testing.T) {
	q := &catalog.Query{Scope: catalog.ScopePublic, OrderColumn: "play_count", OrderDesc: true, Limit: 20, Offset: 0}
	query, args := buildListQuery(q)

	if !strings.Contains(query, "WHERE is_public = 1") {
		t.Errorf("public scope must filter is_public, got: %s", query)
	}
	if !strings.Contains(query, "ORDER BY play_count DESC") {
		t.Errorf("expected ORDER BY play_count DESC, got: %s", query)
	}
	if !strings.HasSuffix(query, "LIMIT ? OFFSET ?") {
		t.Errorf("pagination must be parameterized, got: %s", query)
	}
	if len(args) != 2 || args[0] != 20 || args[1] != 0 {
		t.Errorf("expected args [20 0], got %v", args)
	}
}

func TestBuildListQueryMine(t *testing.T) {
	q := &catalog.Query{Scope: catalog.ScopeMine, CallerID: 7, OrderColumn: "created_at", OrderDesc: true, Limit: 10, Offset: 20}
	query, args := buildListQuery(q)

	if !strings.Contains(query, "WHERE user_id = ? AND is_user_creation = 1") {
		t.Errorf("mine scope must filter by owner, got: %s", query)
	}
	if len(args) != 3 || args[0] != int64(7) {
		t.Errorf("expected caller id as first arg, got %v", args)
	}
}

func TestBuildListQueryFree(t *testing.T) {
	q := &catalog.Query{Scope: catalog.ScopeFree, OrderColumn: "play_count", OrderDesc: true, Limit: 20}
	query, _ := buildListQuery(q)

	if !strings.Contains(query, "WHERE is_free = 1 AND is_public = 1") {
		t.Errorf("free scope must require both flags, got: %s", query)
	}
}

func TestBuildListQueryCategoryClosure(t *testing.T) {
	q := &catalog.Query{
		Scope:       catalog.ScopeCategory,
		CategoryIDs: []int64{5, 8, 9},
		OrderColumn: "favorite_count",
		OrderDesc:   false,
		Limit:       20,
		Offset:      0,
	}
	query, args := buildListQuery(q)

	if !strings.Contains(query, "category_id IN (?,?,?)") {
		t.Errorf("closure ids must be placeholders, got: %s", query)
	}
	if !strings.Contains(query, "AND is_public = 1") {
		t.Errorf("category scope must still require public, got: %s", query)
	}
	if !strings.Contains(query, "ORDER BY favorite_count ASC") {
		t.Errorf("expected ascending favorite_count order, got: %s", query)
	}
	// 3个分类ID + limit + offset
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %v", args)
	}
	if args[0] != int64(5) || args[1] != int64(8) || args[2] != int64(9) {
		t.Errorf("closure ids out of order: %v", args)
	}
}

func TestBuildListQueryNeverEmbedsCallerInput(t *testing.T) {
	// OrderColumn 只能来自白名单字面量；这里模拟归一化后的合法计划，
	// 断言最终SQL除ORDER BY方向外不含任何拼接的调用者数据。
	q := &catalog.Query{Scope: catalog.ScopeCategory, CategoryIDs: []int64{1}, OrderColumn: "play_count", OrderDesc: true, Limit: 1, Offset: 0}
	query, _ := buildListQuery(q)

	for _, tok := range []string{"'", "--", ";"} {
		if strings.Contains(query, tok) {
			t.Errorf("query text must not contain %q, got: %s", tok, query)
		}
	}
}
