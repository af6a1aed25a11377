package catalog

import (
	"strconv"
	"strings"

	"slumberpod/core/apperr"
)

// Scope 列表查询的过滤范围，五种分支互斥
type Scope int

const (
	ScopePublic   Scope = iota // 默认: 全部公开音频
	ScopeCategory              // 指定分类及其直接子分类
	ScopeFree                  // 免费音频
	ScopeMine                  // 我的创作，需要调用者身份
)

// 排序字段白名单。ORDER BY 片段只从这张表取服务端字面量，
// 调用者输入永远不会进入SQL文本。
var orderColumns = map[string]string{
	"play_count":       "play_count",
	"created_at":       "created_at",
	"favorite_count":   "favorite_count",
	"duration_seconds": "duration_seconds",
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// CategoryMine CategoryFree 是 category 参数的两个保留关键字
const (
	CategoryMine = "my_creations"
	CategoryFree = "free"
)

// Filter 原始过滤输入，来自查询参数
type Filter struct {
	Category string // 空 | 数字ID | "my_creations" | "free"
	MineOnly bool   // user_creations=1
	CallerID *int64 // 认证中间件解析出的调用者，匿名为nil
}

// Sort 原始排序输入
type Sort struct {
	Field     string
	Direction string
}

// Page 原始分页输入
type Page struct {
	Limit  int
	Offset int
}

// Query 归一化后的查询计划。所有字段都已经过白名单/夹取处理，
// 可以安全地交给仓库层拼装SQL。
type Query struct {
	Scope       Scope
	CategoryID  int64   // Scope==ScopeCategory 时有效
	CategoryIDs []int64 // 分类闭包解析结果，由Service填充
	CallerID    int64   // Scope==ScopeMine 时有效
	OrderColumn string  // 白名单字面量
	OrderDesc   bool
	Limit       int
	Offset      int
}

// BuildQuery 把原始输入归一化为查询计划。
// 纯函数，不触数据库；分类闭包由Service另行解析。
func BuildQuery(f Filter, s Sort, p Page) (*Query, error) {
	q := &Query{}

	switch {
	case f.Category == CategoryMine || f.MineOnly:
		if f.CallerID == nil {
			return nil, apperr.AuthRequired("login required to list your creations")
		}
		q.Scope = ScopeMine
		q.CallerID = *f.CallerID
	case f.Category == CategoryFree:
		q.Scope = ScopeFree
	case f.Category != "":
		id, err := strconv.ParseInt(f.Category, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperr.InvalidParam("invalid category id")
		}
		q.Scope = ScopeCategory
		q.CategoryID = id
	default:
		q.Scope = ScopePublic
	}

	// 不在白名单内的排序字段静默退回 play_count
	col, ok := orderColumns[s.Field]
	if !ok {
		col = "play_count"
	}
	q.OrderColumn = col
	q.OrderDesc = !strings.EqualFold(s.Direction, "ASC")

	q.Limit = clampLimit(p.Limit)
	q.Offset = p.Offset
	if q.Offset < 0 {
		q.Offset = 0
	}

	return q, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// DefaultLimit 查询参数缺省时使用的每页大小
func DefaultLimit() int {
	return defaultLimit
}
