package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	searchHistoryMax = 50
	searchHistoryTTL = 30 * 24 * time.Hour
)

// SearchHistoryCache 用有序集合保存每个用户的搜索历史，
// 分数为搜索时间戳，重复搜索只刷新分数。
type SearchHistoryCache struct {
	rdb *redis.Client
}

// NewSearchHistoryCache 创建搜索历史缓存
func NewSearchHistoryCache(rdb *redis.Client) *SearchHistoryCache {
	return &SearchHistoryCache{rdb: rdb}
}

func searchHistoryKey(userID int64) string {
	return fmt.Sprintf("search:history:%d", userID)
}

// Add 记录一次搜索，超出上限时淘汰最旧的记录
func (c *SearchHistoryCache) Add(ctx context.Context, userID int64, keyword string) error {
	key := searchHistoryKey(userID)

	err := c.rdb.ZAdd(ctx, key, &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: keyword,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add search history: %w", err)
	}

	// 只保留最近 searchHistoryMax 条
	if err := c.rdb.ZRemRangeByRank(ctx, key, 0, int64(-searchHistoryMax-1)).Err(); err != nil {
		return fmt.Errorf("failed to trim search history: %w", err)
	}

	if err := c.rdb.Expire(ctx, key, searchHistoryTTL).Err(); err != nil {
		return fmt.Errorf("failed to set search history expiration: %w", err)
	}
	return nil
}

// List 按时间倒序返回最近的搜索词
func (c *SearchHistoryCache) List(ctx context.Context, userID int64, limit int) ([]string, error) {
	if limit <= 0 || limit > searchHistoryMax {
		limit = searchHistoryMax
	}

	words, err := c.rdb.ZRevRange(ctx, searchHistoryKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		if err == redis.Nil {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get search history: %w", err)
	}
	return words, nil
}

// Remove 删除单条搜索记录
func (c *SearchHistoryCache) Remove(ctx context.Context, userID int64, keyword string) error {
	if err := c.rdb.ZRem(ctx, searchHistoryKey(userID), keyword).Err(); err != nil {
		return fmt.Errorf("failed to remove search history entry: %w", err)
	}
	return nil
}

// Clear 清空用户的搜索历史
func (c *SearchHistoryCache) Clear(ctx context.Context, userID int64) error {
	if err := c.rdb.Del(ctx, searchHistoryKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}
