package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	recentPlayMax = 50
	recentPlayTTL = 7 * 24 * time.Hour
)

// RecentPlayCache 记录每个用户最近播放过的音频ID，
// 有序集合分数为播放时间戳。
type RecentPlayCache struct {
	rdb *redis.Client
}

// NewRecentPlayCache 创建最近播放缓存
func NewRecentPlayCache(rdb *redis.Client) *RecentPlayCache {
	return &RecentPlayCache{rdb: rdb}
}

func recentPlayKey(userID int64) string {
	return fmt.Sprintf("recent:play:%d", userID)
}

// Add 记录一次播放
func (c *RecentPlayCache) Add(ctx context.Context, userID, audioID int64) error {
	key := recentPlayKey(userID)

	err := c.rdb.ZAdd(ctx, key, &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: strconv.FormatInt(audioID, 10),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add recent play: %w", err)
	}

	if err := c.rdb.ZRemRangeByRank(ctx, key, 0, int64(-recentPlayMax-1)).Err(); err != nil {
		return fmt.Errorf("failed to trim recent plays: %w", err)
	}

	if err := c.rdb.Expire(ctx, key, recentPlayTTL).Err(); err != nil {
		return fmt.Errorf("failed to set recent play expiration: %w", err)
	}
	return nil
}

// List 按播放时间倒序返回最近播放的音频ID
func (c *RecentPlayCache) List(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if limit <= 0 || limit > recentPlayMax {
		limit = recentPlayMax
	}

	members, err := c.rdb.ZRevRange(ctx, recentPlayKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		if err == redis.Nil {
			return []int64{}, nil
		}
		return nil, fmt.Errorf("failed to get recent plays: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
