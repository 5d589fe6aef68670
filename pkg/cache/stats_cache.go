package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"study_tracker_backend/internal/model"
	"study_tracker_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "study_tracker:stats:"

// RedisStatsCache 按用户缓存统计结果，写操作后由服务层显式失效
type RedisStatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatsCache(rdb *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{rdb: rdb, ttl: ttl}
}

func statsKey(userID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Get 缓存不可用时视为未命中
func (c *RedisStatsCache) Get(ctx context.Context, userID uint) (*model.StatsOverview, bool) {
	raw, err := c.rdb.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("stats cache get failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		return nil, false
	}

	overview, err := decodeOverview(raw)
	if err != nil {
		logger.Log.Warn("stats cache entry corrupt", zap.Uint("user_id", userID), zap.Error(err))
		return nil, false
	}
	return overview, true
}

func (c *RedisStatsCache) Set(ctx context.Context, userID uint, overview *model.StatsOverview) {
	raw, err := encodeOverview(overview)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, statsKey(userID), raw, c.ttl).Err(); err != nil {
		logger.Log.Warn("stats cache set failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (c *RedisStatsCache) Invalidate(ctx context.Context, userID uint) {
	if err := c.rdb.Del(ctx, statsKey(userID)).Err(); err != nil {
		logger.Log.Warn("stats cache invalidate failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func encodeOverview(overview *model.StatsOverview) ([]byte, error) {
	return json.Marshal(overview)
}

func decodeOverview(raw []byte) (*model.StatsOverview, error) {
	var overview model.StatsOverview
	if err := json.Unmarshal(raw, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}
