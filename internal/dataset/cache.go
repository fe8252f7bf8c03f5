package dataset

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"realm-map/internal/logger"
	"realm-map/internal/metrics"
)

// 文档注释：Redis 响应体缓存
// 背景：多实例部署时避免每个实例都回源拉取大体积边界文件；命中直接返回缓存字节。
// 约束：
// 1) 只由 Loader 在解析成功后写入，异常页面或截断响应不会进入缓存；
// 2) 命中但解析失败的字节由 Loader 调用 Drop 删除后回源；
// 3) 接收者或 rc 为 nil 时所有操作为空操作；Redis 异常只记日志不阻断。
type BodyCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewBodyCache(rc *redis.Client, ttl time.Duration) *BodyCache {
	if rc == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &BodyCache{rc: rc, ttl: ttl}
}

func cacheKey(location string) string { return "realms:body:" + location }

// Get：返回缓存字节；未命中或出错时 ok=false
func (c *BodyCache) Get(ctx context.Context, location string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rc.Get(ctx, cacheKey(location)).Bytes()
	switch {
	case err == nil && len(b) > 0:
		metrics.RedisHitsTotal.Inc()
		logger.L().Debug("dataset_cache_hit", "key", cacheKey(location), "bytes", len(b))
		return b, true
	case err != nil && !errors.Is(err, redis.Nil):
		logger.L().Error("dataset_cache_get_error", "err", err)
	}
	metrics.RedisMissesTotal.Inc()
	return nil, false
}

// Put：写入已通过解析的响应体
func (c *BodyCache) Put(ctx context.Context, location string, b []byte) {
	if c == nil {
		return
	}
	if err := c.rc.Set(ctx, cacheKey(location), b, c.ttl).Err(); err != nil {
		logger.L().Error("dataset_cache_set_error", "err", err)
	}
}

// Drop：删除无法解析的缓存条目
func (c *BodyCache) Drop(ctx context.Context, location string) {
	if c == nil {
		return
	}
	if err := c.rc.Del(ctx, cacheKey(location)).Err(); err != nil {
		logger.L().Error("dataset_cache_del_error", "err", err)
		return
	}
	logger.L().Info("dataset_cache_dropped", "key", cacheKey(location))
}
