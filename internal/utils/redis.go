// 包 utils：外部依赖（PostgreSQL/Redis/TLS）的环境变量化初始化
package utils

import (
	"os"

	"github.com/redis/go-redis/v9"

	"realm-map/internal/logger"
)

// 文档注释：从环境变量打开 Redis 客户端
// 约束：REDIS_HOST 为空时返回 nil（数据集缓存透传）；REDIS_DB 解析失败回退 0。
func OpenRedisFromEnv() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	addr := host + ":" + envOr("REDIS_PORT", "6379")
	db := envInt("REDIS_DB", 0)
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
