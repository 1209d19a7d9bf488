package pricing

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache 用 Redis hash 共享参考价，可让轮询进程与报价进程分开部署。
// key "refprice:{symbol}"，字段 price / ts（Unix 纳秒）。
// 读失败一律当作未命中：瞬时故障 ⇒ 本周期跳过，不致命。
type RedisCache struct {
	rdb    *redis.Client
	maxAge time.Duration
	log    *zap.Logger
}

func NewRedisCache(rdb *redis.Client, maxAge time.Duration, log *zap.Logger) *RedisCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCache{rdb: rdb, maxAge: maxAge, log: log}
}

func refPriceKey(symbol string) string {
	return "refprice:" + symbol
}

func (c *RedisCache) Get(symbol string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	vals, err := c.rdb.HGetAll(ctx, refPriceKey(symbol)).Result()
	if err != nil {
		c.log.Warn("redis price read failed", zap.String("symbol", symbol), zap.Error(err))
		return 0, false
	}
	if len(vals) == 0 {
		return 0, false
	}
	price, err := strconv.ParseFloat(vals["price"], 64)
	if err != nil {
		return 0, false
	}
	if c.maxAge > 0 {
		tsNano, err := strconv.ParseInt(vals["ts"], 10, 64)
		if err != nil {
			return 0, false
		}
		if time.Since(time.Unix(0, tsNano)) > c.maxAge {
			return 0, false
		}
	}
	return price, true
}

func (c *RedisCache) Set(symbol string, price float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fields := map[string]interface{}{
		"price": strconv.FormatFloat(price, 'f', -1, 64),
		"ts":    strconv.FormatInt(time.Now().UnixNano(), 10),
	}
	if err := c.rdb.HSet(ctx, refPriceKey(symbol), fields).Err(); err != nil {
		c.log.Warn("redis price write failed", zap.String("symbol", symbol), zap.Error(err))
	}
}

var _ Cache = (*RedisCache)(nil)
