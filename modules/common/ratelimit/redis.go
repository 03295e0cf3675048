package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] counter key, ARGV[1] cost, ARGV[2] window ms, ARGV[3] max
var fixedWindowScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
  return 1
end
if tonumber(current) + tonumber(ARGV[1]) > tonumber(ARGV[3]) then
  return 0
end
redis.call('INCRBY', KEYS[1], ARGV[1])
return 1
`)

// Redis - 여러 인스턴스가 공유하는 리미터
// 카운터 키의 TTL 이 윈도우 종료 시점이 된다.
type Redis struct {
	rdb    redis.Scripter
	prefix string
	policy Policy
}

// NewRedis - Redis 리미터 생성 (prefix 예: "ratelimit:synthesize")
func NewRedis(rdb redis.Scripter, prefix string, policy Policy) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, policy: policy}
}

func (r *Redis) Window() time.Duration { return r.policy.Window }

func (r *Redis) Allow(ctx context.Context, key string, cost int) (bool, error) {
	if cost <= 0 {
		cost = 1
	}
	redisKey := fmt.Sprintf("%s:%s", r.prefix, key)

	allowed, err := fixedWindowScript.Run(ctx, r.rdb, []string{redisKey},
		cost, r.policy.Window.Milliseconds(), r.policy.Max).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script failed: %w", err)
	}
	return allowed == 1, nil
}
