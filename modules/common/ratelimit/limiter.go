// Package ratelimit implements fixed-window request limiting keyed by client id.
//
// A window starts on the first request for a key. Within the window a request
// of the given cost is admitted only while count+cost stays within the maximum;
// a rejected request leaves the counter untouched. Once the window elapses the
// next request starts a new window with count = cost.
package ratelimit

import (
	"context"
	"time"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/logger"
)

// Limiter - 고정 윈도우 레이트 리미터
type Limiter interface {
	Allow(ctx context.Context, key string, cost int) (bool, error)
	Window() time.Duration
}

// Policy - 윈도우 길이와 최대 허용량
type Policy struct {
	Window time.Duration
	Max    int
}

// Enforce - Allow 를 호출하고 거부되면 RateLimitExceeded 에러 반환
// 저장소 에러는 경고만 남기고 요청을 통과시킨다 (fail-open).
func Enforce(ctx context.Context, lim Limiter, key string, cost int) error {
	allowed, err := lim.Allow(ctx, key, cost)
	if err != nil {
		logger.For("ratelimit").WithError(err).WithField("client", key).
			Warn("⚠️  rate limiter unavailable, allowing request")
		return nil
	}
	if !allowed {
		return apperror.RateLimited(lim.Window())
	}
	return nil
}
