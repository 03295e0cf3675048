package provider

import (
	"context"
	"fmt"
	"time"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/model"
)

// Client - submit 후 완료될 때까지 폴링
type Client struct {
	provider    Provider
	interval    time.Duration
	maxAttempts int
}

// NewClient - 폴링 간격과 최대 시도 횟수로 Client 생성
func NewClient(p Provider, interval time.Duration, maxAttempts int) *Client {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	return &Client{provider: p, interval: interval, maxAttempts: maxAttempts}
}

// ProviderName - 사용 중인 프로바이더 이름
func (c *Client) ProviderName() string { return c.provider.Name() }

// IsDemo - 데모 프로바이더 여부
func (c *Client) IsDemo() bool {
	_, ok := c.provider.(*Demo)
	return ok
}

// Synthesize - 작업 제출 후 결과 반환 (동기 응답이면 바로 반환)
func (c *Client) Synthesize(ctx context.Context, prompt string, images []string, opts Options) (*model.SynthesisResult, error) {
	log := logger.For("provider").WithField("provider", c.provider.Name())

	handle, err := c.provider.Submit(ctx, prompt, images, opts.withDefaults())
	if err != nil {
		return nil, err
	}
	if handle.Result != nil {
		log.Debug("✅ Provider answered synchronously")
		return handle.Result, nil
	}

	log = log.WithField("request_id", handle.RequestID)
	log.Info("⏳ Job submitted, polling for result")

	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		status, err := c.PollStatus(ctx, handle)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case StatusCompleted:
			if status.Result == nil {
				return nil, apperror.New(apperror.KindProviderFailure, "provider completed without a result")
			}
			log.WithField("attempt", attempt).Info("✅ Job completed")
			return status.Result, nil
		case StatusFailed:
			log.WithField("attempt", attempt).Warnf("❌ Job failed: %s", status.Message)
			return nil, apperror.New(apperror.KindProviderFailure, status.Message)
		default:
			log.WithField("attempt", attempt).Debugf("📊 Status = %s", status.Status)
		}

		timer.Reset(c.interval)
	}

	return nil, apperror.New(apperror.KindProviderTimeout,
		fmt.Sprintf("provider did not finish after %d polls", c.maxAttempts))
}

// PollStatus - 제출된 작업의 상태 한 번 조회
// 배치 프로바이더는 handle.BatchID 도 필요하다.
func (c *Client) PollStatus(ctx context.Context, handle *JobHandle) (*PollResult, error) {
	if handle == nil || handle.RequestID == "" {
		return nil, apperror.Validation("a request id is required to poll")
	}
	return c.provider.Poll(ctx, handle)
}
