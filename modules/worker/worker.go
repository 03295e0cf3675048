package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"tryon-canvas-server/modules/common/logger"
)

// Pool - 프로세스 전체에서 동시에 실행되는 백그라운드 작업 수를 제한
type Pool struct {
	sem     *semaphore.Weighted
	size    int64
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// NewPool - size 개까지 동시에 실행하는 풀 생성
// timeout 이 0 보다 크면 작업마다 그 시간으로 제한된 컨텍스트를 받는다.
func NewPool(size int, timeout time.Duration) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:     semaphore.NewWeighted(int64(size)),
		size:    int64(size),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Go - 작업을 백그라운드에서 실행 (요청 컨텍스트와 분리됨)
// 슬롯이 날 때까지 고루틴 안에서 대기하므로 호출자는 막히지 않는다.
func (p *Pool) Go(name string, job func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			logger.For("worker").WithField("job", name).Warn("⚠️  Pool closed before job could start")
			return
		}
		defer p.sem.Release(1)

		ctx := p.ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(p.ctx, p.timeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				logger.For("worker").WithField("job", name).Errorf("❌ Job panicked: %v", r)
			}
		}()

		job(ctx)
	}()
}

// Wait - 제출된 작업이 모두 끝날 때까지 대기
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Shutdown - 진행 중인 작업을 ctx 가 끝날 때까지 기다린 뒤 나머지를 취소
func (p *Pool) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

// Size - 최대 동시 실행 수
func (p *Pool) Size() int { return int(p.size) }
