package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Memory - 프로세스 로컬 리미터 (단일 인스턴스 배포용)
type Memory struct {
	policy  Policy
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemory - Memory 리미터 생성
func NewMemory(policy Policy) *Memory {
	return &Memory{
		policy:  policy,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// WithClock - 테스트용 시계 주입
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Window() time.Duration { return m.policy.Window }

func (m *Memory) Allow(_ context.Context, key string, cost int) (bool, error) {
	if cost <= 0 {
		cost = 1
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		m.windows[key] = &window{count: cost, resetAt: now.Add(m.policy.Window)}
		return true, nil
	}

	if w.count+cost > m.policy.Max {
		return false, nil
	}
	w.count += cost
	return true, nil
}

// Sweep - 만료된 윈도우 제거, 제거한 개수 반환
func (m *Memory) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}

// Len - 추적 중인 키 수
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// RunSweeper - ctx 가 끝날 때까지 interval 마다 Sweep
func (m *Memory) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
