package batch

import (
	"context"
	"sync"
	"time"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/model"
)

// Store - 배치 작업 저장소
type Store interface {
	Save(ctx context.Context, job *model.BatchJob) error
	Get(ctx context.Context, batchID string) (*model.BatchJob, error)
	UpdateTask(ctx context.Context, batchID string, task model.BatchTask) error
}

func notFound(batchID string) error {
	return apperror.NotFound("batch %s not found", batchID)
}

// cloneJob - 호출자가 저장된 값을 건드리지 못하도록 복사
func cloneJob(job *model.BatchJob) *model.BatchJob {
	cp := *job
	cp.Tasks = make([]model.BatchTask, len(job.Tasks))
	for i, t := range job.Tasks {
		t.Enhancements = append([]model.Enhancement(nil), t.Enhancements...)
		cp.Tasks[i] = t
	}
	return &cp
}

type memoryEntry struct {
	job       *model.BatchJob
	expiresAt time.Time
}

// MemoryStore - 프로세스 로컬 저장소
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*memoryEntry
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryStore - ttl 이 0 이면 만료 없음
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, job *model.BatchJob) error {
	entry := &memoryEntry{job: cloneJob(job)}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.jobs[job.BatchID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, batchID string) (*model.BatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.jobs[batchID]
	if !ok || s.expired(entry) {
		return nil, notFound(batchID)
	}
	return cloneJob(entry.job), nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, batchID string, task model.BatchTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.jobs[batchID]
	if !ok || s.expired(entry) {
		return notFound(batchID)
	}
	if task.Index < 0 || task.Index >= len(entry.job.Tasks) {
		return apperror.New(apperror.KindInternal, "task index out of range")
	}
	entry.job.Tasks[task.Index] = task
	return nil
}

// Sweep - 만료된 배치 제거
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.jobs {
		if s.expired(entry) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) expired(entry *memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}
