package batch

import (
	"context"
	"fmt"
	"time"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/fallback"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/model"
	"tryon-canvas-server/modules/provider"
	"tryon-canvas-server/modules/worker"
)

// Dispatcher - 저장된 배치의 task 상태를 진행시키는 전략
type Dispatcher interface {
	Demo() bool
	Dispatch(ctx context.Context, job *model.BatchJob)
}

// LiveDispatcher - 워커 풀에서 task 마다 프로바이더 호출
type LiveDispatcher struct {
	client *provider.Client
	pool   *worker.Pool
	store  Store
	now    func() time.Time
}

// NewLiveDispatcher - LiveDispatcher 생성
func NewLiveDispatcher(client *provider.Client, pool *worker.Pool, store Store) *LiveDispatcher {
	return &LiveDispatcher{client: client, pool: pool, store: store, now: time.Now}
}

func (d *LiveDispatcher) Demo() bool { return false }

// Dispatch - task 들을 풀에 넘기고 바로 반환 (요청 컨텍스트는 사용하지 않음)
func (d *LiveDispatcher) Dispatch(_ context.Context, job *model.BatchJob) {
	logger.For("batch").WithField("batch_id", job.BatchID).
		Infof("🚀 Dispatching %d tasks (pool size %d)", len(job.Tasks), d.pool.Size())

	for _, task := range job.Tasks {
		task := task
		batchID, priority := job.BatchID, job.Priority
		d.pool.Go(fmt.Sprintf("batch:%s:%d", batchID, task.Index), func(ctx context.Context) {
			d.run(ctx, batchID, priority, task)
		})
	}
}

func (d *LiveDispatcher) run(ctx context.Context, batchID string, priority model.Priority, task model.BatchTask) {
	log := logger.For("batch").WithField("batch_id", batchID).WithField("task", task.Index)

	task.Status = model.StatusProcessing
	task.UpdatedAt = d.now()
	d.save(ctx, batchID, task)

	result, err := d.client.Synthesize(ctx, "", []string{task.ImageURL}, provider.Options{
		Enhancements: task.Enhancements,
		Priority:     priority,
		BatchID:      batchID,
		Workflow:     provider.WorkflowBatch,
	})
	if err == nil && result.FirstURL() == "" {
		err = apperror.New(apperror.KindProviderFailure, "provider returned no image")
	}

	task.UpdatedAt = d.now()
	if err != nil {
		_, body := apperror.ToBody(err, false)
		task.Status = model.StatusFailed
		task.Error = body.Error
		log.WithError(err).Warn("❌ Task failed")
	} else {
		task.Status = model.StatusCompleted
		task.ResultURL = result.FirstURL()
		log.Info("✅ Task completed")
	}
	d.save(ctx, batchID, task)
}

// save - 풀 컨텍스트가 취소돼도 마지막 상태는 기록한다
func (d *LiveDispatcher) save(ctx context.Context, batchID string, task model.BatchTask) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := d.store.UpdateTask(ctx, batchID, task); err != nil {
		logger.For("batch").WithError(err).WithField("batch_id", batchID).
			Errorf("❌ Failed to record task %d", task.Index)
	}
}

// DemoDispatcher - 크레덴셜이 없을 때 결정적인 진행 상황을 만들어 둔다
type DemoDispatcher struct {
	store Store
	now   func() time.Time
}

// NewDemoDispatcher - DemoDispatcher 생성
func NewDemoDispatcher(store Store) *DemoDispatcher {
	return &DemoDispatcher{store: store, now: time.Now}
}

func (d *DemoDispatcher) Demo() bool { return true }

// Dispatch - 앞의 ⌊3n/5⌋ 개 완료, 다음 1개 처리 중, 나머지 대기
func (d *DemoDispatcher) Dispatch(ctx context.Context, job *model.BatchJob) {
	completed := len(job.Tasks) * 3 / 5
	now := d.now()

	for _, task := range job.Tasks {
		switch {
		case task.Index < completed:
			task.Status = model.StatusCompleted
			task.ResultURL = fallback.BatchResultURL(task.Index)
		case task.Index == completed:
			task.Status = model.StatusProcessing
		default:
			continue
		}
		task.UpdatedAt = now
		if err := d.store.UpdateTask(ctx, job.BatchID, task); err != nil {
			logger.For("batch").WithError(err).WithField("batch_id", job.BatchID).
				Warnf("⚠️  Failed to record demo task %d", task.Index)
		}
	}
}
