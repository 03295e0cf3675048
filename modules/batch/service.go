package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/model"
	"tryon-canvas-server/modules/common/ratelimit"
	"tryon-canvas-server/modules/common/validator"
)

// DefaultMaxImages - 배치당 최대 이미지 수
const DefaultMaxImages = 50

// Service - 배치 생성/조회
type Service struct {
	store      Store
	dispatcher Dispatcher
	limiter    ratelimit.Limiter
	maxImages  int
	now        func() time.Time
}

// NewService - maxImages 가 0 이하이면 DefaultMaxImages
func NewService(store Store, dispatcher Dispatcher, limiter ratelimit.Limiter, maxImages int) *Service {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	return &Service{store: store, dispatcher: dispatcher, limiter: limiter, maxImages: maxImages, now: time.Now}
}

// Submit - 검증 → 레이트 리밋 → 비용 계산 → 저장 → 디스패치
// 검증에 실패한 요청은 배치 할당량을 소모하지 않는다.
// 반환값은 디스패치 전의 스냅샷이라 모든 task 가 pending 이다.
func (s *Service) Submit(ctx context.Context, clientID string, req SubmitRequest) (*model.BatchJob, error) {
	log := logger.For("batch").WithField("client", clientID)

	priority, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if err := ratelimit.Enforce(ctx, s.limiter, clientID, 1); err != nil {
		return nil, err
	}

	demo := s.dispatcher.Demo()
	batchID := uuid.NewString()
	if demo {
		batchID = "demo-batch-" + batchID
	}

	now := s.now()
	job := &model.BatchJob{
		BatchID:       batchID,
		Priority:      priority,
		Tasks:         make([]model.BatchTask, len(req.Images)),
		EstimatedCost: EstimateCost(req.Images, priority),
		EstimatedTime: EstimateTime(len(req.Images)),
		Demo:          demo,
		CreatedAt:     now,
	}
	for i, img := range req.Images {
		taskID := uuid.NewString()
		if demo {
			taskID = fmt.Sprintf("demo-task-%d", i)
		}
		job.Tasks[i] = model.BatchTask{
			Index:        i,
			TaskID:       taskID,
			ImageURL:     strings.TrimSpace(img.ImageURL),
			Enhancements: img.Enhancements,
			Status:       model.StatusPending,
			UpdatedAt:    now,
		}
	}

	if err := s.store.Save(ctx, job); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to save batch", err)
	}

	snapshot := cloneJob(job)
	s.dispatcher.Dispatch(ctx, job)

	log.WithField("batch_id", batchID).
		Infof("📦 Batch accepted: %d images, $%.4f", len(job.Tasks), job.EstimatedCost)
	return snapshot, nil
}

// Status - 배치 조회 (없으면 NotFound)
func (s *Service) Status(ctx context.Context, batchID string) (*model.BatchJob, error) {
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return nil, apperror.Validation("batchId is required")
	}
	return s.store.Get(ctx, batchID)
}

func (s *Service) validate(req SubmitRequest) (model.Priority, error) {
	if len(req.Images) == 0 {
		return "", apperror.Validation("images are required")
	}
	if len(req.Images) > s.maxImages {
		return "", apperror.Validation("a batch accepts at most %d images", s.maxImages).
			WithDetail(fmt.Sprintf("received %d", len(req.Images)))
	}

	for i, img := range req.Images {
		if !validator.ValidateImageRef(img.ImageURL) {
			return "", apperror.Validation("images[%d].imageUrl is not a valid image reference", i)
		}
		for _, e := range img.Enhancements {
			if !e.Valid() {
				return "", apperror.Validation("images[%d] has unknown enhancement %q", i, e)
			}
		}
	}

	priority := model.Priority(strings.ToLower(strings.TrimSpace(string(req.Priority))))
	switch priority {
	case "":
		priority = model.PriorityNormal
	case model.PriorityNormal, model.PriorityLow:
	default:
		return "", apperror.Validation("priority must be normal or low")
	}
	return priority, nil
}
