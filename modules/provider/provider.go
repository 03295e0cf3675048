// Package provider wraps the remote image-synthesis backends behind a single
// submit/poll contract and classifies their failures into the apperror taxonomy.
package provider

import (
	"context"

	"tryon-canvas-server/modules/common/model"
)

// Workflow - 요청 종류 (데모 플레이스홀더 선택에 사용)
type Workflow string

const (
	WorkflowSingle Workflow = "single"
	WorkflowMulti  Workflow = "multi"
	WorkflowBatch  Workflow = "batch"
)

// Options - 프로바이더 공통 옵션
type Options struct {
	NumImages    int
	OutputFormat string
	Enhancements []model.Enhancement
	Priority     model.Priority
	BatchID      string
	Workflow     Workflow
}

// withDefaults - 빈 값 채우기
func (o Options) withDefaults() Options {
	if o.NumImages <= 0 {
		o.NumImages = 1
	}
	if o.OutputFormat == "" {
		o.OutputFormat = "png"
	}
	if o.Priority == "" {
		o.Priority = model.PriorityNormal
	}
	if o.Workflow == "" {
		o.Workflow = WorkflowSingle
	}
	return o
}

// JobHandle - 제출된 작업 식별자
// 동기식 프로바이더는 Result 를 바로 채워서 반환한다.
type JobHandle struct {
	RequestID string
	BatchID   string
	Result    *model.SynthesisResult
}

// PollStatus - 정규화된 작업 상태
type PollStatus string

const (
	StatusQueued     PollStatus = "IN_QUEUE"
	StatusInProgress PollStatus = "IN_PROGRESS"
	StatusCompleted  PollStatus = "COMPLETED"
	StatusFailed     PollStatus = "FAILED"
)

// PollResult - 상태 조회 한 번의 결과
type PollResult struct {
	Status  PollStatus
	Result  *model.SynthesisResult
	Message string
}

// Provider - 원격 합성 백엔드
type Provider interface {
	Name() string
	Submit(ctx context.Context, prompt string, images []string, opts Options) (*JobHandle, error)
	Poll(ctx context.Context, handle *JobHandle) (*PollResult, error)
}
