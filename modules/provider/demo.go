package provider

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tryon-canvas-server/modules/common/fallback"
	"tryon-canvas-server/modules/common/model"
)

// Demo - 크레덴셜 없이 동작하는 플레이스홀더 프로바이더
type Demo struct {
	delay time.Duration
}

// NewDemo - delay 만큼 지연 후 플레이스홀더 반환
func NewDemo(delay time.Duration) *Demo {
	return &Demo{delay: delay}
}

func (d *Demo) Name() string { return "demo" }

func (d *Demo) Submit(ctx context.Context, _ string, images []string, opts Options) (*JobHandle, error) {
	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	url := fallback.SingleResultURL
	switch opts.Workflow {
	case WorkflowMulti:
		url = fallback.MultiResultURL
	case WorkflowBatch:
		if len(images) > 0 {
			url = images[0]
		}
	}

	return &JobHandle{
		RequestID: "demo-" + uuid.NewString(),
		Result: &model.SynthesisResult{
			Images:           []model.ImageOutput{fallback.DemoImage(url)},
			InferenceSeconds: fallback.DemoInferenceSeconds,
			ProviderUsed:     d.Name(),
			IsDemo:           true,
		},
	}, nil
}

func (d *Demo) Poll(_ context.Context, _ *JobHandle) (*PollResult, error) {
	return &PollResult{
		Status: StatusCompleted,
		Result: &model.SynthesisResult{
			Images:           []model.ImageOutput{fallback.DemoImage(fallback.SingleResultURL)},
			InferenceSeconds: fallback.DemoInferenceSeconds,
			ProviderUsed:     d.Name(),
			IsDemo:           true,
		},
	}, nil
}
