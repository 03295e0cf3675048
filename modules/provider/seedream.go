package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/fallback"
	"tryon-canvas-server/modules/common/model"
)

type seedreamProcessRequest struct {
	ImageURL       string              `json:"image_url"`
	ProcessingMode string              `json:"processing_mode"`
	Enhancements   []model.Enhancement `json:"enhancements"`
	Priority       model.Priority      `json:"priority"`
	BatchID        string              `json:"batch_id,omitempty"`
}

type seedreamProcessResponse struct {
	OutputURL   string  `json:"output_url"`
	ProcessTime float64 `json:"process_time"`
	TaskID      string  `json:"task_id"`
}

type seedreamTask struct {
	TaskID      string      `json:"taskId"`
	TaskIDSnake string      `json:"task_id"`
	Status      string      `json:"status"`
	OutputURL   string      `json:"output_url"`
	ResultURL   string      `json:"resultUrl"`
	Error       interface{} `json:"error"`
}

func (t seedreamTask) id() string {
	if t.TaskID != "" {
		return t.TaskID
	}
	return t.TaskIDSnake
}

type seedreamStatusResponse struct {
	Tasks []seedreamTask `json:"tasks"`
}

// Seedream - 배치 이미지 처리 프로바이더
type Seedream struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewSeedream - Seedream 프로바이더 생성
func NewSeedream(apiKey, baseURL string) *Seedream {
	return &Seedream{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), http: newHTTPClient()}
}

func (s *Seedream) Name() string { return "seedream" }

func (s *Seedream) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.apiKey}
}

// Submit - 이미지 한 장 처리 요청 (prompt 는 사용하지 않음)
func (s *Seedream) Submit(ctx context.Context, _ string, images []string, opts Options) (*JobHandle, error) {
	if len(images) == 0 {
		return nil, apperror.Validation("an image is required")
	}

	var resp seedreamProcessResponse
	_, err := doJSON(ctx, s.http, http.MethodPost, s.baseURL+"/process", s.headers(), seedreamProcessRequest{
		ImageURL:       images[0],
		ProcessingMode: "standard",
		Enhancements:   nonNil(opts.Enhancements),
		Priority:       opts.Priority,
		BatchID:        opts.BatchID,
	}, &resp)
	if err != nil {
		return nil, err
	}

	handle := &JobHandle{RequestID: resp.TaskID, BatchID: opts.BatchID}
	if resp.OutputURL != "" {
		handle.Result = s.result(resp.OutputURL, resp.ProcessTime)
		return handle, nil
	}
	if resp.TaskID == "" || opts.BatchID == "" {
		return nil, apperror.New(apperror.KindProviderFailure, "provider returned neither an output nor a pollable task")
	}
	return handle, nil
}

// Poll - 배치 상태에서 해당 task 를 찾아 상태 변환
func (s *Seedream) Poll(ctx context.Context, handle *JobHandle) (*PollResult, error) {
	if handle.BatchID == "" {
		return nil, apperror.New(apperror.KindProviderNotFound, "seedream tasks are polled through their batch")
	}

	var resp seedreamStatusResponse
	code, err := doJSON(ctx, s.http, http.MethodGet, fmt.Sprintf("%s/batch/%s/status", s.baseURL, handle.BatchID), s.headers(), nil, &resp)
	if err != nil {
		return nil, err
	}
	if code == http.StatusAccepted {
		return &PollResult{Status: StatusInProgress}, nil
	}

	for _, task := range resp.Tasks {
		if task.id() != handle.RequestID {
			continue
		}
		switch strings.ToLower(task.Status) {
		case model.StatusCompleted:
			url := task.OutputURL
			if url == "" {
				url = task.ResultURL
			}
			return &PollResult{Status: StatusCompleted, Result: s.result(url, 0)}, nil
		case model.StatusFailed:
			return &PollResult{Status: StatusFailed, Message: fallback.SafeString(task.Error, "image processing failed")}, nil
		case model.StatusPending:
			return &PollResult{Status: StatusQueued}, nil
		default:
			return &PollResult{Status: StatusInProgress}, nil
		}
	}

	return nil, apperror.New(apperror.KindProviderNotFound,
		fmt.Sprintf("task %s not found in batch %s", handle.RequestID, handle.BatchID))
}

func (s *Seedream) result(url string, seconds float64) *model.SynthesisResult {
	return &model.SynthesisResult{
		Images:           []model.ImageOutput{{URL: url, ContentType: "image/png"}},
		InferenceSeconds: seconds,
		ProviderUsed:     s.Name(),
	}
}

func nonNil(e []model.Enhancement) []model.Enhancement {
	if e == nil {
		return []model.Enhancement{}
	}
	return e
}
