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

const falEditPath = "/nano-banana/edit"

// falImage - fal 응답 이미지
type falImage struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

type falTimings struct {
	Inference float64 `json:"inference"`
}

type falEditRequest struct {
	Prompt       string   `json:"prompt"`
	ImageURLs    []string `json:"image_urls"`
	NumImages    int      `json:"num_images"`
	OutputFormat string   `json:"output_format"`
	SyncMode     bool     `json:"sync_mode"`
}

type falEditResponse struct {
	Images    []falImage `json:"images"`
	Timings   falTimings `json:"timings"`
	RequestID string     `json:"request_id"`
}

type falStatusResponse struct {
	Status  string      `json:"status"`
	Images  []falImage  `json:"images"`
	Timings falTimings  `json:"timings"`
	Error   interface{} `json:"error"`
}

// FalClient - fal.ai 엔드포인트 공통 호출기
type FalClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewFalClient - fal.ai 클라이언트 생성
func NewFalClient(apiKey, baseURL string) *FalClient {
	return &FalClient{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), http: newHTTPClient()}
}

// Run - POST {base}{path} 후 out 으로 디코딩
func (f *FalClient) Run(ctx context.Context, path string, payload, out interface{}) error {
	_, err := doJSON(ctx, f.http, http.MethodPost, f.baseURL+path, f.headers(), payload, out)
	return err
}

func (f *FalClient) get(ctx context.Context, path string, out interface{}) (int, error) {
	return doJSON(ctx, f.http, http.MethodGet, f.baseURL+path, f.headers(), nil, out)
}

func (f *FalClient) headers() map[string]string {
	return map[string]string{"Authorization": "Key " + f.apiKey}
}

// Fal - nano-banana edit 프로바이더 (비동기 submit/poll)
type Fal struct {
	client *FalClient
}

// NewFal - Fal 프로바이더 생성
func NewFal(client *FalClient) *Fal {
	return &Fal{client: client}
}

func (f *Fal) Name() string { return "nano-banana" }

func (f *Fal) Submit(ctx context.Context, prompt string, images []string, opts Options) (*JobHandle, error) {
	if len(images) == 0 {
		return nil, apperror.Validation("at least one image is required")
	}

	var resp falEditResponse
	err := f.client.Run(ctx, falEditPath, falEditRequest{
		Prompt:       prompt,
		ImageURLs:    images,
		NumImages:    opts.NumImages,
		OutputFormat: opts.OutputFormat,
		SyncMode:     false,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Images) > 0 {
		return &JobHandle{RequestID: resp.RequestID, Result: f.result(resp.Images, resp.Timings)}, nil
	}
	if resp.RequestID == "" {
		return nil, apperror.New(apperror.KindProviderFailure, "provider returned neither images nor a request id")
	}
	return &JobHandle{RequestID: resp.RequestID}, nil
}

func (f *Fal) Poll(ctx context.Context, handle *JobHandle) (*PollResult, error) {
	var resp falStatusResponse
	code, err := f.client.get(ctx, fmt.Sprintf("/requests/%s/status", handle.RequestID), &resp)
	if err != nil {
		return nil, err
	}
	if code == http.StatusAccepted {
		return &PollResult{Status: StatusInProgress}, nil
	}

	switch strings.ToUpper(resp.Status) {
	case string(StatusCompleted):
		return &PollResult{Status: StatusCompleted, Result: f.result(resp.Images, resp.Timings)}, nil
	case string(StatusFailed):
		return &PollResult{Status: StatusFailed, Message: fallback.SafeString(resp.Error, "image generation failed")}, nil
	case string(StatusQueued):
		return &PollResult{Status: StatusQueued}, nil
	default:
		return &PollResult{Status: StatusInProgress}, nil
	}
}

func (f *Fal) result(images []falImage, timings falTimings) *model.SynthesisResult {
	out := make([]model.ImageOutput, 0, len(images))
	for _, img := range images {
		out = append(out, model.ImageOutput{
			URL:         img.URL,
			ContentType: fallback.SafeString(img.ContentType, "image/png"),
			Width:       img.Width,
			Height:      img.Height,
		})
	}
	return &model.SynthesisResult{
		Images:           out,
		InferenceSeconds: timings.Inference,
		ProviderUsed:     f.Name(),
	}
}
