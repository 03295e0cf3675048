// Package enhance applies optional post-processing steps (upscale, background
// removal) to a finished image through fal.ai utility endpoints.
package enhance

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/ratelimit"
	"tryon-canvas-server/modules/common/validator"
)

const (
	upscalePath = "/real-esrgan"
	rembgPath   = "/imageutils/rembg"
)

// Runner - fal 엔드포인트 호출기 (provider.FalClient)
type Runner interface {
	Run(ctx context.Context, path string, payload, out interface{}) error
}

// Options - 적용할 처리 목록
type Options struct {
	Upscale          bool `json:"upscale"`
	UpscaleFactor    int  `json:"upscaleFactor,omitempty"`
	RemoveBackground bool `json:"removeBackground"`
}

// Result - 처리 결과
type Result struct {
	URL     string
	Applied []string
	Demo    bool
}

type upscaleRequest struct {
	ImageURL    string `json:"image_url"`
	Scale       int    `json:"scale"`
	FaceEnhance bool   `json:"face_enhance"`
}

type imageRequest struct {
	ImageURL string `json:"image_url"`
}

type imageResponse struct {
	Image struct {
		URL string `json:"url"`
	} `json:"image"`
}

// Service - 후처리 오케스트레이터
type Service struct {
	runner  Runner
	limiter ratelimit.Limiter
}

// NewService - runner 가 nil 이면 데모 모드 (입력 URL 그대로 반환)
func NewService(runner Runner, limiter ratelimit.Limiter) *Service {
	return &Service{runner: runner, limiter: limiter}
}

// Enhance - 단계를 순서대로 적용, 실패한 단계는 로그만 남기고 건너뜀
func (s *Service) Enhance(ctx context.Context, clientID, imageURL string, opts Options) (*Result, error) {
	log := logger.For("enhance").WithField("client", clientID)

	if err := ratelimit.Enforce(ctx, s.limiter, clientID, 1); err != nil {
		return nil, err
	}

	imageURL = strings.TrimSpace(imageURL)
	if !validator.ValidateImageRef(imageURL) {
		return nil, apperror.Validation("imageUrl is required and must be a valid image reference")
	}
	if opts.UpscaleFactor == 0 {
		opts.UpscaleFactor = 2
	}
	if opts.UpscaleFactor != 2 && opts.UpscaleFactor != 4 {
		return nil, apperror.Validation("upscaleFactor must be 2 or 4")
	}

	if s.runner == nil {
		log.Info("🎭 Demo enhance, returning input image")
		return &Result{URL: imageURL, Demo: true}, nil
	}

	out := &Result{URL: imageURL, Applied: []string{}}

	if opts.Upscale {
		var resp imageResponse
		err := s.runner.Run(ctx, upscalePath, upscaleRequest{ImageURL: out.URL, Scale: opts.UpscaleFactor, FaceEnhance: true}, &resp)
		out.apply(log, "upscale", resp.Image.URL, err)
	}

	if opts.RemoveBackground {
		var resp imageResponse
		err := s.runner.Run(ctx, rembgPath, imageRequest{ImageURL: out.URL}, &resp)
		out.apply(log, "removeBackground", resp.Image.URL, err)
	}

	log.WithField("applied", out.Applied).Info("✅ Enhance finished")
	return out, nil
}

func (r *Result) apply(log *logrus.Entry, step, url string, err error) {
	if err != nil {
		log.WithError(err).Warnf("⚠️  %s failed, skipping", step)
		return
	}
	if url == "" {
		log.Warnf("⚠️  %s returned no image, skipping", step)
		return
	}
	r.URL = url
	r.Applied = append(r.Applied, step)
}
