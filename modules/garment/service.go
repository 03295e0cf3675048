// Package garment generates white-background catalog images of clothing items
// from a text prompt.
package garment

import (
	"context"
	"strings"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/fallback"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/ratelimit"
	"tryon-canvas-server/modules/common/validator"
)

const fluxPath = "/flux-lora"

// Runner - fal 엔드포인트 호출기 (provider.FalClient)
type Runner interface {
	Run(ctx context.Context, path string, payload, out interface{}) error
}

type fluxRequest struct {
	Prompt              string  `json:"prompt"`
	ImageSize           string  `json:"image_size"`
	NumImages           int     `json:"num_images"`
	NumInferenceSteps   int     `json:"num_inference_steps"`
	GuidanceScale       float64 `json:"guidance_scale"`
	EnableSafetyChecker bool    `json:"enable_safety_checker"`
}

type fluxResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Image interface{} `json:"image"`
}

// Generated - 생성 결과
type Generated struct {
	ImageURL string
	Prompt   string
	Category Category
	Demo     bool
}

// Service - 상품 이미지 생성기
type Service struct {
	runner  Runner
	limiter ratelimit.Limiter
}

// NewService - runner 가 nil 이면 플레이스홀더 반환
func NewService(runner Runner, limiter ratelimit.Limiter) *Service {
	return &Service{runner: runner, limiter: limiter}
}

// Generate - 프롬프트와 카테고리로 상품 이미지 1장 생성
func (s *Service) Generate(ctx context.Context, clientID, prompt string, category Category) (*Generated, error) {
	log := logger.For("garment").WithField("client", clientID)

	if err := ratelimit.Enforce(ctx, s.limiter, clientID, 1); err != nil {
		return nil, err
	}

	prompt = strings.TrimSpace(validator.SanitizePrompt(prompt))
	category = Category(strings.ToLower(strings.TrimSpace(string(category))))
	if prompt == "" || category == "" {
		return nil, apperror.Validation("prompt and category are required")
	}

	category = AdjustCategory(prompt, category)
	out := &Generated{Prompt: prompt, Category: category}

	if s.runner == nil {
		log.Info("🎭 Demo garment generation, returning placeholder")
		out.ImageURL = fallback.ProductPlaceholder
		out.Demo = true
		return out, nil
	}

	var resp fluxResponse
	err := s.runner.Run(ctx, fluxPath, fluxRequest{
		Prompt:              BuildPrompt(prompt, category),
		ImageSize:           "square_hd",
		NumImages:           1,
		NumInferenceSteps:   4,
		GuidanceScale:       3.5,
		EnableSafetyChecker: true,
	}, &resp)
	if err != nil {
		log.WithError(err).Warn("❌ Garment generation failed")
		return nil, err
	}

	if len(resp.Images) > 0 {
		out.ImageURL = resp.Images[0].URL
	}
	if out.ImageURL == "" {
		out.ImageURL = fallback.SafeString(resp.Image, "")
	}
	if out.ImageURL == "" {
		return nil, apperror.New(apperror.KindProviderFailure, "provider returned no image")
	}

	log.WithField("category", category).Info("✅ Garment image generated")
	return out, nil
}
