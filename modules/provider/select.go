package provider

import (
	"context"

	"tryon-canvas-server/modules/common/config"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/storage"
)

// Deps - 선택된 프로바이더에 주입할 부가 구성요소
type Deps struct {
	Uploader          storage.Uploader
	Encode            EncodeFunc
	EncodeContentType string
}

// NewFromConfig - 합성 프로바이더 선택 (시작 시 한 번)
// DEMO_MODE 이거나 선택된 프로바이더의 크레덴셜이 없으면 Demo.
func NewFromConfig(ctx context.Context, cfg *config.Config, deps Deps) (Provider, error) {
	log := logger.For("provider")

	if cfg.DemoMode {
		log.Info("🎭 DEMO_MODE enabled, using demo provider")
		return NewDemo(cfg.DemoDelay), nil
	}

	switch cfg.TryOnProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warn("⚠️  GEMINI_API_KEY not set, falling back to demo provider")
			return NewDemo(cfg.DemoDelay), nil
		}
		log.Infof("🤖 Using Gemini provider (%s)", cfg.GeminiModel)
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, GeminiOptions{
			Uploader:    deps.Uploader,
			Encode:      deps.Encode,
			ContentType: deps.EncodeContentType,
			Quality:     cfg.WebPQuality,
			MaxEdge:     cfg.InputMaxEdge,
		})
	default:
		if cfg.FalKey == "" {
			log.Warn("⚠️  FAL_KEY not set, falling back to demo provider")
			return NewDemo(cfg.DemoDelay), nil
		}
		log.Info("🍌 Using nano-banana provider")
		return NewFal(NewFalClient(cfg.FalKey, cfg.FalBaseURL)), nil
	}
}

// NewBatchFromConfig - 배치 처리 프로바이더 선택
func NewBatchFromConfig(cfg *config.Config) Provider {
	if cfg.DemoMode || cfg.SeedreamAPIKey == "" {
		return NewDemo(0)
	}
	return NewSeedream(cfg.SeedreamAPIKey, cfg.SeedreamBaseURL)
}

// NewFalFromConfig - 부가 fal 엔드포인트용 클라이언트 (크레덴셜 없거나 데모면 nil)
func NewFalFromConfig(cfg *config.Config) *FalClient {
	if cfg.DemoMode || cfg.FalKey == "" {
		return nil
	}
	return NewFalClient(cfg.FalKey, cfg.FalBaseURL)
}
