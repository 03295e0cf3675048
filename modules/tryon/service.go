package tryon

import (
	"context"
	"strings"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/model"
	"tryon-canvas-server/modules/common/ratelimit"
	"tryon-canvas-server/modules/common/validator"
	"tryon-canvas-server/modules/prompt"
	"tryon-canvas-server/modules/provider"
)

// MaxGarments - 멀티 가먼트 요청당 최대 가먼트 수
const MaxGarments = 3

// Service - 단일/멀티 가먼트 합성 오케스트레이터
type Service struct {
	client  *provider.Client
	limiter ratelimit.Limiter
}

// NewService - Service 생성
func NewService(client *provider.Client, limiter ratelimit.Limiter) *Service {
	return &Service{client: client, limiter: limiter}
}

// IsDemo - 데모 프로바이더로 동작 중인지
func (s *Service) IsDemo() bool { return s.client.IsDemo() }

// SynthesizeOutfit - 레이트 리밋 → 검증 → sanitize → 프롬프트 → 프로바이더 1회 호출
func (s *Service) SynthesizeOutfit(ctx context.Context, clientID string, req model.TryOnRequest) (*Outcome, error) {
	log := logger.For("tryon").WithField("client", clientID)

	if err := ratelimit.Enforce(ctx, s.limiter, clientID, 1); err != nil {
		return nil, err
	}

	if err := validateSingle(&req); err != nil {
		return nil, err
	}

	var (
		instruction string
		images      []string
		plan        *model.PreservationPlan
	)

	if req.NaturalLanguageMode() {
		instruction = prompt.BuildNaturalLanguage(validator.SanitizePrompt(req.NaturalLanguageInstruction))
		images = []string{req.PersonImage}
	} else {
		built := prompt.Build(req)
		instruction = built.Instruction
		if override := strings.TrimSpace(validator.SanitizePrompt(req.PromptOverride)); override != "" {
			instruction = override
		}
		images = []string{req.PersonImage, req.GarmentImage}
		plan = &built.Plan
	}

	log.WithField("garment_type", req.GarmentType).Info("🎨 Synthesizing outfit")

	result, err := s.client.Synthesize(ctx, instruction, images, provider.Options{Workflow: provider.WorkflowSingle})
	if err != nil {
		log.WithError(err).Warn("❌ Synthesis failed")
		return nil, err
	}

	return &Outcome{Result: result, Instruction: instruction, Plan: plan}, nil
}

// SynthesizeMultiple - 가먼트를 순서대로 적용, 각 단계의 결과가 다음 단계의 인물 이미지가 된다
// 첫 가먼트부터 실패하면 에러, 이후 실패는 부분 결과로 반환한다.
func (s *Service) SynthesizeMultiple(ctx context.Context, clientID string, req model.MultiGarmentRequest) (*MultiResult, error) {
	log := logger.For("tryon").WithField("client", clientID)

	if err := ratelimit.Enforce(ctx, s.limiter, clientID, 1); err != nil {
		return nil, err
	}

	if err := validateMulti(req); err != nil {
		return nil, err
	}

	out := &MultiResult{
		ProcessedGarments: make([]model.GarmentType, 0, len(req.Garments)),
		Instruction:       prompt.BuildMulti(req.Garments, req.PreservePose, req.PreserveBackground),
	}

	current := req.PersonImage
	for i, garment := range req.Garments {
		step := prompt.Build(model.TryOnRequest{
			PersonImage:        current,
			GarmentImage:       garment.ImageURL,
			GarmentType:        garment.Type,
			PreservePose:       req.PreservePose,
			PreserveBackground: req.PreserveBackground,
		})

		result, err := s.client.Synthesize(ctx, step.Instruction, []string{current, garment.ImageURL},
			provider.Options{Workflow: provider.WorkflowMulti})
		if err == nil && result.FirstURL() == "" {
			err = apperror.New(apperror.KindProviderFailure, "provider returned no image")
		}
		if err != nil {
			log.WithError(err).WithField("step", i+1).Warnf("❌ Garment %s failed", garment.Type)
			if len(out.ProcessedGarments) == 0 {
				return nil, err
			}
			out.FailedGarment = garment.Type
			out.Err = err
			return out, nil
		}

		log.WithField("step", i+1).Infof("✅ Garment %s applied", garment.Type)
		current = result.FirstURL()
		out.Result = result
		out.ProcessedGarments = append(out.ProcessedGarments, garment.Type)
	}

	return out, nil
}

func validateSingle(req *model.TryOnRequest) error {
	if !validator.ValidateImageRef(req.PersonImage) {
		return apperror.Validation("a valid personImageUrl is required")
	}

	if req.NaturalLanguageMode() {
		if strings.TrimSpace(validator.SanitizePrompt(req.NaturalLanguageInstruction)) == "" {
			return apperror.Validation("naturalLanguageInstruction is required in natural language mode")
		}
		return nil
	}

	if req.GarmentImage == "" {
		return apperror.Validation("garmentImageUrl is required")
	}
	if !validator.ValidateImageRef(req.GarmentImage) {
		return apperror.Validation("garmentImageUrl is not a valid image reference")
	}
	if req.GarmentType == "" {
		req.GarmentType = model.GarmentUpper
	}
	if !req.GarmentType.Valid() {
		return apperror.Validation("unknown garmentType %q", req.GarmentType)
	}
	switch req.ReplacementMode {
	case "":
		req.ReplacementMode = model.ModeReplace
	case model.ModeReplace, model.ModeOverlay:
	default:
		return apperror.Validation("replacementMode must be replace or overlay")
	}
	if req.MaskRegion != "" && !req.MaskRegion.Valid() {
		return apperror.Validation("unknown maskRegion %q", req.MaskRegion)
	}
	return nil
}

func validateMulti(req model.MultiGarmentRequest) error {
	if !validator.ValidateImageRef(req.PersonImage) {
		return apperror.Validation("a valid personImageUrl is required")
	}
	if len(req.Garments) == 0 {
		return apperror.Validation("at least one garment is required")
	}
	if len(req.Garments) > MaxGarments {
		return apperror.Validation("at most %d garments can be changed at once", MaxGarments)
	}
	for i, g := range req.Garments {
		switch g.Type {
		case model.GarmentUpper, model.GarmentLower, model.GarmentOuter:
		default:
			return apperror.Validation("garment %d has unsupported type %q", i+1, g.Type)
		}
		if !validator.ValidateImageRef(g.ImageURL) {
			return apperror.Validation("garment %d has an invalid imageUrl", i+1)
		}
	}
	return nil
}
