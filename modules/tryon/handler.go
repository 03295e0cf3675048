package tryon

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/httpx"
	"tryon-canvas-server/modules/common/model"
	"tryon-canvas-server/modules/common/validator"
	"tryon-canvas-server/modules/prompt"
)

// Handler - 합성 엔드포인트
type Handler struct {
	service *Service
	devMode bool
}

// NewHandler - Handler 생성
func NewHandler(service *Service, devMode bool) *Handler {
	return &Handler{service: service, devMode: devMode}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/synthesize", h.HandleSynthesize).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/multi-synthesize", h.HandleMultiSynthesize).Methods("POST", "OPTIONS")
}

// HandleSynthesize - POST /api/synthesize
func (h *Handler) HandleSynthesize(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var body SynthesizeRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	outcome, err := h.service.SynthesizeOutfit(r.Context(), validator.ClientID(r), body.toDomain())
	if err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SynthesizeResponse{
		Success: true,
		Images:  outcome.Result.Images,
		Timings: Timings{Inference: outcome.Result.InferenceSeconds},
		APIUsed: outcome.Result.ProviderUsed,
		Demo:    outcome.Result.IsDemo,
		Plan:    outcome.Plan,
	})
}

// HandleMultiSynthesize - POST /api/multi-synthesize
func (h *Handler) HandleMultiSynthesize(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var body MultiSynthesizeRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	res, err := h.service.SynthesizeMultiple(r.Context(), validator.ClientID(r), model.MultiGarmentRequest{
		PersonImage:        body.PersonImageURL,
		Garments:           body.Garments,
		PreservePose:       boolOr(body.PreservePose, true),
		PreserveBackground: boolOr(body.PreserveBackground, true),
	})
	if err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	resp := MultiSynthesizeResponse{
		Success:           true,
		Images:            res.Result.Images,
		ProcessedGarments: res.ProcessedGarments,
		Instruction:       res.Instruction,
		Demo:              res.Result.IsDemo,
	}
	if res.Partial() {
		_, errBody := apperror.ToBody(res.Err, h.devMode)
		resp.FailedGarment = res.FailedGarment
		resp.Error = errBody.Error
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// toDomain - 요청 바디를 TryOnRequest 로 변환
// garmentType 이 없고 garmentDescription 이 있으면 키워드로 추정한다.
func (b SynthesizeRequest) toDomain() model.TryOnRequest {
	garmentType := model.GarmentType(strings.ToLower(strings.TrimSpace(b.GarmentType)))
	if garmentType == "" && strings.TrimSpace(b.GarmentDescription) != "" {
		garmentType = prompt.DetectGarmentType(b.GarmentDescription)
	}

	req := model.TryOnRequest{
		PersonImage:        strings.TrimSpace(b.PersonImageURL),
		GarmentImage:       strings.TrimSpace(b.GarmentImageURL),
		GarmentType:        garmentType,
		ReplacementMode:    model.ReplacementMode(strings.ToLower(strings.TrimSpace(b.ReplacementMode))),
		PreservePose:       boolOr(b.PreservePose, true),
		PreserveBackground: boolOr(b.PreserveBackground, true),
		MaskRegion:         model.Region(strings.TrimSpace(b.MaskRegion)),
		PromptOverride:     b.Prompt,
	}

	if b.UseNaturalLanguageMode || (b.NaturalLanguageInstruction != "" && b.GarmentImageURL == "") {
		req.UseNaturalLanguage = true
		req.NaturalLanguageInstruction = b.NaturalLanguageInstruction
	}
	return req
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
