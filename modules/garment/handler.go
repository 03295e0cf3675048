package garment

import (
	"net/http"

	"github.com/gorilla/mux"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/httpx"
	"tryon-canvas-server/modules/common/validator"
)

// Request - POST /api/generate-clothing
type Request struct {
	Prompt   string   `json:"prompt"`
	Category Category `json:"category"`
}

// Response - 생성 결과
type Response struct {
	Success  bool     `json:"success"`
	ImageURL string   `json:"imageUrl"`
	Prompt   string   `json:"prompt"`
	Category Category `json:"category"`
	Demo     bool     `json:"demo"`
}

// Handler - 상품 이미지 생성 엔드포인트
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
	r.HandleFunc("/api/generate-clothing", h.HandleGenerate).Methods("POST", "OPTIONS")
}

// HandleGenerate - POST /api/generate-clothing
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var body Request
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	res, err := h.service.Generate(r.Context(), validator.ClientID(r), body.Prompt, body.Category)
	if err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, Response{
		Success:  true,
		ImageURL: res.ImageURL,
		Prompt:   res.Prompt,
		Category: res.Category,
		Demo:     res.Demo,
	})
}
