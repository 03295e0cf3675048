package enhance

import (
	"net/http"

	"github.com/gorilla/mux"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/httpx"
	"tryon-canvas-server/modules/common/validator"
)

// Request - POST /api/enhance
type Request struct {
	ImageURL     string  `json:"imageUrl"`
	Enhancements Options `json:"enhancements"`
}

// Response - 처리 결과
type Response struct {
	Success      bool     `json:"success"`
	EnhancedURL  string   `json:"enhancedUrl"`
	Enhancements Options  `json:"enhancements"`
	Applied      []string `json:"applied,omitempty"`
	Demo         bool     `json:"demo"`
}

// Handler - 후처리 엔드포인트
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
	r.HandleFunc("/api/enhance", h.HandleEnhance).Methods("POST", "OPTIONS")
}

// HandleEnhance - POST /api/enhance
func (h *Handler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var body Request
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	res, err := h.service.Enhance(r.Context(), validator.ClientID(r), body.ImageURL, body.Enhancements)
	if err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, Response{
		Success:      true,
		EnhancedURL:  res.URL,
		Enhancements: body.Enhancements,
		Applied:      res.Applied,
		Demo:         res.Demo,
	})
}
