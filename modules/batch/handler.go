package batch

import (
	"net/http"

	"github.com/gorilla/mux"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/httpx"
	"tryon-canvas-server/modules/common/model"
	"tryon-canvas-server/modules/common/validator"
)

// Handler - 배치 엔드포인트
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
	r.HandleFunc("/api/batch-process", h.HandleSubmit).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/batch-process", h.HandleStatus).Methods("GET")
}

// HandleSubmit - POST /api/batch-process
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var body SubmitRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	job, err := h.service.Submit(r.Context(), validator.ClientID(r), body)
	if err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SubmitResponse{
		Success:       true,
		BatchID:       job.BatchID,
		TotalImages:   len(job.Tasks),
		EstimatedCost: job.EstimatedCost,
		EstimatedTime: job.EstimatedTime,
		Tasks:         job.Tasks,
		Demo:          job.Demo,
	})
}

// HandleStatus - GET /api/batch-process?batchId=
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Status(r.Context(), r.URL.Query().Get("batchId"))
	if err != nil {
		apperror.Respond(w, err, h.devMode)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, StatusResponse{
		Success:        true,
		BatchID:        job.BatchID,
		Priority:       job.Priority,
		TotalImages:    len(job.Tasks),
		EstimatedCost:  job.EstimatedCost,
		EstimatedTime:  job.EstimatedTime,
		Tasks:          job.Tasks,
		CompletedTasks: job.CountByStatus(model.StatusCompleted),
		FailedTasks:    job.CountByStatus(model.StatusFailed),
		Demo:           job.Demo,
		CreatedAt:      job.CreatedAt,
	})
}
