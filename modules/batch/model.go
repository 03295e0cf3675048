package batch

import (
	"time"

	"tryon-canvas-server/modules/common/model"
)

// ImageInput - 배치 요청의 이미지 한 장
type ImageInput struct {
	ImageURL     string              `json:"imageUrl"`
	Enhancements []model.Enhancement `json:"enhancements,omitempty"`
}

// SubmitRequest - POST /api/batch-process
type SubmitRequest struct {
	Images   []ImageInput   `json:"images"`
	Priority model.Priority `json:"priority,omitempty"`
}

// SubmitResponse - 배치 생성 응답
type SubmitResponse struct {
	Success       bool              `json:"success"`
	BatchID       string            `json:"batchId"`
	TotalImages   int               `json:"totalImages"`
	EstimatedCost float64           `json:"estimatedCost"`
	EstimatedTime int               `json:"estimatedTime"`
	Tasks         []model.BatchTask `json:"tasks"`
	Demo          bool              `json:"demo"`
}

// StatusResponse - GET /api/batch-process?batchId=
type StatusResponse struct {
	Success        bool              `json:"success"`
	BatchID        string            `json:"batchId"`
	Priority       model.Priority    `json:"priority"`
	TotalImages    int               `json:"totalImages"`
	EstimatedCost  float64           `json:"estimatedCost"`
	EstimatedTime  int               `json:"estimatedTime"`
	Tasks          []model.BatchTask `json:"tasks"`
	CompletedTasks int               `json:"completedTasks"`
	FailedTasks    int               `json:"failedTasks"`
	Demo           bool              `json:"demo"`
	CreatedAt      time.Time         `json:"createdAt"`
}
