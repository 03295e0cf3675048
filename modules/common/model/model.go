package model

import "time"

// GarmentType - 옷이 영향을 주는 신체 영역 분류
type GarmentType string

const (
	GarmentUpper GarmentType = "upper"
	GarmentLower GarmentType = "lower"
	GarmentDress GarmentType = "dress"
	GarmentOuter GarmentType = "outer"
)

// Valid - 알려진 garment type 여부
func (g GarmentType) Valid() bool {
	switch g {
	case GarmentUpper, GarmentLower, GarmentDress, GarmentOuter:
		return true
	}
	return false
}

// ReplacementMode - 교체 / 레이어링
type ReplacementMode string

const (
	ModeReplace ReplacementMode = "replace"
	ModeOverlay ReplacementMode = "overlay"
)

// Region - 신체 영역 태그
type Region string

const (
	RegionUpperBody Region = "upper_body"
	RegionLowerBody Region = "lower_body"
	RegionFullBody  Region = "full_body"
)

// Valid - 마스크 영역으로 사용 가능한 값인지
func (r Region) Valid() bool {
	switch r {
	case RegionUpperBody, RegionLowerBody, RegionFullBody:
		return true
	}
	return false
}

// TryOnRequest - 단일 합성 요청
type TryOnRequest struct {
	PersonImage                string
	GarmentImage               string
	GarmentType                GarmentType
	ReplacementMode            ReplacementMode
	PreservePose               bool
	PreserveBackground         bool
	MaskRegion                 Region
	NaturalLanguageInstruction string
	// UseNaturalLanguage - 지시문이 비어 있어도 자연어 모드로 처리 (검증에서 거부됨)
	UseNaturalLanguage bool
	// PromptOverride - 호출자가 직접 지정한 프롬프트 (sanitize 후 사용)
	PromptOverride string
}

// NaturalLanguageMode - 자연어 모드 여부
func (r TryOnRequest) NaturalLanguageMode() bool {
	return r.UseNaturalLanguage || r.NaturalLanguageInstruction != ""
}

// PreservationPlan - garment type 으로부터 계산되는 보존 계획 (저장하지 않음)
type PreservationPlan struct {
	AffectedRegion   Region   `json:"affectedRegion"`
	PreservedRegions []string `json:"preservedRegions"`
}

// ImageOutput - 결과 이미지 한 장
type ImageOutput struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// SynthesisResult - 정규화된 Provider 결과
type SynthesisResult struct {
	Images           []ImageOutput `json:"images"`
	InferenceSeconds float64       `json:"inferenceSeconds"`
	ProviderUsed     string        `json:"providerUsed"`
	IsDemo           bool          `json:"isDemo"`
}

// FirstURL - 첫 번째 이미지 URL (없으면 빈 문자열)
func (r *SynthesisResult) FirstURL() string {
	if r == nil || len(r.Images) == 0 {
		return ""
	}
	return r.Images[0].URL
}

// GarmentItem - 멀티 가먼트 요청의 옷 한 벌
type GarmentItem struct {
	Type     GarmentType `json:"type"`
	ImageURL string      `json:"imageUrl"`
}

// MultiGarmentRequest - 순차 합성 요청
type MultiGarmentRequest struct {
	PersonImage        string
	Garments           []GarmentItem
	PreservePose       bool
	PreserveBackground bool
}

// Priority - 배치 우선순위
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Enhancement - 배치 이미지별 추가 처리
type Enhancement string

const (
	EnhanceColorCorrection  Enhancement = "colorCorrection"
	EnhanceEdgeOptimization Enhancement = "edgeOptimization"
)

// Valid - 알려진 enhancement 여부
func (e Enhancement) Valid() bool {
	return e == EnhanceColorCorrection || e == EnhanceEdgeOptimization
}

// BatchTask - 배치 내 개별 작업
type BatchTask struct {
	Index        int           `json:"index"`
	TaskID       string        `json:"taskId"`
	ImageURL     string        `json:"imageUrl"`
	Enhancements []Enhancement `json:"enhancements,omitempty"`
	Status       string        `json:"status"`
	ResultURL    string        `json:"resultUrl,omitempty"`
	Error        string        `json:"error,omitempty"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// BatchJob - 배치 작업
type BatchJob struct {
	BatchID       string      `json:"batchId"`
	Priority      Priority    `json:"priority"`
	Tasks         []BatchTask `json:"tasks"`
	EstimatedCost float64     `json:"estimatedCost"`
	EstimatedTime int         `json:"estimatedTime"`
	Demo          bool        `json:"demo"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// CountByStatus - 상태별 작업 수
func (j *BatchJob) CountByStatus(status string) int {
	n := 0
	for _, t := range j.Tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
