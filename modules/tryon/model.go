package tryon

import "tryon-canvas-server/modules/common/model"

// SynthesizeRequest - POST /api/synthesize
// preservePose / preserveBackground 는 생략 시 true.
type SynthesizeRequest struct {
	PersonImageURL             string `json:"personImageUrl"`
	GarmentImageURL            string `json:"garmentImageUrl,omitempty"`
	GarmentType                string `json:"garmentType,omitempty"`
	GarmentDescription         string `json:"garmentDescription,omitempty"`
	ReplacementMode            string `json:"replacementMode,omitempty"`
	PreservePose               *bool  `json:"preservePose,omitempty"`
	PreserveBackground         *bool  `json:"preserveBackground,omitempty"`
	MaskRegion                 string `json:"maskRegion,omitempty"`
	Prompt                     string `json:"prompt,omitempty"`
	NaturalLanguageInstruction string `json:"naturalLanguageInstruction,omitempty"`
	UseNaturalLanguageMode     bool   `json:"useNaturalLanguageMode,omitempty"`
}

// Timings - 프로바이더 처리 시간
type Timings struct {
	Inference float64 `json:"inference"`
}

// SynthesizeResponse - 단일 합성 응답
type SynthesizeResponse struct {
	Success bool                    `json:"success"`
	Images  []model.ImageOutput     `json:"images"`
	Timings Timings                 `json:"timings"`
	APIUsed string                  `json:"apiUsed"`
	Demo    bool                    `json:"demo"`
	Plan    *model.PreservationPlan `json:"plan,omitempty"`
}

// MultiSynthesizeRequest - POST /api/multi-synthesize
type MultiSynthesizeRequest struct {
	PersonImageURL     string              `json:"personImageUrl"`
	Garments           []model.GarmentItem `json:"garments"`
	PreservePose       *bool               `json:"preservePose,omitempty"`
	PreserveBackground *bool               `json:"preserveBackground,omitempty"`
}

// MultiSynthesizeResponse - 멀티 가먼트 응답 (부분 실패 시 failedGarment/error 포함)
type MultiSynthesizeResponse struct {
	Success           bool                `json:"success"`
	Images            []model.ImageOutput `json:"images"`
	ProcessedGarments []model.GarmentType `json:"processedGarments"`
	FailedGarment     model.GarmentType   `json:"failedGarment,omitempty"`
	Error             string              `json:"error,omitempty"`
	Instruction       string              `json:"instruction"`
	Demo              bool                `json:"demo"`
}

// Outcome - 단일 합성 결과와 사용된 지시문
type Outcome struct {
	Result      *model.SynthesisResult
	Instruction string
	// Plan - 자연어 모드에서는 nil
	Plan *model.PreservationPlan
}

// MultiResult - 멀티 가먼트 fold 결과
type MultiResult struct {
	Result            *model.SynthesisResult
	ProcessedGarments []model.GarmentType
	FailedGarment     model.GarmentType
	Err               error
	Instruction       string
}

// Partial - 일부 가먼트만 적용되었는지
func (m *MultiResult) Partial() bool {
	return m.FailedGarment != ""
}
