package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tryon-canvas-server/modules/common/model"
)

func plainImages(n int, enhancements ...model.Enhancement) []ImageInput {
	images := make([]ImageInput, n)
	for i := range images {
		images[i] = ImageInput{ImageURL: "https://cdn.example.com/p.png", Enhancements: enhancements}
	}
	return images
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name     string
		images   []ImageInput
		priority model.Priority
		want     float64
	}{
		{"nine images no discount", plainImages(9), model.PriorityNormal, 9 * BaseCost},
		{"ten images volume discount", plainImages(10), model.PriorityNormal, 10 * BaseCost * 0.8},
		{"ten images low priority", plainImages(10), model.PriorityLow, 10 * BaseCost * 0.8 * 0.7},
		{"one low priority", plainImages(1), model.PriorityLow, BaseCost * 0.7},
		{
			"enhancements before discounts",
			plainImages(10, model.EnhanceColorCorrection, model.EnhanceEdgeOptimization),
			model.PriorityNormal,
			10 * (BaseCost + ColorCorrectionCost + EdgeOptimizationCost) * 0.8,
		},
		{
			"duplicate enhancement counted once",
			plainImages(1, model.EnhanceColorCorrection, model.EnhanceColorCorrection),
			model.PriorityNormal,
			BaseCost + ColorCorrectionCost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EstimateCost(tt.images, tt.priority), 1e-9)
		})
	}
}

func TestEstimateTime(t *testing.T) {
	assert.Equal(t, 0, EstimateTime(0))
	assert.Equal(t, 14, EstimateTime(7))
}
