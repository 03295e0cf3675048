package batch

import "tryon-canvas-server/modules/common/model"

// 가격표 (이미지 1장 기준, USD)
const (
	BaseCost             = 0.036
	ColorCorrectionCost  = 0.003
	EdgeOptimizationCost = 0.004

	VolumeThreshold     = 10
	VolumeDiscount      = 0.8
	LowPriorityDiscount = 0.7

	SecondsPerImage = 2
)

// EstimateCost - 이미지별 비용 합계에 수량/우선순위 할인을 곱한다
func EstimateCost(images []ImageInput, priority model.Priority) float64 {
	total := 0.0
	for _, img := range images {
		total += imageCost(img.Enhancements)
	}
	if len(images) >= VolumeThreshold {
		total *= VolumeDiscount
	}
	if priority == model.PriorityLow {
		total *= LowPriorityDiscount
	}
	return total
}

func imageCost(enhancements []model.Enhancement) float64 {
	cost := BaseCost
	seen := make(map[model.Enhancement]bool, len(enhancements))
	for _, e := range enhancements {
		if seen[e] {
			continue
		}
		seen[e] = true
		switch e {
		case model.EnhanceColorCorrection:
			cost += ColorCorrectionCost
		case model.EnhanceEdgeOptimization:
			cost += EdgeOptimizationCost
		}
	}
	return cost
}

// EstimateTime - 예상 처리 시간 (초)
func EstimateTime(count int) int {
	return count * SecondsPerImage
}
