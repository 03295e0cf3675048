package prompt

import (
	"strings"

	"tryon-canvas-server/modules/common/model"
)

var (
	outerKeywords = []string{"jacket", "coat", "blazer", "cardigan", "hoodie", "ジャケット", "コート", "カーディガン", "パーカー", "アウター"}
	dressKeywords = []string{"dress", "ワンピース", "ドレス", "overall", "オーバーオール", "jumpsuit"}
	lowerKeywords = []string{"pants", "trousers", "jeans", "skirt", "shorts", "パンツ", "ズボン", "スカート", "ジーンズ", "ショーツ"}
)

// DetectGarmentType - 설명 텍스트의 키워드로 garment type 추정 (outer > dress > lower > upper)
func DetectGarmentType(text string) model.GarmentType {
	text = strings.ToLower(text)

	switch {
	case containsAny(text, outerKeywords):
		return model.GarmentOuter
	case containsAny(text, dressKeywords):
		return model.GarmentDress
	case containsAny(text, lowerKeywords):
		return model.GarmentLower
	default:
		return model.GarmentUpper
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
