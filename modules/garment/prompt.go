package garment

import "strings"

// Category - 상품 카테고리
type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryAccessories Category = "accessories"
	CategoryShoes       Category = "shoes"
)

const productSuffix = "product photo, white background, studio lighting, high quality, professional photography"

var categoryPrompts = map[Category]string{
	CategoryTops:        "a clean white shirt, " + productSuffix,
	CategoryBottoms:     "blue denim jeans, " + productSuffix,
	CategoryAccessories: "silver necklace jewelry, " + productSuffix,
	CategoryShoes:       "white sneakers shoes, " + productSuffix,
}

// 주얼리, 가방 키워드는 카테고리와 무관하게 accessories
var accessoryKeywords = []string{"ネックレス", "ブレスレット", "イヤリング", "指輪", "バッグ", "リュック", "鞄"}

// AdjustCategory - 프롬프트 키워드로 카테고리 보정
func AdjustCategory(prompt string, category Category) Category {
	for _, kw := range accessoryKeywords {
		if strings.Contains(prompt, kw) {
			return CategoryAccessories
		}
	}
	return category
}

// BuildPrompt - 사용자 프롬프트 + 카테고리 접미사 (모르는 카테고리는 tops)
func BuildPrompt(prompt string, category Category) string {
	suffix, ok := categoryPrompts[category]
	if !ok {
		suffix = categoryPrompts[CategoryTops]
	}
	return prompt + ", " + suffix
}
