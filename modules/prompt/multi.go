package prompt

import (
	"strings"

	"tryon-canvas-server/modules/common/model"
)

// BuildMulti - 여러 가먼트를 한 번에 설명하는 지시문
// 3벌 미만이면 빠진 upper/lower 는 유지하라는 문장이 붙는다.
func BuildMulti(garments []model.GarmentItem, preservePose, preserveBackground bool) string {
	has := make(map[model.GarmentType]bool, len(garments))
	for _, g := range garments {
		has[g.Type] = true
	}

	var b strings.Builder
	b.WriteString("Replace the following clothing items simultaneously:\n")

	if has[model.GarmentUpper] {
		b.WriteString("- Upper body clothing (shirt, top) with the provided upper garment\n")
	}
	if has[model.GarmentLower] {
		b.WriteString("- Lower body clothing (pants, skirt) with the provided lower garment\n")
	}
	if has[model.GarmentOuter] {
		b.WriteString("- Add or replace outer layer (jacket, coat) with the provided outer garment\n")
	}

	if len(garments) < 3 {
		if !has[model.GarmentUpper] {
			b.WriteString("KEEP the original upper body clothing unchanged.\n")
		}
		if !has[model.GarmentLower] {
			b.WriteString("KEEP the original lower body clothing unchanged.\n")
		}
	}

	if preservePose {
		b.WriteString("IMPORTANT: Maintain the exact same pose, body position, and posture.\n")
	}
	if preserveBackground {
		b.WriteString("Keep the background exactly as it is.\n")
	}

	b.WriteString("Ensure natural fit, realistic shadows, and proper fabric draping for all garments.")
	return b.String()
}
