// Package prompt turns structured try-on requests into provider instructions.
//
// Every builder here is pure: the same request always yields the same bytes.
package prompt

import (
	"strings"

	"tryon-canvas-server/modules/common/model"
)

// Prompt - 프로바이더에 보낼 지시문과 보존 계획
type Prompt struct {
	Instruction string                 `json:"instruction"`
	Plan        model.PreservationPlan `json:"plan"`
}

const (
	replaceLead = "Completely replace the FIRST person's current clothing with the garment shown in the second image. " +
		"CRITICAL: Extract ONLY the CLOTHING/GARMENT from the second image - ignore any face, person, or body that might be in the second image. " +
		"The FIRST image contains the person whose clothing should be changed. " +
		"The SECOND image is ONLY a reference for the clothing style/design to apply. " +
		"Keep the FIRST person's exact face, facial features, hair, skin tone, pose, and body position unchanged. " +
		"DO NOT use or merge any facial features or body parts from the second image - it is ONLY for clothing reference."

	overlayLead = "Add the garment from the second image as an additional layer on top of the person's existing clothing. " +
		"IMPORTANT: Extract ONLY the CLOTHING/GARMENT from the second image, ignoring any person, face, or body in that image. " +
		"Keep the FIRST person's face, pose, body position, background, and original clothing visible. " +
		"Make it look like the FIRST person is wearing the new garment over their existing outfit. " +
		"Ensure natural layering and realistic fit."

	poseClause = "IMPORTANT: Preserve the exact pose including sitting, standing, or any body position. " +
		"Do not change the person's posture, arm positions, or leg positions."

	backgroundClause = "Keep the background exactly as it is. Do not modify any background elements."

	closingClause = "Ensure natural fabric draping, realistic shadows, and proper fit. " +
		"Maintain photo-realistic quality and natural lighting."
)

var garmentTemplates = map[model.GarmentType]string{
	model.GarmentUpper: "Replace ONLY the upper body clothing (shirt, top, blouse) with the garment from the second image. " +
		"Keep the original pants, skirt, or lower body clothing unchanged. " +
		"Maintain the exact same pose and body position.",
	model.GarmentLower: "Replace ONLY the lower body clothing (pants, skirt, shorts) with the garment from the second image. " +
		"Keep the original top, shirt, or upper body clothing unchanged. " +
		"Maintain the exact same pose and body position.",
	model.GarmentDress: "Replace the entire outfit with the dress from the second image. " +
		"Keep any outer layers (jacket, coat) if present. " +
		"Maintain the exact same pose and body position.",
	model.GarmentOuter: "Add or replace ONLY the outer layer (jacket, coat, cardigan) with the garment from the second image. " +
		"Keep all inner clothing (shirt, pants) completely unchanged. " +
		"Maintain the exact same pose and body position.",
}

var maskClauses = map[model.Region]string{
	model.RegionUpperBody: "Focus modification only on the upper body area (above waist).",
	model.RegionLowerBody: "Focus modification only on the lower body area (below waist).",
	model.RegionFullBody:  "Allow modifications to the full body clothing.",
}

// Build - garment type, 보존 플래그, 마스크, 교체 모드로부터 지시문 생성
// ReplacementMode 가 비어 있으면 모드 리드 문장은 생략된다 (멀티 가먼트 단계).
// 알 수 없는 garment type 은 upper 로 취급한다.
func Build(req model.TryOnRequest) Prompt {
	garmentType := req.GarmentType
	if !garmentType.Valid() {
		garmentType = model.GarmentUpper
	}

	clauses := make([]string, 0, 6)

	switch req.ReplacementMode {
	case model.ModeReplace:
		clauses = append(clauses, replaceLead)
	case model.ModeOverlay:
		clauses = append(clauses, overlayLead)
	}

	clauses = append(clauses, garmentTemplates[garmentType])

	if req.PreservePose {
		clauses = append(clauses, poseClause)
	}
	if req.PreserveBackground {
		clauses = append(clauses, backgroundClause)
	}
	if clause, ok := maskClauses[req.MaskRegion]; ok {
		clauses = append(clauses, clause)
	}

	clauses = append(clauses, closingClause)

	return Prompt{
		Instruction: strings.Join(clauses, "\n"),
		Plan:        PlanFor(garmentType),
	}
}

// PlanFor - garment type 별 영향 영역과 보존 영역
func PlanFor(garmentType model.GarmentType) model.PreservationPlan {
	switch garmentType {
	case model.GarmentLower:
		return model.PreservationPlan{
			AffectedRegion:   model.RegionLowerBody,
			PreservedRegions: []string{"torso", "arms", "upper_clothing"},
		}
	case model.GarmentDress:
		return model.PreservationPlan{
			AffectedRegion:   model.RegionFullBody,
			PreservedRegions: []string{"head", "arms", "shoes", "outer_layers"},
		}
	case model.GarmentOuter:
		return model.PreservationPlan{
			AffectedRegion:   model.RegionUpperBody,
			PreservedRegions: []string{"inner_clothing", "pants", "shirt"},
		}
	default:
		return model.PreservationPlan{
			AffectedRegion:   model.RegionUpperBody,
			PreservedRegions: []string{"legs", "shoes", "lower_clothing"},
		}
	}
}
