package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryon-canvas-server/modules/common/model"
)

func TestBuild_UpperWithPreservePose(t *testing.T) {
	p := Build(model.TryOnRequest{
		GarmentType:     model.GarmentUpper,
		ReplacementMode: model.ModeReplace,
		PreservePose:    true,
	})

	assert.Contains(t, p.Instruction, "Replace ONLY the upper body clothing")
	assert.Contains(t, p.Instruction, poseClause)
	assert.NotContains(t, p.Instruction, "Replace ONLY the lower body clothing")
	assert.NotContains(t, p.Instruction, backgroundClause)
	assert.Equal(t, model.RegionUpperBody, p.Plan.AffectedRegion)
}

func TestBuild_ClauseOrder(t *testing.T) {
	p := Build(model.TryOnRequest{
		GarmentType:        model.GarmentDress,
		ReplacementMode:    model.ModeOverlay,
		PreservePose:       true,
		PreserveBackground: true,
		MaskRegion:         model.RegionFullBody,
	})

	lines := strings.Split(p.Instruction, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, overlayLead, lines[0])
	assert.Equal(t, garmentTemplates[model.GarmentDress], lines[1])
	assert.Equal(t, poseClause, lines[2])
	assert.Equal(t, backgroundClause, lines[3])
	assert.Equal(t, "Allow modifications to the full body clothing.", lines[4])
	assert.Equal(t, closingClause, lines[5])
}

func TestBuild_WithoutModeHasNoLead(t *testing.T) {
	p := Build(model.TryOnRequest{GarmentType: model.GarmentLower})

	assert.True(t, strings.HasPrefix(p.Instruction, "Replace ONLY the lower body clothing"))
	assert.NotContains(t, p.Instruction, replaceLead)
	assert.NotContains(t, p.Instruction, overlayLead)
	assert.True(t, strings.HasSuffix(p.Instruction, closingClause))
}

func TestBuild_MaskClauses(t *testing.T) {
	tests := []struct {
		region model.Region
		want   string
	}{
		{model.RegionUpperBody, "Focus modification only on the upper body area (above waist)."},
		{model.RegionLowerBody, "Focus modification only on the lower body area (below waist)."},
		{model.RegionFullBody, "Allow modifications to the full body clothing."},
	}

	for _, tt := range tests {
		t.Run(string(tt.region), func(t *testing.T) {
			p := Build(model.TryOnRequest{GarmentType: model.GarmentUpper, MaskRegion: tt.region})
			assert.Contains(t, p.Instruction, tt.want)
		})
	}
}

func TestBuild_IsPure(t *testing.T) {
	req := model.TryOnRequest{
		GarmentType:        model.GarmentOuter,
		ReplacementMode:    model.ModeReplace,
		PreservePose:       true,
		PreserveBackground: true,
		MaskRegion:         model.RegionUpperBody,
	}

	first := Build(req)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Build(req))
	}
}

func TestBuild_UnknownTypeFallsBackToUpper(t *testing.T) {
	p := Build(model.TryOnRequest{GarmentType: "hat"})
	assert.Contains(t, p.Instruction, garmentTemplates[model.GarmentUpper])
	assert.Equal(t, PlanFor(model.GarmentUpper), p.Plan)
}

func TestPlanFor(t *testing.T) {
	tests := []struct {
		garment   model.GarmentType
		region    model.Region
		preserved []string
	}{
		{model.GarmentUpper, model.RegionUpperBody, []string{"legs", "shoes", "lower_clothing"}},
		{model.GarmentLower, model.RegionLowerBody, []string{"torso", "arms", "upper_clothing"}},
		{model.GarmentDress, model.RegionFullBody, []string{"head", "arms", "shoes", "outer_layers"}},
		{model.GarmentOuter, model.RegionUpperBody, []string{"inner_clothing", "pants", "shirt"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.garment), func(t *testing.T) {
			plan := PlanFor(tt.garment)
			assert.Equal(t, tt.region, plan.AffectedRegion)
			assert.Equal(t, tt.preserved, plan.PreservedRegions)
		})
	}
}

func TestBuildMulti(t *testing.T) {
	got := BuildMulti([]model.GarmentItem{
		{Type: model.GarmentUpper, ImageURL: "https://cdn.example.com/top.png"},
		{Type: model.GarmentOuter, ImageURL: "https://cdn.example.com/coat.png"},
	}, true, false)

	want := "Replace the following clothing items simultaneously:\n" +
		"- Upper body clothing (shirt, top) with the provided upper garment\n" +
		"- Add or replace outer layer (jacket, coat) with the provided outer garment\n" +
		"KEEP the original lower body clothing unchanged.\n" +
		"IMPORTANT: Maintain the exact same pose, body position, and posture.\n" +
		"Ensure natural fit, realistic shadows, and proper fabric draping for all garments."
	assert.Equal(t, want, got)
}

func TestBuildMulti_AllThree(t *testing.T) {
	got := BuildMulti([]model.GarmentItem{
		{Type: model.GarmentUpper},
		{Type: model.GarmentLower},
		{Type: model.GarmentOuter},
	}, false, true)

	assert.NotContains(t, got, "KEEP the original")
	assert.Contains(t, got, "Keep the background exactly as it is.\n")
	assert.NotContains(t, got, "IMPORTANT")
}

func TestBuildNaturalLanguage(t *testing.T) {
	got := BuildNaturalLanguage("  make the shirt red  ")

	assert.True(t, strings.HasPrefix(got,
		"Modify the person's clothing in this image according to the following instructions: make the shirt red\n"))
	assert.Contains(t, got, "FOCUS ONLY ON CLOTHING")
	assert.Contains(t, got, "skin tone, and body shape")
	assert.Equal(t, got, BuildNaturalLanguage("  make the shirt red  "))
}

func TestDetectGarmentType(t *testing.T) {
	tests := []struct {
		text string
		want model.GarmentType
	}{
		{"Wool coat over a summer dress", model.GarmentOuter},
		{"Floral DRESS", model.GarmentDress},
		{"slim jeans", model.GarmentLower},
		{"デニムのスカート", model.GarmentLower},
		{"黒いジャケット", model.GarmentOuter},
		{"ワンピース", model.GarmentDress},
		{"striped t-shirt", model.GarmentUpper},
		{"", model.GarmentUpper},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectGarmentType(tt.text))
		})
	}
}
