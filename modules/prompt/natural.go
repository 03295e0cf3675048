package prompt

import "strings"

var identityClauses = []string{
	"CRITICAL: Keep the person's EXACT face, facial features, facial expression, eye shape, nose, mouth, and face structure UNCHANGED.",
	"Preserve the person's original identity, hair style, hair color, skin tone, and body shape EXACTLY as they are.",
	"Keep the person's pose, body position, and background exactly the same.",
	"FOCUS ONLY ON CLOTHING: The instructions refer ONLY to clothing/garments/accessories to change.",
	"If the instruction mentions any clothing item, apply it ONLY to the person's outfit, not their face or body.",
	"ONLY change what is explicitly mentioned in the instructions - typically clothing or accessories.",
	"DO NOT alter the person's face or identity in any way.",
	"Ensure the modifications look natural and realistic.",
	"Maintain the photo-realistic quality of the image.",
}

// BuildNaturalLanguage - 자연어 지시를 얼굴/체형 보존 문구로 감싼다
// instruction 은 호출 전에 sanitize 되어 있어야 한다.
func BuildNaturalLanguage(instruction string) string {
	lines := make([]string, 0, len(identityClauses)+1)
	lines = append(lines, "Modify the person's clothing in this image according to the following instructions: "+strings.TrimSpace(instruction))
	lines = append(lines, identityClauses...)
	return strings.Join(lines, "\n")
}
