// Package webpenc converts generated PNG output to lossy WebP before publishing.
// It is kept apart from utils because go-webp links libwebp through cgo.
package webpenc

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"tryon-canvas-server/modules/common/logger"
)

// ContentType - 변환 결과 MIME 타입
const ContentType = "image/webp"

// FromPNG - PNG 바이너리를 WebP로 변환
func FromPNG(pngData []byte, quality float32) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()
	logger.For("webp").Debugf("🔄 PNG converted to WebP: %d bytes → %d bytes (quality %.0f)", len(pngData), len(webpData), quality)
	return webpData, nil
}
