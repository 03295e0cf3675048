package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG 디코더 등록
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP 디코더 등록

	"tryon-canvas-server/modules/common/logger"
)

// MaxDownloadBytes - 입력 이미지 다운로드 최대 크기
const MaxDownloadBytes = 20 << 20

// EncodeDataURI - 바이너리를 data URI 로 변환
func EncodeDataURI(data []byte, contentType string) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI - base64 data URI 를 바이너리와 MIME 타입으로 분리
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("not a data uri")
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data uri")
	}
	mime, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return nil, "", fmt.Errorf("unsupported data uri encoding %q", encoding)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return data, mime, nil
}

// LoadImage - data URI 또는 http(s) URL 에서 이미지 바이트 로드
// blob: 참조는 브라우저 로컬이라 서버에서 읽을 수 없다.
func LoadImage(ctx context.Context, client *http.Client, ref string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return DecodeDataURI(ref)
	case strings.HasPrefix(ref, "blob:"):
		return nil, "", fmt.Errorf("blob references cannot be fetched server-side")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > MaxDownloadBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", MaxDownloadBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// DecodeDimensions - 헤더만 읽어 이미지 크기 반환
func DecodeDimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// FitImage - 긴 변이 maxEdge 를 넘으면 비율 유지하며 축소 후 PNG 로 인코딩
// 이미 작은 이미지는 원본 바이트를 그대로 반환한다.
func FitImage(data []byte, maxEdge int) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if maxEdge <= 0 || (bounds.Dx() <= maxEdge && bounds.Dy() <= maxEdge) {
		return data, "image/" + format, nil
	}

	fitted := imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, fitted); err != nil {
		return nil, "", fmt.Errorf("failed to encode fitted image: %w", err)
	}

	logger.For("image").Debugf("✂️  Image fitted %dx%d → %dx%d", bounds.Dx(), bounds.Dy(), fitted.Bounds().Dx(), fitted.Bounds().Dy())
	return buf.Bytes(), "image/png", nil
}
