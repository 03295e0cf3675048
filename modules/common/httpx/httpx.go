package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/logger"
)

// MaxBodyBytes - 요청 바디 최대 크기 (data URI 이미지 포함)
const MaxBodyBytes = 32 << 20

// WriteJSON - JSON 응답 기록
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.For("http").WithError(err).Warn("⚠️  Failed to encode response")
	}
}

// DecodeJSON - 요청 바디를 v 로 디코딩, 실패하면 ValidationError
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperror.Validation("request body exceeds %d bytes", MaxBodyBytes)
		case errors.Is(err, io.EOF):
			return apperror.Validation("request body is empty")
		default:
			return apperror.Wrap(apperror.KindValidation, "invalid request format", err)
		}
	}
	return nil
}
