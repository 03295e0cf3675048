package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"tryon-canvas-server/modules/common/apperror"
)

// maxErrorBody - 에러 상세에 남길 응답 바디 최대 길이 (문자 수)
const maxErrorBody = 512

// newHTTPClient - 프로바이더 호출용 HTTP 클라이언트
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

// doJSON - JSON 요청 후 2xx 응답을 out 으로 디코딩
// 2xx 가 아니면 classifyStatus 로 분류된 에러를 반환한다.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload, out interface{}) (int, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, apperror.Wrap(apperror.KindProviderFailure, "provider request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, apperror.Wrap(apperror.KindProviderFailure, "failed to read provider response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, classifyStatus(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, apperror.Wrap(apperror.KindProviderFailure, "failed to decode provider response", err).
				WithDetail(truncate(string(raw)))
		}
	}
	return resp.StatusCode, nil
}

// classifyStatus - HTTP 상태 코드를 에러 분류로 변환
func classifyStatus(status int, body []byte) error {
	var kind apperror.Kind
	var message string

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind, message = apperror.KindProviderAuth, "provider rejected the credentials"
	case http.StatusNotFound:
		kind, message = apperror.KindProviderNotFound, "provider endpoint or job not found"
	case http.StatusTooManyRequests:
		kind, message = apperror.KindProviderRateLimited, "provider rate limit reached, please retry later"
	case http.StatusPaymentRequired:
		kind, message = apperror.KindInsufficientCredit, "provider credit exhausted"
	default:
		kind, message = apperror.KindProviderFailure, fmt.Sprintf("provider returned status %d", status)
	}

	return apperror.New(kind, message).WithDetail(fmt.Sprintf("status %d: %s", status, truncate(string(body))))
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxErrorBody {
		return s
	}
	return string([]rune(s)[:maxErrorBody]) + "..."
}
