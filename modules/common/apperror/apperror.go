package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Kind - 에러 분류
type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindConfiguration       Kind = "CONFIGURATION_ERROR"
	KindRateLimitExceeded   Kind = "RATE_LIMIT_EXCEEDED"
	KindNotFound            Kind = "NOT_FOUND"
	KindProviderRateLimited Kind = "PROVIDER_RATE_LIMITED"
	KindProviderAuth        Kind = "PROVIDER_AUTH_ERROR"
	KindProviderNotFound    Kind = "PROVIDER_NOT_FOUND"
	KindInsufficientCredit  Kind = "INSUFFICIENT_CREDIT"
	KindProviderTimeout     Kind = "PROVIDER_TIMEOUT"
	KindProviderFailure     Kind = "PROVIDER_FAILURE"
	KindInternal            Kind = "INTERNAL_ERROR"
)

// Sentinels - errors.Is 비교용
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrConfiguration       = &Error{Kind: KindConfiguration}
	ErrRateLimitExceeded   = &Error{Kind: KindRateLimitExceeded}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrProviderRateLimited = &Error{Kind: KindProviderRateLimited}
	ErrProviderAuth        = &Error{Kind: KindProviderAuth}
	ErrProviderNotFound    = &Error{Kind: KindProviderNotFound}
	ErrInsufficientCredit  = &Error{Kind: KindInsufficientCredit}
	ErrProviderTimeout     = &Error{Kind: KindProviderTimeout}
	ErrProviderFailure     = &Error{Kind: KindProviderFailure}
)

// Error - 분류된 도메인 에러
// Message 는 사용자에게 그대로 노출되고, Detail 은 개발 모드에서만 노출된다.
type Error struct {
	Kind       Kind
	Message    string
	Detail     string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is - 같은 Kind 이면 동일 에러로 취급
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation - 입력 검증 에러
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound - 리소스 없음
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// RateLimited - 로컬 레이트 리밋 초과
func RateLimited(retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimitExceeded,
		Message:    "rate limit exceeded, please try again later",
		RetryAfter: retryAfter,
	}
}

// WithDetail - 개발 모드 진단 정보 추가
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// KindOf - 에러 체인에서 Kind 추출 (분류되지 않은 에러는 Internal)
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus - Kind 별 응답 코드
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimitExceeded, KindProviderRateLimited:
		return http.StatusTooManyRequests
	case KindInsufficientCredit:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage - 분류별 기본 사용자 메시지
func publicMessage(kind Kind) string {
	switch kind {
	case KindValidation:
		return "invalid request"
	case KindConfiguration:
		return "service configuration error"
	case KindRateLimitExceeded:
		return "rate limit exceeded, please try again later"
	case KindNotFound:
		return "resource not found"
	case KindProviderRateLimited:
		return "upstream provider rate limit exceeded"
	case KindProviderAuth:
		return "upstream provider rejected the configured credentials"
	case KindProviderNotFound:
		return "upstream provider endpoint not found"
	case KindInsufficientCredit:
		return "insufficient provider credit"
	case KindProviderTimeout:
		return "timed out waiting for the provider result"
	case KindProviderFailure:
		return "provider failed to process the request"
	default:
		return "failed to process the request"
	}
}

// Body - 에러 응답 JSON
type Body struct {
	Error   string `json:"error"`
	Code    Kind   `json:"code"`
	Details string `json:"details,omitempty"`
}

// ToBody - 에러를 응답 바디와 상태코드로 변환
func ToBody(err error, devMode bool) (int, Body) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = &Error{Kind: KindInternal, Err: err}
	}

	message := appErr.Message
	// Provider 인증/설정 계열은 메시지에 크레덴셜 흔적이 섞일 수 있어 고정 문구 사용
	if message == "" || appErr.Kind == KindProviderAuth || appErr.Kind == KindConfiguration || appErr.Kind == KindInternal {
		message = publicMessage(appErr.Kind)
	}

	body := Body{Error: message, Code: appErr.Kind}
	if devMode {
		body.Details = err.Error()
		if appErr.Detail != "" {
			body.Details += " | " + appErr.Detail
		}
	}
	return HTTPStatus(appErr.Kind), body
}

// Respond - 에러를 JSON 으로 기록
func Respond(w http.ResponseWriter, err error, devMode bool) {
	status, body := ToBody(err, devMode)

	var appErr *Error
	if errors.As(err, &appErr) && appErr.RetryAfter > 0 {
		seconds := int(math.Ceil(appErr.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	if status >= http.StatusInternalServerError {
		logrus.WithField("code", body.Code).Errorf("❌ %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
