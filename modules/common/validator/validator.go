package validator

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxPromptLength - sanitize 후 프롬프트 최대 길이 (문자 수)
const MaxPromptLength = 1000

// ValidateImageRef - http(s) URL 또는 data:image/ , blob: 참조만 허용
func ValidateImageRef(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}

	if strings.HasPrefix(ref, "data:image/") || strings.HasPrefix(ref, "blob:") {
		return true
	}

	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	}
	return false
}

// SanitizePrompt - 꺾쇠 제거 후 길이 제한
func SanitizePrompt(prompt string) string {
	cleaned := strings.NewReplacer("<", "", ">", "").Replace(prompt)
	if utf8.RuneCountInString(cleaned) <= MaxPromptLength {
		return cleaned
	}
	runes := []rune(cleaned)
	return string(runes[:MaxPromptLength])
}

// ClientID - 레이트 리밋 키 (X-Forwarded-For → X-Real-IP → RemoteAddr)
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}
