package provider

import (
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"tryon-canvas-server/modules/common/apperror"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   apperror.Kind
	}{
		{http.StatusUnauthorized, apperror.KindProviderAuth},
		{http.StatusForbidden, apperror.KindProviderAuth},
		{http.StatusNotFound, apperror.KindProviderNotFound},
		{http.StatusTooManyRequests, apperror.KindProviderRateLimited},
		{http.StatusPaymentRequired, apperror.KindInsufficientCredit},
		{http.StatusInternalServerError, apperror.KindProviderFailure},
		{http.StatusBadRequest, apperror.KindProviderFailure},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := classifyStatus(tt.status, []byte(`{"detail":"x"}`))
			assert.Equal(t, tt.want, apperror.KindOf(err))
		})
	}
}

func TestClassifyStatus_NoCredentialInMessage(t *testing.T) {
	err := classifyStatus(http.StatusUnauthorized, []byte(`{"detail":"Key sk-secret invalid"}`))

	var appErr *apperror.Error
	if assert.ErrorAs(t, err, &appErr) {
		assert.NotContains(t, appErr.Message, "sk-secret")
		assert.Contains(t, appErr.Detail, "status 401")
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("画", maxErrorBody+10)

	got := truncate(body)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("画", maxErrorBody)+"...", got)

	assert.Equal(t, "short", truncate("short"))
}
