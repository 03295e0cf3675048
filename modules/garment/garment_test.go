package garment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/fallback"
	"tryon-canvas-server/modules/common/ratelimit"
	"tryon-canvas-server/modules/provider"
)

func limiter() ratelimit.Limiter {
	return ratelimit.NewMemory(ratelimit.Policy{Window: time.Minute, Max: 10})
}

func TestAdjustCategory(t *testing.T) {
	tests := []struct {
		prompt   string
		category Category
		want     Category
	}{
		{"シルバーのネックレス", CategoryTops, CategoryAccessories},
		{"黒いリュック", CategoryBottoms, CategoryAccessories},
		{"革の鞄", CategoryShoes, CategoryAccessories},
		{"白いTシャツ", CategoryTops, CategoryTops},
		{"running shoes", CategoryShoes, CategoryShoes},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, AdjustCategory(tt.prompt, tt.category))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t,
		"red hoodie, blue denim jeans, product photo, white background, studio lighting, high quality, professional photography",
		BuildPrompt("red hoodie", CategoryBottoms))
	assert.Equal(t, BuildPrompt("x", CategoryTops), BuildPrompt("x", "hats"))
}

func TestGenerate_Demo(t *testing.T) {
	svc := NewService(nil, limiter())

	res, err := svc.Generate(context.Background(), "c1", "金の指輪", "tops")
	require.NoError(t, err)
	assert.True(t, res.Demo)
	assert.Equal(t, fallback.ProductPlaceholder, res.ImageURL)
	assert.Equal(t, CategoryAccessories, res.Category)
}

func TestGenerate_Validation(t *testing.T) {
	svc := NewService(nil, limiter())

	_, err := svc.Generate(context.Background(), "c1", "", CategoryTops)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Generate(context.Background(), "c1", "shirt", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGenerate_WithFal(t *testing.T) {
	var got fluxRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flux-lora", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))
		_, _ = w.Write([]byte(`{"images":[{"url":"https://fal.media/shirt.png"}]}`))
	}))
	defer srv.Close()

	svc := NewService(provider.NewFalClient("k", srv.URL), limiter())
	res, err := svc.Generate(context.Background(), "c1", "linen shirt", CategoryTops)
	require.NoError(t, err)

	assert.Equal(t, "https://fal.media/shirt.png", res.ImageURL)
	assert.False(t, res.Demo)
	assert.Equal(t, fluxRequest{
		Prompt:              BuildPrompt("linen shirt", CategoryTops),
		ImageSize:           "square_hd",
		NumImages:           1,
		NumInferenceSteps:   4,
		GuidanceScale:       3.5,
		EnableSafetyChecker: true,
	}, got)
}

func TestGenerate_FallbackImageFieldAndFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantURL string
		wantErr error
	}{
		{"image field", http.StatusOK, `{"image":"https://fal.media/alt.png"}`, "https://fal.media/alt.png", nil},
		{"empty result", http.StatusOK, `{"images":[]}`, "", apperror.ErrProviderFailure},
		{"bad key", http.StatusUnauthorized, `{"detail":"nope"}`, "", apperror.ErrProviderAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := NewService(provider.NewFalClient("k", srv.URL), limiter())
			res, err := svc.Generate(context.Background(), "c1", "shirt", CategoryTops)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, res.ImageURL)
		})
	}
}

func TestHandleGenerate(t *testing.T) {
	r := mux.NewRouter()
	NewHandler(NewService(nil, limiter()), false).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-clothing", strings.NewReader(`{"prompt":"denim skirt","category":"bottoms"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Demo)
	assert.Equal(t, CategoryBottoms, resp.Category)
	assert.Equal(t, "denim skirt", resp.Prompt)
}
