package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/ratelimit"
	"tryon-canvas-server/modules/provider"
)

type runCall struct {
	path    string
	payload interface{}
}

// fakeRunner - 경로별 응답 URL, failPath 는 에러
type fakeRunner struct {
	calls    []runCall
	failPath string
}

func (f *fakeRunner) Run(_ context.Context, path string, payload, out interface{}) error {
	f.calls = append(f.calls, runCall{path: path, payload: payload})
	if path == f.failPath {
		return errors.New("upstream exploded")
	}
	resp := out.(*imageResponse)
	resp.Image.URL = "https://fal.media/out" + path + ".png"
	return nil
}

func limiter() ratelimit.Limiter {
	return ratelimit.NewMemory(ratelimit.Policy{Window: time.Minute, Max: 10})
}

const input = "https://cdn.example.com/result.png"

func TestEnhance_StepsChainInOrder(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewService(runner, limiter())

	res, err := svc.Enhance(context.Background(), "c1", input, Options{Upscale: true, UpscaleFactor: 4, RemoveBackground: true})
	require.NoError(t, err)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, upscalePath, runner.calls[0].path)
	assert.Equal(t, upscaleRequest{ImageURL: input, Scale: 4, FaceEnhance: true}, runner.calls[0].payload)
	assert.Equal(t, imageRequest{ImageURL: "https://fal.media/out/real-esrgan.png"}, runner.calls[1].payload)

	assert.Equal(t, "https://fal.media/out/imageutils/rembg.png", res.URL)
	assert.Equal(t, []string{"upscale", "removeBackground"}, res.Applied)
	assert.False(t, res.Demo)
}

func TestEnhance_FailedStepSkipped(t *testing.T) {
	runner := &fakeRunner{failPath: upscalePath}
	svc := NewService(runner, limiter())

	res, err := svc.Enhance(context.Background(), "c1", input, Options{Upscale: true, RemoveBackground: true})
	require.NoError(t, err)

	assert.Equal(t, upscaleRequest{ImageURL: input, Scale: 2, FaceEnhance: true}, runner.calls[0].payload)
	assert.Equal(t, imageRequest{ImageURL: input}, runner.calls[1].payload)
	assert.Equal(t, []string{"removeBackground"}, res.Applied)
}

func TestEnhance_Demo(t *testing.T) {
	svc := NewService(nil, limiter())

	res, err := svc.Enhance(context.Background(), "c1", input, Options{Upscale: true})
	require.NoError(t, err)
	assert.True(t, res.Demo)
	assert.Equal(t, input, res.URL)
}

func TestEnhance_Validation(t *testing.T) {
	svc := NewService(nil, limiter())

	_, err := svc.Enhance(context.Background(), "c1", "", Options{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Enhance(context.Background(), "c1", input, Options{Upscale: true, UpscaleFactor: 3})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestEnhance_WithFalClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/imageutils/rembg", r.URL.Path)
		assert.Equal(t, "Key test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"image":{"url":"https://fal.media/cutout.png"}}`))
	}))
	defer srv.Close()

	svc := NewService(provider.NewFalClient("test-key", srv.URL), limiter())
	res, err := svc.Enhance(context.Background(), "c1", input, Options{RemoveBackground: true})
	require.NoError(t, err)
	assert.Equal(t, "https://fal.media/cutout.png", res.URL)
}

func TestHandleEnhance(t *testing.T) {
	r := mux.NewRouter()
	NewHandler(NewService(nil, limiter()), false).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/enhance",
		strings.NewReader(`{"imageUrl":"`+input+`","enhancements":{"upscale":true,"upscaleFactor":4}}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Demo)
	assert.Equal(t, input, resp.EnhancedURL)
	assert.True(t, resp.Enhancements.Upscale)
	assert.Equal(t, 4, resp.Enhancements.UpscaleFactor)

	req = httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(`{"enhancements":{}}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
