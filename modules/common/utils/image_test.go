package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDataURIRoundTrip(t *testing.T) {
	data := samplePNG(t, 4, 4)
	uri := EncodeDataURI(data, "image/png")

	decoded, mime, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, data, decoded)
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	cases := []string{
		"https://example.com/a.png",
		"data:image/png;base64",
		"data:image/svg+xml;utf8,<svg/>",
		"data:image/png;base64,@@@",
	}
	for _, c := range cases {
		_, _, err := DecodeDataURI(c)
		assert.Error(t, err, c)
	}
}

func TestFitImage(t *testing.T) {
	large := samplePNG(t, 200, 100)

	fitted, mime, err := FitImage(large, 50)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	w, h, err := DecodeDimensions(fitted)
	require.NoError(t, err)
	assert.Equal(t, 50, w)
	assert.Equal(t, 25, h)

	small := samplePNG(t, 20, 10)
	same, _, err := FitImage(small, 50)
	require.NoError(t, err)
	assert.Equal(t, small, same)
}

func TestLoadImage(t *testing.T) {
	data := samplePNG(t, 8, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	got, mime, err := LoadImage(context.Background(), srv.Client(), srv.URL+"/person.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, data, got)

	_, _, err = LoadImage(context.Background(), srv.Client(), srv.URL+"/missing.png")
	assert.Error(t, err)

	_, _, err = LoadImage(context.Background(), srv.Client(), "blob:https://app.example.com/1")
	assert.Error(t, err)

	fromURI, _, err := LoadImage(context.Background(), srv.Client(), EncodeDataURI(data, "image/png"))
	require.NoError(t, err)
	assert.Equal(t, data, fromURI)
}
