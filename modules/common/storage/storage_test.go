package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage_go "github.com/supabase-community/storage-go"

	"tryon-canvas-server/modules/common/config"
	"tryon-canvas-server/modules/common/utils"
)

type fakeStore struct {
	bucket      string
	path        string
	body        []byte
	contentType string
	uploadErr   error
}

func (f *fakeStore) UploadFile(bucketID, relativePath string, data io.Reader, opts ...storage_go.FileOptions) (storage_go.FileUploadResponse, error) {
	if f.uploadErr != nil {
		return storage_go.FileUploadResponse{}, f.uploadErr
	}
	f.bucket = bucketID
	f.path = relativePath
	f.body, _ = io.ReadAll(data)
	if len(opts) > 0 && opts[0].ContentType != nil {
		f.contentType = *opts[0].ContentType
	}
	return storage_go.FileUploadResponse{}, nil
}

func (f *fakeStore) GetPublicUrl(bucketID, filePath string, _ ...storage_go.UrlOptions) storage_go.SignedUrlResponse {
	return storage_go.SignedUrlResponse{SignedURL: "https://project.supabase.co/storage/v1/object/public/" + bucketID + "/" + filePath}
}

func TestDataURIUploader(t *testing.T) {
	url, err := DataURIUploader{}.Upload(context.Background(), []byte("webp-bytes"), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "data:image/webp;base64,"+base64.StdEncoding.EncodeToString([]byte("webp-bytes")), url)

	data, mime, err := utils.DecodeDataURI(url)
	require.NoError(t, err)
	assert.Equal(t, []byte("webp-bytes"), data)
	assert.Equal(t, "image/webp", mime)

	_, err = DataURIUploader{}.Upload(context.Background(), nil, "image/webp")
	assert.Error(t, err)
}

func TestSupabaseUploader_Upload(t *testing.T) {
	store := &fakeStore{}
	u := &SupabaseUploader{
		store:  store,
		bucket: "tryon-results",
		now:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}

	url, err := u.Upload(context.Background(), []byte("img"), "image/webp")
	require.NoError(t, err)

	assert.Equal(t, "tryon-results", store.bucket)
	assert.True(t, strings.HasPrefix(store.path, "generated/2026-03-01/"))
	assert.True(t, strings.HasSuffix(store.path, ".webp"))
	assert.Equal(t, []byte("img"), store.body)
	assert.Equal(t, "image/webp", store.contentType)
	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/tryon-results/"+store.path, url)
}

func TestSupabaseUploader_UploadError(t *testing.T) {
	u := &SupabaseUploader{store: &fakeStore{uploadErr: errors.New("bucket not found")}, bucket: "b", now: time.Now}

	_, err := u.Upload(context.Background(), []byte("img"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestNew_WithoutSupabase(t *testing.T) {
	up, err := New(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, DataURIUploader{}, up)
}
