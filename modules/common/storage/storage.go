package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"

	"tryon-canvas-server/modules/common/config"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/utils"
)

// Uploader - 생성된 이미지 바이트를 클라이언트가 접근 가능한 URL 로 변환
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// New - 설정에 따라 Supabase 업로더 또는 data URI 업로더 반환
func New(cfg *config.Config) (Uploader, error) {
	if !cfg.UseSupabaseStorage() {
		logger.For("storage").Info("📦 Supabase storage not configured, results are returned as data URIs")
		return DataURIUploader{}, nil
	}
	return NewSupabaseUploader(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
}

// DataURIUploader - 업로드 없이 base64 data URI 로 반환
type DataURIUploader struct{}

func (DataURIUploader) Upload(_ context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}
	return utils.EncodeDataURI(data, contentType), nil
}

// objectStore - supabase storage 클라이언트 중 사용하는 부분
type objectStore interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// SupabaseUploader - Supabase Storage 버킷에 업로드 후 public URL 반환
type SupabaseUploader struct {
	store  objectStore
	bucket string
	now    func() time.Time
}

// NewSupabaseUploader - Supabase 클라이언트 생성
func NewSupabaseUploader(url, serviceKey, bucket string) (*SupabaseUploader, error) {
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseUploader{store: client.Storage, bucket: bucket, now: time.Now}, nil
}

func (u *SupabaseUploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := fmt.Sprintf("generated/%s/%s.%s", u.now().UTC().Format("2006-01-02"), uuid.NewString(), extensionFor(contentType))
	upsert := false

	logger.For("storage").WithFields(logrus.Fields{
		"bucket": u.bucket,
		"path":   path,
		"bytes":  len(data),
	}).Info("📤 Uploading image to storage")

	if _, err := u.store.UploadFile(u.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}

	public := u.store.GetPublicUrl(u.bucket, path)
	if public.SignedURL == "" {
		return "", fmt.Errorf("no public url for %s", path)
	}
	return public.SignedURL, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/webp":
		return "webp"
	case "image/jpeg":
		return "jpg"
	default:
		return "png"
	}
}
