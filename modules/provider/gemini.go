package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/model"
	"tryon-canvas-server/modules/common/storage"
	"tryon-canvas-server/modules/common/utils"
)

// contentGenerator - genai.GenerativeModel 중 사용하는 부분
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// EncodeFunc - 생성된 PNG 를 게시용 포맷으로 변환
type EncodeFunc func(pngData []byte, quality float32) ([]byte, error)

// GeminiOptions - Gemini 프로바이더 설정
type GeminiOptions struct {
	Uploader    storage.Uploader
	Encode      EncodeFunc
	ContentType string
	Quality     float32
	MaxEdge     int
}

// Gemini - Gemini 이미지 모델 기반 동기식 프로바이더
type Gemini struct {
	client    *genai.Client
	generator contentGenerator
	modelName string
	http      *http.Client
	opts      GeminiOptions
}

// NewGemini - API 키로 Gemini 클라이언트 생성
func NewGemini(ctx context.Context, apiKey, modelName string, opts GeminiOptions) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGemini(client, client.GenerativeModel(modelName), modelName, opts), nil
}

func newGemini(client *genai.Client, generator contentGenerator, modelName string, opts GeminiOptions) *Gemini {
	if opts.Uploader == nil {
		opts.Uploader = storage.DataURIUploader{}
	}
	return &Gemini{
		client:    client,
		generator: generator,
		modelName: modelName,
		http:      newHTTPClient(),
		opts:      opts,
	}
}

func (g *Gemini) Name() string { return "gemini" }

// Close - genai 클라이언트 종료
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) Submit(ctx context.Context, prompt string, images []string, _ Options) (*JobHandle, error) {
	log := logger.For("gemini").WithField("model", g.modelName)

	if len(images) == 0 {
		return nil, apperror.Validation("at least one image is required")
	}

	parts, err := g.loadParts(ctx, images)
	if err != nil {
		return nil, err
	}
	parts = append([]genai.Part{genai.Text(prompt)}, parts...)

	log.Infof("🎨 Calling Gemini with %d image(s)", len(images))
	resp, err := g.generator.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, classifyGenAI(err)
	}

	blob, err := firstImage(resp)
	if err != nil {
		return nil, err
	}

	data, contentType := blob.Data, blob.MIMEType
	if g.opts.Encode != nil && blob.MIMEType == "image/png" {
		converted, err := g.opts.Encode(blob.Data, g.opts.Quality)
		if err != nil {
			log.WithError(err).Warn("⚠️  Output conversion failed, publishing original PNG")
		} else {
			data, contentType = converted, g.opts.ContentType
		}
	}

	width, height, err := utils.DecodeDimensions(blob.Data)
	if err != nil {
		log.WithError(err).Debug("could not read output dimensions")
	}

	url, err := g.opts.Uploader.Upload(ctx, data, contentType)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindProviderFailure, "failed to publish generated image", err)
	}

	log.Infof("✅ Gemini image published (%d bytes, %s)", len(data), contentType)

	return &JobHandle{
		RequestID: uuid.NewString(),
		Result: &model.SynthesisResult{
			Images: []model.ImageOutput{{
				URL:         url,
				ContentType: contentType,
				Width:       width,
				Height:      height,
			}},
			ProviderUsed: g.Name(),
		},
	}, nil
}

// Poll - Gemini 는 Submit 에서 결과를 돌려주므로 폴링 대상이 없다
func (g *Gemini) Poll(_ context.Context, handle *JobHandle) (*PollResult, error) {
	return nil, apperror.New(apperror.KindProviderNotFound,
		fmt.Sprintf("gemini request %s has no pollable status", handle.RequestID))
}

// loadParts - 입력 이미지를 병렬로 받아 크기 조정 후 Part 로 변환
func (g *Gemini) loadParts(ctx context.Context, images []string) ([]genai.Part, error) {
	parts := make([]genai.Part, len(images))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, ref := range images {
		i, ref := i, ref
		eg.Go(func() error {
			data, _, err := utils.LoadImage(egCtx, g.http, ref)
			if err != nil {
				return apperror.Wrap(apperror.KindValidation, fmt.Sprintf("image %d could not be loaded", i+1), err)
			}
			fitted, mime, err := utils.FitImage(data, g.opts.MaxEdge)
			if err != nil {
				return apperror.Wrap(apperror.KindValidation, fmt.Sprintf("image %d is not a decodable image", i+1), err)
			}
			parts[i] = genai.ImageData(strings.TrimPrefix(mime, "image/"), fitted)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

func firstImage(resp *genai.GenerateContentResponse) (*genai.Blob, error) {
	if resp == nil {
		return nil, apperror.New(apperror.KindProviderFailure, "empty response from Gemini")
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && strings.HasPrefix(blob.MIMEType, "image/") {
				return &blob, nil
			}
		}
	}
	return nil, apperror.New(apperror.KindProviderFailure, "Gemini returned no image")
}

// classifyGenAI - genai 에러를 분류
func classifyGenAI(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		classified := classifyStatus(gerr.Code, []byte(gerr.Message))
		var appErr *apperror.Error
		if errors.As(classified, &appErr) {
			appErr.Err = err
		}
		return classified
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return apperror.Wrap(apperror.KindProviderFailure, "generation was blocked by the safety filter", err)
	}
	return apperror.Wrap(apperror.KindProviderFailure, "Gemini request failed", err)
}
