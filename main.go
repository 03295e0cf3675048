package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"tryon-canvas-server/modules/batch"
	"tryon-canvas-server/modules/common/config"
	"tryon-canvas-server/modules/common/httpx"
	"tryon-canvas-server/modules/common/logger"
	"tryon-canvas-server/modules/common/ratelimit"
	redisconn "tryon-canvas-server/modules/common/redis"
	"tryon-canvas-server/modules/common/storage"
	"tryon-canvas-server/modules/common/webpenc"
	"tryon-canvas-server/modules/enhance"
	"tryon-canvas-server/modules/garment"
	"tryon-canvas-server/modules/provider"
	"tryon-canvas-server/modules/tryon"
	"tryon-canvas-server/modules/worker"
)

const sweepInterval = time.Minute

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(providerName string, demo bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "tryon-canvas-server",
			"provider": providerName,
			"demo":     demo,
		})
	}
}

// newLimiters - 합성용 / 배치용 리미터 (memory 이면 sweeper 도 시작)
func newLimiters(ctx context.Context, cfg *config.Config, rdb *goredis.Client) (synth, batchLim ratelimit.Limiter) {
	synthPolicy := ratelimit.Policy{Window: cfg.SynthesisWindow, Max: cfg.SynthesisMax}
	batchPolicy := ratelimit.Policy{Window: cfg.BatchWindow, Max: cfg.BatchMaxSubmitted}

	if cfg.RateLimitBackend == "redis" {
		logrus.Info("🚦 Using Redis rate limiter")
		return ratelimit.NewRedis(rdb, "ratelimit:synthesize", synthPolicy),
			ratelimit.NewRedis(rdb, "ratelimit:batch", batchPolicy)
	}

	logrus.Info("🚦 Using in-memory rate limiter")
	synthMem := ratelimit.NewMemory(synthPolicy)
	batchMem := ratelimit.NewMemory(batchPolicy)
	go synthMem.RunSweeper(ctx, sweepInterval)
	go batchMem.RunSweeper(ctx, sweepInterval)
	return synthMem, batchMem
}

// newBatchStore - BATCH_STORE 에 따른 저장소
func newBatchStore(ctx context.Context, cfg *config.Config, rdb *goredis.Client) batch.Store {
	if cfg.BatchStore == "redis" {
		logrus.Info("📦 Using Redis batch store")
		return batch.NewRedisStore(rdb, "batch", cfg.BatchTTL)
	}

	logrus.Info("📦 Using in-memory batch store")
	store := batch.NewMemoryStore(cfg.BatchTTL)
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					logrus.Debugf("🧹 Swept %d expired batches", n)
				}
			}
		}
	}()
	return store
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("❌ Failed to load config: %v", err)
	}
	logger.Init(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis (선택)
	var rdb *goredis.Client
	if cfg.RateLimitBackend == "redis" || cfg.BatchStore == "redis" {
		rdb, err = redisconn.Connect(ctx, cfg)
		if err != nil {
			logrus.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	}

	synthLimiter, batchLimiter := newLimiters(ctx, cfg, rdb)

	// 결과 업로드 + 합성 프로바이더
	uploader, err := storage.New(cfg)
	if err != nil {
		logrus.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	synthProvider, err := provider.NewFromConfig(ctx, cfg, provider.Deps{
		Uploader:          uploader,
		Encode:            webpenc.FromPNG,
		EncodeContentType: webpenc.ContentType,
	})
	if err != nil {
		logrus.Fatalf("❌ Failed to initialize provider: %v", err)
	}
	synthClient := provider.NewClient(synthProvider, cfg.PollInterval, cfg.PollMaxAttempts)
	batchClient := provider.NewClient(provider.NewBatchFromConfig(cfg), cfg.PollInterval, cfg.PollMaxAttempts)

	// fal 부가 엔드포인트 (nil 이면 데모)
	var falRunner enhance.Runner
	if fal := provider.NewFalFromConfig(cfg); fal != nil {
		falRunner = fal
	}

	// 배치 워커 풀
	pool := worker.NewPool(cfg.BatchMaxInFlight, time.Duration(cfg.PollMaxAttempts+1)*cfg.PollInterval)
	batchStore := newBatchStore(ctx, cfg, rdb)
	var dispatcher batch.Dispatcher = batch.NewLiveDispatcher(batchClient, pool, batchStore)
	if batchClient.IsDemo() {
		dispatcher = batch.NewDemoDispatcher(batchStore)
	}

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)
	r.Use(logger.Middleware)

	health := healthCheck(synthClient.ProviderName(), synthClient.IsDemo())
	r.HandleFunc("/", health).Methods("GET")
	r.HandleFunc("/health", health).Methods("GET")

	tryon.NewHandler(tryon.NewService(synthClient, synthLimiter), cfg.DevMode).RegisterRoutes(r)
	batch.NewHandler(batch.NewService(batchStore, dispatcher, batchLimiter, cfg.MaxImagesPerBatch), cfg.DevMode).RegisterRoutes(r)
	enhance.NewHandler(enhance.NewService(falRunner, synthLimiter), cfg.DevMode).RegisterRoutes(r)
	garment.NewHandler(garment.NewService(falRunner, synthLimiter), cfg.DevMode).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("🚀 Try-on canvas server starting on port %s", cfg.Port)
		logrus.Infof("❤️  Health check: http://localhost:%s/health", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("⚠️  HTTP server shutdown incomplete")
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("⚠️  Batch tasks cancelled before completion")
	}
	logrus.Info("👋 Server stopped")
}
