package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config - 모든 환경변수를 담음
type Config struct {
	// Server
	Port    string
	AppEnv  string
	DevMode bool

	// Demo - 크레덴셜이 없거나 DEMO_MODE=true 이면 데모 Provider 사용
	DemoMode  bool
	DemoDelay time.Duration

	// Logging
	LogLevel string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// 백엔드 선택 ("memory" | "redis")
	RateLimitBackend string
	BatchStore       string
	BatchTTL         time.Duration

	// fal.ai (nano-banana)
	FalKey     string
	FalBaseURL string

	// Try-on provider ("fal" | "gemini")
	TryOnProvider string

	// Gemini API
	GeminiAPIKey string
	GeminiModel  string

	// Seedream (batch)
	SeedreamAPIKey  string
	SeedreamBaseURL string

	// Supabase Storage (Gemini 결과 업로드용, 선택)
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	// Polling
	PollInterval    time.Duration
	PollMaxAttempts int

	// Batch
	BatchMaxInFlight  int
	MaxImagesPerBatch int

	// Rate limits
	SynthesisWindow   time.Duration
	SynthesisMax      int
	BatchWindow       time.Duration
	BatchMaxSubmitted int

	// Image
	WebPQuality  float32
	InputMaxEdge int
}

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		logrus.Warn("⚠️  .env file not found, using environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"env":          cfg.AppEnv,
		"demo":         cfg.DemoMode,
		"provider":     cfg.TryOnProvider,
		"rate_limit":   cfg.RateLimitBackend,
		"batch_store":  cfg.BatchStore,
		"redis":        cfg.GetRedisAddr(),
		"poll":         cfg.PollInterval.String(),
		"poll_retries": cfg.PollMaxAttempts,
	}).Info("✅ Configuration loaded successfully")

	return cfg, nil
}

// FromEnv - 현재 프로세스 환경변수로부터 Config 구성 (.env 로드 없이)
func FromEnv() (*Config, error) {
	appEnv := getEnv("APP_ENV", "production")

	falKey := sanitizeKey(getEnv("FAL_KEY", os.Getenv("NANO_BANANA_KEY")))

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		AppEnv:  appEnv,
		DevMode: getBool("DEV_MODE", appEnv == "development"),

		DemoMode:  getBool("DEMO_MODE", false),
		DemoDelay: getDuration("DEMO_DELAY", 2*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   getBool("REDIS_USE_TLS", false),

		RateLimitBackend: strings.ToLower(getEnv("RATE_LIMIT_BACKEND", "memory")),
		BatchStore:       strings.ToLower(getEnv("BATCH_STORE", "memory")),
		BatchTTL:         getDuration("BATCH_TTL", 24*time.Hour),

		FalKey:     falKey,
		FalBaseURL: strings.TrimRight(getEnv("FAL_BASE_URL", "https://fal.run/fal-ai"), "/"),

		TryOnProvider: strings.ToLower(getEnv("TRYON_PROVIDER", "fal")),

		GeminiAPIKey: sanitizeKey(getEnv("GEMINI_API_KEY", "")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),

		SeedreamAPIKey:  sanitizeKey(getEnv("SEEDREAM_API_KEY", "")),
		SeedreamBaseURL: strings.TrimRight(getEnv("SEEDREAM_BASE_URL", "https://api.seedream.io/v1"), "/"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "tryon-results"),

		PollInterval:    getDuration("POLL_INTERVAL", 2*time.Second),
		PollMaxAttempts: getInt("POLL_MAX_ATTEMPTS", 60),

		BatchMaxInFlight:  getInt("BATCH_MAX_IN_FLIGHT", 4),
		MaxImagesPerBatch: getInt("BATCH_MAX_IMAGES", 50),

		SynthesisWindow:   getDuration("SYNTHESIS_RATE_WINDOW", time.Minute),
		SynthesisMax:      getInt("SYNTHESIS_RATE_MAX", 10),
		BatchWindow:       getDuration("BATCH_RATE_WINDOW", 5*time.Minute),
		BatchMaxSubmitted: getInt("BATCH_RATE_MAX", 3),

		WebPQuality:  float32(getInt("WEBP_QUALITY", 90)),
		InputMaxEdge: getInt("INPUT_MAX_EDGE", 1536),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate - 설정값 검증
func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.RateLimitBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be memory or redis, got %q", c.RateLimitBackend)
	}
	switch c.BatchStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("BATCH_STORE must be memory or redis, got %q", c.BatchStore)
	}
	switch c.TryOnProvider {
	case "fal", "gemini":
	default:
		return fmt.Errorf("TRYON_PROVIDER must be fal or gemini, got %q", c.TryOnProvider)
	}
	if (c.RateLimitBackend == "redis" || c.BatchStore == "redis") && c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required when a redis backend is selected")
	}
	if c.PollInterval <= 0 || c.PollMaxAttempts <= 0 {
		return fmt.Errorf("POLL_INTERVAL and POLL_MAX_ATTEMPTS must be positive")
	}
	if c.BatchMaxInFlight <= 0 {
		return fmt.Errorf("BATCH_MAX_IN_FLIGHT must be positive")
	}
	if c.MaxImagesPerBatch <= 0 {
		return fmt.Errorf("BATCH_MAX_IMAGES must be positive")
	}
	if c.SynthesisWindow <= 0 || c.SynthesisMax <= 0 || c.BatchWindow <= 0 || c.BatchMaxSubmitted <= 0 {
		return fmt.Errorf("rate limit windows and maximums must be positive")
	}
	return nil
}

// UseSupabaseStorage - Supabase Storage 업로드 사용 여부
func (c *Config) UseSupabaseStorage() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
		logrus.Warnf("⚠️  invalid boolean for %s: %q, using %v", key, raw, defaultValue)
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
		logrus.Warnf("⚠️  invalid integer for %s: %q, using %d", key, raw, defaultValue)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			return parsed
		}
		logrus.Warnf("⚠️  invalid duration for %s: %q, using %s", key, raw, defaultValue)
	}
	return defaultValue
}

// sanitizeKey - API 키에서 공백/개행 제거
func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	return strings.NewReplacer("\r", "", "\n", "", "\t", "").Replace(key)
}
