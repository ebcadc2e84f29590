// Package config centraliza o carregamento de configurações da aplicação.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
)

type Config struct {
	Server      ServerConfig
	Gemini      GeminiConfig
	Storage     StorageConfig
	RateLimiter RateLimiterConfig
	LogLevel    string
}

type ServerConfig struct {
	Port           int
	StaticDir      string
	AllowedOrigins []string
	TrustProxy     bool
}

// GeminiConfig aceita APIKey vazia; a ausência é reportada por requisição, não na inicialização.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type StorageConfig struct {
	Type  string
	Redis RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type RateLimiterConfig struct {
	Rule         domain.RateLimitRule
	IdleTTL      time.Duration
	CleanupEvery time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	port, err := getInt("PORT", 3000)
	if err != nil {
		return Config{}, err
	}
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT: %d out of range", port)
	}

	trustProxy, err := getBool("TRUST_PROXY", false)
	if err != nil {
		return Config{}, err
	}

	gemini, err := buildGeminiConfig()
	if err != nil {
		return Config{}, err
	}

	storageType := strings.ToLower(getEnv("STORAGE_TYPE", "memory"))
	if storageType != "memory" && storageType != "redis" {
		return Config{}, fmt.Errorf("unsupported STORAGE_TYPE: %s", storageType)
	}

	redisConfig, err := buildRedisConfig()
	if err != nil {
		return Config{}, err
	}

	rateLimiterConfig, err := buildRateLimiterConfig()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server: ServerConfig{
			Port:           port,
			StaticDir:      getEnv("STATIC_DIR", "public"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			TrustProxy:     trustProxy,
		},
		Gemini: gemini,
		Storage: StorageConfig{
			Type:  storageType,
			Redis: redisConfig,
		},
		RateLimiter: rateLimiterConfig,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}, nil
}

func buildGeminiConfig() (GeminiConfig, error) {
	timeoutSeconds, err := getInt("GEMINI_TIMEOUT_SECONDS", 30)
	if err != nil {
		return GeminiConfig{}, err
	}
	if timeoutSeconds <= 0 {
		return GeminiConfig{}, fmt.Errorf("invalid GEMINI_TIMEOUT_SECONDS: must be positive")
	}

	return GeminiConfig{
		APIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

func buildRedisConfig() (RedisConfig, error) {
	port, err := getInt("REDIS_PORT", 6379)
	if err != nil {
		return RedisConfig{}, err
	}
	db, err := getInt("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, err
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func buildRateLimiterConfig() (RateLimiterConfig, error) {
	requests, err := getInt("RATE_LIMIT_REQUESTS", 10)
	if err != nil {
		return RateLimiterConfig{}, err
	}
	windowSeconds, err := getInt("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return RateLimiterConfig{}, err
	}
	idleSeconds, err := getInt("RATE_LIMIT_IDLE_TTL_SECONDS", 120)
	if err != nil {
		return RateLimiterConfig{}, err
	}
	cleanupSeconds, err := getInt("RATE_LIMIT_CLEANUP_SECONDS", 60)
	if err != nil {
		return RateLimiterConfig{}, err
	}

	if requests <= 0 || windowSeconds <= 0 {
		return RateLimiterConfig{}, fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	// remover uma chave antes do fim da janela zeraria a contagem antes da hora
	if idleSeconds < windowSeconds {
		return RateLimiterConfig{}, fmt.Errorf("RATE_LIMIT_IDLE_TTL_SECONDS (%d) must not be shorter than the window (%d)", idleSeconds, windowSeconds)
	}

	return RateLimiterConfig{
		Rule: domain.RateLimitRule{
			Requests: requests,
			Window:   time.Duration(windowSeconds) * time.Second,
		},
		IdleTTL:      time.Duration(idleSeconds) * time.Second,
		CleanupEvery: time.Duration(cleanupSeconds) * time.Second,
	}, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, strconv.Itoa(fallback))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, strconv.FormatBool(fallback))
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
