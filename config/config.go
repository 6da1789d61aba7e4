package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Loaded once at startup and
// passed by pointer; never mutated afterwards.
type Config struct {
	// R2 / S3-compatible object storage.
	R2AccountID     string
	R2AccessKeyID   string
	R2SecretKey     string
	R2Bucket        string
	R2Prefix        string // default key prefix for uploads, always "/"-terminated
	R2PublicBaseURL string

	// External media tools.
	FFmpegPath  string
	FFprobePath string

	// HTTP server.
	Port      string
	AuthToken string // empty disables auth on the task endpoint

	// Download caps (bytes).
	MaxAudioBytes int64
	MaxVideoBytes int64

	// Redis result cache. Empty RedisAddr disables caching.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ResultCacheTTL time.Duration

	// Logging.
	LogLevel string
	LogFile  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvInt64 gets an environment variable as int64 or returns a default value.
func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	prefix := getEnv("R2_PREFIX", "chunks/")
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}

	return &Config{
		R2AccountID:     os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:   os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretKey:     os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2Bucket:        getEnv("R2_BUCKET_NAME", "latentsync"),
		R2Prefix:        prefix,
		R2PublicBaseURL: os.Getenv("R2_PUBLIC_BASE_URL"),

		FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),

		Port:      getEnv("PORT", "8080"),
		AuthToken: os.Getenv("AUTH_TOKEN"), // no hardcoded default for secrets

		MaxAudioBytes: getEnvInt64("MAX_AUDIO_BYTES", 1_500_000_000),
		MaxVideoBytes: getEnvInt64("MAX_VIDEO_BYTES", 8_000_000_000),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		ResultCacheTTL: time.Duration(getEnvInt("RESULT_CACHE_TTL_MIN", 60)) * time.Minute,

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// ValidateStorage checks the required R2 settings. Missing values are a
// fatal startup condition for anything that uploads.
func (c *Config) ValidateStorage() error {
	if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2SecretKey == "" || c.R2PublicBaseURL == "" {
		return fmt.Errorf("missing required R2_* environment variables (R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_PUBLIC_BASE_URL)")
	}
	return nil
}

// R2Endpoint returns the S3-compatible endpoint host for the account.
func (c *Config) R2Endpoint() string {
	return fmt.Sprintf("%s.r2.cloudflarestorage.com", c.R2AccountID)
}
