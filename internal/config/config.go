package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageSupabase = "supabase"
	StorageS3       = "s3"
)

type Config struct {
	// Flux API
	FluxAPIKey          string
	FluxAPIBaseURL      string
	FluxModel           string
	FluxPollMaxAttempts int
	FluxPollInterval    time.Duration

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Object storage
	StorageBackend    string
	AWSRegion         string
	AWSBucketName     string
	AWSPublicBaseURL  string
	ProxyAllowedHosts []string

	// Database
	DatabaseURL string

	// Editor
	AssetsDir        string
	AssetCacheDir    string
	RasterPixelRatio float64
	SessionTTL       time.Duration

	// Rate limiting and metrics
	RateLimitRPS   float64
	RateLimitBurst int
	MetricsUser    string
	MetricsPass    string

	// Server
	Port           string
	Environment    string
	BaseURL        string
	AllowedOrigins []string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := &Config{
		FluxAPIKey:          getEnv("FLUX_API_KEY", ""),
		FluxAPIBaseURL:      getEnv("FLUX_API_BASE_URL", "https://api.bfl.ai/v1"),
		FluxModel:           getEnv("FLUX_MODEL", "flux-kontext-pro"),
		FluxPollMaxAttempts: getEnvInt("FLUX_POLL_MAX_ATTEMPTS", 20),
		FluxPollInterval:    getEnvDuration("FLUX_POLL_INTERVAL", 1500*time.Millisecond),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "user-images"),

		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageSupabase)),
		AWSRegion:         getEnv("AWS_REGION", "eu-central-1"),
		AWSBucketName:     getEnv("AWS_BUCKET_NAME", ""),
		AWSPublicBaseURL:  getEnv("AWS_PUBLIC_BASE_URL", ""),
		ProxyAllowedHosts: getEnvList("PROXY_ALLOWED_HOSTS", "delivery-eu1.bfl.ai,delivery-us1.bfl.ai,delivery.bfl.ai"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AssetsDir:        getEnv("ASSETS_DIR", "./public"),
		AssetCacheDir:    getEnv("ASSET_CACHE_DIR", ""),
		RasterPixelRatio: getEnvFloat("RASTER_PIXEL_RATIO", 2),
		SessionTTL:       getEnvDuration("SESSION_TTL", 2*time.Hour),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
		MetricsUser:    getEnv("METRICS_USER", ""),
		MetricsPass:    getEnv("METRICS_PASS", ""),

		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.FluxAPIKey == "" {
		return fmt.Errorf("FLUX_API_KEY is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	switch c.StorageBackend {
	case StorageSupabase:
	case StorageS3:
		if c.AWSBucketName == "" {
			return fmt.Errorf("AWS_BUCKET_NAME is required when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageSupabase, StorageS3, c.StorageBackend)
	}
	if c.FluxPollMaxAttempts <= 0 {
		return fmt.Errorf("FLUX_POLL_MAX_ATTEMPTS must be positive")
	}
	if c.RasterPixelRatio <= 0 {
		return fmt.Errorf("RASTER_PIXEL_RATIO must be positive")
	}
	return nil
}

// PublicHost returns the host of the Supabase project, which serves
// uploaded designs.
func (c *Config) PublicHost() string {
	u := strings.TrimPrefix(strings.TrimPrefix(c.SupabaseURL, "https://"), "http://")
	if i := strings.IndexByte(u, '/'); i >= 0 {
		u = u[:i]
	}
	return u
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid %s=%q, using %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
