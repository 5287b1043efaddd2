package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageDriverFile  = "file"
	StorageDriverMinio = "minio"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	DBMaxConns         int
	RedisURL           string
	JWTSecret          string
	CORSAllowedOrigins []string
	TrustProxy         bool
	StorageDriver      string
	StoragePath        string
	StorageBaseURL     string
	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioBucket        string
	MinioUseSSL        bool
	GeoIPDBPath        string
	OpenRouterAPIKey   string
	OpenRouterModel    string
	OpenRouterBaseURL  string
	OpenRouterReferer  string
	ImageAPIKey        string
	ImageModel         string
	ImageBaseURL       string
	AssistantFreeMsgs  int
	AssistantWindow    time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	ReconcileSchedule  string
	ReconcileRepair    bool
	SeedDemoData       bool
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	appEnv := getEnv("APP_ENV", "development")
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:             appEnv,
		Port:               port,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 10),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		TrustProxy:         getEnvBool("TRUST_PROXY", false),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverFile)),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:     getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),
		MinioEndpoint:      os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:     os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:        os.Getenv("MINIO_BUCKET"),
		MinioUseSSL:        getEnvBool("MINIO_USE_SSL", false),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:    getEnv("OPENROUTER_MODEL", "anthropic/claude-3-sonnet:beta"),
		OpenRouterBaseURL:  getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterReferer:  getEnv("OPENROUTER_REFERER", fmt.Sprintf("http://localhost:%s", port)),
		ImageAPIKey:        os.Getenv("IMAGE_API_KEY"),
		ImageModel:         getEnv("IMAGE_MODEL", "dall-e-3"),
		ImageBaseURL:       getEnv("IMAGE_BASE_URL", "https://api.openai.com/v1"),
		AssistantFreeMsgs:  getEnvInt("ASSISTANT_FREE_MESSAGES", 2),
		AssistantWindow:    time.Minute * time.Duration(getEnvInt("ASSISTANT_WINDOW_MINUTES", 60)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ReconcileSchedule:  getEnv("RECONCILE_SCHEDULE", "@every 15m"),
		ReconcileRepair:    getEnvBool("RECONCILE_REPAIR", false),
		SeedDemoData:       getEnvBool("SEED_DEMO_DATA", appEnv == "development"),
	}

	switch cfg.StorageDriver {
	case StorageDriverFile:
	case StorageDriverMinio:
		if cfg.MinioEndpoint == "" || cfg.MinioBucket == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required when STORAGE_DRIVER=minio")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.AssistantFreeMsgs < 0 {
		return nil, fmt.Errorf("ASSISTANT_FREE_MESSAGES must not be negative")
	}
	if cfg.AssistantWindow <= 0 {
		return nil, fmt.Errorf("ASSISTANT_WINDOW_MINUTES must be positive")
	}

	return cfg, nil
}

// RequireDatabase reports an error when no DATABASE_URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
