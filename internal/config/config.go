package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`
	BodyLimit       int           `json:"body_limit"`
	CORSOrigins     string        `json:"cors_origins"`

	// Database configuration
	DBDriver string `json:"db_driver"`
	DBDSN    string `json:"db_dsn"`

	// Media storage
	MediaBackend string `json:"media_backend"`
	UploadDir    string `json:"upload_dir"`

	// CloudFlare R2 Configuration (any S3 compatible endpoint works)
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2Region    string `json:"r2_region"`
	R2AccountID string `json:"r2_account_id"`

	// Redis configuration
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl"`

	// NATS configuration
	NATSURL           string `json:"nats_url"`
	NATSSubjectPrefix string `json:"nats_subject_prefix"`

	// Live stream metadata
	NowPlayingURL string        `json:"now_playing_url"`
	NowPlayingTTL time.Duration `json:"now_playing_ttl"`
	// bounds one refresh, retries included
	NowPlayingTimeout time.Duration `json:"now_playing_timeout"`

	// Pagination
	DefaultPageSize int `json:"default_page_size"`
	MaxPageSize     int `json:"max_page_size"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	MediaLocal = "local"
	MediaS3    = "s3"
)

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "5000"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 60*time.Second),
		BodyLimit:       getEnvAsInt("BODY_LIMIT", 50<<20), // 50MB, audio uploads
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),

		// Database configuration
		DBDriver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:    getEnv("DB_DSN", "./data/radio.db"),

		// Media storage
		MediaBackend: strings.ToLower(getEnv("MEDIA_BACKEND", MediaLocal)),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "radio-uploads"),
		R2Region:    getEnv("R2_REGION", "auto"),
		R2AccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),

		// Redis configuration
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "radio:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 5*time.Minute),

		// NATS configuration
		NATSURL:           getEnv("NATS_URL", ""),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "radio.content"),

		// Live stream metadata
		NowPlayingURL:     getEnv("NOW_PLAYING_URL", "https://stream.zeno.fm/hnuqg3vbh41tv/metadata"),
		NowPlayingTTL:     getEnvAsDuration("NOW_PLAYING_TTL", 10*time.Second),
		NowPlayingTimeout: getEnvAsDuration("NOW_PLAYING_TIMEOUT", 5*time.Second),

		// Pagination
		DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:     getEnvAsInt("MAX_PAGE_SIZE", 100),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	if cfg.R2Endpoint == "" && cfg.R2AccountID != "" {
		cfg.R2Endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}

	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN must not be empty"))
	}

	switch c.MediaBackend {
	case MediaLocal:
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR must not be empty"))
		}
	case MediaS3:
		if c.R2Endpoint == "" || c.R2Bucket == "" {
			errs = append(errs, errors.New("s3 media backend needs R2_ENDPOINT (or CLOUDFLARE_ACCOUNT_ID) and R2_BUCKET"))
		}
		if c.R2AccessKey == "" || c.R2SecretKey == "" {
			errs = append(errs, errors.New("s3 media backend needs R2_ACCESS_KEY and R2_SECRET_ACCESS_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend))
	}

	if c.NowPlayingTimeout <= 0 {
		errs = append(errs, errors.New("NOW_PLAYING_TIMEOUT must be positive"))
	}
	if c.BodyLimit <= 0 {
		errs = append(errs, errors.New("BODY_LIMIT must be positive"))
	}
	if c.DefaultPageSize <= 0 || c.MaxPageSize <= 0 {
		errs = append(errs, errors.New("page sizes must be positive"))
	} else if c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, errors.New("DEFAULT_PAGE_SIZE must not exceed MAX_PAGE_SIZE"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
