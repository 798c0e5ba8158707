package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	App       AppConfig
	Media     MediaConfig
	Render    RenderConfig
	Heartbeat HeartbeatConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// StoreConfig selects the document store. An empty URL runs the API without
// a database; project routes then answer 503.
type StoreConfig struct {
	URL  string
	Name string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
	ServiceName string
}

type MediaConfig struct {
	PublicBaseURL string
}

type RenderConfig struct {
	// RatePerSecond <= 0 disables render rate limiting.
	RatePerSecond float64
	Burst         int
}

type HeartbeatConfig struct {
	Schedule string
}

type CORSConfig struct {
	AllowOrigins []string
}

// Supported DATABASE_URL schemes.
const (
	SchemeRedis       = "redis"
	SchemeRedisTLS    = "rediss"
	SchemePostgres    = "postgres"
	SchemePostgresQL  = "postgresql"
	defaultDBName     = "realestate_cinematic"
	defaultPublicBase = "https://files.example.com"
)

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			URL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
			Name: getEnv("DATABASE_NAME", defaultDBName),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "cinematic-backend"),
		},
		Media: MediaConfig{
			PublicBaseURL: getEnv("PUBLIC_FILES_BASE_URL", defaultPublicBase),
		},
		Render: RenderConfig{
			RatePerSecond: getEnvAsFloat("RENDER_RATE_LIMIT", 5),
			Burst:         getEnvAsInt("RENDER_RATE_BURST", 10),
		},
		Heartbeat: HeartbeatConfig{
			Schedule: getEnv("HEARTBEAT_SCHEDULE", "@every 30s"),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Store.URL != "" {
		if _, err := c.Store.Scheme(); err != nil {
			return err
		}
	}

	if _, err := url.ParseRequestURI(c.Media.PublicBaseURL); err != nil {
		return fmt.Errorf("PUBLIC_FILES_BASE_URL is not a valid url: %w", err)
	}

	if c.Render.Burst < 0 {
		return fmt.Errorf("RENDER_RATE_BURST must not be negative")
	}

	return nil
}

// Scheme returns the normalized DATABASE_URL scheme.
func (s StoreConfig) Scheme() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("DATABASE_URL is not a valid url: %w", err)
	}
	switch scheme := strings.ToLower(u.Scheme); scheme {
	case SchemeRedis, SchemeRedisTLS:
		return SchemeRedis, nil
	case SchemePostgres, SchemePostgresQL:
		return SchemePostgres, nil
	default:
		return "", fmt.Errorf("DATABASE_URL scheme %q is not supported (use redis:// or postgres://)", u.Scheme)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
