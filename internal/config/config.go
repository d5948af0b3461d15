package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends selectable with STORE_BACKEND
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"
)

// Config is the server and CLI configuration, read from the environment
// (after godotenv has loaded any .env file) with defaults for local development.
type Config struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`

	StoreBackend    string `mapstructure:"store_backend"`
	DatabaseURL     string `mapstructure:"database_url"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MongoURI        string `mapstructure:"mongodb_uri"`
	MongoDatabase   string `mapstructure:"mongodb_database"`
	RedisHost       string `mapstructure:"redis_host"`
	RedisPort       string `mapstructure:"redis_port"`
	RedisPassword   string `mapstructure:"redis_password"`
	JWTSecret       string `mapstructure:"jwt_secret"`
	CORSOrigins     string `mapstructure:"cors_origins"`
	RateLimitPerMin int    `mapstructure:"rate_limit_per_minute"`

	GeminiAPIKey        string        `mapstructure:"gemini_api_key"`
	GeminiModel         string        `mapstructure:"gemini_model"`
	GenerationTimeout   time.Duration `mapstructure:"generation_timeout"`
	GenerationSimulated bool          `mapstructure:"generation_simulated"`

	ContentLatestDate string `mapstructure:"content_latest_date"`
	ContentWindowDays int    `mapstructure:"content_window_days"`

	// FeedIngestInterval schedules RSS ingestion in the server; zero disables it
	FeedIngestInterval time.Duration `mapstructure:"feed_ingest_interval"`

	OTelEnabled      bool    `mapstructure:"otel_enabled"`
	OTelEndpoint     string  `mapstructure:"otel_exporter_otlp_endpoint"`
	OTelSamplingRate float64 `mapstructure:"otel_sampling_rate"`
}

var keys = []string{
	"port", "environment", "log_level", "log_file",
	"store_backend", "database_url", "sqlite_path", "mongodb_uri", "mongodb_database",
	"redis_host", "redis_port", "redis_password", "jwt_secret", "cors_origins", "rate_limit_per_minute",
	"gemini_api_key", "gemini_model", "generation_timeout", "generation_simulated",
	"content_latest_date", "content_window_days", "feed_ingest_interval",
	"otel_enabled", "otel_exporter_otlp_endpoint", "otel_sampling_rate",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8787")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "server.log")
	v.SetDefault("store_backend", BackendSQLite)
	v.SetDefault("sqlite_path", "dailybrief.db")
	v.SetDefault("mongodb_database", "dailybrief")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("rate_limit_per_minute", 20)
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("generation_timeout", 30*time.Second)
	v.SetDefault("content_window_days", 7)
	v.SetDefault("otel_exporter_otlp_endpoint", "localhost:4318")
	v.SetDefault("otel_sampling_rate", 1.0)
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the %s backend", BackendMongo)
		}
	case BackendSQLite:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.ContentWindowDays < 1 {
		return fmt.Errorf("CONTENT_WINDOW_DAYS must be at least 1, got %d", c.ContentWindowDays)
	}
	if c.ContentLatestDate != "" {
		if _, err := time.Parse("2006-01-02", c.ContentLatestDate); err != nil {
			return fmt.Errorf("CONTENT_LATEST_DATE must be YYYY-MM-DD: %w", err)
		}
	}
	if c.FeedIngestInterval < 0 {
		return fmt.Errorf("FEED_INGEST_INTERVAL must not be negative")
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UseSimulatedGeneration is true when no model key is configured or simulation is forced.
func (c *Config) UseSimulatedGeneration() bool {
	return c.GenerationSimulated || c.GeminiAPIKey == ""
}

// Origins splits CORS_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
