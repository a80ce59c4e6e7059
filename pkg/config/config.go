package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	Rating   RatingConfig
	Scoring  ScoringConfig
	Rewrite  RewriteConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig carries the bearer-token settings for mutating endpoints.
type AuthConfig struct {
	Enabled    bool
	JWTSecret  string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RatingConfig tunes the rating pipeline and its policy data.
type RatingConfig struct {
	MaxScenes      int
	CacheTTL       time.Duration
	ThresholdsFile string
	EvidenceLimit  int
}

// ScoringConfig selects the feature scorer backend.
type ScoringConfig struct {
	Backend      string // "lexicon" or "remote"
	RemoteURL    string
	Timeout      time.Duration
	ModelVersion string
}

// RewriteConfig controls the optional generative rewrite capability.
type RewriteConfig struct {
	Enabled bool
	APIKey  string
	Model   string
	Timeout time.Duration
}

// JobsConfig sizes the asynchronous rating worker pool.
type JobsConfig struct {
	Workers    int
	BufferSize int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Enabled:    v.GetBool("AUTH_ENABLED"),
		JWTSecret:  v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Rating = RatingConfig{
		MaxScenes:      v.GetInt("RATING_MAX_SCENES"),
		CacheTTL:       parseDuration(v.GetString("RATING_CACHE_TTL"), time.Hour),
		ThresholdsFile: v.GetString("RATING_THRESHOLDS_FILE"),
		EvidenceLimit:  v.GetInt("RATING_EVIDENCE_LIMIT"),
	}

	cfg.Scoring = ScoringConfig{
		Backend:      v.GetString("SCORING_BACKEND"),
		RemoteURL:    v.GetString("SCORING_REMOTE_URL"),
		Timeout:      parseDuration(v.GetString("SCORING_TIMEOUT"), 30*time.Second),
		ModelVersion: v.GetString("SCORING_MODEL_VERSION"),
	}

	cfg.Rewrite = RewriteConfig{
		Enabled: v.GetBool("REWRITE_ENABLED"),
		APIKey:  v.GetString("REWRITE_API_KEY"),
		Model:   v.GetString("REWRITE_MODEL"),
		Timeout: parseDuration(v.GetString("REWRITE_TIMEOUT"), 60*time.Second),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cinerate")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RATING_MAX_SCENES", 1000)
	v.SetDefault("RATING_CACHE_TTL", "1h")
	v.SetDefault("RATING_THRESHOLDS_FILE", "")
	v.SetDefault("RATING_EVIDENCE_LIMIT", 5)

	v.SetDefault("SCORING_BACKEND", "lexicon")
	v.SetDefault("SCORING_REMOTE_URL", "http://localhost:8001")
	v.SetDefault("SCORING_TIMEOUT", "30s")
	v.SetDefault("SCORING_MODEL_VERSION", "lexicon-v1")

	v.SetDefault("REWRITE_ENABLED", false)
	v.SetDefault("REWRITE_API_KEY", "")
	v.SetDefault("REWRITE_MODEL", "claude-sonnet-4-20250514")
	v.SetDefault("REWRITE_TIMEOUT", "60s")

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_BUFFER_SIZE", 16)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
