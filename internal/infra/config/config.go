package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	AirQuality AirQualityConfig `yaml:"airQuality"`
	Health     HealthConfig     `yaml:"health"`
	LLM        LLMConfig        `yaml:"llm"`
	Redis      RedisConfig      `yaml:"redis"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Storage    StorageConfig    `yaml:"storage"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
	CORS         CORSConfig      `yaml:"cors"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// CORSConfig lists browser origins allowed to call the API. Empty allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LocationConfig is one named coordinate pair.
type LocationConfig struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// AirQualityConfig controls forecast retrieval and the city ranking.
type AirQualityConfig struct {
	APIBaseURL     string           `yaml:"apiBaseUrl"`
	ForecastDays   int              `yaml:"forecastDays"`
	MaxDays        int              `yaml:"maxDays"`
	FetchTimeout   time.Duration    `yaml:"fetchTimeout"`
	MaxConcurrency int              `yaml:"maxConcurrency"`
	CacheTTL       time.Duration    `yaml:"cacheTtl"`
	RankingLimit   int              `yaml:"rankingLimit"`
	RefreshSpec    string           `yaml:"refreshSpec"`
	RefreshOnStart bool             `yaml:"refreshOnStart"`
	RefreshTimeout time.Duration    `yaml:"refreshTimeout"`
	Locations      []LocationConfig `yaml:"locations"`
}

// HealthConfig controls the health risk assessment domain.
type HealthConfig struct {
	InsightsEnabled bool   `yaml:"insightsEnabled"`
	Prompt          string `yaml:"prompt"`
	HistoryLimit    int    `yaml:"historyLimit"`
	MaxHistory      int    `yaml:"maxHistory"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// StorageConfig points at the S3-compatible bucket that receives ranking snapshots.
type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	setBool(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	setInt(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")
	if v := os.Getenv("HTTP_CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.CORS.AllowedOrigins = splitList(v)
	}

	setString(&cfg.AirQuality.APIBaseURL, "AQ_API_BASE_URL")
	setInt(&cfg.AirQuality.ForecastDays, "AQ_FORECAST_DAYS")
	setDuration(&cfg.AirQuality.FetchTimeout, "AQ_FETCH_TIMEOUT")
	setInt(&cfg.AirQuality.MaxConcurrency, "AQ_MAX_CONCURRENCY")
	setDuration(&cfg.AirQuality.CacheTTL, "AQ_CACHE_TTL")
	setInt(&cfg.AirQuality.RankingLimit, "AQ_RANKING_LIMIT")
	setString(&cfg.AirQuality.RefreshSpec, "AQ_REFRESH_SPEC")
	setBool(&cfg.AirQuality.RefreshOnStart, "AQ_REFRESH_ON_START")
	setDuration(&cfg.AirQuality.RefreshTimeout, "AQ_REFRESH_TIMEOUT")

	setBool(&cfg.Health.InsightsEnabled, "HEALTH_INSIGHTS_ENABLED")
	setString(&cfg.Health.Prompt, "HEALTH_PROMPT")

	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	setBool(&cfg.Redis.Enabled, "REDIS_ENABLED")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")

	setString(&cfg.Postgres.DSN, "POSTGRES_DSN")
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}

	setBool(&cfg.Storage.Enabled, "STORAGE_ENABLED")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.Region, "STORAGE_REGION")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude:     []string{"/api/v1/health/assessments"},
			},
		},
		AirQuality: AirQualityConfig{
			APIBaseURL:     "https://air-quality-api.open-meteo.com/v1/air-quality",
			ForecastDays:   5,
			MaxDays:        7,
			FetchTimeout:   8 * time.Second,
			MaxConcurrency: 8,
			CacheTTL:       15 * time.Minute,
			RankingLimit:   5,
			RefreshSpec:    "@every 30m",
			RefreshOnStart: true,
			RefreshTimeout: 2 * time.Minute,
			Locations:      metroManila(),
		},
		Health: HealthConfig{
			InsightsEnabled: true,
			Prompt:          "You are an environmental health assistant. Explain the assessment in plain language and suggest practical precautions.",
			HistoryLimit:    20,
			MaxHistory:      100,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			Timeout:     20 * time.Second,
		},
		Redis: RedisConfig{
			Prefix: "aqi",
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Storage: StorageConfig{
			Bucket: "aqi-snapshots",
			Prefix: "rankings",
		},
	}
}

func metroManila() []LocationConfig {
	return []LocationConfig{
		{"Manila", 14.5995, 120.9842},
		{"Quezon City", 14.6760, 121.0437},
		{"Caloocan", 14.6507, 120.9676},
		{"Las Piñas", 14.4649, 120.9779},
		{"Makati", 14.5547, 121.0244},
		{"Malabon", 14.6619, 120.9569},
		{"Mandaluyong", 14.5794, 121.0359},
		{"Marikina", 14.6507, 121.1029},
		{"Muntinlupa", 14.3832, 121.0409},
		{"Navotas", 14.6691, 120.9469},
		{"Parañaque", 14.4793, 121.0198},
		{"Pasay", 14.5378, 120.9896},
		{"Pasig", 14.5764, 121.0851},
		{"San Juan", 14.6019, 121.0355},
		{"Taguig", 14.5176, 121.0509},
		{"Valenzuela", 14.7000, 120.9820},
		{"Pateros", 14.5443, 121.0699},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	aq := c.AirQuality
	if strings.TrimSpace(aq.APIBaseURL) == "" {
		return errors.New("airQuality.apiBaseUrl cannot be empty")
	}
	if aq.ForecastDays <= 0 {
		return errors.New("airQuality.forecastDays must be positive")
	}
	if aq.MaxDays < aq.ForecastDays {
		return errors.New("airQuality.maxDays cannot be below forecastDays")
	}
	if aq.FetchTimeout <= 0 {
		return errors.New("airQuality.fetchTimeout must be positive")
	}
	if aq.MaxConcurrency <= 0 {
		return errors.New("airQuality.maxConcurrency must be positive")
	}
	if aq.CacheTTL < 0 {
		return errors.New("airQuality.cacheTtl cannot be negative")
	}
	if aq.RankingLimit < 0 {
		return errors.New("airQuality.rankingLimit cannot be negative")
	}
	for i, loc := range aq.Locations {
		if strings.TrimSpace(loc.Name) == "" {
			return fmt.Errorf("airQuality.locations[%d].name cannot be empty", i)
		}
		if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
			return fmt.Errorf("airQuality.locations[%d] has out of range coordinates", i)
		}
	}
	if c.Health.HistoryLimit <= 0 {
		return errors.New("health.historyLimit must be positive")
	}
	if c.Health.MaxHistory < c.Health.HistoryLimit {
		return errors.New("health.maxHistory cannot be below historyLimit")
	}
	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("redis.addr cannot be empty when redis cache is enabled")
	}
	if c.Storage.Enabled {
		if strings.TrimSpace(c.Storage.Endpoint) == "" {
			return errors.New("storage.endpoint cannot be empty when storage is enabled")
		}
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return errors.New("storage.bucket cannot be empty when storage is enabled")
		}
	}
	return nil
}
