package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names shared by the storage-selecting sections.
const (
	BackendMemory    = "memory"
	BackendValkey    = "valkey"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendObject    = "object"
	BackendHTTP      = "http"
	BackendImmediate = "immediate"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Search      SearchConfig      `yaml:"search"`
	History     HistoryConfig     `yaml:"history"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Facility    FacilityConfig    `yaml:"facility"`
	Location    LocationConfig    `yaml:"location"`
	Trigger     TriggerConfig     `yaml:"trigger"`
	CityData    CityDataConfig    `yaml:"cityData"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Valkey      ValkeyConfig      `yaml:"valkey"`
	SQLite      SQLiteConfig      `yaml:"sqlite"`
	Storage     ObjectStorage     `yaml:"storage"`
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

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// AuthConfig holds token signing and Google sign-in settings.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
	Google          GoogleConfig  `yaml:"google"`
}

type GoogleConfig struct {
	ClientID             string `yaml:"clientId"`
	ClientSecret         string `yaml:"clientSecret"`
	RedirectURL          string `yaml:"redirectUrl"`
	TokenEncryptionKey   string `yaml:"tokenEncryptionKey"`
	PostLoginRedirectURL string `yaml:"postLoginRedirectUrl"`
}

// SearchConfig selects the catalogue source and result limits.
type SearchConfig struct {
	Source       string `yaml:"source"`
	DefaultLimit int    `yaml:"defaultLimit"`
	MaxLimit     int    `yaml:"maxLimit"`
	ObjectKey    string `yaml:"objectKey"`
}

// HistoryConfig selects where per-owner search history is kept.
type HistoryConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
}

// PreferencesConfig selects where per-owner preferences are kept.
type PreferencesConfig struct {
	Backend string `yaml:"backend"`
}

// FacilityConfig points at the facility backend and bounds nearby fetches.
type FacilityConfig struct {
	Source          string        `yaml:"source"`
	BaseURL         string        `yaml:"baseUrl"`
	DefaultRadiusKm float64       `yaml:"defaultRadiusKm"`
	MaxRadiusKm     float64       `yaml:"maxRadiusKm"`
	FetchTimeout    time.Duration `yaml:"fetchTimeout"`
	MaxConcurrency  int           `yaml:"maxConcurrency"`
}

// LocationConfig tunes the location tracker gates.
type LocationConfig struct {
	DebounceWait            time.Duration `yaml:"debounceWait"`
	TriggerThresholdMeters  float64       `yaml:"triggerThresholdMeters"`
	RefetchThresholdMeters  float64       `yaml:"refetchThresholdMeters"`
	RefetchRadiusKm         float64       `yaml:"refetchRadiusKm"`
	RefreshTimeout          time.Duration `yaml:"refreshTimeout"`
	TriggerOnSearchedPlaces bool          `yaml:"triggerOnSearchedPlaces"`
	IdleTTL                 time.Duration `yaml:"idleTTL"`
}

// TriggerConfig controls location trigger evaluation and its job queue.
type TriggerConfig struct {
	RadiusKm         float64       `yaml:"radiusKm"`
	Cooldown         time.Duration `yaml:"cooldown"`
	MaxPerEvaluation int           `yaml:"maxPerEvaluation"`
	Categories       []string      `yaml:"categories"`
	InboxCapacity    int           `yaml:"inboxCapacity"`
	Queue            QueueConfig   `yaml:"queue"`
}

// QueueConfig selects the trigger job transport.
type QueueConfig struct {
	Backend string `yaml:"backend"`
	Key     string `yaml:"key"`
}

// CityDataConfig configures the Seoul real-time citydata client and cache.
type CityDataConfig struct {
	APIKey       string        `yaml:"apiKey"`
	BaseURL      string        `yaml:"baseUrl"`
	CacheTTL     time.Duration `yaml:"cacheTtl"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	Cache        string        `yaml:"cache"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ObjectStorage configures S3-compatible storage (R2, MinIO).
type ObjectStorage struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file, a .env file and environment
// variables, in increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

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
	envString("HTTP_ADDRESS", &cfg.HTTP.Address)
	envBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	envBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	envInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	envDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)
	envList("HTTP_CORS_ORIGINS", &cfg.HTTP.CORS.AllowedOrigins)

	envString("AUTH_SECRET", &cfg.Auth.Secret)
	envDuration("AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)
	envDuration("AUTH_REFRESH_TOKEN_TTL", &cfg.Auth.RefreshTokenTTL)
	envString("GOOGLE_CLIENT_ID", &cfg.Auth.Google.ClientID)
	envString("GOOGLE_CLIENT_SECRET", &cfg.Auth.Google.ClientSecret)
	envString("GOOGLE_REDIRECT_URL", &cfg.Auth.Google.RedirectURL)
	envString("GOOGLE_TOKEN_ENCRYPTION_KEY", &cfg.Auth.Google.TokenEncryptionKey)
	envString("GOOGLE_POST_LOGIN_REDIRECT_URL", &cfg.Auth.Google.PostLoginRedirectURL)

	envString("SEARCH_SOURCE", &cfg.Search.Source)
	envInt("SEARCH_DEFAULT_LIMIT", &cfg.Search.DefaultLimit)
	envInt("SEARCH_MAX_LIMIT", &cfg.Search.MaxLimit)
	envString("SEARCH_OBJECT_KEY", &cfg.Search.ObjectKey)

	envString("HISTORY_BACKEND", &cfg.History.Backend)
	envDuration("HISTORY_TTL", &cfg.History.TTL)
	envString("PREFERENCES_BACKEND", &cfg.Preferences.Backend)

	envString("FACILITY_SOURCE", &cfg.Facility.Source)
	envString("FACILITY_BASE_URL", &cfg.Facility.BaseURL)
	envFloat("FACILITY_DEFAULT_RADIUS_KM", &cfg.Facility.DefaultRadiusKm)
	envFloat("FACILITY_MAX_RADIUS_KM", &cfg.Facility.MaxRadiusKm)
	envDuration("FACILITY_FETCH_TIMEOUT", &cfg.Facility.FetchTimeout)
	envInt("FACILITY_MAX_CONCURRENCY", &cfg.Facility.MaxConcurrency)

	envDuration("LOCATION_DEBOUNCE_WAIT", &cfg.Location.DebounceWait)
	envFloat("LOCATION_TRIGGER_THRESHOLD_M", &cfg.Location.TriggerThresholdMeters)
	envFloat("LOCATION_REFETCH_THRESHOLD_M", &cfg.Location.RefetchThresholdMeters)
	envFloat("LOCATION_REFETCH_RADIUS_KM", &cfg.Location.RefetchRadiusKm)
	envBool("LOCATION_TRIGGER_ON_SEARCHED", &cfg.Location.TriggerOnSearchedPlaces)
	envDuration("LOCATION_IDLE_TTL", &cfg.Location.IdleTTL)

	envFloat("TRIGGER_RADIUS_KM", &cfg.Trigger.RadiusKm)
	envDuration("TRIGGER_COOLDOWN", &cfg.Trigger.Cooldown)
	envInt("TRIGGER_MAX_PER_EVALUATION", &cfg.Trigger.MaxPerEvaluation)
	envList("TRIGGER_CATEGORIES", &cfg.Trigger.Categories)
	envString("TRIGGER_QUEUE_BACKEND", &cfg.Trigger.Queue.Backend)
	envString("TRIGGER_QUEUE_KEY", &cfg.Trigger.Queue.Key)

	envString("SEOUL_API_KEY", &cfg.CityData.APIKey)
	envString("SEOUL_API_BASE_URL", &cfg.CityData.BaseURL)
	envDuration("CITYDATA_CACHE_TTL", &cfg.CityData.CacheTTL)
	envDuration("CITYDATA_FETCH_TIMEOUT", &cfg.CityData.FetchTimeout)
	envString("CITYDATA_CACHE", &cfg.CityData.Cache)

	envString("POSTGRES_DSN", &cfg.Postgres.DSN)
	envInt32("POSTGRES_MAX_CONNS", &cfg.Postgres.MaxConns)
	envInt32("POSTGRES_MIN_CONNS", &cfg.Postgres.MinConns)
	envString("VALKEY_ADDR", &cfg.Valkey.Addr)
	envString("VALKEY_PREFIX", &cfg.Valkey.Prefix)
	envString("SQLITE_PATH", &cfg.SQLite.Path)

	envString("STORAGE_ENDPOINT", &cfg.Storage.Endpoint)
	envString("STORAGE_ACCESS_KEY", &cfg.Storage.AccessKey)
	envString("STORAGE_SECRET_KEY", &cfg.Storage.SecretKey)
	envString("STORAGE_BUCKET", &cfg.Storage.Bucket)
	envString("STORAGE_REGION", &cfg.Storage.Region)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func envInt32(key string, dst *int32) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(parsed)
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func envList(key string, dst *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

// Default returns the built-in configuration before file and env overrides.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             40,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/auth",
					"/api/v1/history",
					"/api/v1/preferences/toggle",
					"/api/v1/location",
					"/api/v1/notifications/*/read",
				},
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			},
		},
		Auth: AuthConfig{
			Secret:          "dev-secret-change-me",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
		Search: SearchConfig{
			Source:       BackendMemory,
			DefaultLimit: 10,
			MaxLimit:     50,
			ObjectKey:    "search/items.json",
		},
		History: HistoryConfig{
			Backend: BackendMemory,
		},
		Preferences: PreferencesConfig{
			Backend: BackendMemory,
		},
		Facility: FacilityConfig{
			Source:          BackendMemory,
			DefaultRadiusKm: 2,
			MaxRadiusKm:     10,
			FetchTimeout:    5 * time.Second,
			MaxConcurrency:  4,
		},
		Location: LocationConfig{
			DebounceWait:           time.Second,
			TriggerThresholdMeters: 100,
			RefetchThresholdMeters: 400,
			RefetchRadiusKm:        2,
			RefreshTimeout:         10 * time.Second,
			IdleTTL:                30 * time.Minute,
		},
		Trigger: TriggerConfig{
			RadiusKm:         0.5,
			Cooldown:         30 * time.Minute,
			MaxPerEvaluation: 3,
			Categories:       []string{"cooling_center"},
			InboxCapacity:    100,
			Queue: QueueConfig{
				Backend: BackendImmediate,
				Key:     "seoulfit:trigger:jobs",
			},
		},
		CityData: CityDataConfig{
			BaseURL:      "http://openapi.seoul.go.kr:8088",
			CacheTTL:     5 * time.Minute,
			FetchTimeout: 8 * time.Second,
			Cache:        BackendMemory,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Valkey: ValkeyConfig{
			Prefix: "seoulfit",
		},
		SQLite: SQLiteConfig{
			Path: "data/seoulfit.db",
		},
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
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if err := oneOf("search.source", c.Search.Source, BackendMemory, BackendPostgres, BackendObject); err != nil {
		return err
	}
	if c.Search.DefaultLimit <= 0 || c.Search.MaxLimit < c.Search.DefaultLimit {
		return errors.New("search limits must satisfy 0 < defaultLimit <= maxLimit")
	}
	if err := oneOf("history.backend", c.History.Backend, BackendMemory, BackendValkey, BackendSQLite); err != nil {
		return err
	}
	if err := oneOf("preferences.backend", c.Preferences.Backend, BackendMemory, BackendValkey, BackendSQLite); err != nil {
		return err
	}
	if err := oneOf("facility.source", c.Facility.Source, BackendMemory, BackendHTTP); err != nil {
		return err
	}
	if c.Facility.Source == BackendHTTP && strings.TrimSpace(c.Facility.BaseURL) == "" {
		return errors.New("facility.baseUrl cannot be empty for the http source")
	}
	if c.Facility.DefaultRadiusKm <= 0 || c.Facility.MaxRadiusKm < c.Facility.DefaultRadiusKm {
		return errors.New("facility radius must satisfy 0 < defaultRadiusKm <= maxRadiusKm")
	}
	if c.Location.TriggerThresholdMeters <= 0 || c.Location.RefetchThresholdMeters <= 0 {
		return errors.New("location thresholds must be positive")
	}
	if c.Location.IdleTTL < 0 {
		return errors.New("location.idleTTL cannot be negative")
	}
	if c.Location.DebounceWait < 0 {
		return errors.New("location.debounceWait cannot be negative")
	}
	if c.Trigger.RadiusKm <= 0 {
		return errors.New("trigger.radiusKm must be positive")
	}
	if c.Trigger.Cooldown < 0 {
		return errors.New("trigger.cooldown cannot be negative")
	}
	if err := oneOf("trigger.queue.backend", c.Trigger.Queue.Backend, BackendImmediate, BackendValkey); err != nil {
		return err
	}
	if c.CityData.CacheTTL <= 0 {
		return errors.New("cityData.cacheTtl must be positive")
	}
	if err := oneOf("cityData.cache", c.CityData.Cache, BackendMemory, BackendValkey); err != nil {
		return err
	}
	if c.usesBackend(BackendValkey) && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when a valkey backend is selected")
	}
	if c.usesBackend(BackendSQLite) && strings.TrimSpace(c.SQLite.Path) == "" {
		return errors.New("sqlite.path cannot be empty when a sqlite backend is selected")
	}
	if c.Search.Source == BackendPostgres && strings.TrimSpace(c.Postgres.DSN) == "" {
		return errors.New("postgres.dsn cannot be empty for the postgres search source")
	}
	if c.Search.Source == BackendObject && strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.New("storage.bucket cannot be empty for the object search source")
	}
	return nil
}

func (c *Config) usesBackend(name string) bool {
	return c.History.Backend == name ||
		c.Preferences.Backend == name ||
		c.Trigger.Queue.Backend == name ||
		c.CityData.Cache == name
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), value)
}
