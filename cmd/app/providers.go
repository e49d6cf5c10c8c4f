package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
	"github.com/seoulfit/seoulfit-api/internal/domain/citydata"
	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/domain/history"
	"github.com/seoulfit/seoulfit-api/internal/domain/location"
	"github.com/seoulfit/seoulfit-api/internal/domain/preference"
	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/domain/trigger"
	"github.com/seoulfit/seoulfit-api/internal/infra/citycache"
	"github.com/seoulfit/seoulfit-api/internal/infra/config"
	"github.com/seoulfit/seoulfit-api/internal/infra/facilitysource"
	"github.com/seoulfit/seoulfit-api/internal/infra/kvstore"
	"github.com/seoulfit/seoulfit-api/internal/infra/notificationstore"
	"github.com/seoulfit/seoulfit-api/internal/infra/queue"
	"github.com/seoulfit/seoulfit-api/internal/infra/searchrepo"
	"github.com/seoulfit/seoulfit-api/internal/infra/seoulapi"
	"github.com/seoulfit/seoulfit-api/internal/infra/userrepo"
)

func provideSearchConfig(cfg *config.Config) search.Config {
	return search.Config{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	}
}

func provideFacilityConfig(cfg *config.Config) facility.Config {
	return facility.Config{
		DefaultRadiusKm: cfg.Facility.DefaultRadiusKm,
		MaxRadiusKm:     cfg.Facility.MaxRadiusKm,
		FetchTimeout:    cfg.Facility.FetchTimeout,
		MaxConcurrency:  cfg.Facility.MaxConcurrency,
	}
}

func provideLocationConfig(cfg *config.Config) location.Config {
	return location.Config{
		DebounceWait:            cfg.Location.DebounceWait,
		TriggerThresholdMeters:  cfg.Location.TriggerThresholdMeters,
		RefetchThresholdMeters:  cfg.Location.RefetchThresholdMeters,
		RefetchRadiusKm:         cfg.Location.RefetchRadiusKm,
		RefreshTimeout:          cfg.Location.RefreshTimeout,
		TriggerOnSearchedPlaces: cfg.Location.TriggerOnSearchedPlaces,
		IdleTTL:                 cfg.Location.IdleTTL,
	}
}

func provideTriggerConfig(cfg *config.Config) trigger.Config {
	categories := make([]search.Category, 0, len(cfg.Trigger.Categories))
	for _, raw := range cfg.Trigger.Categories {
		categories = append(categories, search.Category(strings.TrimSpace(raw)))
	}
	return trigger.Config{
		RadiusKm:         cfg.Trigger.RadiusKm,
		Cooldown:         cfg.Trigger.Cooldown,
		MaxPerEvaluation: cfg.Trigger.MaxPerEvaluation,
		Categories:       categories,
	}
}

func provideCityDataConfig(cfg *config.Config) citydata.Config {
	return citydata.Config{
		CacheTTL:     cfg.CityData.CacheTTL,
		FetchTimeout: cfg.CityData.FetchTimeout,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}
}

// providePostgresPool returns nil when no DSN is set or the database is
// unreachable; dependents fall back to memory implementations.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, postgres backends disabled")
		return nil, func() {}
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, postgres backends disabled", "error", err)
		return nil, func() {}
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool", "error", err)
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, postgres backends disabled", "error", err)
		pool.Close()
		return nil, func() {}
	}
	logger.Info("postgres pool ready")
	return pool, pool.Close
}

// provideValkeyClient connects only when some section selects valkey.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	if !usesValkey(cfg) {
		return nil, func() {}
	}
	opt, err := buildValkeyOptions(cfg.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory", "error", err)
		return nil, func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory", "error", err)
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory", "error", err)
		client.Close()
		return nil, func() {}
	}
	logger.Info("valkey client ready", "addr", cfg.Valkey.Addr)
	return client, client.Close
}

func usesValkey(cfg *config.Config) bool {
	return cfg.History.Backend == config.BackendValkey ||
		cfg.Preferences.Backend == config.BackendValkey ||
		cfg.CityData.Cache == config.BackendValkey ||
		cfg.Trigger.Queue.Backend == config.BackendValkey
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// provideSQLiteStore opens the local database file when history or
// preferences select sqlite.
func provideSQLiteStore(cfg *config.Config, logger *slog.Logger) (*kvstore.SQLiteStore, func()) {
	if cfg.History.Backend != config.BackendSQLite && cfg.Preferences.Backend != config.BackendSQLite {
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store, err := kvstore.OpenSQLiteStore(ctx, cfg.SQLite.Path)
	if err != nil {
		logger.Error("failed to open sqlite store, falling back to memory", "path", cfg.SQLite.Path, "error", err)
		return nil, func() {}
	}
	logger.Info("sqlite store ready", "path", cfg.SQLite.Path)
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("sqlite close failed", "error", err)
		}
	}
}

func selectKVStore(backend, namespace string, ttl time.Duration, cfg *config.Config, vk valkey.Client, sqlite *kvstore.SQLiteStore, logger *slog.Logger) kvstore.Store {
	switch {
	case backend == config.BackendValkey && vk != nil:
		logger.Info("using valkey store", "namespace", namespace)
		return kvstore.NewValkeyStore(vk, cfg.Valkey.Prefix+":"+namespace, ttl)
	case backend == config.BackendSQLite && sqlite != nil:
		logger.Info("using sqlite store", "namespace", namespace)
		return sqlite
	default:
		logger.Info("using memory store", "namespace", namespace)
		return kvstore.NewMemoryStore(ttl)
	}
}

func provideHistoryStore(cfg *config.Config, vk valkey.Client, sqlite *kvstore.SQLiteStore, logger *slog.Logger) history.Store {
	return selectKVStore(cfg.History.Backend, "history", cfg.History.TTL, cfg, vk, sqlite, logger)
}

func providePreferenceStore(cfg *config.Config, vk valkey.Client, sqlite *kvstore.SQLiteStore, logger *slog.Logger) preference.Store {
	return selectKVStore(cfg.Preferences.Backend, "preferences", 0, cfg, vk, sqlite, logger)
}

func provideSearchSource(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) search.ItemSource {
	switch cfg.Search.Source {
	case config.BackendPostgres:
		if pool != nil {
			logger.Info("search index source: postgres")
			return searchrepo.NewPostgresSource(pool)
		}
	case config.BackendObject:
		src, err := searchrepo.NewObjectSource(searchrepo.ObjectConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Key:       cfg.Search.ObjectKey,
		}, logger)
		if err == nil {
			logger.Info("search index source: object storage", "bucket", cfg.Storage.Bucket, "key", cfg.Search.ObjectKey)
			return src
		}
		logger.Error("object storage unavailable", "error", err)
	}
	logger.Info("search index source: built-in seed")
	return searchrepo.NewMemorySource(nil)
}

func provideFacilitySources(cfg *config.Config, logger *slog.Logger) []facility.Source {
	if cfg.Facility.Source == config.BackendHTTP && strings.TrimSpace(cfg.Facility.BaseURL) != "" {
		logger.Info("facility source: http", "baseUrl", cfg.Facility.BaseURL)
		return facilitysource.NewHTTPSources(cfg.Facility.BaseURL, &http.Client{Timeout: cfg.Facility.FetchTimeout})
	}
	logger.Info("facility source: built-in seed")
	return facilitysource.NewSeedSources()
}

func provideCityDataClient(cfg *config.Config) citydata.Client {
	return seoulapi.NewClient(cfg.CityData.BaseURL, cfg.CityData.APIKey)
}

func provideCityDataCache(cfg *config.Config, vk valkey.Client) citydata.Cache {
	if cfg.CityData.Cache == config.BackendValkey && vk != nil {
		return citycache.NewValkeyCache(vk, cfg.Valkey.Prefix+":citydata", cfg.CityData.CacheTTL)
	}
	return citydata.NewMemoryCache(cfg.CityData.CacheTTL)
}

func provideAuthRepository(pool *pgxpool.Pool, logger *slog.Logger) auth.Repository {
	if pool == nil {
		logger.Info("user repository: memory")
		return userrepo.NewMemoryRepository()
	}
	logger.Info("user repository: postgres")
	return userrepo.NewPostgresRepository(pool)
}

func provideInbox(cfg *config.Config) trigger.Inbox {
	return notificationstore.NewMemoryInbox(cfg.Trigger.InboxCapacity)
}

func provideTriggerService(cfg trigger.Config, facilities facility.Service, prefs preference.Service, inbox trigger.Inbox, logger *slog.Logger) trigger.Service {
	return trigger.NewService(cfg, facilities, prefs, inbox, logger)
}

// provideTriggerQueue starts the worker that feeds trigger jobs into svc.
func provideTriggerQueue(cfg *config.Config, vk valkey.Client, svc trigger.Service, logger *slog.Logger) (trigger.Queue, func()) {
	if cfg.Trigger.Queue.Backend == config.BackendValkey && vk != nil {
		q := queue.NewValkeyQueue(vk, cfg.Trigger.Queue.Key, logger)
		q.SetHandler(svc.HandleJob)
		logger.Info("trigger queue: valkey", "key", cfg.Trigger.Queue.Key)
		return q, q.Close
	}
	q := queue.NewImmediateQueue(svc.HandleJob)
	logger.Info("trigger queue: immediate")
	return q, q.Close
}

func provideTracker(cfg location.Config, facilities facility.Service, publisher *trigger.Publisher, logger *slog.Logger) (*location.Tracker, func()) {
	tracker := location.NewTracker(cfg, facilities, publisher, logger)
	return tracker, tracker.Close
}
