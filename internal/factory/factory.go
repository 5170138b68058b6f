package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/committy/internal/dependencies/clock"
	"github.com/mcoot/committy/internal/dependencies/random"
	"github.com/mcoot/committy/internal/services/auth"
	"github.com/mcoot/committy/internal/services/catalog"
	"github.com/mcoot/committy/internal/services/deal"
	"github.com/mcoot/committy/internal/services/ledger"
	"github.com/mcoot/committy/internal/services/moderation"
	"github.com/mcoot/committy/internal/services/report"
	"github.com/mcoot/committy/internal/services/seedtoken"
	"github.com/mcoot/committy/internal/services/session"
	"github.com/mcoot/committy/internal/storage"
	"github.com/mcoot/committy/internal/storage/memory"
	redisstorage "github.com/mcoot/committy/internal/storage/redis"
	sqlitestorage "github.com/mcoot/committy/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Collaborators
	Codec  *seedtoken.Codec
	Filter *moderation.Filter
	Images catalog.ImageResolver

	// Services
	CatalogService    *catalog.Service
	DealService       *deal.Service
	LedgerService     *ledger.Service
	ReportService     *report.Service
	AuthService       *auth.Service
	SessionController *session.Controller

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLiteConfig holds database settings (required if StorageType is "sqlite")
	SQLiteConfig *sqlitestorage.Config
	// AuthConfig holds the admin key hash; zero value disables admin access
	AuthConfig auth.Config
	// WordListFile replaces the built-in profanity list (optional)
	WordListFile string
	// ImageCheckTimeout bounds remote image checks. Zero checks by file
	// extension only, without network access.
	ImageCheckTimeout time.Duration
	// StrictSeedTokens makes the codec reject tokens with wrong check digits
	StrictSeedTokens bool
	// Retry bounds ledger retries; zero value uses session.DefaultRetryPolicy()
	Retry session.RetryPolicy
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	filter := moderation.NewDefaultFilter(logger)
	if cfg.WordListFile != "" {
		if err := filter.LoadFromFile(cfg.WordListFile); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("load word list: %w", err)
		}
	}

	var images catalog.ImageResolver = moderation.ExtensionImageResolver{}
	if cfg.ImageCheckTimeout > 0 {
		images = moderation.NewHTTPImageResolver(cfg.ImageCheckTimeout, logger)
	}

	var codecOpts []seedtoken.Option
	if cfg.StrictSeedTokens {
		codecOpts = append(codecOpts, seedtoken.WithChecksumVerification())
	}

	retry := cfg.Retry
	if retry.MaxTries == 0 {
		retry = session.DefaultRetryPolicy()
	}

	return newWithDependencies(dependencies{
		store:  store,
		clock:  clock.New(),
		random: random.New(),
		codec:  seedtoken.New(codecOpts...),
		filter: filter,
		images: images,
		auth:   cfg.AuthConfig,
		retry:  retry,
		logger: logger,
	}), nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case StorageTypeSQLite:
		if cfg.SQLiteConfig == nil {
			return nil, errors.New("SQLiteConfig required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(*cfg.SQLiteConfig)
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}
}

type dependencies struct {
	store  storage.Storage
	clock  clock.Clock
	random random.Random
	codec  *seedtoken.Codec
	filter *moderation.Filter
	images catalog.ImageResolver
	auth   auth.Config
	retry  session.RetryPolicy
	logger *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(d dependencies) *App {
	catalogService := catalog.New(d.store, d.filter, d.images, d.clock, d.random, d.logger)
	dealService := deal.New(catalogService, d.logger)
	ledgerService := ledger.New(d.store, catalogService, d.clock, d.logger)
	reportService := report.New(d.store, d.clock, d.logger)
	authService := auth.New(d.auth, d.logger)
	sessionController := session.New(d.codec, dealService, ledgerService, catalogService, d.random, d.retry, d.logger)

	return &App{
		Storage:           d.store,
		Clock:             d.clock,
		Random:            d.random,
		Codec:             d.codec,
		Filter:            d.filter,
		Images:            d.images,
		CatalogService:    catalogService,
		DealService:       dealService,
		LedgerService:     ledgerService,
		ReportService:     reportService,
		AuthService:       authService,
		SessionController: sessionController,
		logger:            d.logger,
	}
}

// SeedCatalog inserts starter cards when the catalog is empty. An empty path
// uses the built-in cards.
func (a *App) SeedCatalog(ctx context.Context, path string) (int, error) {
	var (
		cards []catalog.SeedCard
		err   error
	)
	if path == "" {
		cards, err = catalog.DefaultSeedCards()
	} else {
		cards, err = catalog.LoadSeedCards(path)
	}
	if err != nil {
		return 0, err
	}
	return a.CatalogService.SeedIfEmpty(ctx, cards)
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
