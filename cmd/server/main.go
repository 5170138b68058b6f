package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/committy/internal/api"
	"github.com/mcoot/committy/internal/config"
	"github.com/mcoot/committy/internal/factory"
	"github.com/mcoot/committy/internal/services/auth"
	redisstorage "github.com/mcoot/committy/internal/storage/redis"
	sqlitestorage "github.com/mcoot/committy/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	factoryCfg := factory.Config{
		Logger:            logger,
		StorageType:       cfg.StorageType,
		AuthConfig:        auth.Config{AdminKeyHash: cfg.AdminKeyHash},
		WordListFile:      cfg.WordListFile,
		ImageCheckTimeout: cfg.ImageCheckTimeout,
		StrictSeedTokens:  cfg.StrictSeedTokens,
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	case factory.StorageTypeSQLite:
		sqliteCfg := sqlitestorage.DefaultConfig()
		sqliteCfg.Path = cfg.SQLitePath
		factoryCfg.SQLiteConfig = &sqliteCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !app.AuthService.Enabled() {
		logger.Warn("ADMIN_KEY_HASH not set, admin endpoints are disabled")
	}

	if cfg.SeedCatalog {
		n, err := app.SeedCatalog(context.Background(), cfg.SeedCatalogFile)
		if err != nil {
			logger.Error("failed to seed catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if n > 0 {
			logger.Info("seeded empty catalog", slog.Int("cards", n))
		}
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		CatalogService:    app.CatalogService,
		SessionController: app.SessionController,
		ReportService:     app.ReportService,
		AuthService:       app.AuthService,
		PublicBaseURL:     cfg.PublicBaseURL,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := app.Close(); err != nil {
		logger.Warn("failed to close storage", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
