package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"docgen/api/internal/app"
	"docgen/api/internal/archive"
	"docgen/api/internal/blob"
	"docgen/api/internal/config"
	"docgen/api/internal/export"
	"docgen/api/internal/llm"
	"docgen/api/internal/logging"
	"docgen/api/internal/metrics"
	"docgen/api/internal/search"
	"docgen/api/internal/session"
	"docgen/api/internal/store"
	"docgen/api/internal/vector"
	"docgen/api/internal/workspace"
)

func main() {
	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	m := metrics.New()
	ctx := context.Background()

	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		logger.Warn().Msg("LLM_API_KEY is not set, generation requests will fail")
	}
	gateway := llm.NewGateway(llm.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, logging.Component(logger, "llm"), m)

	vectorClient := vector.NewClient(vector.Config{
		BaseURL: cfg.VectorServiceURL,
		Timeout: cfg.VectorTimeout,
	}, logging.Component(logger, "vector"))

	opts := app.Options{
		Generator: gateway,
		Content:   vectorClient,
		Logger:    logger,
		Metrics:   m,
	}

	searchOpts := search.Options{
		Vector:  vectorClient,
		Logger:  logging.Component(logger, "search"),
		Metrics: m,
	}
	var db *sql.DB
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		var err error
		db, err = store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()

		if err := store.ApplyMigrations(ctx, db, os.DirFS(cfg.MigrationsDir)); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
		library := store.NewPostgresStore(db)
		opts.Library = library
		searchOpts.Store = library
		searchOpts.PgFTS = search.NewPgFTS(db)
	} else {
		logger.Warn().Msg("DATABASE_URL is not set, reference library disabled")
	}
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient := search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logging.Component(logger, "meilisearch"))
		defer meiliClient.Close()
		searchOpts.Meili = meiliClient
	}
	searchService := search.NewService(searchOpts)
	opts.Search = searchService
	if db != nil {
		go searchService.ReindexFromStore(ctx)
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SelectionTTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		opts.Selections = redisStore
		logger.Info().Msg("using Redis for selection records")
	} else {
		opts.Selections = session.NewMemoryStore(cfg.SelectionTTL)
		logger.Info().Msg("using in-memory selection records")
	}

	if strings.TrimSpace(cfg.MinIOEndpoint) != "" {
		blobs, err := blob.NewMinIOStore(ctx, blob.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("minio connection failed")
		}
		opts.Blobs = blobs
	} else {
		blobs, err := blob.NewFSStore(cfg.UploadsDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create uploads dir")
		}
		opts.Blobs = blobs
	}

	if err := os.MkdirAll(cfg.ArchiveDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create archive dir")
	}
	opts.Archive = archive.New(cfg.ArchiveDir)
	opts.Exporter = export.NewService(cfg.TemplatesDir, logging.Component(logger, "export"))

	registry, err := workspace.NewRegistry(workspace.Options{
		Capacity:    cfg.WorkspaceCapacity,
		MaxVersions: cfg.MaxVersions,
		Logger:      logging.Component(logger, "workspace"),
		Metrics:     m,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("workspace registry")
	}
	opts.Workspaces = registry

	service := app.NewService(opts)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation calls can take as long as the LLM timeout.
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("docgen API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
