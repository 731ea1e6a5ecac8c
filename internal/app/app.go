package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"NewsDesk/internal/api"
	"NewsDesk/internal/config"
	"NewsDesk/internal/infrastructure/cache"
	"NewsDesk/internal/infrastructure/feeds"
	"NewsDesk/internal/infrastructure/llm"
	"NewsDesk/internal/infrastructure/metrics"
	"NewsDesk/internal/infrastructure/scheduler"
	"NewsDesk/internal/infrastructure/storage/memory"
	"NewsDesk/internal/infrastructure/storage/mongodb"
	"NewsDesk/internal/infrastructure/storage/postgres"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/processor"
	"NewsDesk/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	store   ports.Store
	redis   *redis.Client
	metrics *metrics.Recorder

	Sources    *usecase.SourceService
	Fetcher    *usecase.FetchOrchestrator
	Categorize *usecase.CategorizationJob
	Review     *usecase.ReviewService
	Logs       *usecase.LogService
	scheduler  *usecase.Scheduler
}

// New opens the configured store and cache and builds every service. The
// caller owns the result and must Close it.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}
	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.NewRecorder()}

	store, err := openStore(ctx, cfg.Storage, baseLogger.With("component", "storage"))
	if err != nil {
		return nil, err
	}
	a.store = store

	var seen ports.SeenCache
	if cfg.Cache.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Cache.Redis)
		if err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		a.redis = rdb
		seen = cache.NewSeenCache(rdb, cfg.Cache.Redis.TTL)
	}

	client := feeds.NewHTTPClient(cfg.Fetch.Timeout)
	registry := processor.NewRegistry(
		feeds.NewRSSProcessor(client, cfg.Fetch, baseLogger.With("component", "feeds.rss")),
		feeds.NewHTMLProcessor(client, feeds.NewSiteTable(cfg.HTMLSites), cfg.Fetch, baseLogger.With("component", "feeds.html")),
	)

	a.Sources = usecase.NewSourceService(store, baseLogger.With("component", "sources"))
	a.Fetcher = usecase.NewFetchOrchestrator(usecase.FetchDeps{
		Sources:  store,
		Logs:     store,
		Registry: registry,
		Saver:    usecase.NewSaver(store, seen, baseLogger.With("component", "saver")),
		Limits:   usecase.NewLimitPolicy(cfg.Fetch.DefaultMaxArticles),
		Recorder: a.metrics,
		Logger:   baseLogger.With("component", "fetch"),
	})

	catDeps := usecase.CategorizeDeps{
		Articles: store,
		Logs:     store,
		Config:   cfg.Categorization,
		Recorder: a.metrics,
		Logger:   baseLogger.With("component", "categorize"),
	}
	if cfg.OpenAI.APIKey != "" {
		categorizer, err := llm.NewOpenAICategorizer(cfg.OpenAI, baseLogger.With("component", "llm.openai"))
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		catDeps.Categorizer = categorizer
	} else {
		baseLogger.Warn("OPENAI_API_KEY not set, categorization disabled")
	}
	a.Categorize = usecase.NewCategorizationJob(catDeps)

	a.Review = usecase.NewReviewService(usecase.ReviewDeps{
		Articles:    store,
		Corrections: store,
		Cache:       seen,
		Logger:      baseLogger.With("component", "review"),
	})
	a.Logs = usecase.NewLogService(store, store, baseLogger.With("component", "logs"))

	if spec := scheduler.Spec(cfg.Scheduler.Cron, cfg.Scheduler.FetchInterval); spec != "" {
		var categorize *usecase.CategorizationJob
		if cfg.Scheduler.CategorizeAfterFetch {
			categorize = a.Categorize
		}
		a.scheduler = usecase.NewScheduler(
			scheduler.NewCronScheduler(spec, cfg.Scheduler.Location(), false),
			a.Fetcher,
			categorize,
			baseLogger.With("component", "scheduler"),
		)
	}
	return a, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (ports.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		return memory.New(), nil
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return store, nil
	default:
		store, err := mongodb.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("open mongodb: %w", err)
		}
		return store, nil
	}
}

// Router builds the HTTP API over the application's services.
func (a *Application) Router() http.Handler {
	return api.NewRouter(api.Deps{
		Sources:    a.Sources,
		Fetcher:    a.Fetcher,
		Categorize: a.Categorize,
		Review:     a.Review,
		Logs:       a.Logs,
		Metrics:    a.metrics.Handler(),
		APIToken:   a.cfg.HTTP.APIToken,
		Logger:     a.logger.With("component", "api"),
	})
}

// Serve runs the HTTP API and the scheduler until ctx is cancelled, then
// shuts both down.
func (a *Application) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.logger.Info("scheduler started",
			"schedule", scheduler.Spec(a.cfg.Scheduler.Cron, a.cfg.Scheduler.FetchInterval),
			"timezone", a.cfg.Scheduler.Location().String(),
			"categorize_after_fetch", a.cfg.Scheduler.CategorizeAfterFetch)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			a.logger.Error("scheduler stop", "error", err)
		}
	}
	return serveErr
}

// Close releases the store and cache connections.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close(ctx))
	}
	return errors.Join(errs...)
}
