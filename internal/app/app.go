// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sisemasexp/portal/internal/assistant"
	"github.com/sisemasexp/portal/internal/backup"
	"github.com/sisemasexp/portal/internal/buildinfo"
	"github.com/sisemasexp/portal/internal/config"
	"github.com/sisemasexp/portal/internal/content"
	"github.com/sisemasexp/portal/internal/genai"
	"github.com/sisemasexp/portal/internal/logger"
	"github.com/sisemasexp/portal/internal/metrics"
	"github.com/sisemasexp/portal/internal/ratelimit"
	"github.com/sisemasexp/portal/internal/sentry"
	"github.com/sisemasexp/portal/internal/site"
	"github.com/sisemasexp/portal/internal/storage"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg         *config.Config
	logger      *logger.Logger
	db          *storage.DB
	metrics     *metrics.Metrics
	registry    *prometheus.Registry
	augmenter   *genai.FallbackAugmenter
	assistant   *assistant.Service
	backup      *backup.Manager
	llmLimiter  *ratelimit.KeyedLimiter
	chatLimiter *ratelimit.KeyedLimiter
	server      *http.Server
	wg          sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	opts := logger.Options{Level: cfg.LogLevel, Writer: os.Stdout}
	if cfg.BetterStack.Enabled {
		opts.BetterStackToken = cfg.BetterStack.Token
		opts.BetterStackEndpoint = cfg.BetterStack.Endpoint
	}
	log := logger.NewWithOptions(opts).WithField("service", "portal")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context() calls pick up request_id and client_ip
	// through ContextHandler.
	slog.SetDefault(log.Logger)

	log.WithField("release", buildinfo.Release()).Info("Initializing application...")
	if opts.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStack.Endpoint).Info("Better Stack logging enabled")
	}

	if cfg.Sentry.Enabled {
		release := cfg.Sentry.Release
		if release == "" {
			release = buildinfo.Release()
		}
		if err := sentry.Initialize(sentry.Config{
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     release,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		log.WithField("environment", cfg.Sentry.Environment).Info("Sentry error tracking enabled")
	}

	catalog, err := content.Default()
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	app := &Application{
		cfg:      cfg,
		logger:   log,
		db:       db,
		metrics:  m,
		registry: registry,
	}

	if cfg.LLMActive() {
		augmenter, err := genai.CreateAugmenter(ctx, NewLLMConfig(cfg), m)
		if err != nil {
			log.WithError(err).Warn("Augmenter initialization failed")
		}
		app.augmenter = augmenter
		if augmenter != nil {
			log.WithField("primary", augmenter.Provider().String()).
				WithField("chain_size", augmenter.Len()).
				Info("LLM augmentation enabled")
		}
	}

	app.llmLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "llm",
		Burst:         cfg.LLMRateBurst,
		RefillRate:    ratelimit.PerHour(cfg.LLMRateRefill),
		DailyLimit:    cfg.LLMRateDaily,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Recorder:      m,
	})
	app.chatLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "chat",
		Burst:         cfg.ChatRateBurst,
		RefillRate:    cfg.ChatRateRefill,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Recorder:      m,
	})

	var clockOpts []assistant.ClockOption
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("timezone %q: %w", cfg.Timezone, err), app.closeResources())
		}
		clockOpts = append(clockOpts, assistant.WithLocal(loc))
	}

	svcCfg := assistant.ServiceConfig{
		Directory:  db,
		Mission:    catalog.Mission,
		Vision:     catalog.Vision,
		Clock:      assistant.NewClock(catalog.Cities, clockOpts...),
		LLMLimiter: app.llmLimiter,
		Recorder:   m,
		Logger:     log,
		LLMTimeout: cfg.LLM.Timeout,
	}
	// A nil *FallbackAugmenter must not become a non-nil interface.
	if app.augmenter != nil {
		svcCfg.Augmenter = app.augmenter
	}
	app.assistant = assistant.NewService(svcCfg)

	if cfg.Backup.Enabled {
		client, err := backup.New(ctx, backup.Config{
			Endpoint:    cfg.Backup.Endpoint,
			Region:      cfg.Backup.Region,
			AccessKeyID: cfg.Backup.AccessKeyID,
			SecretKey:   cfg.Backup.SecretKey,
			Bucket:      cfg.Backup.Bucket,
			Prefix:      cfg.Backup.Prefix,
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("backup: %w", err), app.closeResources())
		}
		app.backup = backup.NewManager(client, db, filepath.Join(cfg.DataDir, "tmp"), m)
		log.WithField("bucket", cfg.Backup.Bucket).
			WithField("interval", cfg.Backup.Interval.String()).
			Info("Database backups enabled")
	}

	pages, err := site.New(site.Config{
		Catalog:      catalog,
		Programs:     db,
		Feedback:     db,
		Assistant:    app.assistant,
		ChatLimiter:  app.chatLimiter,
		Recorder:     m,
		Logger:       log,
		ChatTimeout:  config.ChatProcessing,
		QueryTimeout: config.DatabaseQuery,
	})
	if err != nil {
		return nil, errors.Join(err, app.closeResources())
	}

	gin.SetMode(cfg.GinMode)
	router := app.newRouter(pages)

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: config.ServerRead,
		ReadTimeout:       config.ServerRead,
		WriteTimeout:      config.ServerWrite,
		IdleTimeout:       config.ServerIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// newRouter assembles middleware, probes, metrics and the site routes.
func (a *Application) newRouter(pages *site.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestContextMiddleware())
	router.Use(loggingMiddleware(a.logger, a.metrics))

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.Metrics),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	pages.Register(router)
	return router
}

// NewLLMConfig maps the application config onto the genai provider chain.
// Unknown provider names are skipped; none left means the default order.
func NewLLMConfig(cfg *config.Config) genai.Config {
	llmCfg := genai.Config{
		Gemini:      genai.ProviderConfig{APIKey: cfg.LLM.GeminiAPIKey, Models: cfg.LLM.GeminiModels},
		OpenAI:      genai.ProviderConfig{APIKey: cfg.LLM.OpenAIAPIKey, Models: cfg.LLM.OpenAIModels, BaseURL: cfg.LLM.OpenAIBaseURL},
		Groq:        genai.ProviderConfig{APIKey: cfg.LLM.GroqAPIKey, Models: cfg.LLM.GroqModels},
		Cerebras:    genai.ProviderConfig{APIKey: cfg.LLM.CerebrasAPIKey, Models: cfg.LLM.CerebrasModels},
		RetryConfig: genai.DefaultRetryConfig(),
	}

	for _, name := range cfg.LLM.Providers {
		p, ok := genai.ParseProvider(name)
		if !ok {
			slog.Warn("ignoring unknown provider", "name", name)
			continue
		}
		llmCfg.Providers = append(llmCfg.Providers, p)
	}
	if len(llmCfg.Providers) == 0 {
		llmCfg.Providers = genai.DefaultProviders
	}
	return llmCfg
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) getFeatures() map[string]bool {
	return map[string]bool{
		"llm_augmentation": a.assistant != nil && a.assistant.AugmentationEnabled(),
		"backup":           a.backup != nil,
		"error_tracking":   sentry.IsEnabled(),
	}
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheck)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).WarnContext(ctx, "Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	programs, err := a.db.CountPrograms(ctx)
	if err != nil {
		a.logger.WithError(err).WarnContext(ctx, "Failed to count programs for readiness")
		programs = -1
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"programs": programs,
		"release":  buildinfo.Release(),
		"features": a.getFeatures(),
	})
}

// Run starts the HTTP server and background jobs.
//
// Graceful shutdown sequence:
//  1. Receive shutdown signal (SIGINT/SIGTERM)
//  2. Cancel context to stop background jobs
//  3. Wait for background jobs to complete (backups, gauges)
//  4. Close resources in order (HTTP server, augmenter, database, rate limiters, logger)
//
// Closing the database only after the jobs return keeps a running snapshot
// from failing with "sql: database is closed".
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.updateGaugeMetrics(ctx)
	})
	if a.backup != nil && a.cfg.Backup.Interval > 0 {
		a.wg.Go(func() {
			a.logger.Debug("Backup job started")
			defer a.logger.Debug("Backup job stopped")
			a.backup.Run(ctx, a.cfg.Backup.Interval, config.BackupUpload)
		})
	}
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops the HTTP server and releases resources. It must run after
// background jobs have returned.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")
	if err := a.closeResources(); err != nil {
		a.logger.WithError(err).Error("Component close error")
	}

	if sentry.IsEnabled() {
		sentry.Flush(2 * time.Second)
	}

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}
	return nil
}

// closeResources releases the augmenter, database and limiters. Safe to call
// on a partially initialized Application.
func (a *Application) closeResources() error {
	var errs []error
	if a.augmenter != nil {
		if err := a.augmenter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("augmenter: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if a.llmLimiter != nil {
		a.llmLimiter.Stop()
	}
	if a.chatLimiter != nil {
		a.chatLimiter.Stop()
	}
	return errors.Join(errs...)
}

// updateGaugeMetrics periodically records database-backed gauges.
func (a *Application) updateGaugeMetrics(ctx context.Context) {
	a.logger.Debug("Gauge metrics job started")
	defer a.logger.Debug("Gauge metrics job stopped")

	a.recordGaugeMetrics(ctx)

	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.recordGaugeMetrics(ctx)
		}
	}
}

func (a *Application) recordGaugeMetrics(ctx context.Context) {
	if a.metrics == nil {
		return
	}
	queryCtx, cancel := context.WithTimeout(ctx, config.DatabaseQuery)
	defer cancel()

	if count, err := a.db.CountPrograms(queryCtx); err == nil {
		a.metrics.SetPrograms(count)
	} else if ctx.Err() == nil {
		a.logger.WithError(err).Warn("Failed to count programs for metrics")
	}
	if a.chatLimiter != nil {
		a.metrics.SetRateLimiterKeys("chat", a.chatLimiter.GetActiveCount())
	}
	if a.llmLimiter != nil {
		a.metrics.SetRateLimiterKeys("llm", a.llmLimiter.GetActiveCount())
	}
}
