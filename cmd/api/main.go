package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/opencivic/infrawatch/cmd/mainconfig"
	"github.com/opencivic/infrawatch/internal/api/router"
	"github.com/opencivic/infrawatch/internal/assessment"
	"github.com/opencivic/infrawatch/internal/auth"
	appconfig "github.com/opencivic/infrawatch/internal/config"
	"github.com/opencivic/infrawatch/internal/observability/metrics"
	"github.com/opencivic/infrawatch/internal/reports"
	"github.com/opencivic/infrawatch/internal/storage"
	"github.com/opencivic/infrawatch/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting infrawatch API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	metricsHandler, pipelineMetrics := setupPipelineMetrics()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	var reportsRepo reports.Repository
	var usersRepo auth.UserRepository
	if pool != nil {
		defer pool.Close()
		reportsRepo = reports.NewPostgresRepository(pool)
		usersRepo = auth.NewPostgresUserRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		reportsRepo = reports.NewInMemoryRepository()
		usersRepo = auth.NewInMemoryUserRepository()
	}

	blobs := setupBlobStore(ctx, cfg, logger)

	// Assign through a concrete nil check so a disabled assessor stays a nil
	// interface inside the service.
	var assessor reports.Assessor
	if a := setupAssessor(ctx, cfg, pipelineMetrics, logger); a != nil {
		assessor = a
	}

	reportSvc := reports.NewService(reportsRepo, blobs, assessor, logger, pipelineMetrics)
	reportsHandler := reports.NewHandler(reportSvc, blobs, logger)

	whitelist, err := auth.LoadWhitelist(cfg.AdminWhitelistPath)
	if err != nil {
		logger.Error("failed to load admin whitelist", "error", err, "path", cfg.AdminWhitelistPath)
		os.Exit(1)
	}
	authSvc := auth.NewService(usersRepo, setupTokenStore(cfg, logger), whitelist, logger)
	authHandler := auth.NewHandler(authSvc, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		ReportsHandler:     reportsHandler,
		AuthHandler:        authHandler,
		AuthService:        authSvc,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
		MaxUploadBytes:     int64(cfg.MaxUploadMB) << 20,
		SubmitRatePerSec:   1,
		SubmitBurst:        5,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupPipelineMetrics builds the Prometheus registry, the /metrics handler
// and the pipeline instrumentation.
func setupPipelineMetrics() (http.Handler, *metrics.PipelineMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipeline := metrics.NewPipelineMetrics(registry)
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return handler, pipeline
}

// connectPostgresPool opens a pgx pool, or returns nil when no URL is set.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}
	return pool
}

// setupBlobStore wires S3 image storage, or returns a disabled store when no
// bucket is configured.
func setupBlobStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *storage.BlobStore {
	if strings.TrimSpace(cfg.ReportImageBucket) == "" {
		logger.Warn("REPORT_IMAGE_BUCKET not set, image storage disabled")
		return storage.NewBlobStore(nil, "", logger)
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	return storage.NewBlobStore(mainconfig.NewS3Client(awsCfg, cfg), cfg.ReportImageBucket, logger)
}

// setupAssessor wires the Gemini vision assessor. A missing API key leaves
// it nil; submissions still persist with an unavailable-fallback assessment.
func setupAssessor(ctx context.Context, cfg *appconfig.Config, m *metrics.PipelineMetrics, logger *logging.Logger) *assessment.Assessor {
	client, err := assessment.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		if errors.Is(err, assessment.ErrUnavailable) {
			logger.Warn("GEMINI_API_KEY not set, risk assessment disabled")
			return nil
		}
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	return assessment.NewAssessor(client, logger, m)
}

// setupTokenStore wires Redis-backed sessions.
func setupTokenStore(cfg *appconfig.Config, logger *logging.Logger) auth.TokenStore {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		logger.Warn("REDIS_ADDR not set, sessions held in process memory")
		return auth.NewInMemoryTokenStore()
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return auth.NewRedisTokenStore(redis.NewClient(opts), cfg.SessionTTL)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
