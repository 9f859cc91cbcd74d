package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bryanwahyu/legalmind/internal/application"
	appanalysis "github.com/bryanwahyu/legalmind/internal/application/analysis"
	"github.com/bryanwahyu/legalmind/internal/config"
	domai "github.com/bryanwahyu/legalmind/internal/domain/ai"
	"github.com/bryanwahyu/legalmind/internal/infra/ai/huggingface"
	"github.com/bryanwahyu/legalmind/internal/infra/ai/model"
	aiopenai "github.com/bryanwahyu/legalmind/internal/infra/ai/openai"
	"github.com/bryanwahyu/legalmind/internal/infra/db"
	mysqlp "github.com/bryanwahyu/legalmind/internal/infra/db/mysql"
	"github.com/bryanwahyu/legalmind/internal/infra/db/postgres"
	"github.com/bryanwahyu/legalmind/internal/infra/db/sqlite"
	"github.com/bryanwahyu/legalmind/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/legalmind/internal/infra/storage"
	"github.com/bryanwahyu/legalmind/internal/logger"
	"github.com/bryanwahyu/legalmind/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		os.Exit(exitCode(lg, err))
	}
}

// exitCode logs err and flushes lg before the process exits; deferred calls do not run after os.Exit.
func exitCode(lg *zap.Logger, err error) int {
	lg.Error("server stopped", zap.Error(err))
	_ = lg.Sync()
	return 1
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx := context.Background()

	// init store
	store := newStore(cfg)
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("store init: %w", err)
	}
	lg.Info("store ready", zap.String("dialect", store.Dialect()))

	// load model once, shared by every request
	engine, err := model.Load(ctx, newBackend(cfg), model.Options{
		Candidates: cfg.ModelCandidates(),
		Cache:      model.NewCache(cfg.Model.CacheDir),
		Timeout:    cfg.Model.LoadTimeout,
		Concurrent: cfg.Model.Concurrent,
		Logger:     lg,
	})
	if err != nil {
		return err
	}

	middleware.SetModel(engine.Model())

	checkers := map[string]middleware.HealthChecker{
		"database": store,
		"model":    engine,
	}

	svc := &appanalysis.Service{
		Summarizer:     engine,
		Repo:           store,
		Clock:          application.SystemClock{},
		Logger:         lg,
		MaxInputLength: cfg.Analysis.MaxInputLength,
		HistoryLimit:   cfg.Analysis.HistoryLimit,
	}

	// init minio (optional)
	if cfg.Minio.Endpoint != "" {
		archive, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		svc.Archive = archive
		checkers["archive"] = archive
		lg.Info("document archive enabled", zap.String("bucket", cfg.Minio.BucketName))
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		Logger:         lg,
		Checkers:       checkers,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustProxy:     cfg.Server.TrustProxy,
		APIKeys:        cfg.Server.APIKeys,
		RateLimit:      cfg.RateLimit.Enabled,
		RateBurst:      cfg.RateLimit.Burst,
		RatePerSecond:  cfg.RateLimit.Rate,
		MaxUploadBytes: cfg.Analysis.MaxUploadBytes,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * 4,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server listening", zap.String("addr", addr), zap.String("model", engine.Model()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	lg.Info("shutting down server...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel2()
	return srv.Shutdown(ctx2)
}

func newStore(cfg *config.Config) *db.Store {
	d := cfg.Database
	switch d.Driver {
	case "mysql":
		return db.NewStore(mysqlp.Dialect(), mysqlp.DSN(d.Host, d.Port, d.User, d.Password, d.Name), cfg.Analysis.HistoryLimit)
	case "postgres":
		return db.NewStore(postgres.Dialect(), postgres.DSN(d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode), cfg.Analysis.HistoryLimit)
	default:
		return db.NewStore(sqlite.Dialect(), sqlite.DSN(d.Path), cfg.Analysis.HistoryLimit)
	}
}

func newBackend(cfg *config.Config) domai.Backend {
	m := cfg.Model
	if m.Backend == aiopenai.BackendName {
		return aiopenai.NewClient(m.APIKey, m.BaseURL)
	}
	return huggingface.NewClient(m.APIKey, m.BaseURL, m.HubURL)
}
