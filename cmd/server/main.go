package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/internal/config"
	"github.com/diewo77/bill-ease/internal/db"
	"github.com/diewo77/bill-ease/internal/logger"
	"github.com/diewo77/bill-ease/internal/storage"
	"github.com/diewo77/bill-ease/pdf"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	configPath      = flag.String("config", "", "Optional YAML config file")
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, cfg.Database, zl)
	if err != nil {
		return err
	}

	sqlMigrations := cfg.App.Migrations && cfg.Database.Driver == "postgres"
	if *migrateOnlyFlag || cfg.App.Migrations || cfg.App.Dev {
		if err := db.Migrate(dbConn, sqlMigrations, cfg.Database.URL(), zl); err != nil {
			return err
		}
		zl.Info("migrations completed", zap.Bool("sql", sqlMigrations))
	}
	if *migrateOnlyFlag {
		return nil
	}

	blob, err := storage.New(cfg.Storage, zl)
	if err != nil {
		return err
	}

	renderer := pdf.NewRenderer(zl.Named("pdf"), pdf.Options{
		CurrencySymbol: cfg.PDF.CurrencySymbol,
		DateLayout:     cfg.PDF.DateLayout,
		Compress:       cfg.PDF.Compress,
	})
	sessions := auth.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	app := NewApp(dbConn, blob, sessions, renderer, zl)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(zl, app),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	zl.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zl.Info("server stopped gracefully")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// withLogging logs one line per request.
func withLogging(zl *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		zl.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)))
	})
}
