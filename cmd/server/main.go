package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/obelow/aria/internal/alert"
	"github.com/obelow/aria/internal/auth"
	"github.com/obelow/aria/internal/config"
	"github.com/obelow/aria/internal/constants"
	"github.com/obelow/aria/internal/httpapp"
	"github.com/obelow/aria/internal/images"
	"github.com/obelow/aria/internal/library"
	"github.com/obelow/aria/internal/logger"
	"github.com/obelow/aria/internal/mailer"
	"github.com/obelow/aria/internal/objstore"
	"github.com/obelow/aria/internal/store"
)

// objstoreFromConfig prefers the configured MinIO server and falls back to a
// local directory tree when no endpoint is set, which keeps single-binary
// development working without a running MinIO.
func objstoreFromConfig(ctx context.Context, cfg *config.Config) (objstore.Store, error) {
	if cfg.MinioAccessKey == "" {
		return objstore.NewLocal("objects")
	}
	return objstore.NewMinio(ctx, cfg)
}

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(store.DSN(cfg.DBPath))
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.ScratchDir, constants.DirPermissions); err != nil {
		appLogger.Error("Failed to create scratch dir", "error", err)
		os.Exit(1)
	}

	// Initialize Object Store
	ctx, cancel := context.WithTimeout(context.Background(), constants.ObjectOpTimeout)
	objects, err := objstoreFromConfig(ctx, cfg)
	cancel()
	if err != nil {
		appLogger.Error("Failed to init object store", "error", err)
		os.Exit(1)
	}

	// Initialize Library Service
	svc := library.New(library.Config{
		DB:         db,
		Objects:    objects,
		Verifier:   auth.NewJWTVerifier(cfg.JWTSecret),
		Resizer:    images.StdResizer{},
		Alerts:     alert.NewLogReporter(appLogger),
		Mailer:     mailer.NewLogMailer(appLogger),
		Logger:     appLogger,
		MaxSongs:   cfg.MaxSongs,
		ScratchDir: cfg.ScratchDir,
	})

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := httpapp.NewHandler(svc, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", "error", err)
	}
}
