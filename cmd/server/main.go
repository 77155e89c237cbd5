package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/app"
	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/logging"
	"github.com/Olprog59/go-prodtrack/internal/transport/web"
)

const shutdownTimeout = 10 * time.Second

// init configures standard logger flags / Configure les flags du logger standard
func init() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.LstdFlags)
}

// main is the application entry point / Point d'entrée de l'application
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run initializes and starts the HTTP server / Initialise et démarre le serveur HTTP
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, closeLogs := logging.New(cfg, os.Stdout)
	slog.SetDefault(logger)
	defer func() {
		if err := closeLogs(); err != nil {
			log.Printf("flushing logs: %v", err)
		}
	}()

	logStartupInfo(cfg)

	// Opens the database, migrates, creates the bootstrap admin and starts the jobs.
	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	mw := web.NewMiddleware(cfg, container.Metrics, container.UserRepo, container.ActivitySvc)
	defer mw.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      web.NewMux(web.NewHandler(container), mw),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("shutting down server gracefully")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// logStartupInfo displays startup information / Affiche les informations de démarrage
func logStartupInfo(conf *config.Config) {
	slog.Info("🚀 Starting production tracking API",
		"environment", conf.Environment,
		"port", conf.Server.Port,
		"database", conf.Database.Type,
	)

	if conf.RateLimiter.Enabled {
		slog.Info("🛡️  Rate limiter enabled",
			"global_rps", conf.RateLimiter.RPS,
			"global_burst", conf.RateLimiter.Burst,
		)
	} else {
		slog.Warn("⚠️  Rate limiter is DISABLED")
	}

	slog.Info("🏭 Production rules",
		"delta_tolerance", conf.Production.DeltaTolerance,
		"max_heures_jour", conf.Production.MaxHeuresJour,
	)
	slog.Info("⏱️  Token durations",
		"access_token", conf.Auth.AccessTokenDuration,
		"refresh_token", conf.Auth.RefreshTokenDuration,
	)
}
