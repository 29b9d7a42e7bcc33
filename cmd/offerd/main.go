// Package main runs the promotional NFT offer service: it resolves offer
// configuration, opens the claim store, and serves the REST API until
// interrupted.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	app "github.com/aptos-community/offer-service/internal/app"
	"github.com/aptos-community/offer-service/internal/app/httpapi"
	"github.com/aptos-community/offer-service/internal/app/storage/postgres"
	"github.com/aptos-community/offer-service/internal/config"
	"github.com/aptos-community/offer-service/internal/platform/migrations"
	"github.com/aptos-community/offer-service/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to offers.yaml (default config/offers.yaml)")
	flag.Parse()

	// Allow .env for local runs.
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg = config.LoadOrDefault()
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithField("component", "offerd")

	offers, err := cfg.ResolveOffers()
	if err != nil {
		log.WithError(err).Error("resolve offers from environment")
		os.Exit(1)
	}
	log.Infof("resolved %d offer(s)", len(offers))

	stores := app.Stores{}
	if cfg.Database.DSN != "" {
		db, err := openDatabase(cfg.Database)
		if err != nil {
			log.WithError(err).Error("open database")
			os.Exit(1)
		}
		defer db.Close()

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := migrations.Apply(migrateCtx, db); err != nil {
			cancel()
			log.WithError(err).Error("apply migrations")
			os.Exit(1)
		}
		cancel()

		stores.Claims = postgres.New(db)
		log.Info("using postgres claim store")
	} else {
		log.Warn("no database DSN configured; claims are stored in memory")
	}

	application, err := app.New(app.Options{
		Offers: offers,
		Minter: app.MinterOptions{
			Mode:     cfg.Minter.Mode,
			Endpoint: cfg.Minter.Endpoint,
			APIKey:   cfg.Minter.APIKey,
		},
		Confirm: app.ConfirmOptions{
			Endpoint: cfg.Confirm.Endpoint,
			APIKey:   cfg.Confirm.APIKey,
			Timeout:  time.Duration(cfg.Confirm.TimeoutSeconds) * time.Second,
		},
	}, stores, log)
	if err != nil {
		log.WithError(err).Error("build application")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("start application")
		os.Exit(1)
	}

	auth := httpapi.NewAuthenticator(authTokens(), []byte(os.Getenv("JWT_SECRET")))
	var limiter *httpapi.RateLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = httpapi.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	} else {
		log.Warn("rate limiting disabled on public routes")
	}
	handler := httpapi.NewHandler(application, auth, limiter)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("offer service listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server")
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application shutdown")
	}
	log.Info("offer service stopped")
}

// authTokens reads the comma-separated API_AUTH_TOKENS list.
func authTokens() []string {
	raw := os.Getenv("API_AUTH_TOKENS")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("database driver not configured")
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
