package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvynshuu/fintrack/internal/auth"
	"github.com/dvynshuu/fintrack/internal/config"
	"github.com/dvynshuu/fintrack/internal/handlers"
	"github.com/dvynshuu/fintrack/internal/models"
	"github.com/dvynshuu/fintrack/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level, _ := cfg.SlogLevel()
	config.SetupLogger(level, cfg.LogFormat)

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrapUser(ctx, db, cfg.Bootstrap); err != nil {
		return fmt.Errorf("bootstrap user: %w", err)
	}

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), auth.TokenTTL)
	if err != nil {
		return err
	}

	var google handlers.IdentityVerifier
	if cfg.Google.ClientID != "" {
		v, err := auth.NewGoogleVerifier(cfg.Google.ClientID,
			auth.WithEndpoints(cfg.Google.UserInfoURL, cfg.Google.TokenInfoURL),
			auth.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		)
		if err != nil {
			return err
		}
		google = v
	} else {
		slog.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	h := handlers.NewHandlers(db, tokens, google, cfg.IsProduction())
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "environment", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func setupRouter(h *handlers.Handlers) http.Handler {
	return handlers.LogRequests(h.Routes())
}

// bootstrapUser seeds the configured account into an empty store.
func bootstrapUser(ctx context.Context, db *storage.DB, b config.Bootstrap) error {
	if !b.Enabled() {
		return nil
	}
	count, err := db.UserCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(b.Password)
	if err != nil {
		return err
	}
	user, err := db.CreateUser(ctx, models.NewUser{Name: b.Name, Email: b.Email, PasswordHash: hash})
	if err != nil {
		return err
	}
	slog.Info("bootstrap user created", "user_id", user.ID)
	return nil
}
