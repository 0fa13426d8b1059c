package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"libportal/internal/config"
	"libportal/internal/logging"
	"libportal/internal/mockapi"
	jwtsvc "libportal/internal/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.AppEnv == "dev" || cfg.AppEnv == "test" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	store := mockapi.NewStore(mockapi.WithLocation(cfg.Location), mockapi.WithLogger(logger))
	if err := mockapi.Seed(store); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	srv := &http.Server{
		Addr:              cfg.MockAddr,
		Handler:           mockapi.NewRouter(store, j, logger, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("mock portal backend listening",
			"addr", cfg.MockAddr,
			"admin_dni", mockapi.DemoAdminDNI,
			"user_dni", mockapi.DemoUserDNI)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
