package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"visa_referral/internal/config"
	"visa_referral/internal/handler"
	"visa_referral/internal/logger"
	"visa_referral/internal/middleware"
	"visa_referral/internal/repository"
	"visa_referral/internal/service"
	"visa_referral/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.AppEnv, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if _, known := config.EnvironmentFor(cfg.AppEnv); !known {
		lg.Warn("unknown APP_ENV, using development settings", zap.String("app_env", cfg.AppEnv))
	}
	if cfg.AppEnv == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	store, health, closeStore, err := openStore(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStore()

	// --- Initialize Services ---
	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.ExpirationHours, cfg.JWT.RefreshHours)
	authService := service.NewAuthService(store.Users, jwtUtil, lg)
	notificationService := service.NewNotificationService(store.Notifications, lg)
	referralService := service.NewReferralService(store.Referrals, store.Users, notificationService, lg)
	dashboardService := service.NewDashboardService(authService, referralService, notificationService)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		lg.Fatal("failed to register metrics", zap.Error(err))
	}

	// --- Setup Gin Router ---
	router := handler.NewRouter(handler.Services{
		Auth:          authService,
		Referrals:     referralService,
		Notifications: notificationService,
		Dashboard:     dashboardService,
	}, handler.RouterOptions{
		Origins: strings.Split(cfg.Server.Origin, ","),
		Metrics: metrics,
		Health:  health,
		Log:     lg,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server starting", zap.Int("port", cfg.Server.Port), zap.String("storage", cfg.Server.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	lg.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}

	lg.Info("server exiting")
}

func openStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*repository.Store, func(context.Context) error, func(), error) {
	switch cfg.Server.StorageDriver {
	case "postgres":
		pool, err := config.ConnectDB(ctx, cfg.DSN(), lg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := config.AutoMigrate(ctx, pool, lg); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		store := repository.NewPostgresStore(pool)
		if cfg.Server.Seed {
			existing, err := store.Users.FindByEmail(ctx, repository.SeedUsers[0].Input.Email)
			if err != nil {
				pool.Close()
				return nil, nil, nil, err
			}
			if existing == nil {
				if err := repository.Seed(ctx, store.Users, store.Referrals, store.Notifications); err != nil {
					pool.Close()
					return nil, nil, nil, err
				}
				lg.Info("seeded demo data")
			}
		}
		return store, pool.Ping, pool.Close, nil
	case "memory", "":
		store, err := repository.NewMemoryStore(ctx, cfg.Server.Seed)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Server.StorageDriver)
	}
}
