package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/calisthenix/engine/internal/api"
	"github.com/calisthenix/engine/internal/api/handlers"
	"github.com/calisthenix/engine/internal/repository"
	"github.com/calisthenix/engine/internal/services"
	"github.com/calisthenix/engine/pkg/config"
	"github.com/calisthenix/engine/pkg/database"
	"github.com/calisthenix/engine/pkg/logger"
)

// @title           Calisthenix Engine API
// @version         1.0
// @description     Skill progression tracking for calisthenics training

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting calisthenix engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("database connected")

	userRepo := repository.NewUserRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer asynqClient.Close()

	authSvc := services.NewAuthService(userRepo, jwtSecret)
	skillSvc := services.NewSkillService(skillRepo, achievementRepo)
	progressSvc := services.NewProgressService(skillRepo, achievementRepo, asynqClient)

	router := api.NewRouter(api.Dependencies{
		HMACSecret:          jwtSecret,
		AuthHandler:         handlers.NewAuthHandler(authSvc),
		SkillsHandler:       handlers.NewSkillsHandler(skillSvc),
		AchievementsHandler: handlers.NewAchievementsHandler(progressSvc),
		ProgressHandler:     handlers.NewProgressHandler(skillSvc, progressSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
