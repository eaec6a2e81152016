package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gradebox/internal/api"
	"gradebox/internal/app/judge"
	"gradebox/internal/app/service"
	"gradebox/internal/assets"
	"gradebox/internal/common/security"
	"gradebox/internal/domain/repository"
	"gradebox/internal/platform/cache"
	"gradebox/internal/platform/config"
	"gradebox/internal/platform/database"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	config.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded")

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	if err := database.Migrate(context.Background(), database.DB); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	logger.Info("database connected")

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	logger.Info("redis connected")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	judgeStore := repository.NewPgJudgeStore(database.DB)

	assetStore := assets.NewStore(config.AppConfig.DataDir)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo)
	problemService := service.NewProblemService(problemRepo, assetStore)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, userRepo, assetStore, logger)
	leaderboardService := service.NewLeaderboardService(
		userRepo,
		cache.RDB,
		config.AppConfig.LeaderboardCacheTTL,
		config.AppConfig.LeaderboardCacheLimit,
		logger,
	)

	// 7. Start Judge Workers
	compiler := judge.NewToolchainCompiler(
		config.AppConfig.CCompilerPath,
		config.AppConfig.CppCompilerPath,
		config.AppConfig.CompileTimeout,
	)
	executor := judge.NewProcessExecutor()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var workers errgroup.Group
	for i := 0; i < config.AppConfig.JudgeWorkers; i++ {
		w := judge.NewWorker(
			judgeStore,
			assetStore,
			compiler,
			executor,
			config.AppConfig.JudgePollInterval,
			logger.With("worker", i),
		)
		workers.Go(func() error {
			w.Run(workerCtx)
			return nil
		})
	}
	logger.Info("judge workers started", "count", config.AppConfig.JudgeWorkers)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, problemService, submissionService, leaderboardService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "port", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("shutting down")
	workerCancel() // Signal judge workers to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	if err := workers.Wait(); err != nil {
		logger.Error("judge worker exited with error", "error", err)
	}

	logger.Info("server and workers stopped")
}
