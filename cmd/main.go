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

	"github.com/antoniorme/minis-padel/brackets"
	"github.com/antoniorme/minis-padel/config"
	"github.com/antoniorme/minis-padel/db"
	_ "github.com/antoniorme/minis-padel/docs"
	"github.com/antoniorme/minis-padel/handlers"
	"github.com/antoniorme/minis-padel/repositories"
	api "github.com/antoniorme/minis-padel/routes"
	"github.com/antoniorme/minis-padel/services"
	"github.com/antoniorme/minis-padel/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

// @title           Minis Padel API
// @version         1.0
// @description     Padel mini-tournaments and leagues for club organizers.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to apply schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Хранилище архивов (Cloudflare R2). Без настроек архивация идёт без снимка.
	var archiveStore storage.ArchiveStore
	if cfg.ArchiveEnabled() {
		archiveStore, err = storage.NewR2ArchiveStore(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 archive store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 archive store initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 credentials not set, tournament snapshots are disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	tx := repositories.NewTransactor(dbConn, logger)
	organizerRepo := repositories.NewPostgresOrganizerRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	pairRepo := repositories.NewPostgresPairRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(organizerRepo, logger)
	playerService := services.NewPlayerService(playerRepo, logger)
	ratingService := services.NewRatingService(tx, matchRepo, pairRepo, playerRepo, logger)
	tournamentService := services.NewTournamentService(
		tx,
		tournamentRepo,
		pairRepo,
		matchRepo,
		playerRepo,
		ratingService,
		archiveStore,
		wsHub,
		logger,
	)
	pairService := services.NewPairService(tx, tournamentRepo, pairRepo, playerRepo, logger)
	leagueService := services.NewLeagueService(tx, leagueRepo, playerRepo, logger)
	logger.Info("Services initialized")

	// Планировщик: повторное применение рейтингов, пропущенных после сбоев
	scheduler := cron.New(cron.WithSeconds())
	if _, err := scheduler.AddFunc(cfg.RatingSweepSchedule, func() {
		n, err := ratingService.ReconcilePending(ctx)
		if err != nil {
			logger.Error("Scheduler: rating sweep failed", slog.Any("error", err))
			return
		}
		if n > 0 {
			logger.Info("Scheduler: pending ratings applied", slog.Int("matches", n))
		}
	}); err != nil {
		logger.Error("failed to schedule rating sweep", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Rating sweep scheduler started", slog.String("schedule", cfg.RatingSweepSchedule))

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Player:     handlers.NewPlayerHandler(playerService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Pair:       handlers.NewPairHandler(pairService),
		Match:      handlers.NewMatchHandler(tournamentService),
		League:     handlers.NewLeagueHandler(leagueService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, []byte(cfg.JWTSecretKey), cfg.CORSAllowedOrigins)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			// If shutdown fails, force close.
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	// Дожидаемся текущего прогона планировщика
	<-scheduler.Stop().Done()
	cancel()
	logger.Info("application exited")
}
