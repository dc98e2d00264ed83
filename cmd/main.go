package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/bug-arena/brackets"
	"github.com/Dosada05/bug-arena/combat"
	"github.com/Dosada05/bug-arena/config"
	"github.com/Dosada05/bug-arena/db"
	"github.com/Dosada05/bug-arena/handlers"
	"github.com/Dosada05/bug-arena/narrative"
	"github.com/Dosada05/bug-arena/repositories"
	api "github.com/Dosada05/bug-arena/routes"
	"github.com/Dosada05/bug-arena/services"
	"github.com/Dosada05/bug-arena/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const schedulerInterval = 30 * time.Second // период свипа дедлайнов регистрации

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

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

	// Хранилище изображений бойцов (Cloudflare R2), опционально.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, combatant image uploads disabled")
	}

	// Внешний сервис описаний боёв, опционально: без него работает фолбэк.
	var narrator narrative.Generator
	if cfg.NarrativeAPIURL != "" {
		narrator = narrative.NewHTTPGenerator(cfg.NarrativeAPIURL, cfg.NarrativeAPIKey)
		logger.Info("narrative service client initialized")
	} else {
		logger.Info("narrative service not configured, using deterministic fallback")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	combatantRepo := repositories.NewPostgresCombatantRepository(dbConn)
	battleRepo := repositories.NewPostgresBattleRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	applicationRepo := repositories.NewPostgresApplicationRepository(dbConn)
	matchRepo := repositories.NewPostgresTournamentMatchRepository(dbConn)
	logger.Info("repositories initialized")

	// Конвейер боя: равномерный джиттер для настоящих боёв. Источник
	// с блокировкой, потому что его делят HTTP-обработчики и планировщик.
	rng := rand.New(combat.NewLockedSource(time.Now().UnixNano()))
	calculator := combat.NewCalculator(combat.UniformJitter(rng))

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	combatantService := services.NewCombatantService(combatantRepo, uploader, logger)
	battleService := services.NewBattleService(dbConn, combatantRepo, battleRepo, calculator, narrator, logger)
	eligibility := services.NewEligibilityChecker(applicationRepo)
	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		applicationRepo,
		matchRepo,
		combatantRepo,
		battleService,
		eligibility,
		brackets.NewSingleEliminationGenerator(),
		wsHub,
		rng,
		logger,
	)
	logger.Info("services initialized")

	// Планировщик: закрытие регистраций с истекшим дедлайном.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("registration deadline scheduler started", slog.Duration("interval", schedulerInterval))

		if err := tournamentService.AutoCloseRegistrations(context.Background(), time.Now()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := tournamentService.AutoCloseRegistrations(context.Background(), time.Now()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	combatantHandler := handlers.NewCombatantHandler(combatantService)
	battleHandler := handlers.NewBattleHandler(battleService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	adminHandler := handlers.NewAdminHandler(combatantService, battleService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		combatantHandler,
		battleHandler,
		tournamentHandler,
		adminHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

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
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
