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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/mukhoplus/Masked-StarCraft/config"
	"github.com/mukhoplus/Masked-StarCraft/db"
	"github.com/mukhoplus/Masked-StarCraft/gauntlet"
	"github.com/mukhoplus/Masked-StarCraft/handlers"
	"github.com/mukhoplus/Masked-StarCraft/repositories"
	"github.com/mukhoplus/Masked-StarCraft/routes"
	"github.com/mukhoplus/Masked-StarCraft/services"
	"github.com/mukhoplus/Masked-StarCraft/storage"
)

const dbConnectTimeout = 5 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	database, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("database connection established")

	playerRepo := repositories.NewPostgresPlayerRepository(database)
	gameMapRepo := repositories.NewPostgresGameMapRepository(database)
	tournamentRepo := repositories.NewPostgresTournamentRepository(database)
	matchRepo := repositories.NewPostgresMatchRepository(database)

	hub := gauntlet.NewHub(logger)
	go hub.Run()
	logger.Info("websocket hub started")

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
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("log archive storage configured")
	} else {
		logger.Info("log archive storage not configured, archiving disabled")
	}

	notifier := services.NewHubNotifier(hub, logger)
	engine := gauntlet.NewEngine(gauntlet.NewRandSource())

	authService := services.NewAuthService(playerRepo, []byte(cfg.JWTSecretKey), logger)
	playerService := services.NewPlayerService(playerRepo, notifier, logger)
	gameMapService := services.NewGameMapService(gameMapRepo, notifier, logger)
	tournamentService := services.NewTournamentService(
		database, tournamentRepo, matchRepo, playerRepo, gameMapRepo, engine, notifier, logger,
	)
	logService := services.NewLogService(
		tournamentRepo, matchRepo, playerRepo, gameMapRepo, uploader, logger,
	)
	logger.Info("services initialized")

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err = authService.EnsureAdmin(seedCtx, cfg.AdminName, cfg.AdminNickname, cfg.AdminPassword); err != nil {
		cancelSeed()
		logger.Error("failed to seed admin account", slog.Any("error", err))
		os.Exit(1)
	}
	cancelSeed()

	authHandler := handlers.NewAuthHandler(authService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	gameMapHandler := handlers.NewGameMapHandler(gameMapService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	logHandler := handlers.NewLogHandler(logService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		[]byte(cfg.JWTSecretKey),
		authHandler,
		playerHandler,
		gameMapHandler,
		tournamentHandler,
		logHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err = server.Shutdown(shutdownCtx); err != nil {
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
