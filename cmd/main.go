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

	"github.com/FedericoSorianox/TorneoBJJ/config"
	"github.com/FedericoSorianox/TorneoBJJ/db"
	"github.com/FedericoSorianox/TorneoBJJ/handlers"
	"github.com/FedericoSorianox/TorneoBJJ/live"
	"github.com/FedericoSorianox/TorneoBJJ/middleware"
	"github.com/FedericoSorianox/TorneoBJJ/repositories"
	"github.com/FedericoSorianox/TorneoBJJ/routes"
	"github.com/FedericoSorianox/TorneoBJJ/services"
	"github.com/FedericoSorianox/TorneoBJJ/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Object storage is optional: without it athlete photo upload is
	// disabled, everything else works.
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
		logger.Info("object storage not configured, photo upload disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	athleteRepo := repositories.NewPostgresAthleteRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	ruleSetRepo := repositories.NewPostgresRuleSetRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	authService := services.NewAuthService(userRepo, []byte(cfg.JWTSecretKey))
	athleteService := services.NewAthleteService(athleteRepo, uploader, logger)
	ruleSetService := services.NewRuleSetService(ruleSetRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, ruleSetRepo)
	categoryService := services.NewCategoryService(dbConn, categoryRepo, matchRepo, athleteRepo)
	bracketService := services.NewBracketService(dbConn, matchRepo, categoryRepo, tournamentRepo, athleteRepo, logger)
	matchService := services.NewMatchService(matchRepo, athleteRepo, tournamentRepo, ruleSetRepo, wsHub, logger)

	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Athlete:    handlers.NewAthleteHandler(athleteService),
		Tournament: handlers.NewTournamentHandler(tournamentService, matchService),
		Category:   handlers.NewCategoryHandler(categoryService, bracketService),
		Match:      handlers.NewMatchHandler(matchService),
		RuleSet:    handlers.NewRuleSetHandler(ruleSetService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, matchService, logger),
	}

	auth := middleware.NewAuthenticator([]byte(cfg.JWTSecretKey))
	router := routes.SetupRoutes(h, auth, cfg.ClientURL)
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
