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

	"github.com/ligadelmazo/backend/config"
	"github.com/ligadelmazo/backend/db"
	"github.com/ligadelmazo/backend/handlers"
	"github.com/ligadelmazo/backend/live"
	"github.com/ligadelmazo/backend/repositories"
	"github.com/ligadelmazo/backend/routes"
	"github.com/ligadelmazo/backend/services"
	"github.com/ligadelmazo/backend/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.String("engine", cfg.DBType),
		slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DBType, cfg.DSN(), 5*time.Second)
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

	// Image uploads are optional; without R2 credentials the endpoints answer
	// 503 and everything else works.
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
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
		logger.Warn("R2 credentials not set, image uploads disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()

	userRepo := repositories.NewUserRepository(dbConn)
	deckRepo := repositories.NewDeckRepository(dbConn)
	matchRepo := repositories.NewMatchRepository(dbConn)
	newsRepo := repositories.NewNewsRepository(dbConn)
	ruleRepo := repositories.NewRuleRepository(dbConn)
	statsRepo := repositories.NewStatsRepository(dbConn)
	limitRepo := repositories.NewDailyLimitRepository(dbConn)

	authService := services.NewAuthService(userRepo)
	matchService := services.NewMatchService(dbConn, matchRepo, limitRepo, hub, logger)
	deckService := services.NewDeckService(deckRepo, uploader)
	statsService := services.NewStatsService(statsRepo, userRepo, deckRepo, logger)
	newsService := services.NewNewsService(newsRepo)
	ruleService := services.NewRuleService(ruleRepo)
	migrationService := services.NewMigrationService(dbConn, logger)

	pruner, err := services.NewCounterPruner(limitRepo, logger)
	if err != nil {
		logger.Error("failed to set up counter pruner", slog.Any("error", err))
		os.Exit(1)
	}
	pruner.Start()
	defer func() {
		if err := pruner.Stop(); err != nil {
			logger.Error("failed to stop counter pruner", slog.Any("error", err))
		}
	}()

	router := routes.Setup(routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.JWTExpiresIn),
		Match:     handlers.NewMatchHandler(matchService),
		Deck:      handlers.NewDeckHandler(deckService),
		Stats:     handlers.NewStatsHandler(statsService),
		News:      handlers.NewNewsHandler(newsService),
		Rule:      handlers.NewRuleHandler(ruleService),
		Migration: handlers.NewMigrationHandler(migrationService),
		WebSocket: handlers.NewWebSocketHandler(hub, cfg.JWTSecretKey),
	}, cfg.JWTSecretKey)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-shutdown
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
