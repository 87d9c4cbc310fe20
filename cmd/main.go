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

	"github.com/hoopshq/madness-pool/config"
	"github.com/hoopshq/madness-pool/db"
	"github.com/hoopshq/madness-pool/handlers"
	"github.com/hoopshq/madness-pool/realtime"
	"github.com/hoopshq/madness-pool/repositories"
	"github.com/hoopshq/madness-pool/routes"
	"github.com/hoopshq/madness-pool/services"
	"github.com/hoopshq/madness-pool/storage"
)

// pollInterval is how often due round transitions are applied. The HTTP
// trigger at /internal/transitions/process runs the same call.
const pollInterval = 30 * time.Second

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

	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewR2Uploader(storage.R2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2Bucket,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized", slog.String("bucket", cfg.R2Bucket))
	} else {
		logger.Info("R2 not configured, logo uploads disabled")
	}

	hub := realtime.NewHub(logger)

	txManager := repositories.NewTxManager(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchPickRepo := repositories.NewPostgresMatchPickRepository(dbConn)
	prePickRepo := repositories.NewPostgresPreTournamentPickRepository(dbConn)
	transitionRepo := repositories.NewPostgresTransitionRepository(dbConn)

	authService := services.NewAuthService(userRepo, txManager)
	tournamentService := services.NewTournamentService(tournamentRepo, txManager)
	teamService := services.NewTeamService(teamRepo, tournamentRepo, txManager, uploader)
	bracketService := services.NewBracketService(teamRepo, matchRepo, tournamentRepo, txManager, logger)
	scoreService := services.NewScoreService(
		tournamentRepo, teamRepo, matchRepo, participantRepo,
		matchPickRepo, prePickRepo, txManager, hub, logger)
	matchService := services.NewMatchService(matchRepo, teamRepo, txManager, scoreService, hub, logger)
	transitionService := services.NewTransitionService(
		tournamentRepo, transitionRepo, bracketService, txManager, hub, logger)
	participantService := services.NewParticipantService(participantRepo, tournamentRepo, txManager)
	pickService := services.NewPickService(
		participantRepo, tournamentRepo, matchRepo, teamRepo,
		matchPickRepo, prePickRepo, txManager)
	logger.Info("services initialized")

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("failed to ensure admin account", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("admin account ensured", slog.String("email", cfg.AdminEmail))
	}

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		logger.Info("transition poller started", slog.Duration("interval", pollInterval))

		for range ticker.C {
			processed, err := transitionService.ProcessDue(context.Background(), time.Now())
			if err != nil {
				logger.Error("transition poll failed", slog.Any("error", err))
				continue
			}
			if processed > 0 {
				logger.Info("applied due transitions", slog.Int("processed", processed))
			}
		}
	}()

	router := routes.InitRoutes(routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Tournament:  handlers.NewTournamentHandler(tournamentService, scoreService),
		Team:        handlers.NewTeamHandler(teamService),
		Match:       handlers.NewMatchHandler(matchService, bracketService),
		Participant: handlers.NewParticipantHandler(participantService, pickService),
		Transition:  handlers.NewTransitionHandler(transitionService),
		WebSocket:   handlers.NewWebSocketHandler(hub),
	}, cfg.JWTSecretKey, cfg.InternalAPIKey)
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
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if err := server.Close(); err != nil {
				logger.Error("forced shutdown failed", slog.Any("error", err))
			}
		}
	}

	logger.Info("server stopped")
}
