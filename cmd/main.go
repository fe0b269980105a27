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

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/Bekzat04/sportsfest-system/config"
	"github.com/Bekzat04/sportsfest-system/db"
	"github.com/Bekzat04/sportsfest-system/handlers"
	"github.com/Bekzat04/sportsfest-system/live"
	"github.com/Bekzat04/sportsfest-system/middleware"
	"github.com/Bekzat04/sportsfest-system/repositories"
	api "github.com/Bekzat04/sportsfest-system/routes"
	"github.com/Bekzat04/sportsfest-system/services"
	"github.com/Bekzat04/sportsfest-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
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

	redisClient, err := db.ConnectRedis(cfg.RedisURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}()
	logger.Info("redis connection established")

	sports, err := catalog.LoadFile(cfg.SportsCatalogPath)
	if err != nil {
		logger.Error("failed to load sport catalog",
			slog.String("path", cfg.SportsCatalogPath), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("sport catalog loaded",
		slog.Int("event_year", sports.EventYear()),
		slog.Int("sports", len(sports.List())),
	)

	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("live hub started")

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	participationRepo := repositories.NewPostgresParticipationRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	captaincyRepo := repositories.NewPostgresCaptaincyRepository(dbConn)
	fixtureRepo := repositories.NewPostgresFixtureRepository(dbConn)
	qualifierStaging := repositories.NewRedisQualifierStaging(redisClient)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(playerRepo)
	teamService := services.NewTeamService(dbConn, teamRepo, playerRepo, participationRepo, captaincyRepo, sports, cloudflareUploader)
	enrollmentService := services.NewEnrollmentService(playerRepo, participationRepo, captaincyRepo, sports)
	captaincyService := services.NewCaptaincyService(captaincyRepo, playerRepo, sports)
	fixtureService := services.NewFixtureService(fixtureRepo, teamRepo, playerRepo, participationRepo, sports)
	resultService := services.NewResultService(fixtureRepo, qualifierStaging, sports, wsHub, logger)
	dashboardService := services.NewDashboardService(playerRepo, teamRepo, participationRepo, fixtureRepo, sports)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	sportHandler := handlers.NewSportHandler(sports)
	teamHandler := handlers.NewTeamHandler(teamService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	captaincyHandler := handlers.NewCaptaincyHandler(captaincyService)
	fixtureHandler := handlers.NewFixtureHandler(fixtureService)
	resultHandler := handlers.NewResultHandler(resultService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, sports, logger)
	logger.Info("HTTP handlers initialized")

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		sportHandler,
		teamHandler,
		enrollmentHandler,
		captaincyHandler,
		fixtureHandler,
		resultHandler,
		dashboardHandler,
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
