package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/segyhp/cartera-engine/internal/cache"
	"github.com/segyhp/cartera-engine/internal/config"
	"github.com/segyhp/cartera-engine/internal/handler"
	"github.com/segyhp/cartera-engine/internal/logger"
	"github.com/segyhp/cartera-engine/internal/metrics"
	"github.com/segyhp/cartera-engine/internal/repository"
	"github.com/segyhp/cartera-engine/internal/service"
	"github.com/segyhp/cartera-engine/pkg/response"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logger.SetGlobalLogger(appLogger)

	db, err := initDB(cfg)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reportCache := cache.NewRedisCache(redisClient)

	portfolioService := service.NewPortfolioService(loanRepo, paymentRepo, reportCache, cfg, appLogger)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService, cfg)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	router := setupRoutes(portfolioHandler, healthHandler, appLogger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info().Str("addr", server.Addr).Str("env", cfg.Server.Env).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	appLogger.Info().Msg("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(portfolioHandler *handler.PortfolioHandler, healthHandler *handler.HealthHandler, appLogger zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		response.RequestIDMiddleware(appLogger),
		response.LoggingMiddleware(appLogger),
		response.CORSMiddleware,
		metrics.Middleware,
	)

	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	portfolioHandler.RegisterRoutes(api)

	return router
}
