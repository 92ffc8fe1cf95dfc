package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/segyhp/cartera-engine/internal/batch"
	"github.com/segyhp/cartera-engine/internal/cache"
	"github.com/segyhp/cartera-engine/internal/config"
	"github.com/segyhp/cartera-engine/internal/logger"
	"github.com/segyhp/cartera-engine/internal/repository"
	"github.com/segyhp/cartera-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logger.SetGlobalLogger(appLogger)
	appLogger.Info().Msg("Starting cartera scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	portfolioService := service.NewPortfolioService(
		repository.NewLoanRepository(db),
		repository.NewPaymentRepository(db),
		cache.NewRedisCache(redisClient),
		cfg,
		appLogger,
	)

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.SchedulerLocation()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := setupCronJobs(ctx, c, cfg, portfolioService, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to schedule jobs")
	}

	c.Start()
	appLogger.Info().Msg("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("Shutting down scheduler...")
	cancel()
	<-c.Stop().Done()
	appLogger.Info().Msg("Scheduler stopped")
}

func setupCronJobs(ctx context.Context, c *cron.Cron, cfg *config.Config, svc *service.PortfolioService, appLogger zerolog.Logger) error {
	// Weekly CV snapshot of the week that just closed
	snapshot := batch.NewCVSnapshotJob(svc, cfg.Location(), appLogger)
	_, err := c.AddFunc(cfg.Scheduler.CVSnapshotSpec, func() {
		if err := snapshot.Run(ctx); err != nil {
			appLogger.Error().Err(err).Msg("CV snapshot job failed")
		}
	})
	if err != nil {
		return err
	}

	appLogger.Info().Str("spec", cfg.Scheduler.CVSnapshotSpec).Msg("Cron jobs scheduled successfully")
	return nil
}
