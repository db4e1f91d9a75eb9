package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/jobs"
	"storefront/internal/repository"
	"storefront/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront jobs runner")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories and services
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	activityRepo := repository.NewActivityRepository(pool, logger)
	analyticsRepo := repository.NewAnalyticsRepository(pool, logger)

	location := cfg.Server.Location()
	activityService := service.NewActivityService(activityRepo, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, productRepo, orderRepo, activityService, location, logger)

	scheduler := jobs.NewScheduler([]jobs.Job{
		{
			// Aggregate the previous calendar day so the day is complete.
			Name: "daily_sales_aggregation",
			Run: func(ctx context.Context) error {
				yesterday := time.Now().In(location).AddDate(0, 0, -1)
				_, err := analyticsService.AggregateDailySales(ctx, yesterday)
				return err
			},
		},
		{
			Name: "low_stock_alert",
			Run: func(ctx context.Context) error {
				_, err := analyticsService.LowStockAlert(ctx)
				return err
			},
		},
		{
			Name: "pending_order_reminder",
			Run: func(ctx context.Context) error {
				_, err := analyticsService.PendingOrderReminder(ctx)
				return err
			},
		},
		{
			Name: "session_cleanup",
			Run: func(ctx context.Context) error {
				deleted, err := userRepo.DeleteExpiredSessions(ctx)
				if err != nil {
					return err
				}
				if deleted > 0 {
					logger.Info().Int64("deleted", deleted).Msg("expired sessions removed")
				}
				return nil
			},
		},
	}, cfg.Jobs.Interval, logger)

	scheduler.Start(ctx)

	logger.Info().Msg("jobs runner shutdown completed")
	return nil
}
