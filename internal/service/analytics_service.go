package service

import (
	"context"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// analyticsService implements AnalyticsService.
type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
	orderRepo     repository.OrderRepository
	activity      ActivityService
	location      *time.Location
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	activity ActivityService,
	location *time.Location,
	logger zerolog.Logger,
) AnalyticsService {
	if location == nil {
		location = time.UTC
	}
	return &analyticsService{
		analyticsRepo: analyticsRepo,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		activity:      activity,
		location:      location,
		logger:        logger.With().Str("service", "analytics").Logger(),
		now:           time.Now,
	}
}

// AggregateDailySales aggregates delivered orders for the given calendar day
// and upserts the result.
func (s *analyticsService) AggregateDailySales(ctx context.Context, date time.Time) (model.DailySales, error) {
	date = date.In(s.location)
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	summary, err := s.analyticsRepo.SalesSummary(ctx, dayStart, dayEnd)
	if err != nil {
		return model.DailySales{}, err
	}
	summary.Date = dayStart

	if err := s.analyticsRepo.UpsertDailySales(ctx, summary); err != nil {
		return model.DailySales{}, err
	}

	s.logger.Info().
		Str("date", dayStart.Format("2006-01-02")).
		Int("total_orders", summary.TotalOrders).
		Str("total_revenue", summary.TotalRevenue.String()).
		Msg("daily sales aggregated")

	return summary, nil
}

// LowStockAlert records an audit event for products at or below their
// threshold and returns how many there were.
func (s *analyticsService) LowStockAlert(ctx context.Context) (int, error) {
	products, err := s.productRepo.ListLowStock(ctx)
	if err != nil {
		return 0, err
	}

	if len(products) == 0 {
		s.logger.Info().Msg("no low stock products found")
		return 0, nil
	}

	names := lo.Map(products, func(p model.Product, _ int) string { return p.Name })

	if err := s.activity.RecordSystem(ctx, model.ActionLowStockAlert, map[string]any{
		"count":    len(products),
		"products": names,
	}); err != nil {
		return len(products), err
	}

	s.logger.Warn().Int("count", len(products)).Msg("low stock alert")
	return len(products), nil
}

// PendingOrderReminder records an audit event for pending orders older than
// 24 hours and returns how many there were.
func (s *analyticsService) PendingOrderReminder(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-24 * time.Hour)

	orders, err := s.orderRepo.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if len(orders) == 0 {
		s.logger.Info().Msg("no stale pending orders found")
		return 0, nil
	}

	numbers := lo.Map(orders, func(o model.Order, _ int) string { return o.OrderNumber })

	if err := s.activity.RecordSystem(ctx, model.ActionPendingReminder, map[string]any{
		"count":  len(orders),
		"orders": numbers,
	}); err != nil {
		return len(orders), err
	}

	s.logger.Info().Int("count", len(orders)).Msg("stale pending orders found")
	return len(orders), nil
}

// ListDailySales retrieves aggregates newest first.
func (s *analyticsService) ListDailySales(ctx context.Context, limit int) ([]model.DailySales, error) {
	if limit <= 0 {
		limit = 30
	}
	return s.analyticsRepo.ListDailySales(ctx, limit)
}
