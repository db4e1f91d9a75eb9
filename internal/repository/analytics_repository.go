package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// analyticsRepository implements the AnalyticsRepository interface using PostgreSQL.
type analyticsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAnalyticsRepository creates a new PostgreSQL-backed analytics repository.
func NewAnalyticsRepository(pool *pgxpool.Pool, logger zerolog.Logger) AnalyticsRepository {
	return &analyticsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "analytics").Logger(),
	}
}

// SalesSummary aggregates delivered orders placed within [from, to).
func (r *analyticsRepository) SalesSummary(ctx context.Context, from, to time.Time) (model.DailySales, error) {
	var summary model.DailySales

	// Summing total_amount across an order_items join would multiply it by
	// the item count, so orders and items are aggregated separately.
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders o
				WHERE o.status = $1 AND o.ordered_at >= $2 AND o.ordered_at < $3),
			(SELECT COALESCE(SUM(o.total_amount), 0) FROM orders o
				WHERE o.status = $1 AND o.ordered_at >= $2 AND o.ordered_at < $3),
			(SELECT COALESCE(SUM(i.quantity), 0) FROM order_items i
				JOIN orders o ON o.id = i.order_id
				WHERE o.status = $1 AND o.ordered_at >= $2 AND o.ordered_at < $3)
	`

	err := r.pool.QueryRow(ctx, query, model.OrderStatusDelivered, from, to).Scan(
		&summary.TotalOrders, &summary.TotalRevenue, &summary.TotalItemsSold,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to aggregate sales")
		return summary, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	if summary.TotalOrders > 0 {
		summary.AverageOrderValue = summary.TotalRevenue.
			Div(decimal.NewFromInt(int64(summary.TotalOrders))).
			Round(2)
	} else {
		summary.AverageOrderValue = decimal.Zero
	}

	return summary, nil
}

// UpsertDailySales inserts or replaces the aggregate for its date.
func (r *analyticsRepository) UpsertDailySales(ctx context.Context, sales model.DailySales) error {
	query := `
		INSERT INTO daily_sales (date, total_orders, total_revenue, total_items_sold, average_order_value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE
		SET total_orders = EXCLUDED.total_orders,
			total_revenue = EXCLUDED.total_revenue,
			total_items_sold = EXCLUDED.total_items_sold,
			average_order_value = EXCLUDED.average_order_value
	`

	_, err := r.pool.Exec(ctx, query, sales.Date, sales.TotalOrders, sales.TotalRevenue,
		sales.TotalItemsSold, sales.AverageOrderValue)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to upsert daily sales")
		return fmt.Errorf("failed to upsert daily sales: %w", err)
	}

	return nil
}

// ListDailySales retrieves aggregates newest first.
func (r *analyticsRepository) ListDailySales(ctx context.Context, limit int) ([]model.DailySales, error) {
	query := `
		SELECT date, total_orders, total_revenue, total_items_sold, average_order_value, created_at
		FROM daily_sales
		ORDER BY date DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query daily sales")
		return nil, fmt.Errorf("failed to query daily sales: %w", err)
	}
	defer rows.Close()

	var sales []model.DailySales
	for rows.Next() {
		var s model.DailySales
		err := rows.Scan(&s.Date, &s.TotalOrders, &s.TotalRevenue, &s.TotalItemsSold,
			&s.AverageOrderValue, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily sales: %w", err)
	}

	if sales == nil {
		sales = []model.DailySales{}
	}

	return sales, nil
}
