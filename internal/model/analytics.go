package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySales is an aggregate of one calendar day's delivered orders.
type DailySales struct {
	Date              time.Time       `json:"date" db:"date"`
	TotalOrders       int             `json:"totalOrders" db:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue" db:"total_revenue"`
	TotalItemsSold    int             `json:"totalItemsSold" db:"total_items_sold"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue" db:"average_order_value"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
}
