package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// GetAll retrieves all categories.
	GetAll(ctx context.Context) ([]model.Category, error)

	// GetByID retrieves a single category by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)

	// Create inserts a new category.
	Create(ctx context.Context, category *model.Category) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products matching the filter with pagination.
	List(ctx context.Context, filter model.ProductFilter) (model.ProductPage, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetForUpdate retrieves products by ID within the transaction, taking
	// row-level locks in a deterministic order so concurrent order placement
	// serialises per product instead of deadlocking.
	GetForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update overwrites a product's mutable attributes.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product. Products referenced by any order item
	// cannot be deleted.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListLowStock retrieves products at or below their low-stock threshold.
	ListLowStock(ctx context.Context) ([]model.Product, error)

	// AdjustStock applies stock_quantity += delta within the transaction.
	// The update is conditional on the result staying non-negative, so the
	// check and the write are a single atomic statement.
	AdjustStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, delta int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// Returns ErrOrderNumberTaken when the order number collides with a
	// concurrently created order.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// CountInWindow counts orders placed within [from, to) inside the transaction.
	CountInWindow(ctx context.Context, tx pgx.Tx, from, to time.Time) (int, error)

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByIDForUpdate retrieves an order and its items within the
	// transaction, locking the order row.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// ListByUser retrieves all orders belonging to a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error)

	// ListAll retrieves every order, newest first.
	ListAll(ctx context.Context) ([]model.OrderResponse, error)

	// UpdateStatus overwrites an order's status. A non-nil deliveredAt also
	// stamps the delivery time. Returns false when the order does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, deliveredAt *time.Time) (bool, error)

	// UpdateStatusTx overwrites an order's status within the transaction.
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	// ListPendingOlderThan retrieves pending orders placed before the cutoff.
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]model.Order, error)
}

// UserRepository defines the interface for user and session data access.
type UserRepository interface {
	// Create inserts a new user account.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// CreateSession stores a new session token.
	CreateSession(ctx context.Context, session *model.Session) error

	// GetSessionUser resolves a session token to its user. Expired or
	// unknown tokens yield nil.
	GetSessionUser(ctx context.Context, token string) (*model.User, error)

	// DeleteExpiredSessions removes sessions past their expiry.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// ActivityRepository defines the interface for activity audit records.
type ActivityRepository interface {
	// Insert stores one activity log entry.
	Insert(ctx context.Context, entry *model.ActivityLog) error

	// List retrieves entries newest first with pagination.
	List(ctx context.Context, limit, offset int) ([]model.ActivityLog, error)
}

// AnalyticsRepository defines the interface for sales aggregates.
type AnalyticsRepository interface {
	// SalesSummary aggregates delivered orders placed within [from, to).
	SalesSummary(ctx context.Context, from, to time.Time) (model.DailySales, error)

	// UpsertDailySales inserts or replaces the aggregate for its date.
	UpsertDailySales(ctx context.Context, sales model.DailySales) error

	// ListDailySales retrieves aggregates newest first.
	ListDailySales(ctx context.Context, limit int) ([]model.DailySales, error)
}
