package service

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// AuthService defines operations for account registration and sessions.
type AuthService interface {
	// Register creates a new customer account.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// Login verifies credentials and issues a session token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)

	// Authenticate resolves a session token to its user.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// CatalogService defines operations for category and product management.
type CatalogService interface {
	// ListCategories retrieves all categories.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// CreateCategory creates a new category.
	CreateCategory(ctx context.Context, actor *model.User, req *model.CreateCategoryRequest) (*model.Category, error)

	// ListProducts retrieves products matching the filter with pagination.
	ListProducts(ctx context.Context, filter model.ProductFilter) (model.ProductPage, error)

	// GetProduct retrieves a single product by ID.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// CreateProduct creates a new product.
	CreateProduct(ctx context.Context, actor *model.User, req *model.CreateProductRequest) (*model.Product, error)

	// UpdateProduct applies a partial update to a product.
	UpdateProduct(ctx context.Context, actor *model.User, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error)

	// DeleteProduct removes a product without order history.
	DeleteProduct(ctx context.Context, actor *model.User, id uuid.UUID) error

	// ListLowStock retrieves products at or below their low-stock threshold.
	ListLowStock(ctx context.Context) ([]model.Product, error)
}

// OrderService defines operations for order placement and fulfilment.
type OrderService interface {
	// PlaceOrder converts a cart into a durable order, snapshotting prices
	// and decrementing stock as one atomic transaction.
	PlaceOrder(ctx context.Context, user *model.User, req *model.PlaceOrderRequest) (*model.OrderResponse, error)

	// GetOrder retrieves an order visible to the caller (owner or admin).
	GetOrder(ctx context.Context, user *model.User, id uuid.UUID) (*model.OrderResponse, error)

	// ListOrders retrieves the caller's orders.
	ListOrders(ctx context.Context, user *model.User) ([]model.OrderResponse, error)

	// ListAllOrders retrieves every order (administrative listing).
	ListAllOrders(ctx context.Context) ([]model.OrderResponse, error)

	// UpdateStatus overwrites an order's status (administrative).
	UpdateStatus(ctx context.Context, actor *model.User, id uuid.UUID, status string) (*model.OrderResponse, error)

	// CancelOrder cancels the owner's pending order and restores stock.
	CancelOrder(ctx context.Context, user *model.User, id uuid.UUID) error
}

// ActivityRecorder receives audit events. Recording is fire-and-forget: a
// failure to record never fails the business operation that emitted it.
type ActivityRecorder interface {
	// Record emits an audit event asynchronously.
	Record(ctx context.Context, actor *model.User, action, entityType, entityID string, details map[string]any)
}

// ActivityService extends ActivityRecorder with synchronous recording and
// listing.
type ActivityService interface {
	ActivityRecorder

	// RecordSystem stores a system-originated event synchronously.
	RecordSystem(ctx context.Context, action string, details map[string]any) error

	// List retrieves audit entries newest first.
	List(ctx context.Context, limit, offset int) ([]model.ActivityLog, error)
}

// AnalyticsService defines the periodic aggregation jobs and their read API.
type AnalyticsService interface {
	// AggregateDailySales aggregates delivered orders for the given calendar
	// day and upserts the result.
	AggregateDailySales(ctx context.Context, date time.Time) (model.DailySales, error)

	// LowStockAlert records an audit event for products at or below their
	// threshold and returns how many there were.
	LowStockAlert(ctx context.Context) (int, error)

	// PendingOrderReminder records an audit event for pending orders older
	// than 24 hours and returns how many there were.
	PendingOrderReminder(ctx context.Context) (int, error)

	// ListDailySales retrieves aggregates newest first.
	ListDailySales(ctx context.Context, limit int) ([]model.DailySales, error)
}
