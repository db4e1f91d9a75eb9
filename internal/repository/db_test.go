package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer, runs the migrations and
// returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr, zerolog.Nop()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedUser inserts a user and returns it.
func seedUser(t *testing.T, pool *pgxpool.Pool) *model.User {
	ctx := context.Background()

	user := &model.User{
		ID:           uuid.New(),
		Username:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		PasswordHash: "not-a-real-hash",
		Phone:        gofakeit.Phone(),
		Pincode:      "560001",
		UserType:     model.UserTypeCustomer,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, phone, pincode, user_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Phone,
		user.Pincode, user.UserType, user.CreatedAt, user.UpdatedAt,
	)
	require.NoError(t, err)

	return user
}

// seedCategory inserts a category and returns it.
func seedCategory(t *testing.T, pool *pgxpool.Pool) *model.Category {
	ctx := context.Background()

	category := &model.Category{
		ID:   uuid.New(),
		Name: gofakeit.ProductCategory(),
		Slug: uuid.NewString(),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO categories (id, name, slug, description) VALUES ($1, $2, $3, $4)`,
		category.ID, category.Name, category.Slug, category.Description,
	)
	require.NoError(t, err)

	return category
}

// seedProduct inserts a product in the given category and returns it.
func seedProduct(t *testing.T, pool *pgxpool.Pool, categoryID uuid.UUID, price string, stock int) *model.Product {
	ctx := context.Background()

	now := time.Now()
	product := &model.Product{
		ID:                uuid.New(),
		Name:              gofakeit.ProductName(),
		Slug:              uuid.NewString(),
		CategoryID:        categoryID,
		Price:             decimal.RequireFromString(price),
		StockQuantity:     stock,
		LowStockThreshold: 10,
		SKU:               uuid.NewString(),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, slug, description, category_id, price, stock_quantity,
			low_stock_threshold, sku, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		product.ID, product.Name, product.Slug, product.Description, product.CategoryID,
		product.Price, product.StockQuantity, product.LowStockThreshold, product.SKU,
		product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	require.NoError(t, err)

	return product
}

// seedOrder inserts a bare order row and returns it.
func seedOrder(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, number string, status model.OrderStatus, orderedAt time.Time) *model.Order {
	ctx := context.Background()

	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		UserID:          userID,
		Status:          status,
		TotalAmount:     decimal.RequireFromString("10.00"),
		ShippingAddress: "12 High Street",
		PaymentMethod:   "card",
		PaymentStatus:   model.PaymentStatusPending,
		OrderedAt:       orderedAt,
		UpdatedAt:       orderedAt,
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO orders (id, order_number, user_id, status, total_amount, shipping_address,
			payment_method, payment_status, ordered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.OrderNumber, order.UserID, order.Status, order.TotalAmount,
		order.ShippingAddress, order.PaymentMethod, order.PaymentStatus,
		order.OrderedAt, order.UpdatedAt,
	)
	require.NoError(t, err)

	return order
}
