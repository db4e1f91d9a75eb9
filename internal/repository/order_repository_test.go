package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())
	user := seedUser(t, pool)
	category := seedCategory(t, pool)
	product := seedProduct(t, pool, category.ID, "24.99", 10)

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20260305-001",
		UserID:          user.ID,
		Status:          model.OrderStatusPending,
		TotalAmount:     decimal.RequireFromString("49.98"),
		ShippingAddress: "12 High Street",
		PaymentMethod:   "card",
		PaymentStatus:   model.PaymentStatusPending,
		OrderedAt:       now,
		UpdatedAt:       now,
	}
	items := []model.OrderItem{
		{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    2,
			Price:       product.Price,
			Subtotal:    decimal.RequireFromString("49.98"),
		},
	}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))

	got, gotItems, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.True(t, got.TotalAmount.Equal(order.TotalAmount))
	require.Len(t, gotItems, 1)
	assert.Equal(t, product.ID, gotItems[0].ProductID)
	assert.Equal(t, product.Name, gotItems[0].ProductName)
	assert.Equal(t, 2, gotItems[0].Quantity)

	// Unknown IDs yield nil, not an error
	got, gotItems, err = repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, gotItems)
}

func TestOrderRepository_CreateOrder_DuplicateNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())
	user := seedUser(t, pool)

	seedOrder(t, pool, user.ID, "ORD-20260305-001", model.OrderStatusPending, time.Now())

	now := time.Now()
	dup := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20260305-001",
		UserID:          user.ID,
		Status:          model.OrderStatusPending,
		TotalAmount:     decimal.RequireFromString("10.00"),
		ShippingAddress: "12 High Street",
		PaymentMethod:   "card",
		PaymentStatus:   model.PaymentStatusPending,
		OrderedAt:       now,
		UpdatedAt:       now,
	}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = repo.CreateOrder(ctx, tx, dup)
	assert.ErrorIs(t, err, ErrOrderNumberTaken)
}

func TestOrderRepository_CountInWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())
	user := seedUser(t, pool)

	dayStart := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	seedOrder(t, pool, user.ID, "ORD-20260305-001", model.OrderStatusPending, dayStart.Add(2*time.Hour))
	seedOrder(t, pool, user.ID, "ORD-20260305-002", model.OrderStatusPending, dayStart.Add(20*time.Hour))
	// Just outside the window on either side
	seedOrder(t, pool, user.ID, "ORD-20260304-001", model.OrderStatusPending, dayStart.Add(-time.Minute))
	seedOrder(t, pool, user.ID, "ORD-20260306-001", model.OrderStatusPending, dayEnd)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	count, err := repo.CountInWindow(ctx, tx, dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())
	user := seedUser(t, pool)
	order := seedOrder(t, pool, user.ID, "ORD-20260305-001", model.OrderStatusPending, time.Now())

	// Plain status change leaves delivered_at empty
	updated, err := repo.UpdateStatus(ctx, order.ID, model.OrderStatusShipped, nil)
	require.NoError(t, err)
	assert.True(t, updated)

	got, _, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, got.Status)
	assert.Nil(t, got.DeliveredAt)

	// Delivery stamps the time
	deliveredAt := time.Now()
	updated, err = repo.UpdateStatus(ctx, order.ID, model.OrderStatusDelivered, &deliveredAt)
	require.NoError(t, err)
	assert.True(t, updated)

	got, _, err = repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, got.Status)
	require.NotNil(t, got.DeliveredAt)
	assert.WithinDuration(t, deliveredAt, *got.DeliveredAt, time.Second)

	// Unknown orders report false
	updated, err = repo.UpdateStatus(ctx, uuid.New(), model.OrderStatusShipped, nil)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestOrderRepository_ListByUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())
	alice := seedUser(t, pool)
	bob := seedUser(t, pool)

	older := time.Now().Add(-2 * time.Hour)
	seedOrder(t, pool, alice.ID, "ORD-20260305-001", model.OrderStatusPending, older)
	newest := seedOrder(t, pool, alice.ID, "ORD-20260305-002", model.OrderStatusPending, time.Now())
	seedOrder(t, pool, bob.ID, "ORD-20260305-003", model.OrderStatusPending, time.Now())

	orders, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newest.ID, orders[0].ID, "newest first")

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderRepository_ListPendingOlderThan(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())
	user := seedUser(t, pool)

	cutoff := time.Now().Add(-24 * time.Hour)

	stale := seedOrder(t, pool, user.ID, "ORD-20260303-001", model.OrderStatusPending, cutoff.Add(-time.Hour))
	seedOrder(t, pool, user.ID, "ORD-20260305-001", model.OrderStatusPending, time.Now())
	seedOrder(t, pool, user.ID, "ORD-20260303-002", model.OrderStatusShipped, cutoff.Add(-time.Hour))

	orders, err := repo.ListPendingOlderThan(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, stale.ID, orders[0].ID)
}
