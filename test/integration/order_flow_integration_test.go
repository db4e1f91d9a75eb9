package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stack := SetupTestStack(t)
	ctx := context.Background()

	admin := RegisterUser(t, stack, "flow_admin")
	PromoteToAdmin(t, stack, admin)
	customer := RegisterUser(t, stack, "flow_customer")

	mouse := CreateProduct(t, stack, admin, "Wireless Mouse", "24.99", 10)
	keyboard := CreateProduct(t, stack, admin, "Mechanical Keyboard", "89.50", 4)

	t.Run("placement snapshots prices and decrements stock", func(t *testing.T) {
		resp, err := stack.Orders.PlaceOrder(ctx, customer, &model.PlaceOrderRequest{
			ShippingAddress: "12 High Street",
			PaymentMethod:   "card",
			Items: []model.OrderLineRequest{
				{ProductID: mouse.ID, Quantity: 2},
				{ProductID: keyboard.ID, Quantity: 1},
			},
		})
		require.NoError(t, err)

		assert.Regexp(t, `^ORD-\d{8}-\d{3}$`, resp.OrderNumber)
		assert.Equal(t, model.OrderStatusPending, resp.Status)
		assert.True(t, resp.TotalAmount.Equal(mustDecimal(t, "139.48")),
			"got %s", resp.TotalAmount)
		require.Len(t, resp.Items, 2)

		gotMouse, err := stack.Catalog.GetProduct(ctx, mouse.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, gotMouse.StockQuantity)

		gotKeyboard, err := stack.Catalog.GetProduct(ctx, keyboard.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, gotKeyboard.StockQuantity)

		// A later price change must not disturb the recorded line prices
		newPrice := mustDecimal(t, "99.99")
		_, err = stack.Catalog.UpdateProduct(ctx, admin, mouse.ID, &model.UpdateProductRequest{
			Price: &newPrice,
		})
		require.NoError(t, err)

		got, err := stack.Orders.GetOrder(ctx, customer, resp.ID)
		require.NoError(t, err)
		for _, item := range got.Items {
			if item.ProductID == mouse.ID {
				assert.True(t, item.Price.Equal(mustDecimal(t, "24.99")))
			}
		}
	})

	t.Run("cancellation restores stock", func(t *testing.T) {
		resp, err := stack.Orders.PlaceOrder(ctx, customer, &model.PlaceOrderRequest{
			ShippingAddress: "12 High Street",
			PaymentMethod:   "card",
			Items:           []model.OrderLineRequest{{ProductID: keyboard.ID, Quantity: 2}},
		})
		require.NoError(t, err)

		got, err := stack.Catalog.GetProduct(ctx, keyboard.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.StockQuantity)

		require.NoError(t, stack.Orders.CancelOrder(ctx, customer, resp.ID))

		got, err = stack.Catalog.GetProduct(ctx, keyboard.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.StockQuantity)

		cancelled, err := stack.Orders.GetOrder(ctx, customer, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)

		// A cancelled order cannot be cancelled twice
		err = stack.Orders.CancelOrder(ctx, customer, resp.ID)
		assert.ErrorIs(t, err, model.ErrNotCancellable)
	})

	t.Run("only the owner may cancel", func(t *testing.T) {
		other := RegisterUser(t, stack, "flow_other")

		resp, err := stack.Orders.PlaceOrder(ctx, customer, &model.PlaceOrderRequest{
			ShippingAddress: "12 High Street",
			PaymentMethod:   "card",
			Items:           []model.OrderLineRequest{{ProductID: keyboard.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		err = stack.Orders.CancelOrder(ctx, other, resp.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("order numbers are sequential within a day", func(t *testing.T) {
		first, err := stack.Orders.PlaceOrder(ctx, customer, &model.PlaceOrderRequest{
			ShippingAddress: "12 High Street",
			PaymentMethod:   "card",
			Items:           []model.OrderLineRequest{{ProductID: mouse.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		second, err := stack.Orders.PlaceOrder(ctx, customer, &model.PlaceOrderRequest{
			ShippingAddress: "12 High Street",
			PaymentMethod:   "card",
			Items:           []model.OrderLineRequest{{ProductID: mouse.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		var firstSeq, secondSeq int
		var day string
		_, err = fmt.Sscanf(first.OrderNumber, "ORD-%8s-%03d", &day, &firstSeq)
		require.NoError(t, err)
		_, err = fmt.Sscanf(second.OrderNumber, "ORD-%8s-%03d", &day, &secondSeq)
		require.NoError(t, err)
		assert.Equal(t, firstSeq+1, secondSeq)
	})
}

func TestOrderFlow_ConcurrentPlacement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stack := SetupTestStack(t)
	ctx := context.Background()

	admin := RegisterUser(t, stack, "race_admin")
	PromoteToAdmin(t, stack, admin)
	alice := RegisterUser(t, stack, "race_alice")
	bob := RegisterUser(t, stack, "race_bob")

	// Stock covers one of the two orders but not both
	product := CreateProduct(t, stack, admin, "Last Unit", "50.00", 5)

	place := func(user *model.User) error {
		_, err := stack.Orders.PlaceOrder(ctx, user, &model.PlaceOrderRequest{
			ShippingAddress: "12 High Street",
			PaymentMethod:   "card",
			Items:           []model.OrderLineRequest{{ProductID: product.ID, Quantity: 3}},
		})
		return err
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, user := range []*model.User{alice, bob} {
		wg.Add(1)
		go func(i int, user *model.User) {
			defer wg.Done()
			results[i] = place(user)
		}(i, user)
	}
	wg.Wait()

	var successes, stockFailures int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == model.ErrCodeInsufficientStock {
			stockFailures++
		} else {
			t.Fatalf("unexpected placement error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one placement wins the last stock")
	assert.Equal(t, 1, stockFailures)

	got, err := stack.Catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.StockQuantity)
}

func TestAnalyticsFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stack := SetupTestStack(t)
	ctx := context.Background()

	admin := RegisterUser(t, stack, "analytics_admin")
	PromoteToAdmin(t, stack, admin)
	customer := RegisterUser(t, stack, "analytics_customer")
	product := CreateProduct(t, stack, admin, "Notebook", "12.50", 100)

	resp, err := stack.Orders.PlaceOrder(ctx, customer, &model.PlaceOrderRequest{
		ShippingAddress: "12 High Street",
		PaymentMethod:   "card",
		Items:           []model.OrderLineRequest{{ProductID: product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = stack.Orders.UpdateStatus(ctx, admin, resp.ID, "delivered")
	require.NoError(t, err)

	sales, err := stack.Analytics.AggregateDailySales(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, sales.TotalOrders)
	assert.Equal(t, 4, sales.TotalItemsSold)
	assert.True(t, sales.TotalRevenue.Equal(mustDecimal(t, "50.00")))

	listed, err := stack.Analytics.ListDailySales(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].TotalOrders)
}
