package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// maxPlaceAttempts bounds retries on order-number collisions. The number is
// advisory (count of today's orders + 1); the unique constraint is the hard
// guarantee, and a collision just means another placement won the race.
const maxPlaceAttempts = 3

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	activity    ActivityRecorder
	location    *time.Location
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service. The location determines the
// calendar day used for order numbering.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	activity ActivityRecorder,
	location *time.Location,
	logger zerolog.Logger,
) OrderService {
	if location == nil {
		location = time.UTC
	}
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		activity:    activity,
		location:    location,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
	}
}

// PlaceOrder converts a cart into a durable order. The stock check, the
// order and item inserts, and the stock decrements all happen inside one
// transaction; either everything commits or nothing does.
func (s *orderService) PlaceOrder(ctx context.Context, user *model.User, req *model.PlaceOrderRequest) (*model.OrderResponse, error) {
	if err := validatePlaceOrderRequest(req); err != nil {
		return nil, err
	}

	var resp *model.OrderResponse
	var err error
	for attempt := 1; attempt <= maxPlaceAttempts; attempt++ {
		resp, err = s.placeOrderOnce(ctx, user, req)
		if errors.Is(err, repository.ErrOrderNumberTaken) {
			s.logger.Debug().Int("attempt", attempt).Msg("retrying placement with recomputed order number")
			continue
		}
		break
	}
	if errors.Is(err, repository.ErrOrderNumberTaken) || repository.IsRetryable(err) {
		return nil, model.ErrConflict
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", resp.ID.String()).
		Str("order_number", resp.OrderNumber).
		Str("user_id", user.ID.String()).
		Int("item_count", len(resp.Items)).
		Msg("order placed")

	s.activity.Record(ctx, user, model.ActionOrderCreated, "order", resp.ID.String(), map[string]any{
		"order_number": resp.OrderNumber,
		"total_amount": resp.TotalAmount.String(),
		"item_count":   len(resp.Items),
	})

	return resp, nil
}

func (s *orderService) placeOrderOnce(ctx context.Context, user *model.User, req *model.PlaceOrderRequest) (_ *model.OrderResponse, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	productIDs := lo.Uniq(lo.Map(req.Items, func(item model.OrderLineRequest, _ int) uuid.UUID {
		return item.ProductID
	}))

	// Lock the product rows up front: concurrent placements touching the
	// same product serialise here, so the stock check below cannot race.
	products, err := s.productRepo.GetForUpdate(ctx, tx, productIDs)
	if err != nil {
		return nil, err
	}
	productByID := lo.KeyBy(products, func(p model.Product) uuid.UUID { return p.ID })

	remaining := make(map[uuid.UUID]int, len(products))
	for _, p := range products {
		remaining[p.ID] = p.StockQuantity
	}

	orderID := uuid.New()
	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, ok := productByID[line.ProductID]
		if !ok {
			return nil, model.ErrProductNotFound
		}

		// Duplicate lines for one product draw down the same stock, so
		// track the running remainder rather than re-reading the row.
		remaining[product.ID] -= line.Quantity
		if remaining[product.ID] < 0 {
			s.logger.Warn().
				Str("product_id", product.ID.String()).
				Int("requested", line.Quantity).
				Int("available", product.StockQuantity).
				Msg("insufficient stock")
			return nil, model.NewInsufficientStockError(product.Name, product.StockQuantity)
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)

		items = append(items, model.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
			Subtotal:    subtotal,
		})
	}

	now := s.now().In(s.location)
	number, err := s.nextOrderNumber(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:              orderID,
		OrderNumber:     number,
		UserID:          user.ID,
		Status:          model.OrderStatusPending,
		TotalAmount:     total,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		OrderedAt:       now,
		UpdatedAt:       now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, err
	}

	for _, item := range items {
		if err = s.productRepo.AdjustStock(ctx, tx, item.ProductID, -item.Quantity); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit order")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// nextOrderNumber derives ORD-<YYYYMMDD>-<seq> from the count of orders
// already placed today. The sequence is advisory; the unique constraint on
// order_number is what actually guarantees uniqueness.
func (s *orderService) nextOrderNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	count, err := s.orderRepo.CountInWindow(ctx, tx, dayStart, dayEnd)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("ORD-%s-%03d", now.Format("20060102"), count+1), nil
}

// GetOrder retrieves an order visible to the caller (owner or admin).
func (s *orderService) GetOrder(ctx context.Context, user *model.User, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.UserID != user.ID && !user.IsAdmin() {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("user_id", user.ID.String()).
			Msg("order access denied")
		return nil, model.ErrForbidden
	}

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// ListOrders retrieves the caller's orders.
func (s *orderService) ListOrders(ctx context.Context, user *model.User) ([]model.OrderResponse, error) {
	return s.orderRepo.ListByUser(ctx, user.ID)
}

// ListAllOrders retrieves every order (administrative listing).
func (s *orderService) ListAllOrders(ctx context.Context) ([]model.OrderResponse, error) {
	return s.orderRepo.ListAll(ctx)
}

// UpdateStatus overwrites an order's status. Membership in the status
// enumeration is the only rule enforced: any status may move to any other.
func (s *orderService) UpdateStatus(ctx context.Context, actor *model.User, id uuid.UUID, status string) (*model.OrderResponse, error) {
	newStatus, err := model.ToOrderStatus(status)
	if err != nil {
		return nil, model.ErrInvalidStatus
	}

	order, _, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	oldStatus := order.Status

	var deliveredAt *time.Time
	if newStatus == model.OrderStatusDelivered {
		now := s.now()
		deliveredAt = &now
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, newStatus, deliveredAt)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("old_status", string(oldStatus)).
		Str("new_status", string(newStatus)).
		Msg("order status updated")

	s.activity.Record(ctx, actor, model.ActionOrderStatusUpdated, "order", id.String(), map[string]any{
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	})

	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// CancelOrder cancels the owner's pending order. The status change and all
// restock adjustments commit together or not at all.
func (s *orderService) CancelOrder(ctx context.Context, user *model.User, id uuid.UUID) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, items, err := s.orderRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if repository.IsRetryable(err) {
			return model.ErrConflict
		}
		return err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return err
	}

	if order.UserID != user.ID {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("user_id", user.ID.String()).
			Msg("cancellation denied, not the owner")
		err = model.ErrForbidden
		return err
	}

	if order.Status != model.OrderStatusPending {
		s.logger.Debug().
			Str("order_id", id.String()).
			Str("status", string(order.Status)).
			Msg("order not cancellable")
		err = model.ErrNotCancellable
		return err
	}

	if err = s.orderRepo.UpdateStatusTx(ctx, tx, id, model.OrderStatusCancelled); err != nil {
		return err
	}

	for _, item := range items {
		if err = s.productRepo.AdjustStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit cancellation")
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("order_number", order.OrderNumber).
		Msg("order cancelled")

	s.activity.Record(ctx, user, model.ActionOrderCancelled, "order", id.String(), map[string]any{
		"order_number": order.OrderNumber,
	})

	return nil
}

// validatePlaceOrderRequest validates the order request.
func validatePlaceOrderRequest(req *model.PlaceOrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Request body is required")
	}
	if req.ShippingAddress == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Shipping address is required")
	}
	if req.PaymentMethod == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Payment method is required")
	}
	if len(req.Items) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "Order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return model.NewDomainError(model.ErrCodeMissingField, "Product ID is required for every item")
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}
	return nil
}
