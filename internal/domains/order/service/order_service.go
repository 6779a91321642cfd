package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	cartModel "shop-backend/internal/domains/cart/model"
	cartRepo "shop-backend/internal/domains/cart/repository"
	catalogJob "shop-backend/internal/domains/catalog/job"
	catalogRepo "shop-backend/internal/domains/catalog/repository"
	couponModel "shop-backend/internal/domains/coupon/model"
	couponService "shop-backend/internal/domains/coupon/service"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/repository"
	"shop-backend/internal/shared"
	"shop-backend/pkg/logger"
)

type orderService struct {
	repo    repository.RepositoryInterface
	catalog catalogRepo.RepositoryInterface
	cart    cartRepo.RepositoryInterface
	coupons couponService.ServiceInterface
	asynq   *asynq.Client
}

func NewOrderService(
	repo repository.RepositoryInterface,
	catalog catalogRepo.RepositoryInterface,
	cart cartRepo.RepositoryInterface,
	coupons couponService.ServiceInterface,
	asynqClient *asynq.Client,
) ServiceInterface {
	return &orderService{
		repo:    repo,
		catalog: catalog,
		cart:    cart,
		coupons: coupons,
		asynq:   asynqClient,
	}
}

// orderLine is a resolved line ready to be frozen into order_items.
type orderLine struct {
	ProductID   uuid.UUID
	VariantID   uuid.UUID
	ProductName string
	Size        string
	Color       string
	ImageURL    *string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// =====================================================
// CHECKOUT FROM CART
// =====================================================

func (s *orderService) CheckoutFromCart(ctx context.Context, userID uuid.UUID, req cartModel.CheckoutRequest) (*model.CreateOrderResponse, error) {
	cart, err := s.cart.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrEmptyCart
	}

	cartItems, err := s.cart.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, model.ErrEmptyCart
	}

	// Cart items already carry the frozen snapshot data; checkout
	// charges the snapshot price, not the current catalog price.
	lines := make([]orderLine, len(cartItems))
	for i, item := range cartItems {
		lines[i] = orderLine{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Color:       item.Color,
			ImageURL:    &item.ImageURL,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}

	resp, err := s.create(ctx, userID, createParams{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
		Notes:           req.Notes,
		Lines:           lines,
		CartID:          &cart.ID,
	})
	if err != nil {
		return nil, err
	}

	s.enqueueTrackCheckout(userID, resp, len(lines))
	return resp, nil
}

// =====================================================
// CREATE ORDER (DIRECT ITEMS)
// =====================================================

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	lines := make([]orderLine, 0, len(req.Items))
	for _, item := range req.Items {
		if err := item.Validate(); err != nil {
			return nil, err
		}

		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}

		variant, err := s.catalog.GetVariant(ctx, item.ProductID, item.Size, item.Color)
		if err != nil {
			return nil, err
		}

		lines = append(lines, orderLine{
			ProductID:   product.ID,
			VariantID:   variant.ID,
			ProductName: product.Name,
			Size:        variant.Size,
			Color:       variant.Color,
			ImageURL:    &product.ImageURL,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
		})
	}

	return s.create(ctx, userID, createParams{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
		Notes:           req.Notes,
		Lines:           lines,
	})
}

type createParams struct {
	CustomerName    string
	CustomerPhone   string
	ShippingAddress string
	PaymentMethod   string
	CouponCode      *string
	Notes           *string
	Lines           []orderLine
	CartID          *uuid.UUID
}

// create is the single order creation path. Everything that must be
// atomic happens in one transaction:
//  1. conditional stock decrement per line, first shortage aborts
//  2. coupon re-validation and conditional apply
//  3. order + frozen items + status history insert
//  4. cart cleared when checkout came from a cart
//
// Async side effects only fire after a successful commit.
func (s *orderService) create(ctx context.Context, userID uuid.UUID, p createParams) (*model.CreateOrderResponse, error) {
	paymentMethod := model.PaymentMethod(p.PaymentMethod)
	if !paymentMethod.IsValid() {
		return nil, model.ErrInvalidPaymentMethod
	}
	if len(p.Lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	subtotal := decimal.Zero
	productIDs := make([]uuid.UUID, 0, len(p.Lines))
	for _, line := range p.Lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		productIDs = append(productIDs, line.ProductID)
	}

	// Pre-validate the coupon before touching stock. The conditional
	// apply inside the transaction is the authoritative check.
	var coupon *couponModel.Coupon
	discount := decimal.Zero
	if p.CouponCode != nil && *p.CouponCode != "" {
		result, err := s.coupons.Validate(ctx, *p.CouponCode, userID, subtotal, productIDs)
		if err != nil {
			return nil, err
		}
		coupon = result.Coupon
		discount = result.Discount
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, line := range p.Lines {
		if err := s.catalog.DecrementStockTx(ctx, tx, line.VariantID, line.Quantity); err != nil {
			return nil, err
		}
	}

	orderID := uuid.New()
	var couponID *uuid.UUID
	if coupon != nil {
		if err := s.coupons.ApplyTx(ctx, tx, coupon, userID, orderID, discount); err != nil {
			return nil, err
		}
		couponID = &coupon.ID
	}

	order := &model.Order{
		ID:              orderID,
		OrderNumber:     model.NewOrderNumber(time.Now()),
		UserID:          userID,
		CustomerName:    p.CustomerName,
		CustomerPhone:   p.CustomerPhone,
		ShippingAddress: p.ShippingAddress,
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		Total:           subtotal.Sub(discount),
		CouponID:        couponID,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		Status:          model.OrderStatusPending,
		Notes:           p.Notes,
	}

	if err := s.repo.CreateOrderTx(ctx, tx, order); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, len(p.Lines))
	for i, line := range p.Lines {
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   line.ProductID,
			VariantID:   line.VariantID,
			ProductName: line.ProductName,
			Size:        line.Size,
			Color:       line.Color,
			ImageURL:    line.ImageURL,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		}
	}
	if err := s.repo.CreateOrderItemsTx(ctx, tx, items); err != nil {
		return nil, err
	}

	history := &model.OrderStatusHistory{
		OrderID:   orderID,
		ToStatus:  order.Status,
		ChangedBy: &userID,
	}
	if err := s.repo.CreateStatusHistoryTx(ctx, tx, history); err != nil {
		return nil, err
	}

	if p.CartID != nil {
		if err := s.cart.ClearItemsTx(ctx, tx, *p.CartID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info("order created", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total":        order.Total,
	})

	s.enqueuePostCommit(order, items)

	return &model.CreateOrderResponse{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		Total:          order.Total,
		PaymentMethod:  order.PaymentMethod,
		Status:         order.Status,
		CreatedAt:      order.CreatedAt,
	}, nil
}

// =====================================================
// READ
// =====================================================

func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderWithItems, error) {
	order, err := s.repo.GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, order)
}

func (s *orderService) GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*model.OrderWithItems, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, order)
}

func (s *orderService) withItems(ctx context.Context, order *model.Order) (*model.OrderWithItems, error) {
	items, err := s.repo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &model.OrderWithItems{Order: *order, Items: items}, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Order, int, error) {
	return s.repo.ListByUser(ctx, userID, page, limit)
}

func (s *orderService) ListAllOrders(ctx context.Context, status *model.OrderStatus, page, limit int) ([]model.Order, int, error) {
	return s.repo.ListAll(ctx, status, page, limit)
}

func (s *orderService) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	return s.repo.GetStatusHistory(ctx, orderID)
}

// =====================================================
// CANCEL (CUSTOMER)
// =====================================================

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason *string) (*model.Order, error) {
	order, err := s.repo.GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	// Paid orders go through the refund flow instead.
	if !order.Status.CanTransitionTo(model.OrderStatusCancelled) ||
		order.PaymentStatus == model.PaymentStatusPaid {
		return nil, model.ErrOrderCannotCancel
	}

	return s.cancel(ctx, order, &userID, reason)
}

// cancel restores stock and flips the status in one transaction.
func (s *orderService) cancel(ctx context.Context, order *model.Order, changedBy *uuid.UUID, reason *string) (*model.Order, error) {
	items, err := s.repo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, item := range items {
		if err := s.catalog.RestoreStockTx(ctx, tx, item.VariantID, item.Quantity); err != nil {
			return nil, err
		}
	}

	fromStatus := order.Status
	now := time.Now()
	order.Status = model.OrderStatusCancelled
	order.CancelledAt = &now

	if err := s.repo.UpdateStatusTx(ctx, tx, order); err != nil {
		return nil, err
	}

	history := &model.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: &fromStatus,
		ToStatus:   model.OrderStatusCancelled,
		ChangedBy:  changedBy,
		Notes:      reason,
	}
	if err := s.repo.CreateStatusHistoryTx(ctx, tx, history); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info("order cancelled", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"from_status":  fromStatus,
	})

	s.enqueueInventorySync(order, items)
	return order, nil
}

// =====================================================
// STATUS UPDATES (ADMIN)
// =====================================================

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, changedBy *uuid.UUID, req model.UpdateStatusRequest) (*model.Order, error) {
	if !req.Status.IsValid() {
		return nil, model.ErrInvalidOrderStatus
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, model.NewInvalidTransitionError(order.Status, req.Status)
	}

	if req.Status == model.OrderStatusCancelled {
		return s.cancel(ctx, order, changedBy, req.Notes)
	}

	fromStatus := order.Status
	now := time.Now()
	order.Status = req.Status

	// Delivery closes the money side for COD: the courier collected
	// cash, so the order counts as paid from here on.
	if req.Status == model.OrderStatusDelivered {
		order.DeliveredAt = &now
		if order.PaymentStatus != model.PaymentStatusPaid {
			order.PaymentStatus = model.PaymentStatusPaid
			order.PaidAt = &now
		}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.repo.UpdateStatusTx(ctx, tx, order); err != nil {
		return nil, err
	}

	history := &model.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: &fromStatus,
		ToStatus:   req.Status,
		ChangedBy:  changedBy,
		Notes:      req.Notes,
	}
	if err := s.repo.CreateStatusHistoryTx(ctx, tx, history); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info("order status updated", map[string]interface{}{
		"order_id":    order.ID,
		"from_status": fromStatus,
		"to_status":   req.Status,
	})
	return order, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus) error {
	if !status.IsValid() {
		return model.ErrInvalidPaymentStatus
	}

	var paidAt *time.Time
	if status == model.PaymentStatusPaid {
		now := time.Now()
		paidAt = &now
	}

	return s.repo.UpdatePaymentStatus(ctx, orderID, status, paidAt)
}

// =====================================================
// POST-COMMIT TASKS
// =====================================================

// enqueuePostCommit schedules the async follow-ups. Failures are
// logged, never surfaced: the order is already committed.
func (s *orderService) enqueuePostCommit(order *model.Order, items []model.OrderItem) {
	confirmation := model.OrderConfirmationPayload{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID.String(),
		Total:       order.Total.String(),
	}
	if b, err := json.Marshal(confirmation); err == nil {
		task := asynq.NewTask(shared.TypeOrderConfirmation, b)
		if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueCritical)); err != nil {
			logger.Error("enqueue order confirmation failed", err)
		}
	}

	s.enqueueInventorySync(order, items)
}

func (s *orderService) enqueueInventorySync(order *model.Order, items []model.OrderItem) {
	variantIDs := make([]string, len(items))
	for i, item := range items {
		variantIDs[i] = item.VariantID.String()
	}

	payload := catalogJob.VariantSyncPayload{
		VariantIDs: variantIDs,
		OrderID:    order.ID.String(),
	}

	if b, err := json.Marshal(payload); err == nil {
		task := asynq.NewTask(shared.TypeInventorySync, b)
		if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueDefault)); err != nil {
			logger.Error("enqueue inventory sync failed", err)
		}
	}
}

func (s *orderService) enqueueTrackCheckout(userID uuid.UUID, resp *model.CreateOrderResponse, itemsCount int) {
	payload := cartModel.TrackCheckoutPayload{
		UserID:      userID.String(),
		OrderID:     resp.OrderID.String(),
		OrderNumber: resp.OrderNumber,
		ItemsCount:  itemsCount,
		Total:       resp.Total.String(),
	}

	if b, err := json.Marshal(payload); err == nil {
		task := asynq.NewTask(shared.TypeTrackCheckout, b)
		if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueLow)); err != nil {
			logger.Error("enqueue checkout tracking failed", err)
		}
	}
}
