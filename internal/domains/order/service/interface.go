package service

import (
	"context"

	"github.com/google/uuid"

	cartModel "shop-backend/internal/domains/cart/model"
	"shop-backend/internal/domains/order/model"
)

type ServiceInterface interface {
	// CheckoutFromCart turns the user's cart into an order and clears
	// the cart, all in one transaction.
	CheckoutFromCart(ctx context.Context, userID uuid.UUID, req cartModel.CheckoutRequest) (*model.CreateOrderResponse, error)

	// CreateOrder builds an order from an explicit item list, skipping
	// the cart entirely.
	CreateOrder(ctx context.Context, userID uuid.UUID, req model.CreateOrderRequest) (*model.CreateOrderResponse, error)

	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderWithItems, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Order, int, error)

	// CancelOrder is the customer-facing cancellation. It restores
	// stock and only works while the order is unpaid and not shipped.
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason *string) (*model.Order, error)

	// Admin surface.
	GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*model.OrderWithItems, error)
	ListAllOrders(ctx context.Context, status *model.OrderStatus, page, limit int) ([]model.Order, int, error)
	GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, changedBy *uuid.UUID, req model.UpdateStatusRequest) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus) error
}
