package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE ORDER REQUEST (DIRECT ITEMS)
// =====================================================
type CreateOrderRequest struct {
	CustomerName    string             `json:"customer_name" binding:"required"`
	CustomerPhone   string             `json:"customer_phone" binding:"required"`
	ShippingAddress string             `json:"shipping_address" binding:"required"`
	PaymentMethod   string             `json:"payment_method" binding:"required"`
	CouponCode      *string            `json:"coupon_code,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
	Items           []OrderItemRequest `json:"items" binding:"required"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
}

func (req CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.CustomerName, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.CustomerPhone, validation.Required, validation.Length(8, 15)),
		validation.Field(&req.ShippingAddress, validation.Required, validation.Length(5, 500)),
		validation.Field(&req.PaymentMethod, validation.Required),
		validation.Field(&req.Items, validation.Required, validation.Length(1, 100)),
	)
}

func (req OrderItemRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Size, validation.Required, validation.Length(1, 20)),
		validation.Field(&req.Color, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1), validation.Max(999)),
	)
}

// =====================================================
// ADMIN REQUESTS
// =====================================================
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Notes  *string     `json:"notes,omitempty"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" binding:"required"`
}

type CancelOrderRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// =====================================================
// RESPONSES
// =====================================================
type CreateOrderResponse struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// =====================================================
// TASK PAYLOADS
// =====================================================
type OrderConfirmationPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id"`
	Total       string `json:"total"`
}
