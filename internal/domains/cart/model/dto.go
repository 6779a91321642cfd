package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ADD ITEM REQUEST
// =====================================================
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"required"`
	Color     string    `json:"color" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
}

func (req AddItemRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Size, validation.Required, validation.Length(1, 20)),
		validation.Field(&req.Color, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1), validation.Max(999)),
	)
}

// =====================================================
// UPDATE ITEM QUANTITY REQUEST
// =====================================================
// Quantity 0 removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (req UpdateQuantityRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Quantity, validation.Min(0), validation.Max(999)),
	)
}

// =====================================================
// CHECKOUT REQUEST
// =====================================================
type CheckoutRequest struct {
	CustomerName    string  `json:"customer_name" binding:"required"`
	CustomerPhone   string  `json:"customer_phone" binding:"required"`
	ShippingAddress string  `json:"shipping_address" binding:"required"`
	PaymentMethod   string  `json:"payment_method" binding:"required"`
	CouponCode      *string `json:"coupon_code,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func (req CheckoutRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.CustomerName, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.CustomerPhone, validation.Required, validation.Length(8, 15)),
		validation.Field(&req.ShippingAddress, validation.Required, validation.Length(5, 500)),
		validation.Field(&req.PaymentMethod, validation.Required),
	)
}

// =====================================================
// CART RESPONSE
// =====================================================
type CartResponse struct {
	Cart  Cart            `json:"cart"`
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}
