package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCOD   PaymentMethod = "cod"
	PaymentMethodVNPay PaymentMethod = "vnpay"
	PaymentMethodMomo  PaymentMethod = "momo"
)

func (pm PaymentMethod) IsValid() bool {
	switch pm {
	case PaymentMethodCOD, PaymentMethodVNPay, PaymentMethodMomo:
		return true
	}
	return false
}

func (pm PaymentMethod) String() string {
	return string(pm)
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (ps PaymentStatus) IsValid() bool {
	switch ps {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

func (ps PaymentStatus) String() string {
	return string(ps)
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (os OrderStatus) IsValid() bool {
	switch os {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (os OrderStatus) String() string {
	return string(os)
}

// statusTransitions is the full lifecycle graph. Delivered and
// cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionTo reports whether the move from the current status is
// allowed.
func (os OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[os] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is the ledger record of a checkout. Amounts and item data are
// frozen at creation; later catalog changes never touch them.
type Order struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderNumber string    `json:"order_number" db:"order_number"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`

	CustomerName    string `json:"customer_name" db:"customer_name"`
	CustomerPhone   string `json:"customer_phone" db:"customer_phone"`
	ShippingAddress string `json:"shipping_address" db:"shipping_address"`

	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	Total          decimal.Decimal `json:"total" db:"total"`
	CouponID       *uuid.UUID      `json:"coupon_id,omitempty" db:"coupon_id"`

	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	Status        OrderStatus   `json:"status" db:"status"`

	Notes *string `json:"notes,omitempty" db:"notes"`

	PaidAt      *time.Time `json:"paid_at,omitempty" db:"paid_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrderItem is a frozen copy of the purchased line. Product data is
// snapshotted so the order survives catalog edits and deletions.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	VariantID uuid.UUID `json:"variant_id" db:"variant_id"`

	ProductName string          `json:"product_name" db:"product_name"`
	Size        string          `json:"size" db:"size"`
	Color       string          `json:"color" db:"color"`
	ImageURL    *string         `json:"image_url,omitempty" db:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OrderStatusHistory is one row per status change, including creation.
type OrderStatusHistory struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	OrderID    uuid.UUID    `json:"order_id" db:"order_id"`
	FromStatus *OrderStatus `json:"from_status,omitempty" db:"from_status"`
	ToStatus   OrderStatus  `json:"to_status" db:"to_status"`
	ChangedBy  *uuid.UUID   `json:"changed_by,omitempty" db:"changed_by"`
	Notes      *string      `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}

type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}
