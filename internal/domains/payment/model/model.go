package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MethodVNPay = "vnpay"
	MethodMomo  = "momo"
)

const DefaultCurrency = "VND"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted,
		StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Payment is one attempt to collect money for an order. An order can
// accumulate several failed attempts; at most one ends up completed.
type Payment struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OrderID uuid.UUID `json:"order_id" db:"order_id"`
	UserID  uuid.UUID `json:"user_id" db:"user_id"`

	Amount   decimal.Decimal `json:"amount" db:"amount"`
	Currency string          `json:"currency" db:"currency"`
	Method   string          `json:"method" db:"method"`
	Status   Status          `json:"status" db:"status"`

	// TransactionID is the gateway's transaction number, known only
	// after a callback. GatewayRef is our merchant reference sent with
	// the create request; callbacks are matched on it.
	TransactionID *string `json:"transaction_id,omitempty" db:"transaction_id"`
	GatewayRef    string  `json:"gateway_ref" db:"gateway_ref"`

	GatewayResponse map[string]interface{} `json:"gateway_response,omitempty" db:"gateway_response"`
	RefundData      map[string]interface{} `json:"refund_data,omitempty" db:"refund_data"`

	InitiatedAt time.Time  `json:"initiated_at" db:"initiated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	FailedAt    *time.Time `json:"failed_at,omitempty" db:"failed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether the payment is still waiting on the gateway.
func (p *Payment) IsOpen() bool {
	return p.Status == StatusPending || p.Status == StatusProcessing
}

// WebhookLog is the audit record of one received gateway callback,
// kept whether or not it verified or processed cleanly.
type WebhookLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty" db:"payment_id"`
	OrderID   *uuid.UUID `json:"order_id,omitempty" db:"order_id"`

	Gateway string                 `json:"gateway" db:"gateway"`
	Source  string                 `json:"source" db:"source"` // "return" or "ipn"
	Body    map[string]interface{} `json:"body" db:"body"`

	IsValid         *bool   `json:"is_valid,omitempty" db:"is_valid"`
	IsProcessed     bool    `json:"is_processed" db:"is_processed"`
	ProcessingError *string `json:"processing_error,omitempty" db:"processing_error"`

	ReceivedAt time.Time `json:"received_at" db:"received_at"`
}
