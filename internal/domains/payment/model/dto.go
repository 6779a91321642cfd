package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// =====================================================
// REQUESTS
// =====================================================

type CreateVNPayRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Language string          `json:"language,omitempty"`
}

func (r CreateVNPayRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.Required, validation.By(positiveDecimal)),
		validation.Field(&r.Language, validation.In("vn", "en")),
	)
}

type CreateMomoRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (r CreateMomoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.Required, validation.By(positiveDecimal)),
	)
}

type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

func (r RefundRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.Required, validation.By(positiveDecimal)),
		validation.Field(&r.Reason, validation.Required, validation.Length(3, 500)),
	)
}

func positiveDecimal(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok || !d.IsPositive() {
		return validation.NewError("validation_positive", "must be greater than zero")
	}
	return nil
}

// =====================================================
// CALLBACK OUTCOME
// =====================================================

// CallbackOutcome summarizes what a processed callback did, for the
// return-URL endpoints that render a result to the customer.
type CallbackOutcome struct {
	PaymentID   string `json:"payment_id"`
	OrderID     string `json:"order_id"`
	Status      Status `json:"status"`
	AlreadyDone bool   `json:"already_done"`
	Message     string `json:"message,omitempty"`
}
