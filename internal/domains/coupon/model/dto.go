package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================================================================
// REQUESTS
// ===================================================================

// ValidateCouponRequest checks a code against a prospective order
// without consuming it.
type ValidateCouponRequest struct {
	Code       string          `json:"code"`
	OrderTotal decimal.Decimal `json:"order_total"`
	ProductIDs []uuid.UUID     `json:"product_ids,omitempty"`
}

func (r ValidateCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 50)),
	)
}

type CreateCouponRequest struct {
	Code                 string           `json:"code"`
	Description          *string          `json:"description,omitempty"`
	DiscountType         DiscountType     `json:"discount_type"`
	DiscountValue        decimal.Decimal  `json:"discount_value"`
	MaxDiscountValue     *decimal.Decimal `json:"max_discount_value,omitempty"`
	MinOrderValue        decimal.Decimal  `json:"min_order_value"`
	ApplicableProductIDs []uuid.UUID      `json:"applicable_product_ids,omitempty"`
	UsageLimit           *int             `json:"usage_limit,omitempty"`
	PerUserLimit         int              `json:"per_user_limit"`
	StartsAt             time.Time        `json:"starts_at"`
	ExpiresAt            time.Time        `json:"expires_at"`
}

func (r CreateCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.DiscountType, validation.Required,
			validation.In(DiscountTypePercentage, DiscountTypeFixed)),
		validation.Field(&r.DiscountValue, validation.Required,
			validation.By(positiveDecimal)),
		validation.Field(&r.PerUserLimit, validation.Min(1)),
		validation.Field(&r.StartsAt, validation.Required),
		validation.Field(&r.ExpiresAt, validation.Required,
			validation.By(afterTime(r.StartsAt))),
	)
}

// UpdateCouponRequest carries only the mutable fields. Code, discount
// type and value are frozen once a coupon has been used.
type UpdateCouponRequest struct {
	Description      *string          `json:"description,omitempty"`
	MaxDiscountValue *decimal.Decimal `json:"max_discount_value,omitempty"`
	MinOrderValue    *decimal.Decimal `json:"min_order_value,omitempty"`
	UsageLimit       *int             `json:"usage_limit,omitempty"`
	PerUserLimit     *int             `json:"per_user_limit,omitempty"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
}

// ===================================================================
// RESPONSES
// ===================================================================

// ValidationResult is the outcome of a successful validation.
type ValidationResult struct {
	Coupon      *Coupon         `json:"coupon"`
	Discount    decimal.Decimal `json:"discount"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// ===================================================================
// VALIDATION HELPERS
// ===================================================================

func positiveDecimal(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok || !d.IsPositive() {
		return validation.NewError("validation_positive", "must be greater than zero")
	}
	return nil
}

func afterTime(start time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		t, ok := value.(time.Time)
		if !ok || !t.After(start) {
			return validation.NewError("validation_after", "must be after starts_at")
		}
		return nil
	}
}
