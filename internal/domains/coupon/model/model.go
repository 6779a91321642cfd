package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon is a discount code with validity window, usage caps and
// applicability rules. Codes are stored upper-cased and unique.
type Coupon struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Description *string   `json:"description,omitempty" db:"description"`

	DiscountType     DiscountType     `json:"discount_type" db:"discount_type"`
	DiscountValue    decimal.Decimal  `json:"discount_value" db:"discount_value"`
	MaxDiscountValue *decimal.Decimal `json:"max_discount_value,omitempty" db:"max_discount_value"`
	MinOrderValue    decimal.Decimal  `json:"min_order_value" db:"min_order_value"`

	ApplicableProductIDs  []uuid.UUID `json:"applicable_product_ids,omitempty" db:"applicable_product_ids"`
	ApplicableCategoryIDs []uuid.UUID `json:"applicable_category_ids,omitempty" db:"applicable_category_ids"`

	UsageLimit   *int `json:"usage_limit,omitempty" db:"usage_limit"`
	UsedCount    int  `json:"used_count" db:"used_count"`
	PerUserLimit int  `json:"per_user_limit" db:"per_user_limit"`

	StartsAt  time.Time `json:"starts_at" db:"starts_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	IsActive bool `json:"is_active" db:"is_active"`
	Version  int  `json:"version" db:"version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CouponUsage records how many times one user redeemed one coupon.
// One row per (coupon, user); used_count grows on each redemption.
type CouponUsage struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CouponID       uuid.UUID       `json:"coupon_id" db:"coupon_id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	OrderID        uuid.UUID       `json:"order_id" db:"order_id"`
	UsedCount      int             `json:"used_count" db:"used_count"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	UsedAt         time.Time       `json:"used_at" db:"used_at"`
}

// IsUsageLimitReached reports whether the global cap is exhausted.
func (c *Coupon) IsUsageLimitReached() bool {
	return c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit
}

// AppliesTo reports whether the coupon covers at least one of the given
// products. A coupon with no product restriction applies to everything.
func (c *Coupon) AppliesTo(productIDs []uuid.UUID) bool {
	if len(c.ApplicableProductIDs) == 0 {
		return true
	}
	for _, want := range c.ApplicableProductIDs {
		for _, got := range productIDs {
			if want == got {
				return true
			}
		}
	}
	return false
}
