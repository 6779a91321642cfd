package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/coupon/model"
)

type ServiceInterface interface {
	// Validate runs the full eligibility chain for a code without
	// consuming it. The first failing check wins.
	Validate(ctx context.Context, code string, userID uuid.UUID, orderTotal decimal.Decimal, productIDs []uuid.UUID) (*model.ValidationResult, error)

	// CalculateDiscount computes the discount a coupon yields for the
	// given total. Eligibility is the caller's problem.
	CalculateDiscount(coupon *model.Coupon, orderTotal decimal.Decimal) decimal.Decimal

	// ApplyTx consumes one redemption inside the caller's transaction.
	ApplyTx(ctx context.Context, tx pgx.Tx, coupon *model.Coupon, userID, orderID uuid.UUID, discount decimal.Decimal) error

	ListActive(ctx context.Context, page, limit int) ([]*model.Coupon, int, error)

	// Admin surface.
	Create(ctx context.Context, req model.CreateCouponRequest) (*model.Coupon, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateCouponRequest) (*model.Coupon, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListUsage(ctx context.Context, couponID uuid.UUID, page, limit int) ([]model.CouponUsage, int, error)

	// DeactivateExpiredCoupons is the worker entrypoint.
	DeactivateExpiredCoupons(ctx context.Context, batchSize int) (int, error)
}
