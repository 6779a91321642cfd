package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/coupon/model"
)

type RepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetUserUsageCount(ctx context.Context, couponID, userID uuid.UUID) (int, error)

	// ApplyTx consumes one redemption inside the caller's transaction.
	// Both the global counter bump and the per-user upsert are
	// conditional; hitting either cap returns a typed error and the
	// caller is expected to roll back.
	ApplyTx(ctx context.Context, tx pgx.Tx, couponID, userID, orderID uuid.UUID, perUserLimit int, discount decimal.Decimal) error

	Create(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error)
	ListActive(ctx context.Context, page, limit int) ([]*model.Coupon, int, error)
	ListUsage(ctx context.Context, couponID uuid.UUID, page, limit int) ([]model.CouponUsage, int, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeactivateExpired flips is_active off for coupons past their
	// expiry, at most batchSize rows per call. Returns rows affected.
	DeactivateExpired(ctx context.Context, batchSize int) (int, error)
}
