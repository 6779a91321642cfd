package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/coupon/model"
	"shop-backend/internal/domains/coupon/repository"
	"shop-backend/pkg/logger"
)

type couponService struct {
	repo repository.RepositoryInterface
}

func NewCouponService(repo repository.RepositoryInterface) ServiceInterface {
	return &couponService{repo: repo}
}

// Validate checks eligibility in a fixed order so clients always see
// the same error for the same coupon state:
// not found/inactive, not started, expired, global cap, per-user cap,
// minimum order, product applicability.
func (s *couponService) Validate(ctx context.Context, code string, userID uuid.UUID, orderTotal decimal.Decimal, productIDs []uuid.UUID) (*model.ValidationResult, error) {
	coupon, err := s.repo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if !coupon.IsActive {
		return nil, model.ErrCouponNotFound
	}

	now := time.Now()
	if now.Before(coupon.StartsAt) {
		return nil, model.ErrCouponNotStarted
	}
	if now.After(coupon.ExpiresAt) {
		return nil, model.ErrCouponExpired
	}

	if coupon.IsUsageLimitReached() {
		return nil, model.ErrCouponUsageLimit
	}

	userCount, err := s.repo.GetUserUsageCount(ctx, coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if userCount >= coupon.PerUserLimit {
		return nil, model.ErrCouponUserLimit
	}

	if orderTotal.LessThan(coupon.MinOrderValue) {
		return nil, model.NewMinOrderError(coupon.MinOrderValue.String())
	}

	if !coupon.AppliesTo(productIDs) {
		return nil, model.ErrCouponNotApplicable
	}

	discount := s.CalculateDiscount(coupon, orderTotal)

	return &model.ValidationResult{
		Coupon:      coupon,
		Discount:    discount,
		FinalAmount: orderTotal.Sub(discount),
	}, nil
}

// CalculateDiscount:
//   - percentage: orderTotal × value / 100, capped at max_discount_value
//   - fixed: value, capped at the order total
//
// Amounts are rounded to whole currency units.
func (s *couponService) CalculateDiscount(coupon *model.Coupon, orderTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch coupon.DiscountType {
	case model.DiscountTypePercentage:
		discount = orderTotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscountValue != nil && discount.GreaterThan(*coupon.MaxDiscountValue) {
			discount = *coupon.MaxDiscountValue
		}

	case model.DiscountTypeFixed:
		discount = coupon.DiscountValue
		if discount.GreaterThan(orderTotal) {
			discount = orderTotal
		}

	default:
		return decimal.Zero
	}

	return discount.Round(0)
}

func (s *couponService) ApplyTx(ctx context.Context, tx pgx.Tx, coupon *model.Coupon, userID, orderID uuid.UUID, discount decimal.Decimal) error {
	return s.repo.ApplyTx(ctx, tx, coupon.ID, userID, orderID, coupon.PerUserLimit, discount)
}

func (s *couponService) ListActive(ctx context.Context, page, limit int) ([]*model.Coupon, int, error) {
	return s.repo.ListActive(ctx, page, limit)
}

// ===================================================================
// ADMIN
// ===================================================================

func (s *couponService) Create(ctx context.Context, req model.CreateCouponRequest) (*model.Coupon, error) {
	perUserLimit := req.PerUserLimit
	if perUserLimit < 1 {
		perUserLimit = 1
	}

	coupon := &model.Coupon{
		ID:                   uuid.New(),
		Code:                 strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:          req.Description,
		DiscountType:         req.DiscountType,
		DiscountValue:        req.DiscountValue,
		MaxDiscountValue:     req.MaxDiscountValue,
		MinOrderValue:        req.MinOrderValue,
		ApplicableProductIDs: req.ApplicableProductIDs,
		UsageLimit:           req.UsageLimit,
		PerUserLimit:         perUserLimit,
		StartsAt:             req.StartsAt,
		ExpiresAt:            req.ExpiresAt,
		IsActive:             true,
		Version:              1,
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	logger.Info("coupon created", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})
	return s.repo.FindByID(ctx, coupon.ID)
}

func (s *couponService) Get(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *couponService) List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error) {
	return s.repo.List(ctx, page, limit)
}

// Update applies partial changes. A usage limit can never drop below
// what has already been redeemed.
func (s *couponService) Update(ctx context.Context, id uuid.UUID, req model.UpdateCouponRequest) (*model.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		coupon.Description = req.Description
	}
	if req.MaxDiscountValue != nil {
		coupon.MaxDiscountValue = req.MaxDiscountValue
	}
	if req.MinOrderValue != nil {
		coupon.MinOrderValue = *req.MinOrderValue
	}
	if req.UsageLimit != nil {
		if *req.UsageLimit < coupon.UsedCount {
			limit := coupon.UsedCount
			coupon.UsageLimit = &limit
		} else {
			coupon.UsageLimit = req.UsageLimit
		}
	}
	if req.PerUserLimit != nil && *req.PerUserLimit >= 1 {
		coupon.PerUserLimit = *req.PerUserLimit
	}
	if req.ExpiresAt != nil {
		coupon.ExpiresAt = *req.ExpiresAt
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

func (s *couponService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *couponService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *couponService) ListUsage(ctx context.Context, couponID uuid.UUID, page, limit int) ([]model.CouponUsage, int, error) {
	return s.repo.ListUsage(ctx, couponID, page, limit)
}

func (s *couponService) DeactivateExpiredCoupons(ctx context.Context, batchSize int) (int, error) {
	count, err := s.repo.DeactivateExpired(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info("expired coupons deactivated", map[string]interface{}{
			"count": count,
		})
	}
	return count, nil
}
