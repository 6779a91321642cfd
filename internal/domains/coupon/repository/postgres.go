package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/coupon/model"
)

const couponColumns = `
	id, code, description,
	discount_type, discount_value, max_discount_value, min_order_value,
	applicable_product_ids, applicable_category_ids,
	usage_limit, used_count, per_user_limit,
	starts_at, expires_at, is_active, version,
	created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MaxDiscountValue,
		&c.MinOrderValue,
		&c.ApplicableProductIDs,
		&c.ApplicableCategoryIDs,
		&c.UsageLimit,
		&c.UsedCount,
		&c.PerUserLimit,
		&c.StartsAt,
		&c.ExpiresAt,
		&c.IsActive,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("find coupon by id: %w", err)
	}

	return coupon, nil
}

func (r *postgresRepository) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = UPPER($1)`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("find coupon by code: %w", err)
	}

	return coupon, nil
}

func (r *postgresRepository) GetUserUsageCount(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(used_count), 0)
		FROM coupon_usage
		WHERE coupon_id = $1 AND user_id = $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, couponID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("get user usage count: %w", err)
	}

	return count, nil
}

// ApplyTx is deliberately not idempotent: every call consumes one
// redemption. Callers retrying a failed checkout must start over.
func (r *postgresRepository) ApplyTx(ctx context.Context, tx pgx.Tx, couponID, userID, orderID uuid.UUID, perUserLimit int, discount decimal.Decimal) error {
	bump := `
		UPDATE coupons
		SET used_count = used_count + 1, version = version + 1, updated_at = NOW()
		WHERE id = $1
		  AND is_active = true
		  AND (usage_limit IS NULL OR used_count < usage_limit)
	`
	result, err := tx.Exec(ctx, bump, couponID)
	if err != nil {
		return fmt.Errorf("increment coupon usage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrCouponUsageLimit
	}

	// The WHERE on the upsert re-checks the per-user cap under the row
	// lock, so two concurrent checkouts cannot both take the last slot.
	upsert := `
		INSERT INTO coupon_usage (id, coupon_id, user_id, order_id, used_count, discount_amount, used_at)
		VALUES ($1, $2, $3, $4, 1, $5, NOW())
		ON CONFLICT (coupon_id, user_id) DO UPDATE SET
			used_count = coupon_usage.used_count + 1,
			order_id = EXCLUDED.order_id,
			discount_amount = EXCLUDED.discount_amount,
			used_at = NOW()
		WHERE coupon_usage.used_count < $6
	`
	result, err = tx.Exec(ctx, upsert, uuid.New(), couponID, userID, orderID, discount, perUserLimit)
	if err != nil {
		return fmt.Errorf("record coupon usage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrCouponUserLimit
	}

	return nil
}

func (r *postgresRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, description,
			discount_type, discount_value, max_discount_value, min_order_value,
			applicable_product_ids, applicable_category_ids,
			usage_limit, used_count, per_user_limit,
			starts_at, expires_at, is_active, version, created_at, updated_at)
		VALUES ($1, UPPER($2), $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12, $13, true, 1, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MaxDiscountValue,
		coupon.MinOrderValue,
		coupon.ApplicableProductIDs,
		coupon.ApplicableCategoryIDs,
		coupon.UsageLimit,
		coupon.PerUserLimit,
		coupon.StartsAt,
		coupon.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrCouponDuplicateCode
		}
		return fmt.Errorf("create coupon: %w", err)
	}

	return nil
}

func (r *postgresRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	query := `
		UPDATE coupons
		SET description = $2,
			max_discount_value = $3,
			min_order_value = $4,
			usage_limit = $5,
			per_user_limit = $6,
			expires_at = $7,
			is_active = $8,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $9
	`

	result, err := r.pool.Exec(ctx, query,
		coupon.ID,
		coupon.Description,
		coupon.MaxDiscountValue,
		coupon.MinOrderValue,
		coupon.UsageLimit,
		coupon.PerUserLimit,
		coupon.ExpiresAt,
		coupon.IsActive,
		coupon.Version,
	)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error) {
	return r.list(ctx, "", page, limit)
}

func (r *postgresRepository) ListActive(ctx context.Context, page, limit int) ([]*model.Coupon, int, error) {
	where := `WHERE is_active = true AND starts_at <= NOW() AND expires_at >= NOW()
		AND (usage_limit IS NULL OR used_count < usage_limit)`
	return r.list(ctx, where, page, limit)
}

func (r *postgresRepository) list(ctx context.Context, where string, page, limit int) ([]*model.Coupon, int, error) {
	offset := (page - 1) * limit

	var total int
	countQuery := `SELECT COUNT(*) FROM coupons ` + where
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	query := `SELECT ` + couponColumns + ` FROM coupons ` + where + `
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*model.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate coupons: %w", err)
	}

	return coupons, total, nil
}

func (r *postgresRepository) ListUsage(ctx context.Context, couponID uuid.UUID, page, limit int) ([]model.CouponUsage, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coupon_usage WHERE coupon_id = $1`, couponID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count coupon usage: %w", err)
	}

	query := `
		SELECT id, coupon_id, user_id, order_id, used_count, discount_amount, used_at
		FROM coupon_usage
		WHERE coupon_id = $1
		ORDER BY used_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, couponID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupon usage: %w", err)
	}
	defer rows.Close()

	var usages []model.CouponUsage
	for rows.Next() {
		var u model.CouponUsage
		err := rows.Scan(&u.ID, &u.CouponID, &u.UserID, &u.OrderID, &u.UsedCount, &u.DiscountAmount, &u.UsedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan coupon usage: %w", err)
		}
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate coupon usage: %w", err)
	}

	return usages, total, nil
}

func (r *postgresRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET is_active = false, version = version + 1, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate coupon: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

// Delete removes a coupon that has never been redeemed. Used coupons
// must stay for order history; deactivate those instead.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1 AND used_count = 0`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return model.ErrCouponCannotDelete
	}

	return nil
}

func (r *postgresRepository) DeactivateExpired(ctx context.Context, batchSize int) (int, error) {
	query := `
		UPDATE coupons
		SET is_active = false, version = version + 1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM coupons
			WHERE is_active = true AND expires_at < NOW()
			LIMIT $1
		)
	`

	result, err := r.pool.Exec(ctx, query, batchSize)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired coupons: %w", err)
	}

	return int(result.RowsAffected()), nil
}
