package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/domains/catalog/model"
	"shop-backend/pkg/cache"
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

func (r *postgresRepository) GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	query := `
		SELECT id, name, slug, price, image_url, is_active, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Price,
		&p.ImageURL,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewProductNotFoundError(productID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}

func (r *postgresRepository) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := `
		SELECT id, name, slug, price, image_url, is_active, created_at, updated_at
		FROM products
		WHERE slug = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Price,
		&p.ImageURL,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: slug=%s", model.ErrProductNotFound, slug)
		}
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}

	return &p, nil
}

func (r *postgresRepository) ListProducts(ctx context.Context, page, limit int) ([]model.Product, int, error) {
	countQuery := `SELECT COUNT(*) FROM products WHERE is_active = true`
	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `
		SELECT id, name, slug, price, image_url, is_active, created_at, updated_at
		FROM products
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Price,
			&p.ImageURL,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, totalCount, nil
}

func (r *postgresRepository) GetVariant(ctx context.Context, productID uuid.UUID, size, color string) (*model.Variant, error) {
	query := `
		SELECT id, product_id, size, color, stock, version, created_at, updated_at
		FROM product_variants
		WHERE product_id = $1 AND size = $2 AND color = $3
	`

	var v model.Variant
	err := r.pool.QueryRow(ctx, query, productID, size, color).Scan(
		&v.ID,
		&v.ProductID,
		&v.Size,
		&v.Color,
		&v.Stock,
		&v.Version,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewVariantNotFoundError(productID, size, color)
		}
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}

	return &v, nil
}

func (r *postgresRepository) GetVariantByID(ctx context.Context, variantID uuid.UUID) (*model.Variant, error) {
	query := `
		SELECT id, product_id, size, color, stock, version, created_at, updated_at
		FROM product_variants
		WHERE id = $1
	`

	var v model.Variant
	err := r.pool.QueryRow(ctx, query, variantID).Scan(
		&v.ID,
		&v.ProductID,
		&v.Size,
		&v.Color,
		&v.Stock,
		&v.Version,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%s", model.ErrVariantNotFound, variantID)
		}
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}

	return &v, nil
}

func (r *postgresRepository) ListVariants(ctx context.Context, productID uuid.UUID) ([]model.Variant, error) {
	query := `
		SELECT id, product_id, size, color, stock, version, created_at, updated_at
		FROM product_variants
		WHERE product_id = $1
		ORDER BY size, color
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var variants []model.Variant
	for rows.Next() {
		var v model.Variant
		err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.Size,
			&v.Color,
			&v.Stock,
			&v.Version,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

// DecrementStockTx does the check and the write in one statement. The
// stock >= $2 guard makes concurrent checkouts serialize on the row instead of
// racing a separate read, so stock can never go negative.
func (r *postgresRepository) DecrementStockTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, qty int) error {
	query := `
		UPDATE product_variants
		SET stock = stock - $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	result, err := tx.Exec(ctx, query, variantID, qty)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the variant is gone or stock ran out. Re-read inside the tx
		// to report the remaining quantity.
		var available int
		err := tx.QueryRow(ctx, `SELECT stock FROM product_variants WHERE id = $1`, variantID).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: id=%s", model.ErrVariantNotFound, variantID)
		}
		if err != nil {
			return fmt.Errorf("failed to read stock: %w", err)
		}
		return model.NewInsufficientStockError(variantID, qty, available)
	}

	return nil
}

func (r *postgresRepository) RestoreStockTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, qty int) error {
	query := `
		UPDATE product_variants
		SET stock = stock + $2, version = version + 1, updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, variantID, qty)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%s", model.ErrVariantNotFound, variantID)
	}

	return nil
}
