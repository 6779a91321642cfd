package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/domains/cart/model"
	"shop-backend/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// CreateOrGet relies on the unique index on user_id; concurrent first requests
// both land on the same row.
func (r *postgresRepository) CreateOrGet(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `
		INSERT INTO carts (id, user_id, items_count, subtotal, version, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 1, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, user_id, items_count, subtotal, version, created_at, updated_at
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, uuid.New(), userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.ItemsCount,
		&cart.Subtotal,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create or get cart: %w", err)
	}

	return &cart, nil
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, user_id, items_count, subtotal, version, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.ItemsCount,
		&cart.Subtotal,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // not found is not an error here
		}
		return nil, fmt.Errorf("failed to get user cart: %w", err)
	}

	return &cart, nil
}

func (r *postgresRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, variant_id, product_name, size, color,
			image_url, unit_price, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.VariantID,
			&item.ProductName,
			&item.Size,
			&item.Color,
			&item.ImageURL,
			&item.UnitPrice,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) GetItemByID(ctx context.Context, itemID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, variant_id, product_name, size, color,
			image_url, unit_price, quantity, created_at, updated_at
		FROM cart_items
		WHERE id = $1
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, itemID).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.VariantID,
		&item.ProductName,
		&item.Size,
		&item.Color,
		&item.ImageURL,
		&item.UnitPrice,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewCartItemNotFoundError(itemID)
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	return &item, nil
}

func (r *postgresRepository) GetItemByVariant(ctx context.Context, cartID, variantID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, variant_id, product_name, size, color,
			image_url, unit_price, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1 AND variant_id = $2
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, cartID, variantID).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.VariantID,
		&item.ProductName,
		&item.Size,
		&item.Color,
		&item.ImageURL,
		&item.UnitPrice,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // line does not exist yet
		}
		return nil, fmt.Errorf("failed to check cart item: %w", err)
	}

	return &item, nil
}

// UpsertItem merges quantities when the same variant is added again. The
// snapshot price of the existing line wins; we do not reprice on merge.
func (r *postgresRepository) UpsertItem(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, variant_id, product_name,
			size, color, image_url, unit_price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (cart_id, variant_id) DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.CartID,
		item.ProductID,
		item.VariantID,
		item.ProductName,
		item.Size,
		item.Color,
		item.ImageURL,
		item.UnitPrice,
		item.Quantity,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.NewCartItemNotFoundError(itemID)
	}

	return nil
}

func (r *postgresRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

func (r *postgresRepository) RecalculateTotals(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	query := `
		UPDATE carts c
		SET subtotal = COALESCE(agg.subtotal, 0),
			items_count = COALESCE(agg.items_count, 0),
			version = c.version + 1,
			updated_at = NOW()
		FROM (
			SELECT $1::uuid AS cart_id,
				SUM(unit_price * quantity) AS subtotal,
				COALESCE(SUM(quantity), 0) AS items_count
			FROM cart_items
			WHERE cart_id = $1
		) agg
		WHERE c.id = agg.cart_id
		RETURNING c.id, c.user_id, c.items_count, c.subtotal, c.version, c.created_at, c.updated_at
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, cartID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.ItemsCount,
		&cart.Subtotal,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to recalculate cart totals: %w", err)
	}

	return &cart, nil
}

// ClearItems deletes every line and zeroes the totals in one transaction so a
// crash between the two statements cannot leave a stale subtotal.
func (r *postgresRepository) ClearItems(ctx context.Context, cartID uuid.UUID) (int, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (int, error) {
		result, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
		if err != nil {
			return 0, fmt.Errorf("failed to clear cart: %w", err)
		}

		query := `
			UPDATE carts
			SET subtotal = 0, items_count = 0, version = version + 1, updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, query, cartID); err != nil {
			return 0, fmt.Errorf("failed to reset cart totals: %w", err)
		}

		return int(result.RowsAffected()), nil
	})
}

func (r *postgresRepository) ClearItemsTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	query := `
		UPDATE carts
		SET subtotal = 0, items_count = 0, version = version + 1, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, cartID); err != nil {
		return fmt.Errorf("failed to reset cart totals: %w", err)
	}

	return nil
}
