package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/cart/model"
)

type RepositoryInterface interface {
	// CreateOrGet returns the user's cart, creating it when missing.
	CreateOrGet(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)
	GetItemByID(ctx context.Context, itemID uuid.UUID) (*model.CartItem, error)
	GetItemByVariant(ctx context.Context, cartID, variantID uuid.UUID) (*model.CartItem, error)

	UpsertItem(ctx context.Context, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// RecalculateTotals recomputes subtotal and items_count from the item rows
	// so the stored aggregate can never drift from the lines.
	RecalculateTotals(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	ClearItems(ctx context.Context, cartID uuid.UUID) (int, error)
	// ClearItemsTx clears the cart inside the checkout transaction.
	ClearItemsTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}
