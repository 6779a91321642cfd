package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/catalog/model"
)

// RepositoryInterface is the persistence surface for products and variants.
// Stock mutations are transactional variants so order creation can fold them
// into its own transaction.
type RepositoryInterface interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListProducts(ctx context.Context, page, limit int) ([]model.Product, int, error)

	GetVariant(ctx context.Context, productID uuid.UUID, size, color string) (*model.Variant, error)
	GetVariantByID(ctx context.Context, variantID uuid.UUID) (*model.Variant, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]model.Variant, error)

	// DecrementStockTx conditionally decrements stock inside the caller's
	// transaction. Returns ErrInsufficientStock when stock < qty; the row is
	// never driven negative.
	DecrementStockTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, qty int) error

	// RestoreStockTx gives stock back, used when an order is cancelled.
	RestoreStockTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, qty int) error
}
