package service

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/catalog/model"
)

type ServiceInterface interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*model.ProductWithVariants, error)
	ListProducts(ctx context.Context, page, limit int) ([]model.Product, int, error)

	GetVariant(ctx context.Context, productID uuid.UUID, size, color string) (*model.Variant, error)
	GetVariantStock(ctx context.Context, variantID uuid.UUID) (int, error)

	// RefreshVariantCache re-primes the cached stock for a variant. Called by
	// the worker after checkout mutated stock.
	RefreshVariantCache(ctx context.Context, variantID uuid.UUID) error
}
