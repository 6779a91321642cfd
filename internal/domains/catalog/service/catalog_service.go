package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shop-backend/internal/domains/catalog/model"
	"shop-backend/internal/domains/catalog/repository"
	"shop-backend/pkg/cache"
	"shop-backend/pkg/logger"
)

const (
	variantCacheKeyFmt = "catalog:variant:%s"
	variantCacheTTL    = 30 * time.Second
)

type catalogService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
}

func NewCatalogService(repo repository.RepositoryInterface, cache cache.Cache) ServiceInterface {
	return &catalogService{
		repo:  repo,
		cache: cache,
	}
}

func (s *catalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*model.ProductWithVariants, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	variants, err := s.repo.ListVariants(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &model.ProductWithVariants{
		Product:  *product,
		Variants: variants,
	}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, page, limit int) ([]model.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListProducts(ctx, page, limit)
}

func (s *catalogService) GetVariant(ctx context.Context, productID uuid.UUID, size, color string) (*model.Variant, error) {
	return s.repo.GetVariant(ctx, productID, size, color)
}

// GetVariantStock serves stock reads from cache with a short TTL. The TTL is
// deliberately short: this value is advisory for browsing, the conditional
// decrement at checkout is what actually enforces availability.
func (s *catalogService) GetVariantStock(ctx context.Context, variantID uuid.UUID) (int, error) {
	key := fmt.Sprintf(variantCacheKeyFmt, variantID)

	var cached model.Variant
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return cached.Stock, nil
	}

	variant, err := s.repo.GetVariantByID(ctx, variantID)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, key, variant, variantCacheTTL); err != nil {
		logger.Error("failed to cache variant", err)
	}

	return variant.Stock, nil
}

func (s *catalogService) RefreshVariantCache(ctx context.Context, variantID uuid.UUID) error {
	key := fmt.Sprintf(variantCacheKeyFmt, variantID)

	variant, err := s.repo.GetVariantByID(ctx, variantID)
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, key, variant, variantCacheTTL)
}
