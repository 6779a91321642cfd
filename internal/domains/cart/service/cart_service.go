package service

import (
	"context"

	"github.com/google/uuid"

	catalogModel "shop-backend/internal/domains/catalog/model"
	catalogRepo "shop-backend/internal/domains/catalog/repository"
	"shop-backend/internal/domains/cart/model"
	"shop-backend/internal/domains/cart/repository"
	"shop-backend/pkg/logger"
)

type cartService struct {
	repo    repository.RepositoryInterface
	catalog catalogRepo.RepositoryInterface
}

func NewCartService(
	repo repository.RepositoryInterface,
	catalog catalogRepo.RepositoryInterface,
) ServiceInterface {
	return &cartService{
		repo:    repo,
		catalog: catalog,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartWithItems, error) {
	cart, err := s.repo.CreateOrGet(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	return &model.CartWithItems{Cart: *cart, Items: items}, nil
}

// AddItem flow:
// 1. Resolve product and variant, reject inactive products.
// 2. Check requested quantity against stock, counting what is already in the cart.
// 3. Upsert the line with the price snapshot, then recompute cart totals in SQL.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req model.AddItemRequest) (*model.CartWithItems, error) {
	if req.Quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, catalogModel.ErrProductInactive
	}

	variant, err := s.catalog.GetVariant(ctx, req.ProductID, req.Size, req.Color)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.CreateOrGet(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Stock check counts the quantity already in the cart, so two adds of the
	// last unit do not both pass. The hard guarantee stays with the
	// conditional decrement at checkout.
	existing, err := s.repo.GetItemByVariant(ctx, cart.ID, variant.ID)
	if err != nil {
		return nil, err
	}
	inCart := 0
	if existing != nil {
		inCart = existing.Quantity
	}

	if inCart+req.Quantity > variant.Stock {
		return nil, catalogModel.NewInsufficientStockError(variant.ID, inCart+req.Quantity, variant.Stock)
	}

	item := &model.CartItem{
		ID:          uuid.New(),
		CartID:      cart.ID,
		ProductID:   product.ID,
		VariantID:   variant.ID,
		ProductName: product.Name,
		Size:        variant.Size,
		Color:       variant.Color,
		ImageURL:    product.ImageURL,
		UnitPrice:   product.Price,
		Quantity:    req.Quantity,
	}
	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return nil, err
	}

	return s.refresh(ctx, cart.ID)
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartWithItems, error) {
	if quantity < 0 {
		return nil, model.ErrInvalidQuantity
	}

	cart, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, model.ErrItemNotInCart
	}

	if quantity == 0 {
		if err := s.repo.DeleteItem(ctx, itemID); err != nil {
			return nil, err
		}
		return s.refresh(ctx, cart.ID)
	}

	variant, err := s.catalog.GetVariantByID(ctx, item.VariantID)
	if err != nil {
		return nil, err
	}
	if quantity > variant.Stock {
		return nil, catalogModel.NewInsufficientStockError(variant.ID, quantity, variant.Stock)
	}

	if err := s.repo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		return nil, err
	}

	return s.refresh(ctx, cart.ID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartWithItems, error) {
	cart, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, model.ErrItemNotInCart
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return nil, err
	}

	return s.refresh(ctx, cart.ID)
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil // nothing to clear
	}

	removed, err := s.repo.ClearItems(ctx, cart.ID)
	if err != nil {
		return err
	}

	logger.Info("cart cleared", map[string]interface{}{
		"cart_id": cart.ID,
		"removed": removed,
	})
	return nil
}

func (s *cartService) refresh(ctx context.Context, cartID uuid.UUID) (*model.CartWithItems, error) {
	cart, err := s.repo.RecalculateTotals(ctx, cartID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	return &model.CartWithItems{Cart: *cart, Items: items}, nil
}
