package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domains/cart/model"
	catalogModel "shop-backend/internal/domains/catalog/model"
)

// ===== FAKES =====

type mockCartRepo struct {
	carts map[uuid.UUID]*model.Cart // keyed by user id
	items map[uuid.UUID]*model.CartItem
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{
		carts: make(map[uuid.UUID]*model.Cart),
		items: make(map[uuid.UUID]*model.CartItem),
	}
}

func (m *mockCartRepo) CreateOrGet(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	if cart, ok := m.carts[userID]; ok {
		return cart, nil
	}
	cart := &model.Cart{ID: uuid.New(), UserID: userID, Version: 1}
	m.carts[userID] = cart
	return cart, nil
}

func (m *mockCartRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	return m.carts[userID], nil
}

func (m *mockCartRepo) GetItems(_ context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	var items []model.CartItem
	for _, item := range m.items {
		if item.CartID == cartID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (m *mockCartRepo) GetItemByID(_ context.Context, itemID uuid.UUID) (*model.CartItem, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, model.NewCartItemNotFoundError(itemID)
	}
	return item, nil
}

func (m *mockCartRepo) GetItemByVariant(_ context.Context, cartID, variantID uuid.UUID) (*model.CartItem, error) {
	for _, item := range m.items {
		if item.CartID == cartID && item.VariantID == variantID {
			return item, nil
		}
	}
	return nil, nil
}

func (m *mockCartRepo) UpsertItem(_ context.Context, item *model.CartItem) error {
	for _, existing := range m.items {
		if existing.CartID == item.CartID && existing.VariantID == item.VariantID {
			existing.Quantity += item.Quantity
			return nil
		}
	}
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *mockCartRepo) UpdateItemQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	item, ok := m.items[itemID]
	if !ok {
		return model.NewCartItemNotFoundError(itemID)
	}
	item.Quantity = quantity
	return nil
}

func (m *mockCartRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	delete(m.items, itemID)
	return nil
}

func (m *mockCartRepo) RecalculateTotals(_ context.Context, cartID uuid.UUID) (*model.Cart, error) {
	for _, cart := range m.carts {
		if cart.ID != cartID {
			continue
		}
		subtotal := decimal.Zero
		count := 0
		for _, item := range m.items {
			if item.CartID == cartID {
				subtotal = subtotal.Add(item.LineTotal())
				count += item.Quantity
			}
		}
		cart.Subtotal = subtotal
		cart.ItemsCount = count
		cart.Version++
		return cart, nil
	}
	return nil, model.ErrCartNotFound
}

func (m *mockCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) (int, error) {
	removed := 0
	for id, item := range m.items {
		if item.CartID == cartID {
			delete(m.items, id)
			removed++
		}
	}
	for _, cart := range m.carts {
		if cart.ID == cartID {
			cart.Subtotal = decimal.Zero
			cart.ItemsCount = 0
			cart.Version++
		}
	}
	return removed, nil
}

func (m *mockCartRepo) ClearItemsTx(ctx context.Context, _ pgx.Tx, cartID uuid.UUID) error {
	_, err := m.ClearItems(ctx, cartID)
	return err
}

type mockCatalogRepo struct {
	products map[uuid.UUID]*catalogModel.Product
	variants map[uuid.UUID]*catalogModel.Variant
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		products: make(map[uuid.UUID]*catalogModel.Product),
		variants: make(map[uuid.UUID]*catalogModel.Variant),
	}
}

func (m *mockCatalogRepo) addProduct(name string, price int64, active bool) *catalogModel.Product {
	p := &catalogModel.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.NewFromInt(price),
		IsActive: active,
	}
	m.products[p.ID] = p
	return p
}

func (m *mockCatalogRepo) addVariant(productID uuid.UUID, size, color string, stock int) *catalogModel.Variant {
	v := &catalogModel.Variant{
		ID:        uuid.New(),
		ProductID: productID,
		Size:      size,
		Color:     color,
		Stock:     stock,
	}
	m.variants[v.ID] = v
	return v
}

func (m *mockCatalogRepo) GetProduct(_ context.Context, productID uuid.UUID) (*catalogModel.Product, error) {
	p, ok := m.products[productID]
	if !ok {
		return nil, catalogModel.NewProductNotFoundError(productID)
	}
	return p, nil
}

func (m *mockCatalogRepo) GetProductBySlug(_ context.Context, slug string) (*catalogModel.Product, error) {
	return nil, catalogModel.ErrProductNotFound
}

func (m *mockCatalogRepo) ListProducts(_ context.Context, _, _ int) ([]catalogModel.Product, int, error) {
	return nil, 0, nil
}

func (m *mockCatalogRepo) GetVariant(_ context.Context, productID uuid.UUID, size, color string) (*catalogModel.Variant, error) {
	for _, v := range m.variants {
		if v.ProductID == productID && v.Size == size && v.Color == color {
			return v, nil
		}
	}
	return nil, catalogModel.NewVariantNotFoundError(productID, size, color)
}

func (m *mockCatalogRepo) GetVariantByID(_ context.Context, variantID uuid.UUID) (*catalogModel.Variant, error) {
	v, ok := m.variants[variantID]
	if !ok {
		return nil, catalogModel.ErrVariantNotFound
	}
	return v, nil
}

func (m *mockCatalogRepo) ListVariants(_ context.Context, _ uuid.UUID) ([]catalogModel.Variant, error) {
	return nil, nil
}

func (m *mockCatalogRepo) DecrementStockTx(_ context.Context, _ pgx.Tx, variantID uuid.UUID, qty int) error {
	v, ok := m.variants[variantID]
	if !ok {
		return catalogModel.ErrVariantNotFound
	}
	if v.Stock < qty {
		return catalogModel.NewInsufficientStockError(variantID, qty, v.Stock)
	}
	v.Stock -= qty
	return nil
}

func (m *mockCatalogRepo) RestoreStockTx(_ context.Context, _ pgx.Tx, variantID uuid.UUID, qty int) error {
	v, ok := m.variants[variantID]
	if !ok {
		return catalogModel.ErrVariantNotFound
	}
	v.Stock += qty
	return nil
}

// ===== TESTS =====

func TestAddItemSnapshotsPriceAndRecalculates(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 350000, true)
	catalog.addVariant(product.ID, "M", "white", 10)
	svc := NewCartService(cartRepo, catalog)

	userID := uuid.New()
	result, err := svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID,
		Size:      "M",
		Color:     "white",
		Quantity:  2,
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "Oxford Shirt", result.Items[0].ProductName)
	assert.True(t, decimal.NewFromInt(350000).Equal(result.Items[0].UnitPrice))
	assert.Equal(t, 2, result.Cart.ItemsCount)
	assert.True(t, decimal.NewFromInt(700000).Equal(result.Cart.Subtotal))

	// A catalog price change never touches lines already in the cart.
	product.Price = decimal.NewFromInt(999999)
	result, err = svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(350000).Equal(result.Items[0].UnitPrice))
}

func TestAddItemMergesSameVariant(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 100000, true)
	catalog.addVariant(product.ID, "M", "white", 10)
	svc := NewCartService(cartRepo, catalog)

	userID := uuid.New()
	req := model.AddItemRequest{ProductID: product.ID, Size: "M", Color: "white", Quantity: 2}

	_, err := svc.AddItem(context.Background(), userID, req)
	require.NoError(t, err)
	result, err := svc.AddItem(context.Background(), userID, req)
	require.NoError(t, err)

	require.Len(t, result.Items, 1, "same variant merges into one line")
	assert.Equal(t, 4, result.Items[0].Quantity)
	assert.Equal(t, 4, result.Cart.ItemsCount)
}

func TestAddItemStockGuardCountsCartQuantity(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 100000, true)
	catalog.addVariant(product.ID, "M", "white", 5)
	svc := NewCartService(cartRepo, catalog)

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 3,
	})
	require.NoError(t, err)

	// 3 already in the cart plus 3 more exceeds the 5 in stock.
	_, err = svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 3,
	})
	assert.True(t, catalogModel.IsInsufficientStockError(err))

	// 2 more exactly exhausts the stock and passes.
	_, err = svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 2,
	})
	assert.NoError(t, err)
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Retired Shirt", 100000, false)
	catalog.addVariant(product.ID, "M", "white", 5)
	svc := NewCartService(cartRepo, catalog)

	_, err := svc.AddItem(context.Background(), uuid.New(), model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 1,
	})
	assert.ErrorIs(t, err, catalogModel.ErrProductInactive)
}

func TestAddItemRejectsUnknownVariant(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 100000, true)
	catalog.addVariant(product.ID, "M", "white", 5)
	svc := NewCartService(cartRepo, catalog)

	_, err := svc.AddItem(context.Background(), uuid.New(), model.AddItemRequest{
		ProductID: product.ID, Size: "XXL", Color: "purple", Quantity: 1,
	})
	assert.ErrorIs(t, err, catalogModel.ErrVariantNotFound)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockCatalogRepo())

	_, err := svc.AddItem(context.Background(), uuid.New(), model.AddItemRequest{
		ProductID: uuid.New(), Size: "M", Color: "white", Quantity: 0,
	})
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}

func TestUpdateItemQuantity(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 100000, true)
	catalog.addVariant(product.ID, "M", "white", 10)
	svc := NewCartService(cartRepo, catalog)

	userID := uuid.New()
	result, err := svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 2,
	})
	require.NoError(t, err)
	itemID := result.Items[0].ID

	result, err = svc.UpdateItemQuantity(context.Background(), userID, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(500000).Equal(result.Cart.Subtotal))
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 100000, true)
	catalog.addVariant(product.ID, "M", "white", 10)
	svc := NewCartService(cartRepo, catalog)

	userID := uuid.New()
	result, err := svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 2,
	})
	require.NoError(t, err)

	result, err = svc.UpdateItemQuantity(context.Background(), userID, result.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Cart.ItemsCount)
	assert.True(t, result.Cart.Subtotal.IsZero())
}

func TestUpdateItemQuantityStockGuard(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 100000, true)
	catalog.addVariant(product.ID, "M", "white", 3)
	svc := NewCartService(cartRepo, catalog)

	userID := uuid.New()
	result, err := svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 1,
	})
	require.NoError(t, err)

	_, err = svc.UpdateItemQuantity(context.Background(), userID, result.Items[0].ID, 4)
	assert.True(t, catalogModel.IsInsufficientStockError(err))
}

func TestUpdateItemQuantityRejectsForeignItem(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 100000, true)
	catalog.addVariant(product.ID, "M", "white", 10)
	svc := NewCartService(cartRepo, catalog)

	owner := uuid.New()
	result, err := svc.AddItem(context.Background(), owner, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 1,
	})
	require.NoError(t, err)

	intruder := uuid.New()
	_, err = svc.AddItem(context.Background(), intruder, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 1,
	})
	require.NoError(t, err)

	_, err = svc.UpdateItemQuantity(context.Background(), intruder, result.Items[0].ID, 2)
	assert.ErrorIs(t, err, model.ErrItemNotInCart)
}

func TestRemoveItem(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 100000, true)
	catalog.addVariant(product.ID, "M", "white", 10)
	catalog.addVariant(product.ID, "L", "white", 10)
	svc := NewCartService(cartRepo, catalog)

	userID := uuid.New()
	result, err := svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 1,
	})
	require.NoError(t, err)
	firstID := result.Items[0].ID

	result, err = svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID, Size: "L", Color: "white", Quantity: 2,
	})
	require.NoError(t, err)

	result, err = svc.RemoveItem(context.Background(), userID, firstID)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "L", result.Items[0].Size)
	assert.True(t, decimal.NewFromInt(200000).Equal(result.Cart.Subtotal))
}

func TestClearCart(t *testing.T) {
	cartRepo := newMockCartRepo()
	catalog := newMockCatalogRepo()
	product := catalog.addProduct("Oxford Shirt", 100000, true)
	catalog.addVariant(product.ID, "M", "white", 10)
	svc := NewCartService(cartRepo, catalog)

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, model.AddItemRequest{
		ProductID: product.ID, Size: "M", Color: "white", Quantity: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(context.Background(), userID))

	result, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.True(t, result.Cart.Subtotal.IsZero())
}

func TestClearCartWithoutCartIsNoop(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockCatalogRepo())

	assert.NoError(t, svc.ClearCart(context.Background(), uuid.New()))
}
