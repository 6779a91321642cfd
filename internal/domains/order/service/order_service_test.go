package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartModel "shop-backend/internal/domains/cart/model"
	catalogModel "shop-backend/internal/domains/catalog/model"
	couponModel "shop-backend/internal/domains/coupon/model"
	"shop-backend/internal/domains/order/model"
)

// ===== FAKE TRANSACTION =====

// fakeTx satisfies pgx.Tx so transactional repo fakes can observe
// commit/rollback without a database.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                         { return nil }

// ===== FAKE ORDER REPO =====

type mockOrderRepo struct {
	lastTx  *fakeTx
	orders  map[uuid.UUID]*model.Order
	items   map[uuid.UUID][]model.OrderItem
	history map[uuid.UUID][]model.OrderStatusHistory
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders:  make(map[uuid.UUID]*model.Order),
		items:   make(map[uuid.UUID][]model.OrderItem),
		history: make(map[uuid.UUID][]model.OrderStatusHistory),
	}
}

func (m *mockOrderRepo) BeginTx(context.Context) (pgx.Tx, error) {
	m.lastTx = &fakeTx{}
	return m.lastTx, nil
}

func (m *mockOrderRepo) CreateOrderTx(_ context.Context, _ pgx.Tx, order *model.Order) error {
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepo) CreateOrderItemsTx(_ context.Context, _ pgx.Tx, items []model.OrderItem) error {
	for _, item := range items {
		m.items[item.OrderID] = append(m.items[item.OrderID], item)
	}
	return nil
}

func (m *mockOrderRepo) CreateStatusHistoryTx(_ context.Context, _ pgx.Tx, h *model.OrderStatusHistory) error {
	m.history[h.OrderID] = append(m.history[h.OrderID], *h)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepo) GetByIDAndUser(_ context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, ok := m.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepo) GetByNumber(_ context.Context, number string) (*model.Order, error) {
	for _, order := range m.orders {
		if order.OrderNumber == number {
			return order, nil
		}
	}
	return nil, model.ErrOrderNotFound
}

func (m *mockOrderRepo) GetItems(_ context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	return m.items[orderID], nil
}

func (m *mockOrderRepo) GetStatusHistory(_ context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	return m.history[orderID], nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]model.Order, int, error) {
	var result []model.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			result = append(result, *order)
		}
	}
	return result, len(result), nil
}

func (m *mockOrderRepo) ListAll(_ context.Context, _ *model.OrderStatus, _, _ int) ([]model.Order, int, error) {
	return nil, 0, nil
}

func (m *mockOrderRepo) UpdateStatusTx(_ context.Context, _ pgx.Tx, order *model.Order) error {
	stored, ok := m.orders[order.ID]
	if !ok {
		return model.ErrOrderNotFound
	}
	*stored = *order
	return nil
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, orderID uuid.UUID, status model.PaymentStatus, paidAt *time.Time) error {
	order, ok := m.orders[orderID]
	if !ok {
		return model.ErrOrderNotFound
	}
	order.PaymentStatus = status
	order.PaidAt = paidAt
	return nil
}

func (m *mockOrderRepo) MarkPaidTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID) (bool, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return false, model.ErrOrderNotFound
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return false, nil
	}
	now := time.Now()
	order.PaymentStatus = model.PaymentStatusPaid
	order.PaidAt = &now
	return true, nil
}

// ===== FAKE CATALOG REPO =====

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

func (m *mockCatalogRepo) addProduct(name string, price int64) *catalogModel.Product {
	p := &catalogModel.Product{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(price), IsActive: true}
	m.products[p.ID] = p
	return p
}

func (m *mockCatalogRepo) addVariant(productID uuid.UUID, size, color string, stock int) *catalogModel.Variant {
	v := &catalogModel.Variant{ID: uuid.New(), ProductID: productID, Size: size, Color: color, Stock: stock}
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

func (m *mockCatalogRepo) GetProductBySlug(context.Context, string) (*catalogModel.Product, error) {
	return nil, catalogModel.ErrProductNotFound
}

func (m *mockCatalogRepo) ListProducts(context.Context, int, int) ([]catalogModel.Product, int, error) {
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

func (m *mockCatalogRepo) ListVariants(context.Context, uuid.UUID) ([]catalogModel.Variant, error) {
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

// ===== FAKE CART REPO =====

type mockCartRepo struct {
	cart    *cartModel.Cart
	items   []cartModel.CartItem
	cleared bool
}

func (m *mockCartRepo) CreateOrGet(_ context.Context, userID uuid.UUID) (*cartModel.Cart, error) {
	return m.cart, nil
}

func (m *mockCartRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*cartModel.Cart, error) {
	if m.cart == nil || m.cart.UserID != userID {
		return nil, nil
	}
	return m.cart, nil
}

func (m *mockCartRepo) GetItems(context.Context, uuid.UUID) ([]cartModel.CartItem, error) {
	return m.items, nil
}

func (m *mockCartRepo) GetItemByID(_ context.Context, itemID uuid.UUID) (*cartModel.CartItem, error) {
	return nil, cartModel.NewCartItemNotFoundError(itemID)
}

func (m *mockCartRepo) GetItemByVariant(context.Context, uuid.UUID, uuid.UUID) (*cartModel.CartItem, error) {
	return nil, nil
}

func (m *mockCartRepo) UpsertItem(context.Context, *cartModel.CartItem) error          { return nil }
func (m *mockCartRepo) UpdateItemQuantity(context.Context, uuid.UUID, int) error       { return nil }
func (m *mockCartRepo) DeleteItem(context.Context, uuid.UUID) error                    { return nil }
func (m *mockCartRepo) RecalculateTotals(context.Context, uuid.UUID) (*cartModel.Cart, error) {
	return m.cart, nil
}
func (m *mockCartRepo) ClearItems(context.Context, uuid.UUID) (int, error) {
	removed := len(m.items)
	m.items = nil
	m.cleared = true
	return removed, nil
}
func (m *mockCartRepo) ClearItemsTx(ctx context.Context, _ pgx.Tx, cartID uuid.UUID) error {
	_, err := m.ClearItems(ctx, cartID)
	return err
}

// ===== FAKE COUPON SERVICE =====

type mockCouponService struct {
	result      *couponModel.ValidationResult
	validateErr error
	applyErr    error
	applied     int
	appliedTo   uuid.UUID
}

func (m *mockCouponService) Validate(context.Context, string, uuid.UUID, decimal.Decimal, []uuid.UUID) (*couponModel.ValidationResult, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return m.result, nil
}

func (m *mockCouponService) CalculateDiscount(*couponModel.Coupon, decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

func (m *mockCouponService) ApplyTx(_ context.Context, _ pgx.Tx, _ *couponModel.Coupon, _, orderID uuid.UUID, _ decimal.Decimal) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	m.applied++
	m.appliedTo = orderID
	return nil
}

func (m *mockCouponService) ListActive(context.Context, int, int) ([]*couponModel.Coupon, int, error) {
	return nil, 0, nil
}
func (m *mockCouponService) Create(context.Context, couponModel.CreateCouponRequest) (*couponModel.Coupon, error) {
	return nil, nil
}
func (m *mockCouponService) Get(context.Context, uuid.UUID) (*couponModel.Coupon, error) {
	return nil, nil
}
func (m *mockCouponService) List(context.Context, int, int) ([]*couponModel.Coupon, int, error) {
	return nil, 0, nil
}
func (m *mockCouponService) Update(context.Context, uuid.UUID, couponModel.UpdateCouponRequest) (*couponModel.Coupon, error) {
	return nil, nil
}
func (m *mockCouponService) Deactivate(context.Context, uuid.UUID) error { return nil }
func (m *mockCouponService) Delete(context.Context, uuid.UUID) error     { return nil }
func (m *mockCouponService) ListUsage(context.Context, uuid.UUID, int, int) ([]couponModel.CouponUsage, int, error) {
	return nil, 0, nil
}
func (m *mockCouponService) DeactivateExpiredCoupons(context.Context, int) (int, error) {
	return 0, nil
}

// ===== FIXTURE =====

type orderFixture struct {
	repo    *mockOrderRepo
	catalog *mockCatalogRepo
	cart    *mockCartRepo
	coupons *mockCouponService
	svc     ServiceInterface
	userID  uuid.UUID
}

func newOrderFixture() *orderFixture {
	repo := newMockOrderRepo()
	catalog := newMockCatalogRepo()
	cart := &mockCartRepo{}
	coupons := &mockCouponService{}

	// Enqueue failures are logged and swallowed, so an unreachable
	// broker is fine for unit tests.
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: "127.0.0.1:1"})

	return &orderFixture{
		repo:    repo,
		catalog: catalog,
		cart:    cart,
		coupons: coupons,
		svc:     NewOrderService(repo, catalog, cart, coupons, client),
		userID:  uuid.New(),
	}
}

func (f *orderFixture) fillCart(items ...cartModel.CartItem) {
	f.cart.cart = &cartModel.Cart{ID: uuid.New(), UserID: f.userID}
	f.cart.items = items
}

func cartLine(product *catalogModel.Product, variant *catalogModel.Variant, qty int) cartModel.CartItem {
	return cartModel.CartItem{
		ID:          uuid.New(),
		ProductID:   product.ID,
		VariantID:   variant.ID,
		ProductName: product.Name,
		Size:        variant.Size,
		Color:       variant.Color,
		UnitPrice:   product.Price,
		Quantity:    qty,
	}
}

func checkoutRequest() cartModel.CheckoutRequest {
	return cartModel.CheckoutRequest{
		CustomerName:    "Nguyen Van A",
		CustomerPhone:   "0901234567",
		ShippingAddress: "12 Ly Thuong Kiet, Hanoi",
		PaymentMethod:   "cod",
	}
}

// ===== TESTS =====

func TestCheckoutFromCartEmptyCart(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.CheckoutFromCart(context.Background(), f.userID, checkoutRequest())
	assert.ErrorIs(t, err, model.ErrEmptyCart)

	f.fillCart() // cart exists but has no lines
	_, err = f.svc.CheckoutFromCart(context.Background(), f.userID, checkoutRequest())
	assert.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestCheckoutFromCartHappyPath(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	variant := f.catalog.addVariant(product.ID, "M", "white", 10)
	f.fillCart(cartLine(product, variant, 2))

	resp, err := f.svc.CheckoutFromCart(context.Background(), f.userID, checkoutRequest())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(700000).Equal(resp.Subtotal))
	assert.True(t, resp.DiscountAmount.IsZero())
	assert.True(t, decimal.NewFromInt(700000).Equal(resp.Total))
	assert.Equal(t, model.OrderStatusPending, resp.Status)
	assert.NotEmpty(t, resp.OrderNumber)

	require.True(t, f.repo.lastTx.committed)
	assert.Equal(t, 8, variant.Stock, "stock decremented by the purchased quantity")
	assert.True(t, f.cart.cleared, "cart cleared inside the checkout transaction")

	order, err := f.repo.GetByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)

	history := f.repo.history[resp.OrderID]
	require.Len(t, history, 1)
	assert.Equal(t, model.OrderStatusPending, history[0].ToStatus)
	assert.Nil(t, history[0].FromStatus)
}

func TestCheckoutAppliesCoupon(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	variant := f.catalog.addVariant(product.ID, "M", "white", 10)
	f.fillCart(cartLine(product, variant, 2))

	coupon := &couponModel.Coupon{ID: uuid.New(), Code: "SUMMER10"}
	f.coupons.result = &couponModel.ValidationResult{
		Coupon:   coupon,
		Discount: decimal.NewFromInt(70000),
	}

	req := checkoutRequest()
	code := "SUMMER10"
	req.CouponCode = &code

	resp, err := f.svc.CheckoutFromCart(context.Background(), f.userID, req)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(70000).Equal(resp.DiscountAmount))
	assert.True(t, decimal.NewFromInt(630000).Equal(resp.Total))
	assert.Equal(t, 1, f.coupons.applied)
	assert.Equal(t, resp.OrderID, f.coupons.appliedTo)

	order, err := f.repo.GetByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order.CouponID)
	assert.Equal(t, coupon.ID, *order.CouponID)
}

func TestCheckoutStockShortageAbortsEverything(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	inStock := f.catalog.addVariant(product.ID, "M", "white", 10)
	scarce := f.catalog.addVariant(product.ID, "L", "white", 1)
	f.fillCart(cartLine(product, inStock, 2), cartLine(product, scarce, 2))

	_, err := f.svc.CheckoutFromCart(context.Background(), f.userID, checkoutRequest())
	assert.True(t, catalogModel.IsInsufficientStockError(err))

	require.NotNil(t, f.repo.lastTx)
	assert.True(t, f.repo.lastTx.rolledBack, "first shortage aborts the transaction")
	assert.False(t, f.repo.lastTx.committed)
	assert.Empty(t, f.repo.orders, "no order row survives an aborted checkout")
	assert.False(t, f.cart.cleared)
}

func TestCheckoutCouponApplyFailureAborts(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	variant := f.catalog.addVariant(product.ID, "M", "white", 10)
	f.fillCart(cartLine(product, variant, 2))

	f.coupons.result = &couponModel.ValidationResult{
		Coupon:   &couponModel.Coupon{ID: uuid.New(), Code: "SUMMER10"},
		Discount: decimal.NewFromInt(70000),
	}
	// Validation passes but the conditional apply loses the race.
	f.coupons.applyErr = couponModel.ErrCouponUsageLimit

	req := checkoutRequest()
	code := "SUMMER10"
	req.CouponCode = &code

	_, err := f.svc.CheckoutFromCart(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, couponModel.ErrCouponUsageLimit)

	assert.True(t, f.repo.lastTx.rolledBack)
	assert.Empty(t, f.repo.orders)
}

func TestCreateOrderRejectsInvalidPaymentMethod(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	variant := f.catalog.addVariant(product.ID, "M", "white", 10)
	f.fillCart(cartLine(product, variant, 1))

	req := checkoutRequest()
	req.PaymentMethod = "paypal"

	_, err := f.svc.CheckoutFromCart(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, model.ErrInvalidPaymentMethod)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	variant := f.catalog.addVariant(product.ID, "M", "white", 10)
	f.fillCart(cartLine(product, variant, 3))

	resp, err := f.svc.CheckoutFromCart(context.Background(), f.userID, checkoutRequest())
	require.NoError(t, err)
	require.Equal(t, 7, variant.Stock)

	order, err := f.svc.CancelOrder(context.Background(), f.userID, resp.OrderID, nil)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)
	assert.Equal(t, 10, variant.Stock, "cancellation returns the reserved stock")

	history := f.repo.history[resp.OrderID]
	require.Len(t, history, 2)
	assert.Equal(t, model.OrderStatusCancelled, history[1].ToStatus)
}

func TestCancelOrderRejectsPaidOrder(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	variant := f.catalog.addVariant(product.ID, "M", "white", 10)
	f.fillCart(cartLine(product, variant, 1))

	resp, err := f.svc.CheckoutFromCart(context.Background(), f.userID, checkoutRequest())
	require.NoError(t, err)

	f.repo.orders[resp.OrderID].PaymentStatus = model.PaymentStatusPaid

	_, err = f.svc.CancelOrder(context.Background(), f.userID, resp.OrderID, nil)
	assert.ErrorIs(t, err, model.ErrOrderCannotCancel)
}

func TestCancelOrderRejectsShippedOrder(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	variant := f.catalog.addVariant(product.ID, "M", "white", 10)
	f.fillCart(cartLine(product, variant, 1))

	resp, err := f.svc.CheckoutFromCart(context.Background(), f.userID, checkoutRequest())
	require.NoError(t, err)

	f.repo.orders[resp.OrderID].Status = model.OrderStatusShipped

	_, err = f.svc.CancelOrder(context.Background(), f.userID, resp.OrderID, nil)
	assert.ErrorIs(t, err, model.ErrOrderCannotCancel)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	variant := f.catalog.addVariant(product.ID, "M", "white", 10)
	f.fillCart(cartLine(product, variant, 1))

	resp, err := f.svc.CheckoutFromCart(context.Background(), f.userID, checkoutRequest())
	require.NoError(t, err)

	adminID := uuid.New()
	_, err = f.svc.UpdateStatus(context.Background(), resp.OrderID, &adminID, model.UpdateStatusRequest{
		Status: model.OrderStatusDelivered,
	})
	assert.True(t, model.IsInvalidTransitionError(err), "pending cannot jump straight to delivered")
}

func TestUpdateStatusDeliveredSettlesCOD(t *testing.T) {
	f := newOrderFixture()
	product := f.catalog.addProduct("Oxford Shirt", 350000)
	variant := f.catalog.addVariant(product.ID, "M", "white", 10)
	f.fillCart(cartLine(product, variant, 1))

	resp, err := f.svc.CheckoutFromCart(context.Background(), f.userID, checkoutRequest())
	require.NoError(t, err)

	adminID := uuid.New()
	ctx := context.Background()
	_, err = f.svc.UpdateStatus(ctx, resp.OrderID, &adminID, model.UpdateStatusRequest{Status: model.OrderStatusProcessing})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, resp.OrderID, &adminID, model.UpdateStatusRequest{Status: model.OrderStatusShipped})
	require.NoError(t, err)

	order, err := f.svc.UpdateStatus(ctx, resp.OrderID, &adminID, model.UpdateStatusRequest{Status: model.OrderStatusDelivered})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusDelivered, order.Status)
	assert.NotNil(t, order.DeliveredAt)
	assert.Equal(t, model.PaymentStatusPaid, order.PaymentStatus, "the courier collected cash on delivery")
	assert.NotNil(t, order.PaidAt)

	history := f.repo.history[resp.OrderID]
	assert.Len(t, history, 4)
}
