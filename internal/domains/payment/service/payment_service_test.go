package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderModel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
)

// ===== FAKE TRANSACTION =====

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

// ===== FAKE PAYMENT REPO =====

type mockPaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
	attempts int
	lastTx   *fakeTx

	webhookLogs []*model.WebhookLog

	cancelCutoff time.Time
	cancelBatch  int
	cancelled    []uuid.UUID

	// afterLoad, when set, runs once on the stored row right after a
	// lookup returns a snapshot of it. Simulates a concurrent writer
	// landing between the service's read and its write.
	afterLoad func(p *model.Payment)
}

func (m *mockPaymentRepo) loaded(p *model.Payment) *model.Payment {
	if m.afterLoad == nil {
		return p
	}
	snapshot := *p
	hook := m.afterLoad
	m.afterLoad = nil
	hook(p)
	return &snapshot
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[uuid.UUID]*model.Payment)}
}

func (m *mockPaymentRepo) BeginTx(context.Context) (pgx.Tx, error) {
	m.lastTx = &fakeTx{}
	return m.lastTx, nil
}

func (m *mockPaymentRepo) Create(_ context.Context, payment *model.Payment) error {
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	p, ok := m.payments[paymentID]
	if !ok {
		return nil, model.ErrPaymentNotFound
	}
	return m.loaded(p), nil
}

func (m *mockPaymentRepo) GetByGatewayRef(_ context.Context, ref string) (*model.Payment, error) {
	for _, p := range m.payments {
		if p.GatewayRef == ref {
			return m.loaded(p), nil
		}
	}
	return nil, model.ErrPaymentNotFound
}

func (m *mockPaymentRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	var result []model.Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPaymentRepo) CountAttempts(context.Context, uuid.UUID) (int, error) {
	return m.attempts, nil
}

func (m *mockPaymentRepo) MarkCompletedTx(_ context.Context, _ pgx.Tx, paymentID uuid.UUID, transactionID string, response map[string]interface{}) (bool, error) {
	p, ok := m.payments[paymentID]
	if !ok {
		return false, model.ErrPaymentNotFound
	}
	if p.Status == model.StatusCompleted {
		return false, nil
	}
	now := time.Now()
	p.Status = model.StatusCompleted
	p.TransactionID = &transactionID
	p.GatewayResponse = response
	p.CompletedAt = &now
	return true, nil
}

func (m *mockPaymentRepo) MarkFailed(_ context.Context, paymentID uuid.UUID, response map[string]interface{}) (bool, error) {
	p, ok := m.payments[paymentID]
	if !ok {
		return false, model.ErrPaymentNotFound
	}
	if p.Status == model.StatusCompleted || p.Status == model.StatusRefunded {
		return false, nil
	}
	now := time.Now()
	p.Status = model.StatusFailed
	p.GatewayResponse = response
	p.FailedAt = &now
	return true, nil
}

func (m *mockPaymentRepo) MarkRefunded(_ context.Context, paymentID uuid.UUID, refundData map[string]interface{}) (bool, error) {
	p, ok := m.payments[paymentID]
	if !ok {
		return false, model.ErrPaymentNotFound
	}
	if p.Status != model.StatusCompleted {
		return false, nil
	}
	p.Status = model.StatusRefunded
	p.RefundData = refundData
	return true, nil
}

func (m *mockPaymentRepo) CancelStale(_ context.Context, cutoff time.Time, batchSize int) ([]uuid.UUID, error) {
	m.cancelCutoff = cutoff
	m.cancelBatch = batchSize
	return m.cancelled, nil
}

func (m *mockPaymentRepo) CreateWebhookLog(_ context.Context, log *model.WebhookLog) error {
	m.webhookLogs = append(m.webhookLogs, log)
	return nil
}

func (m *mockPaymentRepo) UpdateWebhookLog(context.Context, *model.WebhookLog) error {
	return nil
}

// ===== FAKE ORDER REPO =====

// stubOrderRepo covers only what the payment flow touches.
type stubOrderRepo struct {
	orders          map[uuid.UUID]*orderModel.Order
	markPaidCalls   int
	paymentStatuses []orderModel.PaymentStatus
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*orderModel.Order)}
}

func (m *stubOrderRepo) BeginTx(context.Context) (pgx.Tx, error) { return &fakeTx{}, nil }

func (m *stubOrderRepo) CreateOrderTx(context.Context, pgx.Tx, *orderModel.Order) error {
	panic("not used by payment flow")
}
func (m *stubOrderRepo) CreateOrderItemsTx(context.Context, pgx.Tx, []orderModel.OrderItem) error {
	panic("not used by payment flow")
}
func (m *stubOrderRepo) CreateStatusHistoryTx(context.Context, pgx.Tx, *orderModel.OrderStatusHistory) error {
	panic("not used by payment flow")
}

func (m *stubOrderRepo) GetByID(_ context.Context, orderID uuid.UUID) (*orderModel.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, orderModel.ErrOrderNotFound
	}
	return order, nil
}

func (m *stubOrderRepo) GetByIDAndUser(_ context.Context, orderID, userID uuid.UUID) (*orderModel.Order, error) {
	order, ok := m.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, orderModel.ErrOrderNotFound
	}
	return order, nil
}

func (m *stubOrderRepo) GetByNumber(context.Context, string) (*orderModel.Order, error) {
	return nil, orderModel.ErrOrderNotFound
}
func (m *stubOrderRepo) GetItems(context.Context, uuid.UUID) ([]orderModel.OrderItem, error) {
	return nil, nil
}
func (m *stubOrderRepo) GetStatusHistory(context.Context, uuid.UUID) ([]orderModel.OrderStatusHistory, error) {
	return nil, nil
}
func (m *stubOrderRepo) ListByUser(context.Context, uuid.UUID, int, int) ([]orderModel.Order, int, error) {
	return nil, 0, nil
}
func (m *stubOrderRepo) ListAll(context.Context, *orderModel.OrderStatus, int, int) ([]orderModel.Order, int, error) {
	return nil, 0, nil
}
func (m *stubOrderRepo) UpdateStatusTx(context.Context, pgx.Tx, *orderModel.Order) error {
	panic("not used by payment flow")
}

func (m *stubOrderRepo) UpdatePaymentStatus(_ context.Context, orderID uuid.UUID, status orderModel.PaymentStatus, paidAt *time.Time) error {
	order, ok := m.orders[orderID]
	if !ok {
		return orderModel.ErrOrderNotFound
	}
	order.PaymentStatus = status
	order.PaidAt = paidAt
	m.paymentStatuses = append(m.paymentStatuses, status)
	return nil
}

func (m *stubOrderRepo) MarkPaidTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID) (bool, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return false, orderModel.ErrOrderNotFound
	}
	if order.PaymentStatus == orderModel.PaymentStatusPaid {
		return false, nil
	}
	now := time.Now()
	order.PaymentStatus = orderModel.PaymentStatusPaid
	order.PaidAt = &now
	m.markPaidCalls++
	return true, nil
}

// ===== FAKE GATEWAY STRATEGIES =====

type stubGateway struct {
	createResult *gateway.CreateResult
	createErr    error
	verifyResult *gateway.CallbackResult
	verifyErr    error
	createCalls  int
}

func (g *stubGateway) CreatePayment(_ context.Context, req gateway.CreateRequest) (*gateway.CreateResult, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.createResult != nil {
		return g.createResult, nil
	}
	return &gateway.CreateResult{
		GatewayRef: req.PaymentID,
		PayURL:     "https://gateway.example.com/pay/" + req.PaymentID,
	}, nil
}

func (g *stubGateway) VerifyCallback(map[string]string) (*gateway.CallbackResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyResult, nil
}

type refundingGateway struct {
	stubGateway
	refundResult *gateway.RefundResult
	refundErr    error
	lastRefund   gateway.RefundRequest
}

func (g *refundingGateway) Refund(_ context.Context, req gateway.RefundRequest) (*gateway.RefundResult, error) {
	g.lastRefund = req
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	return g.refundResult, nil
}

// ===== FIXTURE =====

type paymentFixture struct {
	repo    *mockPaymentRepo
	orders  *stubOrderRepo
	vnpay   *stubGateway
	svc     ServiceInterface
	userID  uuid.UUID
	orderID uuid.UUID
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	repo := newMockPaymentRepo()
	orders := newStubOrderRepo()
	vnpay := &stubGateway{}

	registry := gateway.NewRegistry()
	registry.Register(model.MethodVNPay, vnpay)

	f := &paymentFixture{
		repo:    repo,
		orders:  orders,
		vnpay:   vnpay,
		svc:     NewService(repo, orders, registry, Config{MaxRetries: 3, Expiry: 15 * time.Minute}),
		userID:  uuid.New(),
		orderID: uuid.New(),
	}

	orders.orders[f.orderID] = &orderModel.Order{
		ID:            f.orderID,
		OrderNumber:   "ORD-20260830-1A2B3C4D",
		UserID:        f.userID,
		Total:         decimal.NewFromInt(150000),
		PaymentMethod: orderModel.PaymentMethodVNPay,
		PaymentStatus: orderModel.PaymentStatusPending,
		Status:        orderModel.OrderStatusPending,
	}

	return f
}

func (f *paymentFixture) order() *orderModel.Order {
	return f.orders.orders[f.orderID]
}

func (f *paymentFixture) createAttempt(t *testing.T) *model.Payment {
	t.Helper()

	result, err := f.svc.CreateVNPayPayment(context.Background(), f.userID, f.orderID,
		model.CreateVNPayRequest{Amount: decimal.NewFromInt(150000)}, "203.0.113.10")
	require.NoError(t, err)

	payment, err := f.repo.GetByGatewayRef(context.Background(), result.GatewayRef)
	require.NoError(t, err)
	return payment
}

func successCallback(payment *model.Payment) *gateway.CallbackResult {
	return &gateway.CallbackResult{
		GatewayRef:    payment.GatewayRef,
		TransactionID: "14226112",
		Success:       true,
		ResponseCode:  "00",
		Message:       "transaction successful",
		Amount:        payment.Amount,
		Raw:           map[string]string{"vnp_TxnRef": payment.GatewayRef},
	}
}

// ===== CREATE =====

func TestCreatePaymentRecordsPendingAttempt(t *testing.T) {
	f := newPaymentFixture(t)

	payment := f.createAttempt(t)

	assert.Equal(t, model.StatusPending, payment.Status)
	assert.Equal(t, f.orderID, payment.OrderID)
	assert.Equal(t, model.MethodVNPay, payment.Method)
	assert.True(t, decimal.NewFromInt(150000).Equal(payment.Amount))
	assert.Equal(t, payment.ID.String(), payment.GatewayRef)
}

func TestCreatePaymentRejectsPaidOrder(t *testing.T) {
	f := newPaymentFixture(t)
	f.order().PaymentStatus = orderModel.PaymentStatusPaid

	_, err := f.svc.CreateVNPayPayment(context.Background(), f.userID, f.orderID,
		model.CreateVNPayRequest{Amount: decimal.NewFromInt(150000)}, "")
	assert.ErrorIs(t, err, model.ErrOrderAlreadyPaid)
	assert.Zero(t, f.vnpay.createCalls)
}

func TestCreatePaymentRejectsCancelledOrder(t *testing.T) {
	f := newPaymentFixture(t)
	f.order().Status = orderModel.OrderStatusCancelled

	_, err := f.svc.CreateVNPayPayment(context.Background(), f.userID, f.orderID,
		model.CreateVNPayRequest{Amount: decimal.NewFromInt(150000)}, "")
	assert.ErrorIs(t, err, orderModel.ErrOrderNotFound)
}

func TestCreatePaymentRejectsForeignOrder(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateVNPayPayment(context.Background(), uuid.New(), f.orderID,
		model.CreateVNPayRequest{Amount: decimal.NewFromInt(150000)}, "")
	assert.ErrorIs(t, err, orderModel.ErrOrderNotFound)
}

func TestCreatePaymentRejectsMethodMismatch(t *testing.T) {
	f := newPaymentFixture(t)
	f.order().PaymentMethod = orderModel.PaymentMethodMomo

	_, err := f.svc.CreateVNPayPayment(context.Background(), f.userID, f.orderID,
		model.CreateVNPayRequest{Amount: decimal.NewFromInt(150000)}, "")
	assert.ErrorIs(t, err, model.ErrMethodMismatch)
}

func TestCreatePaymentRejectsAmountMismatch(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateVNPayPayment(context.Background(), f.userID, f.orderID,
		model.CreateVNPayRequest{Amount: decimal.NewFromInt(140000)}, "")
	assert.ErrorIs(t, err, model.ErrAmountMismatch)
}

func TestCreatePaymentEnforcesRetryCap(t *testing.T) {
	f := newPaymentFixture(t)
	f.repo.attempts = 3

	_, err := f.svc.CreateVNPayPayment(context.Background(), f.userID, f.orderID,
		model.CreateVNPayRequest{Amount: decimal.NewFromInt(150000)}, "")
	assert.ErrorIs(t, err, model.ErrRetryLimitExceeded)
	assert.Zero(t, f.vnpay.createCalls, "the gateway is never called past the cap")
}

func TestCreatePaymentUnregisteredMethod(t *testing.T) {
	f := newPaymentFixture(t)
	f.order().PaymentMethod = orderModel.PaymentMethodMomo

	_, err := f.svc.CreateMomoPayment(context.Background(), f.userID, f.orderID,
		model.CreateMomoRequest{Amount: decimal.NewFromInt(150000)})
	assert.ErrorIs(t, err, model.ErrUnsupportedMethod)
}

func TestCreatePaymentRejectsZeroAmount(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateVNPayPayment(context.Background(), f.userID, f.orderID,
		model.CreateVNPayRequest{Amount: decimal.Zero}, "")
	assert.Error(t, err)
}

// ===== CALLBACKS =====

func TestHandleCallbackSettlesPaymentAndOrder(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.createAttempt(t)
	f.vnpay.verifyResult = successCallback(payment)

	outcome, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay,
		map[string]string{"vnp_TxnRef": payment.GatewayRef}, "ipn")
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, outcome.Status)
	assert.False(t, outcome.AlreadyDone)

	assert.Equal(t, model.StatusCompleted, payment.Status)
	require.NotNil(t, payment.TransactionID)
	assert.Equal(t, "14226112", *payment.TransactionID)

	assert.Equal(t, orderModel.PaymentStatusPaid, f.order().PaymentStatus)
	assert.True(t, f.repo.lastTx.committed, "payment and order flip in one transaction")

	require.Len(t, f.repo.webhookLogs, 1)
	log := f.repo.webhookLogs[0]
	require.NotNil(t, log.IsValid)
	assert.True(t, *log.IsValid)
	assert.True(t, log.IsProcessed)
	require.NotNil(t, log.PaymentID)
	assert.Equal(t, payment.ID, *log.PaymentID)
}

func TestHandleCallbackReplayIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.createAttempt(t)
	f.vnpay.verifyResult = successCallback(payment)

	params := map[string]string{"vnp_TxnRef": payment.GatewayRef}
	_, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay, params, "ipn")
	require.NoError(t, err)
	require.Equal(t, 1, f.orders.markPaidCalls)

	outcome, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay, params, "ipn")
	require.NoError(t, err)

	assert.True(t, outcome.AlreadyDone)
	assert.Equal(t, model.StatusCompleted, outcome.Status)
	assert.Equal(t, 1, f.orders.markPaidCalls, "the replay never touches the order again")
}

func TestHandleCallbackBadSignatureNeverMutatesState(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.createAttempt(t)
	f.vnpay.verifyErr = model.ErrBadSignature

	_, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay,
		map[string]string{"vnp_TxnRef": payment.GatewayRef, "vnp_SecureHash": "forged"}, "ipn")
	assert.ErrorIs(t, err, model.ErrBadSignature)

	assert.Equal(t, model.StatusPending, payment.Status)
	assert.Equal(t, orderModel.PaymentStatusPending, f.order().PaymentStatus)

	// The attempt is still on record, flagged invalid.
	require.Len(t, f.repo.webhookLogs, 1)
	log := f.repo.webhookLogs[0]
	require.NotNil(t, log.IsValid)
	assert.False(t, *log.IsValid)
	assert.False(t, log.IsProcessed)
	require.NotNil(t, log.ProcessingError)
}

func TestHandleCallbackUnknownReference(t *testing.T) {
	f := newPaymentFixture(t)
	f.vnpay.verifyResult = &gateway.CallbackResult{
		GatewayRef: "no-such-ref",
		Success:    true,
	}

	_, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay,
		map[string]string{"vnp_TxnRef": "no-such-ref"}, "ipn")
	assert.ErrorIs(t, err, model.ErrPaymentNotFound)
}

func TestHandleCallbackAmountMismatch(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.createAttempt(t)

	result := successCallback(payment)
	result.Amount = decimal.NewFromInt(1)
	f.vnpay.verifyResult = result

	_, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay,
		map[string]string{"vnp_TxnRef": payment.GatewayRef}, "ipn")
	assert.ErrorIs(t, err, model.ErrAmountMismatch)

	assert.Equal(t, model.StatusPending, payment.Status)
	assert.Equal(t, orderModel.PaymentStatusPending, f.order().PaymentStatus)
}

func TestHandleCallbackFailureKeepsOrderOpen(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.createAttempt(t)

	result := successCallback(payment)
	result.Success = false
	result.ResponseCode = "24"
	result.Message = "transaction cancelled by user"
	f.vnpay.verifyResult = result

	outcome, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay,
		map[string]string{"vnp_TxnRef": payment.GatewayRef}, "return")
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, outcome.Status)
	assert.Equal(t, model.StatusFailed, payment.Status)
	assert.Equal(t, orderModel.PaymentStatusPending, f.order().PaymentStatus,
		"the customer can open another attempt")
}

func TestHandleCallbackStaleFailureAfterSettlement(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.createAttempt(t)
	f.vnpay.verifyResult = successCallback(payment)

	params := map[string]string{"vnp_TxnRef": payment.GatewayRef}
	_, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay, params, "ipn")
	require.NoError(t, err)

	failed := successCallback(payment)
	failed.Success = false
	failed.ResponseCode = "07"
	f.vnpay.verifyResult = failed

	outcome, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay, params, "return")
	require.NoError(t, err)

	assert.True(t, outcome.AlreadyDone)
	assert.Equal(t, model.StatusCompleted, outcome.Status)
	assert.Equal(t, model.StatusCompleted, payment.Status, "a late failure cannot undo a settlement")
}

func TestHandleCallbackFailureLosesRaceToSettlement(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.createAttempt(t)

	failed := successCallback(payment)
	failed.Success = false
	failed.ResponseCode = "07"
	f.vnpay.verifyResult = failed

	// A concurrent success callback settles the row between the failure
	// callback's read (which still sees pending) and its write.
	f.repo.afterLoad = func(p *model.Payment) {
		now := time.Now()
		txn := "14226112"
		p.Status = model.StatusCompleted
		p.TransactionID = &txn
		p.CompletedAt = &now
		f.order().PaymentStatus = orderModel.PaymentStatusPaid
	}

	outcome, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay,
		map[string]string{"vnp_TxnRef": payment.GatewayRef}, "return")
	require.NoError(t, err)

	assert.True(t, outcome.AlreadyDone)
	assert.Equal(t, model.StatusCompleted, outcome.Status)
	assert.Equal(t, model.StatusCompleted, payment.Status, "the guard lives in the write, not the read")
	assert.Equal(t, orderModel.PaymentStatusPaid, f.order().PaymentStatus)
}

// ===== REFUNDS =====

func refundFixture(t *testing.T) (*paymentFixture, *refundingGateway, *model.Payment) {
	t.Helper()

	f := newPaymentFixture(t)
	refunder := &refundingGateway{
		refundResult: &gateway.RefundResult{ProviderRef: "RF20260830150000"},
	}

	registry := gateway.NewRegistry()
	registry.Register(model.MethodVNPay, refunder)
	f.svc = NewService(f.repo, f.orders, registry, Config{})
	f.vnpay = &refunder.stubGateway

	payment := f.createAttempt(t)
	f.vnpay.verifyResult = successCallback(payment)
	_, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay,
		map[string]string{"vnp_TxnRef": payment.GatewayRef}, "ipn")
	require.NoError(t, err)

	return f, refunder, payment
}

func TestProcessRefundHappyPath(t *testing.T) {
	f, refunder, payment := refundFixture(t)
	adminID := uuid.New()

	refunded, err := f.svc.ProcessRefund(context.Background(), payment.ID, adminID, model.RefundRequest{
		Amount: decimal.NewFromInt(150000),
		Reason: "customer returned the goods",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusRefunded, refunded.Status)
	assert.Equal(t, "RF20260830150000", refunded.RefundData["provider_ref"])
	assert.Equal(t, adminID.String(), refunded.RefundData["requested_by"])

	assert.Equal(t, "14226112", refunder.lastRefund.TransactionID)
	assert.Equal(t, orderModel.PaymentStatusRefunded, f.order().PaymentStatus)
}

func TestProcessRefundRejectsOpenPayment(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.createAttempt(t)

	_, err := f.svc.ProcessRefund(context.Background(), payment.ID, uuid.New(), model.RefundRequest{
		Amount: decimal.NewFromInt(150000),
		Reason: "customer returned the goods",
	})
	assert.ErrorIs(t, err, model.ErrNotRefundable)
}

func TestProcessRefundRejectsExcessAmount(t *testing.T) {
	f, _, payment := refundFixture(t)

	_, err := f.svc.ProcessRefund(context.Background(), payment.ID, uuid.New(), model.RefundRequest{
		Amount: decimal.NewFromInt(200000),
		Reason: "customer returned the goods",
	})
	assert.ErrorIs(t, err, model.ErrAmountMismatch)
}

func TestProcessRefundUnsupportedGateway(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.createAttempt(t)
	f.vnpay.verifyResult = successCallback(payment)
	_, err := f.svc.HandleCallback(context.Background(), model.MethodVNPay,
		map[string]string{"vnp_TxnRef": payment.GatewayRef}, "ipn")
	require.NoError(t, err)

	// The fixture's plain stub does not implement the refund surface.
	_, err = f.svc.ProcessRefund(context.Background(), payment.ID, uuid.New(), model.RefundRequest{
		Amount: decimal.NewFromInt(150000),
		Reason: "customer returned the goods",
	})
	assert.ErrorIs(t, err, model.ErrRefundUnsupported)
}

func TestProcessRefundLosesRaceToConcurrentRefund(t *testing.T) {
	f, _, payment := refundFixture(t)

	// Another refund lands between this one's read and its write.
	f.repo.afterLoad = func(p *model.Payment) {
		p.Status = model.StatusRefunded
		p.RefundData = map[string]interface{}{"provider_ref": "RF-FIRST"}
	}

	_, err := f.svc.ProcessRefund(context.Background(), payment.ID, uuid.New(), model.RefundRequest{
		Amount: decimal.NewFromInt(150000),
		Reason: "customer returned the goods",
	})
	assert.ErrorIs(t, err, model.ErrNotRefundable)
	assert.Equal(t, "RF-FIRST", payment.RefundData["provider_ref"], "the first refund's record survives")
}

func TestProcessRefundValidatesRequest(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.ProcessRefund(context.Background(), uuid.New(), uuid.New(), model.RefundRequest{
		Amount: decimal.NewFromInt(150000),
		Reason: "no",
	})
	assert.Error(t, err, "reason below minimum length fails validation")
}

// ===== MAINTENANCE =====

func TestCancelExpiredPayments(t *testing.T) {
	f := newPaymentFixture(t)
	f.repo.cancelled = []uuid.UUID{uuid.New(), uuid.New()}

	require.NoError(t, f.svc.CancelExpiredPayments(context.Background()))

	assert.Equal(t, 100, f.repo.cancelBatch, "zero config falls back to the default batch size")
	assert.WithinDuration(t, time.Now().Add(-15*time.Minute), f.repo.cancelCutoff, 5*time.Second)
}
