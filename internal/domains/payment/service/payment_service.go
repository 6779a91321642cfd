package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderModel "shop-backend/internal/domains/order/model"
	orderRepo "shop-backend/internal/domains/order/repository"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
	"shop-backend/internal/domains/payment/repository"
	"shop-backend/pkg/logger"
)

// Config tunes attempt limits and expiry for the service.
type Config struct {
	// MaxRetries caps how many attempts one order may open.
	MaxRetries int

	// Expiry is how long an open attempt may sit before the cleanup job
	// cancels it. Matches the expire time stamped into gateway requests.
	Expiry time.Duration

	// CancelBatchSize bounds one cleanup sweep.
	CancelBatchSize int
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		Expiry:          30 * time.Minute,
		CancelBatchSize: 100,
	}
}

type paymentService struct {
	repo     repository.RepositoryInterface
	orders   orderRepo.RepositoryInterface
	gateways *gateway.Registry
	config   Config
	now      func() time.Time
}

func NewService(repo repository.RepositoryInterface, orders orderRepo.RepositoryInterface, gateways *gateway.Registry, config Config) ServiceInterface {
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultConfig().MaxRetries
	}
	if config.Expiry <= 0 {
		config.Expiry = DefaultConfig().Expiry
	}
	if config.CancelBatchSize <= 0 {
		config.CancelBatchSize = DefaultConfig().CancelBatchSize
	}

	return &paymentService{
		repo:     repo,
		orders:   orders,
		gateways: gateways,
		config:   config,
		now:      time.Now,
	}
}

// =====================================================
// CREATE
// =====================================================

func (s *paymentService) CreateVNPayPayment(ctx context.Context, userID, orderID uuid.UUID, req model.CreateVNPayRequest, clientIP string) (*gateway.CreateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.create(ctx, userID, orderID, model.MethodVNPay, req.Amount, clientIP, req.Language)
}

func (s *paymentService) CreateMomoPayment(ctx context.Context, userID, orderID uuid.UUID, req model.CreateMomoRequest) (*gateway.CreateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.create(ctx, userID, orderID, model.MethodMomo, req.Amount, "", "")
}

// create runs the shared attempt flow: check the order, check the
// retry budget, call the provider, then record the pending row keyed
// by the provider's reference.
func (s *paymentService) create(ctx context.Context, userID, orderID uuid.UUID, method string, amount decimal.Decimal, clientIP, locale string) (*gateway.CreateResult, error) {
	order, err := s.orders.GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == orderModel.PaymentStatusPaid {
		return nil, model.ErrOrderAlreadyPaid
	}
	if order.Status == orderModel.OrderStatusCancelled {
		return nil, orderModel.ErrOrderNotFound
	}
	if order.PaymentMethod.String() != method {
		return nil, model.ErrMethodMismatch
	}

	// The client echoes the amount it showed the customer; it must
	// match the ledger, which is what we actually charge.
	if !amount.Equal(order.Total) {
		return nil, model.ErrAmountMismatch
	}

	attempts, err := s.repo.CountAttempts(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if attempts >= s.config.MaxRetries {
		return nil, model.ErrRetryLimitExceeded
	}

	strategy, err := s.gateways.Get(method)
	if err != nil {
		return nil, err
	}

	paymentID := uuid.New()
	result, err := strategy.CreatePayment(ctx, gateway.CreateRequest{
		PaymentID:   paymentID.String(),
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		OrderInfo:   "Payment for order " + order.OrderNumber,
		ClientIP:    clientIP,
		Locale:      locale,
	})
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		ID:              paymentID,
		OrderID:         order.ID,
		UserID:          userID,
		Amount:          order.Total,
		Currency:        model.DefaultCurrency,
		Method:          method,
		Status:          model.StatusPending,
		GatewayRef:      result.GatewayRef,
		GatewayResponse: result.Raw,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	logger.Info("payment attempt created", map[string]interface{}{
		"payment_id":  payment.ID,
		"order_id":    order.ID,
		"method":      method,
		"amount":      order.Total.String(),
		"gateway_ref": result.GatewayRef,
		"attempt":     attempts + 1,
	})

	return result, nil
}

// =====================================================
// CALLBACKS
// =====================================================

func (s *paymentService) HandleCallback(ctx context.Context, method string, params map[string]string, source string) (*model.CallbackOutcome, error) {
	webhookLog := s.openWebhookLog(ctx, method, source, params)

	strategy, err := s.gateways.Get(method)
	if err != nil {
		s.closeWebhookLog(ctx, webhookLog, false, err)
		return nil, err
	}

	result, err := strategy.VerifyCallback(params)
	if err != nil {
		// A bad signature never touches payment or order state.
		s.closeWebhookLog(ctx, webhookLog, false, err)
		return nil, err
	}

	payment, err := s.repo.GetByGatewayRef(ctx, result.GatewayRef)
	if err != nil {
		s.closeWebhookLog(ctx, webhookLog, true, err)
		return nil, err
	}

	webhookLog.PaymentID = &payment.ID
	webhookLog.OrderID = &payment.OrderID

	// Gateways echo the amount; a mismatch means the callback is not
	// about the attempt we opened.
	if !result.Amount.IsZero() && !result.Amount.Equal(payment.Amount) {
		s.closeWebhookLog(ctx, webhookLog, true, model.ErrAmountMismatch)
		return nil, model.ErrAmountMismatch
	}

	var outcome *model.CallbackOutcome
	if result.Success {
		outcome, err = s.settle(ctx, payment, result)
	} else {
		outcome, err = s.fail(ctx, payment, result)
	}
	if err != nil {
		s.closeWebhookLog(ctx, webhookLog, true, err)
		return nil, err
	}

	s.closeWebhookLog(ctx, webhookLog, true, nil)
	return outcome, nil
}

// settle flips the payment to completed and the order to paid in one
// transaction. A replayed success callback affects zero rows and comes
// back as AlreadyDone.
func (s *paymentService) settle(ctx context.Context, payment *model.Payment, result *gateway.CallbackResult) (*model.CallbackOutcome, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	flipped, err := s.repo.MarkCompletedTx(ctx, tx, payment.ID, result.TransactionID, rawToResponse(result.Raw))
	if err != nil {
		return nil, err
	}
	if !flipped {
		return &model.CallbackOutcome{
			PaymentID:   payment.ID.String(),
			OrderID:     payment.OrderID.String(),
			Status:      model.StatusCompleted,
			AlreadyDone: true,
			Message:     result.Message,
		}, nil
	}

	if _, err := s.orders.MarkPaidTx(ctx, tx, payment.OrderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info("payment completed", map[string]interface{}{
		"payment_id":     payment.ID,
		"order_id":       payment.OrderID,
		"method":         payment.Method,
		"transaction_id": result.TransactionID,
	})

	return &model.CallbackOutcome{
		PaymentID: payment.ID.String(),
		OrderID:   payment.OrderID.String(),
		Status:    model.StatusCompleted,
		Message:   result.Message,
	}, nil
}

// fail records the provider's failure code. The order stays pending so
// the customer can open another attempt. The write itself is guarded:
// a success callback settling the row after our read wins, and the
// stale failure comes back as AlreadyDone.
func (s *paymentService) fail(ctx context.Context, payment *model.Payment, result *gateway.CallbackResult) (*model.CallbackOutcome, error) {
	flipped, err := s.repo.MarkFailed(ctx, payment.ID, rawToResponse(result.Raw))
	if err != nil {
		return nil, err
	}
	if !flipped {
		return &model.CallbackOutcome{
			PaymentID:   payment.ID.String(),
			OrderID:     payment.OrderID.String(),
			Status:      model.StatusCompleted,
			AlreadyDone: true,
			Message:     result.Message,
		}, nil
	}

	logger.Warn("payment failed at gateway", map[string]interface{}{
		"payment_id":    payment.ID,
		"order_id":      payment.OrderID,
		"method":        payment.Method,
		"response_code": result.ResponseCode,
		"message":       result.Message,
	})

	return &model.CallbackOutcome{
		PaymentID: payment.ID.String(),
		OrderID:   payment.OrderID.String(),
		Status:    model.StatusFailed,
		Message:   result.Message,
	}, nil
}

// =====================================================
// QUERIES
// =====================================================

func (s *paymentService) ListOrderPayments(ctx context.Context, userID, orderID uuid.UUID) ([]model.Payment, error) {
	if _, err := s.orders.GetByIDAndUser(ctx, orderID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

// =====================================================
// REFUNDS
// =====================================================

func (s *paymentService) ProcessRefund(ctx context.Context, paymentID uuid.UUID, requestedBy uuid.UUID, req model.RefundRequest) (*model.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != model.StatusCompleted {
		return nil, model.ErrNotRefundable
	}
	if req.Amount.GreaterThan(payment.Amount) {
		return nil, model.ErrAmountMismatch
	}
	if payment.TransactionID == nil || *payment.TransactionID == "" {
		return nil, model.ErrNotRefundable
	}

	strategy, err := s.gateways.Get(payment.Method)
	if err != nil {
		return nil, err
	}
	refunder, ok := strategy.(gateway.Refunder)
	if !ok {
		return nil, model.ErrRefundUnsupported
	}

	result, err := refunder.Refund(ctx, gateway.RefundRequest{
		TransactionID:   *payment.TransactionID,
		TransactionDate: s.transactionDate(payment),
		Amount:          req.Amount,
		Reason:          req.Reason,
		RequestedBy:     requestedBy.String(),
	})
	if err != nil {
		return nil, err
	}

	refundData := map[string]interface{}{
		"provider_ref": result.ProviderRef,
		"amount":       req.Amount.String(),
		"reason":       req.Reason,
		"requested_by": requestedBy.String(),
		"refunded_at":  s.now().UTC().Format(time.RFC3339),
		"raw":          result.Raw,
	}
	flipped, err := s.repo.MarkRefunded(ctx, payment.ID, refundData)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// The row left the completed state between our read and this
		// write, most likely a concurrent refund of the same payment.
		return nil, model.ErrNotRefundable
	}

	if err := s.orders.UpdatePaymentStatus(ctx, payment.OrderID, orderModel.PaymentStatusRefunded, nil); err != nil {
		return nil, err
	}

	logger.Info("payment refunded", map[string]interface{}{
		"payment_id":   payment.ID,
		"order_id":     payment.OrderID,
		"amount":       req.Amount.String(),
		"provider_ref": result.ProviderRef,
	})

	return s.repo.GetByID(ctx, payment.ID)
}

// transactionDate recovers the provider-side pay timestamp the refund
// API requires. VNPay sends it in the success callback; fall back to
// our completion time.
func (s *paymentService) transactionDate(payment *model.Payment) string {
	if raw, ok := payment.GatewayResponse["vnp_PayDate"].(string); ok && raw != "" {
		return raw
	}
	if payment.CompletedAt != nil {
		return payment.CompletedAt.UTC().Format("20060102150405")
	}
	return ""
}

// =====================================================
// MAINTENANCE
// =====================================================

func (s *paymentService) CancelExpiredPayments(ctx context.Context) error {
	cutoff := s.now().Add(-s.config.Expiry)

	orderIDs, err := s.repo.CancelStale(ctx, cutoff, s.config.CancelBatchSize)
	if err != nil {
		return fmt.Errorf("cancel expired payments: %w", err)
	}

	if len(orderIDs) > 0 {
		logger.Info("expired payment attempts cancelled", map[string]interface{}{
			"count":  len(orderIDs),
			"cutoff": cutoff,
		})
	}

	return nil
}

// =====================================================
// HELPERS
// =====================================================

// openWebhookLog records the callback before anything can reject it.
// Logging failures are not allowed to block settlement.
func (s *paymentService) openWebhookLog(ctx context.Context, method, source string, params map[string]string) *model.WebhookLog {
	body := make(map[string]interface{}, len(params))
	for k, v := range params {
		body[k] = v
	}

	webhookLog := &model.WebhookLog{
		ID:      uuid.New(),
		Gateway: method,
		Source:  source,
		Body:    body,
	}
	if err := s.repo.CreateWebhookLog(ctx, webhookLog); err != nil {
		logger.Error("failed to record webhook log", err, map[string]interface{}{
			"gateway": method,
			"source":  source,
		})
	}

	return webhookLog
}

func (s *paymentService) closeWebhookLog(ctx context.Context, webhookLog *model.WebhookLog, valid bool, processingErr error) {
	webhookLog.IsValid = &valid
	webhookLog.IsProcessed = processingErr == nil
	if processingErr != nil {
		msg := processingErr.Error()
		webhookLog.ProcessingError = &msg
	}

	if err := s.repo.UpdateWebhookLog(ctx, webhookLog); err != nil {
		logger.Error("failed to update webhook log", err, map[string]interface{}{
			"webhook_id": webhookLog.ID,
			"gateway":    webhookLog.Gateway,
		})
	}
}

func rawToResponse(raw map[string]string) map[string]interface{} {
	response := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		response[k] = v
	}
	return response
}
