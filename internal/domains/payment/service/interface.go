package service

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
)

type ServiceInterface interface {
	// CreateVNPayPayment opens a VNPay attempt for the order and returns
	// the redirect URL the customer pays at.
	CreateVNPayPayment(ctx context.Context, userID, orderID uuid.UUID, req model.CreateVNPayRequest, clientIP string) (*gateway.CreateResult, error)

	// CreateMomoPayment opens a MoMo wallet attempt and returns the
	// payUrl, deeplink and QR code from the provider.
	CreateMomoPayment(ctx context.Context, userID, orderID uuid.UUID, req model.CreateMomoRequest) (*gateway.CreateResult, error)

	// HandleCallback verifies and settles one gateway callback. Return
	// URLs and IPNs both land here; source tags the webhook log. Replays
	// of an already-settled payment come back with AlreadyDone set and
	// change nothing.
	HandleCallback(ctx context.Context, method string, params map[string]string, source string) (*model.CallbackOutcome, error)

	ListOrderPayments(ctx context.Context, userID, orderID uuid.UUID) ([]model.Payment, error)

	GetPayment(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error)

	// ProcessRefund refunds a completed payment through the provider's
	// merchant API and marks the order refunded.
	ProcessRefund(ctx context.Context, paymentID uuid.UUID, requestedBy uuid.UUID, req model.RefundRequest) (*model.Payment, error)

	// CancelExpiredPayments closes attempts the customer abandoned at
	// the gateway. Run periodically by the worker.
	CancelExpiredPayments(ctx context.Context) error
}
