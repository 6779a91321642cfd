package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/payment/model"
)

type RepositoryInterface interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error)

	// GetByGatewayRef resolves a callback's merchant reference back to
	// the payment row.
	GetByGatewayRef(ctx context.Context, gatewayRef string) (*model.Payment, error)

	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error)

	// CountAttempts counts how many payment attempts an order has
	// accumulated, for the retry cap.
	CountAttempts(ctx context.Context, orderID uuid.UUID) (int, error)

	// MarkCompletedTx flips a payment to completed exactly once inside
	// the caller's transaction; returns false when it already was.
	MarkCompletedTx(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID, transactionID string, response map[string]interface{}) (bool, error)

	// MarkFailed records the provider's failure code, guarded at the
	// write: a payment that settled or was refunded in the meantime is
	// left alone and reported back as false.
	MarkFailed(ctx context.Context, paymentID uuid.UUID, response map[string]interface{}) (bool, error)

	// MarkRefunded flips a completed payment to refunded; returns false
	// when the row is no longer in the completed state.
	MarkRefunded(ctx context.Context, paymentID uuid.UUID, refundData map[string]interface{}) (bool, error)

	// CancelStale cancels open payments initiated before the cutoff, at
	// most batchSize per call. Returns the affected order ids.
	CancelStale(ctx context.Context, cutoff time.Time, batchSize int) ([]uuid.UUID, error)

	CreateWebhookLog(ctx context.Context, log *model.WebhookLog) error
	UpdateWebhookLog(ctx context.Context, log *model.WebhookLog) error
}
