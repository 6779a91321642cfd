package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/domains/payment/model"
)

const paymentColumns = `
	id, order_id, user_id, amount, currency, method, status,
	transaction_id, gateway_ref, gateway_response, refund_data,
	initiated_at, completed_at, failed_at, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.UserID,
		&p.Amount,
		&p.Currency,
		&p.Method,
		&p.Status,
		&p.TransactionID,
		&p.GatewayRef,
		&p.GatewayResponse,
		&p.RefundData,
		&p.InitiatedAt,
		&p.CompletedAt,
		&p.FailedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, order_id, user_id, amount, currency, method, status,
			gateway_ref, gateway_response, initiated_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW(), NOW())
		RETURNING initiated_at, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.Method,
		payment.Status,
		payment.GatewayRef,
		payment.GatewayResponse,
	).Scan(&payment.InitiatedAt, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}

	return payment, nil
}

func (r *postgresRepository) GetByGatewayRef(ctx context.Context, gatewayRef string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_ref = $1`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, gatewayRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment by gateway ref: %w", err)
	}

	return payment, nil
}

func (r *postgresRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments by order: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}

func (r *postgresRepository) CountAttempts(ctx context.Context, orderID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE order_id = $1`, orderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count payment attempts: %w", err)
	}

	return count, nil
}

func (r *postgresRepository) MarkCompletedTx(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID, transactionID string, response map[string]interface{}) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2,
			transaction_id = $3,
			gateway_response = $4,
			completed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status <> $2
	`

	result, err := tx.Exec(ctx, query, paymentID, model.StatusCompleted, transactionID, response)
	if err != nil {
		return false, fmt.Errorf("mark payment completed: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *postgresRepository) MarkFailed(ctx context.Context, paymentID uuid.UUID, response map[string]interface{}) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2,
			gateway_response = $3,
			failed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status NOT IN ($4, $5)
	`

	result, err := r.pool.Exec(ctx, query, paymentID, model.StatusFailed, response,
		model.StatusCompleted, model.StatusRefunded)
	if err != nil {
		return false, fmt.Errorf("mark payment failed: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *postgresRepository) MarkRefunded(ctx context.Context, paymentID uuid.UUID, refundData map[string]interface{}) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2,
			refund_data = $3,
			updated_at = NOW()
		WHERE id = $1 AND status = $4
	`

	result, err := r.pool.Exec(ctx, query, paymentID, model.StatusRefunded, refundData,
		model.StatusCompleted)
	if err != nil {
		return false, fmt.Errorf("mark payment refunded: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *postgresRepository) CancelStale(ctx context.Context, cutoff time.Time, batchSize int) ([]uuid.UUID, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM payments
			WHERE status IN ($2, $3) AND initiated_at < $4
			LIMIT $5
		)
		RETURNING order_id
	`

	rows, err := r.pool.Query(ctx, query,
		model.StatusCancelled,
		model.StatusPending,
		model.StatusProcessing,
		cutoff,
		batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("cancel stale payments: %w", err)
	}
	defer rows.Close()

	var orderIDs []uuid.UUID
	for rows.Next() {
		var orderID uuid.UUID
		if err := rows.Scan(&orderID); err != nil {
			return nil, fmt.Errorf("scan cancelled payment: %w", err)
		}
		orderIDs = append(orderIDs, orderID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cancelled payments: %w", err)
	}

	return orderIDs, nil
}

// =====================================================
// WEBHOOK AUDIT LOG
// =====================================================

func (r *postgresRepository) CreateWebhookLog(ctx context.Context, log *model.WebhookLog) error {
	query := `
		INSERT INTO payment_webhook_logs (
			id, payment_id, order_id, gateway, source, body,
			is_valid, is_processed, processing_error, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING received_at
	`

	err := r.pool.QueryRow(ctx, query,
		log.ID,
		log.PaymentID,
		log.OrderID,
		log.Gateway,
		log.Source,
		log.Body,
		log.IsValid,
		log.IsProcessed,
		log.ProcessingError,
	).Scan(&log.ReceivedAt)
	if err != nil {
		return fmt.Errorf("create webhook log: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateWebhookLog(ctx context.Context, log *model.WebhookLog) error {
	query := `
		UPDATE payment_webhook_logs
		SET payment_id = $2,
			order_id = $3,
			is_valid = $4,
			is_processed = $5,
			processing_error = $6
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		log.ID,
		log.PaymentID,
		log.OrderID,
		log.IsValid,
		log.IsProcessed,
		log.ProcessingError,
	)
	if err != nil {
		return fmt.Errorf("update webhook log: %w", err)
	}

	return nil
}
