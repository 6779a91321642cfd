package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/order/model"
)

// RepositoryInterface persists orders, their frozen items and the
// status history. Creation happens inside a transaction owned by the
// service so stock decrements, coupon usage and cart clearing commit
// or roll back together.
type RepositoryInterface interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	CreateOrderTx(ctx context.Context, tx pgx.Tx, order *model.Order) error
	CreateOrderItemsTx(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
	CreateStatusHistoryTx(ctx context.Context, tx pgx.Tx, history *model.OrderStatusHistory) error

	GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	GetByIDAndUser(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
	GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error)

	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Order, int, error)
	ListAll(ctx context.Context, status *model.OrderStatus, page, limit int) ([]model.Order, int, error)

	// UpdateStatusTx writes the new status plus any timestamp side
	// effects, guarded by the version column. Zero rows means a
	// concurrent writer won; callers get ErrVersionMismatch.
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, order *model.Order) error

	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus, paidAt *time.Time) error

	// MarkPaidTx flips payment_status to paid exactly once; a second
	// call affects zero rows and reports false.
	MarkPaidTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (bool, error)
}
