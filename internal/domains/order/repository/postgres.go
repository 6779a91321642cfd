package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/domains/order/model"
)

const orderColumns = `
	id, order_number, user_id,
	customer_name, customer_phone, shipping_address,
	subtotal, discount_amount, total, coupon_id,
	payment_method, payment_status, status, notes,
	paid_at, delivered_at, cancelled_at,
	version, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.ShippingAddress,
		&o.Subtotal,
		&o.DiscountAmount,
		&o.Total,
		&o.CouponID,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.Status,
		&o.Notes,
		&o.PaidAt,
		&o.DeliveredAt,
		&o.CancelledAt,
		&o.Version,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresRepository) CreateOrderTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, user_id,
			customer_name, customer_phone, shipping_address,
			subtotal, discount_amount, total, coupon_id,
			payment_method, payment_status, status, notes,
			version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, NOW(), NOW()
		)
		RETURNING version, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.CustomerName,
		order.CustomerPhone,
		order.ShippingAddress,
		order.Subtotal,
		order.DiscountAmount,
		order.Total,
		order.CouponID,
		order.PaymentMethod,
		order.PaymentStatus,
		order.Status,
		order.Notes,
	).Scan(&order.Version, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *postgresRepository) CreateOrderItemsTx(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	query := `
		INSERT INTO order_items (
			id, order_id, product_id, variant_id,
			product_name, size, color, image_url,
			unit_price, quantity, subtotal, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.ProductName,
			item.Size,
			item.Color,
			item.ImageURL,
			item.UnitPrice,
			item.Quantity,
			item.Subtotal,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
	}

	return nil
}

func (r *postgresRepository) CreateStatusHistoryTx(ctx context.Context, tx pgx.Tx, history *model.OrderStatusHistory) error {
	query := `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, changed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	_, err := tx.Exec(ctx, query,
		uuid.New(),
		history.OrderID,
		history.FromStatus,
		history.ToStatus,
		history.ChangedBy,
		history.Notes,
	)
	if err != nil {
		return fmt.Errorf("create order status history: %w", err)
	}

	return nil
}

// =====================================================
// READ
// =====================================================

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	return order, nil
}

func (r *postgresRepository) GetByIDAndUser(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by id and user: %w", err)
	}

	return order, nil
}

func (r *postgresRepository) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by number: %w", err)
	}

	return order, nil
}

func (r *postgresRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, variant_id,
			product_name, size, color, image_url,
			unit_price, quantity, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.ProductName,
			&item.Size,
			&item.Color,
			&item.ImageURL,
			&item.UnitPrice,
			&item.Quantity,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	query := `
		SELECT id, order_id, from_status, to_status, changed_by, notes, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order status history: %w", err)
	}
	defer rows.Close()

	var entries []model.OrderStatusHistory
	for rows.Next() {
		var h model.OrderStatusHistory
		err := rows.Scan(&h.ID, &h.OrderID, &h.FromStatus, &h.ToStatus, &h.ChangedBy, &h.Notes, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order status history: %w", err)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order status history: %w", err)
	}

	return entries, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Order, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list user orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *postgresRepository) ListAll(ctx context.Context, status *model.OrderStatus, page, limit int) ([]model.Order, int, error) {
	offset := (page - 1) * limit

	where := ""
	countArgs := []interface{}{}
	listArgs := []interface{}{}
	if status != nil {
		where = "WHERE status = $1"
		countArgs = append(countArgs, *status)
		listArgs = append(listArgs, *status, limit, offset)
	} else {
		listArgs = append(listArgs, limit, offset)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orders ` + where
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders ` + where + ` ORDER BY created_at DESC`
	if status != nil {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}

	rows, err := r.pool.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// =====================================================
// UPDATE
// =====================================================

func (r *postgresRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $2,
			payment_status = $3,
			notes = $4,
			paid_at = $5,
			delivered_at = $6,
			cancelled_at = $7,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $8
	`

	result, err := tx.Exec(ctx, query,
		order.ID,
		order.Status,
		order.PaymentStatus,
		order.Notes,
		order.PaidAt,
		order.DeliveredAt,
		order.CancelledAt,
		order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrVersionMismatch
	}

	order.Version++
	return nil
}

func (r *postgresRepository) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus, paidAt *time.Time) error {
	query := `
		UPDATE orders
		SET payment_status = $2,
			paid_at = COALESCE($3, paid_at),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, orderID, status, paidAt)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

func (r *postgresRepository) MarkPaidTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = $2,
			paid_at = NOW(),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND payment_status = $3
	`

	result, err := tx.Exec(ctx, query, orderID, model.PaymentStatusPaid, model.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
