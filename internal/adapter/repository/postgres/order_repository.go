package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `order_number, subscriber_code, arrival_at, TRIM(confirmation_code), booked_on, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order

	err := row.Scan(
		&o.Number,
		&o.SubscriberCode,
		&o.ArrivalAt,
		&o.ConfirmationCode,
		&o.BookedOn,
		&o.Status,
	)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}

		orders = append(orders, *o)
	}

	return orders, rows.Err()
}

func (r *OrderRepository) ListBySubscriber(ctx context.Context, subscriberCode int64) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE subscriber_code = $1 ORDER BY arrival_at`

	return r.queryOrders(ctx, query, subscriberCode)
}

// GetByConfirmationCode prefers the ACTIVE holder of a code, since settled
// orders may share it.
func (r *OrderRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.Order, error) {
	query := `
	SELECT ` + orderColumns + `
	FROM orders
	WHERE confirmation_code = $1
	ORDER BY (status = 'ACTIVE') DESC, booked_on DESC
	LIMIT 1
	`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}

		return nil, err
	}

	return o, nil
}

func (r *OrderRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	query := `
	SELECT ` + orderColumns + `
	FROM orders
	WHERE status = 'ACTIVE' AND arrival_at >= $1 AND arrival_at <= $2
	ORDER BY arrival_at
	`

	return r.queryOrders(ctx, query, from, to)
}

func (r *OrderRepository) ListBookedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	query := `
	SELECT ` + orderColumns + `
	FROM orders
	WHERE booked_on >= $1 AND booked_on < $2
	ORDER BY booked_on
	`

	return r.queryOrders(ctx, query, from, to)
}

func (r *OrderRepository) ListElapsed(ctx context.Context, arrivedBefore time.Time) ([]int64, error) {
	query := `
	SELECT order_number FROM orders
	WHERE status = 'ACTIVE' AND arrival_at < $1
	LIMIT 100
	`

	rows, err := r.db.QueryContext(ctx, query, arrivedBefore)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *OrderRepository) ConfirmationCodeInUse(ctx context.Context, code string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE confirmation_code = $1 AND status = 'ACTIVE')`,
		code,
	).Scan(&exists)

	return exists, err
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
	INSERT INTO orders (subscriber_code, arrival_at, confirmation_code, booked_on, status)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING order_number
	`

	err := r.db.QueryRowContext(ctx, query,
		order.SubscriberCode, order.ArrivalAt, order.ConfirmationCode, order.BookedOn, order.Status,
	).Scan(&order.Number)
	if err != nil {
		if errors.Is(mapOrderConflict(err), domain.ErrCodeSpaceExhausted) {
			return domain.ErrCodeSpaceExhausted
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderNumber int64, from, to domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE order_number = $2 AND status = $3`,
		to, orderNumber, from,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}
