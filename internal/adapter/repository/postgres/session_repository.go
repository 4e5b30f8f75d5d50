package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, subscriber_code, space_number, entry_at, exit_at, extended, notified, lot, vehicle_id, TRIM(parking_code), order_number`

func scanSession(row rowScanner) (*domain.ParkingEvent, error) {
	var e domain.ParkingEvent
	var exitAt sql.NullTime
	var orderNumber sql.NullInt64

	err := row.Scan(
		&e.ID,
		&e.SubscriberCode,
		&e.SpaceNumber,
		&e.EntryAt,
		&exitAt,
		&e.Extended,
		&e.Notified,
		&e.Lot,
		&e.VehicleID,
		&e.ParkingCode,
		&orderNumber,
	)
	if err != nil {
		return nil, err
	}

	if exitAt.Valid {
		e.ExitAt = &exitAt.Time
	}

	if orderNumber.Valid {
		e.OrderNumber = &orderNumber.Int64
	}

	return &e, nil
}

func (r *SessionRepository) querySessions(ctx context.Context, query string, args ...any) ([]domain.ParkingEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var events []domain.ParkingEvent
	for rows.Next() {
		e, err := scanSession(rows)
		if err != nil {
			return nil, err
		}

		events = append(events, *e)
	}

	return events, rows.Err()
}

func (r *SessionRepository) ListOpenByLot(ctx context.Context, lot string) ([]domain.ParkingEvent, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_events WHERE lot = $1 AND exit_at IS NULL ORDER BY space_number`

	return r.querySessions(ctx, query, lot)
}

func (r *SessionRepository) ListOpenUnnotified(ctx context.Context) ([]domain.ParkingEvent, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_events WHERE exit_at IS NULL AND notified = FALSE ORDER BY entry_at`

	return r.querySessions(ctx, query)
}

func (r *SessionRepository) ListBySubscriber(ctx context.Context, subscriberCode int64) ([]domain.ParkingEvent, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_events WHERE subscriber_code = $1 ORDER BY entry_at DESC`

	return r.querySessions(ctx, query, subscriberCode)
}

func (r *SessionRepository) ListEnteredBetween(ctx context.Context, from, to time.Time) ([]domain.ParkingEvent, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_events WHERE entry_at >= $1 AND entry_at < $2 ORDER BY entry_at`

	return r.querySessions(ctx, query, from, to)
}

func (r *SessionRepository) GetOpenBySubscriber(ctx context.Context, subscriberCode int64) (*domain.ParkingEvent, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_events WHERE subscriber_code = $1 AND exit_at IS NULL`

	e, err := scanSession(r.db.QueryRowContext(ctx, query, subscriberCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoActiveSession
		}

		return nil, err
	}

	return e, nil
}

func (r *SessionRepository) ParkingCodeInUse(ctx context.Context, code string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parking_events WHERE parking_code = $1 AND exit_at IS NULL)`,
		code,
	).Scan(&exists)

	return exists, err
}

// Open inserts the session and, for reservation entries, fulfils the order
// in the same transaction.
func (r *SessionRepository) Open(ctx context.Context, event *domain.ParkingEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if event.OrderNumber != nil {
		result, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = 'FULFILLED' WHERE order_number = $1 AND status = 'ACTIVE'`,
			*event.OrderNumber,
		)
		if err != nil {
			return fmt.Errorf("failed to fulfil order %d: %w", *event.OrderNumber, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if rowsAffected == 0 {
			return domain.ErrOrderNotActive
		}
	}

	query := `
	INSERT INTO parking_events (subscriber_code, space_number, entry_at, lot, vehicle_id, parking_code, order_number)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id
	`

	err = tx.QueryRowContext(ctx, query,
		event.SubscriberCode, event.SpaceNumber, event.EntryAt, event.Lot, event.VehicleID, event.ParkingCode, event.OrderNumber,
	).Scan(&event.ID)
	if err != nil {
		return mapOpenConflict(err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *SessionRepository) updateOpen(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNoActiveSession
	}

	return nil
}

func (r *SessionRepository) Close(ctx context.Context, id int64, exitAt time.Time) error {
	return r.updateOpen(ctx, `UPDATE parking_events SET exit_at = $1 WHERE id = $2 AND exit_at IS NULL`, exitAt, id)
}

// MarkExtended only flips a session that was not extended yet, so a racing
// second extension sees ErrAlreadyExtended. A session closed in the meantime
// reports ErrNoActiveSession instead.
func (r *SessionRepository) MarkExtended(ctx context.Context, id int64) error {
	err := r.updateOpen(ctx, `UPDATE parking_events SET extended = TRUE WHERE id = $1 AND exit_at IS NULL AND extended = FALSE`, id)
	if !errors.Is(err, domain.ErrNoActiveSession) {
		return err
	}

	var open bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parking_events WHERE id = $1 AND exit_at IS NULL)`,
		id,
	).Scan(&open)
	if err != nil {
		return fmt.Errorf("recheck session %d: %w", id, err)
	}

	if open {
		return domain.ErrAlreadyExtended
	}

	return domain.ErrNoActiveSession
}

func (r *SessionRepository) MarkNotified(ctx context.Context, id int64) error {
	return r.updateOpen(ctx, `UPDATE parking_events SET notified = TRUE WHERE id = $1 AND exit_at IS NULL`, id)
}
