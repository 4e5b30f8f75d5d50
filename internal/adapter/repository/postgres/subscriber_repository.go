package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

type SubscriberRepository struct {
	db *sql.DB
}

func NewSubscriberRepository(db *sql.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

const subscriberColumns = `code, first_name, last_name, email, phone, tag_id`

func scanSubscriber(row *sql.Row) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	var tag sql.NullString

	err := row.Scan(
		&sub.Code,
		&sub.FirstName,
		&sub.LastName,
		&sub.Email,
		&sub.Phone,
		&tag,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriberNotFound
		}

		return nil, err
	}

	if tag.Valid && tag.String != "" {
		sub.TagID = &tag.String
	}

	return &sub, nil
}

func (r *SubscriberRepository) FindByCode(ctx context.Context, code int64) (*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE code = $1`

	return scanSubscriber(r.db.QueryRowContext(ctx, query, code))
}

func (r *SubscriberRepository) FindByTag(ctx context.Context, tagID string) (*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE tag_id = $1`

	return scanSubscriber(r.db.QueryRowContext(ctx, query, tagID))
}

// Upsert registers a subscriber or refreshes its contact details.
func (r *SubscriberRepository) Upsert(ctx context.Context, sub *domain.Subscriber) error {
	query := `
	INSERT INTO subscribers (code, first_name, last_name, email, phone, tag_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (code) DO UPDATE
	SET first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		tag_id = EXCLUDED.tag_id
	`

	_, err := r.db.ExecContext(ctx, query, sub.Code, sub.FirstName, sub.LastName, sub.Email, sub.Phone, sub.TagID)

	return err
}
