package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

const uniqueViolation = "23505"

// mapOpenConflict translates partial unique index violations on open
// sessions into domain errors.
func mapOpenConflict(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}

	switch pqErr.Constraint {
	case "uq_events_open_subscriber":
		return domain.ErrSessionAlreadyActive
	case "uq_events_open_space":
		return domain.ErrSpaceTaken
	default:
		return domain.ErrCodeSpaceExhausted
	}
}

// mapOrderConflict translates a clash on the active confirmation code index.
func mapOrderConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "uq_orders_active_code" {
		return domain.ErrCodeSpaceExhausted
	}

	return err
}
