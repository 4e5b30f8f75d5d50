package domain

import "errors"

type ErrorKind int

const (
	KindTransient ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "transient"
	}
}

// Error is a user-facing failure. Its Message is safe to return to clients.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrInvalidInput         = newError(KindValidation, "invalid input")
	ErrInvalidArrivalFormat = newError(KindValidation, "arrival date or time is malformed")
	ErrInvalidArrivalTime   = newError(KindValidation, "arrival time must be on a 15-minute boundary")
	ErrArrivalInPast        = newError(KindValidation, "arrival time must be in the future")
	ErrOutsideBookingWindow = newError(KindValidation, "reservations are accepted from tomorrow up to 7 days ahead")
	ErrMissingVehicle       = newError(KindValidation, "vehicle identifier is required")
	ErrInvalidParkingCode   = newError(KindValidation, "parking code does not match your active session")

	ErrReservationConflict  = newError(KindConflict, "you already have a reservation within 4 hours of this time")
	ErrNoCapacity           = newError(KindConflict, "no parking spaces are available for the requested time")
	ErrLotFull              = newError(KindConflict, "parking lot is full")
	ErrSessionAlreadyActive = newError(KindConflict, "subscriber already has an active parking session")
	ErrAlreadyExtended      = newError(KindConflict, "parking session was already extended")
	ErrSpaceTaken           = newError(KindConflict, "parking space is already occupied")
	ErrReservationNotDue    = newError(KindConflict, "reservation is not valid at this time")
	ErrOrderNotActive       = newError(KindConflict, "reservation is no longer active")

	ErrSubscriberNotFound   = newError(KindNotFound, "subscriber not found")
	ErrOrderNotFound        = newError(KindNotFound, "reservation not found")
	ErrConfirmationNotFound = newError(KindNotFound, "confirmation code not found")
	ErrNoActiveSession      = newError(KindNotFound, "no active parking session")
	ErrParkingCodeNotFound  = newError(KindNotFound, "parking code not found")
	ErrLotNotFound          = newError(KindNotFound, "parking lot not found")
	ErrReportNotFound       = newError(KindNotFound, "report not found")

	ErrCodeSpaceExhausted = newError(KindTransient, "could not allocate a unique code")
	ErrUnavailable        = newError(KindTransient, "service temporarily unavailable, please try again later")
)

// KindOf classifies err. Anything that is not a domain error is treated as
// a transient infrastructure failure.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}

	return KindTransient
}

// PublicMessage returns the message a client may see for err. Transient
// failures collapse into a generic message.
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindTransient {
		return de.Message
	}

	return ErrUnavailable.Message
}
