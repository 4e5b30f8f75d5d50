package domain

import "time"

// ParkingEvent is one physical occupancy of a space. It is never deleted;
// closing it sets ExitAt.
type ParkingEvent struct {
	ID             int64      `json:"id"`
	SubscriberCode int64      `json:"subscriber_code"`
	SpaceNumber    int        `json:"space_number"`
	EntryAt        time.Time  `json:"entry_at"`
	ExitAt         *time.Time `json:"exit_at,omitempty"`
	Extended       bool       `json:"extended"`
	Notified       bool       `json:"notified"`
	Lot            string     `json:"lot"`
	VehicleID      string     `json:"vehicle_id"`
	ParkingCode    string     `json:"parking_code"`
	OrderNumber    *int64     `json:"order_number,omitempty"`
}

func (e *ParkingEvent) IsOpen() bool {
	return e.ExitAt == nil
}

// Status evaluates the shared lateness rule, using now for open sessions.
func (e *ParkingEvent) Status(now time.Time) SessionStatus {
	end := now
	if e.ExitAt != nil {
		end = *e.ExitAt
	}

	return StatusOf(e.EntryAt, end, e.Extended)
}

func (e *ParkingEvent) Duration(now time.Time) time.Duration {
	if e.ExitAt != nil {
		return e.ExitAt.Sub(e.EntryAt)
	}

	return now.Sub(e.EntryAt)
}
