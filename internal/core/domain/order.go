package domain

import "time"

type OrderStatus string

const (
	OrderActive    OrderStatus = "ACTIVE"
	OrderFulfilled OrderStatus = "FULFILLED"
	OrderInactive  OrderStatus = "INACTIVE"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a reservation of a parking slot for a future arrival.
type Order struct {
	Number           int64       `json:"order_number"`
	SubscriberCode   int64       `json:"subscriber_code"`
	ArrivalAt        time.Time   `json:"arrival_at"`
	ConfirmationCode string      `json:"confirmation_code"`
	BookedOn         time.Time   `json:"booked_on"`
	Status           OrderStatus `json:"status"`
}

func (o *Order) IsActive() bool {
	return o.Status == OrderActive
}

// EffectiveStatus reports INACTIVE for an ACTIVE order whose arrival window
// has already elapsed, even if the sweep has not persisted it yet.
func (o *Order) EffectiveStatus(now time.Time) OrderStatus {
	if o.Status == OrderActive && WindowElapsed(o.ArrivalAt, now) {
		return OrderInactive
	}

	return o.Status
}
