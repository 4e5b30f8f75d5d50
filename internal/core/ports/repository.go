package ports

import (
	"context"
	"time"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

type SubscriberRepository interface {
	FindByCode(ctx context.Context, code int64) (*domain.Subscriber, error)
	FindByTag(ctx context.Context, tagID string) (*domain.Subscriber, error)
}

type OrderRepository interface {
	ListBySubscriber(ctx context.Context, subscriberCode int64) ([]domain.Order, error)
	GetByConfirmationCode(ctx context.Context, code string) (*domain.Order, error)
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	ListBookedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	ListElapsed(ctx context.Context, arrivedBefore time.Time) ([]int64, error)
	ConfirmationCodeInUse(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, order *domain.Order) error
	// UpdateStatus moves an order from one status to another and fails with
	// domain.ErrOrderNotFound when no order with that number is in from.
	UpdateStatus(ctx context.Context, orderNumber int64, from, to domain.OrderStatus) error
}

type SessionRepository interface {
	ListOpenByLot(ctx context.Context, lot string) ([]domain.ParkingEvent, error)
	ListOpenUnnotified(ctx context.Context) ([]domain.ParkingEvent, error)
	ListBySubscriber(ctx context.Context, subscriberCode int64) ([]domain.ParkingEvent, error)
	ListEnteredBetween(ctx context.Context, from, to time.Time) ([]domain.ParkingEvent, error)
	GetOpenBySubscriber(ctx context.Context, subscriberCode int64) (*domain.ParkingEvent, error)
	ParkingCodeInUse(ctx context.Context, code string) (bool, error)
	// Open persists a new session. When the session references an order,
	// that order is moved from ACTIVE to FULFILLED in the same unit of work.
	Open(ctx context.Context, event *domain.ParkingEvent) error
	Close(ctx context.Context, id int64, exitAt time.Time) error
	MarkExtended(ctx context.Context, id int64) error
	MarkNotified(ctx context.Context, id int64) error
}

type LotRepository interface {
	Capacity(ctx context.Context, lot string) (int, error)
	List(ctx context.Context) ([]domain.Lot, error)
	Upsert(ctx context.Context, lot domain.Lot) error
}

type ReportRepository interface {
	SaveMonthly(ctx context.Context, report *domain.MonthlyReport) error
	GetMonthly(ctx context.Context, month string) (*domain.MonthlyReport, error)
}
