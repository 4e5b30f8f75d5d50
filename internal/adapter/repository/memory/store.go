// Package memory keeps all parking state in process. It enforces the same
// uniqueness rules as the Postgres schema and is used for local runs and
// tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

type Store struct {
	mu          sync.RWMutex
	subscribers map[int64]domain.Subscriber
	lots        map[string]int
	orders      map[int64]domain.Order
	events      map[int64]domain.ParkingEvent
	reports     map[string]domain.MonthlyReport
	nextOrder   int64
	nextEvent   int64
}

func NewStore(lots ...domain.Lot) *Store {
	s := &Store{
		subscribers: make(map[int64]domain.Subscriber),
		lots:        make(map[string]int),
		orders:      make(map[int64]domain.Order),
		events:      make(map[int64]domain.ParkingEvent),
		reports:     make(map[string]domain.MonthlyReport),
	}

	for _, lot := range lots {
		s.lots[lot.Name] = lot.Capacity
	}

	return s
}

func (s *Store) AddSubscriber(sub domain.Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers[sub.Code] = sub
}

func (s *Store) Subscribers() *SubscriberRepository { return &SubscriberRepository{s} }
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s} }
func (s *Store) Sessions() *SessionRepository { return &SessionRepository{s} }
func (s *Store) Lots() *LotRepository { return &LotRepository{s} }
func (s *Store) Reports() *ReportRepository { return &ReportRepository{s} }

type SubscriberRepository struct{ s *Store }

func (r *SubscriberRepository) FindByCode(_ context.Context, code int64) (*domain.Subscriber, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sub, ok := r.s.subscribers[code]
	if !ok {
		return nil, domain.ErrSubscriberNotFound
	}

	return &sub, nil
}

func (r *SubscriberRepository) FindByTag(_ context.Context, tagID string) (*domain.Subscriber, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, sub := range r.s.subscribers {
		if sub.TagID != nil && *sub.TagID == tagID {
			return &sub, nil
		}
	}

	return nil, domain.ErrSubscriberNotFound
}

type LotRepository struct{ s *Store }

func (r *LotRepository) Capacity(_ context.Context, lot string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	capacity, ok := r.s.lots[lot]
	if !ok {
		return 0, domain.ErrLotNotFound
	}

	return capacity, nil
}

func (r *LotRepository) List(_ context.Context) ([]domain.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	lots := make([]domain.Lot, 0, len(r.s.lots))
	for name, capacity := range r.s.lots {
		lots = append(lots, domain.Lot{Name: name, Capacity: capacity})
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].Name < lots[j].Name })

	return lots, nil
}

func (r *LotRepository) Upsert(_ context.Context, lot domain.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.lots[lot.Name] = lot.Capacity
	return nil
}

type OrderRepository struct{ s *Store }

func (r *OrderRepository) filter(keep func(domain.Order) bool) []domain.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Order
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })

	return out
}

func (r *OrderRepository) ListBySubscriber(_ context.Context, subscriberCode int64) ([]domain.Order, error) {
	return r.filter(func(o domain.Order) bool { return o.SubscriberCode == subscriberCode }), nil
}

func (r *OrderRepository) GetByConfirmationCode(_ context.Context, code string) (*domain.Order, error) {
	matches := r.filter(func(o domain.Order) bool { return o.ConfirmationCode == code })
	if len(matches) == 0 {
		return nil, domain.ErrOrderNotFound
	}

	for _, o := range matches {
		if o.IsActive() {
			return &o, nil
		}
	}

	latest := matches[len(matches)-1]
	return &latest, nil
}

func (r *OrderRepository) ListActiveBetween(_ context.Context, from, to time.Time) ([]domain.Order, error) {
	return r.filter(func(o domain.Order) bool {
		return o.IsActive() && !o.ArrivalAt.Before(from) && !o.ArrivalAt.After(to)
	}), nil
}

func (r *OrderRepository) ListBookedBetween(_ context.Context, from, to time.Time) ([]domain.Order, error) {
	return r.filter(func(o domain.Order) bool {
		return !o.BookedOn.Before(from) && o.BookedOn.Before(to)
	}), nil
}

func (r *OrderRepository) ListElapsed(_ context.Context, arrivedBefore time.Time) ([]int64, error) {
	orders := r.filter(func(o domain.Order) bool { return o.IsActive() && o.ArrivalAt.Before(arrivedBefore) })

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.Number)
	}

	return ids, nil
}

func (r *OrderRepository) ConfirmationCodeInUse(_ context.Context, code string) (bool, error) {
	return len(r.filter(func(o domain.Order) bool { return o.IsActive() && o.ConfirmationCode == code })) > 0, nil
}

func (r *OrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subscribers[order.SubscriberCode]; !ok {
		return domain.ErrSubscriberNotFound
	}

	if order.IsActive() {
		for _, o := range r.s.orders {
			if o.IsActive() && o.ConfirmationCode == order.ConfirmationCode {
				return domain.ErrCodeSpaceExhausted
			}
		}
	}

	r.s.nextOrder++
	order.Number = r.s.nextOrder
	r.s.orders[order.Number] = *order

	return nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, orderNumber int64, from, to domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[orderNumber]
	if !ok || o.Status != from {
		return domain.ErrOrderNotFound
	}

	o.Status = to
	r.s.orders[orderNumber] = o

	return nil
}

type SessionRepository struct{ s *Store }

func (r *SessionRepository) filter(keep func(domain.ParkingEvent) bool) []domain.ParkingEvent {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.ParkingEvent
	for _, e := range r.s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (r *SessionRepository) ListOpenByLot(_ context.Context, lot string) ([]domain.ParkingEvent, error) {
	return r.filter(func(e domain.ParkingEvent) bool { return e.IsOpen() && e.Lot == lot }), nil
}

func (r *SessionRepository) ListOpenUnnotified(_ context.Context) ([]domain.ParkingEvent, error) {
	return r.filter(func(e domain.ParkingEvent) bool { return e.IsOpen() && !e.Notified }), nil
}

func (r *SessionRepository) ListBySubscriber(_ context.Context, subscriberCode int64) ([]domain.ParkingEvent, error) {
	return r.filter(func(e domain.ParkingEvent) bool { return e.SubscriberCode == subscriberCode }), nil
}

func (r *SessionRepository) ListEnteredBetween(_ context.Context, from, to time.Time) ([]domain.ParkingEvent, error) {
	return r.filter(func(e domain.ParkingEvent) bool {
		return !e.EntryAt.Before(from) && e.EntryAt.Before(to)
	}), nil
}

func (r *SessionRepository) GetOpenBySubscriber(_ context.Context, subscriberCode int64) (*domain.ParkingEvent, error) {
	open := r.filter(func(e domain.ParkingEvent) bool { return e.IsOpen() && e.SubscriberCode == subscriberCode })
	if len(open) == 0 {
		return nil, domain.ErrNoActiveSession
	}

	return &open[0], nil
}

func (r *SessionRepository) ParkingCodeInUse(_ context.Context, code string) (bool, error) {
	return len(r.filter(func(e domain.ParkingEvent) bool { return e.IsOpen() && e.ParkingCode == code })) > 0, nil
}

func (r *SessionRepository) Open(_ context.Context, event *domain.ParkingEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.events {
		if !e.IsOpen() {
			continue
		}
		switch {
		case e.SubscriberCode == event.SubscriberCode:
			return domain.ErrSessionAlreadyActive
		case e.Lot == event.Lot && e.SpaceNumber == event.SpaceNumber:
			return domain.ErrSpaceTaken
		case e.ParkingCode == event.ParkingCode:
			return domain.ErrCodeSpaceExhausted
		}
	}

	if event.OrderNumber != nil {
		o, ok := r.s.orders[*event.OrderNumber]
		if !ok || !o.IsActive() {
			return domain.ErrOrderNotActive
		}
		o.Status = domain.OrderFulfilled
		r.s.orders[o.Number] = o
	}

	r.s.nextEvent++
	event.ID = r.s.nextEvent
	r.s.events[event.ID] = *event

	return nil
}

func (r *SessionRepository) update(id int64, apply func(*domain.ParkingEvent) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[id]
	if !ok || !e.IsOpen() {
		return domain.ErrNoActiveSession
	}

	if err := apply(&e); err != nil {
		return err
	}
	r.s.events[id] = e

	return nil
}

func (r *SessionRepository) Close(_ context.Context, id int64, exitAt time.Time) error {
	return r.update(id, func(e *domain.ParkingEvent) error {
		e.ExitAt = &exitAt
		return nil
	})
}

func (r *SessionRepository) MarkExtended(_ context.Context, id int64) error {
	return r.update(id, func(e *domain.ParkingEvent) error {
		if e.Extended {
			return domain.ErrAlreadyExtended
		}
		e.Extended = true
		return nil
	})
}

func (r *SessionRepository) MarkNotified(_ context.Context, id int64) error {
	return r.update(id, func(e *domain.ParkingEvent) error {
		e.Notified = true
		return nil
	})
}

type ReportRepository struct{ s *Store }

func (r *ReportRepository) SaveMonthly(_ context.Context, report *domain.MonthlyReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.reports[report.Month] = *report
	return nil
}

func (r *ReportRepository) GetMonthly(_ context.Context, month string) (*domain.MonthlyReport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	report, ok := r.s.reports[month]
	if !ok {
		return nil, domain.ErrReportNotFound
	}

	return &report, nil
}
