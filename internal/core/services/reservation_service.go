package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/ports"
	"github.com/srgjo27/smart_parking/internal/platform/metrics"
)

type ReservationService struct {
	subscriberRepo ports.SubscriberRepository
	orderRepo      ports.OrderRepository
	lotRepo        ports.LotRepository
	availability   *AvailabilityService
	locker         *LotLocker
	newCode        CodeGenerator
	now            func() time.Time
}

func NewReservationService(subscriberRepo ports.SubscriberRepository, orderRepo ports.OrderRepository, lotRepo ports.LotRepository, availability *AvailabilityService, locker *LotLocker) *ReservationService {
	return &ReservationService{
		subscriberRepo: subscriberRepo,
		orderRepo:      orderRepo,
		lotRepo:        lotRepo,
		availability:   availability,
		locker:         locker,
		newCode:        RandomCode,
		now:            time.Now,
	}
}

func (s *ReservationService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ReservationService) SetCodeGenerator(gen CodeGenerator) {
	s.newCode = gen
}

func (s *ReservationService) lot() string {
	return s.availability.ReservationLot()
}

// CheckConflict reports whether the subscriber already holds an ACTIVE
// reservation within four hours of arrival. Capacity is not inspected.
func (s *ReservationService) CheckConflict(ctx context.Context, subscriberCode int64, arrival time.Time) (bool, error) {
	orders, err := s.orderRepo.ListBySubscriber(ctx, subscriberCode)
	if err != nil {
		return false, fmt.Errorf("list subscriber orders: %w", err)
	}

	for _, o := range orders {
		if o.IsActive() && domain.WithinArrivalWindow(o.ArrivalAt, arrival) {
			return true, nil
		}
	}

	return false, nil
}

// CheckAvailabilityForOrder reports whether fewer ACTIVE reservations than
// the lot capacity have a window overlapping [arrival, arrival+4h).
func (s *ReservationService) CheckAvailabilityForOrder(ctx context.Context, arrival time.Time) (bool, error) {
	capacity, err := s.lotRepo.Capacity(ctx, s.lot())
	if err != nil {
		return false, err
	}

	orders, err := s.orderRepo.ListActiveBetween(ctx, arrival.Add(-domain.ArrivalWindow), arrival.Add(domain.ArrivalWindow))
	if err != nil {
		return false, fmt.Errorf("list overlapping orders: %w", err)
	}

	overlapping := 0
	for _, o := range orders {
		if domain.SlotsOverlap(o.ArrivalAt, arrival) {
			overlapping++
		}
	}

	return overlapping < capacity, nil
}

// AddOrder validates the booking window, then runs the conflict check, the
// capacity check and the insert as one critical section.
func (s *ReservationService) AddOrder(ctx context.Context, subscriberCode int64, arrival time.Time) (*domain.Order, error) {
	order, err := s.addOrder(ctx, subscriberCode, arrival)
	metrics.OrdersTotal.WithLabelValues("add", metrics.Result(err)).Inc()
	return order, err
}

func (s *ReservationService) addOrder(ctx context.Context, subscriberCode int64, arrival time.Time) (*domain.Order, error) {
	now := s.now()
	if err := domain.ValidateArrival(arrival, now); err != nil {
		return nil, err
	}

	if _, err := s.subscriberRepo.FindByCode(ctx, subscriberCode); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(s.lot())
	defer unlock()

	conflict, err := s.CheckConflict(ctx, subscriberCode, arrival)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domain.ErrReservationConflict
	}

	available, err := s.CheckAvailabilityForOrder(ctx, arrival)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.ErrNoCapacity
	}

	code, err := uniqueCode(ctx, s.newCode, s.orderRepo.ConfirmationCodeInUse)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		SubscriberCode:   subscriberCode,
		ArrivalAt:        arrival,
		ConfirmationCode: code,
		BookedOn:         now,
		Status:           domain.OrderActive,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.availability.Invalidate(ctx, s.lot())

	logrus.WithFields(logrus.Fields{
		"order":      order.Number,
		"subscriber": subscriberCode,
		"arrival":    arrival.Format(time.RFC3339),
	}).Info("Reservation created")

	return order, nil
}

// DeleteOrder cancels an ACTIVE reservation. A missing or already settled
// reservation is reported as domain.ErrOrderNotFound.
func (s *ReservationService) DeleteOrder(ctx context.Context, orderNumber int64) error {
	err := s.orderRepo.UpdateStatus(ctx, orderNumber, domain.OrderActive, domain.OrderCancelled)
	metrics.OrdersTotal.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	s.availability.Invalidate(ctx, s.lot())
	logrus.WithField("order", orderNumber).Info("Reservation cancelled")
	return nil
}

func (s *ReservationService) ListReservations(ctx context.Context, subscriberCode int64) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListBySubscriber(ctx, subscriberCode)
	if err != nil {
		return nil, fmt.Errorf("list subscriber orders: %w", err)
	}

	now := s.now()
	for i := range orders {
		orders[i].Status = orders[i].EffectiveStatus(now)
	}

	return orders, nil
}

// ValidateForEntry resolves a confirmation code presented at the gate. The
// reservation must belong to the subscriber, still be ACTIVE and have an
// arrival time within four hours of now.
func (s *ReservationService) ValidateForEntry(ctx context.Context, subscriberCode int64, confirmationCode string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByConfirmationCode(ctx, confirmationCode)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.ErrConfirmationNotFound
		}
		return nil, err
	}

	if order.SubscriberCode != subscriberCode {
		return nil, domain.ErrConfirmationNotFound
	}

	if !order.IsActive() {
		return nil, domain.ErrOrderNotActive
	}

	if !domain.WithinArrivalWindow(order.ArrivalAt, s.now()) {
		return nil, domain.ErrReservationNotDue
	}

	return order, nil
}

// ExpireElapsed persists INACTIVE for ACTIVE reservations whose window
// passed without an entry.
func (s *ReservationService) ExpireElapsed(ctx context.Context) (int, error) {
	ids, err := s.orderRepo.ListElapsed(ctx, s.now().Add(-domain.ArrivalWindow))
	if err != nil {
		return 0, fmt.Errorf("list elapsed orders: %w", err)
	}

	expired := 0
	for _, id := range ids {
		err := s.orderRepo.UpdateStatus(ctx, id, domain.OrderActive, domain.OrderInactive)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrOrderNotFound):
			// fulfilled or cancelled since the listing
		default:
			logrus.WithField("order", id).Errorf("Failed to expire reservation: %v", err)
		}
	}

	return expired, nil
}

func (s *ReservationService) RunBackgroundCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.Infof("Reservation cleanup started: checking elapsed reservations every %s", interval)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Reservation cleanup stopped.")
			return
		case <-ticker.C:
			s.processElapsedOrders(ctx)
		}
	}
}

func (s *ReservationService) processElapsedOrders(ctx context.Context) {
	n, err := s.ExpireElapsed(ctx)
	if err != nil {
		logrus.Errorf("Error expiring elapsed reservations: %v", err)
		return
	}

	if n > 0 {
		logrus.Infof("%d elapsed reservations marked inactive", n)
		s.availability.Invalidate(ctx, s.lot())
	}
}
