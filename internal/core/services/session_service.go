package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/ports"
	"github.com/srgjo27/smart_parking/internal/platform/metrics"
)

type EntryRequest struct {
	SubscriberCode   int64  `json:"subscriber_code"`
	VehicleID        string `json:"vehicle_id"`
	Lot              string `json:"lot"`
	ConfirmationCode string `json:"confirmation_code,omitempty"`
}

type CollectResult struct {
	Session domain.ParkingEvent  `json:"session"`
	Status  domain.SessionStatus `json:"status"`
}

type SessionView struct {
	domain.ParkingEvent
	Status          domain.SessionStatus `json:"status"`
	DurationMinutes int64                `json:"duration_minutes"`
}

type SessionService struct {
	subscriberRepo ports.SubscriberRepository
	sessionRepo    ports.SessionRepository
	lotRepo        ports.LotRepository
	reservations   *ReservationService
	availability   *AvailabilityService
	notifier       ports.NotificationSender
	locker         *LotLocker
	newCode        CodeGenerator
	now            func() time.Time
}

func NewSessionService(
	subscriberRepo ports.SubscriberRepository,
	sessionRepo ports.SessionRepository,
	lotRepo ports.LotRepository,
	reservations *ReservationService,
	availability *AvailabilityService,
	notifier ports.NotificationSender,
	locker *LotLocker,
) *SessionService {
	return &SessionService{
		subscriberRepo: subscriberRepo,
		sessionRepo:    sessionRepo,
		lotRepo:        lotRepo,
		reservations:   reservations,
		availability:   availability,
		notifier:       notifier,
		locker:         locker,
		newCode:        RandomCode,
		now:            time.Now,
	}
}

func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SessionService) SetCodeGenerator(gen CodeGenerator) {
	s.newCode = gen
}

// VerifySubscriber moves a subscriber to awaiting-entry. Subscribers that
// already have an open session are rejected here, before any entry path.
func (s *SessionService) VerifySubscriber(ctx context.Context, code int64) (*domain.Subscriber, error) {
	sub, err := s.subscriberRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNoOpenSession(ctx, sub.Code); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *SessionService) VerifyByTag(ctx context.Context, tagID string) (*domain.Subscriber, error) {
	if strings.TrimSpace(tagID) == "" {
		return nil, domain.ErrInvalidInput
	}

	sub, err := s.subscriberRepo.FindByTag(ctx, tagID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNoOpenSession(ctx, sub.Code); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *SessionService) ensureNoOpenSession(ctx context.Context, subscriberCode int64) error {
	_, err := s.sessionRepo.GetOpenBySubscriber(ctx, subscriberCode)
	switch {
	case err == nil:
		return domain.ErrSessionAlreadyActive
	case errors.Is(err, domain.ErrNoActiveSession):
		return nil
	default:
		return fmt.Errorf("lookup open session: %w", err)
	}
}

// EnterWithReservation admits a vehicle against a confirmation code and
// marks the reservation FULFILLED together with opening the session.
func (s *SessionService) EnterWithReservation(ctx context.Context, req EntryRequest) (*domain.ParkingEvent, error) {
	event, err := s.enterWithReservation(ctx, req)
	metrics.EntriesTotal.WithLabelValues("reservation", metrics.Result(err)).Inc()
	return event, err
}

func (s *SessionService) enterWithReservation(ctx context.Context, req EntryRequest) (*domain.ParkingEvent, error) {
	if strings.TrimSpace(req.ConfirmationCode) == "" {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(req.VehicleID) == "" {
		return nil, domain.ErrMissingVehicle
	}

	if _, err := s.VerifySubscriber(ctx, req.SubscriberCode); err != nil {
		return nil, err
	}

	order, err := s.reservations.ValidateForEntry(ctx, req.SubscriberCode, req.ConfirmationCode)
	if err != nil {
		return nil, err
	}

	lot := s.availability.ReservationLot()

	unlock := s.locker.Lock(lot)
	defer unlock()

	orderNumber := order.Number
	event, err := s.deliverVehicle(ctx, req.SubscriberCode, req.VehicleID, lot, &orderNumber)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"subscriber": req.SubscriberCode,
		"lot":        lot,
		"session_id": event.ID,
		"order":      orderNumber,
	}).Info("Vehicle entered with reservation")

	return event, nil
}

// EnterWithoutReservation admits a vehicle only while the lot reports a
// free space right now. A full lot refuses entry outright.
func (s *SessionService) EnterWithoutReservation(ctx context.Context, req EntryRequest) (*domain.ParkingEvent, error) {
	event, err := s.enterWithoutReservation(ctx, req)
	metrics.EntriesTotal.WithLabelValues("regular", metrics.Result(err)).Inc()
	return event, err
}

func (s *SessionService) enterWithoutReservation(ctx context.Context, req EntryRequest) (*domain.ParkingEvent, error) {
	if strings.TrimSpace(req.VehicleID) == "" {
		return nil, domain.ErrMissingVehicle
	}

	lot := req.Lot
	if lot == "" {
		lot = s.availability.ReservationLot()
	}

	if _, err := s.VerifySubscriber(ctx, req.SubscriberCode); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(lot)
	defer unlock()

	stats, err := s.availability.Compute(ctx, lot)
	if err != nil {
		return nil, err
	}
	if stats.Available <= 0 {
		return nil, domain.ErrLotFull
	}

	event, err := s.deliverVehicle(ctx, req.SubscriberCode, req.VehicleID, lot, nil)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"subscriber": req.SubscriberCode,
		"lot":        lot,
		"session_id": event.ID,
		"space":      event.SpaceNumber,
	}).Info("Vehicle entered without reservation")

	return event, nil
}

// deliverVehicle assigns a space and opens the session. The caller must
// hold the lot lock.
func (s *SessionService) deliverVehicle(ctx context.Context, subscriberCode int64, vehicleID, lot string, orderNumber *int64) (*domain.ParkingEvent, error) {
	capacity, err := s.lotRepo.Capacity(ctx, lot)
	if err != nil {
		return nil, err
	}

	open, err := s.sessionRepo.ListOpenByLot(ctx, lot)
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}

	space := firstFreeSpace(capacity, open)
	if space == 0 {
		return nil, domain.ErrLotFull
	}

	code, err := uniqueCode(ctx, s.newCode, s.sessionRepo.ParkingCodeInUse)
	if err != nil {
		return nil, err
	}

	event := &domain.ParkingEvent{
		SubscriberCode: subscriberCode,
		SpaceNumber:    space,
		EntryAt:        s.now(),
		Lot:            lot,
		VehicleID:      strings.TrimSpace(vehicleID),
		ParkingCode:    code,
		OrderNumber:    orderNumber,
	}

	if err := s.sessionRepo.Open(ctx, event); err != nil {
		return nil, err
	}

	s.availability.Invalidate(ctx, lot)
	return event, nil
}

// firstFreeSpace returns the lowest space number in 1..capacity not held by
// an open session, or 0 when every space is taken.
func firstFreeSpace(capacity int, open []domain.ParkingEvent) int {
	taken := make(map[int]bool, len(open))
	for _, e := range open {
		taken[e.SpaceNumber] = true
	}

	for space := 1; space <= capacity; space++ {
		if !taken[space] {
			return space
		}
	}

	return 0
}

// ExtendSession grants the single extension of a session, raising its
// allowance from 240 to 480 minutes.
func (s *SessionService) ExtendSession(ctx context.Context, parkingCode string, subscriberCode int64) (*domain.ParkingEvent, error) {
	event, err := s.extendSession(ctx, parkingCode, subscriberCode)
	metrics.ExtensionsTotal.WithLabelValues(metrics.Result(err)).Inc()
	return event, err
}

func (s *SessionService) extendSession(ctx context.Context, parkingCode string, subscriberCode int64) (*domain.ParkingEvent, error) {
	event, err := s.sessionRepo.GetOpenBySubscriber(ctx, subscriberCode)
	if err != nil {
		return nil, err
	}

	if event.ParkingCode != strings.TrimSpace(parkingCode) {
		return nil, domain.ErrParkingCodeNotFound
	}

	if event.Extended {
		return nil, domain.ErrAlreadyExtended
	}

	if err := s.sessionRepo.MarkExtended(ctx, event.ID); err != nil {
		return nil, err
	}
	event.Extended = true

	logrus.WithFields(logrus.Fields{
		"subscriber": subscriberCode,
		"session_id": event.ID,
	}).Info("Parking session extended")

	return event, nil
}

// CollectVehicle closes the subscriber's open session when the parking code
// matches. A mismatch leaves the session untouched so the subscriber can retry.
func (s *SessionService) CollectVehicle(ctx context.Context, subscriberCode int64, parkingCode string) (*CollectResult, error) {
	event, err := s.sessionRepo.GetOpenBySubscriber(ctx, subscriberCode)
	if err != nil {
		return nil, err
	}

	if event.ParkingCode != strings.TrimSpace(parkingCode) {
		return nil, domain.ErrInvalidParkingCode
	}

	exitAt := s.now()
	if exitAt.Before(event.EntryAt) {
		exitAt = event.EntryAt
	}

	if err := s.sessionRepo.Close(ctx, event.ID, exitAt); err != nil {
		return nil, err
	}
	event.ExitAt = &exitAt

	status := event.Status(exitAt)
	metrics.ExitsTotal.WithLabelValues(string(status)).Inc()
	s.availability.Invalidate(ctx, event.Lot)

	logrus.WithFields(logrus.Fields{
		"subscriber": subscriberCode,
		"session_id": event.ID,
		"lot":        event.Lot,
		"status":     status,
	}).Info("Vehicle collected")

	return &CollectResult{Session: *event, Status: status}, nil
}

func (s *SessionService) GetStatus(event *domain.ParkingEvent) domain.SessionStatus {
	return event.Status(s.now())
}

// CurrentStatus reports the subscriber's open session with its status as of now.
func (s *SessionService) CurrentStatus(ctx context.Context, subscriberCode int64) (*SessionView, error) {
	event, err := s.sessionRepo.GetOpenBySubscriber(ctx, subscriberCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &SessionView{
		ParkingEvent:    *event,
		Status:          s.GetStatus(event),
		DurationMinutes: int64(event.Duration(now) / time.Minute),
	}, nil
}

func (s *SessionService) History(ctx context.Context, subscriberCode int64) ([]SessionView, error) {
	events, err := s.sessionRepo.ListBySubscriber(ctx, subscriberCode)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	now := s.now()
	views := make([]SessionView, 0, len(events))
	for _, e := range events {
		views = append(views, SessionView{
			ParkingEvent:    e,
			Status:          e.Status(now),
			DurationMinutes: int64(e.Duration(now) / time.Minute),
		})
	}

	return views, nil
}

// ResendParkingCode mails the open session's parking code to a subscriber
// who lost it.
func (s *SessionService) ResendParkingCode(ctx context.Context, subscriberCode int64) error {
	if s.notifier == nil {
		return domain.ErrUnavailable
	}

	sub, err := s.subscriberRepo.FindByCode(ctx, subscriberCode)
	if err != nil {
		return err
	}

	event, err := s.sessionRepo.GetOpenBySubscriber(ctx, subscriberCode)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Hello %s, your parking code for space %d in lot %s is %s.",
		sub.FullName(), event.SpaceNumber, event.Lot, event.ParkingCode)

	if err := s.notifier.Send(ctx, sub.Email, content); err != nil {
		return fmt.Errorf("send parking code: %w", err)
	}

	return nil
}
