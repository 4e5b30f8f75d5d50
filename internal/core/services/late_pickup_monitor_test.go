package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/ports/mocks"
	"github.com/srgjo27/smart_parking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMonitor(t *testing.T) (*services.LatePickupMonitor, *mocks.SessionRepository, *mocks.SubscriberRepository, *mocks.NotificationSender) {
	sessionRepo := mocks.NewSessionRepository(t)
	subscriberRepo := mocks.NewSubscriberRepository(t)
	notifier := mocks.NewNotificationSender(t)

	monitor := services.NewLatePickupMonitor(sessionRepo, subscriberRepo, notifier, 5*time.Minute, time.Minute)
	monitor.SetClock(clock)

	return monitor, sessionRepo, subscriberRepo, notifier
}

func TestPoll_NotifiesDelayedSessionOnce(t *testing.T) {
	monitor, sessionRepo, subscriberRepo, notifier := newMonitor(t)
	ctx := context.Background()

	late := domain.ParkingEvent{ID: 7, SubscriberCode: 42, SpaceNumber: 3, Lot: "north", VehicleID: "12-345-67", EntryAt: fixedNow.Add(-241 * time.Minute)}
	onTime := domain.ParkingEvent{ID: 8, SubscriberCode: 43, SpaceNumber: 4, Lot: "north", EntryAt: fixedNow.Add(-240 * time.Minute)}
	extended := domain.ParkingEvent{ID: 9, SubscriberCode: 44, SpaceNumber: 5, Lot: "north", Extended: true, EntryAt: fixedNow.Add(-300 * time.Minute)}

	sessionRepo.On("ListOpenUnnotified", ctx).Return([]domain.ParkingEvent{late, onTime, extended}, nil).Once()
	subscriberRepo.On("FindByCode", ctx, int64(42)).Return(&domain.Subscriber{Code: 42, FirstName: "Dana", Email: "dana@example.com"}, nil).Once()
	notifier.On("Send", ctx, "dana@example.com", mock.AnythingOfType("string")).Return(nil).Once()
	sessionRepo.On("MarkNotified", ctx, int64(7)).Return(nil).Once()

	sent, err := monitor.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	// the notified session is no longer listed
	sessionRepo.On("ListOpenUnnotified", ctx).Return([]domain.ParkingEvent{onTime, extended}, nil).Once()

	sent, err = monitor.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestPoll_SendFailureLeavesSessionUnnotified(t *testing.T) {
	monitor, sessionRepo, subscriberRepo, notifier := newMonitor(t)
	ctx := context.Background()

	first := domain.ParkingEvent{ID: 1, SubscriberCode: 10, EntryAt: fixedNow.Add(-6 * time.Hour)}
	second := domain.ParkingEvent{ID: 2, SubscriberCode: 11, EntryAt: fixedNow.Add(-5 * time.Hour)}

	sessionRepo.On("ListOpenUnnotified", ctx).Return([]domain.ParkingEvent{first, second}, nil)
	subscriberRepo.On("FindByCode", ctx, int64(10)).Return(&domain.Subscriber{Code: 10, Email: "a@example.com"}, nil)
	subscriberRepo.On("FindByCode", ctx, int64(11)).Return(&domain.Subscriber{Code: 11, Email: "b@example.com"}, nil)
	notifier.On("Send", ctx, "a@example.com", mock.Anything).Return(errors.New("smtp down"))
	notifier.On("Send", ctx, "b@example.com", mock.Anything).Return(nil)
	sessionRepo.On("MarkNotified", ctx, int64(2)).Return(nil)

	sent, err := monitor.Poll(ctx)

	assert.Error(t, err)
	assert.Equal(t, 1, sent)
	sessionRepo.AssertNotCalled(t, "MarkNotified", ctx, int64(1))
}

func TestPoll_StoreFailure(t *testing.T) {
	monitor, sessionRepo, _, _ := newMonitor(t)
	ctx := context.Background()

	sessionRepo.On("ListOpenUnnotified", ctx).Return(nil, domain.ErrUnavailable)

	sent, err := monitor.Poll(ctx)

	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Zero(t, sent)
}

func TestNextDelay_BacksOffOnlyAfterFailure(t *testing.T) {
	monitor, _, _, _ := newMonitor(t)

	assert.Equal(t, time.Minute, monitor.NextDelay(errors.New("boom")))
	assert.Equal(t, 5*time.Minute, monitor.NextDelay(nil))
}

func TestRun_StopsOnCancel(t *testing.T) {
	monitor, _, _, _ := newMonitor(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

func TestRun_KeepsPollingAfterFailureAndPanic(t *testing.T) {
	sessionRepo := mocks.NewSessionRepository(t)
	subscriberRepo := mocks.NewSubscriberRepository(t)
	notifier := mocks.NewNotificationSender(t)

	monitor := services.NewLatePickupMonitor(sessionRepo, subscriberRepo, notifier, 20*time.Millisecond, 5*time.Millisecond)
	monitor.SetClock(clock)

	late := domain.ParkingEvent{ID: 7, SubscriberCode: 42, Lot: "north", EntryAt: fixedNow.Add(-5 * time.Hour)}

	var polls, sends atomic.Int32
	countPoll := func(mock.Arguments) { polls.Add(1) }

	sessionRepo.On("ListOpenUnnotified", mock.Anything).Run(countPoll).Return(nil, domain.ErrUnavailable).Once()
	sessionRepo.On("ListOpenUnnotified", mock.Anything).Run(func(mock.Arguments) {
		polls.Add(1)
		panic("driver exploded")
	}).Once()
	sessionRepo.On("ListOpenUnnotified", mock.Anything).Run(countPoll).Return([]domain.ParkingEvent{late}, nil).Once()
	sessionRepo.On("ListOpenUnnotified", mock.Anything).Run(countPoll).Return([]domain.ParkingEvent{}, nil)

	subscriberRepo.On("FindByCode", mock.Anything, int64(42)).Return(&domain.Subscriber{Code: 42, Email: "dana@example.com"}, nil).Once()
	notifier.On("Send", mock.Anything, "dana@example.com", mock.AnythingOfType("string")).
		Run(func(mock.Arguments) { sends.Add(1) }).Return(nil).Once()
	sessionRepo.On("MarkNotified", mock.Anything, int64(7)).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return polls.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}

	assert.Equal(t, int32(1), sends.Load())
}
