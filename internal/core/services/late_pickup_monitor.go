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

const (
	DefaultMonitorInterval = 5 * time.Minute
	DefaultMonitorRetry    = time.Minute
)

// LatePickupMonitor notifies subscribers whose open session turned Delayed.
// Each session is notified at most once.
type LatePickupMonitor struct {
	sessionRepo    ports.SessionRepository
	subscriberRepo ports.SubscriberRepository
	notifier       ports.NotificationSender
	interval       time.Duration
	retryInterval  time.Duration
	now            func() time.Time
}

func NewLatePickupMonitor(sessionRepo ports.SessionRepository, subscriberRepo ports.SubscriberRepository, notifier ports.NotificationSender, interval, retryInterval time.Duration) *LatePickupMonitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	if retryInterval <= 0 {
		retryInterval = DefaultMonitorRetry
	}

	return &LatePickupMonitor{
		sessionRepo:    sessionRepo,
		subscriberRepo: subscriberRepo,
		notifier:       notifier,
		interval:       interval,
		retryInterval:  retryInterval,
		now:            time.Now,
	}
}

func (m *LatePickupMonitor) SetClock(now func() time.Time) {
	m.now = now
}

// NextDelay is the wait before the next poll: the retry interval after a
// failed cycle, the regular interval otherwise.
func (m *LatePickupMonitor) NextDelay(pollErr error) time.Duration {
	if pollErr != nil {
		return m.retryInterval
	}

	return m.interval
}

// Run polls until ctx is cancelled. Poll failures never stop the loop.
func (m *LatePickupMonitor) Run(ctx context.Context) {
	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	logrus.Infof("Late-pickup monitor started: polling every %s", m.interval)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Late-pickup monitor stopped.")
			return
		case <-timer.C:
			_, err := m.safePoll(ctx)
			if err != nil {
				logrus.Errorf("Late-pickup poll failed, retrying in %s: %v", m.retryInterval, err)
			}
			timer.Reset(m.NextDelay(err))
		}
	}
}

func (m *LatePickupMonitor) safePoll(ctx context.Context) (sent int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("late-pickup poll panicked: %v", r)
		}
	}()

	return m.Poll(ctx)
}

// Poll runs one cycle and returns how many notifications were sent. Every
// delayed session is attempted even when an earlier one fails.
func (m *LatePickupMonitor) Poll(ctx context.Context) (int, error) {
	events, err := m.sessionRepo.ListOpenUnnotified(ctx)
	if err != nil {
		metrics.MonitorPollsTotal.WithLabelValues("failure").Inc()
		return 0, fmt.Errorf("list open sessions: %w", err)
	}

	now := m.now()
	sent := 0
	var errs []error

	for i := range events {
		event := &events[i]
		if event.Status(now) != domain.StatusDelayed {
			continue
		}

		err := m.notify(ctx, event, now)
		metrics.LateNotificationsTotal.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"session_id": event.ID,
				"subscriber": event.SubscriberCode,
			}).Errorf("Failed to notify late pickup: %v", err)
			errs = append(errs, err)
			continue
		}
		sent++
	}

	pollErr := errors.Join(errs...)
	metrics.MonitorPollsTotal.WithLabelValues(metrics.Result(pollErr)).Inc()

	if sent > 0 {
		logrus.Infof("Late-pickup monitor sent %d notifications", sent)
	}

	return sent, pollErr
}

func (m *LatePickupMonitor) notify(ctx context.Context, event *domain.ParkingEvent, now time.Time) error {
	sub, err := m.subscriberRepo.FindByCode(ctx, event.SubscriberCode)
	if err != nil {
		return fmt.Errorf("resolve subscriber %d: %w", event.SubscriberCode, err)
	}

	allowance := domain.RegularAllowanceMinutes
	if event.Extended {
		allowance = domain.ExtendedAllowanceMinutes
	}

	content := fmt.Sprintf(
		"Hello %s, your vehicle %s in lot %s (space %d) has been parked for %d minutes, "+
			"which exceeds the allowed %d minutes. Please collect it as soon as possible.",
		sub.FullName(), event.VehicleID, event.Lot, event.SpaceNumber,
		int64(now.Sub(event.EntryAt)/time.Minute), allowance,
	)

	if err := m.notifier.Send(ctx, sub.Email, content); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if err := m.sessionRepo.MarkNotified(ctx, event.ID); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}

	return nil
}
