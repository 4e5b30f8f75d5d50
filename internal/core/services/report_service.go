package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/ports"
)

const monthLayout = "2006-01"

// ReportService aggregates a calendar month of sessions and reservations.
// Lateness uses the same rule as history and the late-pickup monitor.
type ReportService struct {
	sessionRepo ports.SessionRepository
	orderRepo   ports.OrderRepository
	reportRepo  ports.ReportRepository
	loc         *time.Location
	now         func() time.Time
}

func NewReportService(sessionRepo ports.SessionRepository, orderRepo ports.OrderRepository, reportRepo ports.ReportRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}

	return &ReportService{
		sessionRepo: sessionRepo,
		orderRepo:   orderRepo,
		reportRepo:  reportRepo,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ReportService) monthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(monthLayout, month, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidInput
	}

	return start, start.AddDate(0, 1, 0), nil
}

// Summarize builds the report for month (YYYY-MM) without persisting it.
func (s *ReportService) Summarize(ctx context.Context, month string) (*domain.MonthlyReport, error) {
	from, to, err := s.monthBounds(month)
	if err != nil {
		return nil, err
	}

	events, err := s.sessionRepo.ListEnteredBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	orders, err := s.orderRepo.ListBookedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	now := s.now()
	report := &domain.MonthlyReport{
		Month:          month,
		GeneratedAt:    now,
		Sessions:       len(events),
		OrdersByStatus: make(map[domain.OrderStatus]int),
		PeakOccupancy:  peakOccupancy(events, to),
	}

	var totalMinutes int64
	for i := range events {
		e := &events[i]
		if e.Status(now) == domain.StatusDelayed {
			report.DelayedSessions++
		}
		if e.Extended {
			report.ExtendedSessions++
		}
		if e.OrderNumber != nil {
			report.ReservationEntries++
		}
		totalMinutes += int64(e.Duration(now) / time.Minute)
	}

	if len(events) > 0 {
		report.AverageMinutes = float64(totalMinutes) / float64(len(events))
	}

	for i := range orders {
		report.OrdersByStatus[orders[i].EffectiveStatus(now)]++
	}

	return report, nil
}

type occupancyChange struct {
	at    time.Time
	delta int
}

// peakOccupancy sweeps entries and exits per lot. Sessions still open are
// counted until horizon. An exit and an entry at the same instant do not
// overlap.
func peakOccupancy(events []domain.ParkingEvent, horizon time.Time) map[string]int {
	changes := make(map[string][]occupancyChange)
	for _, e := range events {
		exit := horizon
		if e.ExitAt != nil {
			exit = *e.ExitAt
		}
		changes[e.Lot] = append(changes[e.Lot],
			occupancyChange{at: e.EntryAt, delta: 1},
			occupancyChange{at: exit, delta: -1},
		)
	}

	peaks := make(map[string]int, len(changes))
	for lot, list := range changes {
		sort.Slice(list, func(i, j int) bool {
			if list[i].at.Equal(list[j].at) {
				return list[i].delta < list[j].delta
			}
			return list[i].at.Before(list[j].at)
		})

		current, peak := 0, 0
		for _, c := range list {
			current += c.delta
			if current > peak {
				peak = current
			}
		}
		peaks[lot] = peak
	}

	return peaks
}

// GenerateMonthly summarizes month and stores the result, replacing any
// earlier report for the same month.
func (s *ReportService) GenerateMonthly(ctx context.Context, month string) (*domain.MonthlyReport, error) {
	report, err := s.Summarize(ctx, month)
	if err != nil {
		return nil, err
	}

	if err := s.reportRepo.SaveMonthly(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"month":    month,
		"sessions": report.Sessions,
		"delayed":  report.DelayedSessions,
	}).Info("Monthly report generated")

	return report, nil
}

func (s *ReportService) GetMonthly(ctx context.Context, month string) (*domain.MonthlyReport, error) {
	if _, _, err := s.monthBounds(month); err != nil {
		return nil, err
	}

	return s.reportRepo.GetMonthly(ctx, month)
}

// PreviousMonth is the last fully elapsed calendar month.
func (s *ReportService) PreviousMonth() string {
	now := s.now().In(s.loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	return first.AddDate(0, -1, 0).Format(monthLayout)
}

// RunMonthly makes sure the previous month's report exists, checking once
// at start and then on every tick.
func (s *ReportService) RunMonthly(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.Infof("Monthly reporting started: checking every %s", interval)
	s.ensurePreviousMonth(ctx)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Monthly reporting stopped.")
			return
		case <-ticker.C:
			s.ensurePreviousMonth(ctx)
		}
	}
}

func (s *ReportService) ensurePreviousMonth(ctx context.Context) {
	month := s.PreviousMonth()

	_, err := s.reportRepo.GetMonthly(ctx, month)
	if err == nil {
		return
	}
	if !errors.Is(err, domain.ErrReportNotFound) {
		logrus.Errorf("Error loading report for %s: %v", month, err)
		return
	}

	if _, err := s.GenerateMonthly(ctx, month); err != nil {
		logrus.Errorf("Error generating report for %s: %v", month, err)
	}
}
