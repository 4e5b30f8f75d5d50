package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/ports"
	"github.com/srgjo27/smart_parking/internal/platform/metrics"
)

const defaultStatsTTL = 15 * time.Second

// AvailabilityService derives lot counts from store state. Reservations only
// ever target the reservation lot, so upcoming arrivals are counted there.
type AvailabilityService struct {
	lotRepo        ports.LotRepository
	sessionRepo    ports.SessionRepository
	orderRepo      ports.OrderRepository
	redisClient    *redis.Client
	reservationLot string
	statsTTL       time.Duration
	now            func() time.Time
}

func NewAvailabilityService(lotRepo ports.LotRepository, sessionRepo ports.SessionRepository, orderRepo ports.OrderRepository, redisClient *redis.Client, reservationLot string) *AvailabilityService {
	return &AvailabilityService{
		lotRepo:        lotRepo,
		sessionRepo:    sessionRepo,
		orderRepo:      orderRepo,
		redisClient:    redisClient,
		reservationLot: reservationLot,
		statsTTL:       defaultStatsTTL,
		now:            time.Now,
	}
}

func (s *AvailabilityService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *AvailabilityService) SetStatsTTL(ttl time.Duration) {
	if ttl > 0 {
		s.statsTTL = ttl
	}
}

func (s *AvailabilityService) ReservationLot() string {
	return s.reservationLot
}

func statsKey(lot string) string {
	return fmt.Sprintf("lotstats:%s", lot)
}

// Stats serves the dashboard figures, from cache when one is configured.
func (s *AvailabilityService) Stats(ctx context.Context, lot string) (*domain.LotStats, error) {
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, statsKey(lot)).Result()
		if err == nil {
			var stats domain.LotStats
			if jsonErr := json.Unmarshal([]byte(cached), &stats); jsonErr == nil {
				return &stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logrus.WithField("lot", lot).Warnf("stats cache read failed: %v", err)
		}
	}

	stats, err := s.Compute(ctx, lot)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := s.redisClient.Set(ctx, statsKey(lot), string(payload), s.statsTTL).Err(); err != nil {
				logrus.WithField("lot", lot).Warnf("stats cache write failed: %v", err)
			}
		}
	}

	return stats, nil
}

// Compute reads the store directly. Entry gating must use this, never the
// cached figures.
func (s *AvailabilityService) Compute(ctx context.Context, lot string) (*domain.LotStats, error) {
	total, err := s.lotRepo.Capacity(ctx, lot)
	if err != nil {
		return nil, err
	}

	open, err := s.sessionRepo.ListOpenByLot(ctx, lot)
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}

	upcoming := 0
	if lot == s.reservationLot {
		now := s.now()
		orders, err := s.orderRepo.ListActiveBetween(ctx, now, now.Add(domain.ArrivalWindow))
		if err != nil {
			return nil, fmt.Errorf("list upcoming orders: %w", err)
		}
		upcoming = len(orders)
	}

	occupied := len(open)
	metrics.OccupiedSpaces.WithLabelValues(lot).Set(float64(occupied))

	return &domain.LotStats{
		Lot:                  lot,
		Total:                total,
		Occupied:             occupied,
		UpcomingWithinNext4h: upcoming,
		Available:            total - occupied,
	}, nil
}

// Invalidate drops the cached figures for lot after a mutation.
func (s *AvailabilityService) Invalidate(ctx context.Context, lot string) {
	if s.redisClient == nil {
		return
	}

	if err := s.redisClient.Del(ctx, statsKey(lot)).Err(); err != nil {
		logrus.WithField("lot", lot).Warnf("stats cache invalidation failed: %v", err)
	}
}
