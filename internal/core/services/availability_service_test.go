package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/ports/mocks"
	"github.com/srgjo27/smart_parking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestStats_EmptyLot(t *testing.T) {
	lotRepo := mocks.NewLotRepository(t)
	sessionRepo := mocks.NewSessionRepository(t)
	orderRepo := mocks.NewOrderRepository(t)

	service := services.NewAvailabilityService(lotRepo, sessionRepo, orderRepo, nil, "north")
	service.SetClock(clock)

	ctx := context.Background()
	lotRepo.On("Capacity", ctx, "north").Return(5, nil)
	sessionRepo.On("ListOpenByLot", ctx, "north").Return([]domain.ParkingEvent{}, nil)
	orderRepo.On("ListActiveBetween", ctx, fixedNow, fixedNow.Add(4*time.Hour)).Return([]domain.Order{}, nil)

	stats, err := service.Stats(ctx, "north")

	require.NoError(t, err)
	assert.Equal(t, domain.LotStats{Lot: "north", Total: 5, Occupied: 0, UpcomingWithinNext4h: 0, Available: 5}, *stats)
}

func TestStats_UpcomingDoesNotReduceAvailable(t *testing.T) {
	lotRepo := mocks.NewLotRepository(t)
	sessionRepo := mocks.NewSessionRepository(t)
	orderRepo := mocks.NewOrderRepository(t)

	service := services.NewAvailabilityService(lotRepo, sessionRepo, orderRepo, nil, "north")
	service.SetClock(clock)

	ctx := context.Background()
	lotRepo.On("Capacity", ctx, "north").Return(5, nil)
	sessionRepo.On("ListOpenByLot", ctx, "north").Return([]domain.ParkingEvent{{ID: 1}, {ID: 2}}, nil)
	orderRepo.On("ListActiveBetween", ctx, fixedNow, fixedNow.Add(4*time.Hour)).
		Return([]domain.Order{{Number: 1}, {Number: 2}, {Number: 3}}, nil)

	stats, err := service.Compute(ctx, "north")

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Occupied)
	assert.Equal(t, 3, stats.UpcomingWithinNext4h)
	assert.Equal(t, stats.Total-stats.Occupied, stats.Available)
}

func TestStats_OtherLotSkipsReservations(t *testing.T) {
	lotRepo := mocks.NewLotRepository(t)
	sessionRepo := mocks.NewSessionRepository(t)
	orderRepo := mocks.NewOrderRepository(t)

	service := services.NewAvailabilityService(lotRepo, sessionRepo, orderRepo, nil, "north")

	ctx := context.Background()
	lotRepo.On("Capacity", ctx, "south").Return(3, nil)
	sessionRepo.On("ListOpenByLot", ctx, "south").Return([]domain.ParkingEvent{{ID: 9}}, nil)

	stats, err := service.Compute(ctx, "south")

	require.NoError(t, err)
	assert.Equal(t, domain.LotStats{Lot: "south", Total: 3, Occupied: 1, Available: 2}, *stats)
	orderRepo.AssertNotCalled(t, "ListActiveBetween")
}

func TestStats_UnknownLot(t *testing.T) {
	lotRepo := mocks.NewLotRepository(t)
	service := services.NewAvailabilityService(lotRepo, mocks.NewSessionRepository(t), mocks.NewOrderRepository(t), nil, "north")

	ctx := context.Background()
	lotRepo.On("Capacity", ctx, "west").Return(0, domain.ErrLotNotFound)

	_, err := service.Stats(ctx, "west")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

func TestStats_CacheMissPopulatesRedis(t *testing.T) {
	lotRepo := mocks.NewLotRepository(t)
	sessionRepo := mocks.NewSessionRepository(t)
	orderRepo := mocks.NewOrderRepository(t)
	db, mockRedis := redismock.NewClientMock()

	service := services.NewAvailabilityService(lotRepo, sessionRepo, orderRepo, db, "north")
	service.SetClock(clock)
	service.SetStatsTTL(30 * time.Second)

	ctx := context.Background()
	lotRepo.On("Capacity", ctx, "north").Return(5, nil)
	sessionRepo.On("ListOpenByLot", ctx, "north").Return([]domain.ParkingEvent{{ID: 1}}, nil)
	orderRepo.On("ListActiveBetween", ctx, fixedNow, fixedNow.Add(4*time.Hour)).Return([]domain.Order{}, nil)

	want := domain.LotStats{Lot: "north", Total: 5, Occupied: 1, Available: 4}
	payload, _ := json.Marshal(want)

	mockRedis.ExpectGet("lotstats:north").RedisNil()
	mockRedis.ExpectSet("lotstats:north", string(payload), 30*time.Second).SetVal("OK")

	stats, err := service.Stats(ctx, "north")

	require.NoError(t, err)
	assert.Equal(t, want, *stats)
	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestStats_CacheHitSkipsStore(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	service := services.NewAvailabilityService(mocks.NewLotRepository(t), mocks.NewSessionRepository(t), mocks.NewOrderRepository(t), db, "north")

	cached := domain.LotStats{Lot: "north", Total: 5, Occupied: 3, UpcomingWithinNext4h: 1, Available: 2}
	payload, _ := json.Marshal(cached)
	mockRedis.ExpectGet("lotstats:north").SetVal(string(payload))

	stats, err := service.Stats(context.Background(), "north")

	require.NoError(t, err)
	assert.Equal(t, cached, *stats)
}

func TestInvalidate_DeletesKeyAndToleratesErrors(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	service := services.NewAvailabilityService(mocks.NewLotRepository(t), mocks.NewSessionRepository(t), mocks.NewOrderRepository(t), db, "north")

	mockRedis.ExpectDel("lotstats:north").SetVal(1)
	mockRedis.ExpectDel("lotstats:north").SetErr(errors.New("redis down"))

	service.Invalidate(context.Background(), "north")
	service.Invalidate(context.Background(), "north")

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
