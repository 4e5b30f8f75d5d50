package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/ports/mocks"
	"github.com/srgjo27/smart_parking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reservationFixture struct {
	service        *services.ReservationService
	subscriberRepo *mocks.SubscriberRepository
	orderRepo      *mocks.OrderRepository
	lotRepo        *mocks.LotRepository
}

func newReservationFixture(t *testing.T) reservationFixture {
	subscriberRepo := mocks.NewSubscriberRepository(t)
	orderRepo := mocks.NewOrderRepository(t)
	lotRepo := mocks.NewLotRepository(t)

	availability := services.NewAvailabilityService(lotRepo, mocks.NewSessionRepository(t), orderRepo, nil, "north")
	availability.SetClock(clock)

	service := services.NewReservationService(subscriberRepo, orderRepo, lotRepo, availability, services.NewLotLocker())
	service.SetClock(clock)
	service.SetCodeGenerator(func() (string, error) { return "123456", nil })

	return reservationFixture{service: service, subscriberRepo: subscriberRepo, orderRepo: orderRepo, lotRepo: lotRepo}
}

var tomorrow10 = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func TestAddOrder_Success(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	f.subscriberRepo.On("FindByCode", ctx, int64(42)).Return(&domain.Subscriber{Code: 42}, nil)
	f.orderRepo.On("ListBySubscriber", ctx, int64(42)).Return([]domain.Order{}, nil)
	f.lotRepo.On("Capacity", ctx, "north").Return(5, nil)
	f.orderRepo.On("ListActiveBetween", ctx, tomorrow10.Add(-4*time.Hour), tomorrow10.Add(4*time.Hour)).Return([]domain.Order{}, nil)
	f.orderRepo.On("ConfirmationCodeInUse", ctx, "123456").Return(false, nil)
	f.orderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).Number = 77
		}).
		Return(nil)

	order, err := f.service.AddOrder(ctx, 42, tomorrow10)

	require.NoError(t, err)
	assert.Equal(t, int64(77), order.Number)
	assert.Equal(t, "123456", order.ConfirmationCode)
	assert.Equal(t, domain.OrderActive, order.Status)
	assert.Equal(t, fixedNow, order.BookedOn)
}

func TestAddOrder_ConflictWithinFourHours(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()
	existing := domain.Order{Number: 1, SubscriberCode: 42, ArrivalAt: tomorrow10, Status: domain.OrderActive}

	f.subscriberRepo.On("FindByCode", ctx, int64(42)).Return(&domain.Subscriber{Code: 42}, nil)
	f.orderRepo.On("ListBySubscriber", ctx, int64(42)).Return([]domain.Order{existing}, nil)

	conflict, err := f.service.CheckConflict(ctx, 42, tomorrow10.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, conflict)

	_, err = f.service.AddOrder(ctx, 42, tomorrow10.Add(3*time.Hour))
	assert.ErrorIs(t, err, domain.ErrReservationConflict)
	f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckConflict_Boundaries(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	f.orderRepo.On("ListBySubscriber", ctx, int64(42)).Return([]domain.Order{
		{Number: 1, ArrivalAt: tomorrow10, Status: domain.OrderActive},
		{Number: 2, ArrivalAt: tomorrow10.Add(24 * time.Hour), Status: domain.OrderCancelled},
	}, nil)

	tests := []struct {
		name    string
		arrival time.Time
		want    bool
	}{
		{"exactly four hours later", tomorrow10.Add(4 * time.Hour), true},
		{"exactly four hours earlier", tomorrow10.Add(-4 * time.Hour), true},
		{"four hours fifteen later", tomorrow10.Add(4*time.Hour + 15*time.Minute), false},
		{"cancelled reservations are ignored", tomorrow10.Add(24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.service.CheckConflict(ctx, 42, tt.arrival)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddOrder_NoCapacity(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	overlapping := []domain.Order{
		{Number: 1, ArrivalAt: tomorrow10.Add(-3 * time.Hour), Status: domain.OrderActive},
		{Number: 2, ArrivalAt: tomorrow10.Add(2 * time.Hour), Status: domain.OrderActive},
	}

	f.subscriberRepo.On("FindByCode", ctx, int64(42)).Return(&domain.Subscriber{Code: 42}, nil)
	f.orderRepo.On("ListBySubscriber", ctx, int64(42)).Return([]domain.Order{}, nil)
	f.lotRepo.On("Capacity", ctx, "north").Return(2, nil)
	f.orderRepo.On("ListActiveBetween", ctx, mock.Anything, mock.Anything).Return(overlapping, nil)

	_, err := f.service.AddOrder(ctx, 42, tomorrow10)

	assert.ErrorIs(t, err, domain.ErrNoCapacity)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestCheckAvailabilityForOrder_TouchingWindowsDoNotOverlap(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	f.lotRepo.On("Capacity", ctx, "north").Return(1, nil)
	f.orderRepo.On("ListActiveBetween", ctx, mock.Anything, mock.Anything).Return([]domain.Order{
		{Number: 1, ArrivalAt: tomorrow10.Add(-4 * time.Hour), Status: domain.OrderActive},
	}, nil)

	ok, err := f.service.CheckAvailabilityForOrder(ctx, tomorrow10)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddOrder_RejectsOutsideBookingWindow(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	_, err := f.service.AddOrder(ctx, 42, fixedNow.Add(3*time.Hour))
	assert.ErrorIs(t, err, domain.ErrOutsideBookingWindow)

	_, err = f.service.AddOrder(ctx, 42, tomorrow10.Add(7*time.Minute))
	assert.ErrorIs(t, err, domain.ErrInvalidArrivalTime)
}

func TestAddOrder_UnknownSubscriber(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	f.subscriberRepo.On("FindByCode", ctx, int64(9)).Return(nil, domain.ErrSubscriberNotFound)

	_, err := f.service.AddOrder(ctx, 9, tomorrow10)
	assert.ErrorIs(t, err, domain.ErrSubscriberNotFound)
}

func TestDeleteOrder(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	f.orderRepo.On("UpdateStatus", ctx, int64(5), domain.OrderActive, domain.OrderCancelled).Return(nil).Once()
	f.orderRepo.On("UpdateStatus", ctx, int64(5), domain.OrderActive, domain.OrderCancelled).Return(domain.ErrOrderNotFound).Once()

	require.NoError(t, f.service.DeleteOrder(ctx, 5))
	assert.ErrorIs(t, f.service.DeleteOrder(ctx, 5), domain.ErrOrderNotFound)
}

func TestListReservations_ProjectsElapsedAsInactive(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	f.orderRepo.On("ListBySubscriber", ctx, int64(42)).Return([]domain.Order{
		{Number: 1, ArrivalAt: fixedNow.Add(-5 * time.Hour), Status: domain.OrderActive},
		{Number: 2, ArrivalAt: tomorrow10, Status: domain.OrderActive},
		{Number: 3, ArrivalAt: fixedNow.Add(-48 * time.Hour), Status: domain.OrderFulfilled},
	}, nil)

	orders, err := f.service.ListReservations(ctx, 42)

	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, domain.OrderInactive, orders[0].Status)
	assert.Equal(t, domain.OrderActive, orders[1].Status)
	assert.Equal(t, domain.OrderFulfilled, orders[2].Status)
}

func TestValidateForEntry(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		order   *domain.Order
		lookup  error
		wantErr error
	}{
		{
			name:  "due reservation",
			order: &domain.Order{Number: 1, SubscriberCode: 42, ArrivalAt: fixedNow.Add(30 * time.Minute), Status: domain.OrderActive},
		},
		{
			name:    "unknown code",
			lookup:  domain.ErrOrderNotFound,
			wantErr: domain.ErrConfirmationNotFound,
		},
		{
			name:    "belongs to someone else",
			order:   &domain.Order{Number: 1, SubscriberCode: 7, ArrivalAt: fixedNow, Status: domain.OrderActive},
			wantErr: domain.ErrConfirmationNotFound,
		},
		{
			name:    "already used",
			order:   &domain.Order{Number: 1, SubscriberCode: 42, ArrivalAt: fixedNow, Status: domain.OrderFulfilled},
			wantErr: domain.ErrOrderNotActive,
		},
		{
			name:    "too early",
			order:   &domain.Order{Number: 1, SubscriberCode: 42, ArrivalAt: fixedNow.Add(5 * time.Hour), Status: domain.OrderActive},
			wantErr: domain.ErrReservationNotDue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReservationFixture(t)
			f.orderRepo.On("GetByConfirmationCode", ctx, "654321").Return(tt.order, tt.lookup)

			order, err := f.service.ValidateForEntry(ctx, 42, "654321")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.order.Number, order.Number)
		})
	}
}

func TestExpireElapsed(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	f.orderRepo.On("ListElapsed", ctx, fixedNow.Add(-4*time.Hour)).Return([]int64{1, 2, 3}, nil)
	f.orderRepo.On("UpdateStatus", ctx, int64(1), domain.OrderActive, domain.OrderInactive).Return(nil)
	f.orderRepo.On("UpdateStatus", ctx, int64(2), domain.OrderActive, domain.OrderInactive).Return(domain.ErrOrderNotFound)
	f.orderRepo.On("UpdateStatus", ctx, int64(3), domain.OrderActive, domain.OrderInactive).Return(errors.New("connection reset"))

	n, err := f.service.ExpireElapsed(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
