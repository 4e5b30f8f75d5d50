package domain_test

import (
	"testing"
	"time"

	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinArrivalWindow_IsSymmetric(t *testing.T) {
	base := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

	for _, d := range []time.Duration{4 * time.Hour, -4 * time.Hour} {
		assert.True(t, domain.WithinArrivalWindow(base, base.Add(d)))
		assert.True(t, domain.WithinArrivalWindow(base.Add(d), base))
	}

	for _, d := range []time.Duration{4*time.Hour + time.Minute, -(4*time.Hour + time.Minute)} {
		assert.False(t, domain.WithinArrivalWindow(base, base.Add(d)))
		assert.False(t, domain.WithinArrivalWindow(base.Add(d), base))
	}
}

func TestSlotsOverlap_HalfOpen(t *testing.T) {
	base := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

	assert.True(t, domain.SlotsOverlap(base, base.Add(3*time.Hour+45*time.Minute)))
	assert.False(t, domain.SlotsOverlap(base, base.Add(4*time.Hour)))
	assert.False(t, domain.SlotsOverlap(base, base.Add(-4*time.Hour)))
}

func TestValidateArrival(t *testing.T) {
	now := time.Date(2026, 5, 20, 15, 7, 0, 0, time.UTC)

	tests := []struct {
		name    string
		arrival time.Time
		wantErr error
	}{
		{"tomorrow midnight", time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC), nil},
		{"last day late evening", time.Date(2026, 5, 27, 23, 45, 0, 0, time.UTC), nil},
		{"today", time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC), domain.ErrOutsideBookingWindow},
		{"eight days ahead", time.Date(2026, 5, 28, 0, 0, 0, 0, time.UTC), domain.ErrOutsideBookingWindow},
		{"past", time.Date(2026, 5, 19, 10, 0, 0, 0, time.UTC), domain.ErrArrivalInPast},
		{"off granularity", time.Date(2026, 5, 22, 10, 10, 0, 0, time.UTC), domain.ErrInvalidArrivalTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateArrival(tt.arrival, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseArrival(t *testing.T) {
	got, err := domain.ParseArrival("2026-05-21", "10:15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 21, 10, 15, 0, 0, time.UTC), got)

	_, err = domain.ParseArrival("21/05/2026", "10:15", time.UTC)
	assert.ErrorIs(t, err, domain.ErrInvalidArrivalFormat)
}

func TestOrder_EffectiveStatus(t *testing.T) {
	arrival := time.Date(2026, 5, 21, 10, 0, 0, 0, time.UTC)
	order := domain.Order{ArrivalAt: arrival, Status: domain.OrderActive}

	assert.Equal(t, domain.OrderActive, order.EffectiveStatus(arrival.Add(4*time.Hour)))
	assert.Equal(t, domain.OrderInactive, order.EffectiveStatus(arrival.Add(4*time.Hour+time.Second)))

	order.Status = domain.OrderCancelled
	assert.Equal(t, domain.OrderCancelled, order.EffectiveStatus(arrival.Add(24*time.Hour)))
}
