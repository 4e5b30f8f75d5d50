package domain

import "time"

const (
	ArrivalWindow      = 4 * time.Hour
	SlotGranularity    = 15 * time.Minute
	BookingHorizonDays = 7
)

// WithinArrivalWindow reports whether two arrival times are at most four
// hours apart. It is the conflict rule used both at booking and at entry.
func WithinArrivalWindow(a, b time.Time) bool {
	return absDuration(a.Sub(b)) <= ArrivalWindow
}

// SlotsOverlap reports whether the half-open windows [a, a+4h) and
// [b, b+4h) intersect.
func SlotsOverlap(a, b time.Time) bool {
	return absDuration(a.Sub(b)) < ArrivalWindow
}

func WindowElapsed(arrival, now time.Time) bool {
	return now.After(arrival.Add(ArrivalWindow))
}

// ValidateArrival enforces the booking window: tomorrow 00:00 through
// today+7 23:59 in the location of now, on quarter-hour boundaries, and
// strictly after now.
func ValidateArrival(arrival, now time.Time) error {
	if arrival.Second() != 0 || arrival.Nanosecond() != 0 || arrival.Minute()%15 != 0 {
		return ErrInvalidArrivalTime
	}

	if !arrival.After(now) {
		return ErrArrivalInPast
	}

	local := arrival.In(now.Location())
	today := StartOfDay(now)
	first := today.AddDate(0, 0, 1)
	end := today.AddDate(0, 0, BookingHorizonDays+1)

	if local.Before(first) || !local.Before(end) {
		return ErrOutsideBookingWindow
	}

	return nil
}

func ParseArrival(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, ErrInvalidArrivalFormat
	}

	return t, nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}
