package domain

import "time"

type SessionStatus string

const (
	StatusOnTime  SessionStatus = "On time"
	StatusDelayed SessionStatus = "Delayed"
)

const (
	RegularAllowanceMinutes  = 240
	ExtendedAllowanceMinutes = 480
)

// StatusOf is the single lateness rule shared by history, the late-pickup
// monitor and reporting. Elapsed time is counted in whole minutes and the
// allowance itself is still on time.
func StatusOf(entry, end time.Time, extended bool) SessionStatus {
	elapsed := int64(end.Sub(entry) / time.Minute)

	limit := int64(RegularAllowanceMinutes)
	if extended {
		limit = ExtendedAllowanceMinutes
	}

	if elapsed > limit {
		return StatusDelayed
	}

	return StatusOnTime
}
