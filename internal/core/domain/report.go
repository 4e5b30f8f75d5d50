package domain

import "time"

type MonthlyReport struct {
	Month              string              `json:"month"`
	GeneratedAt        time.Time           `json:"generated_at"`
	Sessions           int                 `json:"sessions"`
	DelayedSessions    int                 `json:"delayed_sessions"`
	ExtendedSessions   int                 `json:"extended_sessions"`
	ReservationEntries int                 `json:"reservation_entries"`
	AverageMinutes     float64             `json:"average_minutes"`
	OrdersByStatus     map[OrderStatus]int `json:"orders_by_status"`
	PeakOccupancy      map[string]int      `json:"peak_occupancy"`
}
