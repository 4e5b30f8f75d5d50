package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smart_parking"

var EntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "sessions",
	Name:      "entries_total",
	Help:      "Vehicle entry attempts by path and result",
}, []string{"path", "result"})

var ExitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "sessions",
	Name:      "exits_total",
	Help:      "Collected vehicles by status at collection time",
}, []string{"status"})

var ExtensionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "sessions",
	Name:      "extensions_total",
	Help:      "Session extension attempts by result",
}, []string{"result"})

var OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "orders",
	Name:      "requests_total",
	Help:      "Reservation requests by operation and result",
}, []string{"operation", "result"})

var OccupiedSpaces = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "lots",
	Name:      "occupied_spaces",
	Help:      "Occupied spaces per lot as of the last stats computation",
}, []string{"lot"})

var LateNotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "monitor",
	Name:      "late_notifications_total",
	Help:      "Late-pickup notifications by result",
}, []string{"result"})

var MonitorPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "monitor",
	Name:      "polls_total",
	Help:      "Late-pickup monitor poll cycles by result",
}, []string{"result"})

// Result maps an error to the label used by the counters above.
func Result(err error) string {
	if err != nil {
		return "failure"
	}

	return "success"
}

var OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "api",
	Name:      "operations_total",
	Help:      "Dispatched operations by name and outcome kind",
}, []string{"operation", "outcome"})
