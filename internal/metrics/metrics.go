package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_events_total",
		Help: "Total events processed",
	}, []string{"event_type"})

	LedgerEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_ledger_entries_total",
		Help: "Total ledger entries created",
	}, []string{"entry_type"})

	// BalanceTotal tracks the sum of all ledger entries for the currency of
	// the last processed event. Best-effort: updates are lock-free and may
	// lag concurrent writers.
	BalanceTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "restaurant_balance_total",
		Help: "Current total balance across all accounts",
	})

	PayoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_payouts_total",
		Help: "Total payouts executed",
	}, []string{"status"})
)
