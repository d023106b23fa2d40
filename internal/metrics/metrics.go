// Package metrics holds the Prometheus collectors of the ledger service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "groupledger"

// Metrics groups the ledger collectors
type Metrics struct {
	expenses        *prometheus.CounterVec
	settlements     prometheus.Counter
	deletions       *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	balanceDuration prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		expenses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_recorded_total",
			Help:      "Expenses recorded, by split method.",
		}, []string{"method"}),
		settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_recorded_total",
			Help:      "Settlements recorded.",
		}),
		deletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_deleted_total",
			Help:      "Expenses and settlements deleted, by kind.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_rejected_total",
			Help:      "Ledger writes rejected by validation, by operation and reason.",
		}, []string{"operation", "reason"}),
		balanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_compute_seconds",
			Help:      "Time spent folding a group's records into balances.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_cache_lookups_total",
			Help:      "Balance cache lookups, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.expenses, m.settlements, m.deletions, m.rejections, m.balanceDuration, m.cacheLookups)
	return m
}

func (m *Metrics) ExpenseRecorded(method string) {
	if m == nil {
		return
	}
	m.expenses.WithLabelValues(method).Inc()
}

func (m *Metrics) SettlementRecorded() {
	if m == nil {
		return
	}
	m.settlements.Inc()
}

// RecordDeleted counts a deletion; kind is "expense" or "settlement".
func (m *Metrics) RecordDeleted(kind string) {
	if m == nil {
		return
	}
	m.deletions.WithLabelValues(kind).Inc()
}

func (m *Metrics) WriteRejected(operation, reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) BalancesComputed(d time.Duration) {
	if m == nil {
		return
	}
	m.balanceDuration.Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
