package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts catalog events that the API does not report to callers.
type Metrics struct {
	MirrorFailures  *prometheus.CounterVec
	BackfillRecords *prometheus.CounterVec
	BackfillRuns    *prometheus.CounterVec
	ReconciledShops prometheus.Counter
	ShopQueries     *prometheus.CounterVec
}

// NewMetrics creates the catalog collectors and registers them on reg when it
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MirrorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopapp",
			Name:      "index_mirror_failures_total",
			Help:      "Search index writes that failed after the relational write committed.",
		}, []string{"op"}),
		BackfillRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopapp",
			Name:      "backfill_records_total",
			Help:      "Shops processed by the index backfill, by outcome.",
		}, []string{"result"}),
		BackfillRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopapp",
			Name:      "backfill_runs_total",
			Help:      "Backfill invocations, by outcome.",
		}, []string{"result"}),
		ReconciledShops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopapp",
			Name:      "reconciled_shops_total",
			Help:      "Shops re-mirrored by the index reconciler.",
		}),
		ShopQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopapp",
			Name:      "shop_queries_total",
			Help:      "Shop listings, by routing rule.",
		}, []string{"rule"}),
	}
	if reg != nil {
		reg.MustRegister(m.MirrorFailures, m.BackfillRecords, m.BackfillRuns, m.ReconciledShops, m.ShopQueries)
	}
	return m
}
