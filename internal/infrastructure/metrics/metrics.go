package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger-core Prometheus collectors.
type Metrics struct {
	EntriesPosted          prometheus.Counter
	IdempotentReplays      prometheus.Counter
	DuplicateKeyConflicts  prometheus.Counter
	BalanceVersionsWritten prometheus.Counter
	PostingDuration        prometheus.Histogram
}

// New registers and returns the ledger metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		EntriesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_journal_entries_posted_total",
			Help: "Total number of journal entries posted",
		}),
		IdempotentReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_idempotent_replays_total",
			Help: "Total number of postings answered from the idempotency store",
		}),
		DuplicateKeyConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_duplicate_key_conflicts_total",
			Help: "Total number of idempotency keys reused with a different payload",
		}),
		BalanceVersionsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_versions_written_total",
			Help: "Total number of temporal balance versions written",
		}),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_posting_duration_seconds",
			Help:    "Journal entry posting duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
}
