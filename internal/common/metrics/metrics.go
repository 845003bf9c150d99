package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	SubmissionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_submissions_processed_total",
			Help: "Total number of complaint submissions processed",
		},
		[]string{"status"},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_side_effect_failures_total",
			Help: "Total number of non-fatal collaborator failures",
		},
		[]string{"collaborator"},
	)

	LedgerMigrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "complaint_ledger_migrations_total",
			Help: "Total number of in-place ledger schema migrations",
		},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "complaint_pipeline_duration_seconds",
			Help: "Duration of a full pipeline run in seconds",
		},
	)
)

// Push sends the default registry to a pushgateway. The pipeline is a
// run-to-completion job, so there is no listener for a scrape.
func Push(gatewayURL, jobName string) error {
	if gatewayURL == "" {
		return nil
	}
	return push.New(gatewayURL, jobName).
		Gatherer(prometheus.DefaultGatherer).
		Push()
}
