// Package metrics exposes Prometheus counters for the extraction pipeline.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExtractionsTotal counts processed documents by type and by the tier
	// that produced the amounts (pattern, table, delegated, failed).
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propledger_extractions_total",
		Help: "Documents processed, by document type and extraction source tier.",
	}, []string{"doc_type", "source"})

	// DelegatedCallsTotal counts delegated service calls by purpose and outcome.
	DelegatedCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propledger_delegated_calls_total",
		Help: "Delegated classification/extraction calls, by purpose and outcome.",
	}, []string{"purpose", "outcome"})

	// RulesLearnedTotal counts learned rules minted by the delegated classifier.
	RulesLearnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propledger_rules_learned_total",
		Help: "Learned keyword rules minted by delegated classification.",
	})

	// MergeChangesTotal counts merge change-log entries by status.
	MergeChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propledger_merge_changes_total",
		Help: "Ledger merge change-log entries, by status.",
	}, []string{"status"})
)

// Serve starts the /metrics endpoint on the given port. It blocks, so run it
// on its own goroutine.
func Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
