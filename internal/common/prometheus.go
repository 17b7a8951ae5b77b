package common

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	HTTPRequestTotal           = "http_request_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	LedgerDispatchFailureTotal = "ledger_dispatch_failure_total"
	ClaimResolvedTotal         = "claim_resolved_total"
)

var PromCounters = map[string]*prometheus.CounterVec{
	HTTPRequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: HTTPRequestTotal,
		Help: "The total number of http requests",
	}, []string{"path", "code"}),

	LedgerDispatchFailureTotal: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: LedgerDispatchFailureTotal,
		Help: "The total number of ledger calls the connector refused to accept",
	}, []string{"call"}),

	ClaimResolvedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: ClaimResolvedTotal,
		Help: "The total number of resolved claims",
	}, []string{"kind", "success"}),
}

var PromHistograms = map[string]*prometheus.HistogramVec{
	HTTPRequestDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    HTTPRequestDurationSeconds,
		Help:    "The duration of http requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "code"}),
}
