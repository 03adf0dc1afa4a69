package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/repokit/pkg/failure"
	"github.com/bft-labs/repokit/pkg/repository"
)

// Observer records repository activity as Prometheus metrics.
type Observer struct {
	operations     *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	mirrorFailures *prometheus.CounterVec

	refreshes      *prometheus.CounterVec
	refreshedItems prometheus.Gauge
	lastRefresh    prometheus.Gauge
}

var _ repository.Observer = (*Observer)(nil)

// NewObserver registers the repokit metrics with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	f := promauto.With(reg)
	return &Observer{
		// Operations tracks every repository operation by outcome
		operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repokit_operations_total",
				Help: "Total number of repository operations",
			},
			[]string{"op", "strategy", "source", "outcome"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "repokit_operation_duration_seconds",
				Help:    "Repository operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "source"},
		),
		cacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repokit_cache_hits_total",
				Help: "Reads served from the local cache",
			},
			[]string{"op"},
		),
		cacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repokit_cache_misses_total",
				Help: "Local reads that fell back to the remote source",
			},
			[]string{"op", "reason"},
		),
		mirrorFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repokit_mirror_failures_total",
				Help: "Best-effort cache writes that failed",
			},
			[]string{"op"},
		),
		refreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repokit_refreshes_total",
				Help: "Cache refresh passes by result",
			},
			[]string{"result"},
		),
		refreshedItems: f.NewGauge(prometheus.GaugeOpts{
			Name: "repokit_refreshed_items",
			Help: "Entities fetched by the last successful refresh",
		}),
		lastRefresh: f.NewGauge(prometheus.GaugeOpts{
			Name: "repokit_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		}),
	}
}

// OnOutcome implements repository.Observer.
func (o *Observer) OnOutcome(op repository.Operation, strategy repository.Strategy, source repository.Source, err error, d time.Duration) {
	o.operations.WithLabelValues(string(op), strategy.String(), string(source), outcomeLabel(err)).Inc()
	o.latency.WithLabelValues(string(op), string(source)).Observe(d.Seconds())
}

// OnCacheHit implements repository.Observer.
func (o *Observer) OnCacheHit(op repository.Operation) {
	o.cacheHits.WithLabelValues(string(op)).Inc()
}

// OnCacheMiss implements repository.Observer.
func (o *Observer) OnCacheMiss(op repository.Operation, err error) {
	reason := "empty"
	switch {
	case errors.Is(err, repository.ErrNotFound):
		reason = "not_found"
	case err != nil:
		reason = "error"
	}
	o.cacheMisses.WithLabelValues(string(op), reason).Inc()
}

// OnMirrorFailure implements repository.Observer.
func (o *Observer) OnMirrorFailure(op repository.Operation, _ error) {
	o.mirrorFailures.WithLabelValues(string(op)).Inc()
}

// OnRefresh records one refresher pass.
func (o *Observer) OnRefresh(items int, err error) {
	if err != nil {
		o.refreshes.WithLabelValues("error").Inc()
		return
	}
	o.refreshes.WithLabelValues("ok").Inc()
	o.refreshedItems.Set(float64(items))
	o.lastRefresh.SetToCurrentTime()
}

// outcomeLabel is "ok" or the failure kind, e.g. "network".
func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if f, ok := failure.As(err); ok {
		return f.Kind.String()
	}
	return failure.KindGeneric.String()
}
