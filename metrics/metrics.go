package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	currency "github.com/malusev998/trip-currency"
)

const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeSkipped   = "skipped"
	OutcomeDiscarded = "discarded"
)

var (
	// Registry holds the rate engine collectors.
	Registry = prometheus.NewRegistry()

	refreshAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trip_currency",
			Subsystem: "rates",
			Name:      "refresh_attempts_total",
			Help:      "Rate refresh attempts by outcome.",
		},
		[]string{"outcome"},
	)

	refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trip_currency",
			Subsystem: "rates",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of rate refresh attempts that reached the source.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
	)

	snapshotLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trip_currency",
			Subsystem: "rates",
			Name:      "snapshot_live",
			Help:      "1 when the current snapshot comes from the live source, 0 for fallback data.",
		},
	)

	snapshotCaptured = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trip_currency",
			Subsystem: "rates",
			Name:      "snapshot_captured_timestamp_seconds",
			Help:      "Unix time the current snapshot was captured.",
		},
	)

	conversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trip_currency",
			Subsystem: "conversion",
			Name:      "requests_total",
			Help:      "Conversion requests by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		refreshAttempts,
		refreshDuration,
		snapshotLive,
		snapshotCaptured,
		conversions,
	)
}

// Collector reports one cache to Registry. The snapshot gauges are process
// wide, so only the serving cache should be given a Collector.
type Collector struct{}

func (Collector) RecordRefresh(outcome string, duration time.Duration) {
	RecordRefresh(outcome, duration)
}

func (Collector) RecordSnapshot(snapshot *currency.Snapshot) {
	RecordSnapshot(snapshot)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRefresh counts one refresh attempt. Skipped attempts never reached the
// source, so their duration is not observed.
func RecordRefresh(outcome string, duration time.Duration) {
	refreshAttempts.WithLabelValues(outcome).Inc()

	if outcome != OutcomeSkipped {
		refreshDuration.Observe(duration.Seconds())
	}
}

func RecordSnapshot(snapshot *currency.Snapshot) {
	if snapshot == nil {
		return
	}

	if snapshot.IsLive() {
		snapshotLive.Set(1)
	} else {
		snapshotLive.Set(0)
	}

	snapshotCaptured.Set(float64(snapshot.CapturedAt.Unix()))
}

func RecordConversion(outcome string) {
	conversions.WithLabelValues(outcome).Inc()
}
