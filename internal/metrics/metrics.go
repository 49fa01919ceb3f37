package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Collector struct {
	reg *prometheus.Registry

	ETAComputations prometheus.Counter
	SnapshotWrites  prometheus.Counter
	LocationUpdates prometheus.Counter
	Regroups        prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	EvalDuration    prometheus.Histogram
	PublishDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ETAComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_eta_computations_total",
			Help: "Total ETA computations that produced an estimate.",
		}),
		SnapshotWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_eta_snapshots_total",
			Help: "Total ETA snapshots persisted.",
		}),
		LocationUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_location_updates_total",
			Help: "Total location observations recorded.",
		}),
		Regroups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_regroups_total",
			Help: "Total wholesale transport regroup operations applied.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coordinator_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		EvalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coordinator_day_eval_duration_seconds",
			Help:    "Duration of per-day lateness evaluations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coordinator_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.ETAComputations, c.SnapshotWrites, c.LocationUpdates,
		c.Regroups,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.EvalDuration, c.PublishDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics listening")
	return srv
}
