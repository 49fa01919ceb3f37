package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"trip-coordinator/internal/analytics"
	"trip-coordinator/internal/api"
	"trip-coordinator/internal/config"
	"trip-coordinator/internal/eta"
	"trip-coordinator/internal/grouping"
	"trip-coordinator/internal/metrics"
	"trip-coordinator/internal/publisher"
	"trip-coordinator/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sqlDB, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db open")
	}
	defer sqlDB.Close()
	if err := store.Ping(ctx, sqlDB); err != nil {
		log.Fatal().Err(err).Msg("db ping")
	}

	st := store.New(sqlDB, cfg.QueryTimeout)
	if err := st.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("init schema")
	}

	// Metrics setup; empty address disables the endpoint
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector()
		srv := mcol.Serve(cfg.MetricsAddr)
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// NATS event feed; empty URL disables publishing
	var pub *publisher.Publisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewPublisher(cfg.NATSURL, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatal().Err(err).Msg("nats connect")
		}
		defer pub.Close()
	}

	grp := grouping.NewService(st, time.Now)
	engine := eta.NewEngine(st, time.Now, cfg.Location, mcol, snapshotSink(pub))
	an := analytics.NewService(st)

	server := api.NewServer(st, grp, engine, an, pub, mcol)
	go func() {
		<-ctx.Done()
		if err := server.Shutdown(); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("trip coordinator listening")
	if err := server.Listen(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("http listen")
	}
	log.Info().Msg("shutdown complete")
}

// snapshotSink adapts the optional publisher to the engine's sink
// interface; a nil publisher means no sink at all.
func snapshotSink(pub *publisher.Publisher) eta.SnapshotSink {
	if pub == nil {
		return nil
	}
	return pub
}

// wrapPublisherMetrics adapts the Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
