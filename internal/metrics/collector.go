package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type EventType string

const (
	EventTickCompleted  EventType = "tick_completed"
	EventFetchSucceeded EventType = "fetch_succeeded"
	EventFetchFailed    EventType = "fetch_failed"
	EventUpdateSent     EventType = "update_sent"
	EventUpdateFailed   EventType = "update_failed"
)

type Event struct {
	Type       EventType
	Timestamp  time.Time
	Duration   time.Duration
	Online     bool
	Players    int
	MaxPlayers int
	// Op names the failed update step for EventUpdateFailed.
	Op string
}

type Collector struct {
	eventCh  chan Event
	metrics  *Metrics
	registry *prometheus.Registry
	prom     *promMetrics
	logger   *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		eventCh:  make(chan Event, bufferSize),
		metrics:  NewMetrics(),
		registry: registry,
		prom:     newPromMetrics(registry),
		logger:   logger,
	}
}

func (c *Collector) EventChannel() chan<- Event {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventTickCompleted:
		c.metrics.RecordTick(event.Timestamp, event.Duration)
		c.prom.ticks.Inc()
		c.prom.tickDuration.Observe(event.Duration.Seconds())
		c.prom.lastTick.Set(float64(event.Timestamp.Unix()))

	case EventFetchSucceeded:
		c.metrics.RecordFetch(event.Timestamp, event.Online, event.Players, event.MaxPlayers)
		c.prom.players.Set(float64(event.Players))
		c.prom.maxPlayers.Set(float64(event.MaxPlayers))
		if event.Online {
			c.prom.online.Set(1)
		} else {
			c.prom.online.Set(0)
		}

	case EventFetchFailed:
		c.metrics.RecordFetchFailure()
		c.prom.fetchFailures.Inc()

	case EventUpdateSent:
		c.metrics.RecordUpdate()
		c.prom.updates.Inc()

	case EventUpdateFailed:
		c.metrics.RecordUpdateFailure(event.Op)
		c.prom.updateFailures.WithLabelValues(event.Op).Inc()
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}

// Handler serves the Prometheus exposition of this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
