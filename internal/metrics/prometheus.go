package metrics

import "github.com/prometheus/client_golang/prometheus"

type promMetrics struct {
	ticks          prometheus.Counter
	tickDuration   prometheus.Histogram
	lastTick       prometheus.Gauge
	fetchFailures  prometheus.Counter
	updates        prometheus.Counter
	updateFailures *prometheus.CounterVec
	players        prometheus.Gauge
	maxPlayers     prometheus.Gauge
	online         prometheus.Gauge
}

func newPromMetrics(registry *prometheus.Registry) *promMetrics {
	m := &promMetrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statusbot_ticks_total",
			Help: "Total number of completed poll ticks.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statusbot_tick_duration_seconds",
			Help:    "Duration of a poll tick (fetch and update) in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		lastTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statusbot_last_tick_timestamp_seconds",
			Help: "Unix time of the last completed tick.",
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statusbot_fetch_failures_total",
			Help: "Total number of failed status API polls.",
		}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statusbot_presence_updates_total",
			Help: "Total number of successful presence updates.",
		}),
		updateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statusbot_presence_update_failures_total",
			Help: "Total number of rejected presence updates per step.",
		}, []string{"op"}),
		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statusbot_server_players",
			Help: "Players on the monitored server at the last successful poll.",
		}),
		maxPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statusbot_server_max_players",
			Help: "Player slots of the monitored server at the last successful poll.",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statusbot_server_online",
			Help: "1 when the monitored server was listed at the last successful poll.",
		}),
	}

	registry.MustRegister(
		m.ticks,
		m.tickDuration,
		m.lastTick,
		m.fetchFailures,
		m.updates,
		m.updateFailures,
		m.players,
		m.maxPlayers,
		m.online,
	)

	return m
}
