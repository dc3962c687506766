package metrics

import (
	"slices"
	"sync"
	"time"
)

const maxTickSamples = 500

type Metrics struct {
	mutex           sync.RWMutex
	ticks           int64
	fetchFailures   int64
	updates         int64
	updateFailures  map[string]int64
	tickDurations   []time.Duration
	lastTick        time.Time
	lastFetch       time.Time
	online          bool
	players         int
	maxPlayers      int
	consecutiveFail int64
	startTime       time.Time
}

type Snapshot struct {
	Ticks               int64            `json:"ticks"`
	FetchFailures       int64            `json:"fetch_failures"`
	ConsecutiveFailures int64            `json:"consecutive_failures"`
	Updates             int64            `json:"updates"`
	UpdateFailures      map[string]int64 `json:"update_failures"`
	LastTick            time.Time        `json:"last_tick"`
	LastFetch           time.Time        `json:"last_successful_fetch"`
	Online              bool             `json:"online"`
	Players             int              `json:"players"`
	MaxPlayers          int              `json:"max_players"`
	AvgTick             time.Duration    `json:"avg_tick"`
	P95Tick             time.Duration    `json:"p95_tick"`
	Uptime              time.Duration    `json:"uptime"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		updateFailures: make(map[string]int64),
		startTime:      time.Now(),
	}
}

func (m *Metrics) RecordTick(at time.Time, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.ticks++
	m.lastTick = at
	m.tickDurations = append(m.tickDurations, duration)
	if len(m.tickDurations) > maxTickSamples {
		m.tickDurations = m.tickDurations[1:]
	}
}

func (m *Metrics) RecordFetch(at time.Time, online bool, players, maxPlayers int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.lastFetch = at
	m.consecutiveFail = 0
	m.online = online
	m.players = players
	m.maxPlayers = maxPlayers
}

func (m *Metrics) RecordFetchFailure() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.fetchFailures++
	m.consecutiveFail++
}

func (m *Metrics) RecordUpdate() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.updates++
}

func (m *Metrics) RecordUpdateFailure(op string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.updateFailures[op]++
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Ticks:               m.ticks,
		FetchFailures:       m.fetchFailures,
		ConsecutiveFailures: m.consecutiveFail,
		Updates:             m.updates,
		UpdateFailures:      make(map[string]int64, len(m.updateFailures)),
		LastTick:            m.lastTick,
		LastFetch:           m.lastFetch,
		Online:              m.online,
		Players:             m.players,
		MaxPlayers:          m.maxPlayers,
		Uptime:              time.Since(m.startTime),
	}

	for op, n := range m.updateFailures {
		snap.UpdateFailures[op] = n
	}

	if len(m.tickDurations) > 0 {
		sorted := slices.Clone(m.tickDurations)
		slices.Sort(sorted)

		snap.AvgTick = average(sorted)
		snap.P95Tick = percentile(sorted, 0.95)
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
