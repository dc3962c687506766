package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/df-mc/atomic"
	"github.com/google/uuid"

	"github.com/marne-tools/status-bot/internal/metrics"
	"github.com/marne-tools/status-bot/internal/presence"
	"github.com/marne-tools/status-bot/internal/serverstatus"
)

type Fetcher interface {
	Fetch(ctx context.Context, id serverstatus.Identifier, game string) (serverstatus.ServerStatus, error)
}

type Updater interface {
	Update(ctx context.Context, st serverstatus.ServerStatus) error
}

// Reporter receives transient errors for out-of-band reporting.
type Reporter interface {
	Capture(err error, tags map[string]string)
}

// State is what the last tick left behind. Status and Activity keep the last
// successful fetch when a later tick failed.
type State struct {
	Status    serverstatus.ServerStatus `json:"status"`
	Activity  string                    `json:"activity"`
	HasStatus bool                      `json:"has_status"`
	TickAt    time.Time                 `json:"tick_at"`
	LastError string                    `json:"last_error,omitempty"`
}

type Options struct {
	Server   serverstatus.Identifier
	Game     string
	Interval time.Duration
	// Events is optional; events are dropped when it is full.
	Events chan<- metrics.Event
	// Reporter is optional.
	Reporter Reporter
}

type Poller struct {
	logger   *slog.Logger
	fetcher  Fetcher
	updater  Updater
	server   serverstatus.Identifier
	game     string
	interval time.Duration
	events   chan<- metrics.Event
	reporter Reporter
	state    atomic.Value[State]
	now      func() time.Time
}

func New(logger *slog.Logger, fetcher Fetcher, updater Updater, opts Options) (*Poller, error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("poller: interval must be positive, got %s", opts.Interval)
	}
	if fetcher == nil || updater == nil {
		return nil, errors.New("poller: fetcher and updater are required")
	}

	return &Poller{
		logger:   logger,
		fetcher:  fetcher,
		updater:  updater,
		server:   opts.Server,
		game:     opts.Game,
		interval: opts.Interval,
		events:   opts.Events,
		reporter: opts.Reporter,
		now:      time.Now,
	}, nil
}

// Run ticks once immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Started monitoring server",
		slog.String("server", p.server.String()),
		slog.String("game", p.game),
		slog.Duration("interval", p.interval))

	p.Tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Stopped monitoring server",
				slog.String("server", p.server.String()))
			return

		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs one fetch and update. It never exceeds one interval.
func (p *Poller) Tick(ctx context.Context) {
	start := p.now()
	log := p.logger.With(slog.String("tick", uuid.NewString()))

	tickCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	state := p.state.Load()
	state.TickAt = start
	state.LastError = ""

	defer func() {
		p.state.Store(state)
		p.emit(metrics.Event{
			Type:      metrics.EventTickCompleted,
			Timestamp: start,
			Duration:  p.now().Sub(start),
		})
	}()

	st, err := p.fetcher.Fetch(tickCtx, p.server, p.game)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		state.LastError = err.Error()
		log.Error("Failed to fetch server status", slog.Any("err", err))
		p.emit(metrics.Event{Type: metrics.EventFetchFailed, Timestamp: start})
		p.report(err, "fetch")
		return
	}

	p.emit(metrics.Event{
		Type:       metrics.EventFetchSucceeded,
		Timestamp:  start,
		Online:     st.IsOnline,
		Players:    st.PlayerCount,
		MaxPlayers: st.MaxPlayers,
	})

	state.Status = st
	state.HasStatus = true
	state.Activity = presence.Format(st)

	log.Debug("Fetched server status",
		slog.String("server", st.Name),
		slog.Bool("online", st.IsOnline),
		slog.Int("players", st.PlayerCount),
		slog.Int("max_players", st.MaxPlayers),
		slog.String("map", st.MapName))

	if err := p.updater.Update(tickCtx, st); err != nil {
		if ctx.Err() != nil {
			return
		}

		op := "update"
		var updateErr *presence.UpdateError
		if errors.As(err, &updateErr) {
			op = updateErr.Op
		}

		state.LastError = err.Error()
		log.Warn("Failed to update presence", slog.String("op", op), slog.Any("err", err))
		p.emit(metrics.Event{Type: metrics.EventUpdateFailed, Timestamp: start, Op: op})
		p.report(err, op)
		return
	}

	p.emit(metrics.Event{Type: metrics.EventUpdateSent, Timestamp: start})
}

// State returns the result of the most recent tick. It is safe to call from
// any goroutine.
func (p *Poller) State() State {
	return p.state.Load()
}

func (p *Poller) emit(event metrics.Event) {
	if p.events == nil {
		return
	}

	select {
	case p.events <- event:
	default:
	}
}

func (p *Poller) report(err error, op string) {
	if p.reporter == nil {
		return
	}
	p.reporter.Capture(err, map[string]string{
		"op":     op,
		"server": p.server.String(),
		"game":   p.game,
	})
}
