// Package health serves the liveness probe and the read-only status views
// on the local listener.
package health

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marne-tools/status-bot/internal/circuitbreaker"
	"github.com/marne-tools/status-bot/internal/metrics"
	"github.com/marne-tools/status-bot/internal/poller"
)

type StateSource interface {
	State() poller.State
}

type MetricsSource interface {
	Snapshot() metrics.Snapshot
	Handler() http.Handler
}

// BreakerSource reports the artwork circuit breakers.
type BreakerSource interface {
	Stats() map[string]circuitbreaker.State
}

type Handler struct {
	logger    *slog.Logger
	states    StateSource
	metrics   MetricsSource
	breakers  BreakerSource
	startedAt time.Time
	now       func() time.Time
}

// NewHandler builds the health handler. breakers may be nil.
func NewHandler(logger *slog.Logger, states StateSource, m MetricsSource, breakers BreakerSource) *Handler {
	return &Handler{
		logger:    logger,
		states:    states,
		metrics:   m,
		breakers:  breakers,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
	h.startedAt = now()
}

// Router builds the gin engine serving /, /status and /metrics.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), h.logRequests)

	router.GET("/", h.liveness)
	router.GET("/status", h.status)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	return router
}

func (h *Handler) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()

	h.logger.Debug("Served health request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", time.Since(start)))
}

// liveness always answers 200 with the whole minutes since the last
// completed tick, or since start when no tick has completed yet.
func (h *Handler) liveness(c *gin.Context) {
	c.String(http.StatusOK, strconv.FormatInt(h.minutesSinceTick(), 10))
}

func (h *Handler) status(c *gin.Context) {
	state := h.states.State()

	breakers := map[string]circuitbreaker.State{}
	if h.breakers != nil {
		breakers = h.breakers.Stats()
	}

	c.JSON(http.StatusOK, gin.H{
		"state":              state,
		"minutes_since_tick": h.minutesSinceTick(),
		"metrics":            h.metrics.Snapshot(),
		"breakers":           breakers,
	})
}

func (h *Handler) minutesSinceTick() int64 {
	last := h.states.State().TickAt
	if last.IsZero() {
		last = h.startedAt
	}

	elapsed := h.now().Sub(last)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed / time.Minute)
}
