package main

import (
	"log/slog"

	"github.com/marne-tools/status-bot/internal/health"
	"github.com/marne-tools/status-bot/internal/httpserver"
)

func newHealthServer(
	addr string,
	log *slog.Logger,
	states health.StateSource,
	m health.MetricsSource,
	breakers health.BreakerSource,
) (*httpserver.Server, error) {
	handler := health.NewHandler(log, states, m, breakers)

	return httpserver.New(addr, handler.Router())
}
