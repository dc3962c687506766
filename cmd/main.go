package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marne-tools/status-bot/config"
	"github.com/marne-tools/status-bot/internal/catalog"
	"github.com/marne-tools/status-bot/internal/circuitbreaker"
	"github.com/marne-tools/status-bot/internal/metrics"
	"github.com/marne-tools/status-bot/internal/poller"
	"github.com/marne-tools/status-bot/internal/presence"
	"github.com/marne-tools/status-bot/internal/serverstatus"
	"github.com/marne-tools/status-bot/pkg/logger"
	"github.com/marne-tools/status-bot/pkg/reporter"
)

const (
	eventBufferSize  = 256
	flushTimeout     = 2 * time.Second
	breakerThreshold = 3
	breakerTimeout   = 30 * time.Minute
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, true, cfg.Environment)

	discord, err := presence.NewDiscord(cfg.Token, log)
	if err != nil {
		log.Error("Failed to create discord session", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, discord); err != nil {
		log.Error("Status bot stopped", slog.Any("err", err))
		cancel()
		os.Exit(1)
	}
}

// chatPlatform is a presence.Platform that holds a connection.
type chatPlatform interface {
	presence.Platform
	Close() error
}

// run serves the health endpoint and drives the poller until ctx is done.
// It only fails on startup problems of its own; platform errors are retried
// by the poller on every tick.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger, platform chatPlatform) error {
	rep, err := reporter.New(cfg.SentryDSN, cfg.Environment)
	if err != nil {
		return err
	}
	defer rep.Flush(flushTimeout)

	defer func() {
		if err := platform.Close(); err != nil {
			log.Warn("Failed to close chat platform", slog.Any("err", err))
		}
	}()

	collector := metrics.NewCollector(eventBufferSize, log)
	collector.Start(ctx)

	breakers := circuitbreaker.NewRegistry(breakerThreshold, breakerTimeout)

	p, err := newPoller(cfg, log, platform, breakers, collector.EventChannel(), rep)
	if err != nil {
		return err
	}

	srv, err := newHealthServer(cfg.HealthAddr, log, p, collector, breakers)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}
	log.Info("Health endpoint listening", slog.String("addr", srv.Addr()))

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Start()
	}()

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()

	pollDone := make(chan struct{})
	go func() {
		p.Run(pollCtx)
		close(pollDone)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		stopPolling()
		<-pollDone
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
		return nil

	case err := <-srvErrCh:
		stopPolling()
		<-pollDone
		if err == nil {
			err = errors.New("health server stopped unexpectedly")
		}
		return err
	}
}

// newPoller assembles fetch and update around platform. breakers and rep may
// be nil.
func newPoller(
	cfg *config.Config,
	log *slog.Logger,
	platform presence.Platform,
	breakers *circuitbreaker.Registry,
	events chan<- metrics.Event,
	rep poller.Reporter,
) (*poller.Poller, error) {
	client := &http.Client{}

	cat := catalog.Default()
	maps, modes := cat.Len()
	log.Debug("Loaded map catalogue", slog.Int("maps", maps), slog.Int("modes", modes))

	fetcher := serverstatus.NewFetcher(client, cat, cfg.StatusURL)

	renderer, err := presence.NewRenderer(client)
	if err != nil {
		return nil, err
	}

	updater := presence.NewUpdater(log, platform, renderer, presence.Options{
		Banner:            cfg.SetBannerImage,
		AvatarMinInterval: cfg.AvatarMinInterval,
		Breakers:          breakers,
	})

	return poller.New(log, fetcher, updater, poller.Options{
		Server:   serverstatus.Identifier{Name: cfg.ServerName, ID: cfg.ServerID},
		Game:     cfg.Game,
		Interval: cfg.Interval,
		Events:   events,
		Reporter: rep,
	})
}
