package presence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/marne-tools/status-bot/internal/circuitbreaker"
	"github.com/marne-tools/status-bot/internal/serverstatus"
)

type Options struct {
	// Banner enables avatar updates.
	Banner bool
	// AvatarMinInterval is the minimum gap between two avatar uploads. Zero
	// disables the limit.
	AvatarMinInterval time.Duration
	// Breakers guards artwork downloads per URL. Nil uses a registry that
	// skips a URL for 30 minutes after 3 consecutive failures.
	Breakers *circuitbreaker.Registry
}

type Updater struct {
	logger   *slog.Logger
	platform Platform
	renderer BannerRenderer
	banner   bool
	limiter  *rate.Limiter
	breakers *circuitbreaker.Registry

	mutex      sync.Mutex
	lastBanner string
}

func NewUpdater(logger *slog.Logger, platform Platform, renderer BannerRenderer, opts Options) *Updater {
	limit := rate.Inf
	if opts.AvatarMinInterval > 0 {
		limit = rate.Every(opts.AvatarMinInterval)
	}

	breakers := opts.Breakers
	if breakers == nil {
		breakers = circuitbreaker.NewRegistry(3, 30*time.Minute)
	}

	return &Updater{
		logger:   logger,
		platform: platform,
		renderer: renderer,
		banner:   opts.Banner && renderer != nil,
		limiter:  rate.NewLimiter(limit, 1),
		breakers: breakers,
	}
}

// Update pushes the activity line for st and, when enabled, refreshes the
// avatar. It is safe to call repeatedly with the same status.
func (u *Updater) Update(ctx context.Context, st serverstatus.ServerStatus) error {
	text := Format(st)
	if err := u.platform.SetActivity(ctx, text); err != nil {
		return &UpdateError{Op: OpActivity, Err: err}
	}

	u.logger.Debug("Activity updated", slog.String("activity", text))

	if !u.banner || !st.IsOnline {
		return nil
	}

	return u.updateBanner(ctx, st)
}

func (u *Updater) updateBanner(ctx context.Context, st serverstatus.ServerStatus) error {
	if st.MapImage == "" {
		u.logger.Debug("No artwork for map", slog.String("map", st.MapName))
		return nil
	}

	key := st.MapImage + "|" + st.ModeShort

	u.mutex.Lock()
	unchanged := key == u.lastBanner
	u.mutex.Unlock()
	if unchanged {
		return nil
	}

	// The token is only spent on an actual upload.
	if u.limiter.Tokens() < 1 {
		u.logger.Debug("Avatar update deferred by rate limit", slog.String("map", st.MapName))
		return nil
	}

	var img []byte
	err := u.breakers.Get(st.MapImage).Do(func() error {
		var err error
		img, err = u.renderer.Render(ctx, st.MapImage, st.ModeShort)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		u.logger.Debug("Skipping failing artwork", slog.String("url", st.MapImage))
		return nil
	}
	if err != nil {
		return &UpdateError{Op: OpBanner, Err: err}
	}

	if !u.limiter.Allow() {
		return nil
	}
	if err := u.platform.SetAvatar(ctx, img); err != nil {
		return &UpdateError{Op: OpBanner, Err: err}
	}

	u.mutex.Lock()
	u.lastBanner = key
	u.mutex.Unlock()

	u.logger.Info("Avatar updated",
		slog.String("map", st.MapDisplay),
		slog.String("mode", st.ModeShort))
	return nil
}
