package presence

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// Platform is the chat platform surface the updater needs.
type Platform interface {
	SetActivity(ctx context.Context, text string) error
	SetAvatar(ctx context.Context, jpeg []byte) error
}

// Discord implements Platform on top of a gateway session. The gateway is
// opened lazily by SetActivity, so a connection failure surfaces as an
// update error on that tick and is retried on the next one.
type Discord struct {
	logger  *slog.Logger
	session *discordgo.Session

	mutex sync.Mutex
	ready atomic.Bool
	open  func() error
}

// NewDiscord builds the session without touching the network.
func NewDiscord(token string, logger *slog.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	d := &Discord{
		logger:  logger,
		session: session,
		open:    session.Open,
	}

	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		d.ready.Store(true)
		d.logger.Info("Connected to discord", slog.String("user", r.User.Username))
	})
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		d.ready.Store(false)
		d.logger.Warn("Disconnected from discord")
	})

	return d, nil
}

func (d *Discord) ensureOpen() error {
	if d.ready.Load() {
		return nil
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.ready.Load() {
		return nil
	}

	err := d.open()
	if err == nil || errors.Is(err, discordgo.ErrWSAlreadyOpen) {
		return nil
	}
	return fmt.Errorf("open discord gateway: %w", err)
}

func (d *Discord) Close() error {
	d.ready.Store(false)
	return d.session.Close()
}

func (d *Discord) SetActivity(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.ensureOpen(); err != nil {
		return err
	}
	return d.session.UpdateGameStatus(0, text)
}

// SetAvatar goes through REST and works without the gateway.
func (d *Discord) SetAvatar(ctx context.Context, jpeg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	avatar := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
	_, err := d.session.UserUpdate("", avatar, discordgo.WithContext(ctx))
	return err
}
