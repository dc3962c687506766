package presence_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marne-tools/status-bot/internal/circuitbreaker"
	"github.com/marne-tools/status-bot/internal/presence"
	"github.com/marne-tools/status-bot/internal/serverstatus"
)

type fakePlatform struct {
	mutex       sync.Mutex
	activities  []string
	avatars     [][]byte
	activityErr error
	avatarErr   error
}

func (f *fakePlatform) SetActivity(_ context.Context, text string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.activityErr != nil {
		return f.activityErr
	}
	f.activities = append(f.activities, text)
	return nil
}

func (f *fakePlatform) SetAvatar(_ context.Context, img []byte) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.avatarErr != nil {
		return f.avatarErr
	}
	f.avatars = append(f.avatars, img)
	return nil
}

type fakeRenderer struct {
	calls []string
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, imageURL, label string) ([]byte, error) {
	f.calls = append(f.calls, imageURL+"|"+label)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("jpeg:" + label), nil
}

var _ = Describe("Updater", func() {
	var (
		platform *fakePlatform
		renderer *fakeRenderer
		log      *slog.Logger
		ctx      context.Context
		online   serverstatus.ServerStatus
	)

	BeforeEach(func() {
		platform = &fakePlatform{}
		renderer = &fakeRenderer{}
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx = context.Background()
		online = serverstatus.ServerStatus{
			Name:        "[BoB]#1 EU",
			PlayerCount: 12,
			MaxPlayers:  64,
			IsOnline:    true,
			MapName:     "MP_Amiens",
			MapDisplay:  "Amiens",
			MapImage:    "https://cdn.example/amiens.jpg",
			ModeShort:   "CQ",
		}
	})

	Context("without banner updates", func() {
		var updater *presence.Updater

		BeforeEach(func() {
			updater = presence.NewUpdater(log, platform, renderer, presence.Options{})
		})

		It("should push the formatted activity", func() {
			Expect(updater.Update(ctx, online)).To(Succeed())
			Expect(platform.activities).To(Equal([]string{"12/64 players - Amiens"}))
			Expect(renderer.calls).To(BeEmpty())
		})

		It("should push identical statuses every time", func() {
			Expect(updater.Update(ctx, online)).To(Succeed())
			Expect(updater.Update(ctx, online)).To(Succeed())
			Expect(platform.activities).To(HaveLen(2))
		})

		It("should wrap platform rejections in UpdateError", func() {
			platform.activityErr = errors.New("401: Unauthorized")

			err := updater.Update(ctx, online)

			var updateErr *presence.UpdateError
			Expect(errors.As(err, &updateErr)).To(BeTrue())
			Expect(updateErr.Op).To(Equal(presence.OpActivity))
			Expect(err).To(MatchError(ContainSubstring("401")))
		})
	})

	Context("with banner updates", func() {
		var updater *presence.Updater

		BeforeEach(func() {
			updater = presence.NewUpdater(log, platform, renderer, presence.Options{Banner: true})
		})

		It("should upload the avatar once for an unchanged map and mode", func() {
			Expect(updater.Update(ctx, online)).To(Succeed())
			Expect(updater.Update(ctx, online)).To(Succeed())

			Expect(renderer.calls).To(Equal([]string{"https://cdn.example/amiens.jpg|CQ"}))
			Expect(platform.avatars).To(HaveLen(1))
			Expect(platform.activities).To(HaveLen(2))
		})

		It("should upload again when the mode changes", func() {
			Expect(updater.Update(ctx, online)).To(Succeed())
			online.ModeShort = "OP"
			Expect(updater.Update(ctx, online)).To(Succeed())

			Expect(platform.avatars).To(HaveLen(2))
			Expect(string(platform.avatars[1])).To(Equal("jpeg:OP"))
		})

		It("should leave the avatar alone while offline", func() {
			Expect(updater.Update(ctx, serverstatus.ServerStatus{Name: "x"})).To(Succeed())
			Expect(platform.activities).To(Equal([]string{"offline"}))
			Expect(renderer.calls).To(BeEmpty())
		})

		It("should skip maps without artwork", func() {
			online.MapImage = ""
			Expect(updater.Update(ctx, online)).To(Succeed())
			Expect(renderer.calls).To(BeEmpty())
		})

		It("should report avatar rejections and retry on the next call", func() {
			platform.avatarErr = errors.New("429: You are changing your avatar too fast")

			err := updater.Update(ctx, online)
			var updateErr *presence.UpdateError
			Expect(errors.As(err, &updateErr)).To(BeTrue())
			Expect(updateErr.Op).To(Equal(presence.OpBanner))

			platform.avatarErr = nil
			Expect(updater.Update(ctx, online)).To(Succeed())
			Expect(platform.avatars).To(HaveLen(1))
		})

		It("should stop downloading artwork that keeps failing", func() {
			renderer.err = errors.New("404")
			updater = presence.NewUpdater(log, platform, renderer, presence.Options{
				Banner:   true,
				Breakers: circuitbreaker.NewRegistry(2, time.Hour),
			})

			Expect(updater.Update(ctx, online)).NotTo(Succeed())
			Expect(updater.Update(ctx, online)).NotTo(Succeed())
			Expect(updater.Update(ctx, online)).To(Succeed())

			Expect(renderer.calls).To(HaveLen(2))
			Expect(platform.activities).To(HaveLen(3))
		})
	})

	Context("with an avatar rate limit", func() {
		It("should defer uploads inside the minimum interval", func() {
			updater := presence.NewUpdater(log, platform, renderer, presence.Options{
				Banner:            true,
				AvatarMinInterval: time.Hour,
			})

			Expect(updater.Update(ctx, online)).To(Succeed())
			online.MapImage = "https://cdn.example/suez.jpg"
			Expect(updater.Update(ctx, online)).To(Succeed())

			Expect(platform.avatars).To(HaveLen(1))
			Expect(platform.activities).To(HaveLen(2))
		})

		It("should not spend the upload slot on a failed render", func() {
			updater := presence.NewUpdater(log, platform, renderer, presence.Options{
				Banner:            true,
				AvatarMinInterval: time.Hour,
			})

			renderer.err = errors.New("404")
			Expect(updater.Update(ctx, online)).NotTo(Succeed())
			Expect(platform.avatars).To(BeEmpty())

			renderer.err = nil
			online.MapImage = "https://cdn.example/suez.jpg"
			Expect(updater.Update(ctx, online)).To(Succeed())
			Expect(platform.avatars).To(HaveLen(1))
		})
	})
})
