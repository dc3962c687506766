package serverstatus_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marne-tools/status-bot/internal/catalog"
	"github.com/marne-tools/status-bot/internal/serverstatus"
)

const serverListBody = `{"servers":[
 {"id":1,"name":"[BoB]#1 EU","mapName":"Levels/MP/MP_Amiens/MP_Amiens","gameMode":"Conquest0",
  "maxPlayers":64,"tickRate":60,"password":0,"needSameMods":0,"allowMoreMods":0,
  "currentPlayers":12,"region":"EU","country":"NL"},
 {"id":77,"name":"Operations only","mapName":"Levels/MP/MP_Unreleased/MP_Unreleased","gameMode":"Odd0",
  "maxPlayers":40,"tickRate":30,"password":1,"needSameMods":1,"allowMoreMods":0,
  "currentPlayers":-3,"region":"NA","country":"US"}
]}`

var _ = Describe("Fetcher", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		requests atomic.Int32
		fetcher  *serverstatus.Fetcher
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests.Store(0)
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(serverListBody))
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			handler(w, r)
		}))
		fetcher = serverstatus.NewFetcher(server.Client(), catalog.Default(), server.URL)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("URLForGame", func() {
		It("should select the list per title", func() {
			Expect(serverstatus.URLForGame("bf1")).To(Equal("https://marne.io/api/srvlst/"))
			Expect(serverstatus.URLForGame("bfv")).To(Equal("https://marne.io/api/v/srvlst/"))
		})

		It("should prefer the override", func() {
			Expect(fetcher.URL("bfv")).To(Equal(server.URL))
		})
	})

	Describe("Fetch", func() {
		It("should return the status of a server matched by name", func() {
			st, err := fetcher.Fetch(ctx, serverstatus.Identifier{Name: "[BoB]#1 EU"}, "bf1")
			Expect(err).NotTo(HaveOccurred())
			Expect(st.IsOnline).To(BeTrue())
			Expect(st.ID).To(Equal(int64(1)))
			Expect(st.PlayerCount).To(Equal(12))
			Expect(st.MaxPlayers).To(Equal(64))
			Expect(st.MapName).To(Equal("MP_Amiens"))
			Expect(st.MapDisplay).To(Equal("Amiens"))
			Expect(st.ModeShort).To(Equal("CQ"))
			Expect(st.FetchedAt).NotTo(BeZero())
			Expect(requests.Load()).To(Equal(int32(1)))
		})

		It("should match by id and clamp negative counts", func() {
			st, err := fetcher.Fetch(ctx, serverstatus.Identifier{ID: 77}, "bf1")
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Name).To(Equal("Operations only"))
			Expect(st.PlayerCount).To(Equal(0))
			Expect(st.MapDisplay).To(Equal("MP_Unreleased"))
			Expect(st.ModeShort).To(BeEmpty())
		})

		It("should report a missing server as offline", func() {
			st, err := fetcher.Fetch(ctx, serverstatus.Identifier{Name: "gone"}, "bf1")
			Expect(err).NotTo(HaveOccurred())
			Expect(st.IsOnline).To(BeFalse())
			Expect(st.Name).To(Equal("gone"))
			Expect(st.PlayerCount).To(BeZero())
		})

		It("should not match id 0 against anything", func() {
			st, err := fetcher.Fetch(ctx, serverstatus.Identifier{}, "bf1")
			Expect(err).NotTo(HaveOccurred())
			Expect(st.IsOnline).To(BeFalse())
		})

		It("should strip a leading byte order mark", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write(append([]byte{0xEF, 0xBB, 0xBF}, serverListBody...))
			}

			st, err := fetcher.Fetch(ctx, serverstatus.Identifier{Name: "[BoB]#1 EU"}, "bf1")
			Expect(err).NotTo(HaveOccurred())
			Expect(st.IsOnline).To(BeTrue())
		})

		It("should return a FetchError on a 500", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}

			_, err := fetcher.Fetch(ctx, serverstatus.Identifier{Name: "[BoB]#1 EU"}, "bf1")

			var fetchErr *serverstatus.FetchError
			Expect(errors.As(err, &fetchErr)).To(BeTrue())
			Expect(fetchErr.Op).To(Equal(serverstatus.OpStatus))
			Expect(fetchErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(fetchErr.Error()).To(ContainSubstring("unexpected status 500"))
		})

		It("should return a FetchError on a malformed payload", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>maintenance</html>`))
			}

			_, err := fetcher.Fetch(ctx, serverstatus.Identifier{Name: "[BoB]#1 EU"}, "bf1")

			var fetchErr *serverstatus.FetchError
			Expect(errors.As(err, &fetchErr)).To(BeTrue())
			Expect(fetchErr.Op).To(Equal(serverstatus.OpDecode))
		})

		It("should return a FetchError when the servers field is missing", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":"rate limited"}`))
			}

			_, err := fetcher.Fetch(ctx, serverstatus.Identifier{Name: "[BoB]#1 EU"}, "bf1")
			Expect(err).To(MatchError(ContainSubstring("missing servers field")))
		})

		It("should return a FetchError when the API is unreachable", func() {
			server.Close()

			_, err := fetcher.Fetch(ctx, serverstatus.Identifier{Name: "[BoB]#1 EU"}, "bf1")

			var fetchErr *serverstatus.FetchError
			Expect(errors.As(err, &fetchErr)).To(BeTrue())
			Expect(fetchErr.Op).To(Equal(serverstatus.OpRequest))
		})
	})
})
