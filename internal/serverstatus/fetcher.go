package serverstatus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/marne-tools/status-bot/internal/catalog"
)

const (
	bf1ListURL = "https://marne.io/api/srvlst/"
	bfvListURL = "https://marne.io/api/v/srvlst/"

	maxBodySize = 8 << 20
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// URLForGame returns the server list endpoint of a title. Anything that is not
// "bfv" is served by the Battlefield 1 list.
func URLForGame(game string) string {
	if game == "bfv" {
		return bfvListURL
	}
	return bf1ListURL
}

type serverList struct {
	Servers *[]serverInfo `json:"servers"`
}

type serverInfo struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	MapName        string `json:"mapName"`
	GameMode       string `json:"gameMode"`
	MaxPlayers     int    `json:"maxPlayers"`
	TickRate       int    `json:"tickRate"`
	Password       int    `json:"password"`
	NeedSameMods   int    `json:"needSameMods"`
	AllowMoreMods  int    `json:"allowMoreMods"`
	CurrentPlayers int    `json:"currentPlayers"`
	Region         string `json:"region"`
	Country        string `json:"country"`
}

type Fetcher struct {
	client   *http.Client
	catalog  *catalog.Catalog
	override string
	now      func() time.Time
}

// NewFetcher creates a Fetcher. A non-empty override replaces the per-title
// endpoint, a nil client means http.DefaultClient.
func NewFetcher(client *http.Client, cat *catalog.Catalog, override string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if cat == nil {
		cat = catalog.Default()
	}

	return &Fetcher{
		client:   client,
		catalog:  cat,
		override: override,
		now:      time.Now,
	}
}

func (f *Fetcher) URL(game string) string {
	if f.override != "" {
		return f.override
	}
	return URLForGame(game)
}

// Fetch downloads the server list of game and returns the status of the server
// selected by id.
func (f *Fetcher) Fetch(ctx context.Context, id Identifier, game string) (ServerStatus, error) {
	url := f.URL(game)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ServerStatus{}, &FetchError{Op: OpRequest, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return ServerStatus{}, &FetchError{Op: OpRequest, URL: url, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return ServerStatus{}, &FetchError{Op: OpStatus, URL: url, StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return ServerStatus{}, &FetchError{Op: OpRequest, URL: url, Err: err}
	}

	// The list is served with a leading byte order mark.
	body = bytes.TrimPrefix(body, utf8BOM)

	var list serverList
	if err := json.Unmarshal(body, &list); err != nil {
		return ServerStatus{}, &FetchError{Op: OpDecode, URL: url, Err: err}
	}
	if list.Servers == nil {
		return ServerStatus{}, &FetchError{Op: OpDecode, URL: url, Err: errors.New("missing servers field")}
	}

	server, found := lo.Find(*list.Servers, func(s serverInfo) bool {
		return id.matches(s.ID, s.Name)
	})
	if !found {
		return ServerStatus{
			ID:        id.ID,
			Name:      id.Name,
			FetchedAt: f.now(),
		}, nil
	}

	return f.toStatus(server), nil
}

func (f *Fetcher) toStatus(s serverInfo) ServerStatus {
	internal := catalog.InternalMapName(s.MapName)

	return ServerStatus{
		ID:          s.ID,
		Name:        s.Name,
		PlayerCount: max(s.CurrentPlayers, 0),
		MaxPlayers:  max(s.MaxPlayers, 0),
		IsOnline:    true,
		MapName:     internal,
		MapDisplay:  f.catalog.DisplayName(internal),
		MapImage:    f.catalog.ImageURL(internal),
		GameMode:    s.GameMode,
		ModeShort:   f.catalog.ModeShort(s.GameMode),
		FetchedAt:   f.now(),
	}
}
