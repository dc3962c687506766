package serverstatus

import (
	"strconv"
	"time"
)

// ServerStatus is the state of one server as seen by a single fetch.
type ServerStatus struct {
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	PlayerCount int       `json:"player_count"`
	MaxPlayers  int       `json:"max_players"`
	IsOnline    bool      `json:"is_online"`
	MapName     string    `json:"map_name,omitempty"`
	MapDisplay  string    `json:"map_display,omitempty"`
	MapImage    string    `json:"map_image,omitempty"`
	GameMode    string    `json:"game_mode,omitempty"`
	ModeShort   string    `json:"mode_short,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Identifier selects a server by name, or by id when Name is empty.
type Identifier struct {
	Name string
	ID   int64
}

func (id Identifier) matches(serverID int64, name string) bool {
	if id.Name != "" {
		return name == id.Name
	}
	return id.ID != 0 && serverID == id.ID
}

func (id Identifier) String() string {
	if id.Name != "" {
		return id.Name
	}
	return "#" + strconv.FormatInt(id.ID, 10)
}
