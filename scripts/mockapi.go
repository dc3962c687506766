// Mockapi serves a fake marne.io server list for running the bot locally.
// Point status_url at http://localhost:8081/api/srvlst/.
//
// Usage:
//
//	go run mockapi.go -port 8081 -name "[BoB]#1 EU"
//
// Every -rotate requests the server moves to the next map, and -flap makes it
// drop out of the list on every other rotation.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/marne-tools/status-bot/pkg/logger"
)

type server struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	MapName        string `json:"mapName"`
	GameMode       string `json:"gameMode"`
	MaxPlayers     int    `json:"maxPlayers"`
	CurrentPlayers int    `json:"currentPlayers"`
	Region         string `json:"region"`
}

var maps = []string{
	"Levels/MP/MP_Amiens/MP_Amiens",
	"Levels/MP/MP_Chateau/MP_Chateau",
	"Levels/MP/MP_Desert/MP_Desert",
	"Levels/MP/MP_FaoFortress/MP_FaoFortress",
}

var modes = []string{"Conquest", "BreakThrough", "Rush"}

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	name := flag.String("name", "[BoB]#1 EU", "server name to report")
	maxPlayers := flag.Int("max", 64, "max players")
	rotate := flag.Int("rotate", 5, "requests between map changes")
	flap := flag.Bool("flap", false, "drop the server from the list on odd rotations")
	flag.Parse()

	log := logger.New("debug", false, "dev")

	var requests atomic.Int64

	http.HandleFunc("/api/srvlst/", func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		round := int((n - 1) / int64(max(*rotate, 1)))

		list := []server{{
			ID:         1,
			Name:       "filler " + uuid.NewString()[:8],
			MapName:    maps[0],
			GameMode:   modes[0],
			MaxPlayers: 64,
		}}

		if !*flap || round%2 == 0 {
			list = append(list, server{
				ID:             42,
				Name:           *name,
				MapName:        maps[round%len(maps)],
				GameMode:       modes[round%len(modes)],
				MaxPlayers:     *maxPlayers,
				CurrentPlayers: rand.IntN(*maxPlayers + 1),
				Region:         "EU",
			})
		}

		body, err := json.Marshal(map[string]any{"servers": list})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info("Served server list",
			slog.Int64("request", n),
			slog.Int("round", round),
			slog.Int("servers", len(list)))

		w.Header().Set("Content-Type", "application/json")
		// the real API prefixes a byte order mark
		_, _ = w.Write(append([]byte("\ufeff"), body...))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Info("Starting mock status api", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error("Server failed", slog.Any("err", err))
		os.Exit(1)
	}
}
