package presence

import (
	"fmt"

	"github.com/marne-tools/status-bot/internal/serverstatus"
)

const offlineText = "offline"

// Format renders the activity line, e.g. "12/64 players - Amiens".
func Format(st serverstatus.ServerStatus) string {
	if !st.IsOnline {
		return offlineText
	}

	text := fmt.Sprintf("%d/%d players", st.PlayerCount, st.MaxPlayers)
	if st.MapDisplay != "" {
		text += " - " + st.MapDisplay
	}
	return text
}
