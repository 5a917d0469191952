package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/martinszuc/discord-chores-bot/internal/bot"
	"github.com/martinszuc/discord-chores-bot/utils"
)

// ServiceHandler provides a status report for the service: health, uptime
// and a summary of the current cycle.
func ServiceHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := utils.GetHealth()
		state := b.Engine().Snapshot()

		report := map[string]any{
			"health":         health,
			"last_posted":    state.LastPosted,
			"assigned":       len(state.CurrentAssignments),
			"pending":        len(state.PendingChores),
			"flatmates":      len(b.Roster().Flatmates()),
			"chores_defined": len(b.Roster().Chores()),
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "OK" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	}
}
