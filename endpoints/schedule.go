package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/martinszuc/discord-chores-bot/internal/bot"
	"github.com/martinszuc/discord-chores-bot/internal/rotation"
)

// ShowScheduleHandler reports the current cycle: assignments, pending
// chores and when the schedule was last posted.
func ShowScheduleHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := b.Engine().Snapshot()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"last_posted":         state.LastPosted,
			"current_assignments": state.CurrentAssignments,
			"pending_chores":      state.PendingChores,
			"completed_by":        state.CompletedBy,
			"excluded_for_next":   state.ExcludedForNextRotation,
		})
	}
}

// NextScheduleHandler generates and posts a new cycle immediately.
func NextScheduleHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignments, err := b.PostSchedule(r.Context())
		if err != nil {
			if errors.Is(err, rotation.ErrNothingToSchedule) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(assignments)
	}
}

// ResetScheduleHandler clears all cycle state.
func ResetScheduleHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := b.Engine().Reset(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		b.Cache().Clear()
		w.WriteHeader(http.StatusOK)
	}
}

// RemindersHandler sends reminder messages for pending chores now.
func RemindersHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := b.SendReminders(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
