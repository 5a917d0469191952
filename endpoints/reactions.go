package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/martinszuc/discord-chores-bot/internal/bot"
)

// ReactionHandler accepts raw reaction events relayed by the Discord-facing
// service and dispatches them to the bot.
func ReactionHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event bot.ReactionEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if event.MessageID == "" || event.UserID == "" || event.Emoji == "" {
			http.Error(w, "message_id, user_id and emoji are required", http.StatusBadRequest)
			return
		}

		outcome, err := b.HandleReaction(r.Context(), event)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"outcome": outcome})
	}
}

// StartVoteHandler opens a community difficulty vote for a chore.
func StartVoteHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chore := mux.Vars(r)["name"]

		messageID, err := b.StartDifficultyVote(r.Context(), chore)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message_id": messageID})
	}
}

// SettleVoteHandler closes a difficulty vote with the collected reaction
// counts. Cancelled reports that the vote message disappeared before the
// window closed.
func SettleVoteHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MessageID string      `json:"message_id"`
			Counts    map[int]int `json:"counts"`
			Cancelled bool        `json:"cancelled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		outcome, err := b.SettleDifficultyVote(r.Context(), req.MessageID, req.Counts, req.Cancelled)
		if err != nil && outcome == "" {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"outcome": outcome})
	}
}
