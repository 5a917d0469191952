package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/martinszuc/discord-chores-bot/internal/bot"
	"github.com/martinszuc/discord-chores-bot/internal/roster"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, roster.ErrFlatmateNotFound), errors.Is(err, roster.ErrChoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrDuplicateName),
		errors.Is(err, roster.ErrDuplicateDiscordID),
		errors.Is(err, roster.ErrDuplicateChore):
		return http.StatusConflict
	case errors.Is(err, roster.ErrOutOfRange), errors.Is(err, roster.ErrUnknownStatKind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ListFlatmatesHandler returns all flatmates with their stats.
func ListFlatmatesHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(b.Roster().Flatmates())
	}
}

// AddFlatmateHandler creates a flatmate.
func AddFlatmateHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name      string `json:"name"`
			DiscordID string `json:"discord_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.DiscordID == "" {
			http.Error(w, "name and discord_id are required", http.StatusBadRequest)
			return
		}

		if err := b.Roster().AddFlatmate(r.Context(), req.Name, req.DiscordID); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

// RemoveFlatmateHandler deletes a flatmate.
func RemoveFlatmateHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		if err := b.Roster().RemoveFlatmate(r.Context(), name); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// VacationHandler toggles the vacation flag through the engine workflow so
// the recently-returned boost is armed on the way back.
func VacationHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		var req struct {
			OnVacation bool `json:"on_vacation"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := b.Engine().SetVacation(r.Context(), name, req.OnVacation); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// ExclusionHandler flips a flatmate in or out of the next rotation.
func ExclusionHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		excluded, err := b.Engine().ToggleExclusion(r.Context(), name)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"name": name, "excluded": excluded})
	}
}

// StatsHandler returns the cumulative counters for one flatmate.
func StatsHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		flatmate, err := b.Roster().GetFlatmate(name)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(flatmate.Stats)
	}
}

// ListChoresHandler returns all chore definitions.
func ListChoresHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(b.Roster().Chores())
	}
}

// AddChoreHandler creates a chore definition.
func AddChoreHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name       string `json:"name"`
			Frequency  int    `json:"frequency"`
			Difficulty int    `json:"difficulty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		if err := b.Roster().AddChore(r.Context(), req.Name, req.Frequency, req.Difficulty); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

// RemoveChoreHandler deletes a chore definition.
func RemoveChoreHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		if err := b.Roster().RemoveChore(r.Context(), name); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateChoreHandler patches difficulty and/or frequency.
func UpdateChoreHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		var req struct {
			Difficulty *int `json:"difficulty,omitempty"`
			Frequency  *int `json:"frequency,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Difficulty != nil {
			if err := b.Roster().SetDifficulty(r.Context(), name, *req.Difficulty); err != nil {
				http.Error(w, err.Error(), statusFor(err))
				return
			}
		}
		if req.Frequency != nil {
			if err := b.Roster().SetFrequency(r.Context(), name, *req.Frequency); err != nil {
				http.Error(w, err.Error(), statusFor(err))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

// SettingsHandler reads or updates the posting/reminder settings.
func SettingsHandler(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(b.Roster().Settings())
		case http.MethodPut:
			var settings roster.ScheduleSettings
			if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			if err := b.Roster().UpdateSettings(r.Context(), settings); err != nil {
				http.Error(w, err.Error(), statusFor(err))
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
