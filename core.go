package main

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/martinszuc/discord-chores-bot/internal/bot"
	"github.com/martinszuc/discord-chores-bot/internal/rotation"
	"github.com/martinszuc/discord-chores-bot/utils"
)

// RunCoreLogic drives the weekly cadence: it posts a new schedule when the
// configured posting time passes and sends reminders on the reminder day.
// Reaction and command handling happen on the HTTP side; this loop only
// owns the time-based triggers.
func RunCoreLogic(ctx context.Context, b *bot.Bot) error {
	utils.SetHealthStatus("OK", "Service is running normally")
	log.Println("Core Logic: Initialization complete, service is healthy")

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	var lastReminded time.Time

	for {
		select {
		case <-ctx.Done():
			log.Println("Core Logic: Shutdown signal received, cleaning up...")
			utils.SetHealthStatus("SHUTTING_DOWN", "Core logic is shutting down")
			return nil

		case <-ticker.C:
			settings := b.Roster().Settings()
			loc, err := time.LoadLocation(settings.Timezone)
			if err != nil {
				log.Printf("Core Logic: invalid timezone %q, falling back to UTC", settings.Timezone)
				loc = time.UTC
			}
			now := time.Now().In(loc)

			if due, at := occurrenceDue(now, b.Engine().LastPosted(), settings.PostingDay, settings.PostingTime); due {
				log.Printf("Core Logic: posting schedule for occurrence %s", at.Format(time.RFC3339))
				if _, err := b.PostSchedule(ctx); err != nil && !errors.Is(err, rotation.ErrNothingToSchedule) {
					log.Printf("Core Logic: failed to post schedule: %v", err)
					utils.SetHealthStatus("DEGRADED", "Failed to post schedule: "+err.Error())
					continue
				}
				utils.SetHealthStatus("OK", "Service is running normally")
			}

			if settings.RemindersEnabled {
				if due, at := occurrenceDue(now, &lastReminded, settings.ReminderDay, settings.ReminderTime); due {
					log.Printf("Core Logic: sending reminders for occurrence %s", at.Format(time.RFC3339))
					if err := b.SendReminders(ctx); err != nil {
						log.Printf("Core Logic: failed to send reminders: %v", err)
					}
					lastReminded = now
				}
			}
		}
	}
}

// occurrenceDue reports whether the most recent scheduled weekly occurrence
// at or before now has not been acted on yet, and returns that occurrence.
func occurrenceDue(now time.Time, last *time.Time, day, hhmm string) (bool, time.Time) {
	occurrence, ok := lastOccurrence(now, day, hhmm)
	if !ok {
		return false, time.Time{}
	}
	if last == nil || last.IsZero() || last.Before(occurrence) {
		return true, occurrence
	}
	return false, occurrence
}

// lastOccurrence computes the most recent time at or before now that
// matches the given weekday and HH:MM.
func lastOccurrence(now time.Time, day, hhmm string) (time.Time, bool) {
	weekday, ok := parseWeekday(day)
	if !ok {
		return time.Time{}, false
	}
	hour, minute, ok := parseClock(hhmm)
	if !ok {
		return time.Time{}, false
	}

	daysBack := (int(now.Weekday()) - int(weekday) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	candidate = candidate.AddDate(0, 0, -daysBack)
	if candidate.After(now) {
		candidate = candidate.AddDate(0, 0, -7)
	}
	return candidate, true
}

func parseWeekday(day string) (time.Weekday, bool) {
	switch strings.ToLower(day) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return 0, false
}

func parseClock(hhmm string) (int, int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
