package roster

// StatKind identifies one of the cumulative per-flatmate counters.
type StatKind string

const (
	StatCompleted  StatKind = "completed"
	StatReassigned StatKind = "reassigned"
	StatSkipped    StatKind = "skipped"
)

// Stats are monotonically increasing counters. They are never reset.
type Stats struct {
	Completed  int `json:"completed"`
	Reassigned int `json:"reassigned"`
	Skipped    int `json:"skipped"`
}

// Flatmate is one participant in the rotation.
type Flatmate struct {
	Name             string `json:"name"`
	DiscordID        string `json:"discord_id"`
	OnVacation       bool   `json:"on_vacation"`
	RecentlyReturned bool   `json:"recently_returned"`
	Stats            Stats  `json:"stats"`
}

// Chore is a recurring task definition. Frequency 1 means every cycle,
// N means eligible once every N weeks. Difficulty is 1-5.
type Chore struct {
	Name       string `json:"name"`
	Frequency  int    `json:"frequency"`
	Difficulty int    `json:"difficulty"`
}

// ScheduleSettings are the posting/reminder scalars stored alongside the
// roster so they round-trip with it.
type ScheduleSettings struct {
	PostingDay  string `json:"posting_day"`
	PostingTime string `json:"posting_time"`
	Timezone    string `json:"timezone"`

	RemindersEnabled bool   `json:"reminders_enabled"`
	ReminderDay      string `json:"reminder_day"`
	ReminderTime     string `json:"reminder_time"`
}

// Document is the persisted roster record.
type Document struct {
	Flatmates []Flatmate       `json:"flatmates"`
	Chores    []Chore          `json:"chores"`
	Settings  ScheduleSettings `json:"settings"`
}

// DefaultSettings mirrors the defaults the bot ships with.
func DefaultSettings() ScheduleSettings {
	return ScheduleSettings{
		PostingDay:       "Monday",
		PostingTime:      "9:00",
		Timezone:         "UTC",
		RemindersEnabled: true,
		ReminderDay:      "Friday",
		ReminderTime:     "18:00",
	}
}
