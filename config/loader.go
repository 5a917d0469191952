package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// rawConfig mirrors the on-disk document loosely enough to accept both the
// canonical schema and the legacy layout (chores as bare strings plus a
// chores_details side map, reminders nested under a "reminders" object).
type rawConfig struct {
	ChoresChannelID string `json:"chores_channel_id"`
	AdminRoleID     string `json:"admin_role_id"`
	DiscordURL      string `json:"discord_url"`
	RedisAddr       string `json:"redis_addr"`
	ListenPort      int    `json:"listen_port"`

	PostingDay  string `json:"posting_day"`
	PostingTime string `json:"posting_time"`
	Timezone    string `json:"timezone"`

	RemindersEnabled *bool  `json:"reminders_enabled"`
	ReminderDay      string `json:"reminder_day"`
	ReminderTime     string `json:"reminder_time"`
	Reminders        *struct {
		Enabled bool   `json:"enabled"`
		Day     string `json:"day"`
		Time    string `json:"time"`
	} `json:"reminders"`

	Emoji     *EmojiSet         `json:"emoji"`
	Flatmates []FlatmateConfig  `json:"flatmates"`
	Chores    []json.RawMessage `json:"chores"`

	// Legacy per-chore details, keyed by chore name.
	ChoresDetails map[string]struct {
		Frequency  int `json:"frequency"`
		Difficulty int `json:"difficulty"`
	} `json:"chores_details"`
}

// Load reads and normalizes the config file. Normalization happens once
// here; the rest of the program only ever sees the canonical schema.
func Load(path string) (*BotConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	cfg := &BotConfig{
		ChoresChannelID: raw.ChoresChannelID,
		AdminRoleID:     raw.AdminRoleID,
		DiscordURL:      raw.DiscordURL,
		RedisAddr:       raw.RedisAddr,
		ListenPort:      raw.ListenPort,
		PostingDay:      raw.PostingDay,
		PostingTime:     raw.PostingTime,
		Timezone:        raw.Timezone,
		ReminderDay:     raw.ReminderDay,
		ReminderTime:    raw.ReminderTime,
		Flatmates:       raw.Flatmates,
	}

	// Defaults matching the original deployment.
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = 8200
	}
	if cfg.PostingDay == "" {
		cfg.PostingDay = "Monday"
	}
	if cfg.PostingTime == "" {
		cfg.PostingTime = "9:00"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}

	cfg.RemindersEnabled = true
	if raw.Reminders != nil {
		cfg.RemindersEnabled = raw.Reminders.Enabled
		cfg.ReminderDay = raw.Reminders.Day
		cfg.ReminderTime = raw.Reminders.Time
	}
	if raw.RemindersEnabled != nil {
		cfg.RemindersEnabled = *raw.RemindersEnabled
	}
	if cfg.ReminderDay == "" {
		cfg.ReminderDay = "Friday"
	}
	if cfg.ReminderTime == "" {
		cfg.ReminderTime = "18:00"
	}

	if raw.Emoji != nil {
		cfg.Emoji = *raw.Emoji
	} else {
		cfg.Emoji = DefaultEmoji()
	}

	chores, err := normalizeChores(raw)
	if err != nil {
		return nil, err
	}
	cfg.Chores = chores

	return cfg, nil
}

// normalizeChores accepts each chore entry either as a bare string (legacy)
// or as a ChoreConfig object, merging in the legacy details map.
func normalizeChores(raw rawConfig) ([]ChoreConfig, error) {
	var chores []ChoreConfig
	for i, entry := range raw.Chores {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			c := ChoreConfig{Name: name, Frequency: 1, Difficulty: 1}
			if details, ok := raw.ChoresDetails[name]; ok {
				if details.Frequency > 0 {
					c.Frequency = details.Frequency
				}
				if details.Difficulty > 0 {
					c.Difficulty = details.Difficulty
				}
			}
			chores = append(chores, c)
			continue
		}

		var c ChoreConfig
		if err := json.Unmarshal(entry, &c); err != nil {
			return nil, fmt.Errorf("invalid chore entry at index %d: %w", i, err)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("chore entry at index %d has no name", i)
		}
		if c.Frequency == 0 {
			c.Frequency = 1
		}
		if c.Difficulty == 0 {
			c.Difficulty = 1
		}
		chores = append(chores, c)
	}
	return chores, nil
}

// Save writes the canonical schema back to disk.
func Save(path string, cfg *BotConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
