package config

// EmojiSet holds the reaction emoji the bot listens for.
type EmojiSet struct {
	Completed   string `json:"completed"`
	Unavailable string `json:"unavailable"`
	Difficulty1 string `json:"difficulty_1"`
	Difficulty2 string `json:"difficulty_2"`
	Difficulty3 string `json:"difficulty_3"`
	Difficulty4 string `json:"difficulty_4"`
	Difficulty5 string `json:"difficulty_5"`
}

// DifficultyEmoji returns the emoji for a difficulty level 1-5.
func (e EmojiSet) DifficultyEmoji(level int) string {
	switch level {
	case 1:
		return e.Difficulty1
	case 2:
		return e.Difficulty2
	case 3:
		return e.Difficulty3
	case 4:
		return e.Difficulty4
	case 5:
		return e.Difficulty5
	}
	return ""
}

// DifficultyLevel maps a reaction emoji back to its level, 0 when unknown.
func (e EmojiSet) DifficultyLevel(emoji string) int {
	for level := 1; level <= 5; level++ {
		if e.DifficultyEmoji(level) == emoji {
			return level
		}
	}
	return 0
}

// FlatmateConfig seeds the roster record on first run.
type FlatmateConfig struct {
	Name      string `json:"name"`
	DiscordID string `json:"discord_id"`
}

// ChoreConfig is the canonical chore entry. The legacy layout stored chores
// as bare strings with a separate details map; Load normalizes both shapes
// into this one.
type ChoreConfig struct {
	Name       string `json:"name"`
	Frequency  int    `json:"frequency"`
	Difficulty int    `json:"difficulty"`
}

// BotConfig is the canonical, typed configuration schema.
type BotConfig struct {
	ChoresChannelID string `json:"chores_channel_id"`
	AdminRoleID     string `json:"admin_role_id"`
	DiscordURL      string `json:"discord_url"`
	RedisAddr       string `json:"redis_addr"`
	ListenPort      int    `json:"listen_port"`

	PostingDay  string `json:"posting_day"`
	PostingTime string `json:"posting_time"`
	Timezone    string `json:"timezone"`

	RemindersEnabled bool   `json:"reminders_enabled"`
	ReminderDay      string `json:"reminder_day"`
	ReminderTime     string `json:"reminder_time"`

	Emoji     EmojiSet         `json:"emoji"`
	Flatmates []FlatmateConfig `json:"flatmates"`
	Chores    []ChoreConfig    `json:"chores"`
}

// DefaultEmoji is used when the config file does not override the set.
func DefaultEmoji() EmojiSet {
	return EmojiSet{
		Completed:   "✅",
		Unavailable: "❌",
		Difficulty1: "1️⃣",
		Difficulty2: "2️⃣",
		Difficulty3: "3️⃣",
		Difficulty4: "4️⃣",
		Difficulty5: "5️⃣",
	}
}
