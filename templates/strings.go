// Package templates is the central repository of user-facing message
// strings. All templates are hardcoded and versioned with the application;
// placeholders use {field} syntax.
package templates

import "strings"

const (
	ScheduleHeader = "🔔 **Weekly Chore Schedule** 🔔"

	TaskAssignment        = "Hey {mention}! Your chore for this week is: **{chore}**"
	TaskCompleted         = "✅ Nice one {mention}! **{chore}** is done."
	TaskCompletedByHelper = "✅ {helper_mention} completed **{chore}** for {assignee_mention}! What a hero! 🦸"
	TaskCompletedAgain    = "✅ {mention} also completed **{chore}**! Above and beyond! 🙌"
	TaskAlreadyCompleted  = "You've already completed **{chore}**."
	TaskReassigned        = "{original_mention} can't make it this week.\n**{chore}** is reassigned to {new_mention}."

	ReactionInstructions = "**How to respond:**\n" +
		"✅ - Mark as done when you finish\n" +
		"❌ - Tell us you can't make it this week (someone else will take over)"

	ReminderHeader  = "⏰ **Chore Reminder** ⏰"
	ReminderMessage = "Hey {mention}! Don't forget your chore: **{chore}**"

	ErrReassignFailed      = "Couldn't reassign **{chore}**: nobody is available to take it."
	ErrNothingToSchedule   = "Nothing to schedule: no active flatmates or no eligible chores."
	ErrOnlyOwnChoreDecline = "{mention} You can only mark your own assigned chores as unavailable."

	VacationEnabled  = "✅ {name} is now on vacation and excluded from rotation."
	VacationDisabled = "✅ {name} is back in the rotation. Welcome back!"

	NextRotationExcluded = "❌ {name} is excluded from the next chore rotation."
	NextRotationIncluded = "✅ {name} is included in the next chore rotation."

	DifficultyVoteHeader       = "🗳️ **Chore Difficulty Vote** 🗳️"
	DifficultyVoteInstructions = "React with the number matching how hard you think **{chore}** is (1️⃣ easy - 5️⃣ hard):"
	DifficultyVoteResult       = "Difficulty for **{chore}** set to {level}/5 based on the vote."
	DifficultyVoteNoVotes      = "No votes were cast for **{chore}**. Difficulty unchanged."
	DifficultyVoteLost         = "The vote message for **{chore}** was deleted. Difficulty unchanged."
)

// Render replaces {field} placeholders with the given values. Unknown
// placeholders are left in place so missing fields are visible in output.
func Render(template string, fields map[string]string) string {
	result := template
	for key, value := range fields {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result
}

// Mention formats a Discord user mention.
func Mention(discordID string) string {
	return "<@" + discordID + ">"
}
