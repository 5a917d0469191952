// Package bot is the presentation layer: it turns engine results into
// Discord messages and reaction events into engine calls. All session
// state lives in an explicit session.Cache owned by the Bot, never in
// package globals, so tests can construct isolated instances.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/martinszuc/discord-chores-bot/config"
	"github.com/martinszuc/discord-chores-bot/internal/discord"
	"github.com/martinszuc/discord-chores-bot/internal/roster"
	"github.com/martinszuc/discord-chores-bot/internal/rotation"
	"github.com/martinszuc/discord-chores-bot/internal/session"
	"github.com/martinszuc/discord-chores-bot/templates"
)

// Notifier is the subset of the Discord client the bot needs. Split out so
// tests can run against a recording fake.
type Notifier interface {
	PostMessage(channelID, content string) (string, error)
	PostMessageEmbed(channelID, content string, embed *discord.Embed) (string, error)
	AddReaction(channelID, messageID, emoji string) error
	RemoveReaction(channelID, messageID, emoji, userID string) error
	DeleteMessage(channelID, messageID string) error
	PlayCelebration()
}

type Bot struct {
	cfg     *config.BotConfig
	roster  *roster.Store
	engine  *rotation.Engine
	cache   *session.Cache
	discord Notifier
}

func New(cfg *config.BotConfig, store *roster.Store, engine *rotation.Engine, cache *session.Cache, notifier Notifier) *Bot {
	return &Bot{cfg: cfg, roster: store, engine: engine, cache: cache, discord: notifier}
}

func (b *Bot) Engine() *rotation.Engine { return b.engine }
func (b *Bot) Roster() *roster.Store    { return b.roster }
func (b *Bot) Cache() *session.Cache    { return b.cache }

// PostSchedule generates a new cycle and posts one notification per
// assignment, registering each message in the session cache in the same
// step so reactions can never resolve to a stale assignee.
func (b *Bot) PostSchedule(ctx context.Context) (map[string]string, error) {
	assignments, err := b.engine.GenerateCycle(ctx)
	if err != nil {
		if errors.Is(err, rotation.ErrNothingToSchedule) {
			_, _ = b.discord.PostMessage(b.cfg.ChoresChannelID, templates.ErrNothingToSchedule)
		}
		return nil, err
	}

	b.cache.Clear()

	// Header message carries an at-a-glance embed of the whole rotation, in
	// assignment order.
	embed := &discord.Embed{Title: "This week's rotation"}
	for _, chore := range b.engine.PendingChores() {
		embed.Fields = append(embed.Fields, &discord.EmbedField{
			Name:   chore,
			Value:  assignments[chore],
			Inline: true,
		})
	}
	if _, err := b.discord.PostMessageEmbed(b.cfg.ChoresChannelID, templates.ScheduleHeader, embed); err != nil {
		log.Printf("Bot: failed to post schedule header: %v", err)
	}

	for chore, assignee := range assignments {
		if err := b.postAssignment(chore, assignee); err != nil {
			log.Printf("Bot: failed to post assignment for %q: %v", chore, err)
		}
	}

	if _, err := b.discord.PostMessage(b.cfg.ChoresChannelID, templates.ReactionInstructions); err != nil {
		log.Printf("Bot: failed to post instructions: %v", err)
	}
	return assignments, nil
}

// postAssignment emits one assignment notification, seeds its reactions and
// records the handle.
func (b *Bot) postAssignment(chore, assignee string) error {
	flatmate, err := b.roster.GetFlatmate(assignee)
	if err != nil {
		return err
	}

	content := templates.Render(templates.TaskAssignment, map[string]string{
		"mention": templates.Mention(flatmate.DiscordID),
		"chore":   chore,
	})
	messageID, err := b.discord.PostMessage(b.cfg.ChoresChannelID, content)
	if err != nil {
		return err
	}
	if messageID == "" {
		// The Discord-facing service returned no message id; mint a handle
		// so the assignment stays tracked for the rest of the cycle.
		messageID = session.NewHandle()
	}

	if err := b.discord.AddReaction(b.cfg.ChoresChannelID, messageID, b.cfg.Emoji.Completed); err != nil {
		log.Printf("Bot: failed to add completed reaction: %v", err)
	}
	if err := b.discord.AddReaction(b.cfg.ChoresChannelID, messageID, b.cfg.Emoji.Unavailable); err != nil {
		log.Printf("Bot: failed to add unavailable reaction: %v", err)
	}

	b.cache.Put(messageID, chore, assignee)
	return nil
}

// SendReminders pings the assignee of every still-pending chore.
func (b *Bot) SendReminders(ctx context.Context) error {
	pending := b.engine.PendingChores()
	if len(pending) == 0 {
		return nil
	}
	assignments := b.engine.Assignments()

	if _, err := b.discord.PostMessage(b.cfg.ChoresChannelID, templates.ReminderHeader); err != nil {
		return err
	}
	for _, chore := range pending {
		assignee, ok := assignments[chore]
		if !ok {
			continue
		}
		flatmate, err := b.roster.GetFlatmate(assignee)
		if err != nil {
			log.Printf("Bot: reminder skipped, flatmate %q missing: %v", assignee, err)
			continue
		}
		content := templates.Render(templates.ReminderMessage, map[string]string{
			"mention": templates.Mention(flatmate.DiscordID),
			"chore":   chore,
		})
		if _, err := b.discord.PostMessage(b.cfg.ChoresChannelID, content); err != nil {
			log.Printf("Bot: failed to send reminder for %q: %v", chore, err)
		}
	}
	return nil
}

// ReactionEvent is one raw reaction relayed by the Discord-facing service.
type ReactionEvent struct {
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Emoji     string `json:"emoji"`
}

// HandleReaction resolves a reaction event against the session cache and
// dispatches the matching engine transition. The returned string is the
// user-facing outcome message (empty when the reaction was silently
// discarded).
func (b *Bot) HandleReaction(ctx context.Context, event ReactionEvent) (string, error) {
	entry, ok := b.cache.Resolve(event.MessageID)
	if !ok {
		return "", nil
	}

	flatmate, err := b.roster.GetFlatmateByDiscordID(event.UserID)
	if err != nil {
		// Not a flatmate: strip the reaction and move on.
		if removeErr := b.discord.RemoveReaction(b.cfg.ChoresChannelID, event.MessageID, event.Emoji, event.UserID); removeErr != nil {
			log.Printf("Bot: failed to remove stray reaction: %v", removeErr)
		}
		return "", nil
	}

	switch event.Emoji {
	case b.cfg.Emoji.Completed:
		return b.handleCompletion(ctx, event, entry, flatmate)
	case b.cfg.Emoji.Unavailable:
		return b.handleDecline(ctx, event, entry, flatmate)
	default:
		if removeErr := b.discord.RemoveReaction(b.cfg.ChoresChannelID, event.MessageID, event.Emoji, event.UserID); removeErr != nil {
			log.Printf("Bot: failed to remove unrelated reaction: %v", removeErr)
		}
		return "", nil
	}
}

func (b *Bot) handleCompletion(ctx context.Context, event ReactionEvent, entry session.Entry, flatmate roster.Flatmate) (string, error) {
	var helper string
	if !strings.EqualFold(flatmate.Name, entry.Assignee) {
		helper = flatmate.Name
	}

	kind, err := b.engine.MarkCompleted(ctx, entry.Chore, entry.Assignee, helper)
	if err != nil {
		if errors.Is(err, rotation.ErrAlreadyCompleted) {
			return templates.Render(templates.TaskAlreadyCompleted, map[string]string{"chore": entry.Chore}), nil
		}
		return "", err
	}

	var content string
	switch {
	case helper != "" && kind == rotation.CompletionFirst:
		assignee, lookupErr := b.roster.GetFlatmate(entry.Assignee)
		assigneeMention := entry.Assignee
		if lookupErr == nil {
			assigneeMention = templates.Mention(assignee.DiscordID)
		}
		content = templates.Render(templates.TaskCompletedByHelper, map[string]string{
			"helper_mention":   templates.Mention(flatmate.DiscordID),
			"assignee_mention": assigneeMention,
			"chore":            entry.Chore,
		})
	case kind == rotation.CompletionAdditional:
		content = templates.Render(templates.TaskCompletedAgain, map[string]string{
			"mention": templates.Mention(flatmate.DiscordID),
			"chore":   entry.Chore,
		})
	default:
		content = templates.Render(templates.TaskCompleted, map[string]string{
			"mention": templates.Mention(flatmate.DiscordID),
			"chore":   entry.Chore,
		})
	}

	if _, postErr := b.discord.PostMessage(b.cfg.ChoresChannelID, content); postErr != nil {
		log.Printf("Bot: failed to post completion message: %v", postErr)
	}
	b.discord.PlayCelebration()
	return content, nil
}

func (b *Bot) handleDecline(ctx context.Context, event ReactionEvent, entry session.Entry, flatmate roster.Flatmate) (string, error) {
	if !strings.EqualFold(flatmate.Name, entry.Assignee) {
		if removeErr := b.discord.RemoveReaction(b.cfg.ChoresChannelID, event.MessageID, event.Emoji, event.UserID); removeErr != nil {
			log.Printf("Bot: failed to remove reaction: %v", removeErr)
		}
		return templates.Render(templates.ErrOnlyOwnChoreDecline, map[string]string{
			"mention": templates.Mention(flatmate.DiscordID),
		}), nil
	}

	newAssignee, err := b.engine.DeclineAndReassign(ctx, entry.Chore, flatmate.Name)
	if err != nil {
		if errors.Is(err, rotation.ErrNoEligibleCandidate) {
			msg := templates.Render(templates.ErrReassignFailed, map[string]string{"chore": entry.Chore})
			if _, postErr := b.discord.PostMessage(b.cfg.ChoresChannelID, msg); postErr != nil {
				log.Printf("Bot: failed to post reassignment failure: %v", postErr)
			}
			return msg, nil
		}
		return "", err
	}

	target, err := b.roster.GetFlatmate(newAssignee)
	if err != nil {
		return "", fmt.Errorf("reassigned to unknown flatmate %q: %w", newAssignee, err)
	}

	content := templates.Render(templates.TaskReassigned, map[string]string{
		"original_mention": templates.Mention(flatmate.DiscordID),
		"chore":            entry.Chore,
		"new_mention":      templates.Mention(target.DiscordID),
	})
	if _, postErr := b.discord.PostMessage(b.cfg.ChoresChannelID, content); postErr != nil {
		log.Printf("Bot: failed to post reassignment message: %v", postErr)
	}

	// Replace the outstanding notification: new message, new cache entry,
	// old handle invalidated and its message removed in the same step.
	if err := b.postAssignment(entry.Chore, newAssignee); err != nil {
		log.Printf("Bot: failed to post reassignment notification: %v", err)
	}
	b.cache.Invalidate(event.MessageID)
	if err := b.discord.DeleteMessage(b.cfg.ChoresChannelID, event.MessageID); err != nil {
		log.Printf("Bot: failed to delete stale notification: %v", err)
	}
	return content, nil
}

// StartDifficultyVote posts the vote message with the five difficulty
// reactions and registers its handle.
func (b *Bot) StartDifficultyVote(ctx context.Context, chore string) (string, error) {
	if _, err := b.roster.GetChore(chore); err != nil {
		return "", err
	}

	if _, err := b.discord.PostMessage(b.cfg.ChoresChannelID, templates.DifficultyVoteHeader); err != nil {
		log.Printf("Bot: failed to post vote header: %v", err)
	}
	content := templates.Render(templates.DifficultyVoteInstructions, map[string]string{"chore": chore})
	messageID, err := b.discord.PostMessage(b.cfg.ChoresChannelID, content)
	if err != nil {
		return "", err
	}
	if messageID == "" {
		messageID = session.NewHandle()
	}
	for level := 1; level <= 5; level++ {
		if err := b.discord.AddReaction(b.cfg.ChoresChannelID, messageID, b.cfg.Emoji.DifficultyEmoji(level)); err != nil {
			log.Printf("Bot: failed to add difficulty reaction %d: %v", level, err)
		}
	}
	b.cache.PutVote(messageID, chore)
	return messageID, nil
}

// SettleDifficultyVote applies the collected vote counts for an open vote
// message and reports the outcome.
func (b *Bot) SettleDifficultyVote(ctx context.Context, messageID string, counts map[int]int, cancelled bool) (string, error) {
	chore, ok := b.cache.ResolveVote(messageID)
	if !ok {
		return "", rotation.ErrVoteLost
	}
	b.cache.InvalidateVote(messageID)

	level, err := b.engine.SettleDifficultyVote(ctx, chore, counts, cancelled)
	switch {
	case errors.Is(err, rotation.ErrVoteLost):
		return templates.Render(templates.DifficultyVoteLost, map[string]string{"chore": chore}), err
	case errors.Is(err, rotation.ErrNoVotes):
		return templates.Render(templates.DifficultyVoteNoVotes, map[string]string{"chore": chore}), err
	case err != nil:
		return "", err
	}

	content := templates.Render(templates.DifficultyVoteResult, map[string]string{
		"chore": chore,
		"level": fmt.Sprintf("%d", level),
	})
	if _, postErr := b.discord.PostMessage(b.cfg.ChoresChannelID, content); postErr != nil {
		log.Printf("Bot: failed to post vote result: %v", postErr)
	}
	return content, nil
}
