package rotation

import (
	"context"
	"math"
)

// TallyDifficultyVotes computes the settled difficulty from a map of
// difficulty level -> vote count. Levels outside 1-5 are ignored. The
// weighted average is rounded to the nearest integer and clamped to [1,5].
// The returned total is the number of counted votes; zero means no result.
func TallyDifficultyVotes(counts map[int]int) (level int, total int) {
	weighted := 0
	for lvl, count := range counts {
		if lvl < 1 || lvl > 5 || count <= 0 {
			continue
		}
		weighted += lvl * count
		total += count
	}
	if total == 0 {
		return 0, 0
	}
	level = int(math.Round(float64(weighted) / float64(total)))
	if level < 1 {
		level = 1
	} else if level > 5 {
		level = 5
	}
	return level, total
}

// SettleDifficultyVote applies a finished community vote to a chore. A
// cancelled window (vote message deleted) reports ErrVoteLost; a window that
// closed with no votes reports ErrNoVotes. Difficulty is unchanged in both
// cases.
func (e *Engine) SettleDifficultyVote(ctx context.Context, chore string, counts map[int]int, cancelled bool) (int, error) {
	if cancelled {
		return 0, ErrVoteLost
	}
	level, total := TallyDifficultyVotes(counts)
	if total == 0 {
		return 0, ErrNoVotes
	}
	if err := e.roster.SetDifficulty(ctx, chore, level); err != nil {
		return 0, err
	}
	return level, nil
}
