package rotation

import "errors"

// Expected engine conditions, returned as values so call sites dispatch with
// errors.Is. Anything the engine wraps around a storage failure is fatal to
// the in-progress operation.
var (
	ErrUnknownChore        = errors.New("chore not found in current assignments")
	ErrNotAssignee         = errors.New("only the assigned flatmate may do this")
	ErrAlreadyCompleted    = errors.New("chore already completed by this flatmate")
	ErrNoEligibleCandidate = errors.New("no eligible flatmate for reassignment")
	ErrNothingToSchedule   = errors.New("no flatmates or no eligible chores to schedule")
	ErrNoVotes             = errors.New("no votes were cast")
	ErrVoteLost            = errors.New("difficulty vote was cancelled")
)
