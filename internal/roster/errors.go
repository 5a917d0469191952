package roster

import "errors"

// Expected, recoverable store conditions. Callers dispatch with errors.Is;
// anything else returned by the store is a persistence failure.
var (
	ErrFlatmateNotFound   = errors.New("flatmate not found")
	ErrChoreNotFound      = errors.New("chore not found")
	ErrDuplicateName      = errors.New("flatmate with this name already exists")
	ErrDuplicateDiscordID = errors.New("flatmate with this discord id already exists")
	ErrDuplicateChore     = errors.New("chore already exists")
	ErrUnknownStatKind    = errors.New("unknown statistic kind")
	ErrOutOfRange         = errors.New("value out of range")
)
