package rotation

import (
	"math/rand"
	"time"
)

// Clock supplies the current timestamp and ISO week number. Injected so
// frequency gating and last-posted bookkeeping are testable without the
// wall clock.
type Clock interface {
	Now() time.Time
	ISOWeek() int
}

// Rand selects reassignment candidates. Injected so tests can script the
// selection.
type Rand interface {
	Intn(n int) int
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) ISOWeek() int {
	_, week := time.Now().ISOWeek()
	return week
}

// SystemRand is the production Rand.
type SystemRand struct{}

func (SystemRand) Intn(n int) int { return rand.Intn(n) }
