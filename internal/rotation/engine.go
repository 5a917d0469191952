package rotation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/martinszuc/discord-chores-bot/internal/roster"
	"github.com/martinszuc/discord-chores-bot/internal/storage"
)

// CompletionKind distinguishes the first completion of a chore from an
// additional completion by another flatmate, so callers can pick different
// notification wording.
type CompletionKind int

const (
	CompletionFirst CompletionKind = iota
	CompletionAdditional
)

// Engine computes weekly assignments and owns the per-cycle state machine.
// Every mutating operation is serialized by an internal mutex, computes the
// next state fully, persists it with a single record write and only then
// commits it in memory.
type Engine struct {
	roster *roster.Store
	record storage.Record
	clock  Clock
	rand   Rand

	mu    sync.Mutex
	state State
}

// NewEngine loads the rotation state record, starting from all-empty
// defaults when the record is absent.
func NewEngine(ctx context.Context, store *roster.Store, record storage.Record, clock Clock, rnd Rand) (*Engine, error) {
	e := &Engine{roster: store, record: record, clock: clock, rand: rnd}

	data, err := record.Load(ctx, storage.ScheduleKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule record: %w", err)
	}
	if data == nil {
		e.state = newState()
		return e, nil
	}
	if err := json.Unmarshal(data, &e.state); err != nil {
		return nil, fmt.Errorf("invalid schedule record: %w", err)
	}
	e.state.normalize()
	return e, nil
}

// persist saves the candidate state and commits it on success. Callers must
// hold e.mu.
func (e *Engine) persist(ctx context.Context, next State) error {
	data, err := encodeState(next)
	if err != nil {
		return err
	}
	if err := e.record.Save(ctx, storage.ScheduleKey, data); err != nil {
		return fmt.Errorf("failed to save schedule record: %w", err)
	}
	e.state = next
	return nil
}

func encodeState(next State) ([]byte, error) {
	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule record: %w", err)
	}
	return data, nil
}

// Assignments returns the current cycle's chore -> flatmate map.
func (e *Engine) Assignments() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyStringMap(e.state.CurrentAssignments)
}

// AssigneeFor returns the current assignee of a chore.
func (e *Engine) AssigneeFor(chore string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	name, ok := e.state.CurrentAssignments[chore]
	return name, ok
}

// PendingChores returns the chores not yet completed this cycle.
func (e *Engine) PendingChores() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.state.PendingChores...)
}

// LastPosted returns when the schedule was last generated, or nil.
func (e *Engine) LastPosted() *time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.LastPosted == nil {
		return nil
	}
	t := *e.state.LastPosted
	return &t
}

// Snapshot returns a copy of the full cycle state for status reporting.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state)
}

// GenerateCycle computes and persists a new weekly assignment.
//
// The current assignments are snapshotted as the previous cycle, flatmates
// excluded for this rotation are skipped (and the exclusion list cleared),
// chores are frequency-gated against the ISO week, and the remaining chores
// are matched hardest-first to flatmates in priority order while avoiding
// back-to-back repeats of the same chore.
func (e *Engine) GenerateCycle(ctx context.Context) (map[string]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := cloneState(e.state)

	if len(next.CurrentAssignments) > 0 {
		next.PreviousAssignments = copyStringMap(next.CurrentAssignments)
	}

	prevChoreByFlatmate := make(map[string]string, len(next.PreviousAssignments))
	for chore, name := range next.PreviousAssignments {
		prevChoreByFlatmate[name] = chore
	}

	// Eligible flatmates: active minus this rotation's exclusions.
	var flatmates []roster.Flatmate
	for _, f := range e.roster.ActiveFlatmates() {
		if !containsFold(next.ExcludedForNextRotation, f.Name) {
			flatmates = append(flatmates, f)
		}
	}

	// Frequency gate. A chore that passes the gate records the current week
	// immediately, even if nobody ends up assigned to it below. That is the
	// documented behavior: an eligible-but-unassigned chore counts as seen.
	week := e.clock.ISOWeek()
	var eligible []roster.Chore
	for _, c := range e.roster.Chores() {
		freq := c.Frequency
		if freq < 1 {
			freq = 1
		}
		last := next.LastRotationWeek[c.Name]
		// Euclidean mod so the gate behaves across the ISO-week year wrap.
		if freq == 1 || ((week-last)%freq+freq)%freq == 0 {
			eligible = append(eligible, c)
			next.LastRotationWeek[c.Name] = week
		}
	}

	if len(flatmates) == 0 || len(eligible) == 0 {
		log.Printf("Engine: nothing to schedule (%d flatmates, %d eligible chores)", len(flatmates), len(eligible))
		if err := e.persist(ctx, next); err != nil {
			return nil, err
		}
		return map[string]string{}, ErrNothingToSchedule
	}

	// Priority: fewer completions raise priority, skips raise it further,
	// and holding any chore last cycle pushes a flatmate back.
	scores := make(map[string]int, len(flatmates))
	for _, f := range flatmates {
		score := 100 - f.Stats.Completed*10 + f.Stats.Skipped*5
		if _, held := prevChoreByFlatmate[f.Name]; held {
			score -= 15
		}
		scores[f.Name] = score
	}
	sorted := append([]roster.Flatmate(nil), flatmates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scores[sorted[i].Name] > scores[sorted[j].Name]
	})

	// Hardest chores pick first.
	ordered := append([]roster.Chore(nil), eligible...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Difficulty > ordered[j].Difficulty
	})

	assignments := make(map[string]string, len(ordered))
	var assignedOrder []string

	// First pass: one chore per flatmate, avoiding last cycle's assignee of
	// that specific chore when any other candidate remains.
	available := append([]roster.Flatmate(nil), sorted...)
	for _, c := range ordered {
		if len(available) == 0 {
			break
		}
		pick := -1
		for i, f := range available {
			if !strings.EqualFold(f.Name, next.PreviousAssignments[c.Name]) {
				pick = i
				break
			}
		}
		if pick == -1 {
			pick = 0
		}
		assignments[c.Name] = available[pick].Name
		assignedOrder = append(assignedOrder, c.Name)
		available = append(available[:pick], available[pick+1:]...)
	}

	// Second pass: chores outnumber flatmates. Stack leftovers onto the
	// least-loaded flatmate by assigned difficulty sum, recomputing load
	// after each assignment; ties fall back to priority order.
	load := make(map[string]int, len(sorted))
	difficulty := make(map[string]int, len(ordered))
	for _, c := range ordered {
		difficulty[c.Name] = c.Difficulty
	}
	for chore, name := range assignments {
		load[name] += difficulty[chore]
	}
	for _, c := range ordered {
		if _, done := assignments[c.Name]; done {
			continue
		}
		pick := sorted[0].Name
		for _, f := range sorted[1:] {
			if load[f.Name] < load[pick] {
				pick = f.Name
			}
		}
		assignments[c.Name] = pick
		assignedOrder = append(assignedOrder, c.Name)
		load[pick] += c.Difficulty
	}

	now := e.clock.Now()
	next.LastPosted = &now
	next.CurrentAssignments = assignments
	next.VotedFlatmates = nil
	next.PendingChores = assignedOrder
	next.CompletedBy = make(map[string][]string, len(assignments))
	for chore := range assignments {
		next.CompletedBy[chore] = []string{}
	}
	next.ExcludedForNextRotation = nil

	// The post-vacation boost flag is one-shot: consumed by this pass. Both
	// records commit in a single write so a failure leaves neither applied.
	data, err := encodeState(next)
	if err != nil {
		return nil, err
	}
	if err := e.roster.ClearRecentlyReturnedWith(ctx, map[string][]byte{storage.ScheduleKey: data}); err != nil {
		return nil, err
	}
	e.state = next
	log.Printf("Engine: generated cycle with %d assignments for week %d", len(assignments), week)
	return copyStringMap(assignments), nil
}

// MarkCompleted records a completion of a chore. The completer is the helper
// when one is given, otherwise the assignee; the completer alone receives
// completion credit.
func (e *Engine) MarkCompleted(ctx context.Context, chore, assignee, helper string) (CompletionKind, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.state.CurrentAssignments[chore]; !ok {
		return 0, ErrUnknownChore
	}

	completer := assignee
	if helper != "" {
		completer = helper
	}

	next := cloneState(e.state)

	kind := CompletionFirst
	if !containsFold(next.PendingChores, chore) {
		// Already completed once. The same flatmate marking it again is an
		// idempotent duplicate; anyone else is an additional completion.
		if containsFold(next.CompletedBy[chore], completer) {
			return 0, ErrAlreadyCompleted
		}
		kind = CompletionAdditional
		next.CompletedBy[chore] = append(next.CompletedBy[chore], completer)
	} else {
		next.PendingChores = removeString(next.PendingChores, chore)
		next.CompletedBy[chore] = append(next.CompletedBy[chore], completer)
		if !containsFold(next.VotedFlatmates, completer) {
			next.VotedFlatmates = append(next.VotedFlatmates, completer)
		}
	}

	// The completed counter and the cycle state commit in one write, so a
	// failed save never leaves a durable increment behind for a retry to
	// double-count.
	data, err := encodeState(next)
	if err != nil {
		return 0, err
	}
	deltas := []roster.StatDelta{{Name: completer, Kind: roster.StatCompleted, By: 1}}
	if err := e.roster.ApplyStatDeltasWith(ctx, deltas, map[string][]byte{storage.ScheduleKey: data}); err != nil {
		return 0, err
	}
	e.state = next
	log.Printf("Engine: chore %q completed by %s", chore, completer)
	return kind, nil
}

// DeclineAndReassign hands a declined chore to a uniformly random eligible
// flatmate. Only the current assignee may decline. The decliner's skipped
// counter, the new assignee's reassigned counter and the updated assignment
// commit in one write; the chore stays pending under the new assignee.
func (e *Engine) DeclineAndReassign(ctx context.Context, chore, decliner string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, ok := e.state.CurrentAssignments[chore]
	if !ok {
		return "", ErrUnknownChore
	}
	if !strings.EqualFold(current, decliner) {
		return "", ErrNotAssignee
	}

	next := cloneState(e.state)
	if !containsFold(next.VotedFlatmates, decliner) {
		next.VotedFlatmates = append(next.VotedFlatmates, decliner)
	}

	active := e.roster.ActiveFlatmates()
	var pool []roster.Flatmate
	for _, f := range active {
		if strings.EqualFold(f.Name, decliner) || containsFold(next.VotedFlatmates, f.Name) {
			continue
		}
		pool = append(pool, f)
	}
	if len(pool) == 0 {
		// Everyone has acted this cycle; widen to anyone but the decliner.
		for _, f := range active {
			if !strings.EqualFold(f.Name, decliner) {
				pool = append(pool, f)
			}
		}
	}
	if len(pool) == 0 {
		return "", ErrNoEligibleCandidate
	}

	target := pool[e.rand.Intn(len(pool))]

	next.CurrentAssignments[chore] = target.Name
	if !containsFold(next.VotedFlatmates, target.Name) {
		next.VotedFlatmates = append(next.VotedFlatmates, target.Name)
	}

	data, err := encodeState(next)
	if err != nil {
		return "", err
	}
	deltas := []roster.StatDelta{
		{Name: decliner, Kind: roster.StatSkipped, By: 1},
		{Name: target.Name, Kind: roster.StatReassigned, By: 1},
	}
	if err := e.roster.ApplyStatDeltasWith(ctx, deltas, map[string][]byte{storage.ScheduleKey: data}); err != nil {
		return "", err
	}
	e.state = next
	log.Printf("Engine: chore %q reassigned from %s to %s", chore, decliner, target.Name)
	return target.Name, nil
}

// ToggleExclusion flips a flatmate in or out of the next rotation's
// exclusion set. The set is consumed and cleared by the next GenerateCycle.
func (e *Engine) ToggleExclusion(ctx context.Context, name string) (bool, error) {
	if _, err := e.roster.GetFlatmate(name); err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := cloneState(e.state)
	excluded := !containsFold(next.ExcludedForNextRotation, name)
	if excluded {
		next.ExcludedForNextRotation = append(next.ExcludedForNextRotation, name)
	} else {
		next.ExcludedForNextRotation = removeString(next.ExcludedForNextRotation, name)
	}
	if err := e.persist(ctx, next); err != nil {
		return false, err
	}
	return excluded, nil
}

// SetVacation stores the vacation flag and arms the one-shot
// recently-returned boost when a flatmate comes back.
func (e *Engine) SetVacation(ctx context.Context, name string, onVacation bool) error {
	f, err := e.roster.GetFlatmate(name)
	if err != nil {
		return err
	}
	if err := e.roster.SetVacation(ctx, name, onVacation); err != nil {
		return err
	}
	if f.OnVacation && !onVacation {
		return e.roster.SetRecentlyReturned(ctx, name, true)
	}
	return nil
}

// Reset clears the whole cycle state back to empty defaults.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persist(ctx, newState())
}
