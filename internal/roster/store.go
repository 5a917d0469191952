package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/martinszuc/discord-chores-bot/internal/storage"
)

// Store owns the roster document: flatmates, chore definitions and schedule
// settings. Every mutation rewrites the whole document with a single save
// before the in-memory copy is updated, so a persistence failure leaves
// nothing half-applied.
type Store struct {
	record storage.Record
	key    string

	mu  sync.Mutex
	doc Document
}

// NewStore loads the roster record, creating an empty document with default
// settings when the record is absent.
func NewStore(ctx context.Context, record storage.Record) (*Store, error) {
	s := &Store{record: record, key: storage.RosterKey}

	data, err := record.Load(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster record: %w", err)
	}
	if data == nil {
		s.doc = Document{Settings: DefaultSettings()}
		return s, nil
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("invalid roster record: %w", err)
	}
	return s, nil
}

// Seed replaces an empty roster with the given flatmates and chores. Used
// once at startup to import config-file entries into the persisted record.
func (s *Store) Seed(ctx context.Context, flatmates []Flatmate, chores []Chore, settings ScheduleSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.doc.Flatmates) > 0 || len(s.doc.Chores) > 0 {
		return nil
	}
	next := cloneDocument(s.doc)
	next.Flatmates = append([]Flatmate(nil), flatmates...)
	next.Chores = append([]Chore(nil), chores...)
	next.Settings = settings
	return s.persist(ctx, next)
}

// persist saves the candidate document and commits it in memory only on
// success. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context, next Document) error {
	return s.persistWith(ctx, next, nil)
}

// persistWith saves the candidate document, and any extra documents, in one
// atomic write: either every record is replaced or none is. Callers must
// hold s.mu.
func (s *Store) persistWith(ctx context.Context, next Document, extra map[string][]byte) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode roster record: %w", err)
	}
	if len(extra) == 0 {
		if err := s.record.Save(ctx, s.key, data); err != nil {
			return fmt.Errorf("failed to save roster record: %w", err)
		}
		s.doc = next
		return nil
	}

	docs := make(map[string][]byte, len(extra)+1)
	docs[s.key] = data
	for key, doc := range extra {
		docs[key] = doc
	}
	if err := s.record.SaveAll(ctx, docs); err != nil {
		return fmt.Errorf("failed to save roster record: %w", err)
	}
	s.doc = next
	return nil
}

func cloneDocument(doc Document) Document {
	next := doc
	next.Flatmates = append([]Flatmate(nil), doc.Flatmates...)
	next.Chores = append([]Chore(nil), doc.Chores...)
	return next
}

func (s *Store) findFlatmate(doc *Document, name string) *Flatmate {
	for i := range doc.Flatmates {
		if strings.EqualFold(doc.Flatmates[i].Name, name) {
			return &doc.Flatmates[i]
		}
	}
	return nil
}

func (s *Store) findChore(doc *Document, name string) *Chore {
	for i := range doc.Chores {
		if strings.EqualFold(doc.Chores[i].Name, name) {
			return &doc.Chores[i]
		}
	}
	return nil
}

// AddFlatmate creates a flatmate with zero stats, not on vacation.
func (s *Store) AddFlatmate(ctx context.Context, name, discordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneDocument(s.doc)
	if s.findFlatmate(&next, name) != nil {
		return ErrDuplicateName
	}
	for i := range next.Flatmates {
		if next.Flatmates[i].DiscordID == discordID {
			return ErrDuplicateDiscordID
		}
	}
	next.Flatmates = append(next.Flatmates, Flatmate{Name: name, DiscordID: discordID})
	return s.persist(ctx, next)
}

// RemoveFlatmate deletes a flatmate by name.
func (s *Store) RemoveFlatmate(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneDocument(s.doc)
	for i := range next.Flatmates {
		if strings.EqualFold(next.Flatmates[i].Name, name) {
			next.Flatmates = append(next.Flatmates[:i], next.Flatmates[i+1:]...)
			return s.persist(ctx, next)
		}
	}
	return ErrFlatmateNotFound
}

// GetFlatmate returns a flatmate by name.
func (s *Store) GetFlatmate(name string) (Flatmate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.findFlatmate(&s.doc, name); f != nil {
		return *f, nil
	}
	return Flatmate{}, ErrFlatmateNotFound
}

// GetFlatmateByDiscordID resolves an external platform id to a flatmate.
func (s *Store) GetFlatmateByDiscordID(discordID string) (Flatmate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Flatmates {
		if s.doc.Flatmates[i].DiscordID == discordID {
			return s.doc.Flatmates[i], nil
		}
	}
	return Flatmate{}, ErrFlatmateNotFound
}

// Flatmates returns all flatmates in storage order.
func (s *Store) Flatmates() []Flatmate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Flatmate(nil), s.doc.Flatmates...)
}

// ActiveFlatmates returns flatmates not on vacation, in storage order.
func (s *Store) ActiveFlatmates() []Flatmate {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []Flatmate
	for _, f := range s.doc.Flatmates {
		if !f.OnVacation {
			active = append(active, f)
		}
	}
	return active
}

// SetVacation stores the vacation flag. The recently-returned transition is
// driven by the engine workflow, which calls SetRecentlyReturned when the
// flag goes true -> false.
func (s *Store) SetVacation(ctx context.Context, name string, onVacation bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneDocument(s.doc)
	f := s.findFlatmate(&next, name)
	if f == nil {
		return ErrFlatmateNotFound
	}
	f.OnVacation = onVacation
	return s.persist(ctx, next)
}

// SetRecentlyReturned sets the one-shot post-vacation priority flag.
func (s *Store) SetRecentlyReturned(ctx context.Context, name string, flag bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneDocument(s.doc)
	f := s.findFlatmate(&next, name)
	if f == nil {
		return ErrFlatmateNotFound
	}
	f.RecentlyReturned = flag
	return s.persist(ctx, next)
}

// ClearRecentlyReturned drops the one-shot flag for every flatmate that has
// it set. A single persisted write regardless of how many are cleared.
func (s *Store) ClearRecentlyReturned(ctx context.Context) error {
	return s.ClearRecentlyReturnedWith(ctx, nil)
}

// ClearRecentlyReturnedWith drops the one-shot flags and persists the extra
// documents in the same write, so a caller updating its own record alongside
// the roster cannot end up with one committed and the other not.
func (s *Store) ClearRecentlyReturnedWith(ctx context.Context, extra map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneDocument(s.doc)
	changed := false
	for i := range next.Flatmates {
		if next.Flatmates[i].RecentlyReturned {
			next.Flatmates[i].RecentlyReturned = false
			changed = true
		}
	}
	if !changed && len(extra) == 0 {
		return nil
	}
	return s.persistWith(ctx, next, extra)
}

// IncrementStat bumps one counter for one flatmate.
func (s *Store) IncrementStat(ctx context.Context, name string, kind StatKind, by int) error {
	return s.ApplyStatDeltas(ctx, []StatDelta{{Name: name, Kind: kind, By: by}})
}

// StatDelta is one counter increment inside a batched stats update.
type StatDelta struct {
	Name string
	Kind StatKind
	By   int
}

// ApplyStatDeltas applies every delta and persists once, so a logical engine
// operation that credits two flatmates is a single write.
func (s *Store) ApplyStatDeltas(ctx context.Context, deltas []StatDelta) error {
	return s.ApplyStatDeltasWith(ctx, deltas, nil)
}

// ApplyStatDeltasWith applies the deltas and persists the extra documents in
// the same write. A failure leaves every record, counter included,
// untouched — a later retry of the whole operation cannot double-count.
func (s *Store) ApplyStatDeltasWith(ctx context.Context, deltas []StatDelta, extra map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneDocument(s.doc)
	for _, d := range deltas {
		f := s.findFlatmate(&next, d.Name)
		if f == nil {
			return ErrFlatmateNotFound
		}
		by := d.By
		if by == 0 {
			by = 1
		}
		switch d.Kind {
		case StatCompleted:
			f.Stats.Completed += by
		case StatReassigned:
			f.Stats.Reassigned += by
		case StatSkipped:
			f.Stats.Skipped += by
		default:
			return ErrUnknownStatKind
		}
	}
	return s.persistWith(ctx, next, extra)
}

// AddChore creates a chore definition. Frequency defaults to 1 (weekly) and
// difficulty to 1 when zero values are passed.
func (s *Store) AddChore(ctx context.Context, name string, frequency, difficulty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frequency == 0 {
		frequency = 1
	}
	if difficulty == 0 {
		difficulty = 1
	}
	if frequency < 1 {
		return ErrOutOfRange
	}
	if difficulty < 1 || difficulty > 5 {
		return ErrOutOfRange
	}

	next := cloneDocument(s.doc)
	if s.findChore(&next, name) != nil {
		return ErrDuplicateChore
	}
	next.Chores = append(next.Chores, Chore{Name: name, Frequency: frequency, Difficulty: difficulty})
	return s.persist(ctx, next)
}

// RemoveChore deletes a chore definition.
func (s *Store) RemoveChore(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneDocument(s.doc)
	for i := range next.Chores {
		if strings.EqualFold(next.Chores[i].Name, name) {
			next.Chores = append(next.Chores[:i], next.Chores[i+1:]...)
			return s.persist(ctx, next)
		}
	}
	return ErrChoreNotFound
}

// GetChore returns a chore definition by name.
func (s *Store) GetChore(name string) (Chore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.findChore(&s.doc, name); c != nil {
		return *c, nil
	}
	return Chore{}, ErrChoreNotFound
}

// Chores returns all chore definitions in storage order.
func (s *Store) Chores() []Chore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Chore(nil), s.doc.Chores...)
}

// SetDifficulty updates a chore's difficulty (1-5).
func (s *Store) SetDifficulty(ctx context.Context, name string, difficulty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if difficulty < 1 || difficulty > 5 {
		return ErrOutOfRange
	}
	next := cloneDocument(s.doc)
	c := s.findChore(&next, name)
	if c == nil {
		return ErrChoreNotFound
	}
	c.Difficulty = difficulty
	return s.persist(ctx, next)
}

// SetFrequency updates a chore's frequency (>= 1).
func (s *Store) SetFrequency(ctx context.Context, name string, frequency int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frequency < 1 {
		return ErrOutOfRange
	}
	next := cloneDocument(s.doc)
	c := s.findChore(&next, name)
	if c == nil {
		return ErrChoreNotFound
	}
	c.Frequency = frequency
	return s.persist(ctx, next)
}

// Settings returns the posting/reminder settings.
func (s *Store) Settings() ScheduleSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Settings
}

// UpdateSettings replaces the posting/reminder settings.
func (s *Store) UpdateSettings(ctx context.Context, settings ScheduleSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneDocument(s.doc)
	next.Settings = settings
	return s.persist(ctx, next)
}
