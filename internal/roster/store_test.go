package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martinszuc/discord-chores-bot/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.MemoryRecord) {
	t.Helper()
	record := storage.NewMemoryRecord()
	store, err := NewStore(context.Background(), record)
	require.NoError(t, err)
	return store, record
}

func TestAddFlatmateDuplicates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))
	require.ErrorIs(t, store.AddFlatmate(ctx, "alice", "222"), ErrDuplicateName)
	require.ErrorIs(t, store.AddFlatmate(ctx, "Bob", "111"), ErrDuplicateDiscordID)
	require.Len(t, store.Flatmates(), 1)
}

func TestFlatmateLookup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))

	f, err := store.GetFlatmate("ALICE")
	require.NoError(t, err)
	require.Equal(t, "Alice", f.Name)

	f, err = store.GetFlatmateByDiscordID("111")
	require.NoError(t, err)
	require.Equal(t, "Alice", f.Name)

	_, err = store.GetFlatmate("Nobody")
	require.ErrorIs(t, err, ErrFlatmateNotFound)
	_, err = store.GetFlatmateByDiscordID("999")
	require.ErrorIs(t, err, ErrFlatmateNotFound)
}

func TestRemoveFlatmate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))
	require.NoError(t, store.RemoveFlatmate(ctx, "alice"))
	require.Empty(t, store.Flatmates())
	require.ErrorIs(t, store.RemoveFlatmate(ctx, "Alice"), ErrFlatmateNotFound)
}

func TestActiveFlatmatesSkipVacationers(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))
	require.NoError(t, store.AddFlatmate(ctx, "Bob", "222"))
	require.NoError(t, store.SetVacation(ctx, "Alice", true))

	active := store.ActiveFlatmates()
	require.Len(t, active, 1)
	require.Equal(t, "Bob", active[0].Name)

	require.ErrorIs(t, store.SetVacation(ctx, "Nobody", true), ErrFlatmateNotFound)
}

func TestClearRecentlyReturned(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))
	require.NoError(t, store.AddFlatmate(ctx, "Bob", "222"))
	require.NoError(t, store.SetRecentlyReturned(ctx, "Alice", true))
	require.NoError(t, store.SetRecentlyReturned(ctx, "Bob", true))

	require.NoError(t, store.ClearRecentlyReturned(ctx))
	for _, f := range store.Flatmates() {
		require.False(t, f.RecentlyReturned)
	}
}

func TestStatDeltas(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))
	require.NoError(t, store.AddFlatmate(ctx, "Bob", "222"))

	require.NoError(t, store.IncrementStat(ctx, "Alice", StatCompleted, 1))
	require.NoError(t, store.ApplyStatDeltas(ctx, []StatDelta{
		{Name: "Alice", Kind: StatSkipped},
		{Name: "Bob", Kind: StatReassigned},
	}))

	alice, err := store.GetFlatmate("Alice")
	require.NoError(t, err)
	require.Equal(t, Stats{Completed: 1, Skipped: 1}, alice.Stats)

	bob, err := store.GetFlatmate("Bob")
	require.NoError(t, err)
	require.Equal(t, 1, bob.Stats.Reassigned)

	require.ErrorIs(t, store.IncrementStat(ctx, "Nobody", StatCompleted, 1), ErrFlatmateNotFound)
	require.ErrorIs(t, store.IncrementStat(ctx, "Alice", StatKind("banana"), 1), ErrUnknownStatKind)
}

func TestStatDeltasAtomicOnBadEntry(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))
	err := store.ApplyStatDeltas(ctx, []StatDelta{
		{Name: "Alice", Kind: StatCompleted},
		{Name: "Nobody", Kind: StatCompleted},
	})
	require.ErrorIs(t, err, ErrFlatmateNotFound)

	alice, err := store.GetFlatmate("Alice")
	require.NoError(t, err)
	require.Equal(t, 0, alice.Stats.Completed)
}

func TestStatDeltasWithExtraDocument(t *testing.T) {
	store, record := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))

	extra := map[string][]byte{storage.ScheduleKey: []byte(`{"pending_chores":["Dishes"]}`)}
	require.NoError(t, store.ApplyStatDeltasWith(ctx, []StatDelta{
		{Name: "Alice", Kind: StatCompleted},
	}, extra))

	alice, err := store.GetFlatmate("Alice")
	require.NoError(t, err)
	require.Equal(t, 1, alice.Stats.Completed)

	data, err := record.Load(ctx, storage.ScheduleKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"pending_chores":["Dishes"]}`, string(data))

	// A failed joint write commits neither document.
	record.FailNextSave = errors.New("redis down")
	err = store.ApplyStatDeltasWith(ctx, []StatDelta{
		{Name: "Alice", Kind: StatCompleted},
	}, map[string][]byte{storage.ScheduleKey: []byte(`{}`)})
	require.Error(t, err)

	alice, err = store.GetFlatmate("Alice")
	require.NoError(t, err)
	require.Equal(t, 1, alice.Stats.Completed)

	data, err = record.Load(ctx, storage.ScheduleKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"pending_chores":["Dishes"]}`, string(data))
}

func TestAddChoreValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddChore(ctx, "Dishes", 0, 0))
	c, err := store.GetChore("dishes")
	require.NoError(t, err)
	require.Equal(t, 1, c.Frequency)
	require.Equal(t, 1, c.Difficulty)

	require.ErrorIs(t, store.AddChore(ctx, "DISHES", 1, 3), ErrDuplicateChore)
	require.ErrorIs(t, store.AddChore(ctx, "Trash", -1, 3), ErrOutOfRange)
	require.ErrorIs(t, store.AddChore(ctx, "Trash", 1, 6), ErrOutOfRange)
}

func TestChoreUpdates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddChore(ctx, "Dishes", 1, 3))
	require.NoError(t, store.SetDifficulty(ctx, "Dishes", 5))
	require.NoError(t, store.SetFrequency(ctx, "Dishes", 2))

	c, err := store.GetChore("Dishes")
	require.NoError(t, err)
	require.Equal(t, 5, c.Difficulty)
	require.Equal(t, 2, c.Frequency)

	require.ErrorIs(t, store.SetDifficulty(ctx, "Dishes", 0), ErrOutOfRange)
	require.ErrorIs(t, store.SetDifficulty(ctx, "Dishes", 6), ErrOutOfRange)
	require.ErrorIs(t, store.SetFrequency(ctx, "Dishes", 0), ErrOutOfRange)
	require.ErrorIs(t, store.SetDifficulty(ctx, "Gardening", 3), ErrChoreNotFound)

	require.NoError(t, store.RemoveChore(ctx, "dishes"))
	require.ErrorIs(t, store.RemoveChore(ctx, "Dishes"), ErrChoreNotFound)
}

func TestSeedOnlyOnEmptyRoster(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx,
		[]Flatmate{{Name: "Alice", DiscordID: "111"}},
		[]Chore{{Name: "Dishes", Frequency: 1, Difficulty: 3}},
		DefaultSettings()))
	require.Len(t, store.Flatmates(), 1)
	require.Len(t, store.Chores(), 1)

	// A populated roster wins over the config file on later startups.
	require.NoError(t, store.Seed(ctx,
		[]Flatmate{{Name: "Zed", DiscordID: "999"}},
		nil,
		DefaultSettings()))
	require.Len(t, store.Flatmates(), 1)
	require.Equal(t, "Alice", store.Flatmates()[0].Name)
}

func TestDocumentRoundTrip(t *testing.T) {
	store, record := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))
	require.NoError(t, store.SetVacation(ctx, "Alice", true))
	require.NoError(t, store.IncrementStat(ctx, "Alice", StatCompleted, 2))
	require.NoError(t, store.AddChore(ctx, "Dishes", 2, 4))

	settings := DefaultSettings()
	settings.PostingDay = "Sunday"
	settings.RemindersEnabled = false
	require.NoError(t, store.UpdateSettings(ctx, settings))

	reloaded, err := NewStore(ctx, record)
	require.NoError(t, err)

	f, err := reloaded.GetFlatmate("Alice")
	require.NoError(t, err)
	require.True(t, f.OnVacation)
	require.Equal(t, 2, f.Stats.Completed)

	c, err := reloaded.GetChore("Dishes")
	require.NoError(t, err)
	require.Equal(t, 2, c.Frequency)
	require.Equal(t, 4, c.Difficulty)

	require.Equal(t, settings, reloaded.Settings())
}

func TestPersistFailureKeepsOldDocument(t *testing.T) {
	store, record := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddFlatmate(ctx, "Alice", "111"))

	record.FailNextSave = errors.New("redis down")
	require.Error(t, store.AddFlatmate(ctx, "Bob", "222"))
	require.Len(t, store.Flatmates(), 1)

	require.NoError(t, store.AddFlatmate(ctx, "Bob", "222"))
	require.Len(t, store.Flatmates(), 2)
}
