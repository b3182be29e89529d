package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rituals/internal/model"
	"github.com/roach88/rituals/internal/store"
	"github.com/roach88/rituals/internal/testutil"
)

var errDiskGone = model.NewStorageUnavailableError("disk gone", nil)

func newTestRepo(t *testing.T, s Store, clock *testutil.ManualClock) *Repository {
	t.Helper()
	repo := New(s, WithClock(clock.Now))
	t.Cleanup(func() { repo.Close() })
	return repo
}

func at(hours int) time.Time {
	return testutil.Epoch.Add(time.Duration(hours) * time.Hour)
}

func ritualIDs(rs []model.Ritual) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

// loaded returns a repo whose collection holds rituals.
func loaded(t *testing.T, clock *testutil.ManualClock, rituals ...model.Ritual) (*Repository, *fakeStore) {
	t.Helper()
	fs := newFakeStore(rituals...)
	repo := newTestRepo(t, fs, clock)
	require.NoError(t, repo.LoadRituals(context.Background()))
	return repo, fs
}

func TestNew_StartsLoading(t *testing.T) {
	repo := newTestRepo(t, newFakeStore(), testutil.NewManualClock(testutil.Epoch))

	state := repo.Snapshot()
	assert.True(t, state.Loading)
	assert.Empty(t, state.Rituals)
	assert.NoError(t, state.Err)
}

func TestLoadRituals_SortsByUpdatedAtDescending(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, _ := loaded(t, clock,
		testutil.Ritual("A", at(1)),
		testutil.Ritual("B", at(3)),
		testutil.Ritual("C", at(2)),
	)

	state := repo.Snapshot()
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
	assert.Equal(t, []string{"B", "C", "A"}, ritualIDs(state.Rituals))
}

func TestLoadRituals_FailureKeepsPreviousCollection(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock, testutil.Ritual("A", at(1)))

	fs.failWith(errDiskGone)
	err := repo.LoadRituals(context.Background())
	require.Error(t, err)
	assert.True(t, model.IsStorageUnavailable(err))

	state := repo.Snapshot()
	assert.False(t, state.Loading)
	assert.True(t, model.IsStorageUnavailable(state.Err))
	assert.Equal(t, []string{"A"}, ritualIDs(state.Rituals))
}

func TestLoadRituals_LoadingDuringFetch(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock, testutil.Ritual("A", at(1)))
	require.False(t, repo.Snapshot().Loading)

	updates, cancel := repo.Subscribe()
	defer cancel()
	<-updates

	entered, release := fs.blockGetAll()
	t.Cleanup(release)

	done := make(chan error, 1)
	go func() { done <- repo.LoadRituals(context.Background()) }()
	<-entered

	state := repo.Snapshot()
	assert.True(t, state.Loading)
	assert.Equal(t, []string{"A"}, ritualIDs(state.Rituals), "previous collection stays visible while loading")

	select {
	case s := <-updates:
		assert.True(t, s.Loading)
	case <-time.After(time.Second):
		t.Fatal("no state published when loading started")
	}

	release()
	require.NoError(t, <-done)
	assert.False(t, repo.Snapshot().Loading)
}

func TestLoadRituals_ClearsPreviousError(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock)

	fs.failWith(errDiskGone)
	require.Error(t, repo.LoadRituals(context.Background()))

	fs.failWith(nil)
	require.NoError(t, repo.LoadRituals(context.Background()))
	assert.NoError(t, repo.Snapshot().Err)
}

func TestCreateRitual_PersistsThenInsertsSorted(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock,
		testutil.Ritual("A", at(1)),
		testutil.Ritual("B", at(3)),
	)

	require.NoError(t, repo.CreateRitual(context.Background(), testutil.Ritual("C", at(2))))

	assert.Equal(t, []string{"B", "C", "A"}, ritualIDs(repo.Snapshot().Rituals))
	_, ok := fs.Get("C")
	assert.True(t, ok, "ritual should be persisted")
}

func TestCreateRitual_SameIDReplaces(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock,
		testutil.Ritual("A", at(1)),
		testutil.Ritual("B", at(2)),
	)

	again := testutil.Ritual("A", at(3))
	again.Title = "Renamed"
	require.NoError(t, repo.CreateRitual(context.Background(), again))

	state := repo.Snapshot()
	assert.Equal(t, []string{"A", "B"}, ritualIDs(state.Rituals))
	assert.Equal(t, "Renamed", state.Rituals[0].Title)

	stored, ok := fs.Get("A")
	require.True(t, ok)
	assert.Equal(t, "Renamed", stored.Title)

	require.NoError(t, repo.DeleteRitual(context.Background(), "A"))
	assert.Equal(t, []string{"B"}, ritualIDs(repo.Snapshot().Rituals))
}

func TestCreateRitual_StoreFailureLeavesMemoryUnchanged(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock, testutil.Ritual("A", at(1)))
	before := repo.Snapshot().Rituals

	fs.failWith(errDiskGone)
	err := repo.CreateRitual(context.Background(), testutil.Ritual("B", at(2)))
	require.Error(t, err)
	assert.True(t, model.IsStorageUnavailable(err))

	state := repo.Snapshot()
	assert.Equal(t, before, state.Rituals)
	assert.Error(t, state.Err)
}

func TestCreateRitual_RejectsInvalidRitual(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock)

	bad := testutil.Ritual("A", at(1))
	bad.Scale = 7

	err := repo.CreateRitual(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, model.IsInvalidRitual(err))
	assert.Empty(t, repo.Snapshot().Rituals)
	assert.Equal(t, []string{"GetAll"}, fs.Calls(), "invalid ritual must not reach the store")
}

func TestDeleteRitual(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock,
		testutil.Ritual("A", at(1)),
		testutil.Ritual("B", at(2)),
	)

	require.NoError(t, repo.DeleteRitual(context.Background(), "A"))

	assert.Equal(t, []string{"B"}, ritualIDs(repo.Snapshot().Rituals))
	_, ok := fs.Get("A")
	assert.False(t, ok)
}

func TestDeleteRitual_AbsentIsNoop(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, _ := loaded(t, clock, testutil.Ritual("A", at(1)))

	require.NoError(t, repo.DeleteRitual(context.Background(), "missing"))
	assert.Equal(t, []string{"A"}, ritualIDs(repo.Snapshot().Rituals))
}

func TestDeleteRitual_StoreFailureLeavesMemoryUnchanged(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock, testutil.Ritual("A", at(1)))

	fs.failWith(errDiskGone)
	require.Error(t, repo.DeleteRitual(context.Background(), "A"))
	assert.Equal(t, []string{"A"}, ritualIDs(repo.Snapshot().Rituals))
}

func TestAddEntry_UnknownRitual(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock, testutil.Ritual("A", at(1)))
	before := repo.Snapshot().Rituals

	r := testutil.Ritual("R1", at(1))
	err := repo.AddEntry(context.Background(), "R1", testutil.Entry(r, "e1", at(5), 3))
	require.Error(t, err)
	assert.True(t, model.IsRitualNotFound(err))

	state := repo.Snapshot()
	assert.Equal(t, before, state.Rituals)
	assert.True(t, model.IsRitualNotFound(state.Err))
	assert.Equal(t, []string{"GetAll"}, fs.Calls())
}

func TestAddEntry_BumpsUpdatedAtAndResorts(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	a := testutil.Ritual("A", at(1))
	repo, fs := loaded(t, clock, a, testutil.Ritual("B", at(2)))

	entry := testutil.Entry(a, "e1", at(99), 8)
	require.NoError(t, repo.AddEntry(context.Background(), "A", entry))

	state := repo.Snapshot()
	assert.Equal(t, []string{"A", "B"}, ritualIDs(state.Rituals))
	assert.Equal(t, at(100), state.Rituals[0].UpdatedAt)
	require.Len(t, state.Rituals[0].Entries, 1)
	assert.Equal(t, entry, state.Rituals[0].Entries[0])

	persisted, ok := fs.Get("A")
	require.True(t, ok)
	assert.Equal(t, state.Rituals[0], persisted, "whole ritual is persisted")
}

func TestAddEntry_StoreFailureLeavesMemoryUnchanged(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	a := testutil.Ritual("A", at(1))
	repo, fs := loaded(t, clock, a)
	before := repo.Snapshot().Rituals

	fs.failWith(errDiskGone)
	err := repo.AddEntry(context.Background(), "A", testutil.Entry(a, "e1", at(99), 8))
	require.Error(t, err)
	assert.True(t, model.IsStorageUnavailable(err))
	assert.Equal(t, before, repo.Snapshot().Rituals)
}

func TestAddEntry_StoresOutOfRangeValues(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	a := testutil.Ritual("A", at(1))
	a.Scale = 5
	repo, fs := loaded(t, clock, a)

	require.NoError(t, repo.AddEntry(context.Background(), "A", testutil.Entry(a, "e1", at(99), 7)))

	persisted, _ := fs.Get("A")
	assert.Equal(t, 7, persisted.Entries[0].Responses[0].Value)
}

func TestDeleteEntry_RemovesBumpsAndResorts(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	a := testutil.Ritual("A", at(1))
	a = testutil.WithEntries(a,
		testutil.Entry(a, "e1", at(0), 1),
		testutil.Entry(a, "e2", at(1), 2),
	)
	repo, fs := loaded(t, clock, a, testutil.Ritual("B", at(2)))

	require.NoError(t, repo.DeleteEntry(context.Background(), "A", "e1"))

	state := repo.Snapshot()
	assert.Equal(t, []string{"A", "B"}, ritualIDs(state.Rituals))
	assert.Equal(t, at(100), state.Rituals[0].UpdatedAt)
	require.Len(t, state.Rituals[0].Entries, 1)
	assert.Equal(t, "e2", state.Rituals[0].Entries[0].ID)

	persisted, _ := fs.Get("A")
	assert.Len(t, persisted.Entries, 1)
}

func TestDeleteEntry_UnknownRitual(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, _ := loaded(t, clock)

	err := repo.DeleteEntry(context.Background(), "nope", "e1")
	assert.True(t, model.IsRitualNotFound(err))
}

func TestImportRituals_MergesAndPersistsWholeCollection(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	local := testutil.Ritual("A", at(1))
	local = testutil.WithEntries(local, testutil.Entry(local, "e1", at(0), 1))
	repo, fs := loaded(t, clock, local, testutil.Ritual("B", at(2)))

	incoming := testutil.Ritual("A", at(5))
	incoming.Title = "Ignored title"
	incoming = testutil.WithEntries(incoming, testutil.Entry(incoming, "e2", at(4), 9))

	summary, err := repo.ImportRituals(context.Background(), []model.Ritual{
		incoming,
		testutil.Ritual("C", at(3)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rituals)
	assert.Equal(t, 1, summary.Entries)

	state := repo.Snapshot()
	assert.Equal(t, []string{"A", "C", "B"}, ritualIDs(state.Rituals))
	merged := state.Rituals[0]
	assert.Equal(t, "Ritual A", merged.Title)
	assert.Equal(t, at(5), merged.UpdatedAt)
	assert.Len(t, merged.Entries, 2)

	assert.Contains(t, fs.Calls(), "ImportBulk")
	for _, id := range []string{"A", "B", "C"} {
		_, ok := fs.Get(id)
		assert.True(t, ok, "ritual %s persisted", id)
	}
}

func TestImportRituals_StoreFailureLeavesMemoryUnchanged(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, fs := loaded(t, clock, testutil.Ritual("A", at(1)))
	before := repo.Snapshot().Rituals

	fs.failWith(errDiskGone)
	_, err := repo.ImportRituals(context.Background(), []model.Ritual{testutil.Ritual("B", at(2))})
	require.Error(t, err)
	assert.True(t, model.IsStorageUnavailable(err))
	assert.Equal(t, before, repo.Snapshot().Rituals)
}

func TestGetRitualByID(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, _ := loaded(t, clock, testutil.Ritual("A", at(1)))

	r, ok := repo.GetRitualByID("A")
	require.True(t, ok)
	assert.Equal(t, "A", r.ID)

	// Returned value is a copy
	r.Participants[0].Name = "Mutated"
	again, _ := repo.GetRitualByID("A")
	assert.Equal(t, "Alex", again.Participants[0].Name)

	_, ok = repo.GetRitualByID("missing")
	assert.False(t, ok)
}

func TestSubscribe_ReceivesLatestState(t *testing.T) {
	clock := testutil.NewManualClock(at(100))
	repo, _ := loaded(t, clock)

	states, cancel := repo.Subscribe()
	defer cancel()

	initial := <-states
	assert.Empty(t, initial.Rituals)

	require.NoError(t, repo.CreateRitual(context.Background(), testutil.Ritual("A", at(1))))
	require.NoError(t, repo.CreateRitual(context.Background(), testutil.Ritual("B", at(2))))

	// Updates coalesce: the buffered value is the newest state
	latest := <-states
	assert.Equal(t, []string{"B", "A"}, ritualIDs(latest.Rituals))
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	repo := newTestRepo(t, newFakeStore(), testutil.NewManualClock(at(0)))

	states, cancel := repo.Subscribe()
	<-states
	cancel()
	cancel()

	_, open := <-states
	assert.False(t, open)
}

func TestClose_RejectsFurtherMutations(t *testing.T) {
	repo := New(newFakeStore())

	states, _ := repo.Subscribe()
	<-states

	require.NoError(t, repo.Close())
	require.NoError(t, repo.Close())

	err := repo.LoadRituals(context.Background())
	assert.True(t, errors.Is(err, ErrClosed))

	_, open := <-states
	assert.False(t, open, "Close closes subscriptions")
}

func TestSubmit_ContextCancelledBeforeResult(t *testing.T) {
	repo := newTestRepo(t, newFakeStore(), testutil.NewManualClock(at(0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either the writer wins the race or the caller gives up waiting
	err := repo.LoadRituals(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestConcurrentAddEntry_NoLostUpdates(t *testing.T) {
	clock := testutil.NewSteppingClock(at(100), time.Second)
	a := testutil.Ritual("A", at(1))
	repo, fs := loaded(t, clock, a)

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			entry := testutil.Entry(a, fmt.Sprintf("e%02d", i), at(i), i)
			assert.NoError(t, repo.AddEntry(context.Background(), "A", entry))
		}(i)
	}
	wg.Wait()

	r, ok := repo.GetRitualByID("A")
	require.True(t, ok)
	assert.Len(t, r.Entries, writers)

	persisted, _ := fs.Get("A")
	assert.Len(t, persisted.Entries, writers)
}

func TestRepository_WithSQLiteStore(t *testing.T) {
	s, err := store.OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	clock := testutil.NewManualClock(at(100))
	repo := newTestRepo(t, s, clock)
	ctx := context.Background()

	require.NoError(t, repo.LoadRituals(ctx))
	a := testutil.Ritual("A", at(1))
	require.NoError(t, repo.CreateRitual(ctx, a))
	require.NoError(t, repo.AddEntry(ctx, "A", testutil.Entry(a, "e1", at(50), 6)))

	// A fresh repository over the same store sees the persisted state
	other := newTestRepo(t, s, clock)
	require.NoError(t, other.LoadRituals(ctx))
	got, ok := other.GetRitualByID("A")
	require.True(t, ok)
	assert.Len(t, got.Entries, 1)
	assert.True(t, got.UpdatedAt.Equal(at(100)))
}
