package repository

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/roach88/rituals/internal/model"
)

// ErrClosed is returned by every operation submitted after Close.
var ErrClosed = errors.New("repository is closed")

// Store is the durable storage the Repository persists through.
// Implemented by *store.Store.
type Store interface {
	GetAll(ctx context.Context) ([]model.Ritual, error)
	Save(ctx context.Context, r model.Ritual) (string, error)
	Delete(ctx context.Context, id string) error
	ImportBulk(ctx context.Context, rituals []model.Ritual) error
}

// State is the read model exposed to presentation code.
type State struct {
	Rituals []model.Ritual
	Loading bool
	Err     error
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the time source used to bump UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// Repository serializes ritual mutations through one writer goroutine.
//
// Thread-safety model:
//   - mutation methods: safe from any goroutine, executed in FIFO order
//   - Snapshot, GetRitualByID, Subscribe: safe from any goroutine
//   - state is only written by the writer goroutine
type Repository struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
	queue  *mutationQueue

	mu    sync.RWMutex
	state State

	subMu   sync.Mutex
	subs    map[int]chan State
	nextSub int

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a Repository over the given store and starts its writer.
// The collection starts empty with Loading set until the first LoadRituals.
func New(store Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
		queue:  newMutationQueue(),
		state:  State{Rituals: []model.Ritual{}, Loading: true},
		subs:   make(map[int]chan State),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	go r.run()
	return r
}

// Close stops accepting mutations, waits for queued ones to finish, and
// closes every subscription channel. Safe to call more than once.
func (r *Repository) Close() error {
	r.closeOnce.Do(func() {
		r.queue.Close()
		<-r.done

		r.subMu.Lock()
		for id, ch := range r.subs {
			close(ch)
			delete(r.subs, id)
		}
		r.subMu.Unlock()
	})
	return nil
}

// Snapshot returns a deep copy of the current state.
func (r *Repository) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// GetRitualByID looks a ritual up in memory. Absence is not an error.
func (r *Repository) GetRitualByID(id string) (model.Ritual, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := indexOf(r.state.Rituals, id); i >= 0 {
		return r.state.Rituals[i].Clone(), true
	}
	return model.Ritual{}, false
}

// Subscribe returns a channel that receives the latest state after every
// change, starting with the current one. Slow readers only ever see the
// most recent state. The returned func cancels the subscription.
func (r *Repository) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	r.subMu.Lock()
	defer r.subMu.Unlock()

	ch <- r.Snapshot()

	select {
	case <-r.done:
		close(ch)
		return ch, func() {}
	default:
	}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	return ch, func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if c, ok := r.subs[id]; ok {
			close(c)
			delete(r.subs, id)
		}
	}
}

// submit hands a mutation to the writer and waits for its result.
// ctx bounds only the wait; once dequeued a mutation runs to completion.
func (r *Repository) submit(ctx context.Context, name string, apply func(ctx context.Context) error) error {
	m := &mutation{
		name:  name,
		apply: apply,
		ctx:   context.WithoutCancel(ctx),
		done:  make(chan error, 1),
	}
	if !r.queue.Enqueue(m) {
		return ErrClosed
	}

	select {
	case err := <-m.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the single-writer loop. All state writes happen here.
func (r *Repository) run() {
	defer close(r.done)

	for {
		if m, ok := r.queue.TryDequeue(); ok {
			err := m.apply(m.ctx)
			if err != nil {
				r.logger.Debug("mutation failed", "op", m.name, "error", err)
			}
			m.done <- err
			continue
		}

		<-r.queue.Wait()
		if r.queue.Drained() {
			return
		}
	}
}

// update applies fn to the state under the write lock and notifies
// subscribers. Writer goroutine only.
func (r *Repository) update(fn func(s *State)) {
	r.mu.Lock()
	fn(&r.state)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.publish(snap)
}

// fail records err in the state and returns it.
func (r *Repository) fail(err error) error {
	r.update(func(s *State) { s.Err = err })
	return err
}

func (r *Repository) publish(s State) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	for _, ch := range r.subs {
		// Drop a stale unread state so the channel holds the latest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cloneState(s):
		default:
		}
	}
}

func (r *Repository) snapshotLocked() State {
	return cloneState(r.state)
}

// current returns the live collection. Writer goroutine only; callers must
// not mutate the result.
func (r *Repository) current() []model.Ritual {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Rituals
}

func cloneState(s State) State {
	return State{
		Rituals: model.CloneAll(s.Rituals),
		Loading: s.Loading,
		Err:     s.Err,
	}
}

// sortByRecency orders rituals by UpdatedAt descending. Ties keep their
// existing relative order.
func sortByRecency(rituals []model.Ritual) {
	sort.SliceStable(rituals, func(i, j int) bool {
		return rituals[i].UpdatedAt.After(rituals[j].UpdatedAt)
	})
}

func indexOf(rituals []model.Ritual, id string) int {
	for i := range rituals {
		if rituals[i].ID == id {
			return i
		}
	}
	return -1
}
