package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/roach88/rituals/internal/model"
)

// fakeStore is an in-memory Store with failure injection.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]model.Ritual
	err     error // returned by every operation when set
	calls   []string

	// gate, when set, parks GetAll after signalling entered
	gate    chan struct{}
	entered chan struct{}
}

func newFakeStore(rituals ...model.Ritual) *fakeStore {
	f := &fakeStore{records: make(map[string]model.Ritual)}
	for _, r := range rituals {
		f.records[r.ID] = r.Clone()
	}
	return f
}

func (f *fakeStore) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// blockGetAll makes the next GetAll calls wait until release is called.
// entered receives once per call that reaches the gate.
func (f *fakeStore) blockGetAll() (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.entered = make(chan struct{}, 1)

	gate := f.gate
	var once sync.Once
	return f.entered, func() { once.Do(func() { close(gate) }) }
}

func (f *fakeStore) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) GetAll(ctx context.Context) ([]model.Ritual, error) {
	if err := f.record("GetAll"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	gate, entered := f.gate, f.entered
	f.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Ritual, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) Save(ctx context.Context, r model.Ritual) (string, error) {
	if err := f.record("Save " + r.ID); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[r.ID] = r.Clone()
	return r.ID, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if err := f.record("Delete " + id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *fakeStore) ImportBulk(ctx context.Context, rituals []model.Ritual) error {
	if err := f.record("ImportBulk"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rituals {
		f.records[r.ID] = r.Clone()
	}
	return nil
}

func (f *fakeStore) Get(id string) (model.Ritual, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	return r, ok
}
