package repository

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/repokit/pkg/failure"
)

type item struct {
	ID   string
	Name string
}

type itemModel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (m itemModel) ToEntity() item { return item{ID: m.ID, Name: m.Name} }

func toItemModel(e item) itemModel { return itemModel{ID: e.ID, Name: e.Name} }

// fakeRemote records calls per method and returns canned data.
type fakeRemote struct {
	mu    sync.Mutex
	calls map[string]int

	items []itemModel
	err   error
}

func newFakeRemote(items ...itemModel) *fakeRemote {
	return &fakeRemote{calls: map[string]int{}, items: items}
}

func (f *fakeRemote) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeRemote) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRemote) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeRemote) GetAll(ctx context.Context) ([]itemModel, error) {
	f.hit("GetAll")
	if f.err != nil {
		return nil, f.err
	}
	return append([]itemModel(nil), f.items...), nil
}

func (f *fakeRemote) GetByID(ctx context.Context, id string) (itemModel, error) {
	f.hit("GetByID")
	if f.err != nil {
		return itemModel{}, f.err
	}
	for _, m := range f.items {
		if m.ID == id {
			return m, nil
		}
	}
	return itemModel{}, &failure.TransportError{Kind: failure.TransportBadResponse, StatusCode: 404}
}

func (f *fakeRemote) Create(ctx context.Context, m itemModel) (itemModel, error) {
	f.hit("Create")
	if f.err != nil {
		return itemModel{}, f.err
	}
	m.Name += " (stored)"
	return m, nil
}

func (f *fakeRemote) Update(ctx context.Context, m itemModel) (itemModel, error) {
	f.hit("Update")
	if f.err != nil {
		return itemModel{}, f.err
	}
	return m, nil
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	f.hit("Delete")
	return f.err
}

func (f *fakeRemote) Search(ctx context.Context, query string) ([]itemModel, error) {
	f.hit("Search")
	if f.err != nil {
		return nil, f.err
	}
	return append([]itemModel(nil), f.items...), nil
}

func (f *fakeRemote) GetPaginated(ctx context.Context, page PageRequest) ([]itemModel, error) {
	f.hit("GetPaginated")
	if f.err != nil {
		return nil, f.err
	}
	return append([]itemModel(nil), f.items...), nil
}

// fakeLocal is an ordered in-memory cache that records calls and can be
// made to fail reads or writes independently.
type fakeLocal struct {
	mu    sync.Mutex
	calls map[string]int
	items []item

	readErr  error
	writeErr error
}

func newFakeLocal(items ...item) *fakeLocal {
	return &fakeLocal{calls: map[string]int{}, items: items}
}

func (f *fakeLocal) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeLocal) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeLocal) snapshot() []item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]item(nil), f.items...)
}

func (f *fakeLocal) GetAll(ctx context.Context) ([]item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetAll"]++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]item{}, f.items...), nil
}

func (f *fakeLocal) GetByID(ctx context.Context, id string) (item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetByID"]++
	if f.readErr != nil {
		return item{}, f.readErr
	}
	for _, e := range f.items {
		if e.ID == id {
			return e, nil
		}
	}
	return item{}, ErrNotFound
}

func (f *fakeLocal) Save(ctx context.Context, e item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Save"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	for i := range f.items {
		if f.items[i].ID == e.ID {
			f.items[i] = e
			return nil
		}
	}
	f.items = append(f.items, e)
	return nil
}

func (f *fakeLocal) SaveAll(ctx context.Context, es []item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SaveAll"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.items = append([]item(nil), es...)
	return nil
}

func (f *fakeLocal) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Delete"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

// recordingObserver captures observer callbacks.
type recordingObserver struct {
	mu             sync.Mutex
	outcomes       []outcome
	hits           []Operation
	misses         []Operation
	mirrorFailures []Operation
}

type outcome struct {
	op     Operation
	source Source
	failed bool
}

func (o *recordingObserver) OnOutcome(op Operation, _ Strategy, src Source, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome{op: op, source: src, failed: err != nil})
}

func (o *recordingObserver) OnCacheHit(op Operation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits = append(o.hits, op)
}

func (o *recordingObserver) OnCacheMiss(op Operation, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.misses = append(o.misses, op)
}

func (o *recordingObserver) OnMirrorFailure(op Operation, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mirrorFailures = append(o.mirrorFailures, op)
}
