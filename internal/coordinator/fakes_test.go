package coordinator_test

import (
	"context"
	"sync"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/models"
)

var errBroken = errors.NewSentinel("broken store")

type fakeCache struct {
	mu       sync.Mutex
	raw      string
	ok       bool
	loadErr  error
	storeErr error
	stores   int
	erases   int
}

func (f *fakeCache) Load(_ context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw, f.ok, f.loadErr
}

func (f *fakeCache) Store(_ context.Context, raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores++
	if f.storeErr != nil {
		return f.storeErr
	}
	f.raw, f.ok = raw, true
	return nil
}

func (f *fakeCache) Erase(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.erases++
	f.raw, f.ok = "", false
	return nil
}

func (f *fakeCache) snapshot() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw, f.ok
}

type push struct {
	seq  int64
	tree models.Tree
}

type fakeRemote struct {
	mu       sync.Mutex
	tree     models.Tree
	fetchErr error
	pushErr  error
	fetches  int
	pushes   []push
	// block, when set, holds every push until it is closed.
	block chan struct{}
}

func (f *fakeRemote) Fetch(_ context.Context) (models.Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.tree, nil
}

func (f *fakeRemote) Push(ctx context.Context, seq int64, tree models.Tree) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, push{seq: seq, tree: tree})
	if f.pushErr != nil {
		return f.pushErr
	}
	f.tree = tree
	return nil
}

func (f *fakeRemote) recorded() (int, []push) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches, append([]push(nil), f.pushes...)
}
