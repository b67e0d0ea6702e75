// Package coordinator owns the current question tree. It loads the tree from the local cache or the remote
// store, applies edits one at a time and replicates every change to both stores.
//
// The local cache is written synchronously and is authoritative on load. The remote store is written in the
// background on a best-effort basis; every write carries a sequence number so that the server can discard
// writes that arrive out of order.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/formtree"
	"github.com/myrjola/formtree/internal/models"
	"github.com/myrjola/formtree/internal/remote"
	"github.com/myrjola/formtree/internal/snapshot"
)

var (
	ErrNotReady      = errors.NewSentinel("form is not loaded")
	ErrAlreadyLoaded = errors.NewSentinel("form is already loaded")
)

// LocalCache stores the serialized tree under a single key.
type LocalCache interface {
	Load(ctx context.Context) (raw string, ok bool, err error)
	Store(ctx context.Context, raw string) error
	Erase(ctx context.Context) error
}

// RemoteStore is the shared form store. Push returns remote.ErrStaleWrite when the store already holds a
// newer write.
type RemoteStore interface {
	Fetch(ctx context.Context) (models.Tree, error)
	Push(ctx context.Context, seq int64, tree models.Tree) error
}

type State int

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// Source names a store the form is loaded from.
type Source string

const (
	SourceLocal  Source = "local cache"
	SourceRemote Source = "remote store"
)

// Notice tells a surface that loading skipped a source because it was unreadable or held malformed data.
// Unless a later source has the form, the user starts from an empty form.
type Notice struct {
	Source Source
	Err    error
}

const defaultPushTimeout = 5 * time.Second

type Option func(*Coordinator)

// WithNotifier registers fn to be called for every source skipped during Load.
func WithNotifier(fn func(context.Context, Notice)) Option {
	return func(c *Coordinator) {
		c.notify = fn
	}
}

// WithPushTimeout bounds every remote write.
func WithPushTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.pushTimeout = d
	}
}

// Coordinator is safe for concurrent use. Edits are serialized.
type Coordinator struct {
	mu     sync.Mutex
	state  State
	tree   models.Tree
	local  LocalCache
	remote RemoteStore

	logger      *slog.Logger
	notify      func(context.Context, Notice)
	pushTimeout time.Duration

	sequence atomic.Int64
	inFlight sync.WaitGroup
}

func New(local LocalCache, remote RemoteStore, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{ //nolint:exhaustruct // zero values are the initial state.
		local:       local,
		remote:      remote,
		logger:      logger.With("source", "Coordinator"),
		notify:      func(context.Context, Notice) {},
		pushTimeout: defaultPushTimeout,
	}
	// Seeding from the clock keeps sequence numbers increasing across restarts.
	c.sequence.Store(time.Now().UnixMicro())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load adopts the tree of the local cache, or of the remote store when the cache has no valid snapshot, or an
// empty tree when neither has one. A tree fetched from the remote store is written to the local cache.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateReady {
		return ErrAlreadyLoaded
	}

	tree, ok := c.loadLocal(ctx)
	if !ok {
		if tree, ok = c.loadRemote(ctx); ok {
			c.storeLocal(ctx, tree)
		}
	}
	if !ok {
		c.logger.LogAttrs(ctx, slog.LevelInfo, "starting with empty form")
		tree = models.Tree{}
	}

	c.tree = tree
	c.state = StateReady
	return nil
}

func (c *Coordinator) loadLocal(ctx context.Context) (models.Tree, bool) {
	raw, found, err := c.local.Load(ctx)
	if err != nil {
		c.skip(ctx, SourceLocal, err)
		return nil, false
	}
	if !found {
		c.logger.LogAttrs(ctx, slog.LevelInfo, "no local snapshot")
		return nil, false
	}
	tree, err := snapshot.Decode([]byte(raw))
	if err != nil {
		c.skip(ctx, SourceLocal, err)
		return nil, false
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "loaded form", slog.String("from", string(SourceLocal)),
		slog.Int("questions", tree.Len()))
	return tree, true
}

func (c *Coordinator) loadRemote(ctx context.Context) (models.Tree, bool) {
	tree, err := c.remote.Fetch(ctx)
	if err != nil {
		c.skip(ctx, SourceRemote, err)
		return nil, false
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "loaded form", slog.String("from", string(SourceRemote)),
		slog.Int("questions", tree.Len()))
	return tree, true
}

func (c *Coordinator) skip(ctx context.Context, source Source, err error) {
	c.logger.LogAttrs(ctx, slog.LevelWarn, "skipping form source",
		slog.String("from", string(source)), errors.SlogError(err))
	c.notify(ctx, Notice{Source: source, Err: err})
}

// Apply replaces the current tree with the result of edit and persists it. Errors of edit are returned as is
// and leave the current tree in place. An edit returning the current tree itself persists nothing.
func (c *Coordinator) Apply(ctx context.Context, edit func(models.Tree) (models.Tree, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}

	next, err := edit(c.tree)
	if err != nil {
		return err
	}
	if sameTree(c.tree, next) {
		return nil
	}
	c.tree = next
	c.storeLocal(ctx, next)
	c.push(ctx, next)
	return nil
}

// sameTree reports whether a and b are the same slice.
func sameTree(a, b models.Tree) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// storeLocal writes tree to the local cache. Failures are logged.
func (c *Coordinator) storeLocal(ctx context.Context, tree models.Tree) {
	data, err := snapshot.Encode(tree)
	if err == nil {
		err = c.local.Store(ctx, string(data))
	}
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "failed to write local cache", errors.SlogError(err))
	}
}

// push writes tree to the remote store in the background. Failures are logged and the write is dropped.
func (c *Coordinator) push(ctx context.Context, tree models.Tree) {
	seq := c.sequence.Add(1)
	c.inFlight.Add(1)
	go func() {
		defer c.inFlight.Done()
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.pushTimeout)
		defer cancel()

		start := time.Now()
		err := c.remote.Push(pushCtx, seq, tree)
		switch {
		case err == nil:
			c.logger.LogAttrs(ctx, slog.LevelDebug, "pushed form", slog.Int64("sequence", seq),
				slog.Duration("duration", time.Since(start)))
		case errors.Is(err, remote.ErrStaleWrite):
			c.logger.LogAttrs(ctx, slog.LevelWarn, "remote store kept a newer form, change not replicated",
				slog.Int64("sequence", seq))
		default:
			c.logger.LogAttrs(ctx, slog.LevelWarn, "failed to push form", slog.Int64("sequence", seq),
				errors.SlogError(err))
		}
	}()
}

// AddQuestion appends node as a top-level question. Use [formtree.NewNode] for a fresh one.
func (c *Coordinator) AddQuestion(ctx context.Context, node models.QuestionNode) error {
	return c.Apply(ctx, func(tree models.Tree) (models.Tree, error) {
		return formtree.AppendTopLevel(tree, node), nil
	})
}

// AddChild appends node to the children of the question at path.
func (c *Coordinator) AddChild(ctx context.Context, path formtree.Path, node models.QuestionNode) error {
	return c.Apply(ctx, func(tree models.Tree) (models.Tree, error) {
		return formtree.AddChild(tree, path, node)
	})
}

// Replace replaces the question at path.
func (c *Coordinator) Replace(ctx context.Context, path formtree.Path, node models.QuestionNode) error {
	return c.Apply(ctx, func(tree models.Tree) (models.Tree, error) {
		return formtree.ReplaceAt(tree, path, node)
	})
}

// Update replaces the question at path with the result of fn applied to it. An error of fn aborts the edit
// and is returned as is.
func (c *Coordinator) Update(
	ctx context.Context, path formtree.Path, fn func(models.QuestionNode) (models.QuestionNode, error)) error {
	return c.Apply(ctx, func(tree models.Tree) (models.Tree, error) {
		node, err := formtree.NodeAt(tree, path)
		if err != nil {
			return nil, err
		}
		if node, err = fn(node); err != nil {
			return nil, err
		}
		return formtree.ReplaceAt(tree, path, node)
	})
}

// Delete removes the question at path with its subtree.
func (c *Coordinator) Delete(ctx context.Context, path formtree.Path) error {
	return c.Apply(ctx, func(tree models.Tree) (models.Tree, error) {
		return formtree.DeleteAt(tree, path)
	})
}

// Reorder moves the top-level question at from to position to.
func (c *Coordinator) Reorder(ctx context.Context, from, to int) error {
	return c.Apply(ctx, func(tree models.Tree) (models.Tree, error) {
		return formtree.ReorderTopLevel(tree, from, to)
	})
}

// Clear empties the form, erases the local cache entry and pushes the empty form to the remote store.
func (c *Coordinator) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}
	c.tree = models.Tree{}
	if err := c.local.Erase(ctx); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "failed to erase local cache", errors.SlogError(err))
	}
	c.push(ctx, c.tree)
	return nil
}

// Submit returns the numbered view of the current tree.
func (c *Coordinator) Submit() models.NumberedTree {
	return formtree.AssignNumbers(c.Tree())
}

// Tree returns the current tree. It must not be modified.
func (c *Coordinator) Tree() models.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until all remote writes started so far have finished or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for remote writes")
	}
}
