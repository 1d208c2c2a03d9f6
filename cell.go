package statecell

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-statecell/internal/hydrate"
	"github.com/goliatone/go-statecell/pkg/watch"
)

// Cell holds a nested state value and applies every write through the
// immutable update pipeline: resolve the path, compute a new root against
// the root current at that moment, install it, notify watchers. Installed
// roots are never mutated in place, so a root handed out by Get stays stable
// even while later writes land.
type Cell struct {
	mu       sync.RWMutex
	root     any
	revision Revision
	written  bool

	cfg     cellConfig
	emitter *watch.Emitter
}

// New constructs a Cell seeded with initial. A nil initial leaves the cell
// holding the null value until the first write.
func New(initial any, opts ...Option) *Cell {
	cfg := applyOptions(opts)
	return &Cell{
		root:    initial,
		cfg:     cfg,
		emitter: watch.NewEmitter(cfg.hooks, cfg.watchConfig(cfg.name)),
	}
}

// NewFromJSON decodes payload into a state tree and seeds a Cell with it.
func NewFromJSON(payload []byte, opts ...Option) (*Cell, error) {
	cfg := applyOptions(opts)
	tree, err := hydrate.NewDecoder().Decode(hydrate.Context{Cell: cfg.name}, payload)
	if err != nil {
		return nil, err
	}
	return &Cell{
		root:    tree,
		cfg:     cfg,
		emitter: watch.NewEmitter(cfg.hooks, cfg.watchConfig(cfg.name)),
	}, nil
}

// Name returns the label configured via WithName.
func (c *Cell) Name() string {
	if c == nil {
		return ""
	}
	return c.cfg.name
}

// Get returns the current root value.
func (c *Cell) Get() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// Snapshot returns a detached deep copy of the current root. Mappings are
// cloned recursively; arrays and scalars are carried by reference.
func (c *Cell) Snapshot() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return deepClone(c.root)
}

// Revision returns the revision minted by the latest write. The second
// return is false until the first write lands.
func (c *Cell) Revision() (Revision, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision, c.written
}

// Set installs a new value at the dot-notated path. An empty path operates
// on the root itself. Writes shallow-merge mapping values by default; pass
// Replace to overwrite wholesale. The returned error only ever reports watch
// hook failures: the update itself cannot fail and is installed either way.
func (c *Cell) Set(path string, value any, opts ...SetOption) error {
	return c.install(Resolve(path), value, applySetOptions(opts))
}

// SetKeys behaves like Set but accepts loosely typed keys. A key that cannot
// be resolved into a string segment aborts the write with no change to the
// stored state.
func (c *Cell) SetKeys(keys []any, value any, opts ...SetOption) error {
	path, err := ResolveKeys(keys...)
	if err != nil {
		return err
	}
	return c.install(path, value, applySetOptions(opts))
}

func (c *Cell) install(path Path, value any, cfg setConfig) error {
	c.mu.Lock()
	previous := c.root
	var next any
	if c.cfg.sharing {
		next = updateShared(previous, path, value, cfg.merge)
	} else {
		next = Update(previous, path, value, cfg.merge)
	}
	revision := newRevision(path, cfg.merge, c.now())
	c.root = next
	c.revision = revision
	c.written = true
	c.mu.Unlock()

	return c.emitter.Emit(cfg.ctx, watch.BuildChangeEvent(watch.ChangeInput{
		Path:       path.String(),
		Value:      value,
		Previous:   previous,
		Merge:      cfg.merge,
		Revision:   revision.ID,
		OccurredAt: revision.At,
	}))
}

func (c *Cell) now() time.Time {
	if c.cfg.clock != nil {
		return c.cfg.clock()
	}
	return time.Now()
}

// SetOption adjusts a single write.
type SetOption func(*setConfig)

type setConfig struct {
	merge bool
	ctx   context.Context
}

// Replace disables the default shallow-merge so the value overwrites
// whatever is at the path wholesale.
func Replace() SetOption {
	return func(cfg *setConfig) {
		cfg.merge = false
	}
}

// WithMerge sets the merge flag explicitly.
func WithMerge(merge bool) SetOption {
	return func(cfg *setConfig) {
		cfg.merge = merge
	}
}

// WithContext supplies the context passed to watch hooks for this write.
func WithContext(ctx context.Context) SetOption {
	return func(cfg *setConfig) {
		if ctx != nil {
			cfg.ctx = ctx
		}
	}
}

func applySetOptions(opts []SetOption) setConfig {
	cfg := setConfig{merge: true, ctx: context.Background()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
