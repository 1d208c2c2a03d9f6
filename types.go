package statecell

import (
	"time"

	"github.com/goliatone/go-statecell/pkg/watch"
)

// EvalContext carries inputs needed when evaluating an expression against a
// cell snapshot.
type EvalContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Cell     string
}

func (ctx EvalContext) withDefaults() EvalContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
}

func (ctx EvalContext) cellLabel() string {
	if ctx.Cell != "" {
		return ctx.Cell
	}
	return "unknown"
}

// Evaluator executes expressions against an evaluation context.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures a Cell at construction.
type Option func(*cellConfig)

type cellConfig struct {
	name         string
	sharing      bool
	clock        func() time.Time
	hooks        watch.Hooks
	watchCfg     *watch.Config
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
}

func applyOptions(opts []Option) cellConfig {
	cfg := cellConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg cellConfig) watchConfig(source string) watch.Config {
	if cfg.watchCfg != nil {
		return *cfg.watchCfg
	}
	return watch.Config{Enabled: true, Source: source}
}

// WithName labels the cell; the label shows up in watch events, evaluator
// errors, and store identifiers.
func WithName(name string) Option {
	return func(cfg *cellConfig) {
		cfg.name = name
	}
}

// WithStructuralSharing switches writes from the full deep-clone baseline to
// spine copying: only the mappings on the written path are duplicated and
// untouched branches are shared with the previous root. Observable values
// are identical; retained previous roots still never change.
func WithStructuralSharing() Option {
	return func(cfg *cellConfig) {
		cfg.sharing = true
	}
}

// WithClock overrides the timestamp source used for revisions.
func WithClock(clock func() time.Time) Option {
	return func(cfg *cellConfig) {
		cfg.clock = clock
	}
}

// WithWatchHooks attaches change hooks fired after every successful write.
// Hooks are cloned and nil entries dropped.
func WithWatchHooks(hooks watch.Hooks) Option {
	normalized := cloneWatchHooks(hooks)
	return func(cfg *cellConfig) {
		cfg.hooks = normalized
	}
}

// WithWatchConfig overrides the emitter configuration derived from the cell
// name.
func WithWatchConfig(config watch.Config) Option {
	return func(cfg *cellConfig) {
		cfg.watchCfg = &config
	}
}

func cloneWatchHooks(hooks watch.Hooks) watch.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]watch.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return watch.Hooks(normalized)
}
