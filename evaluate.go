package statecell

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("statecell: evaluator not configured")

// WithEvaluator configures an evaluator on the cell.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *cellConfig) {
		cfg.evaluator = e
	}
}

// Evaluate executes expr against the current root using the configured
// evaluator, defaulting to the expr engine.
func (c *Cell) Evaluate(expr string) (any, error) {
	return c.EvaluateWith(EvalContext{}, expr)
}

// EvaluateWith executes expr using ctx, falling back to the current root
// when ctx.Snapshot is nil.
func (c *Cell) EvaluateWith(ctx EvalContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := c.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = c.Get()
	}
	if ctx.Cell == "" {
		ctx.Cell = c.cfg.name
	}
	ctx = ctx.withDefaults()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, ctx.cellLabel(), evalErr)
	c.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Cell:     ctx.cellLabel(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

// SetExpr evaluates expr against the current root and installs the result at
// path through the normal write pipeline. Overlapping computed writes should
// be serialized by the caller: the merge decision always observes the latest
// committed root, but the evaluated value is computed before the write
// lands.
func (c *Cell) SetExpr(path string, expr string, opts ...SetOption) error {
	value, err := c.Evaluate(expr)
	if err != nil {
		return err
	}
	return c.Set(path, value, opts...)
}

func (c *Cell) resolveEvaluator() (Evaluator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.evaluator != nil {
		return c.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := c.cfg.programCache; cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := c.cfg.functions; registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	c.cfg.evaluator = defaultEvaluator
	return defaultEvaluator, nil
}

func (c *Cell) evaluatorLogger() EvaluatorLogger {
	if c.cfg.logger != nil {
		return c.cfg.logger
	}
	return noopEvaluatorLogger{}
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*statecell.exprEvaluator":
		return "expr"
	case "*statecell.celEvaluator":
		return "cel"
	case "*statecell.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
