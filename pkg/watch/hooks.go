// Package watch fans out state change notifications to registered hooks.
// Cells fire one event per committed write; hosts subscribe by attaching
// hooks and react however they like (re-render, log, persist).
package watch

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event describes one committed write to a cell.
type Event struct {
	Verb       string
	Source     string
	Path       string
	Value      any
	Previous   any
	Merge      bool
	Revision   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Hook receives normalized change events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []Hook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify forwards the event to all hooks, returning a joined error if any
// fail. Delivery is not transactional: a failing hook does not stop later
// hooks and never rolls back the write that produced the event.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)

	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// NormalizeEvent clones metadata, defaults the verb, and ensures a timestamp
// is present. Path is left untouched: path segments are never trimmed.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.Source = strings.TrimSpace(event.Source)
	normalized.Revision = strings.TrimSpace(event.Revision)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.Verb == "" {
		if event.Merge {
			normalized.Verb = VerbMerged
		} else {
			normalized.Verb = VerbReplaced
		}
	}
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
