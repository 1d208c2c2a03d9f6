// Package hydrate decodes raw JSON payloads into state trees.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context carries identifiers tied to a payload.
type Context struct {
	Cell string
}

// PreHook lets callers mutate or normalise the raw payload before decoding.
type PreHook func(Context, []byte) ([]byte, error)

// PostHook lets callers adjust or validate the decoded tree.
type PostHook func(Context, map[string]any) (map[string]any, error)

// Option configures a Decoder instance.
type Option func(*Decoder)

// Decoder converts JSON payloads into state trees. Numbers decode as
// json.Number by default so values survive a round trip without float
// precision loss.
type Decoder struct {
	preHooks     []PreHook
	postHooks    []PostHook
	configureDec []func(*json.Decoder)
	floatNumbers bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook(hook PreHook) Option {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook(hook PostHook) Option {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithFloatNumbers disables json.Number decoding so numeric values arrive as
// float64.
func WithFloatNumbers() Option {
	return func(d *Decoder) {
		d.floatNumbers = true
	}
}

// WithDecoderConfig allows callers to configure the json.Decoder directly.
func WithDecoderConfig(configure func(*json.Decoder)) Option {
	return func(d *Decoder) {
		if configure != nil {
			d.configureDec = append(d.configureDec, configure)
		}
	}
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into a state tree applying configured hooks.
func (d *Decoder) Decode(ctx Context, payload []byte) (map[string]any, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("hydrate: payload is empty for cell %q", ctx.Cell)
	}

	current := payload
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for cell %q failed: %w", ctx.Cell, err)
		}
		if next != nil {
			current = next
		}
	}

	decoder := json.NewDecoder(bytes.NewReader(current))
	if !d.floatNumbers {
		decoder.UseNumber()
	}
	for _, configure := range d.configureDec {
		if configure != nil {
			configure(decoder)
		}
	}
	var tree map[string]any
	if err := decoder.Decode(&tree); err != nil {
		return nil, fmt.Errorf("hydrate: decode cell %q: %w", ctx.Cell, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, tree)
		if err != nil {
			return nil, fmt.Errorf("hydrate: post-hook for cell %q failed: %w", ctx.Cell, err)
		}
		if next != nil {
			tree = next
		}
	}

	return tree, nil
}
