package statecell

import (
	"encoding/json"
)

// Trace captures how a path lookup walked the current root: one step per
// segment, recording the kind encountered and whether the walk could
// continue.
type Trace struct {
	Path  string `json:"path"`
	Found bool   `json:"found"`
	Value any    `json:"value,omitempty"`
	Steps []Step `json:"steps"`
}

// Step details one segment lookup along a traced path.
type Step struct {
	Segment string `json:"segment"`
	Kind    string `json:"kind"`
	Found   bool   `json:"found"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated
// via ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Lookup reads the value at a dot-notated path in the current root. The
// boolean reports whether every segment resolved; an empty path returns the
// root itself.
func (c *Cell) Lookup(path string) (any, bool) {
	return lookupPath(c.Get(), Resolve(path))
}

// Trace walks the current root along path and reports per-segment
// provenance.
func (c *Cell) Trace(path string) Trace {
	segments := Resolve(path)
	trace := Trace{Path: path, Steps: make([]Step, 0, len(segments))}

	current := c.Get()
	if segments.IsRoot() {
		trace.Found = true
		trace.Value = current
		return trace
	}

	for i, segment := range segments {
		mapping, ok := current.(map[string]any)
		if !ok {
			trace.Steps = append(trace.Steps, Step{Segment: segment, Kind: KindOf(current).String()})
			return trace
		}
		child, ok := mapping[segment]
		trace.Steps = append(trace.Steps, Step{Segment: segment, Kind: KindOf(child).String(), Found: ok})
		if !ok {
			return trace
		}
		current = child
		if i == len(segments)-1 {
			trace.Found = true
			trace.Value = child
		}
	}
	return trace
}

func lookupPath(root any, path Path) (any, bool) {
	current := root
	for _, segment := range path {
		mapping, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = mapping[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
