package watch

import "time"

// Verbs attached to change events. Merged and replaced mirror the two leaf
// policies a write can take.
const (
	VerbMerged   = "state.merged"
	VerbReplaced = "state.replaced"
)

// ChangeInput describes the fields a cell supplies when building an event.
type ChangeInput struct {
	Source     string
	Path       string
	Value      any
	Previous   any
	Merge      bool
	Revision   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildChangeEvent constructs a normalized event for a committed write,
// picking the verb from the merge flag.
func BuildChangeEvent(input ChangeInput) Event {
	verb := VerbReplaced
	if input.Merge {
		verb = VerbMerged
	}
	return NormalizeEvent(Event{
		Verb:       verb,
		Source:     input.Source,
		Path:       input.Path,
		Value:      input.Value,
		Previous:   input.Previous,
		Merge:      input.Merge,
		Revision:   input.Revision,
		Metadata:   input.Metadata,
		OccurredAt: input.OccurredAt,
	})
}
