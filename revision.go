package statecell

import (
	"time"

	"github.com/google/uuid"
)

// Revision identifies one committed write for auditing and checkpointing.
type Revision struct {
	ID    string    `json:"id"`
	Path  string    `json:"path"`
	Merge bool      `json:"merge"`
	At    time.Time `json:"at"`
}

func newRevision(path Path, merge bool, at time.Time) Revision {
	return Revision{
		ID:    uuid.NewString(),
		Path:  path.String(),
		Merge: merge,
		At:    at,
	}
}
