// Package store defines persistence-facing contracts for checkpointing and
// restoring cell snapshots. The core statecell package stays
// persistence-agnostic; all storage logic lives behind Store implementations
// supplied by consumers.
//
// Data flow:
//
//	Cell.Snapshot() -> Checkpointer -> Store
//	Store -> Checkpointer.Restore -> statecell.New(...)
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrETagMismatch indicates a compare-and-set checkpoint lost the race.
var ErrETagMismatch = errors.New("store: etag mismatch")

// Ref identifies one persisted snapshot for one cell.
type Ref struct {
	Cell string
}

// Identifier returns the deterministic storage key for the reference.
func (r Ref) Identifier() (string, error) {
	if r.Cell == "" {
		return "", fmt.Errorf("store: cell name is required")
	}
	return fmt.Sprintf("cell/%s", r.Cell), nil
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single cell reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}
