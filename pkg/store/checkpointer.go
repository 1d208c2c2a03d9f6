package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	statecell "github.com/goliatone/go-statecell"
)

// Checkpointer persists and restores cell snapshots through a Store.
type Checkpointer struct {
	Store Store[any]
	Clock func() time.Time
}

// Checkpoint saves a detached snapshot of the cell under ref. When expect
// carries an ETag it must match the stored one or the save is refused with
// ErrETagMismatch. The snapshot ID is taken from the cell's latest revision
// when one exists, otherwise a fresh identifier is minted; the ETag rotates
// on every checkpoint.
func (c Checkpointer) Checkpoint(ctx context.Context, ref Ref, cell *statecell.Cell, expect Meta) (Meta, error) {
	if c.Store == nil {
		return Meta{}, fmt.Errorf("store: store is required")
	}
	if cell == nil {
		return Meta{}, fmt.Errorf("store: cell is required")
	}
	if ref.Cell == "" {
		ref.Cell = cell.Name()
	}

	_, stored, ok, err := c.Store.Load(ctx, ref)
	if err != nil {
		return Meta{}, fmt.Errorf("store: load %q: %w", ref.Cell, err)
	}
	if ok && expect.ETag != "" && stored.ETag != "" && expect.ETag != stored.ETag {
		return stored, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, expect.ETag, stored.ETag)
	}

	snapshotID := ""
	if revision, ok := cell.Revision(); ok {
		snapshotID = revision.ID
	}
	if snapshotID == "" {
		snapshotID = uuid.NewString()
	}

	meta := Meta{
		SnapshotID: snapshotID,
		ETag:       uuid.NewString(),
		UpdatedAt:  c.now(),
		Extra:      expect.Extra,
	}
	saved, err := c.Store.Save(ctx, ref, cell.Snapshot(), meta)
	if err != nil {
		return Meta{}, fmt.Errorf("store: save %q: %w", ref.Cell, err)
	}
	return saved, nil
}

// Restore loads the snapshot stored under ref and builds a new cell from it.
// The boolean reports whether a snapshot existed.
func (c Checkpointer) Restore(ctx context.Context, ref Ref, opts ...statecell.Option) (*statecell.Cell, Meta, bool, error) {
	if c.Store == nil {
		return nil, Meta{}, false, fmt.Errorf("store: store is required")
	}
	snapshot, meta, ok, err := c.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("store: load %q: %w", ref.Cell, err)
	}
	if !ok {
		return nil, Meta{}, false, nil
	}
	combined := append([]statecell.Option{statecell.WithName(ref.Cell)}, opts...)
	return statecell.New(snapshot, combined...), meta, true, nil
}

func (c Checkpointer) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}
