package store

import (
	"context"
	"errors"
	"testing"
	"time"

	statecell "github.com/goliatone/go-statecell"
)

func TestCheckpointAndRestore(t *testing.T) {
	ctx := context.Background()
	checkpointer := Checkpointer{Store: NewMemoryStore[any]()}

	cell := statecell.New(map[string]any{}, statecell.WithName("prefs"))
	if err := cell.Set("theme.mode", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}

	meta, err := checkpointer.Checkpoint(ctx, Ref{}, cell, Meta{})
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if meta.SnapshotID == "" || meta.ETag == "" {
		t.Fatalf("expected generated identifiers, got %+v", meta)
	}
	revision, _ := cell.Revision()
	if meta.SnapshotID != revision.ID {
		t.Fatalf("snapshot id should come from the cell revision, got %q vs %q", meta.SnapshotID, revision.ID)
	}

	restored, restoredMeta, ok, err := checkpointer.Restore(ctx, Ref{Cell: "prefs"})
	if err != nil || !ok {
		t.Fatalf("restore: ok=%v err=%v", ok, err)
	}
	if restoredMeta.SnapshotID != meta.SnapshotID {
		t.Fatalf("expected meta round trip, got %+v", restoredMeta)
	}
	if got, found := restored.Lookup("theme.mode"); !found || got != "dark" {
		t.Fatalf("expected restored state, got %#v", got)
	}
	if restored.Name() != "prefs" {
		t.Fatalf("restored cell should carry the ref name, got %q", restored.Name())
	}

	// The checkpoint is detached: later writes to the live cell do not
	// change the stored snapshot.
	if err := cell.Set("theme.mode", "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
	stale, _, _, err := checkpointer.Restore(ctx, Ref{Cell: "prefs"})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got, _ := stale.Lookup("theme.mode"); got != "dark" {
		t.Fatalf("stored snapshot changed after checkpoint, got %#v", got)
	}
}

func TestCheckpointETagMismatch(t *testing.T) {
	ctx := context.Background()
	checkpointer := Checkpointer{Store: NewMemoryStore[any]()}
	cell := statecell.New(map[string]any{"a": 1}, statecell.WithName("prefs"))

	first, err := checkpointer.Checkpoint(ctx, Ref{}, cell, Meta{})
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}

	if _, err := checkpointer.Checkpoint(ctx, Ref{}, cell, Meta{ETag: "stale"}); !errors.Is(err, ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}

	second, err := checkpointer.Checkpoint(ctx, Ref{}, cell, Meta{ETag: first.ETag})
	if err != nil {
		t.Fatalf("checkpoint with matching etag: %v", err)
	}
	if second.ETag == first.ETag {
		t.Fatalf("etag must rotate on every checkpoint")
	}
}

func TestCheckpointValidatesInputs(t *testing.T) {
	ctx := context.Background()
	if _, err := (Checkpointer{}).Checkpoint(ctx, Ref{Cell: "x"}, statecell.New(nil), Meta{}); err == nil {
		t.Fatalf("expected error without store")
	}
	checkpointer := Checkpointer{Store: NewMemoryStore[any]()}
	if _, err := checkpointer.Checkpoint(ctx, Ref{Cell: "x"}, nil, Meta{}); err == nil {
		t.Fatalf("expected error without cell")
	}
	if _, err := checkpointer.Checkpoint(ctx, Ref{}, statecell.New(nil), Meta{}); err == nil {
		t.Fatalf("expected identifier error for unnamed cell and ref")
	}
}

func TestRestoreMissingSnapshot(t *testing.T) {
	checkpointer := Checkpointer{Store: NewMemoryStore[any]()}
	_, _, ok, err := checkpointer.Restore(context.Background(), Ref{Cell: "missing"})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if ok {
		t.Fatalf("expected no snapshot")
	}
}

func TestCheckpointerClock(t *testing.T) {
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	checkpointer := Checkpointer{
		Store: NewMemoryStore[any](),
		Clock: func() time.Time { return at },
	}
	meta, err := checkpointer.Checkpoint(context.Background(), Ref{Cell: "prefs"}, statecell.New(nil), Meta{})
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if !meta.UpdatedAt.Equal(at) {
		t.Fatalf("expected clock timestamp, got %v", meta.UpdatedAt)
	}
}
