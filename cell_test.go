package statecell

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-statecell/pkg/watch"
)

func TestNewDefaultsToNullRoot(t *testing.T) {
	cell := New(nil)
	if got := cell.Get(); got != nil {
		t.Fatalf("expected nil root, got %#v", got)
	}
	if _, ok := cell.Revision(); ok {
		t.Fatalf("expected no revision before the first write")
	}
}

func TestSetRootReplace(t *testing.T) {
	cell := New(map[string]any{"a": 1})
	if err := cell.Set("", "replaced", Replace()); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := cell.Get(); got != "replaced" {
		t.Fatalf("expected replaced root, got %#v", got)
	}
}

func TestSetRootMergeByDefault(t *testing.T) {
	cell := New(map[string]any{"a": 1, "b": 2})
	if err := cell.Set("", map[string]any{"b": 3, "c": 4}); err != nil {
		t.Fatalf("set: %v", err)
	}
	want := map[string]any{"a": 1, "b": 3, "c": 4}
	if got := cell.Get(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestSetPathLeavesRetainedRootUnchanged(t *testing.T) {
	cell := New(map[string]any{"user": map[string]any{"name": "A", "age": 1}})
	before := cell.Get()
	snapshot := cell.Snapshot()

	if err := cell.Set("user.name", "B", Replace()); err != nil {
		t.Fatalf("set: %v", err)
	}

	want := map[string]any{"user": map[string]any{"name": "B", "age": 1}}
	if got := cell.Get(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
	if !reflect.DeepEqual(before, snapshot) {
		t.Fatalf("retained previous root changed: %#v", before)
	}
}

func TestSetKeysUnsupportedKeyIsNoOp(t *testing.T) {
	cell := New(map[string]any{"a": 1})
	err := cell.SetKeys([]any{"a", true}, 2)
	if !errors.Is(err, ErrUnsupportedKey) {
		t.Fatalf("expected ErrUnsupportedKey, got %v", err)
	}
	if got := cell.Get(); !reflect.DeepEqual(got, map[string]any{"a": 1}) {
		t.Fatalf("failed set must not change stored state, got %#v", got)
	}
	if _, ok := cell.Revision(); ok {
		t.Fatalf("failed set must not mint a revision")
	}
}

func TestSetKeysStringifiesIntegers(t *testing.T) {
	cell := New(map[string]any{})
	if err := cell.SetKeys([]any{"items", 3}, "third"); err != nil {
		t.Fatalf("set keys: %v", err)
	}
	want := map[string]any{"items": map[string]any{"3": "third"}}
	if got := cell.Get(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestSetNotifiesWatchHooks(t *testing.T) {
	capture := &watch.CaptureHook{}
	cell := New(map[string]any{}, WithName("prefs"), WithWatchHooks(watch.Hooks{capture}))

	if err := cell.Set("theme.mode", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.Path != "theme.mode" {
		t.Fatalf("expected path %q, got %q", "theme.mode", event.Path)
	}
	if event.Source != "prefs" {
		t.Fatalf("expected source from cell name, got %q", event.Source)
	}
	if event.Verb != watch.VerbMerged {
		t.Fatalf("expected %q, got %q", watch.VerbMerged, event.Verb)
	}
	if event.Revision == "" {
		t.Fatalf("expected a revision id on the event")
	}
	if event.Value != "dark" {
		t.Fatalf("expected value %q, got %#v", "dark", event.Value)
	}

	revision, ok := cell.Revision()
	if !ok || revision.ID != event.Revision {
		t.Fatalf("event revision %q should match cell revision %q", event.Revision, revision.ID)
	}
}

func TestSetHookErrorDoesNotRollBack(t *testing.T) {
	hookErr := errors.New("sink unavailable")
	capture := &watch.CaptureHook{Err: hookErr}
	cell := New(map[string]any{}, WithWatchHooks(watch.Hooks{capture}))

	err := cell.Set("a", 1, Replace())
	if !errors.Is(err, hookErr) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if got, ok := cell.Lookup("a"); !ok || got != 1 {
		t.Fatalf("write must be installed before hooks run, got %#v", got)
	}
}

func TestReplaceOptionOverwritesMappingLeaf(t *testing.T) {
	cell := New(map[string]any{"user": map[string]any{"profile": map[string]any{"a": 1}}})
	if err := cell.Set("user.profile", map[string]any{"b": 2}, Replace()); err != nil {
		t.Fatalf("set: %v", err)
	}
	want := map[string]any{"user": map[string]any{"profile": map[string]any{"b": 2}}}
	if got := cell.Get(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestStructuralSharingCellMatchesBaseline(t *testing.T) {
	writes := []struct {
		path  string
		value any
		merge bool
	}{
		{path: "a.b.c", value: 5, merge: true},
		{path: "a.b", value: map[string]any{"d": 6}, merge: true},
		{path: "x", value: []any{1, 2}, merge: false},
		{path: "", value: map[string]any{"y": 7}, merge: true},
		{path: "a", value: "flattened", merge: true},
	}

	baseline := New(map[string]any{})
	sharing := New(map[string]any{}, WithStructuralSharing())
	for _, w := range writes {
		if err := baseline.Set(w.path, w.value, WithMerge(w.merge)); err != nil {
			t.Fatalf("baseline set: %v", err)
		}
		if err := sharing.Set(w.path, w.value, WithMerge(w.merge)); err != nil {
			t.Fatalf("sharing set: %v", err)
		}
		if !reflect.DeepEqual(baseline.Get(), sharing.Get()) {
			t.Fatalf("strategies diverged after %q: %#v vs %#v", w.path, baseline.Get(), sharing.Get())
		}
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	cell := New(map[string]any{"a": map[string]any{"b": 1}})
	snapshot := cell.Snapshot().(map[string]any)
	snapshot["a"].(map[string]any)["b"] = 99
	if got, _ := cell.Lookup("a.b"); got != 1 {
		t.Fatalf("snapshot mutation leaked into the cell: %#v", got)
	}
}

func TestWithClockStampsRevisions(t *testing.T) {
	at := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	cell := New(nil, WithClock(func() time.Time { return at }))
	if err := cell.Set("a", 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	revision, ok := cell.Revision()
	if !ok {
		t.Fatalf("expected a revision")
	}
	if !revision.At.Equal(at) {
		t.Fatalf("expected revision at %v, got %v", at, revision.At)
	}
	if revision.Path != "a" || !revision.Merge {
		t.Fatalf("unexpected revision %+v", revision)
	}
}

func TestConcurrentWritesSerialize(t *testing.T) {
	cell := New(map[string]any{})
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := cell.Set(fmt.Sprintf("k%d", i), i, Replace()); err != nil {
				t.Errorf("set: %v", err)
			}
		}(i)
	}
	wg.Wait()

	root := cell.Get().(map[string]any)
	if len(root) != 32 {
		t.Fatalf("expected 32 keys after concurrent writes, got %d", len(root))
	}
	for i := 0; i < 32; i++ {
		if got := root[fmt.Sprintf("k%d", i)]; got != i {
			t.Fatalf("lost write for k%d: %#v", i, got)
		}
	}
}

func TestNewFromJSON(t *testing.T) {
	cell, err := NewFromJSON([]byte(`{"counter": 1, "user": {"name": "A"}}`), WithName("session"))
	if err != nil {
		t.Fatalf("new from json: %v", err)
	}
	if got, ok := cell.Lookup("user.name"); !ok || got != "A" {
		t.Fatalf("expected %q, got %#v", "A", got)
	}
	counter, _ := cell.Lookup("counter")
	if _, ok := counter.(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", counter)
	}
}

func TestNewFromJSONRejectsMalformedPayload(t *testing.T) {
	if _, err := NewFromJSON([]byte(`{"a":`)); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := NewFromJSON(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
