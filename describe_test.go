package statecell

import (
	"reflect"
	"testing"
)

func TestDescribeFlattensTree(t *testing.T) {
	cell := New(map[string]any{
		"user": map[string]any{
			"name": "A",
			"age":  30,
		},
		"tags":  []any{"x", "y"},
		"empty": map[string]any{},
	})

	want := []FieldDescriptor{
		{Path: "empty", Type: "map[string]any"},
		{Path: "tags", Type: "[]string"},
		{Path: "user.age", Type: "int"},
		{Path: "user.name", Type: "string"},
	}
	if got := cell.Fields(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestDescribeScalarRoot(t *testing.T) {
	if got := Describe(5); len(got) != 0 {
		t.Fatalf("scalar root has no addressable fields, got %#v", got)
	}
	if got := Describe(nil); len(got) != 0 {
		t.Fatalf("nil root has no addressable fields, got %#v", got)
	}
}

func TestDescribeEmptyArray(t *testing.T) {
	got := Describe(map[string]any{"list": []any{}})
	want := []FieldDescriptor{{Path: "list", Type: "[]any"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}
