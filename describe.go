package statecell

import (
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor describes a path and the inferred type.
type FieldDescriptor struct {
	Path string
	Type string
}

// Fields flattens the current root into sorted path/type descriptors.
func (c *Cell) Fields() []FieldDescriptor {
	return Describe(c.Get())
}

// Describe derives field descriptors for a state tree. Arrays appear as a
// single descriptor keyed by their first element's type; they are never
// expanded per index.
func Describe(value any) []FieldDescriptor {
	descriptors := deriveFieldDescriptors(value, "")
	if descriptors == nil {
		descriptors = []FieldDescriptor{}
	}
	return descriptors
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	if value == nil {
		return nil
	}

	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return []FieldDescriptor{{
				Path: prefix,
				Type: "map[string]any",
			}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			nextPrefix := joinPath(prefix, key)
			fields = append(fields, deriveFieldDescriptors(typed[key], nextPrefix)...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: "[]" + elementType,
		}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: typeName(typed),
		}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
