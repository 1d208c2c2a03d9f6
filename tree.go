package statecell

// Kind classifies a state value for the merge and auto-vivify rules. Arrays
// are opaque: they are never traversed, merged element-wise, or cloned
// field-by-field.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindArray
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// KindOf classifies value. Only map[string]any counts as a mapping and only
// []any counts as an array; typed maps and slices are treated as scalars.
func KindOf(value any) Kind {
	switch value.(type) {
	case nil:
		return KindNull
	case map[string]any:
		return KindMapping
	case []any:
		return KindArray
	default:
		return KindScalar
	}
}

// Update returns a new root with the value at path replaced or shallow-merged.
// Neither root nor value is mutated; the returned tree shares no mapping with
// the previous root because the whole root is cloned before the walk.
//
// Policy, by case:
//   - empty path: shallow-merge when merge is set and both sides are
//     mappings, otherwise value replaces the root wholesale;
//   - non-mapping root: the path cannot be walked, value replaces the root;
//   - mapping root: clone, walk the clone auto-vivifying any non-mapping
//     intermediate into a fresh empty mapping, then merge or assign at the
//     leaf. Merge eligibility at the leaf is judged against the original
//     pre-clone root, not the possibly auto-vivified leaf.
func Update(root any, path Path, value any, merge bool) any {
	if len(path) == 0 {
		return mergeOrReplace(root, value, merge)
	}
	if KindOf(root) != KindMapping {
		return value
	}

	next := deepClone(root).(map[string]any)
	scope := next
	for _, segment := range path[:len(path)-1] {
		child, ok := scope[segment].(map[string]any)
		if !ok {
			child = map[string]any{}
			scope[segment] = child
		}
		scope = child
	}

	leaf := path[len(path)-1]
	if merge && KindOf(value) == KindMapping {
		scope[leaf] = mergeOrReplace(scope[leaf], value, true)
	} else {
		scope[leaf] = value
	}
	return next
}

// updateShared is the structural-sharing variant of Update: only the spine of
// mappings from root to leaf is copied and untouched siblings are carried by
// reference. Observable values are identical to Update; the difference is
// cost per write.
func updateShared(root any, path Path, value any, merge bool) any {
	if len(path) == 0 {
		return mergeOrReplace(root, value, merge)
	}
	base, ok := root.(map[string]any)
	if !ok {
		return value
	}

	next := copyMapping(base)
	scope := next
	for _, segment := range path[:len(path)-1] {
		child, ok := scope[segment].(map[string]any)
		if !ok {
			child = map[string]any{}
		} else {
			child = copyMapping(child)
		}
		scope[segment] = child
		scope = child
	}

	leaf := path[len(path)-1]
	if merge && KindOf(value) == KindMapping {
		scope[leaf] = mergeOrReplace(scope[leaf], value, true)
	} else {
		scope[leaf] = value
	}
	return next
}

// mergeOrReplace applies the leaf policy: a shallow merge when requested and
// both sides are mappings, otherwise value wins wholesale. A non-mapping
// value over a mapping base falls through to replace, never errors.
func mergeOrReplace(base, value any, merge bool) any {
	if !merge {
		return value
	}
	baseMap, ok := base.(map[string]any)
	if !ok {
		return value
	}
	valueMap, ok := value.(map[string]any)
	if !ok {
		return value
	}
	return shallowMerge(baseMap, valueMap)
}

// shallowMerge overlays value onto base one level deep. Nested mappings from
// value replace their counterparts in base wholesale; they are not recursed
// into.
func shallowMerge(base, value map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(value))
	for key, entry := range base {
		out[key] = entry
	}
	for key, entry := range value {
		out[key] = entry
	}
	return out
}

// deepClone copies every nested mapping in value. Arrays and scalars are
// carried by reference, matching their opaque treatment during traversal.
func deepClone(value any) any {
	mapping, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(mapping))
	for key, entry := range mapping {
		out[key] = deepClone(entry)
	}
	return out
}

// copyMapping duplicates a single mapping level, keeping child references.
func copyMapping(mapping map[string]any) map[string]any {
	out := make(map[string]any, len(mapping))
	for key, entry := range mapping {
		out[key] = entry
	}
	return out
}
