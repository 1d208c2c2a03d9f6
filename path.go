package statecell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Path is an ordered sequence of key segments addressing a location inside a
// nested mapping, top-down. A nil or empty Path addresses the root itself.
type Path []string

// ErrUnsupportedKey indicates a key that cannot be represented as a plain
// string segment.
var ErrUnsupportedKey = errors.New("statecell: unsupported key kind")

// UnsupportedKeyError carries the offending key alongside ErrUnsupportedKey.
type UnsupportedKeyError struct {
	Key any
}

func (e *UnsupportedKeyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("statecell: unsupported key kind %T (%v)", e.Key, e.Key)
}

func (e *UnsupportedKeyError) Unwrap() error {
	return ErrUnsupportedKey
}

// Resolve splits a dot-notated path into ordered segments. The empty string
// resolves to nil, meaning "operate on the root". Segment content is not
// trimmed or validated; consecutive dots yield empty segments.
func Resolve(path string) Path {
	if path == "" {
		return nil
	}
	return Path(strings.Split(path, "."))
}

// ResolveKeys converts loosely typed keys into a Path. String keys pass
// through untouched and integer keys are stringified; any other kind fails
// with an UnsupportedKeyError and no partial result.
func ResolveKeys(keys ...any) (Path, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	segments := make(Path, 0, len(keys))
	for _, key := range keys {
		switch k := key.(type) {
		case string:
			segments = append(segments, k)
		case int:
			segments = append(segments, strconv.Itoa(k))
		case int32:
			segments = append(segments, strconv.FormatInt(int64(k), 10))
		case int64:
			segments = append(segments, strconv.FormatInt(k, 10))
		case uint:
			segments = append(segments, strconv.FormatUint(uint64(k), 10))
		case uint32:
			segments = append(segments, strconv.FormatUint(uint64(k), 10))
		case uint64:
			segments = append(segments, strconv.FormatUint(k, 10))
		default:
			return nil, &UnsupportedKeyError{Key: key}
		}
	}
	return segments, nil
}

// String renders the path back into dot notation.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// IsRoot reports whether the path addresses the root value.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// clone returns a detached copy so stored paths stay immutable even if the
// caller mutates their slice.
func (p Path) clone() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}
