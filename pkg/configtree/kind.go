// SPDX-License-Identifier: MPL-2.0

package configtree

import "reflect"

const (
	// Scalar is any value that is neither a mapping nor a sequence
	// (strings, numbers, booleans, nil).
	Scalar Kind = iota
	// Mapping is a string-keyed map.
	Mapping
	// Sequence is an indexable list.
	Sequence
)

type (
	// Kind is the closed set of shapes a Config Tree value can take.
	Kind int

	// Map is the mapping representation used throughout the Config Tree.
	Map = map[string]any
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	case Scalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// KindOf classifies v. Slices of any element type are sequences; only Map
// values are mappings.
func KindOf(v any) Kind {
	switch v.(type) {
	case Map:
		return Mapping
	case []any:
		return Sequence
	case nil, string, bool, float64, int, int64:
		return Scalar
	}
	if reflect.ValueOf(v).Kind() == reflect.Slice {
		return Sequence
	}
	return Scalar
}
