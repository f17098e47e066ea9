// SPDX-License-Identifier: MPL-2.0

package configtree

import (
	"fmt"
	"maps"
	"reflect"
)

// ShapeError reports a path segment applied to a value of the wrong kind.
// Transform panics with a *ShapeError: path expressions are only valid where
// the config schema guarantees the shape, so a mismatch is a programming error.
type ShapeError struct {
	Segment Segment
	Want    Kind
	Got     Kind
	Value   any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("path segment %q expects a %s, got %s %v", e.Segment, e.Want, e.Got, e.Value)
}

// Transform returns a copy of tree in which every value addressed by expr has
// been replaced with mutate(value).
//
// Only the top-level mapping is copied. Containers below it are rewritten in
// place and remain shared with tree.
//
// Segment semantics while more than one segment remains:
//   - key: descend into the value at key if present, otherwise stop silently
//   - "[]": descend into every element of a sequence
//   - "*": descend into every value of a mapping
//
// On the final segment:
//   - key: replace tree[key] when present; an absent key is a no-op
//   - "[]": replace every element of the sequence
//   - "*": replace every non-mapping value reachable through nested mappings
//
// Transform panics with *ShapeError when "[]" meets a non-sequence or "*"
// meets a non-mapping, and with *InvalidPathError when expr is malformed.
func Transform(tree Map, expr string, mutate func(any) any) Map {
	return TransformPath(tree, MustParsePath(expr), mutate)
}

// TransformPath is Transform for an already parsed path.
func TransformPath(tree Map, path Path, mutate func(any) any) Map {
	out := maps.Clone(tree)
	if out == nil {
		out = Map{}
	}
	if len(path) == 0 {
		return out
	}
	apply(out, path, mutate)
	return out
}

func apply(v any, path Path, mutate func(any) any) {
	if len(path) > 1 {
		for _, next := range resolve(v, path[0]) {
			apply(next, path[1:], mutate)
		}
		return
	}

	seg := path[0]
	switch seg.Kind {
	case SegmentWildcard:
		rewriteLeaves(requireMapping(v, seg), mutate)
	case SegmentEach:
		rewriteElements(v, seg, mutate)
	case SegmentKey:
		if m, ok := v.(Map); ok {
			if cur, present := m[seg.Key]; present {
				m[seg.Key] = mutate(cur)
			}
		}
	}
}

// resolve yields the values a non-terminal segment leads to.
func resolve(v any, seg Segment) []any {
	switch seg.Kind {
	case SegmentKey:
		if m, ok := v.(Map); ok {
			if next, present := m[seg.Key]; present {
				return []any{next}
			}
		}
		return nil
	case SegmentEach:
		return elements(v, seg)
	case SegmentWildcard:
		m := requireMapping(v, seg)
		out := make([]any, 0, len(m))
		for _, next := range m {
			out = append(out, next)
		}
		return out
	}
	return nil
}

func requireMapping(v any, seg Segment) Map {
	m, ok := v.(Map)
	if !ok {
		panic(&ShapeError{Segment: seg, Want: Mapping, Got: KindOf(v), Value: v})
	}
	return m
}

func elements(v any, seg Segment) []any {
	switch KindOf(v) {
	case Sequence:
		if s, ok := v.([]any); ok {
			return s
		}
		rv := reflect.ValueOf(v)
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	default:
		panic(&ShapeError{Segment: seg, Want: Sequence, Got: KindOf(v), Value: v})
	}
}

// rewriteLeaves walks nested mappings and replaces every non-mapping value.
func rewriteLeaves(m Map, mutate func(any) any) {
	for key, val := range m {
		if nested, ok := val.(Map); ok {
			rewriteLeaves(nested, mutate)
			continue
		}
		m[key] = mutate(val)
	}
}

// rewriteElements replaces each element of a sequence in place, keeping the
// backing array shared with the caller.
func rewriteElements(v any, seg Segment, mutate func(any) any) {
	if s, ok := v.([]any); ok {
		for i, elem := range s {
			s[i] = mutate(elem)
		}
		return
	}
	if KindOf(v) != Sequence {
		panic(&ShapeError{Segment: seg, Want: Sequence, Got: KindOf(v), Value: v})
	}
	rv := reflect.ValueOf(v)
	elemType := rv.Type().Elem()
	for i := range rv.Len() {
		next := reflect.ValueOf(mutate(rv.Index(i).Interface()))
		if !next.IsValid() {
			next = reflect.Zero(elemType)
		}
		if !next.Type().AssignableTo(elemType) {
			panic(&ShapeError{Segment: seg, Want: Sequence, Got: KindOf(v), Value: v})
		}
		rv.Index(i).Set(next)
	}
}
