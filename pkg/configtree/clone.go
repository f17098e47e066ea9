// SPDX-License-Identifier: MPL-2.0

package configtree

// Clone returns a deep copy of v. Mappings and []any sequences are copied
// recursively; every other value is returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case Map:
		out := make(Map, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}

// CloneMap deep-copies a mapping. A nil input yields an empty map.
func CloneMap(m Map) Map {
	if m == nil {
		return Map{}
	}
	out, _ := Clone(m).(Map)
	return out
}

// Lookup walks literal keys from m and reports the value found, if any.
func Lookup(m Map, keys ...string) (any, bool) {
	var cur any = m
	for _, key := range keys {
		next, ok := cur.(Map)
		if !ok {
			return nil, false
		}
		cur, ok = next[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether m contains a value at keys.
func Has(m Map, keys ...string) bool {
	_, ok := Lookup(m, keys...)
	return ok
}
