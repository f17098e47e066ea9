// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"
	"strconv"
)

// Args are the rendered arguments a task is invoked with.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Len returns the number of positional arguments.
func (a Args) Len() int { return len(a.Positional) }

// At returns the positional argument at i, or nil if out of range.
func (a Args) At(i int) any {
	if i < 0 || i >= len(a.Positional) {
		return nil
	}
	return a.Positional[i]
}

// String returns the positional argument at i as a string. Absent and nil
// arguments yield "".
func (a Args) String(i int) string {
	return toString(a.At(i))
}

// Strings returns every positional argument as a string.
func (a Args) Strings() []string {
	out := make([]string, len(a.Positional))
	for i, v := range a.Positional {
		out[i] = toString(v)
	}
	return out
}

// Bool returns the positional argument at i as a bool.
func (a Args) Bool(i int) bool {
	return toBool(a.At(i))
}

// Kw returns the keyword argument name.
func (a Args) Kw(name string) (any, bool) {
	v, ok := a.Keyword[name]
	return v, ok
}

// KwString returns the keyword argument name as a string, or def when absent.
func (a Args) KwString(name, def string) string {
	v, ok := a.Keyword[name]
	if !ok || v == nil {
		return def
	}
	return toString(v)
}

// KwBool returns the keyword argument name as a bool, or def when absent.
func (a Args) KwBool(name string, def bool) bool {
	v, ok := a.Keyword[name]
	if !ok || v == nil {
		return def
	}
	return toBool(v)
}

// List returns the positional argument at i as a string list.
func (a Args) List(i int) []string {
	return toStrings(a.At(i))
}

// KwStrings returns the keyword argument name as a string list. A single
// string is treated as a one-element list.
func (a Args) KwStrings(name string) []string {
	return toStrings(a.Keyword[name])
}

func toStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case string:
		return []string{v}
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = toString(item)
		}
		return out
	case []int:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = strconv.Itoa(n)
		}
		return out
	default:
		return []string{toString(v)}
	}
}

// RequireKw returns a *ConfigurationError naming task when any of names is
// missing from the keyword arguments.
func (a Args) RequireKw(task string, names ...string) error {
	for _, name := range names {
		if _, ok := a.Keyword[name]; !ok {
			return &ConfigurationError{Task: task, Missing: name}
		}
	}
	return nil
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	case nil:
		return false
	default:
		return true
	}
}
