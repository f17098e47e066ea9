// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"
	"maps"
	"strings"

	"github.com/workingBen/forge-demo/internal/build"
)

// ScopeAll is the platform scope that matches every enabled platform.
const ScopeAll = "all"

// Step is a single conditionally executed pipeline entry.
type Step struct {
	// PlatformScope is ScopeAll or a comma-separated platform list.
	PlatformScope string
	// PredicateExpr is a comma-separated list of predicate names, ANDed.
	// Empty means always true.
	PredicateExpr string
	// TaskName is the registered task to invoke.
	TaskName string
	// Args are positional arguments; strings may contain template expressions.
	Args []any
	// Kwargs are keyword arguments; strings may contain template expressions.
	Kwargs map[string]any
}

// NewStep creates a step with positional arguments.
func NewStep(scope, predicates, task string, args ...any) Step {
	return Step{
		PlatformScope: scope,
		PredicateExpr: predicates,
		TaskName:      task,
		Args:          args,
	}
}

// WithKwargs returns a copy of s with kwargs set.
func (s Step) WithKwargs(kwargs map[string]any) Step {
	s.Kwargs = maps.Clone(kwargs)
	return s
}

// Predicates returns the predicate names of the step's expression.
func (s Step) Predicates() []string {
	return splitList(s.PredicateExpr)
}

// Platforms returns the platforms named by the scope; nil for ScopeAll.
func (s Step) Platforms() []build.Platform {
	if strings.TrimSpace(s.PlatformScope) == ScopeAll {
		return nil
	}
	names := splitList(s.PlatformScope)
	out := make([]build.Platform, len(names))
	for i, name := range names {
		out[i] = build.Platform(name)
	}
	return out
}

// InScope reports whether the step applies to any of the enabled platforms.
func (s Step) InScope(enabled build.PlatformSet) bool {
	if strings.TrimSpace(s.PlatformScope) == ScopeAll {
		return true
	}
	for _, p := range s.Platforms() {
		if enabled.Has(p) {
			return true
		}
	}
	return false
}

func (s Step) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", s.TaskName, s.PlatformScope)
	if s.PredicateExpr != "" {
		fmt.Fprintf(&b, " if %s", s.PredicateExpr)
	}
	if len(s.Args) > 0 {
		fmt.Fprintf(&b, " %v", s.Args)
	}
	if len(s.Kwargs) > 0 {
		fmt.Fprintf(&b, " %v", s.Kwargs)
	}
	return b.String()
}

func splitList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
