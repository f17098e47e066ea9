// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/workingBen/forge-demo/internal/build"
)

type (
	// Predicate is a side-effect-free test over the build state.
	Predicate func(st *build.State) bool

	// Task is a side-effecting operation over the build state. A non-nil
	// returned state replaces the current one for later steps.
	Task func(ctx context.Context, st *build.State, args Args) (*build.State, error)

	// TaskOption configures a task at registration.
	TaskOption func(*taskEntry)

	// Registry maps names to predicates and tasks. It is populated once at
	// startup and is safe for concurrent use.
	Registry struct {
		mu         sync.RWMutex
		predicates map[string]Predicate
		tasks      map[string]taskEntry
	}

	taskEntry struct {
		fn       Task
		required []string
	}
)

// RequiredKwargs declares keyword arguments every step invoking the task
// must supply. New rejects steps that omit one.
func RequiredKwargs(names ...string) TaskOption {
	return func(e *taskEntry) {
		e.required = append(e.required, names...)
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		predicates: make(map[string]Predicate),
		tasks:      make(map[string]taskEntry),
	}
}

// RegisterPredicate adds a predicate under name.
func (r *Registry) RegisterPredicate(name string, fn Predicate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return register(r.predicates, "predicate", name, fn)
}

// RegisterTask adds a task under name.
func (r *Registry) RegisterTask(name string, fn Task, opts ...TaskOption) error {
	entry := taskEntry{fn: fn}
	for _, opt := range opts {
		opt(&entry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return register(r.tasks, "task", name, entry)
}

// MustRegisterPredicate is like RegisterPredicate but panics on error.
func (r *Registry) MustRegisterPredicate(name string, fn Predicate) {
	if err := r.RegisterPredicate(name, fn); err != nil {
		panic(err)
	}
}

// MustRegisterTask is like RegisterTask but panics on error.
func (r *Registry) MustRegisterTask(name string, fn Task, opts ...TaskOption) {
	if err := r.RegisterTask(name, fn, opts...); err != nil {
		panic(err)
	}
}

// Predicate looks up a predicate by name.
func (r *Registry) Predicate(name string) (Predicate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.predicates[name]
	return fn, ok
}

// Task looks up a task by name.
func (r *Registry) Task(name string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.tasks[name]
	return entry.fn, ok
}

// RequiredKwargs returns the keyword arguments task name was registered
// with as mandatory.
func (r *Registry) RequiredKwargs(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tasks[name].required)
}

// PredicateNames returns the registered predicate names in sorted order.
func (r *Registry) PredicateNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.predicates)
}

// TaskNames returns the registered task names in sorted order.
func (r *Registry) TaskNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.tasks)
}

func register[F any](m map[string]F, kind, name string, fn F) error {
	if name == "" {
		return fmt.Errorf("register %s: %w", kind, ErrEmptyName)
	}
	if _, exists := m[name]; exists {
		return fmt.Errorf("register %s %q: %w", kind, name, ErrDuplicateName)
	}
	m[name] = fn
	return nil
}

func sortedKeys[F any](m map[string]F) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
