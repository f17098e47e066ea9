// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTask is returned when a step names an unregistered task.
	ErrUnknownTask = errors.New("unknown task")
	// ErrUnknownPredicate is returned when a step names an unregistered predicate.
	ErrUnknownPredicate = errors.New("unknown predicate")
	// ErrEmptyScope is returned when a step has no platform scope.
	ErrEmptyScope = errors.New("empty platform scope")
	// ErrDuplicateName is returned when a name is registered twice.
	ErrDuplicateName = errors.New("name already registered")
	// ErrEmptyName is returned when registering under an empty name.
	ErrEmptyName = errors.New("empty name")
	// ErrMissingArgument is wrapped by ConfigurationError.
	ErrMissingArgument = errors.New("missing keyword argument")
)

type (
	// StepProblem describes why one step failed validation.
	StepProblem struct {
		Index int
		Step  Step
		Err   error
	}

	// ConstructionError aggregates every invalid step found by New.
	ConstructionError struct {
		Problems []StepProblem
	}

	// StepError reports the step that stopped a run.
	StepError struct {
		Index int
		Task  string
		Err   error
	}

	// ConfigurationError reports a task invoked without a required keyword
	// argument.
	ConfigurationError struct {
		Task    string
		Missing string
	}
)

func (e *ConstructionError) Error() string {
	if len(e.Problems) == 1 {
		p := e.Problems[0]
		return fmt.Sprintf("invalid pipeline: step %d (%s): %v", p.Index, p.Step.TaskName, p.Err)
	}
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = fmt.Sprintf("step %d (%s): %v", p.Index, p.Step.TaskName, p.Err)
	}
	return fmt.Sprintf("invalid pipeline: %d problems:\n  %s", len(e.Problems), strings.Join(lines, "\n  "))
}

// Unwrap exposes every problem for errors.Is and errors.As.
func (e *ConstructionError) Unwrap() []error {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = p.Err
	}
	return errs
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index, e.Task, e.Err)
}

// Unwrap returns the task error.
func (e *StepError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s requires %q keyword argument", e.Task, e.Missing)
}

// Unwrap returns ErrMissingArgument.
func (e *ConfigurationError) Unwrap() error { return ErrMissingArgument }
