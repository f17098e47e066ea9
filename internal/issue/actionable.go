// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/workingBen/forge-demo/internal/pipeline"
)

type (
	// ActionableError is a failure shown to the user together with what forge
	// was doing, the file or step involved and how to fix it.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load app config").
	//		WithResource("src/config.json").
	//		WithSuggestion("Run 'forge check' to validate it").
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "load app config".
		Operation   string
		Resource    string
		Suggestions []string
		Cause       error
	}

	// ErrorContext builds an ActionableError step by step.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext creates an empty ErrorContext.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WithOperation sets what forge was doing.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource sets the file, flag value or step involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends a fix hint. Hints are shown in the order added.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sug)
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// BuildError returns the ActionableError, or nil when no operation was set.
func (c *ErrorContext) BuildError() error {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}

// WrapStepError names the task of a failed pipeline step as the resource of
// an ActionableError for goal. Other errors are returned unchanged.
func WrapStepError(goal string, err error) error {
	var stepErr *pipeline.StepError
	if !errors.As(err, &stepErr) {
		return err
	}
	return NewErrorContext().
		WithOperation("run " + goal).
		WithResource(fmt.Sprintf("step %d (%s)", stepErr.Index, stepErr.Task)).
		WithSuggestion(fmt.Sprintf("Run 'forge steps %s' to list the steps of this goal", goal)).
		Wrap(err).
		BuildError()
}

func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to " + e.Operation)
	if e.Resource != "" {
		msg.WriteString(": " + e.Resource)
	}
	if cause := e.displayCause(); cause != nil {
		msg.WriteString(": " + cause.Error())
	}
	return msg.String()
}

// Unwrap returns the cause.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error with one bulleted line per suggestion. In verbose
// mode the numbered cause chain follows.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())
	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, s := range e.Suggestions {
			msg.WriteString("\n  • " + s)
		}
	}
	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		for i, err := 1, e.Cause; err != nil; i, err = i+1, errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", i, err)
		}
	}
	return msg.String()
}

// displayCause skips a StepError already named by Resource.
func (e *ActionableError) displayCause() error {
	if stepErr, ok := e.Cause.(*pipeline.StepError); ok && e.Resource != "" {
		return stepErr.Err
	}
	return e.Cause
}
