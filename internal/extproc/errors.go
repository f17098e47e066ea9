// SPDX-License-Identifier: MPL-2.0

package extproc

import (
	"errors"
	"fmt"
)

// exitNotFound is the status the interpreter reports for unknown commands.
const exitNotFound = 127

var (
	// ErrShellFailed is the sentinel error wrapped by ShellError.
	ErrShellFailed = errors.New("external command failed")
	// ErrToolNotFound is the sentinel error wrapped by NotFoundError.
	ErrToolNotFound = errors.New("external tool not found")
)

type (
	// ShellError reports an external command that exited non-zero.
	ShellError struct {
		Command  string
		ExitCode int
		Output   string
	}

	// NotFoundError reports an external tool that could not be located.
	NotFoundError struct {
		Tool string
		// Hint tells the user how to make the tool available.
		Hint string
	}
)

func (e *ShellError) Error() string {
	return fmt.Sprintf("failed when running %s (exit %d): %s", e.Command, e.ExitCode, e.Output)
}

// Unwrap returns ErrShellFailed.
func (e *ShellError) Unwrap() error { return ErrShellFailed }

func (e *NotFoundError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("could not locate %s", e.Tool)
	}
	return fmt.Sprintf("could not locate %s: %s", e.Tool, e.Hint)
}

// Unwrap returns ErrToolNotFound.
func (e *NotFoundError) Unwrap() error { return ErrToolNotFound }
