// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/workingBen/forge-demo/internal/pipeline"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  *ErrorContext
		want string
	}{
		{
			name: "operation only",
			ctx:  NewErrorContext().WithOperation("parse platforms"),
			want: "failed to parse platforms",
		},
		{
			name: "missing app config",
			ctx: NewErrorContext().
				WithOperation("load app config").
				WithResource("src/config.json").
				Wrap(fs.ErrNotExist),
			want: "failed to load app config: src/config.json: file does not exist",
		},
		{
			name: "cause without resource",
			ctx: NewErrorContext().
				WithOperation("load local configuration").
				Wrap(errors.New("general.output_dir: invalid value")),
			want: "failed to load local configuration: general.output_dir: invalid value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ctx.BuildError().Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorContext_BuildErrorNeedsOperation(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("src/config.json").BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want nil without an operation", err)
	}
}

func TestErrorContext_SuggestionsAreCopied(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithOperation("load app config").WithSuggestion("Run 'forge check'")
	first := ctx.BuildError()
	ctx.WithSuggestion("Check the JSON syntax")

	var ae *ActionableError
	if !errors.As(first, &ae) {
		t.Fatalf("BuildError() = %T, want *ActionableError", first)
	}
	if len(ae.Suggestions) != 1 {
		t.Errorf("Suggestions = %v, want the one added before BuildError", ae.Suggestions)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("read app config: %w", fs.ErrNotExist)
	err := NewErrorContext().
		WithOperation("load app config").
		WithResource("src/config.json").
		WithSuggestion("Create src/config.json").
		WithSuggestion("Pass --app-config to use another file").
		Wrap(cause).
		BuildError()
	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("BuildError() = %T", err)
	}

	plain := ae.Format(false)
	for _, want := range []string{"\n  • Create src/config.json", "\n  • Pass --app-config to use another file"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) includes the error chain:\n%s", plain)
	}

	verbose := ae.Format(true)
	for _, want := range []string{"Error chain:", "1. read app config: file does not exist", "2. file does not exist"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestWrapStepError(t *testing.T) {
	t.Parallel()

	stepErr := &pipeline.StepError{
		Index: 4,
		Task:  "copy_files",
		Err:   fmt.Errorf("copy src: %w", fs.ErrPermission),
	}
	err := WrapStepError("generate", fmt.Errorf("goal failed: %w", stepErr))

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("WrapStepError() = %T, want *ActionableError", err)
	}
	if ae.Resource != "step 4 (copy_files)" {
		t.Errorf("Resource = %q, want step 4 (copy_files)", ae.Resource)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("wrapped error lost the task's cause")
	}
	var got *pipeline.StepError
	if !errors.As(err, &got) || got != stepErr {
		t.Error("wrapped error lost the StepError")
	}
	if len(ae.Suggestions) != 1 || !strings.Contains(ae.Suggestions[0], "forge steps generate") {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
}

func TestWrapStepError_DirectStepErrorNotRepeated(t *testing.T) {
	t.Parallel()

	err := WrapStepError("clean", &pipeline.StepError{Index: 1, Task: "clean_web", Err: errors.New("rm failed")})
	want := "failed to run clean: step 1 (clean_web): rm failed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapStepError_OtherErrorsUnchanged(t *testing.T) {
	t.Parallel()

	cause := errors.New("platform count")
	if got := WrapStepError("run", cause); got != cause {
		t.Errorf("WrapStepError() = %v, want the original error", got)
	}
	if WrapStepError("run", nil) != nil {
		t.Error("WrapStepError(nil) != nil")
	}
}
