// SPDX-License-Identifier: MPL-2.0

package extproc

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestRunner(buf *bytes.Buffer) *ShellRunner {
	logger := log.New(buf)
	logger.SetLevel(log.DebugLevel)
	return NewShellRunner(logger)
}

func TestShellRunner_Output(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := newTestRunner(&logs)

	out, err := r.Run(context.Background(), Command{Args: []string{"echo", "a b", "$HOME"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out != "a b $HOME\n" {
		t.Errorf("output = %q, want arguments passed literally", out)
	}
	if !strings.Contains(logs.String(), "a b $HOME") {
		t.Errorf("output line not logged: %q", logs.String())
	}
}

func TestShellRunner_Script(t *testing.T) {
	t.Parallel()

	r := newTestRunner(&bytes.Buffer{})
	out, err := r.Run(context.Background(), Command{
		Script: `echo "$GREETING"; echo second`,
		Env:    []string{"GREETING=hi"},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out != "hi\nsecond\n" {
		t.Errorf("output = %q", out)
	}
}

func TestShellRunner_Failures(t *testing.T) {
	t.Parallel()

	r := newTestRunner(&bytes.Buffer{})
	ctx := context.Background()

	_, err := r.Run(ctx, Command{Script: "echo broken; exit 3"})
	var shellErr *ShellError
	if !errors.As(err, &shellErr) {
		t.Fatalf("expected ShellError, got %v", err)
	}
	if shellErr.ExitCode != 3 || !strings.Contains(shellErr.Output, "broken") {
		t.Errorf("unexpected ShellError: %+v", shellErr)
	}
	if !errors.Is(err, ErrShellFailed) {
		t.Error("expected ErrShellFailed")
	}

	if _, err := r.Run(ctx, Command{Script: "exit 1", FailSilently: true}); err != nil {
		t.Errorf("fail-silently command returned %v", err)
	}

	_, err = r.Run(ctx, Command{Args: []string{"forge-test-no-such-tool-3f9a"}})
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("expected ErrToolNotFound, got %v", err)
	}

	if _, err := r.Run(ctx, Command{}); err == nil {
		t.Error("expected error for an empty command")
	}
}
