// SPDX-License-Identifier: MPL-2.0

package extproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/workingBen/forge-demo/pkg/hostenv"
)

type (
	// Command describes one external invocation.
	Command struct {
		// Args is the program and its arguments. Ignored when Script is set.
		Args []string
		// Script is a shell command line, used for user-configured commands.
		Script string
		// Dir is the working directory; empty means the current one.
		Dir string
		// Env holds extra KEY=VALUE pairs added to the process environment.
		Env []string
		// FailSilently logs a non-zero exit instead of returning an error.
		FailSilently bool
		// ShowOutput logs output lines at info level instead of debug.
		ShowOutput bool
	}

	// Runner executes external commands and returns their combined output.
	Runner interface {
		Run(ctx context.Context, cmd Command) (string, error)
	}

	// ShellRunner runs commands through the mvdan.cc/sh interpreter.
	ShellRunner struct {
		log     *log.Logger
		sandbox hostenv.SandboxType
	}
)

// NewShellRunner creates a runner that logs through logger. Commands are
// spawned on the host when forge runs inside an application sandbox.
func NewShellRunner(logger *log.Logger) *ShellRunner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ShellRunner{log: logger, sandbox: hostenv.DetectSandbox()}
}

// Run executes cmd and returns everything it wrote to stdout and stderr.
// A non-zero exit yields a *ShellError unless cmd.FailSilently is set; an
// unknown program yields a *NotFoundError.
func (r *ShellRunner) Run(ctx context.Context, cmd Command) (string, error) {
	source, name, err := cmd.source()
	if err != nil {
		return "", err
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(source), name)
	if err != nil {
		return "", fmt.Errorf("failed to parse command %q: %w", source, err)
	}

	level := log.DebugLevel
	if cmd.ShowOutput {
		level = log.InfoLevel
	}
	out := &lineLogger{log: r.log, level: level}

	env := append(os.Environ(), cmd.Env...)
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, out, out),
		interp.ExecHandlers(r.hostSpawn),
	}
	if cmd.Dir != "" {
		opts = append(opts, interp.Dir(cmd.Dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create interpreter: %w", err)
	}

	r.log.Debug("running", "command", source)
	runErr := runner.Run(ctx, prog)
	out.flush()
	output := out.String()
	if runErr == nil {
		return output, nil
	}

	var status interp.ExitStatus
	if !errors.As(runErr, &status) {
		return output, fmt.Errorf("failed when running %s: %w", name, runErr)
	}
	if int(status) == exitNotFound && cmd.Script == "" {
		return output, &NotFoundError{Tool: name}
	}
	if cmd.FailSilently {
		r.log.Debug("command failed, carrying on anyway", "command", source, "exit", int(status))
		return output, nil
	}
	return output, &ShellError{Command: name, ExitCode: int(status), Output: output}
}

// hostSpawn rewrites external invocations for the sandbox, if any.
func (r *ShellRunner) hostSpawn(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		return next(ctx, hostenv.HostCommand(r.sandbox, args))
	}
}

// source returns the shell source for cmd and a short name for messages.
func (cmd Command) source() (string, string, error) {
	if cmd.Script != "" {
		name, _, _ := strings.Cut(strings.TrimSpace(cmd.Script), " ")
		return cmd.Script, name, nil
	}
	if len(cmd.Args) == 0 {
		return "", "", errors.New("empty command")
	}
	quoted := make([]string, len(cmd.Args))
	for i, arg := range cmd.Args {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			return "", "", fmt.Errorf("cannot quote argument %q: %w", arg, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), cmd.Args[0], nil
}

// lineLogger collects output and logs it one line at a time.
type lineLogger struct {
	mu      sync.Mutex
	log     *log.Logger
	level   log.Level
	all     bytes.Buffer
	pending []byte
}

func (w *lineLogger) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.all.Write(p)
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.emit(w.pending[:i])
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

func (w *lineLogger) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) > 0 {
		w.emit(w.pending)
		w.pending = nil
	}
}

func (w *lineLogger) emit(line []byte) {
	w.log.Log(w.level, strings.TrimRight(string(line), "\r"))
}

func (w *lineLogger) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.all.String()
}
