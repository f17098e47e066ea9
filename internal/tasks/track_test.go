// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/pipeline"
)

func TestTrackBuild(t *testing.T) {
	t.Parallel()

	events := make(chan trackEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev trackEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode tracking body: %v", err)
		}
		events <- ev
	}))
	defer srv.Close()

	st := newTestState(nil)
	st.ToolConfig.Set("general.tracking_url", srv.URL)
	task := trackBuild(srv.Client(), "1.2.3")
	if _, err := task(context.Background(), st, kwargs(nil, "generate")); err != nil {
		t.Fatalf("track_build error = %v", err)
	}

	ev := <-events
	if ev.Action != "generate" || ev.ToolsVersion != "1.2.3" || ev.UUID != st.UUID() {
		t.Errorf("event = %+v", ev)
	}
	if ev.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("platform = %q", ev.Platform)
	}
}

func TestTrackBuild_FailureIsIgnored(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	st := newTestState(nil)
	st.ToolConfig.Set("general.tracking_url", srv.URL)
	if _, err := trackBuild(srv.Client(), "dev")(context.Background(), st, kwargs(nil, "run")); err != nil {
		t.Errorf("track_build error = %v, want nil", err)
	}
}

type recordingRunner struct {
	cmds []extproc.Command
	err  error
}

func (r *recordingRunner) Run(_ context.Context, cmd extproc.Command) (string, error) {
	r.cmds = append(r.cmds, cmd)
	return "", r.err
}

func TestLintJavaScript(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		runner := &recordingRunner{}
		if _, err := lintJavaScript(runner)(context.Background(), newTestState(nil), kwargs(nil)); err != nil {
			t.Fatalf("lint_javascript error = %v", err)
		}
		if len(runner.cmds) != 0 {
			t.Errorf("ran %d commands, want 0", len(runner.cmds))
		}
	})

	t.Run("configured", func(t *testing.T) {
		t.Parallel()
		runner := &recordingRunner{err: &extproc.ShellError{Command: "eslint src", ExitCode: 1}}
		st := newTestState(nil)
		st.ToolConfig.Set("general.lint_command", "eslint src")
		_, err := lintJavaScript(runner)(context.Background(), st, kwargs(nil))
		if err == nil {
			t.Fatal("lint_javascript error = nil, want linter failure")
		}
		if len(runner.cmds) != 1 || runner.cmds[0].Script != "eslint src" {
			t.Errorf("commands = %+v", runner.cmds)
		}
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	reg := pipeline.NewRegistry()
	if err := Register(reg, Options{Runner: &recordingRunner{}}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	for _, name := range []string{CopyFiles, FindAndReplaceInDir, SetInPlist, ResolveURLs, TrackBuild, CheckLocalConfigSchema} {
		if _, ok := reg.Task(name); !ok {
			t.Errorf("task %q not registered", name)
		}
	}
	if err := Register(reg, Options{}); err == nil {
		t.Error("second Register() error = nil, want duplicate name")
	}
}

func TestRegister_RequiredKwargsRejectedBeforeRun(t *testing.T) {
	t.Parallel()

	reg := pipeline.NewRegistry()
	if err := Register(reg, Options{Runner: &recordingRunner{}}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	ran := false
	reg.MustRegisterTask("marker", func(context.Context, *build.State, pipeline.Args) (*build.State, error) {
		ran = true
		return nil, nil
	})

	tests := []struct {
		task   string
		kwargs map[string]any
	}{
		{CopyFiles, map[string]any{"from": "src"}},
		{RenameFiles, map[string]any{"to": "out"}},
		{FindAndReplace, map[string]any{"find": "x"}},
		{FindAndReplaceInDir, map[string]any{"replace": "y"}},
		{SetInPlist, map[string]any{"key": "CFBundleName"}},
	}
	for _, tt := range tests {
		t.Run(tt.task, func(t *testing.T) {
			_, err := pipeline.New(reg, []pipeline.Step{
				pipeline.NewStep(pipeline.ScopeAll, "", "marker"),
				pipeline.NewStep(pipeline.ScopeAll, "", tt.task).WithKwargs(tt.kwargs),
			})
			if !errors.Is(err, pipeline.ErrMissingArgument) {
				t.Errorf("New() error = %v, want ErrMissingArgument", err)
			}
		})
	}
	if ran {
		t.Error("marker ran, want no step executed")
	}
}
