// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/template"
	"github.com/workingBen/forge-demo/pkg/configtree"
)

// recorder registers tasks that append their name to calls.
type recorder struct {
	calls []string
	args  map[string]Args
}

func (r *recorder) task(name string) Task {
	return func(_ context.Context, _ *build.State, args Args) (*build.State, error) {
		r.calls = append(r.calls, name)
		if r.args == nil {
			r.args = make(map[string]Args)
		}
		r.args[name] = args
		return nil, nil
	}
}

func newTestRegistry(t *testing.T, rec *recorder, tasks ...string) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, name := range tasks {
		reg.MustRegisterTask(name, rec.task(name))
	}
	return reg
}

func mustNew(t *testing.T, reg *Registry, steps []Step) *Pipeline {
	t.Helper()
	p, err := New(reg, steps)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return p
}

func TestRun_ScopeOnlyWhenPredicateEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scope   string
		enabled build.PlatformSet
		want    bool
	}{
		{scope: ScopeAll, enabled: build.NewPlatformSet(), want: true},
		{scope: ScopeAll, enabled: build.NewPlatformSet(build.Web), want: true},
		{scope: "android", enabled: build.NewPlatformSet(build.Android), want: true},
		{scope: "android,firefox,safari", enabled: build.NewPlatformSet(build.Safari), want: true},
		{scope: "android", enabled: build.NewPlatformSet(build.IOS), want: false},
		{scope: "android,ios", enabled: build.NewPlatformSet(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.scope+"/"+tt.enabled.String(), func(t *testing.T) {
			t.Parallel()
			rec := &recorder{}
			reg := newTestRegistry(t, rec, "t")
			p := mustNew(t, reg, []Step{NewStep(tt.scope, "", "t")})

			if _, err := p.Run(context.Background(), build.NewState(nil, tt.enabled)); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if got := len(rec.calls) == 1; got != tt.want {
				t.Errorf("step ran = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRun_PredicatesAreANDed(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ p1, p2 bool }{{true, true}, {true, false}, {false, true}, {false, false}} {
		rec := &recorder{}
		reg := newTestRegistry(t, rec, "t")
		reg.MustRegisterPredicate("p1", func(*build.State) bool { return tc.p1 })
		reg.MustRegisterPredicate("p2", func(*build.State) bool { return tc.p2 })
		p := mustNew(t, reg, []Step{NewStep(ScopeAll, "p1,p2", "t")})

		if _, err := p.Run(context.Background(), build.NewState(nil, nil)); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		ran := len(rec.calls) == 1
		if ran != (tc.p1 && tc.p2) {
			t.Errorf("p1=%v p2=%v: ran = %v", tc.p1, tc.p2, ran)
		}
	}
}

func TestRun_HaltsOnFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	reg := NewRegistry()
	third := false
	reg.MustRegisterTask("first", func(_ context.Context, st *build.State, _ Args) (*build.State, error) {
		st.Config["first"] = true
		return nil, nil
	})
	reg.MustRegisterTask("second", func(context.Context, *build.State, Args) (*build.State, error) {
		return nil, boom
	})
	reg.MustRegisterTask("third", func(_ context.Context, st *build.State, _ Args) (*build.State, error) {
		third = true
		st.Config["third"] = true
		return nil, nil
	})

	p := mustNew(t, reg, []Step{
		NewStep(ScopeAll, "", "first"),
		NewStep(ScopeAll, "", "second"),
		NewStep(ScopeAll, "", "third"),
	})

	st, err := p.Run(context.Background(), build.NewState(configtree.Map{}, nil))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Index != 1 || stepErr.Task != "second" {
		t.Errorf("expected StepError for step 1 (second), got %v", err)
	}
	if third {
		t.Error("third step must not run")
	}
	want := configtree.Map{"first": true}
	if len(st.Config) != 1 || st.Config["first"] != true {
		t.Errorf("state config = %v, want %v", st.Config, want)
	}
}

func TestRun_AdoptsReplacementState(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustRegisterTask("replace", func(_ context.Context, st *build.State, _ Args) (*build.State, error) {
		return st.WithConfig(configtree.Map{"name": "replaced"}), nil
	})
	var seen string
	reg.MustRegisterTask("read", func(_ context.Context, st *build.State, args Args) (*build.State, error) {
		seen = args.String(0)
		return nil, nil
	})

	p := mustNew(t, reg, []Step{
		NewStep(ScopeAll, "", "replace"),
		NewStep(ScopeAll, "", "read", "${name}"),
	})
	st, err := p.Run(context.Background(), build.NewState(configtree.Map{"name": "orig"}, nil))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if seen != "replaced" {
		t.Errorf("second step rendered %q, want %q", seen, "replaced")
	}
	if st.Config["name"] != "replaced" {
		t.Errorf("final state not adopted: %v", st.Config)
	}
}

func TestRun_RendersArguments(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	reg := newTestRegistry(t, rec, "copy")
	step := NewStep(ScopeAll, "", "copy", "${name}.txt", 3, []any{"${version}", true}).
		WithKwargs(map[string]any{
			"from":   `${icons["android"]["36"]}`,
			"ignore": []string{"${name}/*"},
			"raw":    "%%{back_to_parent}%",
		})
	p := mustNew(t, reg, []Step{step})

	config := configtree.Map{
		"name":    "app",
		"version": "0.1",
		"icons":   configtree.Map{"android": configtree.Map{"36": "a.png"}},
	}
	if _, err := p.Run(context.Background(), build.NewState(config, nil)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	args := rec.args["copy"]
	if args.String(0) != "app.txt" || args.At(1) != 3 {
		t.Errorf("positional = %v", args.Positional)
	}
	if nested := args.At(2).([]any); nested[0] != "0.1" || nested[1] != true {
		t.Errorf("nested = %v", nested)
	}
	if got := args.KwString("from", ""); got != "a.png" {
		t.Errorf("from = %q", got)
	}
	if got := args.KwStrings("ignore"); !slices.Equal(got, []string{"app/*"}) {
		t.Errorf("ignore = %v", got)
	}
	if got := args.KwString("raw", ""); got != "%{back_to_parent}%" {
		t.Errorf("raw = %q", got)
	}
}

func TestRun_RenderErrorAbortsStep(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	reg := newTestRegistry(t, rec, "t")
	p := mustNew(t, reg, []Step{NewStep(ScopeAll, "", "t", "${missing}")})

	_, err := p.Run(context.Background(), build.NewState(configtree.Map{}, nil))
	if !errors.Is(err, template.ErrUndefined) {
		t.Fatalf("expected ErrUndefined, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Error("task must not run when its arguments fail to render")
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	reg := newTestRegistry(t, rec, "t")
	p := mustNew(t, reg, []Step{NewStep(ScopeAll, "", "t")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, build.NewState(nil, nil)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Error("no step should run after cancellation")
	}
}

func TestNew_RejectsUnknownNames(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	reg := newTestRegistry(t, rec, "known")
	reg.MustRegisterPredicate("yes", func(*build.State) bool { return true })

	_, err := New(reg, []Step{
		NewStep(ScopeAll, "yes", "known"),
		NewStep(ScopeAll, "", "missing_task"),
		NewStep("android", "yes,nope", "known"),
		NewStep("", "", "known"),
	})
	var consErr *ConstructionError
	if !errors.As(err, &consErr) {
		t.Fatalf("expected ConstructionError, got %v", err)
	}
	if len(consErr.Problems) != 3 {
		t.Errorf("expected 3 problems, got %d: %v", len(consErr.Problems), err)
	}
	for _, target := range []error{ErrUnknownTask, ErrUnknownPredicate, ErrEmptyScope} {
		if !errors.Is(err, target) {
			t.Errorf("expected error to match %v", target)
		}
	}
	if len(rec.calls) != 0 {
		t.Error("construction must not run tasks")
	}
}

func TestNew_MissingRequiredKwargs(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	reg := newTestRegistry(t, rec, "marker")
	reg.MustRegisterTask("copy_files", rec.task("copy_files"), RequiredKwargs("from", "to"))

	_, err := New(reg, []Step{
		NewStep(ScopeAll, "", "marker"),
		NewStep(ScopeAll, "", "copy_files").WithKwargs(map[string]any{"from": "src"}),
		NewStep(ScopeAll, "", "copy_files").WithKwargs(map[string]any{"from": "src", "to": "out"}),
	})
	var consErr *ConstructionError
	if !errors.As(err, &consErr) {
		t.Fatalf("New() error = %v, want ConstructionError", err)
	}
	if len(consErr.Problems) != 1 || consErr.Problems[0].Index != 1 {
		t.Fatalf("problems = %v, want one for step 1", consErr.Problems)
	}
	var cfgErr *ConfigurationError
	if !errors.As(consErr.Problems[0].Err, &cfgErr) || cfgErr.Missing != "to" {
		t.Errorf("problem = %v, want missing \"to\"", consErr.Problems[0].Err)
	}
	if !errors.Is(err, ErrMissingArgument) {
		t.Error("expected error to match ErrMissingArgument")
	}
	if len(rec.calls) != 0 {
		t.Errorf("calls = %v, want none", rec.calls)
	}
	if got := reg.RequiredKwargs("marker"); len(got) != 0 {
		t.Errorf("RequiredKwargs(marker) = %v, want none", got)
	}
}

func TestRegistry_Duplicates(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	noop := func(context.Context, *build.State, Args) (*build.State, error) { return nil, nil }
	if err := reg.RegisterTask("copy_files", noop); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := reg.RegisterTask("copy_files", noop); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if err := reg.RegisterPredicate("", func(*build.State) bool { return true }); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}

	// Tasks and predicates live in separate namespaces.
	if err := reg.RegisterPredicate("copy_files", func(*build.State) bool { return true }); err != nil {
		t.Errorf("predicate registration collided with task: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRegisterTask should panic on duplicates")
		}
	}()
	reg.MustRegisterTask("copy_files", noop)
}

func TestRegistry_NamesSorted(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	reg := newTestRegistry(t, rec, "run_web", "copy_files", "lint_javascript")
	want := []string{"copy_files", "lint_javascript", "run_web"}
	if got := reg.TaskNames(); !slices.Equal(got, want) {
		t.Errorf("TaskNames() = %v, want %v", got, want)
	}
}

func TestArgs_RequireKw(t *testing.T) {
	t.Parallel()

	args := Args{Keyword: map[string]any{"from": "src"}}
	err := args.RequireKw("copy_files", "from", "to")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Missing != "to" {
		t.Fatalf("expected ConfigurationError for \"to\", got %v", err)
	}
	if !errors.Is(err, ErrMissingArgument) {
		t.Error("expected ErrMissingArgument")
	}
	if args.KwBool("template", true) != true {
		t.Error("KwBool default not applied")
	}
}
