// SPDX-License-Identifier: MPL-2.0

package goals

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/internal/tasks"
)

// Goal names a user-level build intention.
type Goal string

// Supported goals.
const (
	GoalGenerate Goal = "generate"
	GoalRun      Goal = "run"
	GoalPackage  Goal = "package"
	GoalCheck    Goal = "check"
	GoalClean    Goal = "clean"
)

var (
	// ErrUnknownGoal is returned by ParseGoal for unsupported names.
	ErrUnknownGoal = errors.New("unknown goal")
	// ErrPlatformCount is returned when a goal needs exactly one platform.
	ErrPlatformCount = errors.New("goal requires exactly one enabled platform")
	// ErrUnsupported is returned when a platform has no phase for a goal.
	ErrUnsupported = errors.New("goal not supported for platform")
)

// GoalError reports a goal that could not be composed for the current state.
type GoalError struct {
	Goal      Goal
	Platforms build.PlatformSet
	Err       error
}

func (e *GoalError) Error() string {
	return fmt.Sprintf("cannot compose %s for [%s]: %v", e.Goal, e.Platforms, e.Err)
}

func (e *GoalError) Unwrap() error { return e.Err }

// Goals returns every supported goal in declaration order.
func Goals() []Goal {
	return []Goal{GoalGenerate, GoalRun, GoalPackage, GoalCheck, GoalClean}
}

// ParseGoal converts a command name to a Goal.
func ParseGoal(name string) (Goal, error) {
	g := Goal(name)
	if !slices.Contains(Goals(), g) {
		return "", fmt.Errorf("%w %q", ErrUnknownGoal, name)
	}
	return g, nil
}

// Compose assembles the ordered step list for goal against st. Goals that act
// on a single platform fail here, before any step has run. The first step of
// every goal is track_build, so failed builds are reported too.
func Compose(goal Goal, st *build.State) ([]pipeline.Step, error) {
	ph := Phases{Server: st.Server}
	checkSettings := slices.Concat(ph.CheckJavaScript(), ph.CheckLocalConfigSchema())

	var steps []pipeline.Step
	switch goal {
	case GoalGenerate:
		var wrap []pipeline.Step
		if st.ToolConfig.GetBool("general.wrap_activations") {
			wrap = ph.WrapActivations()
		}
		steps = slices.Concat(
			checkSettings,
			ph.ResolveURLs(),
			ph.CopyUserSource(st.IgnorePatterns),
			ph.IncludePlatformInHTML(),
			wrap,
			ph.IncludeIcons(),
			ph.IncludeName(),
			ph.MakeInstallers(st.OutputDir),
		)
	case GoalRun:
		platform, err := onlyPlatform(goal, st)
		if err != nil {
			return nil, err
		}
		run, err := runPhase(ph, platform, st)
		if err != nil {
			return nil, &GoalError{Goal: goal, Platforms: st.EnabledPlatforms, Err: err}
		}
		steps = slices.Concat(checkSettings, run)
	case GoalPackage:
		if _, err := onlyPlatform(goal, st); err != nil {
			return nil, err
		}
		steps = slices.Concat(checkSettings, ph.Package(st.OutputDir))
	case GoalCheck:
		steps = checkSettings
	case GoalClean:
		steps = ph.Clean()
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownGoal, goal)
	}

	track := pipeline.NewStep(pipeline.ScopeAll, "", tasks.TrackBuild, string(goal))
	return slices.Concat([]pipeline.Step{track}, steps), nil
}

// Run composes goal, validates it against reg and executes it.
func Run(ctx context.Context, goal Goal, reg *pipeline.Registry, st *build.State) (*build.State, error) {
	steps, err := Compose(goal, st)
	if err != nil {
		return st, err
	}
	p, err := pipeline.New(reg, steps)
	if err != nil {
		return st, err
	}
	st.Log.Info("running goal", "goal", goal, "platforms", st.EnabledPlatforms.String())
	return p.Run(ctx, st)
}

func onlyPlatform(goal Goal, st *build.State) (build.Platform, error) {
	p, ok := st.EnabledPlatforms.Only()
	if !ok {
		return "", &GoalError{Goal: goal, Platforms: st.EnabledPlatforms, Err: ErrPlatformCount}
	}
	return p, nil
}

func runPhase(ph Phases, platform build.Platform, st *build.State) ([]pipeline.Step, error) {
	tc := st.ToolConfig
	switch platform {
	case build.Android:
		return ph.RunAndroid(
			st.OutputDir,
			tc.GetString("android.sdk"),
			tc.GetString("android.device"),
			tc.GetBoolDefault("general.interactive", true),
			tc.GetBool("android.purge"),
		), nil
	case build.IOS:
		return ph.RunIOS(tc.GetString("ios.device")), nil
	case build.Firefox:
		return ph.RunFirefox(st.OutputDir), nil
	case build.Web:
		return ph.RunWeb(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, platform)
	}
}
