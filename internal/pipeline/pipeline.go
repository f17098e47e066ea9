// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/template"
	"github.com/workingBen/forge-demo/pkg/configtree"
)

// Pipeline is a validated, ordered list of steps bound to a registry.
type Pipeline struct {
	reg      *Registry
	steps    []Step
	renderer *template.Renderer
}

// New validates steps against reg. Every step must name a registered task
// and pass the keyword arguments it requires, every predicate in its
// expression must be registered and its scope must not be empty. All
// problems are reported together in a *ConstructionError.
func New(reg *Registry, steps []Step) (*Pipeline, error) {
	var problems []StepProblem
	for i, step := range steps {
		if strings.TrimSpace(step.PlatformScope) == "" {
			problems = append(problems, StepProblem{Index: i, Step: step, Err: ErrEmptyScope})
		}
		if _, ok := reg.Task(step.TaskName); !ok {
			problems = append(problems, StepProblem{
				Index: i,
				Step:  step,
				Err:   fmt.Errorf("%w %q", ErrUnknownTask, step.TaskName),
			})
		}
		for _, name := range reg.RequiredKwargs(step.TaskName) {
			if _, ok := step.Kwargs[name]; !ok {
				problems = append(problems, StepProblem{
					Index: i,
					Step:  step,
					Err:   &ConfigurationError{Task: step.TaskName, Missing: name},
				})
			}
		}
		for _, name := range step.Predicates() {
			if _, ok := reg.Predicate(name); !ok {
				problems = append(problems, StepProblem{
					Index: i,
					Step:  step,
					Err:   fmt.Errorf("%w %q", ErrUnknownPredicate, name),
				})
			}
		}
	}
	if len(problems) > 0 {
		return nil, &ConstructionError{Problems: problems}
	}

	return &Pipeline{
		reg:      reg,
		steps:    slices.Clone(steps),
		renderer: template.NewRenderer(),
	}, nil
}

// Steps returns a copy of the pipeline's steps.
func (p *Pipeline) Steps() []Step {
	return slices.Clone(p.steps)
}

// Run executes the steps in order against st and returns the final state.
// It stops at the first failing step and returns a *StepError; the returned
// state then reflects every step that completed before it.
func (p *Pipeline) Run(ctx context.Context, st *build.State) (*build.State, error) {
	logger := st.Log
	if logger == nil {
		logger = log.New(io.Discard)
	}

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return st, fmt.Errorf("pipeline canceled before step %d: %w", i, err)
		}

		if !step.InScope(st.EnabledPlatforms) {
			logger.Debug("skipping step", "task", step.TaskName, "scope", step.PlatformScope)
			continue
		}
		if name, ok := p.failingPredicate(step, st); !ok {
			logger.Debug("skipping step", "task", step.TaskName, "predicate", name)
			continue
		}

		args, err := p.renderArgs(st.Config, step)
		if err != nil {
			return st, &StepError{Index: i, Task: step.TaskName, Err: err}
		}

		task, _ := p.reg.Task(step.TaskName)
		logger.Debug("running step", "task", step.TaskName)
		next, err := task(ctx, st, args)
		if err != nil {
			return st, &StepError{Index: i, Task: step.TaskName, Err: err}
		}
		if next != nil {
			st = next
			if st.Log != nil {
				logger = st.Log
			}
		}
	}
	return st, nil
}

// failingPredicate returns the first predicate of step that is false.
func (p *Pipeline) failingPredicate(step Step, st *build.State) (string, bool) {
	for _, name := range step.Predicates() {
		pred, _ := p.reg.Predicate(name)
		if !pred(st) {
			return name, false
		}
	}
	return "", true
}

func (p *Pipeline) renderArgs(config configtree.Map, step Step) (Args, error) {
	args := Args{Positional: make([]any, len(step.Args))}
	for i, v := range step.Args {
		rendered, err := p.render(config, v)
		if err != nil {
			return Args{}, fmt.Errorf("argument %d: %w", i, err)
		}
		args.Positional[i] = rendered
	}

	args.Keyword = make(map[string]any, len(step.Kwargs))
	for k, v := range step.Kwargs {
		rendered, err := p.render(config, v)
		if err != nil {
			return Args{}, fmt.Errorf("keyword argument %q: %w", k, err)
		}
		args.Keyword[k] = rendered
	}
	return args, nil
}

func (p *Pipeline) render(config configtree.Map, v any) (any, error) {
	switch t := v.(type) {
	case string:
		return p.renderer.Render(config, t)
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			r, err := p.renderer.Render(config, s)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			r, err := p.render(config, item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}
