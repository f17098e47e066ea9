// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workingBen/forge-demo/internal/goals"
	"github.com/workingBen/forge-demo/internal/issue"
	"github.com/workingBen/forge-demo/internal/pipeline"
)

var goalDescriptions = map[goals.Goal]string{
	goals.GoalGenerate: "Prepare platform builds from the app source",
	goals.GoalRun:      "Run the app on a single platform",
	goals.GoalPackage:  "Create a release package for a single platform",
	goals.GoalCheck:    "Lint the app and validate local_config",
	goals.GoalClean:    "Stop anything an interrupted run left behind",
}

func newGoalCommands(app *App, flags *rootFlagValues) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(goals.Goals()))
	for _, g := range goals.Goals() {
		cmds = append(cmds, &cobra.Command{
			Use:   string(g),
			Short: goalDescriptions[g],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return handleError(cmd, app, runGoal(cmd, app, flags, g))
			},
		})
	}
	return cmds
}

func runGoal(cmd *cobra.Command, app *App, flags *rootFlagValues, g goals.Goal) error {
	st, err := app.newState(cmd.Context(), flags)
	if err != nil {
		return err
	}
	reg, err := app.newRegistry(st)
	if err != nil {
		return err
	}
	if _, err := goals.Run(cmd.Context(), g, reg, st); err != nil {
		return issue.WrapStepError(string(g), err)
	}
	fmt.Fprintf(app.stdout, "%s %s finished for %s\n", SuccessStyle.Render("✓"), g, st.EnabledPlatforms)
	return nil
}

func newStepsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "steps <goal>",
		Short: "List the steps a goal would run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app, listSteps(cmd, app, flags, args[0]))
		},
	}
}

func listSteps(cmd *cobra.Command, app *App, flags *rootFlagValues, name string) error {
	g, err := goals.ParseGoal(name)
	if err != nil {
		return err
	}
	st, err := app.newState(cmd.Context(), flags)
	if err != nil {
		return err
	}
	steps, err := goals.Compose(g, st)
	if err != nil {
		return err
	}
	reg, err := app.newRegistry(st)
	if err != nil {
		return err
	}
	if _, err := pipeline.New(reg, steps); err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render(string(g)))
	for i, step := range steps {
		line := fmt.Sprintf("%3d  %s", i+1, step)
		if !step.InScope(st.EnabledPlatforms) {
			line = VerboseStyle.Render(line + " (out of scope)")
		}
		fmt.Fprintln(app.stdout, line)
	}
	return nil
}
