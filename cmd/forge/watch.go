// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/workingBen/forge-demo/internal/goals"
	"github.com/workingBen/forge-demo/internal/issue"
	"github.com/workingBen/forge-demo/internal/watch"
)

func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var debounce time.Duration
	c := &cobra.Command{
		Use:   "watch",
		Short: "Re-run generate whenever the app source changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleError(cmd, app, runWatch(cmd, app, flags, debounce))
		},
	}
	c.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before rebuilding")
	return c
}

func runWatch(cmd *cobra.Command, app *App, flags *rootFlagValues, debounce time.Duration) error {
	generate := func(ctx context.Context) error {
		st, err := app.newState(ctx, flags)
		if err != nil {
			return err
		}
		reg, err := app.newRegistry(st)
		if err != nil {
			return err
		}
		_, err = goals.Run(ctx, goals.GoalGenerate, reg, st)
		return issue.WrapStepError(string(goals.GoalGenerate), err)
	}

	fmt.Fprintf(app.stdout, "%s initial generate\n", VerboseHighlightStyle.Render("→"))
	if err := generate(cmd.Context()); err != nil {
		renderError(app.stderr, err, flags.verbose)
	}

	st, err := app.newState(cmd.Context(), flags)
	if err != nil {
		return err
	}
	w, err := watch.New(watch.Config{
		Root:     sourceDir(flags.appConfig),
		Ignore:   st.IgnorePatterns,
		Debounce: debounce,
		Log:      st.Log,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s %d change(s), regenerating\n", VerboseHighlightStyle.Render("→"), len(changed))
			if err := generate(ctx); err != nil {
				renderError(app.stderr, err, flags.verbose)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s generate finished\n", SuccessStyle.Render("✓"))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	fmt.Fprintf(app.stdout, "%s watching %s (Ctrl+C to stop)\n", VerboseHighlightStyle.Render("→"), sourceDir(flags.appConfig))
	return w.Run(cmd.Context())
}
