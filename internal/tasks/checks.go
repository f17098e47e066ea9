// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/config"
	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/pipeline"
)

// lintJavaScript runs the linter configured under general.lint_command.
func lintJavaScript(runner extproc.Runner) pipeline.Task {
	return func(ctx context.Context, st *build.State, _ pipeline.Args) (*build.State, error) {
		command := st.ToolConfig.GetString("general.lint_command")
		if command == "" {
			st.Log.Debug("no JavaScript linter configured, skipping")
			return nil, nil
		}
		if runner == nil {
			return nil, &extproc.NotFoundError{Tool: "shell runner"}
		}
		st.Log.Info("checking JavaScript files")
		if _, err := runner.Run(ctx, extproc.Command{Script: command, ShowOutput: true}); err != nil {
			return nil, err
		}
		st.Log.Info("JavaScript check complete")
		return nil, nil
	}
}

func checkLocalConfigSchema(_ context.Context, st *build.State, _ pipeline.Args) (*build.State, error) {
	path := st.ToolConfig.ConfigFileUsed()
	if path == "" {
		st.Log.Debug("no local config file, skipping schema check")
		return nil, nil
	}
	st.Log.Debug("checking local config", "file", path)
	if err := config.ValidateFile(path); err != nil {
		return nil, err
	}
	st.Log.Info("local config is valid", "file", path)
	return nil, nil
}
