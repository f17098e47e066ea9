// SPDX-License-Identifier: MPL-2.0

package platforms

import (
	"context"
	"fmt"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/internal/template"
)

// delegate returns a task that runs the shell command configured under
// <platform>.<action>_command. The command is rendered against the app
// config first; positional arguments reach it as FORGE_ARG_<n>.
func (t *Tasks) delegate(platform, action string) pipeline.Task {
	key := platform + "." + action + "_command"
	return func(ctx context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
		command := st.ToolConfig.GetString(key)
		if command == "" {
			return nil, &extproc.NotFoundError{
				Tool: fmt.Sprintf("%s %s command", platform, action),
				Hint: "set " + key + " in your local config",
			}
		}
		rendered, err := template.Render(st.Config, command)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		env := make([]string, 0, args.Len())
		for i, arg := range args.Strings() {
			env = append(env, fmt.Sprintf("FORGE_ARG_%d=%s", i, arg))
		}
		st.Log.Info("running "+platform+" "+action+" command", "command", rendered)
		_, err = t.runner.Run(ctx, extproc.Command{Script: rendered, Env: env, ShowOutput: true})
		return nil, err
	}
}
