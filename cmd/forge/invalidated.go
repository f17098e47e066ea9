// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workingBen/forge-demo/internal/invalidate"
)

func newInvalidatedCommand(app *App, _ *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidated <old-config> <new-config>",
		Short: "Report whether a config change needs a fresh template",
		Long: `Compares two app configs. A change to any key that shapes the platform
template (name, version, modules, permissions...) means the template must be
regenerated; other changes only need a rebuild. Exits 2 when regeneration is
needed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := invalidate.CheckFiles(args[0], args[1])
			if err != nil {
				return handleError(cmd, app, err)
			}
			if !result.Regenerate {
				fmt.Fprintln(app.stdout, SuccessStyle.Render("template still valid"))
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("template invalidated:"), result)
			cmd.SilenceErrors = true
			return &ExitError{Code: 2}
		},
	}
}
