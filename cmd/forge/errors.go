// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/goals"
	"github.com/workingBen/forge-demo/internal/issue"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/internal/platforms"
	"github.com/workingBen/forge-demo/internal/template"
)

// handleError renders err with its issue page and converts it to an
// ExitError so fang does not print it a second time.
func handleError(cmd *cobra.Command, app *App, err error) error {
	if err == nil {
		return nil
	}
	renderError(app.stderr, err, app.verbose)
	cmd.SilenceErrors = true
	return &ExitError{Code: 1, Err: err}
}

// classifyError maps a failure to the issue catalog. Zero means no page.
func classifyError(err error) issue.Id {
	var (
		ae           *issue.ActionableError
		construction *pipeline.ConstructionError
	)
	switch {
	case errors.Is(err, goals.ErrPlatformCount):
		return issue.PlatformCountId
	case errors.Is(err, goals.ErrUnknownGoal):
		return issue.UnknownGoalId
	case errors.As(err, &construction):
		return issue.PipelineInvalidId
	case errors.Is(err, template.ErrUndefined), errors.Is(err, template.ErrSyntax), errors.Is(err, template.ErrEvaluation):
		return issue.TemplateRenderFailedId
	case errors.Is(err, platforms.ErrNoDevices):
		return issue.AndroidDeviceNotFoundId
	case errors.Is(err, extproc.ErrToolNotFound):
		return issue.ToolNotFoundId
	case errors.Is(err, extproc.ErrShellFailed):
		return issue.CommandFailedId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	case errors.As(err, &ae) && ae.Operation == "load app config":
		if errors.Is(err, fs.ErrNotExist) {
			return issue.AppConfigNotFoundId
		}
		return issue.AppConfigParseErrorId
	case errors.As(err, &ae) && ae.Operation == "load local configuration":
		return issue.LocalConfigInvalidId
	}
	return 0
}

// formatErrorForDisplay uses ActionableError formatting when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

func renderError(w io.Writer, err error, verbose bool) {
	fmt.Fprintf(w, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	page := issue.Get(classifyError(err))
	if page == nil {
		return
	}
	rendered, renderErr := page.Render("dark")
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}
