// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the forge CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// rootFlagValues holds the persistent flags shared by every goal.
type rootFlagValues struct {
	verbose      bool
	platforms    string
	appConfig    string
	localConfig  string
	outputDir    string
	server       bool
	templateOnly bool
}

func newRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}
	root := &cobra.Command{
		Use:   "forge",
		Short: "Build one web app for many platforms",
		Long: TitleStyle.Render("forge") + SubtitleStyle.Render(" - multi-platform app builder") + `

forge turns an app written in HTML, CSS and JavaScript into Android, iOS,
browser extension, desktop installer and web builds. Each goal runs an
ordered list of steps gated by platform and build conditions.

` + SubtitleStyle.Render("Examples:") + `
  forge generate --platforms android,ios   Prepare platform builds
  forge run --platforms android            Install and launch on a device
  forge package --platforms web            Deploy the web build
  forge steps generate                     List the steps a goal runs`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVarP(&flags.platforms, "platforms", "p", "all", "comma-separated target platforms")
	pf.StringVar(&flags.appConfig, "app-config", defaultAppConfig, "app config file (JSON, YAML or CUE)")
	pf.StringVar(&flags.localConfig, "local-config", "", "local_config file (default: app dir, then user config dir)")
	pf.StringVar(&flags.outputDir, "output-dir", "", "directory builds and packages are written to")
	pf.BoolVar(&flags.server, "server", false, "use server-side template locations")
	pf.BoolVar(&flags.templateOnly, "template-only", false, "build the template without user code")

	for _, c := range newGoalCommands(app, flags) {
		root.AddCommand(c)
	}
	root.AddCommand(
		newStepsCommand(app, flags),
		newInvalidatedCommand(app, flags),
		newWatchCommand(app, flags),
	)
	return root
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Execute runs the forge CLI and exits with the command's status.
func Execute() {
	app := NewApp(os.Stdout, os.Stderr)
	if err := execute(context.Background(), app, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func execute(ctx context.Context, app *App, args []string) error {
	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	return fang.Execute(ctx, root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
}
