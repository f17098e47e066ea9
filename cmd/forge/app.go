// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/config"
	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/invalidate"
	"github.com/workingBen/forge-demo/internal/issue"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/internal/platforms"
	"github.com/workingBen/forge-demo/internal/predicates"
	"github.com/workingBen/forge-demo/internal/tasks"
	"github.com/workingBen/forge-demo/pkg/configtree"
)

const defaultAppConfig = "src/config.json"

// App holds the collaborators shared by every command.
type App struct {
	stdout     io.Writer
	stderr     io.Writer
	provider   config.Provider
	httpClient *http.Client
	// runner overrides the shell runner built for each state.
	runner  extproc.Runner
	verbose bool
}

// NewApp creates an App writing to stdout and stderr.
func NewApp(stdout, stderr io.Writer) *App {
	return &App{
		stdout:     stdout,
		stderr:     stderr,
		provider:   config.NewProvider(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// newState loads both configs and builds the initial build state.
func (a *App) newState(ctx context.Context, flags *rootFlagValues) (*build.State, error) {
	a.verbose = flags.verbose
	logger := build.NewLogger(a.stderr, flags.verbose)

	enabled, err := parsePlatforms(flags.platforms)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse platforms").
			WithResource(flags.platforms).
			WithSuggestion("Use a comma-separated list such as android,ios,web").
			Wrap(err).
			BuildError()
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	// Template-only builds still need the app name and icons; only user
	// source is left out, through the include_user predicate.
	appConfig, err := configtree.Load(flags.appConfig)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load app config").
			WithResource(flags.appConfig).
			Wrap(err).
			BuildError()
	}

	toolConfig, err := a.provider.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.localConfig,
		AppDir:         wd,
	})
	if err != nil {
		return nil, err
	}

	outputDir := flags.outputDir
	if outputDir == "" {
		outputDir = toolConfig.GetString("general.output_dir")
	}

	return build.NewState(appConfig, enabled,
		build.WithToolConfig(toolConfig),
		build.WithLogger(logger),
		build.WithWorkDir(wd),
		build.WithOutputDir(outputDir),
		build.WithServer(flags.server),
		build.WithTemplateOnly(flags.templateOnly),
		build.WithIgnorePatterns(toolConfig.GetStringSlice("general.ignore_patterns")),
	), nil
}

// newRegistry registers every predicate and task against collaborators
// bound to st's logger.
func (a *App) newRegistry(st *build.State) (*pipeline.Registry, error) {
	runner := a.runner
	if runner == nil {
		runner = extproc.NewShellRunner(st.Log)
	}

	reg := pipeline.NewRegistry()
	if err := predicates.Register(reg); err != nil {
		return nil, err
	}
	if err := tasks.Register(reg, tasks.Options{
		Runner:       runner,
		HTTPClient:   a.httpClient,
		ToolsVersion: Version,
	}); err != nil {
		return nil, err
	}
	if err := platforms.Register(reg, platforms.Options{
		Runner:     runner,
		HTTPClient: a.httpClient,
	}); err != nil {
		return nil, err
	}
	if err := invalidate.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// parsePlatforms accepts "all" as every supported platform.
func parsePlatforms(list string) (build.PlatformSet, error) {
	if list == "" || list == "all" {
		return build.NewPlatformSet(build.AllPlatforms()...), nil
	}
	return build.ParsePlatforms(list)
}

// sourceDir is the directory holding user code for the app config in use.
func sourceDir(appConfig string) string {
	return filepath.Dir(appConfig)
}
