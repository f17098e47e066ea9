// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"net/http"
	"time"

	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/pipeline"
)

// Task names.
const (
	CopyFiles              = "copy_files"
	RenameFiles            = "rename_files"
	FindAndReplace         = "find_and_replace"
	FindAndReplaceInDir    = "find_and_replace_in_dir"
	SetInPlist             = "set_in_plist"
	ResolveURLs            = "resolve_urls"
	WrapActivations        = "wrap_activations"
	PopulateIcons          = "populate_icons"
	PopulateXMLSafeName    = "populate_xml_safe_name"
	PopulateJSONSafeName   = "populate_json_safe_name"
	LintJavaScript         = "lint_javascript"
	CheckLocalConfigSchema = "check_local_config_schema"
	TrackBuild             = "track_build"
)

// Options carries the collaborators tasks need.
type Options struct {
	// Runner executes external commands (the JavaScript linter).
	Runner extproc.Runner
	// HTTPClient sends tracking requests. Defaults to a client with a short
	// timeout.
	HTTPClient *http.Client
	// ToolsVersion is reported by track_build.
	ToolsVersion string
}

// Register adds every generic task to reg.
func Register(reg *pipeline.Registry, opts Options) error {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	tasks := []struct {
		name     string
		fn       pipeline.Task
		required []string
	}{
		{CopyFiles, copyFiles, []string{"from", "to"}},
		{RenameFiles, renameFiles, []string{"from", "to"}},
		{FindAndReplace, findAndReplace, []string{"find", "replace"}},
		{FindAndReplaceInDir, findAndReplaceInDir, []string{"find", "replace"}},
		{SetInPlist, setInPlist, []string{"key", "value"}},
		{ResolveURLs, resolveURLs, nil},
		{WrapActivations, wrapActivations, nil},
		{PopulateIcons, populateIcons, nil},
		{PopulateXMLSafeName, populateXMLSafeName, nil},
		{PopulateJSONSafeName, populateJSONSafeName, nil},
		{LintJavaScript, lintJavaScript(opts.Runner), nil},
		{CheckLocalConfigSchema, checkLocalConfigSchema, nil},
		{TrackBuild, trackBuild(opts.HTTPClient, opts.ToolsVersion), nil},
	}
	for _, t := range tasks {
		if err := reg.RegisterTask(t.name, t.fn, pipeline.RequiredKwargs(t.required...)); err != nil {
			return err
		}
	}
	return nil
}
