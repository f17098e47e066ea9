// SPDX-License-Identifier: MPL-2.0

// Package invalidate decides whether a change to the app config requires the
// generated platform templates to be rebuilt.
package invalidate

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/pkg/configtree"
)

// TaskName is the name check_config_changes is registered under.
const TaskName = "check_config_changes"

// AllowList holds the top-level config keys that are baked into generated
// templates. Changes to any other key never force regeneration.
var AllowList = []string{
	"activations",
	"author",
	"background_files",
	"browser_action",
	"description",
	"homepage",
	"libs",
	"logging",
	"modules",
	"orientations",
	"package_names",
	"parameters",
	"partners",
	"permissions",
	"platform_version",
	"update_url",
	"version",
}

// Result is the outcome of comparing two config snapshots.
type Result struct {
	// Regenerate reports whether templates must be rebuilt.
	Regenerate bool
	// Key is the first allow-listed key found to differ.
	Key string
}

func (r Result) String() string {
	if !r.Regenerate {
		return "no regeneration needed"
	}
	return fmt.Sprintf("regeneration needed: %q changed", r.Key)
}

// Check compares previous and current over AllowList. A key absent from one snapshot
// is treated as null, so absent and an explicit null compare equal. Identical
// snapshots need no special case: no key differs.
func Check(previous, current configtree.Map) Result {
	for _, key := range AllowList {
		if !reflect.DeepEqual(previous[key], current[key]) {
			return Result{Regenerate: true, Key: key}
		}
	}
	return Result{}
}

// CheckFiles reads two JSON config files and compares them with Check.
func CheckFiles(oldPath, newPath string) (Result, error) {
	previous, err := readJSON(oldPath)
	if err != nil {
		return Result{}, err
	}
	current, err := readJSON(newPath)
	if err != nil {
		return Result{}, err
	}
	return Check(previous, current), nil
}

func readJSON(path string) (configtree.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return configtree.DecodeJSON(data, path)
}

// Register adds check_config_changes to reg. The task takes the old and new
// config file paths and logs whether regeneration is needed.
func Register(reg *pipeline.Registry) error {
	return reg.RegisterTask(TaskName, checkConfigChanges)
}

func checkConfigChanges(_ context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	if args.Len() < 2 {
		return nil, &pipeline.ConfigurationError{Task: TaskName, Missing: "new_config"}
	}
	result, err := CheckFiles(args.String(0), args.String(1))
	if err != nil {
		return nil, err
	}
	if result.Regenerate {
		st.Log.Info("configuration changed", "key", result.Key)
	} else {
		st.Log.Debug("configuration has not changed")
	}
	return nil, nil
}
