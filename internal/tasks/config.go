// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/pkg/configtree"
)

// userSourcePrefix is where user code lives relative to the app root.
const userSourcePrefix = "src"

// activationWrapper keeps activation scripts from running inside frames
// unless the activation opts in with all_frames.
const (
	activationPrologue = "if (forge._disableFrames === undefined || window.location == window.parent.location) {\n"
	activationEpilogue = "\n}"
)

// ErrNoName is returned when a name task runs against a config without one.
var ErrNoName = errors.New("config has no name")

// resolveURLs prefixes relative URLs found at each positional path
// expression with the user source directory.
func resolveURLs(_ context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	config := st.Config
	for _, location := range args.Strings() {
		path, err := configtree.ParsePath(location)
		if err != nil {
			return nil, err
		}
		config = configtree.TransformPath(config, path, func(v any) any {
			if url, ok := v.(string); ok {
				return ResolveURL(url, userSourcePrefix)
			}
			return v
		})
	}
	return st.WithConfig(config), nil
}

// ResolveURL prefixes url with prefix unless it is absolute (http or https)
// or already starts with prefix.
func ResolveURL(url, prefix string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") || strings.HasPrefix(url, prefix) {
		return url
	}
	if strings.HasPrefix(url, "/") {
		return prefix + url
	}
	return prefix + "/" + url
}

// wrapActivations wraps the scripts of every activation that does not run in
// all frames. The first positional argument is the directory user source was
// copied to.
func wrapActivations(_ context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	location := args.String(0)
	activations, _ := st.Config["activations"].([]any)
	for _, a := range activations {
		activation, ok := a.(configtree.Map)
		if !ok {
			continue
		}
		if allFrames, _ := activation["all_frames"].(bool); allFrames {
			continue
		}
		scripts, _ := activation["scripts"].([]any)
		for _, s := range scripts {
			script, ok := s.(string)
			if !ok {
				continue
			}
			filename := location + strings.TrimPrefix(script, userSourcePrefix)
			st.Log.Debug("wrapping activation", "file", filename)
			content, err := readText(filename)
			if err != nil {
				return nil, fmt.Errorf("wrap activation %s: %w", filename, err)
			}
			if err := writeText(filename, activationPrologue+content+activationEpilogue); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

// populateIcons copies size-keyed icons from the top of the icons map into
// the platform's own map unless the platform already defines them.
func populateIcons(_ context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	icons, ok := st.Config["icons"].(configtree.Map)
	if !ok {
		return nil, nil
	}
	platform := args.String(0)
	perPlatform, ok := icons[platform].(configtree.Map)
	if !ok {
		perPlatform = configtree.Map{}
		icons[platform] = perPlatform
	}
	for _, size := range args.List(1) {
		if _, exists := perPlatform[size]; exists {
			continue
		}
		if icon, found := icons[size]; found {
			perPlatform[size] = icon
			continue
		}
		st.Log.Warn("missing icon", "size", size, "platform", platform)
	}
	return nil, nil
}

func populateXMLSafeName(_ context.Context, st *build.State, _ pipeline.Args) (*build.State, error) {
	name, err := appName(st)
	if err != nil {
		return nil, err
	}
	st.Config["xml_safe_name"] = strings.NewReplacer(`"`, `\"`, `'`, `\'`).Replace(name)
	return nil, nil
}

func populateJSONSafeName(_ context.Context, st *build.State, _ pipeline.Args) (*build.State, error) {
	name, err := appName(st)
	if err != nil {
		return nil, err
	}
	st.Config["json_safe_name"] = strings.ReplaceAll(name, `"`, `\"`)
	return nil, nil
}

func appName(st *build.State) (string, error) {
	name, ok := st.Config["name"].(string)
	if !ok {
		return "", ErrNoName
	}
	return name, nil
}
