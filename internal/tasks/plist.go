// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"howett.net/plist"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/pipeline"
)

// setInPlist sets kw key to kw value in every property list matching the
// first positional glob. The file keeps its original format (XML or binary).
func setInPlist(_ context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	if err := args.RequireKw(SetInPlist, "key", "value"); err != nil {
		return nil, err
	}
	pattern := args.String(0)
	key, value := args.KwString("key", ""), args.KwString("value", "")
	st.Log.Debug("setting plist value", "key", key, "value", value, "files", pattern)

	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		st.Log.Warn("no files were found to match pattern", "pattern", pattern)
	}
	for _, file := range files {
		if err := setPlistValue(file, key, value); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func setPlistValue(file, key, value string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read plist: %w", err)
	}
	var doc map[string]any
	format, err := plist.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("parse plist %s: %w", file, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	doc[key] = value

	out, err := plist.MarshalIndent(doc, format, "\t")
	if err != nil {
		return fmt.Errorf("encode plist %s: %w", file, err)
	}
	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	return os.WriteFile(file, out, info.Mode().Perm())
}
