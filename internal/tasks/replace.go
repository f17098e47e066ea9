// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/pipeline"
)

// BackToParent is replaced with one "../" per directory level below the
// root handed to find_and_replace_in_dir, plus one.
const BackToParent = "%{back_to_parent}%"

// findAndReplace replaces kw find with kw replace in every file matching the
// positional glob patterns. Arguments arrive already rendered by the pipeline.
func findAndReplace(_ context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	if err := args.RequireKw(FindAndReplace, "find", "replace"); err != nil {
		return nil, err
	}
	find, replace := args.KwString("find", ""), args.KwString("replace", "")

	st.Log.Debug("replacing", "find", find, "replace", summarize(replace))
	for _, pattern := range args.Strings() {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			st.Log.Warn("no files were found to match pattern", "pattern", pattern)
		}
		for _, file := range matches {
			if err := replaceInFile(st, file, find, replace); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

// findAndReplaceInDir replaces kw find with kw replace in files under the
// directories matching the first positional argument, for files whose
// extension is listed in file_suffixes (default "html"). The back-to-parent
// marker in either string is resolved per directory depth.
func findAndReplaceInDir(_ context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	if err := args.RequireKw(FindAndReplaceInDir, "find", "replace"); err != nil {
		return nil, err
	}
	root := args.String(0)
	if root == "" {
		return nil, &pipeline.ConfigurationError{Task: FindAndReplaceInDir, Missing: "root_dir"}
	}
	find, replace := args.KwString("find", ""), args.KwString("replace", "")
	suffixes := args.KwStrings("file_suffixes")
	if len(suffixes) == 0 {
		suffixes = []string{"html"}
	}

	roots, err := doublestar.FilepathGlob(root)
	if err != nil {
		return nil, fmt.Errorf("invalid directory pattern %q: %w", root, err)
	}
	if len(roots) == 0 {
		st.Log.Warn("no files were found to match pattern", "pattern", root)
	}
	for _, found := range roots {
		for entry := range WalkWithDepth(found) {
			prefix := strings.Repeat("../", entry.Depth+1)
			f := strings.ReplaceAll(find, BackToParent, prefix)
			r := strings.ReplaceAll(replace, BackToParent, prefix)
			for _, name := range entry.Files {
				if !slices.Contains(suffixes, extension(name)) {
					continue
				}
				if err := replaceInFile(st, filepath.Join(entry.Dir, name), f, r); err != nil {
					return nil, err
				}
			}
		}
	}
	return nil, nil
}

func replaceInFile(st *build.State, path, find, replace string) error {
	st.Log.Debug("replacing in file", "file", path, "find", find)
	content, err := readText(path)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", path, err)
	}
	return writeText(path, strings.ReplaceAll(content, find, replace))
}

// extension returns the text after the last ".", or the whole name when
// there is none.
func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func summarize(s string) string {
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
