// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/pipeline"
)

func copyFiles(_ context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	if err := args.RequireKw(CopyFiles, "from", "to"); err != nil {
		return nil, err
	}
	from, to := args.KwString("from", ""), args.KwString("to", "")
	ignore := newIgnorer(args.KwStrings("ignore_patterns"))

	targets, err := copyTargets(to)
	if err != nil {
		return nil, err
	}
	for _, target := range targets {
		st.Log.Debug("copying", "from", from, "to", target)
		if err := copyPath(from, target, ignore); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func renameFiles(_ context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	if err := args.RequireKw(RenameFiles, "from", "to"); err != nil {
		return nil, err
	}
	from, to := args.KwString("from", ""), args.KwString("to", "")
	st.Log.Debug("renaming", "from", from, "to", to)
	if err := os.Rename(from, to); err != nil {
		return nil, fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	return nil, nil
}

// CopyTree copies the file or directory from to to, skipping entries matched
// by the gitignore-style ignorePatterns.
func CopyTree(from, to string, ignorePatterns []string) error {
	return copyPath(from, to, newIgnorer(ignorePatterns))
}

// copyTargets expands a destination containing "*". The last path element
// may not exist yet, so only its parent directory is globbed.
func copyTargets(to string) ([]string, error) {
	if !strings.Contains(to, "*") {
		return []string{to}, nil
	}
	parents, err := doublestar.FilepathGlob(filepath.Dir(to))
	if err != nil {
		return nil, fmt.Errorf("invalid destination pattern %q: %w", to, err)
	}
	targets := make([]string, len(parents))
	for i, parent := range parents {
		targets[i] = filepath.Join(parent, filepath.Base(to))
	}
	return targets, nil
}

func copyPath(from, to string, ignore *ignorer) error {
	info, err := os.Stat(from)
	if err != nil {
		return fmt.Errorf("copy %s: %w", from, err)
	}
	if !info.IsDir() {
		if dst, err := os.Stat(to); err == nil && dst.IsDir() {
			to = filepath.Join(to, filepath.Base(from))
		}
		return copyFile(from, to, info.Mode())
	}

	return filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		if rel != "." && ignore.ignored(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dst := filepath.Join(to, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, dst, fi.Mode())
	})
}

func copyFile(from, to string, mode fs.FileMode) error {
	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("copy %s: %w", from, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("copy %s: %w", from, err)
	}
	dst, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("copy %s: %w", from, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy %s to %s: %w", from, to, err)
	}
	return dst.Close()
}

// ignorer applies gitignore-style patterns while copying a directory.
//
// Patterns containing a "/" before their last character are matched against
// the path relative to the copied root; all others are matched against the
// entry name alone. A trailing "/" restricts a name pattern to directories.
type ignorer struct {
	pathPatterns []string
	namePatterns []string
}

func newIgnorer(patterns []string) *ignorer {
	ig := &ignorer{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.Contains(p[:len(p)-1], "/") {
			ig.pathPatterns = append(ig.pathPatterns, strings.TrimSuffix(filepath.ToSlash(filepath.Clean(p)), "/"))
			continue
		}
		ig.namePatterns = append(ig.namePatterns, p)
	}
	return ig
}

func (ig *ignorer) ignored(rel string, isDir bool) bool {
	if ig == nil {
		return false
	}
	slashed := filepath.ToSlash(rel)
	for _, p := range ig.pathPatterns {
		if ok, _ := doublestar.Match(p, slashed); ok {
			return true
		}
	}
	name := filepath.Base(rel)
	for _, p := range ig.namePatterns {
		if strings.HasSuffix(p, "/") || strings.HasSuffix(p, `\`) {
			if !isDir {
				continue
			}
			p = p[:len(p)-1]
		}
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
