// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"iter"
	"os"
	"path/filepath"
)

// WalkEntry is one directory visited by WalkWithDepth.
type WalkEntry struct {
	// Dir is the directory path, starting with the walk root.
	Dir string
	// Subdirs are the names of the directories in Dir.
	Subdirs []string
	// Files are the names of the non-directory entries in Dir.
	Files []string
	// Depth is 0 for the root and increases by one per level.
	Depth int
}

// WalkWithDepth yields every directory under root, parents before children.
// Symlinked directories are listed in Subdirs but not descended into.
// Unreadable directories are skipped. The sequence is finite and computed
// lazily; stopping early stops the walk.
func WalkWithDepth(root string) iter.Seq[WalkEntry] {
	return func(yield func(WalkEntry) bool) {
		walkDir(root, 0, yield)
	}
}

func walkDir(dir string, depth int, yield func(WalkEntry) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return true
	}

	entry := WalkEntry{Dir: dir, Depth: depth}
	for _, e := range entries {
		if isDir(dir, e) {
			entry.Subdirs = append(entry.Subdirs, e.Name())
		} else {
			entry.Files = append(entry.Files, e.Name())
		}
	}
	if !yield(entry) {
		return false
	}

	for _, name := range entry.Subdirs {
		path := filepath.Join(dir, name)
		if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if !walkDir(path, depth+1, yield) {
			return false
		}
	}
	return true
}

// isDir follows symlinks, matching how entries are classified for listing.
func isDir(dir string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}
