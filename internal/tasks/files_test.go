// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/internal/testutil"
	"github.com/workingBen/forge-demo/pkg/configtree"
)

func newTestState(config configtree.Map) *build.State {
	if config == nil {
		config = configtree.Map{}
	}
	return build.NewState(config, build.NewPlatformSet(build.Web))
}

func kwargs(kv map[string]any, positional ...any) pipeline.Args {
	return pipeline.Args{Positional: positional, Keyword: kv}
}

func TestCopyFiles_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	testutil.MustWriteFile(t, filepath.Join(src, "index.html"), "<html>")
	testutil.MustWriteFile(t, filepath.Join(src, "js", "app.js"), "app")
	testutil.MustWriteFile(t, filepath.Join(src, "js", "app.js.map"), "map")
	testutil.MustWriteFile(t, filepath.Join(src, "node_modules", "dep", "index.js"), "dep")
	testutil.MustWriteFile(t, filepath.Join(src, "vendor", "lib.js"), "lib")
	testutil.MustWriteFile(t, filepath.Join(src, "docs", "vendor", "readme"), "docs")

	dst := filepath.Join(dir, "out")
	args := kwargs(map[string]any{
		"from":            src,
		"to":              dst,
		"ignore_patterns": []any{"*.map", "node_modules/", "./vendor"},
	})
	if _, err := copyFiles(context.Background(), newTestState(nil), args); err != nil {
		t.Fatalf("copyFiles() error = %v", err)
	}

	want := map[string]bool{
		"index.html":         true,
		"js/app.js":          true,
		"js/app.js.map":      false,
		"node_modules":       false,
		"vendor/lib.js":      false,
		"docs/vendor/readme": true,
	}
	for rel, exists := range want {
		_, err := os.Stat(filepath.Join(dst, filepath.FromSlash(rel)))
		if got := err == nil; got != exists {
			t.Errorf("%s exists = %v, want %v", rel, got, exists)
		}
	}
}

func TestCopyFiles_GlobDestination(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "all.js"), "forge")
	for _, name := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(dir, "dev", name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	args := kwargs(map[string]any{
		"from": filepath.Join(dir, "all.js"),
		"to":   filepath.Join(dir, "dev", "*", "forge.js"),
	})
	if _, err := copyFiles(context.Background(), newTestState(nil), args); err != nil {
		t.Fatalf("copyFiles() error = %v", err)
	}
	for _, name := range []string{"a", "b"} {
		if got := testutil.MustReadFile(t, filepath.Join(dir, "dev", name, "forge.js")); got != "forge" {
			t.Errorf("dev/%s/forge.js = %q, want %q", name, got, "forge")
		}
	}
}

func TestCopyFiles_MissingKeyword(t *testing.T) {
	t.Parallel()

	_, err := copyFiles(context.Background(), newTestState(nil), kwargs(map[string]any{"from": "x"}))
	var cfgErr *pipeline.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("copyFiles() error = %v, want *ConfigurationError", err)
	}
	if cfgErr.Missing != "to" {
		t.Errorf("Missing = %q, want %q", cfgErr.Missing, "to")
	}
}

func TestRenameFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	from, to := filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")
	testutil.MustWriteFile(t, from, "x")

	args := kwargs(map[string]any{"from": from, "to": to})
	if _, err := renameFiles(context.Background(), newTestState(nil), args); err != nil {
		t.Fatalf("renameFiles() error = %v", err)
	}
	if _, err := os.Stat(from); !os.IsNotExist(err) {
		t.Errorf("source still exists: %v", err)
	}
	if got := testutil.MustReadFile(t, to); got != "x" {
		t.Errorf("renamed content = %q, want %q", got, "x")
	}
}

func TestWalkWithDepth(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "index.html"), "")
	testutil.MustWriteFile(t, filepath.Join(root, "a", "a.html"), "")
	testutil.MustWriteFile(t, filepath.Join(root, "a", "b", "b.html"), "")

	depths := map[string]int{}
	var order []string
	for entry := range WalkWithDepth(root) {
		rel, err := filepath.Rel(root, entry.Dir)
		if err != nil {
			t.Fatal(err)
		}
		rel = filepath.ToSlash(rel)
		depths[rel] = entry.Depth
		order = append(order, rel)
	}

	want := map[string]int{".": 0, "a": 1, "a/b": 2}
	for dir, depth := range want {
		if got, ok := depths[dir]; !ok || got != depth {
			t.Errorf("depth of %s = %d (seen %v), want %d", dir, got, ok, depth)
		}
	}
	if !slices.Equal(order, []string{".", "a", "a/b"}) {
		t.Errorf("walk order = %v, want parents first", order)
	}
}

func TestWalkWithDepth_StopsEarly(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "a", "b", "c", "f"), "")

	count := 0
	for range WalkWithDepth(root) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("visited %d entries, want 2", count)
	}
}

func TestWalkWithDepth_MissingRoot(t *testing.T) {
	t.Parallel()

	for entry := range WalkWithDepth(filepath.Join(t.TempDir(), "missing")) {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestReadText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"utf8", []byte("caf\xc3\xa9"), "café"},
		{"utf8 bom", []byte("\xef\xbb\xbfhello"), "hello"},
		{"latin1", []byte("caf\xe9"), "café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := readText(path)
			if err != nil {
				t.Fatalf("readText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("readText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteText_KeepsMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.sh")
	if err := os.WriteFile(path, []byte("old"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := writeText(path, "new"); err != nil {
		t.Fatalf("writeText() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want no leftover temp files", len(entries))
	}
}
