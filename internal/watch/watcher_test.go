// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

type runResult struct {
	cancel context.CancelFunc
	errCh  chan error
}

func startWatcher(t *testing.T, cfg Config) *runResult {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &runResult{cancel: cancel, errCh: make(chan error, 1)}
	go func() { r.errCh <- w.Run(ctx) }()
	t.Cleanup(cancel)
	return r
}

func (r *runResult) stop(t *testing.T) {
	t.Helper()
	r.cancel()
	select {
	case err := <-r.errCh:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherCoalescesChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var (
		mu    sync.Mutex
		calls int
		seen  []string
	)
	done := make(chan struct{}, 1)

	r := startWatcher(t, Config{
		Root:     root,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			seen = append(seen, changed...)
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})

	for _, name := range []string{"index.html", "js/app.js", "config.json"} {
		write(t, filepath.Join(root, name))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
	}
	time.Sleep(200 * time.Millisecond)
	r.stop(t)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	for _, want := range []string{"index.html", "config.json"} {
		if !slices.Contains(seen, want) {
			t.Errorf("changed = %v, missing %s", seen, want)
		}
	}
}

func TestWatcherIgnores(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fired := make(chan []string, 10)

	r := startWatcher(t, Config{
		Root:     root,
		Ignore:   []string{"**/*.log"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})

	write(t, filepath.Join(root, "debug.log"))
	write(t, filepath.Join(root, "page.html.swp"))
	time.Sleep(200 * time.Millisecond)
	write(t, filepath.Join(root, "index.html"))

	select {
	case changed := <-fired:
		if slices.Contains(changed, "debug.log") || slices.Contains(changed, "page.html.swp") {
			t.Errorf("ignored file in %v", changed)
		}
		if !slices.Contains(changed, "index.html") {
			t.Errorf("changed = %v, want index.html", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
	}
	r.stop(t)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fired := make(chan []string, 10)

	r := startWatcher(t, Config{
		Root:     root,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})

	if err := os.Mkdir(filepath.Join(root, "img"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	write(t, filepath.Join(root, "img", "icon.png"))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-fired:
			if slices.Contains(changed, "img/icon.png") {
				r.stop(t)
				return
			}
		case <-deadline:
			t.Fatal("change inside new directory not seen")
		}
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: defaultIgnores}
	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{"node_modules/lib/index.js", true},
		{"js/app.js.swp", true},
		{"backup~", true},
		{"img/.DS_Store", true},
		{"index.html", false},
		{"js/app.js", false},
		{".gitignore", false},
	}
	for _, tt := range tests {
		if got := w.ignored(tt.path); got != tt.ignored {
			t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.ignored)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Error("New() with empty root succeeded")
	}
	if _, err := New(Config{Root: t.TempDir(), Ignore: []string{"[unclosed"}}); err == nil {
		t.Error("New() with invalid pattern succeeded")
	}
}

func TestRunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("first Run() error = %v", err)
	}
}
