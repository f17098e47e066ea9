// SPDX-License-Identifier: MPL-2.0

package platforms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/internal/tasks"
	"github.com/workingBen/forge-demo/pkg/hostenv"
)

const (
	defaultWebPort  = 3000
	maxKillAttempts = 5
	herokuRemote    = "heroku"
)

var (
	// ErrWeb is the sentinel error wrapped by web task failures.
	ErrWeb = errors.New("web")

	deployedPattern = regexp.MustCompile(`(http://[^ ]+) deployed to Heroku`)
	remotePattern   = regexp.MustCompile(`git@heroku\.com:(.*?)\.git \(fetch\)`)
)

func webPort(st *build.State) int {
	if port := st.ToolConfig.GetInt("web.port"); port > 0 {
		return port
	}
	return defaultWebPort
}

func (t *Tasks) npm(ctx context.Context, dir string, showOutput bool, env []string, args ...string) error {
	argv := append([]string{hostenv.ScriptName(t.goos, "npm")}, args...)
	_, err := t.runner.Run(ctx, extproc.Command{Args: argv, Dir: dir, Env: env, ShowOutput: showOutput})
	var notFound *extproc.NotFoundError
	if errors.As(err, &notFound) {
		notFound.Hint = "do you have Node.js installed and on your path?"
	}
	return err
}

// killServer asks a running development server on port to exit.
func (t *Tasks) killServer(ctx context.Context, port int) error {
	url := "http://localhost:" + strconv.Itoa(port) + "/_forge/kill/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// runWeb installs dependencies and runs the Node development server,
// opening a browser once it has had time to start.
func (t *Tasks) runWeb(ctx context.Context, st *build.State, _ pipeline.Args) (*build.State, error) {
	port := webPort(st)
	dir := filepath.Join(st.OutputDir, "web")

	if err := t.npm(ctx, dir, false, nil, "install"); err != nil {
		return nil, err
	}

	for attempts := 0; !t.portAvailable(port); attempts++ {
		if attempts >= maxKillAttempts {
			return nil, fmt.Errorf("%w: port %d seems to be in use, set web.port to use a different one", ErrWeb, port)
		}
		st.Log.Info("port still in use, attempting to send a kill signal", "port", port)
		if err := t.killServer(ctx, port); err != nil {
			st.Log.Debug("kill request failed", "err", err)
		}
		if err := sleep(ctx, t.killSettleDelay); err != nil {
			return nil, err
		}
	}

	url := "http://localhost:" + strconv.Itoa(port) + "/"
	cancel := extproc.After(t.browserDelay, func() {
		st.Log.Info("attempting to open browser", "url", url)
		t.openURL(ctx, st, url)
	})
	defer cancel()

	env := []string{"PORT=" + strconv.Itoa(port), "FORGE_DEBUG=1"}
	return nil, t.npm(ctx, dir, true, env, "start")
}

// cleanWeb stops a development server left running by an interrupted run.
func (t *Tasks) cleanWeb(ctx context.Context, st *build.State, _ pipeline.Args) (*build.State, error) {
	if err := t.killServer(ctx, webPort(st)); err != nil {
		st.Log.Debug("no development server to stop", "err", err)
		return nil, nil
	}
	return nil, sleep(ctx, t.killSettleDelay)
}

// git runs a git command in dir and turns common failures into advice.
func (t *Tasks) git(ctx context.Context, dir string, showOutput bool, args ...string) (string, error) {
	out, err := t.runner.Run(ctx, extproc.Command{
		Args:       append([]string{"git"}, args...),
		Dir:        dir,
		ShowOutput: showOutput,
	})
	if err == nil {
		return out, nil
	}
	var notFound *extproc.NotFoundError
	if errors.As(err, &notFound) {
		notFound.Hint = "install git and make sure it is in your PATH"
		return "", notFound
	}
	var shellErr *extproc.ShellError
	if errors.As(err, &shellErr) {
		if strings.HasPrefix(shellErr.Output, "Permission denied (publickey)") {
			return "", fmt.Errorf("%w: failed to access remote git repo, you need to set up key based access", ErrWeb)
		}
		return "", fmt.Errorf("%w: problem running git %s: %w", ErrWeb, args[0], err)
	}
	return "", err
}

// packageWeb deploys the web build to Heroku by pushing a git mirror of it.
func (t *Tasks) packageWeb(ctx context.Context, st *build.State, _ pipeline.Args) (*build.State, error) {
	interactive := st.ToolConfig.GetBoolDefault("general.interactive", true)
	app := st.ToolConfig.GetString("web.profile.heroku_app_name")
	if app == "" {
		return nil, fmt.Errorf("%w: set web.profiles.%s.heroku_app_name in your local config to choose the Heroku app to push to",
			ErrWeb, st.ToolConfig.Profile())
	}

	development, err := filepath.Abs(filepath.Join(st.OutputDir, "web"))
	if err != nil {
		return nil, err
	}
	output, err := filepath.Abs(filepath.Join("release", "web", "heroku"))
	if err != nil {
		return nil, err
	}
	if err := t.prepareMirror(ctx, st, output); err != nil {
		return nil, err
	}
	if err := syncMirror(development, output); err != nil {
		return nil, err
	}

	st.Log.Debug("setting up git remote", "app", app)
	_, _ = t.runner.Run(ctx, extproc.Command{Args: []string{"git", "remote", "rm", herokuRemote}, Dir: output, FailSilently: true})
	if _, err := t.git(ctx, output, false, "remote", "add", herokuRemote, "git@heroku.com:"+app+".git"); err != nil {
		return nil, err
	}

	if _, err := t.git(ctx, output, false, "add", "."); err != nil {
		return nil, err
	}
	diff, err := t.git(ctx, output, false, "diff", "HEAD")
	if err != nil {
		return nil, err
	}
	switch {
	case strings.TrimSpace(diff) != "":
		if _, err := t.git(ctx, output, false, "commit", "-am", "forge package web"); err != nil {
			return nil, err
		}
	case interactive:
		st.Log.Warn("no app changes detected: did you forget to run forge generate?")
	default:
		st.Log.Warn("no app changes detected, pushing to heroku anyway")
	}

	st.Log.Info("deploying", "app", app+".herokuapp.com")
	if !interactive {
		st.Log.Warn("you may need to check the command line to enter an SSH key passphrase")
	}
	pushed, err := t.git(ctx, output, true, "push", herokuRemote, "--all", "--force")
	if err != nil {
		return nil, err
	}

	if url := t.deployedURL(ctx, output, pushed); url != "" {
		t.openURL(ctx, st, url)
		st.Log.Info("deployed", "url", url)
	}
	return nil, nil
}

// prepareMirror makes sure output is a git repository with one commit.
func (t *Tasks) prepareMirror(ctx context.Context, st *build.State, output string) error {
	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(output, ".git")); err == nil {
		return nil
	}
	st.Log.Debug("creating git repo", "dir", output)
	if _, err := t.git(ctx, output, false, "init"); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(output, ".forge.txt"), nil, 0o644); err != nil {
		return err
	}
	for _, args := range [][]string{{"add", "."}, {"commit", "-am", "first commit"}} {
		if _, err := t.git(ctx, output, false, args...); err != nil {
			return err
		}
	}
	return nil
}

// syncMirror replaces everything in output except .git with a copy of
// development.
func syncMirror(development, output string) error {
	entries, err := os.ReadDir(output)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(output, e.Name())); err != nil {
			return err
		}
	}
	return tasks.CopyTree(development, output, []string{".git/"})
}

// deployedURL finds the app address in push output, falling back to the
// configured remote when git reports nothing to push.
func (t *Tasks) deployedURL(ctx context.Context, dir, pushed string) string {
	if strings.HasPrefix(pushed, "Everything up-to-date") {
		remotes, err := t.git(ctx, dir, false, "remote", "-v")
		if err != nil {
			return ""
		}
		if m := remotePattern.FindStringSubmatch(remotes); m != nil {
			return "http://" + m[1] + ".herokuapp.com"
		}
		return ""
	}
	if m := deployedPattern.FindStringSubmatch(pushed); m != nil {
		return m[1]
	}
	return ""
}
