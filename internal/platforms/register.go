// SPDX-License-Identifier: MPL-2.0

package platforms

import (
	"context"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/pkg/hostenv"
)

// Task names.
const (
	RunAndroid     = "run_android"
	PackageAndroid = "package_android"
	CleanAndroid   = "clean_android"
	RunIOS         = "run_ios"
	PackageIOS     = "package_ios"
	RunFirefox     = "run_firefox"
	CleanFirefox   = "clean_firefox"
	RunWeb         = "run_web"
	PackageWeb     = "package_web"
	CleanWeb       = "clean_web"
	PackageIE      = "package_ie"
)

const (
	adbTimeout      = 10 * time.Second
	devicePollDelay = 2 * time.Second
	browserDelay    = 3 * time.Second
	killSettleDelay = time.Second
)

type (
	// Options carries the collaborators platform tasks need.
	Options struct {
		// Runner executes external tools. Required.
		Runner extproc.Runner
		// HTTPClient talks to the local web development server. Defaults to a
		// client with a short timeout.
		HTTPClient *http.Client
	}

	// Tasks holds the platform task implementations and their tunables.
	// Fields are unexported so tests in this package can shorten delays.
	Tasks struct {
		runner extproc.Runner
		client *http.Client
		goos   string
		now    func() time.Time

		adbTimeout      time.Duration
		devicePollDelay time.Duration
		browserDelay    time.Duration
		killSettleDelay time.Duration

		sdkCandidates []string
		portAvailable func(port int) bool
	}
)

// New creates the platform tasks for opts.
func New(opts Options) *Tasks {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Tasks{
		runner:          opts.Runner,
		client:          client,
		goos:            runtime.GOOS,
		now:             time.Now,
		adbTimeout:      adbTimeout,
		devicePollDelay: devicePollDelay,
		browserDelay:    browserDelay,
		killSettleDelay: killSettleDelay,
		sdkCandidates:   defaultSDKCandidates(),
		portAvailable:   portAvailable,
	}
}

// Register adds every platform task to reg.
func Register(reg *pipeline.Registry, opts Options) error {
	return New(opts).Register(reg)
}

// Register adds the tasks in t to reg.
func (t *Tasks) Register(reg *pipeline.Registry) error {
	tasks := []struct {
		name string
		fn   pipeline.Task
	}{
		{RunAndroid, t.runAndroid},
		{PackageAndroid, t.packageAndroid},
		{CleanAndroid, noop},
		{RunIOS, t.delegate("ios", "run")},
		{PackageIOS, t.delegate("ios", "package")},
		{RunFirefox, t.delegate("firefox", "run")},
		{CleanFirefox, t.delegate("firefox", "clean")},
		{RunWeb, t.runWeb},
		{PackageWeb, t.packageWeb},
		{CleanWeb, t.cleanWeb},
		{PackageIE, t.packageIE},
	}
	for _, task := range tasks {
		if err := reg.RegisterTask(task.name, task.fn); err != nil {
			return err
		}
	}
	return nil
}

func noop(context.Context, *build.State, pipeline.Args) (*build.State, error) {
	return nil, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// portAvailable reports whether port can be bound on the loopback interface.
func portAvailable(port int) bool {
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = l.Close()
	return true
}

// openURL opens url in the default browser, ignoring failures.
func (t *Tasks) openURL(ctx context.Context, st *build.State, url string) {
	argv := hostenv.OpenCommand(t.goos, url)
	if argv == nil {
		st.Log.Info("open this address in your browser", "url", url)
		return
	}
	if _, err := t.runner.Run(ctx, extproc.Command{Args: argv, FailSilently: true}); err != nil {
		st.Log.Debug("could not open browser", "url", url, "err", err)
	}
}
