// SPDX-License-Identifier: MPL-2.0

package platforms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/extproc"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/pkg/configtree"
	"github.com/workingBen/forge-demo/pkg/hostenv"
)

// maxDevicePolls is how many extra times adb is asked for devices before
// giving up.
const maxDevicePolls = 3

var (
	// ErrAndroid is the sentinel error wrapped by Android task failures.
	ErrAndroid = errors.New("android")

	// ErrNoDevices is returned when adb lists no attached device.
	ErrNoDevices = errors.New("no Android devices found")

	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// sdkPaths locates the tools inside an Android SDK.
type sdkPaths struct {
	sdk      string
	adb      string
	aapt     string
	zipalign string
}

func newSDKPaths(goos, sdk string) sdkPaths {
	return sdkPaths{
		sdk:      sdk,
		adb:      filepath.Join(sdk, "platform-tools", hostenv.ExecutableName(goos, "adb")),
		aapt:     filepath.Join(sdk, "platform-tools", hostenv.ExecutableName(goos, "aapt")),
		zipalign: filepath.Join(sdk, "tools", hostenv.ExecutableName(goos, "zipalign")),
	}
}

func defaultSDKCandidates() []string {
	candidates := []string{
		"C:/Program Files (x86)/Android/android-sdk/",
		"C:/Program Files/Android/android-sdk/",
		"C:/Android/android-sdk/",
		"C:/Android/android-sdk-windows/",
		"C:/android-sdk-windows/",
		"/Applications/android-sdk-macosx",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".forge", "android-sdk-linux"))
	}
	if env := os.Getenv("ANDROID_HOME"); env != "" {
		candidates = append([]string{env}, candidates...)
	}
	return candidates
}

// locateSDK returns the first existing SDK directory, trying configured
// (relative to the original working directory) before the usual locations.
func (t *Tasks) locateSDK(st *build.State, configured string) (sdkPaths, error) {
	candidates := t.sdkCandidates
	if configured != "" {
		if !filepath.IsAbs(configured) {
			configured = filepath.Join(st.OrigWD, configured)
		}
		candidates = append([]string{filepath.Clean(configured)}, candidates...)
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return newSDKPaths(t.goos, dir), nil
		}
	}
	return sdkPaths{}, &extproc.NotFoundError{
		Tool: "Android SDK",
		Hint: "install the SDK and set android.sdk in your local config",
	}
}

// adb runs an adb command with the bounded-wait recovery: if adb does not
// answer within timeout the daemon is killed and restarted, then the command
// is awaited regardless.
func (t *Tasks) adb(ctx context.Context, st *build.State, paths sdkPaths, timeout time.Duration, args ...string) (string, error) {
	argv := append([]string{paths.adb}, args...)
	out, recovered, err := extproc.BoundedWait(ctx, timeout,
		func(ctx context.Context) (string, error) {
			return t.runner.Run(ctx, extproc.Command{Args: argv})
		},
		func() {
			st.Log.Debug("adb hung, restarting it")
			t.restartADB(ctx, st, paths)
		},
	)
	if recovered {
		st.Log.Debug("adb answered after restart", "command", strings.Join(args, " "))
	}
	if err != nil {
		var notFound *extproc.NotFoundError
		if errors.As(err, &notFound) {
			notFound.Hint = "run the Android SDK manager and download the platform-tools"
			return "", notFound
		}
		return "", fmt.Errorf("%w: communication with adb failed: %w", ErrAndroid, err)
	}
	return out, nil
}

func (t *Tasks) restartADB(ctx context.Context, st *build.State, paths sdkPaths) {
	var kills [][]string
	if t.goos == hostenv.Windows {
		kills = [][]string{{"taskkill", "/T", "/IM", "adb.exe"}, {"taskkill", "/T", "/F", "/IM", "adb.exe"}}
	} else {
		kills = [][]string{{"killall", "adb"}, {"killall", "-9", "adb"}}
	}
	for _, argv := range kills {
		_, _ = t.runner.Run(ctx, extproc.Command{Args: argv, FailSilently: true})
	}
	if _, err := t.runner.Run(ctx, extproc.Command{Args: []string{paths.adb, "start-server"}, FailSilently: true}); err != nil {
		st.Log.Warn("failed to restart adb", "err", err)
	}
}

// availableDevices asks adb for attached devices, polling a few more times
// when none are found and restarting adb before the second retry.
func (t *Tasks) availableDevices(ctx context.Context, st *build.State, paths sdkPaths) ([]string, error) {
	var devices []string
	err := extproc.RetryWithBackoff(ctx, 1+maxDevicePolls, extproc.ConstantBackoff(t.devicePollDelay),
		func(attempt int) (bool, error) {
			if attempt == 2 {
				t.restartADB(ctx, st, paths)
			}
			out, err := t.adb(ctx, st, paths, t.adbTimeout, "devices")
			if err != nil {
				return false, err
			}
			devices = ScrapeDevices(out)
			if len(devices) == 0 {
				st.Log.Debug("no devices found, checking again")
				return true, ErrNoDevices
			}
			return false, nil
		})
	if errors.Is(err, ErrNoDevices) {
		return nil, nil
	}
	return devices, err
}

// ScrapeDevices extracts device serials from `adb devices` output.
func ScrapeDevices(output string) []string {
	var devices []string
	for _, line := range strings.Split(output, "\n") {
		serial, _, _ := strings.Cut(strings.TrimRight(line, "\r"), "\t")
		if len(serial) > 5 && !strings.Contains(serial, " ") {
			devices = append(devices, serial)
		}
	}
	return devices
}

// runAndroid builds a debug APK, installs it on a device and follows the log.
// Positional arguments: build dir, sdk, device, interactive, purge.
func (t *Tasks) runAndroid(ctx context.Context, st *build.State, args pipeline.Args) (*build.State, error) {
	buildDir, device, purge := args.String(0), args.String(2), args.Bool(4)

	paths, err := t.locateSDK(st, args.String(1))
	if err != nil {
		return nil, err
	}
	java, err := t.findJava(ctx)
	if err != nil {
		return nil, err
	}

	st.Log.Info("starting ADB if not running")
	if _, err := t.runner.Run(ctx, extproc.Command{Args: []string{paths.adb, "start-server"}, FailSilently: true}); err != nil {
		return nil, err
	}

	st.Log.Info("looking for Android device")
	devices, err := t.availableDevices(ctx, st, paths)
	if err != nil {
		return nil, err
	}
	chosen, err := chooseDevice(st, devices, device)
	if err != nil {
		return nil, err
	}

	workDir := filepath.Join(buildDir, "android")
	apk, err := os.CreateTemp("", "forge-*.apk")
	if err != nil {
		return nil, err
	}
	apkPath := apk.Name()
	_ = apk.Close()
	defer func() { _ = os.Remove(apkPath) }()

	st.Log.Info("creating Android .apk file")
	debugKey := signingInfo{
		keystore:  filepath.Join(templateLib(st), "debug.keystore"),
		storepass: "android",
		keyalias:  "androiddebugkey",
		keypass:   "android",
	}
	if err := t.buildAPK(ctx, st, paths, java, workDir, debugKey, apkPath); err != nil {
		return nil, err
	}

	pkg := packageName(st.Config)
	if purge {
		if _, err := t.adb(ctx, st, paths, 30*time.Second, "uninstall", pkg); err != nil {
			return nil, err
		}
	}

	st.Log.Info("installing apk", "device", chosen)
	if _, err := t.adb(ctx, st, paths, 60*time.Second, "-s", chosen, "install", "-r", apkPath); err != nil {
		return nil, err
	}
	if _, err := t.adb(ctx, st, paths, 60*time.Second, "-s", chosen, "shell", "am", "start", "-n", pkg+"/"+pkg+".LoadActivity"); err != nil {
		return nil, err
	}

	st.Log.Info("clearing android log")
	if _, err := t.runner.Run(ctx, extproc.Command{Args: []string{paths.adb, "-s", chosen, "logcat", "-c"}}); err != nil {
		return nil, err
	}
	st.Log.Info("showing android log")
	_, err = t.runner.Run(ctx, extproc.Command{
		Args:       []string{paths.adb, "-s", chosen, "logcat", "WebCore:D", "Forge:D", "*:s"},
		Dir:        string(filepath.Separator),
		ShowOutput: true,
	})
	return nil, err
}

func chooseDevice(st *build.State, available []string, requested string) (string, error) {
	if len(available) == 0 {
		return "", fmt.Errorf("%w: %w: attach a device or start an emulator and try again", ErrAndroid, ErrNoDevices)
	}
	if requested == "" {
		st.Log.Info("no android device specified, using the first one", "device", available[0])
		return available[0], nil
	}
	if !slices.Contains(available, requested) {
		return "", fmt.Errorf("%w: no such device %q, available devices: %s", ErrAndroid, requested, strings.Join(available, ", "))
	}
	st.Log.Info("using specified android device", "device", requested)
	return requested, nil
}

// packageName returns package_names.android, defaulting it from the app uuid.
func packageName(config configtree.Map) string {
	names, ok := config["package_names"].(configtree.Map)
	if !ok {
		names = configtree.Map{}
		config["package_names"] = names
	}
	if name, ok := names["android"].(string); ok && name != "" {
		return name
	}
	uuid, _ := config["uuid"].(string)
	name := "io.trigger.forge" + uuid
	names["android"] = name
	return name
}

type signingInfo struct {
	keystore, storepass, keyalias, keypass string
}

func (s signingInfo) complete() bool {
	return s.keystore != "" && s.storepass != "" && s.keyalias != "" && s.keypass != ""
}

// templateLib is the directory holding the platform jar and debug keystore.
func templateLib(st *build.State) string {
	return filepath.Join(st.OrigWD, ".template", "lib")
}

// findJava returns the java executable, preferring the one on PATH.
func (t *Tasks) findJava(ctx context.Context) (string, error) {
	if _, err := t.runner.Run(ctx, extproc.Command{Args: []string{"java", "-version"}}); err == nil {
		return "java", nil
	}
	if t.goos == hostenv.Windows {
		for _, jre := range []string{
			`C:\Program Files\Java\jre7`,
			`C:\Program Files\Java\jre6`,
			`C:\Program Files (x86)\Java\jre7`,
			`C:\Program Files (x86)\Java\jre6`,
		} {
			if info, err := os.Stat(jre); err == nil && info.IsDir() {
				return filepath.Join(jre, "bin", "java.exe"), nil
			}
		}
	}
	return "", &extproc.NotFoundError{Tool: "java", Hint: "Java must be installed and available in your path to build Android apps"}
}

// buildAPK packs, signs and aligns the app in workDir into out.
func (t *Tasks) buildAPK(ctx context.Context, st *build.State, paths sdkPaths, java, workDir string, key signingInfo, out string) error {
	lib := templateLib(st)
	const unsigned, signed = "app.apk", "signed-app.apk"

	steps := [][]string{
		{paths.aapt, "p", "-F", unsigned, "-S", "res", "-M", "AndroidManifest.xml",
			"-I", filepath.Join(lib, "android-platform.apk"), "-A", "assets", "-f", "output"},
		{java, "-jar", filepath.Join(lib, "apk-signer.jar"),
			"--keystore", key.keystore, "--storepass", key.storepass,
			"--keyalias", key.keyalias, "--keypass", key.keypass,
			"--out", signed, unsigned},
	}
	for _, argv := range steps {
		if _, err := t.runner.Run(ctx, extproc.Command{Args: argv, Dir: workDir}); err != nil {
			return err
		}
	}

	st.Log.Info("aligning apk")
	_ = os.Remove(out)
	if _, err := t.runner.Run(ctx, extproc.Command{Args: []string{paths.zipalign, "-v", "4", signed, out}, Dir: workDir}); err != nil {
		return err
	}
	st.Log.Debug("removing zipfile and un-aligned APK")
	_ = os.Remove(filepath.Join(workDir, unsigned))
	_ = os.Remove(filepath.Join(workDir, signed))
	return nil
}

// packageAndroid builds a release APK signed with the keystore configured
// under android.profile.* and writes it to release/android.
func (t *Tasks) packageAndroid(ctx context.Context, st *build.State, _ pipeline.Args) (*build.State, error) {
	tc := st.ToolConfig
	key := signingInfo{
		keystore:  tc.GetString("android.profile.keystore"),
		storepass: tc.GetString("android.profile.storepass"),
		keyalias:  tc.GetString("android.profile.keyalias"),
		keypass:   tc.GetString("android.profile.keypass"),
	}
	if !key.complete() {
		return nil, fmt.Errorf("%w: keystore, storepass, keyalias and keypass must be set under android.profiles.%s in your local config",
			ErrAndroid, tc.Profile())
	}
	if !filepath.IsAbs(key.keystore) {
		key.keystore = filepath.Join(st.OrigWD, key.keystore)
	}

	paths, err := t.locateSDK(st, tc.GetString("android.sdk"))
	if err != nil {
		return nil, err
	}
	java, err := t.findJava(ctx)
	if err != nil {
		return nil, err
	}

	name, _ := st.Config["name"].(string)
	fileName := strings.ToLower(nonAlphanumeric.ReplaceAllString(name, "")) + "-" + strconv.FormatInt(t.now().Unix(), 10) + ".apk"
	output, err := filepath.Abs(filepath.Join("release", "android", fileName))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, err
	}

	st.Log.Info("creating Android .apk file")
	if err := t.buildAPK(ctx, st, paths, java, filepath.Join(st.OutputDir, "android"), key, output); err != nil {
		return nil, err
	}
	st.Log.Info("created APK", "output", output)
	return nil, nil
}
