// SPDX-License-Identifier: MPL-2.0

package goals

import (
	"path"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/invalidate"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/internal/platforms"
	"github.com/workingBen/forge-demo/internal/tasks"
)

// userSource is the app source directory copied into each platform.
const userSource = "src"

var (
	// Where user code lives inside each platform template.
	serverSourceLocations = map[build.Platform]string{
		build.Android: "android/template-app/assets/src",
		build.IOS:     "ios/templateapp/assets/src",
		build.Chrome:  "chrome/src",
		build.Firefox: "firefox/template-app/data/src",
		build.Safari:  "forge.safariextension/src",
		build.IE:      "ie/src",
		build.Web:     "web/src",
	}
	customerSourceLocations = map[build.Platform]string{
		build.Android: "development/android/assets/src",
		build.IOS:     "development/ios/*/assets/src",
		build.Chrome:  "development/chrome/src",
		build.Firefox: "development/firefox/resources/f/data/src",
		build.Safari:  "development/forge.safariextension/src",
		build.IE:      "development/ie/src",
		build.Web:     "development/web/src",
	}

	serverIconPaths = map[build.Platform]string{
		build.Android: "android/template-app/res/",
		build.Safari:  "forge.safariextension/",
		build.Firefox: "firefox/template-app/output/",
		build.IOS:     "ios/",
	}
	customerIconPaths = map[build.Platform]string{
		build.Android: "development/android/res/",
		build.Safari:  "development/forge.safariextension/",
		build.Firefox: "development/firefox/",
		build.IOS:     "development/ios/*.app/",
	}

	// bootstrapScripts is the script tag injected into every user HTML head.
	// "%%{" keeps the back-to-parent marker away from the template renderer.
	bootstrapScripts = map[build.Platform]string{
		build.Android: "<head><script src='file:///android_asset/forge/all.js'></script>",
		build.IOS:     "<head><script src='%%{back_to_parent}%forge/all.js'></script>",
		build.Firefox: "<head><script src='%%{back_to_parent}%forge/all.js'></script>",
		build.Chrome:  "<head><script src='/forge/all.js'></script>",
		build.Safari:  "<head><script src='%%{back_to_parent}%forge/all.js'></script>",
		build.IE:      "<head><script src='/forge/all.js'></script>",
		build.Web:     "<head><script src='/_forge/all.js'></script>",
	}

	// urlLocations are the config paths holding app-relative URLs.
	urlLocations = []any{
		"activations.[].scripts.[]",
		"activations.[].styles.[]",
		"icons.*",
		"launch_images.*",
		"browser_action.default_icon",
		"browser_action.default_popup",
		"browser_action.default_icons.*",
		"page_action.default_icon",
		"page_action.default_popup",
		"page_action.default_icons.*",
	}
)

// Phases generates the step lists goals are assembled from.
type Phases struct {
	// Server selects the template layout used by server-side builds.
	Server bool
}

func (ph Phases) sourceLocation(p build.Platform) string {
	if ph.Server {
		return serverSourceLocations[p]
	}
	return customerSourceLocations[p]
}

func (ph Phases) iconPath(p build.Platform, sub string) string {
	base := customerIconPaths[p]
	if ph.Server {
		base = serverIconPaths[p]
	}
	return path.Join(base, sub)
}

// ResolveURLs makes every app-relative URL in the config point into src.
func (Phases) ResolveURLs() []pipeline.Step {
	return []pipeline.Step{
		pipeline.NewStep(pipeline.ScopeAll, "", tasks.ResolveURLs, urlLocations...),
	}
}

// CopyUserSource copies src into every platform template.
func (ph Phases) CopyUserSource(ignorePatterns []string) []pipeline.Step {
	steps := make([]pipeline.Step, 0, len(build.AllPlatforms()))
	for _, p := range build.AllPlatforms() {
		steps = append(steps, pipeline.NewStep(string(p), "include_user", tasks.CopyFiles).
			WithKwargs(map[string]any{
				"from":            userSource,
				"to":              ph.sourceLocation(p),
				"ignore_patterns": ignorePatterns,
			}))
	}
	return steps
}

// IncludePlatformInHTML injects the forge bootstrap script into user HTML.
func (ph Phases) IncludePlatformInHTML() []pipeline.Step {
	steps := make([]pipeline.Step, 0, len(build.AllPlatforms()))
	for _, p := range build.AllPlatforms() {
		steps = append(steps, pipeline.NewStep(string(p), "include_user", tasks.FindAndReplaceInDir, ph.sourceLocation(p)).
			WithKwargs(map[string]any{
				"find":    "<head>",
				"replace": bootstrapScripts[p],
			}))
	}
	return steps
}

// WrapActivations guards content scripts for the extensions that run them in
// frames.
func (ph Phases) WrapActivations() []pipeline.Step {
	return []pipeline.Step{
		pipeline.NewStep(string(build.Firefox), "include_user", tasks.WrapActivations, ph.sourceLocation(build.Firefox)),
		pipeline.NewStep(string(build.Safari), "include_user", tasks.WrapActivations, ph.sourceLocation(build.Safari)),
	}
}

type iconCopy struct {
	platform build.Platform
	pred     string
	from     string
	to       string
}

// IncludeIcons fills in per-platform icons and copies them into place.
func (ph Phases) IncludeIcons() []pipeline.Step {
	steps := []pipeline.Step{
		pipeline.NewStep(string(build.Android), "", tasks.PopulateIcons, "android", []any{36, 48, 72}),
		pipeline.NewStep(string(build.Chrome), "", tasks.PopulateIcons, "chrome", []any{16, 48, 128}),
		pipeline.NewStep(string(build.Firefox), "", tasks.PopulateIcons, "firefox", []any{32, 64}),
		pipeline.NewStep(string(build.IOS), "", tasks.PopulateIcons, "ios", []any{57, 72, 114}),
		pipeline.NewStep(string(build.Safari), "", tasks.PopulateIcons, "safari", []any{32, 48, 64}),
	}

	const (
		android = "have_android_icons,include_user"
		safari  = "have_safari_icons,include_user"
		firefox = "have_firefox_icons,include_user"
		ios     = "have_ios_icons,include_user"
		launch  = "have_ios_launch,include_user"
	)
	copies := []iconCopy{
		{build.Android, android, `${icons["android"]["36"]}`, "drawable-ldpi/icon.png"},
		{build.Android, android, `${icons["android"]["48"]}`, "drawable-mdpi/icon.png"},
		{build.Android, android, `${icons["android"]["72"]}`, "drawable-hdpi/icon.png"},
		{build.Safari, safari, `${icons["safari"]["32"]}`, "icon-32.png"},
		{build.Safari, safari, `${icons["safari"]["48"]}`, "icon-48.png"},
		{build.Safari, safari, `${icons["safari"]["64"]}`, "icon-64.png"},
		{build.Firefox, firefox, `${icons["firefox"]["32"]}`, "icon.png"},
		{build.Firefox, firefox, `${icons["firefox"]["64"]}`, "icon64.png"},
		{build.IOS, ios, `${icons["ios"]["57"]}`, "normal.png"},
		{build.IOS, ios, `${icons["ios"]["72"]}`, "ipad.png"},
		{build.IOS, ios, `${icons["ios"]["114"]}`, "retina.png"},
		{build.IOS, launch, `${launch_images["iphone"]}`, "Default~iphone.png"},
		{build.IOS, launch, `${launch_images["iphone-retina"]}`, "Default@2x~iphone.png"},
		{build.IOS, launch, `${launch_images["ipad"]}`, "Default~ipad.png"},
		{build.IOS, launch, `${launch_images["ipad-landscape"]}`, "Default-Landscape~ipad.png"},
	}
	for _, c := range copies {
		steps = append(steps, pipeline.NewStep(string(c.platform), c.pred, tasks.CopyFiles).
			WithKwargs(map[string]any{"from": c.from, "to": ph.iconPath(c.platform, c.to)}))
	}
	return steps
}

// IncludeName writes the app name into each platform's manifest.
func (Phases) IncludeName() []pipeline.Step {
	replaceName := func(scope, safeName string, files ...any) pipeline.Step {
		return pipeline.NewStep(scope, "", tasks.FindAndReplace, files...).
			WithKwargs(map[string]any{"find": "APP_NAME_HERE", "replace": "${" + safeName + "}"})
	}
	setPlist := func(key string) pipeline.Step {
		return pipeline.NewStep(string(build.IOS), "is_osx", tasks.SetInPlist, "development/ios/*/Info.plist").
			WithKwargs(map[string]any{"key": key, "value": "${name}"})
	}
	return []pipeline.Step{
		pipeline.NewStep("android,firefox,safari", "", tasks.PopulateXMLSafeName),
		pipeline.NewStep(string(build.Chrome), "", tasks.PopulateJSONSafeName),
		pipeline.NewStep(string(build.IE), "", tasks.PopulateJSONSafeName),
		replaceName(string(build.Android), "xml_safe_name", "development/android/res/values/strings.xml"),
		setPlist("CFBundleName"),
		setPlist("CFBundleDisplayName"),
		replaceName(string(build.Chrome), "json_safe_name", "development/chrome/manifest.json"),
		replaceName(string(build.Firefox), "xml_safe_name", "development/firefox/install.rdf"),
		replaceName(string(build.Safari), "xml_safe_name", "development/forge.safariextension/Info.plist"),
		replaceName(string(build.IE), "json_safe_name",
			"development/ie/manifest.json",
			"development/ie/dist/setup-x86.nsi",
			"development/ie/dist/setup-x64.nsi"),
	}
}

// MakeInstallers builds the platform installers found under outputDir.
func (Phases) MakeInstallers(outputDir string) []pipeline.Step {
	return []pipeline.Step{
		pipeline.NewStep(string(build.IE), "", platforms.PackageIE, outputDir),
	}
}

// RunAndroid installs and launches the app on an Android device.
func (Phases) RunAndroid(outputDir, sdk, device string, interactive, purge bool) []pipeline.Step {
	return []pipeline.Step{
		pipeline.NewStep(string(build.Android), "", platforms.RunAndroid, outputDir, sdk, device, interactive, purge),
	}
}

// RunIOS launches the app on an iOS device or simulator.
func (Phases) RunIOS(device string) []pipeline.Step {
	return []pipeline.Step{
		pipeline.NewStep(string(build.IOS), "", platforms.RunIOS, device),
	}
}

// RunFirefox launches Firefox with the extension loaded.
func (Phases) RunFirefox(outputDir string) []pipeline.Step {
	return []pipeline.Step{
		pipeline.NewStep(string(build.Firefox), "", platforms.RunFirefox, outputDir),
	}
}

// RunWeb serves the web app locally.
func (Phases) RunWeb() []pipeline.Step {
	return []pipeline.Step{
		pipeline.NewStep(string(build.Web), "", platforms.RunWeb),
	}
}

// Package creates release packages from the build under outputDir.
func (Phases) Package(outputDir string) []pipeline.Step {
	return []pipeline.Step{
		pipeline.NewStep(string(build.Android), "", platforms.PackageAndroid),
		pipeline.NewStep(string(build.IOS), "", platforms.PackageIOS, outputDir),
		pipeline.NewStep(string(build.Web), "", platforms.PackageWeb),
	}
}

// CheckJavaScript lints the app's JavaScript.
func (Phases) CheckJavaScript() []pipeline.Step {
	return []pipeline.Step{pipeline.NewStep(pipeline.ScopeAll, "", tasks.LintJavaScript)}
}

// CheckLocalConfigSchema validates the local tool config.
func (Phases) CheckLocalConfigSchema() []pipeline.Step {
	return []pipeline.Step{pipeline.NewStep(pipeline.ScopeAll, "", tasks.CheckLocalConfigSchema)}
}

// ConfigChanges reports whether the app config changed in a way that needs
// regeneration.
func (Phases) ConfigChanges(oldPath, newPath string) []pipeline.Step {
	return []pipeline.Step{pipeline.NewStep(pipeline.ScopeAll, "", invalidate.TaskName, oldPath, newPath)}
}

// Clean stops anything a forcefully interrupted run left behind.
func (Phases) Clean() []pipeline.Step {
	return []pipeline.Step{
		pipeline.NewStep(string(build.Android), "", platforms.CleanAndroid),
		pipeline.NewStep(string(build.Firefox), "", platforms.CleanFirefox, "development"),
		pipeline.NewStep(string(build.Web), "", platforms.CleanWeb),
	}
}
