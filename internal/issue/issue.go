// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	AppConfigNotFoundId Id = iota + 1
	AppConfigParseErrorId
	LocalConfigInvalidId
	UnknownGoalId
	PlatformCountId
	PipelineInvalidId
	TemplateRenderFailedId
	ToolNotFoundId
	CommandFailedId
	AndroidDeviceNotFoundId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	appConfigNotFoundIssue = &Issue{
		id: AppConfigNotFoundId,
		mdMsg: `
# No app config found!

forge reads the app configuration from ` + "`src/config.json`" + ` in the
current directory.

## Things you can try:
- Run forge from the root of your app
- Point forge at a different file:
~~~
$ forge generate --app-config path/to/config.json
~~~`,
	}

	appConfigParseErrorIssue = &Issue{
		id: AppConfigParseErrorId,
		mdMsg: `
# Failed to parse the app config!

The app config must be a JSON, YAML or CUE document whose top level is a
mapping.

## Things you can try:
- Check the error message above for the offending line
- Validate the file with a JSON linter
- Make sure ` + "`name`" + ` and ` + "`version`" + ` are strings`,
	}

	localConfigInvalidIssue = &Issue{
		id: LocalConfigInvalidId,
		mdMsg: `
# Local config is invalid!

` + "`local_config`" + ` did not match the expected schema.

## Search locations (in order of precedence):
1. The path given with --local-config
2. The app directory
3. The user config directory (e.g. ~/.config/forge)

## Example:
~~~cue
general: {
	profile: "default"
}
android: {
	sdk: "/opt/android-sdk"
	profiles: default: {
		keystore:  "release.keystore"
		storepass: "secret"
		keyalias:  "release"
		keypass:   "secret"
	}
}
~~~

## Things you can try:
- Run the schema check on its own:
~~~
$ forge check
~~~`,
	}

	unknownGoalIssue = &Issue{
		id: UnknownGoalId,
		mdMsg: `
# Unknown goal!

Supported goals are generate, run, package, check and clean.

## Things you can try:
- List the steps a goal would run:
~~~
$ forge steps generate
~~~`,
	}

	platformCountIssue = &Issue{
		id: PlatformCountId,
		mdMsg: `
# This goal needs exactly one platform!

` + "`run`" + ` and ` + "`package`" + ` act on a single target.

## Things you can try:
- Name one platform:
~~~
$ forge run --platforms android
~~~`,
	}

	pipelineInvalidIssue = &Issue{
		id: PipelineInvalidId,
		mdMsg: `
# The build pipeline is invalid!

One or more steps refer to a task or predicate that is not registered, or
have no platform scope. Every problem is listed above.

## Things you can try:
- Inspect the composed steps:
~~~
$ forge steps generate --verbose
~~~`,
	}

	templateRenderFailedIssue = &Issue{
		id: TemplateRenderFailedId,
		mdMsg: `
# Failed to render a step argument!

Step arguments may reference app config values, e.g. ` + "`${name}`" + `.
The referenced value is missing or has the wrong type.

## Things you can try:
- Add the missing key to the app config
- Escape literal directives as ` + "`$${`" + ` or ` + "`%%{`",
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Required tool not found!

A platform task needs an external program (adb, npm, git, makensis...) that is
not on your PATH.

## Things you can try:
- Install the tool listed above
- Point forge at an existing install in local_config, e.g. ` + "`android.sdk`",
	}

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# External command failed!

A command run by a build task exited with a non-zero status.

## Things you can try:
- Review the command output above
- Run with verbose mode for more details:
~~~
$ forge --verbose run
~~~`,
	}

	androidDeviceNotFoundIssue = &Issue{
		id: AndroidDeviceNotFoundId,
		mdMsg: `
# No Android device found!

adb did not list any connected device or running emulator.

## Things you can try:
- Connect a device with USB debugging enabled
- Start an emulator from the Android SDK
- Choose a device explicitly in local_config:
~~~cue
android: device: "emulator-5554"
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- The output directory is not writable
- A packaged file is still open in another program
- Your SSH key is not registered with the git host

## Things you can try:
- Check file/directory permissions
- Run forge from a directory you own`,
	}

	issues = map[Id]*Issue{
		appConfigNotFoundIssue.Id():     appConfigNotFoundIssue,
		appConfigParseErrorIssue.Id():   appConfigParseErrorIssue,
		localConfigInvalidIssue.Id():    localConfigInvalidIssue,
		unknownGoalIssue.Id():           unknownGoalIssue,
		platformCountIssue.Id():         platformCountIssue,
		pipelineInvalidIssue.Id():       pipelineInvalidIssue,
		templateRenderFailedIssue.Id():  templateRenderFailedIssue,
		toolNotFoundIssue.Id():          toolNotFoundIssue,
		commandFailedIssue.Id():         commandFailedIssue,
		androidDeviceNotFoundIssue.Id(): androidDeviceNotFoundIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

// Values returns every known issue ordered by ID.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
