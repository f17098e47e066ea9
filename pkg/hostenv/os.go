// SPDX-License-Identifier: MPL-2.0

package hostenv

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// ExecutableName appends the Windows executable suffix to name when goos is
// Windows.
func ExecutableName(goos, name string) string {
	if goos == Windows {
		return name + ".exe"
	}
	return name
}

// ScriptName appends the Windows batch suffix to name when goos is Windows.
// Node and Heroku tooling ship as .cmd wrappers there.
func ScriptName(goos, name string) string {
	if goos == Windows {
		return name + ".cmd"
	}
	return name
}

// OpenCommand returns the argv that opens url in the default browser, or nil
// when goos has no known opener.
func OpenCommand(goos, url string) []string {
	switch goos {
	case Darwin:
		return []string{"open", url}
	case Windows:
		return []string{"cmd", "/c", "start", "", url}
	case Linux, "freebsd", "openbsd":
		return []string{"xdg-open", url}
	default:
		return nil
	}
}
