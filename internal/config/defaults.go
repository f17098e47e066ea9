// SPDX-License-Identifier: MPL-2.0

package config

import "github.com/workingBen/forge-demo/internal/build"

// DefaultWebPort is the port the web development server listens on.
const DefaultWebPort = 3000

// Defaults returns the tool config defaults keyed by dotted path.
func Defaults() map[string]any {
	return map[string]any{
		"general.interactive": true,
		"general.profile":     build.DefaultProfile,
		"general.output_dir":  "development",
		"web.port":            DefaultWebPort,
	}
}
