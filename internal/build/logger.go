// SPDX-License-Identifier: MPL-2.0

package build

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger creates the build logger. Debug output is enabled when verbose.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "forge",
		Level:           level,
		ReportTimestamp: false,
	})
}
