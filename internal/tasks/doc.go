// SPDX-License-Identifier: MPL-2.0

// Package tasks implements the generic, platform-independent tasks that phase
// generators reference by name: file copies and renames, text substitution,
// URL resolution, icon and name population, plist edits, checks and build
// tracking.
//
// Tasks are plain pipeline.Task functions. Register adds them to a registry
// under their public names.
package tasks
