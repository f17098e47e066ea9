// SPDX-License-Identifier: MPL-2.0

// Package extproc runs the external tools tasks depend on (adb, npm,
// makensis, git) and provides the concurrency helpers used around them:
// a bounded wait that recovers a hung daemon, a cancellable deferred action
// and retry with backoff.
//
// Commands run through the mvdan.cc/sh interpreter, so configured command
// lines are parsed with POSIX shell rules on every host.
package extproc
