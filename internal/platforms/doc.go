// SPDX-License-Identifier: MPL-2.0

// Package platforms adapts the per-platform SDKs and tools (adb, npm, git,
// makensis and user-configured commands) into named pipeline tasks.
//
// Every task here is an external collaborator: it shells out through an
// extproc.Runner and owns any retry or hang recovery the tool needs. The
// pipeline itself stays platform-agnostic.
package platforms
