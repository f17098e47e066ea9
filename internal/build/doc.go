// SPDX-License-Identifier: MPL-2.0

// Package build holds the run-scoped state threaded through a step pipeline:
// the app config tree, the enabled target platforms, the layered tool config
// and the build logger.
//
// Exactly one State exists per run. Tasks either mutate it in place or return
// a replacement, which the pipeline adopts for the remaining steps.
package build
