// SPDX-License-Identifier: MPL-2.0

// Package hostenv describes the machine forge runs on: its operating system
// and whether the process is confined to an application sandbox, in which
// case external tools must be spawned on the host.
package hostenv
