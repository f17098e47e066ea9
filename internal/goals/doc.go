// SPDX-License-Identifier: MPL-2.0

// Package goals assembles the step lists behind forge's user-level goals
// (generate, run, package, check, clean) from reusable phases.
package goals
