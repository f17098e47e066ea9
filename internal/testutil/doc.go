// SPDX-License-Identifier: MPL-2.0

// Package testutil provides file fixtures for tests. Every helper fails the
// test immediately on error so call sites stay one line long.
package testutil
