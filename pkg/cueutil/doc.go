// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the CUE parsing helpers shared by the tool config
// loader, the local config schema check and CUE-formatted app configs.
//
// Validation follows the same three steps everywhere:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema definition
//  3. Validate, then decode to Go values
//
// Errors are reformatted with JSON-path prefixes (e.g. "android.sdk: ...")
// so users can find the offending field.
package cueutil
