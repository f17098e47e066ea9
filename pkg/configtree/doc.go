// SPDX-License-Identifier: MPL-2.0

// Package configtree models the nested build configuration of a forge app and
// provides the path-transform engine used to rewrite values inside it.
//
// A Config Tree is an arbitrarily nested combination of mappings
// (map[string]any), sequences ([]any) and scalars, as produced by decoding a
// JSON, YAML or CUE app config. Every value belongs to exactly one Kind, which
// drives all traversal decisions.
//
// Paths are dot-separated lists of segments:
//
//	activations.[].scripts.[]   every script of every activation
//	browser_action.default_icon a single literal key
//	icons.*                     every leaf reachable through the icons mapping
//
// Transform copies the top-level mapping but mutates nested containers in
// place, so nested structures stay shared with the caller's tree.
package configtree
