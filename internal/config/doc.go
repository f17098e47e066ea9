// SPDX-License-Identifier: MPL-2.0

// Package config loads forge's local tool configuration using Viper with CUE
// (or JSON) as the file format.
//
// The local config is looked up as local_config.cue or local_config.json in
// the app directory, then in the user config directory (XDG on Linux,
// ~/Library/Application Support on macOS, %APPDATA% on Windows). Files are
// validated against the embedded local_config_schema.cue before being merged
// over the defaults. FORGE_* environment variables override file values
// (FORGE_GENERAL_INTERACTIVE=false sets general.interactive).
package config
