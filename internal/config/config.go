// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/issue"
	"github.com/workingBen/forge-demo/pkg/cueutil"
	"github.com/workingBen/forge-demo/pkg/hostenv"
)

const (
	// AppName is the application name.
	AppName = "forge"
	// ConfigFileName is the name of the local config file (without extension).
	ConfigFileName = "local_config"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "FORGE"

	schemaDefinition = "#LocalConfig"
)

//go:embed local_config_schema.cue
var localConfigSchema []byte

// configExtensions are tried in order when looking for a local config file.
var configExtensions = []string{"cue", "json"}

// ConfigDir returns the forge configuration directory using platform-specific
// conventions.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case hostenv.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case hostenv.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions builds the layered tool config: defaults, then the first
// local config file found, then FORGE_* environment variables.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*build.ToolConfig, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load local configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE or JSON").
				WithSuggestion("Verify the values match the local config schema (forge check)").
				Wrap(err).
				BuildError()
		}
		v.SetConfigFile(path)
	}

	return build.NewToolConfig(v), nil
}

// findConfigFile resolves the local config path. An explicit path must exist;
// otherwise the app directory and then the user config directory are
// searched. No file at all is not an error.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load local configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dirs := []string{opts.AppDir}
	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		if dir, err := ConfigDir(); err == nil {
			cfgDir = dir
		}
	}
	if cfgDir != "" {
		dirs = append(dirs, cfgDir)
	}

	for _, dir := range dirs {
		for _, ext := range configExtensions {
			candidate := filepath.Join(dir, ConfigFileName+"."+ext)
			if fileExists(candidate) {
				return candidate, nil
			}
		}
	}
	return "", nil
}

// loadIntoViper validates the file at path against #LocalConfig and merges
// its contents into v, preserving defaults and environment overrides.
func loadIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[map[string]any](localConfigSchema, data, schemaDefinition,
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// ValidateFile checks the local config file at path against the embedded
// schema.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return cueutil.Validate(localConfigSchema, data, schemaDefinition,
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
