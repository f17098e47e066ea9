// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/workingBen/forge-demo/internal/build"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// AppDir is searched for a local config file first. Empty means the
	// current directory.
	AppDir string
	// ConfigDirPath overrides the user config directory lookup when set.
	ConfigDirPath string
}

// Provider loads the tool configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*build.ToolConfig, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*build.ToolConfig, error) {
	return loadWithOptions(ctx, opts)
}
