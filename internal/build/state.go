// SPDX-License-Identifier: MPL-2.0

package build

import (
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/workingBen/forge-demo/pkg/configtree"
)

// HostOS is the operating system the build runs on. Tests override it.
var HostOS = runtime.GOOS

// State is the mutable context of a single build run.
type State struct {
	// Config is the app config tree.
	Config configtree.Map
	// EnabledPlatforms are the targets this run builds for.
	EnabledPlatforms PlatformSet
	// ToolConfig is the layered local tool configuration.
	ToolConfig *ToolConfig
	// Log is the build logger.
	Log *log.Logger
	// TemplateOnly skips user code (see the include_user predicate).
	TemplateOnly bool
	// OrigWD is the working directory the run was started from.
	OrigWD string
	// External marks builds requested by a third party.
	External bool
	// OutputDir is where installers and packages are written.
	OutputDir string
	// IgnorePatterns are gitignore-style patterns applied when copying user
	// source.
	IgnorePatterns []string
	// Server selects the server-side template locations.
	Server bool
	// ID identifies the run for tracking.
	ID uuid.UUID
}

// Option configures a State created by NewState.
type Option func(*State)

// NewState creates a State for config and platforms. The logger defaults to a
// discarding one and the tool config to an empty layer set.
func NewState(config configtree.Map, platforms PlatformSet, opts ...Option) *State {
	if config == nil {
		config = configtree.Map{}
	}
	st := &State{
		Config:           config,
		EnabledPlatforms: platforms,
		ToolConfig:       NewToolConfig(nil),
		Log:              NewLogger(io.Discard, false),
		OutputDir:        "development",
		ID:               uuid.New(),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// WithToolConfig sets the tool config.
func WithToolConfig(tc *ToolConfig) Option {
	return func(s *State) { s.ToolConfig = tc }
}

// WithLogger sets the build logger.
func WithLogger(l *log.Logger) Option {
	return func(s *State) { s.Log = l }
}

// WithTemplateOnly sets whether user code is left out.
func WithTemplateOnly(v bool) Option {
	return func(s *State) { s.TemplateOnly = v }
}

// WithWorkDir sets the original working directory.
func WithWorkDir(dir string) Option {
	return func(s *State) { s.OrigWD = dir }
}

// WithOutputDir sets the output directory.
func WithOutputDir(dir string) Option {
	return func(s *State) { s.OutputDir = dir }
}

// WithServer selects server-side template locations.
func WithServer(v bool) Option {
	return func(s *State) { s.Server = v }
}

// WithIgnorePatterns sets the user source ignore patterns.
func WithIgnorePatterns(patterns []string) Option {
	return func(s *State) { s.IgnorePatterns = patterns }
}

// WithExternal marks the build as external.
func WithExternal(v bool) Option {
	return func(s *State) { s.External = v }
}

// WithConfig returns a shallow copy of s carrying config.
func (s *State) WithConfig(config configtree.Map) *State {
	next := *s
	next.Config = config
	return &next
}

// UUID returns the app identifier from the config, falling back to the run ID.
func (s *State) UUID() string {
	if id, ok := s.Config["uuid"].(string); ok && id != "" {
		return id
	}
	return s.ID.String()
}
