// SPDX-License-Identifier: MPL-2.0

package build

import (
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// DefaultProfile is the profile used when general.profile is unset.
const DefaultProfile = "default"

// ToolConfig is a read view over the layered local tool config. Keys are
// dotted paths ("android.sdk"). A ".profile." segment is resolved against the
// active profile, so "web.profile.heroku_app_name" reads
// "web.profiles.<active>.heroku_app_name".
type ToolConfig struct {
	v *viper.Viper
}

// NewToolConfig wraps v. A nil v yields an empty config.
func NewToolConfig(v *viper.Viper) *ToolConfig {
	if v == nil {
		v = viper.New()
	}
	return &ToolConfig{v: v}
}

// Profile returns the active profile name.
func (c *ToolConfig) Profile() string {
	if p := c.v.GetString("general.profile"); p != "" {
		return p
	}
	return DefaultProfile
}

// Get returns the value at key, or nil if unset.
func (c *ToolConfig) Get(key string) any {
	return c.v.Get(c.resolve(key))
}

// GetString returns the value at key as a string.
func (c *ToolConfig) GetString(key string) string {
	return c.v.GetString(c.resolve(key))
}

// GetBool returns the value at key as a bool.
func (c *ToolConfig) GetBool(key string) bool {
	return c.v.GetBool(c.resolve(key))
}

// GetBoolDefault returns the value at key, or def when the key is unset.
func (c *ToolConfig) GetBoolDefault(key string, def bool) bool {
	k := c.resolve(key)
	if !c.v.IsSet(k) {
		return def
	}
	return c.v.GetBool(k)
}

// GetStringSlice returns the value at key as a string slice.
func (c *ToolConfig) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(c.resolve(key))
}

// GetInt returns the value at key as an int.
func (c *ToolConfig) GetInt(key string) int {
	return c.v.GetInt(c.resolve(key))
}

// IsSet reports whether key has a value in any layer.
func (c *ToolConfig) IsSet(key string) bool {
	return c.v.IsSet(c.resolve(key))
}

// Set overrides key in the top layer.
func (c *ToolConfig) Set(key string, value any) {
	c.v.Set(c.resolve(key), value)
}

// AllSettings returns the merged settings of every layer.
func (c *ToolConfig) AllSettings() map[string]any {
	return c.v.AllSettings()
}

// ConfigFileUsed returns the file the config was read from, if any.
func (c *ToolConfig) ConfigFileUsed() string {
	return c.v.ConfigFileUsed()
}

func (c *ToolConfig) resolve(key string) string {
	parts := strings.Split(key, ".")
	if key == "general.profile" || !slices.Contains(parts, "profile") {
		return key
	}
	out := make([]string, 0, len(parts)+1)
	for _, part := range parts {
		if part == "profile" {
			out = append(out, "profiles", c.Profile())
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, ".")
}
