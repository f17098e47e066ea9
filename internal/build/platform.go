// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Target platforms.
const (
	Android Platform = "android"
	IOS     Platform = "ios"
	Web     Platform = "web"
	Chrome  Platform = "chrome"
	Firefox Platform = "firefox"
	Safari  Platform = "safari"
	IE      Platform = "ie"
)

// ErrUnknownPlatform is returned when a platform identifier is not supported.
var ErrUnknownPlatform = errors.New("unknown platform")

type (
	// Platform identifies a target environment an app is built for.
	Platform string

	// PlatformSet is an unordered set of platforms.
	PlatformSet map[Platform]struct{}
)

// AllPlatforms returns every supported platform in a stable order.
func AllPlatforms() []Platform {
	return []Platform{Android, IOS, Web, Chrome, Firefox, Safari, IE}
}

// IsValid reports whether p is a supported platform.
func (p Platform) IsValid() bool {
	return slices.Contains(AllPlatforms(), p)
}

func (p Platform) String() string { return string(p) }

// NewPlatformSet builds a set from the given platforms.
func NewPlatformSet(platforms ...Platform) PlatformSet {
	s := make(PlatformSet, len(platforms))
	for _, p := range platforms {
		s[p] = struct{}{}
	}
	return s
}

// ParsePlatforms parses a comma-separated platform list such as
// "android,ios". Blank entries are ignored.
func ParsePlatforms(list string) (PlatformSet, error) {
	s := PlatformSet{}
	for _, part := range strings.Split(list, ",") {
		name := Platform(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if !name.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
		}
		s[name] = struct{}{}
	}
	return s, nil
}

// Has reports whether p is in the set.
func (s PlatformSet) Has(p Platform) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of platforms in the set.
func (s PlatformSet) Len() int { return len(s) }

// Sorted returns the platforms in lexical order.
func (s PlatformSet) Sorted() []Platform {
	out := make([]Platform, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Only returns the single platform in the set, or false if the set does not
// hold exactly one.
func (s PlatformSet) Only() (Platform, bool) {
	if len(s) != 1 {
		return "", false
	}
	for p := range s {
		return p, true
	}
	return "", false
}

func (s PlatformSet) String() string {
	names := make([]string, 0, len(s))
	for _, p := range s.Sorted() {
		names = append(names, string(p))
	}
	return strings.Join(names, ",")
}
