// SPDX-License-Identifier: MPL-2.0

// Package predicates holds the named build-state tests that gate pipeline
// steps.
package predicates

import (
	"fmt"
	"slices"

	"github.com/workingBen/forge-demo/internal/build"
	"github.com/workingBen/forge-demo/internal/pipeline"
	"github.com/workingBen/forge-demo/pkg/configtree"
	"github.com/workingBen/forge-demo/pkg/hostenv"
)

// Orientation values understood by the disable_orientation_* predicates.
const (
	orientationPortrait  = "portrait"
	orientationLandscape = "landscape"
	orientationAny       = "any"
)

// Set returns every predicate keyed by its registered name.
func Set() map[string]pipeline.Predicate {
	set := map[string]pipeline.Predicate{
		"is_external":            IsExternal,
		"have_safari_icons":      haveIcons(build.Safari, "32", "48", "64"),
		"have_android_icons":     haveIcons(build.Android, "36", "48", "72"),
		"have_firefox_icons":     haveIcons(build.Firefox, "32", "64"),
		"have_ios_icons":         haveIcons(build.IOS, "57", "72", "114"),
		"have_ios_launch":        haveLaunchImages("iphone", "iphone-retina", "ipad", "ipad-landscape"),
		"have_android_launch":    haveLaunchImages("android", "android-landscape"),
		"include_user":           IncludeUser,
		"include_affiliate":      hasLib("affiliate"),
		"include_gmail":          hasLib("gmail"),
		"include_jquery":         hasLib("jquery"),
		"partner_parse_enabled":  PartnerParseEnabled,
		"partner_parse_disabled": func(st *build.State) bool { return !PartnerParseEnabled(st) },
		"module_topbar_enabled":  moduleEnabled("topbar"),
		"is_osx":                 IsOSX,
	}

	for _, device := range []string{"iphone", "ipad"} {
		for _, o := range []struct {
			suffix      string
			orientation string
		}{
			{"portrait_up", orientationPortrait},
			{"portrait_down", orientationPortrait},
			{"landscape_left", orientationLandscape},
			{"landscape_right", orientationLandscape},
		} {
			name := fmt.Sprintf("disable_orientation_%s_%s", device, o.suffix)
			set[name] = disableOrientation(device, o.orientation)
		}
	}
	return set
}

// Register adds every predicate to reg.
func Register(reg *pipeline.Registry) error {
	set := Set()
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := reg.RegisterPredicate(name, set[name]); err != nil {
			return err
		}
	}
	return nil
}

// IsExternal reports whether the build was requested by a third party.
func IsExternal(st *build.State) bool { return st.External }

// IncludeUser reports whether user code goes into the build.
func IncludeUser(st *build.State) bool { return !st.TemplateOnly }

// IsOSX reports whether the build host runs macOS.
func IsOSX(*build.State) bool { return build.HostOS == hostenv.Darwin }

// PartnerParseEnabled reports whether the Parse partner integration has both
// credentials configured.
func PartnerParseEnabled(st *build.State) bool {
	return configtree.Has(st.Config, "partners", "parse", "applicationId") &&
		configtree.Has(st.Config, "partners", "parse", "clientKey")
}

// haveIcons requires each size to be present either at the top level of the
// icons map or under the platform's own map.
func haveIcons(platform build.Platform, sizes ...string) pipeline.Predicate {
	return func(st *build.State) bool {
		icons, ok := st.Config["icons"].(configtree.Map)
		if !ok {
			return false
		}
		perPlatform, _ := icons[string(platform)].(configtree.Map)
		for _, size := range sizes {
			_, top := icons[size]
			_, nested := perPlatform[size]
			if !top && !nested {
				return false
			}
		}
		return true
	}
}

func haveLaunchImages(kinds ...string) pipeline.Predicate {
	return func(st *build.State) bool {
		for _, kind := range kinds {
			if !configtree.Has(st.Config, "launch_images", kind) {
				return false
			}
		}
		return true
	}
}

func hasLib(name string) pipeline.Predicate {
	return func(st *build.State) bool {
		return contains(st.Config["libs"], name)
	}
}

func moduleEnabled(name string) pipeline.Predicate {
	return func(st *build.State) bool {
		return contains(st.Config["modules"], name)
	}
}

// contains reports membership of name in a mapping's keys or a sequence.
func contains(container any, name string) bool {
	switch c := container.(type) {
	case configtree.Map:
		_, ok := c[name]
		return ok
	case []any:
		return slices.Contains(c, any(name))
	case []string:
		return slices.Contains(c, name)
	default:
		return false
	}
}

// disableOrientation looks up the device's orientation, falling back to the
// default entry. No orientations config means nothing is disabled.
func disableOrientation(device, orientation string) pipeline.Predicate {
	return func(st *build.State) bool {
		orientations, ok := st.Config["orientations"].(configtree.Map)
		if !ok {
			return false
		}
		setting, ok := orientations[device]
		if !ok {
			setting, ok = orientations["default"]
		}
		if !ok {
			return false
		}
		return setting != orientation && setting != orientationAny
	}
}
