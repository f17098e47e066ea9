// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"slices"
	"testing"
)

func TestParsePlatforms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []Platform
		wantErr bool
	}{
		{name: "single", input: "android", want: []Platform{Android}},
		{name: "list with spaces", input: "web, ios", want: []Platform{IOS, Web}},
		{name: "duplicates collapse", input: "ie,ie", want: []Platform{IE}},
		{name: "empty", input: "", want: []Platform{}},
		{name: "unknown", input: "android,blackberry", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePlatforms(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPlatform) {
					t.Fatalf("expected ErrUnknownPlatform, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got.Sorted(), tt.want) {
				t.Errorf("ParsePlatforms(%q) = %v, want %v", tt.input, got.Sorted(), tt.want)
			}
		})
	}
}

func TestPlatformSet_Only(t *testing.T) {
	t.Parallel()

	if p, ok := NewPlatformSet(Web).Only(); !ok || p != Web {
		t.Errorf("Only() = %q, %v; want web, true", p, ok)
	}
	if _, ok := NewPlatformSet(Web, IOS).Only(); ok {
		t.Error("Only() should fail for two platforms")
	}
	if _, ok := NewPlatformSet().Only(); ok {
		t.Error("Only() should fail for an empty set")
	}
	if got := NewPlatformSet(Web, Android).String(); got != "android,web" {
		t.Errorf("String() = %q", got)
	}
}
