// SPDX-License-Identifier: MPL-2.0

package configtree

import (
	"errors"
	"reflect"
	"testing"
)

func TestParsePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr    string
		want    Path
		wantErr bool
	}{
		{expr: "a", want: Path{{Kind: SegmentKey, Key: "a"}}},
		{expr: "a.[].b", want: Path{{Kind: SegmentKey, Key: "a"}, {Kind: SegmentEach}, {Kind: SegmentKey, Key: "b"}}},
		{expr: "icons.*", want: Path{{Kind: SegmentKey, Key: "icons"}, {Kind: SegmentWildcard}}},
		{expr: "36", want: Path{{Kind: SegmentKey, Key: "36"}}},
		{expr: "", wantErr: true},
		{expr: "a.", wantErr: true},
		{expr: ".a", wantErr: true},
		{expr: "a[]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePath(tt.expr)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPath) {
					t.Fatalf("ParsePath(%q) error = %v, want ErrInvalidPath", tt.expr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q) unexpected error: %v", tt.expr, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePath(%q) = %v, want %v", tt.expr, got, tt.want)
			}
			if got.String() != tt.expr {
				t.Errorf("String() = %q, want %q", got.String(), tt.expr)
			}
		})
	}
}

func FuzzParsePath(f *testing.F) {
	for _, seed := range []string{"a", "a.[].b", "*.x", "..", "[]", "a[b]"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, expr string) {
		p, err := ParsePath(expr)
		if err != nil {
			return
		}
		if len(p) == 0 {
			t.Fatalf("ParsePath(%q) returned an empty path without error", expr)
		}
		if p.String() != expr {
			t.Fatalf("ParsePath(%q).String() = %q", expr, p.String())
		}
	})
}
