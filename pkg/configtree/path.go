// SPDX-License-Identifier: MPL-2.0

package configtree

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SegmentKey selects a literal key of a mapping.
	SegmentKey SegmentKind = iota
	// SegmentEach iterates every element of a sequence ("[]").
	SegmentEach
	// SegmentWildcard selects every value of a mapping ("*").
	SegmentWildcard
)

// ErrInvalidPath is the sentinel error wrapped by InvalidPathError.
var ErrInvalidPath = errors.New("invalid path expression")

type (
	// SegmentKind distinguishes the three path segment forms.
	SegmentKind int

	// Segment is one element of a parsed Path.
	Segment struct {
		Kind SegmentKind
		// Key is the literal key name; empty unless Kind is SegmentKey.
		Key string
	}

	// Path is a parsed path expression.
	Path []Segment

	// InvalidPathError is returned when a path expression cannot be parsed.
	InvalidPathError struct {
		Expr   string
		Reason string
	}
)

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path expression %q: %s", e.Expr, e.Reason)
}

// Unwrap returns ErrInvalidPath for errors.Is compatibility.
func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }

// ParsePath parses expr according to the grammar
//
//	path    ::= segment ("." segment)*
//	segment ::= key | "[]" | "*"
//
// Keys are taken literally; they may contain any character except ".".
func ParsePath(expr string) (Path, error) {
	if expr == "" {
		return nil, &InvalidPathError{Expr: expr, Reason: "empty expression"}
	}
	parts := strings.Split(expr, ".")
	path := make(Path, 0, len(parts))
	for i, part := range parts {
		switch {
		case part == "":
			return nil, &InvalidPathError{Expr: expr, Reason: fmt.Sprintf("segment %d is empty", i)}
		case part == "[]":
			path = append(path, Segment{Kind: SegmentEach})
		case part == "*":
			path = append(path, Segment{Kind: SegmentWildcard})
		case strings.ContainsAny(part, "[]"):
			return nil, &InvalidPathError{Expr: expr, Reason: fmt.Sprintf("segment %q mixes a key with brackets", part)}
		default:
			path = append(path, Segment{Kind: SegmentKey, Key: part})
		}
	}
	return path, nil
}

// MustParsePath is like ParsePath but panics on malformed expressions.
// Path expressions are declared in code, so a bad one is a programming error.
func MustParsePath(expr string) Path {
	p, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path back to its expression form.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// String renders a single segment.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentEach:
		return "[]"
	case SegmentWildcard:
		return "*"
	default:
		return s.Key
	}
}
