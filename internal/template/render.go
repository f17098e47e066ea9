// SPDX-License-Identifier: MPL-2.0

// Package template renders ${expr} text against the top-level entries of a
// config tree.
//
// Expressions use the HCL template language, so attribute and index access
// work inside an interpolation (${icons["android"]["36"]}). A literal "${" is
// written "$${" and a literal "%{" is written "%%{".
package template

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/workingBen/forge-demo/pkg/configtree"
)

var (
	// ErrUndefined is returned when an expression references a name that is
	// not a top-level config key.
	ErrUndefined = errors.New("undefined template variable")
	// ErrSyntax is returned when the text is not a valid template.
	ErrSyntax = errors.New("invalid template syntax")
	// ErrEvaluation is returned when an expression fails to evaluate or its
	// result cannot be rendered as text.
	ErrEvaluation = errors.New("template evaluation failed")
)

type (
	// RenderError describes a failed render.
	RenderError struct {
		// Text is the template source.
		Text string
		// Name is the undefined variable, if that caused the failure.
		Name string
		// Detail is the underlying diagnostic message.
		Detail string
		kind   error
	}

	// Renderer renders templates and caches their parsed form. It is safe
	// for concurrent use.
	Renderer struct {
		mu     sync.Mutex
		parsed map[string]hclsyntax.Expression
	}
)

func (e *RenderError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("render %q: %s %q", e.Text, e.kind, e.Name)
	}
	return fmt.Sprintf("render %q: %s: %s", e.Text, e.kind, e.Detail)
}

// Unwrap returns the sentinel describing the failure class.
func (e *RenderError) Unwrap() error { return e.kind }

var defaultRenderer = NewRenderer()

// NewRenderer creates a Renderer with an empty parse cache.
func NewRenderer() *Renderer {
	return &Renderer{parsed: make(map[string]hclsyntax.Expression)}
}

// Render renders text against config with a process-wide renderer.
func Render(config configtree.Map, text string) (string, error) {
	return defaultRenderer.Render(config, text)
}

// HasExpressions reports whether text contains any template markers.
func HasExpressions(text string) bool {
	return strings.Contains(text, "${") || strings.Contains(text, "%{")
}

// Render evaluates text against the top-level entries of config.
func (r *Renderer) Render(config configtree.Map, text string) (string, error) {
	if !HasExpressions(text) {
		return text, nil
	}

	expr, err := r.parse(text)
	if err != nil {
		return "", err
	}

	vars := Variables(config)
	for _, traversal := range expr.Variables() {
		if name := traversal.RootName(); !hasVar(vars, name) {
			return "", &RenderError{Text: text, Name: name, kind: ErrUndefined}
		}
	}

	val, diags := expr.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return "", &RenderError{Text: text, Detail: diags.Error(), kind: ErrEvaluation}
	}
	return asString(text, val)
}

func (r *Renderer) parse(text string) (hclsyntax.Expression, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if expr, ok := r.parsed[text]; ok {
		return expr, nil
	}
	expr, diags := hclsyntax.ParseTemplate([]byte(text), "template", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, &RenderError{Text: text, Detail: diags.Error(), kind: ErrSyntax}
	}
	r.parsed[text] = expr
	return expr, nil
}

func hasVar(vars map[string]cty.Value, name string) bool {
	_, ok := vars[name]
	return ok
}

func asString(text string, val cty.Value) (string, error) {
	if val.IsNull() {
		return "", &RenderError{Text: text, Detail: "expression evaluated to null", kind: ErrEvaluation}
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", &RenderError{
			Text:   text,
			Detail: fmt.Sprintf("cannot render %s as text", val.Type().FriendlyName()),
			kind:   ErrEvaluation,
		}
	}
	return str.AsString(), nil
}
