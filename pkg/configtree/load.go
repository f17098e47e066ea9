// SPDX-License-Identifier: MPL-2.0

package configtree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/workingBen/forge-demo/pkg/cueutil"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Load reads an app config file and decodes it into a Map. The format is
// picked from the extension: .json, .yaml/.yml or .cue.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read app config: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return DecodeJSON(data, path)
	case ".yaml", ".yml":
		return DecodeYAML(data, path)
	case ".cue":
		return DecodeCUE(data, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// DecodeJSON decodes a JSON object into a Map. Numbers decode as float64.
// Syntax errors are reported as file:line:column.
func DecodeJSON(data []byte, filename string) (Map, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var out Map
	if err := dec.Decode(&out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, col := position(data, syntaxErr.Offset)
			return nil, fmt.Errorf("%s:%d:%d: invalid JSON: %w", filename, line, col, err)
		}
		return nil, fmt.Errorf("%s is not valid JSON: %w", filename, err)
	}
	if out == nil {
		out = Map{}
	}
	return out, nil
}

// DecodeYAML decodes a YAML document into a Map. Nested mappings are
// normalized to Map so the path-transform engine sees a uniform shape.
func DecodeYAML(data []byte, filename string) (Map, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s is not valid YAML: %w", filename, err)
	}
	if raw == nil {
		return Map{}, nil
	}
	m, ok := normalizeYAML(raw).(Map)
	if !ok {
		return nil, fmt.Errorf("%s: top-level YAML value must be a mapping", filename)
	}
	return m, nil
}

// DecodeCUE evaluates a CUE file and decodes its concrete value into a Map.
func DecodeCUE(data []byte, filename string) (Map, error) {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(data, cue.Filename(filename))
	if val.Err() != nil {
		return nil, cueutil.FormatError(val.Err(), filename)
	}
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return nil, cueutil.FormatError(err, filename)
	}
	var out Map
	if err := val.Decode(&out); err != nil {
		return nil, cueutil.FormatError(err, filename)
	}
	if out == nil {
		out = Map{}
	}
	return out, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = len(before) - bytes.LastIndexByte(before, '\n')
	return line, col
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(Map, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}
