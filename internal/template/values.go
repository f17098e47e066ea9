// SPDX-License-Identifier: MPL-2.0

package template

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/workingBen/forge-demo/pkg/configtree"
)

// Variables exposes the top-level entries of config as template variables.
// Keys that are not valid identifiers are left out.
func Variables(config configtree.Map) map[string]cty.Value {
	vars := make(map[string]cty.Value, len(config))
	for key, val := range config {
		if !hclsyntax.ValidIdentifier(key) {
			continue
		}
		vars[key] = toCty(val)
	}
	return vars
}

// toCty converts a config tree value into a cty value. Mappings become
// objects so that keys like "36" stay reachable by index.
func toCty(v any) cty.Value {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case string:
		return cty.StringVal(t)
	case bool:
		return cty.BoolVal(t)
	case float64:
		return cty.NumberFloatVal(t)
	case float32:
		return cty.NumberFloatVal(float64(t))
	case int:
		return cty.NumberIntVal(int64(t))
	case int64:
		return cty.NumberIntVal(t)
	case uint64:
		return cty.NumberUIntVal(t)
	case configtree.Map:
		attrs := make(map[string]cty.Value, len(t))
		for key, val := range t {
			attrs[key] = toCty(val)
		}
		return cty.ObjectVal(attrs)
	case []any:
		elems := make([]cty.Value, len(t))
		for i, val := range t {
			elems[i] = toCty(val)
		}
		return cty.TupleVal(elems)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]cty.Value, rv.Len())
		for i := range elems {
			elems[i] = toCty(rv.Index(i).Interface())
		}
		return cty.TupleVal(elems)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return cty.NumberIntVal(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return cty.NumberUIntVal(rv.Uint())
	default:
		return cty.StringVal(fmt.Sprint(v))
	}
}
