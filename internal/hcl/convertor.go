package hcl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Converter is the HCL-specific implementation of the config.Converter
// interface. Argument expressions may reference process environment
// variables as `env.NAME` and call the functions in the functions table.
type Converter struct {
	environ func() []string
}

// NewConverter creates a converter that reads the process environment.
func NewConverter() *Converter {
	return &Converter{environ: os.Environ}
}

// Arguments evaluates expr and converts the resulting object into a map.
func (c *Converter) Arguments(ctx context.Context, expr hcl.Expression) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)
	if expr == nil {
		return map[string]any{}, nil
	}

	val, diags := expr.Value(c.evalContext())
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating args: %w", diags)
	}
	if val.IsNull() {
		return map[string]any{}, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("args must be an object, got %s", val.Type().FriendlyName())
	}

	out, err := ctyValueToInterface(val)
	if err != nil {
		return nil, fmt.Errorf("converting args: %w", err)
	}
	args, _ := out.(map[string]any)
	logger.Debug("Evaluated task arguments.", "keys", len(args))
	return args, nil
}

func (c *Converter) evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range c.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{envRoot: cty.ObjectVal(env)},
		Functions: functions,
	}
}

// ctyValueToInterface converts a cty.Value into plain Go values. Numbers
// become int64 when integral and float64 otherwise.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			bf := val.AsBigFloat()
			if bf.IsInt() {
				if i, acc := bf.Int64(); acc == 0 {
					return i, nil
				}
			}
			f, _ := bf.Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}
