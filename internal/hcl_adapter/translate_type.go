// This file contains the logic for converting HCL attribute values into Go
// duration values. Operators may write either a duration string ("5s",
// "250ms") or a bare number of milliseconds.

package hcl_adapter

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// durationFromExpr evaluates a captured attribute expression into a
// time.Duration, returning def when the attribute was absent.
func durationFromExpr(expr hcl.Expression, name string, def time.Duration) (time.Duration, error) {
	if expr == nil {
		return def, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("failed to evaluate %s: %w", name, diags)
	}
	if val.IsNull() {
		return def, nil
	}

	switch val.Type() {
	case cty.String:
		d, err := time.ParseDuration(val.AsString())
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", name, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%s must be positive, got %s", name, d)
		}
		return d, nil
	case cty.Number:
		var ms int64
		if err := gocty.FromCtyValue(val, &ms); err != nil {
			return 0, fmt.Errorf("invalid number for %s: %w", name, err)
		}
		if ms <= 0 {
			return 0, fmt.Errorf("%s must be positive, got %dms", name, ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	default:
		return 0, fmt.Errorf("%s must be a duration string or a number of milliseconds, got %s", name, val.Type().FriendlyName())
	}
}
