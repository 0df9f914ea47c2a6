package decl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/phanxgames/scrollreel"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodePropertyMap evaluates an object expression such as
// { alpha = 0, rotation = "-=300", tint = "#FBDE5E" }. A missing optional
// attribute evaluates to null and yields a nil map.
func decodePropertyMap(expr hcl.Expression) (scrollreel.PropertyMap, hcl.Diagnostics) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, hcl.Diagnostics{errorDiag("Invalid property map",
			fmt.Sprintf("Expected an object of property values, got %s.", ty.FriendlyName()), expr.Range().Ptr())}
	}
	if !val.IsWhollyKnown() {
		return nil, hcl.Diagnostics{errorDiag("Invalid property map",
			"Property values must be known when the document is loaded.", expr.Range().Ptr())}
	}

	attrs := val.AsValueMap()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(scrollreel.PropertyMap, len(attrs))
	for _, name := range names {
		prop, ok := scrollreel.ParseProperty(name)
		if !ok {
			diags = append(diags, errorDiag("Unknown property",
				fmt.Sprintf("%q is not an animatable property.", name), expr.Range().Ptr()))
			continue
		}
		v, err := propertyValue(prop, attrs[name])
		if err != nil {
			diags = append(diags, errorDiag("Invalid property value",
				fmt.Sprintf("Property %q: %s.", name, err), expr.Range().Ptr()))
			continue
		}
		out[prop] = v
	}
	return out, diags
}

// propertyValue converts one cty value to a Value fitting prop.
func propertyValue(prop scrollreel.Property, v cty.Value) (scrollreel.Value, error) {
	if v.IsNull() {
		return scrollreel.Value{}, fmt.Errorf("value is null")
	}

	var out scrollreel.Value
	switch v.Type() {
	case cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return scrollreel.Value{}, err
		}
		out = scrollreel.Num(f)
	case cty.String:
		parsed, err := parseValueString(v.AsString())
		if err != nil {
			return scrollreel.Value{}, err
		}
		out = parsed
	default:
		return scrollreel.Value{}, fmt.Errorf("expected a number or string, got %s", v.Type().FriendlyName())
	}

	if wantColor := prop == scrollreel.PropTint; wantColor != out.IsColor() {
		if wantColor {
			return scrollreel.Value{}, fmt.Errorf("expected a hex color, got %s", out)
		}
		return scrollreel.Value{}, fmt.Errorf("expected a number, got color %s", out)
	}
	return out, nil
}

// parseValueString handles "+=N", "-=N", "#rrggbb" and plain numbers.
func parseValueString(s string) (scrollreel.Value, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "+="), strings.HasPrefix(s, "-="):
		f, err := strconv.ParseFloat(strings.TrimSpace(s[2:]), 64)
		if err != nil {
			return scrollreel.Value{}, fmt.Errorf("invalid relative value %q", s)
		}
		if s[0] == '-' {
			f = -f
		}
		return scrollreel.Rel(f), nil
	case strings.HasPrefix(s, "#"):
		c, err := scrollreel.ParseHexColor(s)
		if err != nil {
			return scrollreel.Value{}, fmt.Errorf("invalid color %q", s)
		}
		return scrollreel.RGBA(c), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return scrollreel.Value{}, fmt.Errorf("invalid value %q", s)
	}
	return scrollreel.Num(f), nil
}

// parsePivot reads a two-element [x, y] pivot such as ["50%", "1700px"] or
// ["50%", "calc(80% + 250px)"].
func parsePivot(parts []string) (scrollreel.Pivot, error) {
	if len(parts) != 2 {
		return scrollreel.Pivot{}, fmt.Errorf("pivot needs exactly two components, got %d", len(parts))
	}
	xp, xo, err := parsePivotComponent(parts[0])
	if err != nil {
		return scrollreel.Pivot{}, err
	}
	yp, yo, err := parsePivotComponent(parts[1])
	if err != nil {
		return scrollreel.Pivot{}, err
	}
	return scrollreel.Pivot{XPercent: xp, XOffset: xo, YPercent: yp, YOffset: yo}, nil
}

func parsePivotComponent(s string) (percent, offset float64, err error) {
	t := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if strings.HasPrefix(t, "calc(") && strings.HasSuffix(t, ")") {
		t = t[len("calc(") : len(t)-1]
	}
	if t == "" {
		return 0, 0, fmt.Errorf("empty pivot component %q", s)
	}
	if i := strings.IndexByte(t, '%'); i >= 0 {
		if percent, err = strconv.ParseFloat(t[:i], 64); err != nil {
			return 0, 0, fmt.Errorf("invalid pivot component %q", s)
		}
		t = t[i+1:]
		if t == "" {
			return percent, 0, nil
		}
		if t[0] != '+' && t[0] != '-' {
			return 0, 0, fmt.Errorf("invalid pivot component %q", s)
		}
	}
	if offset, err = strconv.ParseFloat(strings.TrimSuffix(t, "px"), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid pivot component %q", s)
	}
	return percent, offset, nil
}

// parseTarget reads "cards" (every element) or "cards[2]" (one element).
func parseTarget(ref string) (scrollreel.Target, error) {
	ref = strings.TrimSpace(ref)
	open := strings.IndexByte(ref, '[')
	if open < 0 {
		if ref == "" {
			return scrollreel.Target{}, fmt.Errorf("empty target")
		}
		return scrollreel.All(ref), nil
	}
	if open == 0 || !strings.HasSuffix(ref, "]") {
		return scrollreel.Target{}, fmt.Errorf("invalid target %q", ref)
	}
	i, err := strconv.Atoi(ref[open+1 : len(ref)-1])
	if err != nil || i < 0 {
		return scrollreel.Target{}, fmt.Errorf("invalid target index in %q", ref)
	}
	return scrollreel.One(ref[:open], i), nil
}
