package scrollreel

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Property identifies an animatable field of a Node.
type Property uint8

const (
	PropX        Property = iota // Node.X
	PropY                        // Node.Y
	PropScale                    // Node.ScaleX and Node.ScaleY together
	PropScaleX                   // Node.ScaleX
	PropScaleY                   // Node.ScaleY
	PropRotation                 // Node.Rotation, expressed in degrees
	PropAlpha                    // Node.Alpha
	PropTint                     // Node.Color
)

var propertyNames = [...]string{
	PropX:        "x",
	PropY:        "y",
	PropScale:    "scale",
	PropScaleX:   "scale_x",
	PropScaleY:   "scale_y",
	PropRotation: "rotation",
	PropAlpha:    "alpha",
	PropTint:     "tint",
}

func (p Property) String() string {
	if int(p) < len(propertyNames) {
		return propertyNames[p]
	}
	return fmt.Sprintf("Property(%d)", p)
}

// ParseProperty maps a property name ("rotation", "alpha", ...) to a Property.
// "opacity" and "color" are accepted as aliases.
func ParseProperty(name string) (Property, bool) {
	switch name {
	case "opacity":
		return PropAlpha, true
	case "color", "background_color":
		return PropTint, true
	}
	for i, n := range propertyNames {
		if n == name {
			return Property(i), true
		}
	}
	return 0, false
}

// isColor reports whether the property holds a Color rather than a number.
func (p Property) isColor() bool {
	return p == PropTint
}

type valueKind uint8

const (
	kindNumber valueKind = iota
	kindColor
	kindRelative
)

// Value is a property value: an absolute number, a color, or a numeric
// delta relative to the element's value at the start of the segment.
type Value struct {
	kind  valueKind
	num   float64
	color Color
}

// Num returns an absolute numeric value.
func Num(v float64) Value { return Value{kind: kindNumber, num: v} }

// Rel returns a delta applied to the element's value at segment start,
// the equivalent of "+=delta".
func Rel(delta float64) Value { return Value{kind: kindRelative, num: delta} }

// RGBA returns a color value.
func RGBA(c Color) Value { return Value{kind: kindColor, color: c} }

// Float returns the numeric value (or delta for relative values).
func (v Value) Float() float64 { return v.num }

// Color returns the color held by a color value.
func (v Value) Color() Color { return v.color }

// IsRelative reports whether v is a relative delta.
func (v Value) IsRelative() bool { return v.kind == kindRelative }

// IsColor reports whether v holds a color.
func (v Value) IsColor() bool { return v.kind == kindColor }

func (v Value) String() string {
	switch v.kind {
	case kindColor:
		return v.color.Hex()
	case kindRelative:
		if v.num < 0 {
			return fmt.Sprintf("-=%g", -v.num)
		}
		return fmt.Sprintf("+=%g", v.num)
	default:
		return fmt.Sprintf("%g", v.num)
	}
}

// PropertyMap holds per-property values for one end of a segment.
type PropertyMap map[Property]Value

// checkValue validates that v fits property p.
func checkValue(p Property, v Value) error {
	if p > PropTint {
		return fmt.Errorf("%w: unknown property %d", ErrInvalidValue, p)
	}
	if p.isColor() != v.IsColor() {
		return fmt.Errorf("%w: %s cannot hold %s", ErrInvalidValue, p, v)
	}
	return nil
}

// resolve turns a possibly relative value into an absolute one, given the
// value the element holds when the segment begins.
func (v Value) resolve(current Value) Value {
	if v.kind != kindRelative {
		return v
	}
	return Num(current.num + v.num)
}

// interpolate computes from + k*(to-from). Colors blend component-wise in
// linear RGB; alpha blends linearly. The endpoints are returned exactly.
func interpolate(from, to Value, k float64) Value {
	if k <= 0 {
		return from
	}
	if k >= 1 {
		return to
	}
	if from.kind == kindColor {
		a := colorful.Color{R: from.color.R, G: from.color.G, B: from.color.B}
		b := colorful.Color{R: to.color.R, G: to.color.G, B: to.color.B}
		m := a.BlendLinearRgb(b, k)
		return RGBA(Color{
			R: m.R,
			G: m.G,
			B: m.B,
			A: from.color.A + (to.color.A-from.color.A)*k,
		})
	}
	return Num(k*(to.num-from.num) + from.num)
}

// readProperty returns the node's current value for p.
func readProperty(n *Node, p Property) Value {
	switch p {
	case PropX:
		return Num(n.X)
	case PropY:
		return Num(n.Y)
	case PropScale, PropScaleX:
		return Num(n.ScaleX)
	case PropScaleY:
		return Num(n.ScaleY)
	case PropRotation:
		return Num(n.RotationDegrees())
	case PropAlpha:
		return Num(n.Alpha)
	case PropTint:
		return RGBA(n.Color)
	}
	return Value{}
}

// writeProperty stores v into the node and marks it dirty.
func writeProperty(n *Node, p Property, v Value) {
	switch p {
	case PropX:
		n.X = v.num
	case PropY:
		n.Y = v.num
	case PropScale:
		n.ScaleX = v.num
		n.ScaleY = v.num
	case PropScaleX:
		n.ScaleX = v.num
	case PropScaleY:
		n.ScaleY = v.num
	case PropRotation:
		n.SetRotationDegrees(v.num)
	case PropAlpha:
		n.Alpha = v.num
	case PropTint:
		n.Color = v.color
	}
	n.MarkDirty()
}
