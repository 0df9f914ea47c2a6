package scrollreel

import (
	"strings"

	"github.com/tanema/gween/ease"
)

// EasingFn maps local segment progress in [0, 1] to an interpolation factor.
// Easings must return 0 at 0 and 1 at 1.
type EasingFn func(t float64) float64

// Linear is the identity easing, evaluated in float64.
func Linear(t float64) float64 { return t }

// FromTween adapts a gween easing function to an EasingFn.
func FromTween(fn ease.TweenFunc) EasingFn {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return float64(fn(float32(t), 0, 1, 1))
	}
}

// easeFamilies maps GSAP-style family names to gween in/out/inOut variants.
var easeFamilies = map[string][3]ease.TweenFunc{
	"power1":  {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"quad":    {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"power2":  {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"cubic":   {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"power3":  {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"quart":   {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"power4":  {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"quint":   {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"sine":    {ease.InSine, ease.OutSine, ease.InOutSine},
	"expo":    {ease.InExpo, ease.OutExpo, ease.InOutExpo},
	"circ":    {ease.InCirc, ease.OutCirc, ease.InOutCirc},
	"back":    {ease.InBack, ease.OutBack, ease.InOutBack},
	"elastic": {ease.InElastic, ease.OutElastic, ease.InOutElastic},
	"bounce":  {ease.InBounce, ease.OutBounce, ease.InOutBounce},
}

// LookupEase resolves an easing name such as "power2", "power1.inOut",
// "sine.in" or "none". A bare family name means its ".out" variant.
func LookupEase(name string) (EasingFn, bool) {
	fn, ok := lookupTween(name)
	if !ok {
		return nil, false
	}
	if fn == nil {
		return Linear, true
	}
	return FromTween(fn), true
}

// LookupTween resolves an easing name to a gween function for time-based
// tweens. "none" and "linear" map to ease.Linear.
func LookupTween(name string) (ease.TweenFunc, bool) {
	fn, ok := lookupTween(name)
	if ok && fn == nil {
		fn = ease.Linear
	}
	return fn, ok
}

// lookupTween returns a nil function for linear names.
func lookupTween(name string) (ease.TweenFunc, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "none", "linear":
		return nil, true
	}
	family, variant, _ := strings.Cut(name, ".")
	fns, ok := easeFamilies[family]
	if !ok {
		return nil, false
	}
	switch variant {
	case "in":
		return fns[0], true
	case "", "out":
		return fns[1], true
	case "inout":
		return fns[2], true
	}
	return nil, false
}

// EaseByName is LookupEase for names known to be valid; unknown names fall
// back to Linear.
func EaseByName(name string) EasingFn {
	fn, ok := LookupEase(name)
	if !ok {
		return Linear
	}
	return fn
}
