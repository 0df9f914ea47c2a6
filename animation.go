package scrollreel

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup is a time-driven animation of node properties, for effects
// that run on their own clock after a completion event (fading in a label,
// say). Call Update(dt) each frame. If the node is disposed, or an attached
// timeline owns it, the group stops without writing.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	target *Node
	props  []Property
	from   []Value
	to     []Value
	clock  *gween.Tween
	Done   bool
}

// NewTween animates each property in to from the node's current value over
// duration seconds. Relative values resolve against the current value.
func NewTween(node *Node, to PropertyMap, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	if fn == nil {
		fn = ease.Linear
	}
	g := &TweenGroup{target: node, clock: gween.New(0, 1, duration, fn)}
	for _, p := range sortedProps(to) {
		v := to[p]
		if err := checkValue(p, v); err != nil {
			return nil, err
		}
		cur := readProperty(node, p)
		g.props = append(g.props, p)
		g.from = append(g.from, cur)
		g.to = append(g.to, v.resolve(cur))
	}
	return g, nil
}

// Update advances the tween by dt seconds and writes the values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target == nil || g.target.IsDisposed() || g.target.owner != nil {
		g.Done = true
		return
	}

	k, finished := g.clock.Update(dt)
	if finished {
		k = 1
	}
	for i, p := range g.props {
		writeProperty(g.target, p, interpolate(g.from[i], g.to[i], float64(k)))
	}
	g.Done = finished
}

// TweenAlpha animates node.Alpha to the target value.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, _ := NewTween(node, PropertyMap{PropAlpha: Num(to)}, duration, fn)
	return g
}

// TweenPosition animates node.X and node.Y to the target coordinates.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, _ := NewTween(node, PropertyMap{PropX: Num(toX), PropY: Num(toY)}, duration, fn)
	return g
}

// TweenColor animates node.Color to the target color.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, _ := NewTween(node, PropertyMap{PropTint: RGBA(to)}, duration, fn)
	return g
}
