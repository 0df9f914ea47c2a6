package scrollreel

import "fmt"

// Pivot is a transform origin relative to an element's box:
// x = Width*XPercent/100 + XOffset, y = Height*YPercent/100 + YOffset.
// "50% 1700px" is Pivot{XPercent: 50, YOffset: 1700}.
type Pivot struct {
	XPercent, XOffset float64
	YPercent, YOffset float64
}

// Resolve returns the pivot in local pixels for a box of size w×h.
func (p Pivot) Resolve(w, h float64) (x, y float64) {
	return w*p.XPercent/100 + p.XOffset, h*p.YPercent/100 + p.YOffset
}

// AngleAssignment is an element's static place on a ring.
type AngleAssignment struct {
	ElementIndex int
	AngleDegrees float64
	Pivot        Pivot
}

// AngleStep returns 360/n, or 0 when n < 1.
func AngleStep(n int) float64 {
	if n < 1 {
		return 0
	}
	return 360 / float64(n)
}

// LayoutRing assigns element i of n the angle i*(360/n) about pivot, so the
// elements sit evenly spaced on a circle through the pivot.
func LayoutRing(n int, pivot Pivot) []AngleAssignment {
	step := AngleStep(n)
	out := make([]AngleAssignment, n)
	for i := range out {
		out[i] = AngleAssignment{
			ElementIndex: i,
			AngleDegrees: float64(i) * step,
			Pivot:        pivot,
		}
	}
	return out
}

// Ring arranges one element set around its own pivot.
type Ring struct {
	Set   string
	Pivot Pivot
}

// ringLayout is a ring bound to its nodes. origins are the untransformed
// top-left corners captured before the first layout; saved holds the
// geometry restore puts back.
type ringLayout struct {
	ring        Ring
	nodes       []*Node
	assignments []AngleAssignment
	origins     []Vec2
	saved       []ringNodeState
}

type ringNodeState struct {
	x, y, pivotX, pivotY, rotation float64
}

func newRingLayout(ring Ring, elems Elements) (*ringLayout, error) {
	set, ok := elems[ring.Set]
	if !ok {
		return nil, fmt.Errorf("ring %q: %w", ring.Set, ErrUnknownSet)
	}
	nodes, err := set.Resolve()
	if err != nil {
		return nil, fmt.Errorf("ring %q: %w", ring.Set, err)
	}
	rl := &ringLayout{
		ring:        ring,
		nodes:       nodes,
		assignments: LayoutRing(len(nodes), ring.Pivot),
		origins:     make([]Vec2, len(nodes)),
		saved:       make([]ringNodeState, len(nodes)),
	}
	for i, n := range nodes {
		rl.origins[i] = Vec2{X: n.X - n.PivotX, Y: n.Y - n.PivotY}
		rl.saved[i] = ringNodeState{x: n.X, y: n.Y, pivotX: n.PivotX, pivotY: n.PivotY, rotation: n.Rotation}
	}
	return rl, nil
}

// apply writes each element's static angle and pivot. The box stays where
// the layout layer put it; only the rotation origin moves.
func (rl *ringLayout) apply() {
	for i, a := range rl.assignments {
		n := rl.nodes[i]
		rl.place(i)
		n.SetRotationDegrees(a.AngleDegrees)
	}
}

// place recomputes the pivot from the current element size.
func (rl *ringLayout) place(i int) {
	n := rl.nodes[i]
	px, py := rl.assignments[i].Pivot.Resolve(n.Width, n.Height)
	n.SetPivot(px, py)
	n.SetPosition(rl.origins[i].X+px, rl.origins[i].Y+py)
}

// relayout refreshes geometry after a resize without touching rotation.
func (rl *ringLayout) relayout() {
	for i := range rl.nodes {
		rl.place(i)
	}
}

// restore puts back the geometry captured before apply.
func (rl *ringLayout) restore() {
	for i, n := range rl.nodes {
		st := rl.saved[i]
		n.SetPivot(st.pivotX, st.pivotY)
		n.SetPosition(st.x, st.y)
		n.SetRotation(st.rotation)
	}
}
