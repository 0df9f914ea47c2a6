package scrollreel

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RenderCommand is a single draw instruction emitted during scene traversal.
type RenderCommand struct {
	Node *Node

	// Transform is the node's world transform followed by the scroll view.
	Transform     [6]float64
	Width, Height float64
	// Color is the node's tint with its world alpha folded in.
	Color Color

	image     *ebiten.Image
	treeOrder int
}

// traverse walks the node tree depth-first, updating transforms and emitting
// render commands for visible sprites. Children are visited in ZIndex order,
// ties in insertion order.
//
// Sprites whose bounds fall outside the scroller's view are culled. Culling
// only suppresses the node's own command; its children are still visited
// since they may be placed anywhere.
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool, view [6]float64, treeOrder *int) {
	if !n.Visible {
		return
	}

	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = multiplyAffine(parentTransform, computeLocalTransform(n))
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	if n.Type == NodeTypeSprite && n.worldAlpha > 0 && !s.shouldCull(n) {
		*treeOrder++
		c := n.Color
		c.A *= n.worldAlpha
		s.commands = append(s.commands, RenderCommand{
			Node:      n,
			Transform: multiplyAffine(view, n.worldTransform),
			Width:     n.Width,
			Height:    n.Height,
			Color:     c,
			image:     n.customImage,
			treeOrder: *treeOrder,
		})
	}

	for _, child := range zOrdered(n.children) {
		s.traverse(child, n.worldTransform, n.worldAlpha, recompute, view, treeOrder)
	}
}

// shouldCull reports whether n's world bounds miss the visible page area.
func (s *Scene) shouldCull(n *Node) bool {
	return !s.cullBounds.Intersects(worldAABB(n.worldTransform, n.Width, n.Height))
}

// zOrdered returns children sorted by ZIndex. It returns children itself when
// already ordered; otherwise it returns a copy sorted with a stable
// insertion sort.
func zOrdered(children []*Node) []*Node {
	sorted := true
	for i := 1; i < len(children); i++ {
		if children[i].ZIndex < children[i-1].ZIndex {
			sorted = false
			break
		}
	}
	if sorted {
		return children
	}
	out := append([]*Node(nil), children...)
	for i := 1; i < len(out); i++ {
		key := out[i]
		j := i - 1
		for j >= 0 && out[j].ZIndex > key.ZIndex {
			out[j+1] = out[j]
			j--
		}
		out[j+1] = key
	}
	return out
}

// buildCommands refreshes s.commands for the current scroll position.
func (s *Scene) buildCommands() {
	s.commands = s.commands[:0]
	s.cullBounds = s.scroller.VisibleBounds()
	treeOrder := 0
	s.traverse(s.root, identityTransform, 1.0, false, s.scroller.viewMatrix(), &treeOrder)
}

// submit draws every command onto target. Sprites without an image draw a
// stretched white pixel tinted by their color.
func (s *Scene) submit(target *ebiten.Image) {
	for i := range s.commands {
		cmd := &s.commands[i]
		img := cmd.image
		var sx, sy float64
		if img != nil {
			b := img.Bounds()
			if b.Dx() == 0 || b.Dy() == 0 {
				continue
			}
			sx, sy = cmd.Width/float64(b.Dx()), cmd.Height/float64(b.Dy())
		} else {
			img = s.pixel()
			sx, sy = cmd.Width, cmd.Height
		}

		var op ebiten.DrawImageOptions
		m := cmd.Transform
		op.GeoM.Scale(sx, sy)
		var geo ebiten.GeoM
		geo.SetElement(0, 0, m[0])
		geo.SetElement(1, 0, m[1])
		geo.SetElement(0, 1, m[2])
		geo.SetElement(1, 1, m[3])
		geo.SetElement(0, 2, m[4])
		geo.SetElement(1, 2, m[5])
		op.GeoM.Concat(geo)
		op.ColorScale.ScaleWithColor(cmd.Color.toRGBA())
		op.Filter = ebiten.FilterLinear
		target.DrawImage(img, &op)
	}
}

func (s *Scene) pixel() *ebiten.Image {
	if s.whitePixel == nil {
		s.whitePixel = ebiten.NewImage(1, 1)
		s.whitePixel.Fill(ColorWhite.toRGBA())
	}
	return s.whitePixel
}
