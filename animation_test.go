package scrollreel

import (
	"errors"
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPositionReachesTarget(t *testing.T) {
	node := NewContainer("pos")
	node.X = 10
	node.Y = 20

	g := TweenPosition(node, 100, 200, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.X-100) > 0.5 || math.Abs(node.Y-200) > 0.5 {
		t.Errorf("position = (%f, %f), want ~(100, 200)", node.X, node.Y)
	}
}

func TestTweenAlphaInterpolates(t *testing.T) {
	node := NewSprite("label", 10, 10)
	node.Alpha = 0

	g := TweenAlpha(node, 1, 1.0, ease.Linear)
	g.Update(0.5)
	if g.Done {
		t.Error("should not be done halfway")
	}
	if math.Abs(node.Alpha-0.5) > 0.01 {
		t.Errorf("alpha = %f, want ~0.5", node.Alpha)
	}
	g.Update(0.5)
	if !g.Done || node.Alpha != 1 {
		t.Errorf("done = %v alpha = %f, want true/1", g.Done, node.Alpha)
	}
}

func TestTweenColorReachesTarget(t *testing.T) {
	node := NewSprite("c", 10, 10)
	node.Color = Color{R: 1, G: 0, B: 0, A: 1}
	target := Color{R: 0, G: 1, B: 0.5, A: 0.5}

	g := TweenColor(node, target, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)
	if node.Color != target {
		t.Errorf("color = %+v, want %+v", node.Color, target)
	}
}

func TestNewTweenRelative(t *testing.T) {
	node := NewSprite("n", 10, 10)
	node.SetRotationDegrees(30)

	g, err := NewTween(node, PropertyMap{PropRotation: Rel(90)}, 1.0, nil)
	if err != nil {
		t.Fatal(err)
	}
	g.Update(1.0)
	if math.Abs(node.RotationDegrees()-120) > 1e-6 {
		t.Errorf("rotation = %f, want 120", node.RotationDegrees())
	}
}

func TestNewTweenInvalidValue(t *testing.T) {
	_, err := NewTween(NewSprite("n", 1, 1), PropertyMap{PropAlpha: RGBA(ColorWhite)}, 1, ease.Linear)
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("err = %v, want ErrInvalidValue", err)
	}
}

func TestTweenGroupMarksDirty(t *testing.T) {
	node := NewContainer("dirty")
	node.UpdateTransforms()
	g := TweenPosition(node, 50, 50, 1.0, ease.Linear)
	g.Update(0.1)
	if !node.transformDirty {
		t.Error("tween should mark the node dirty")
	}
}

func TestTweenGroupDisposedNode(t *testing.T) {
	node := NewContainer("gone")
	g := TweenAlpha(node, 0, 1.0, ease.Linear)
	node.Dispose()
	g.Update(0.5)
	if !g.Done {
		t.Error("tween on a disposed node should finish")
	}
}

func TestTweenGroupSkipsOwnedNode(t *testing.T) {
	f := newCarouselFixture()
	h, err := Attach(f.src, f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	card := f.cards[0]
	before := card.Alpha
	g := TweenAlpha(card, 0, 1.0, ease.Linear)
	g.Update(0.5)
	if !g.Done {
		t.Error("tween on a node owned by a timeline should stop")
	}
	if card.Alpha != before {
		t.Errorf("alpha = %f, want untouched %f", card.Alpha, before)
	}
}
