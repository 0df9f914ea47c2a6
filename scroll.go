package scrollreel

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ScrollContext carries a scroll signal.
type ScrollContext struct {
	Offset float64
	Delta  float64
}

// ResizeContext carries a viewport resize signal.
type ResizeContext struct {
	Width, Height float64
}

// SignalSource supplies scroll offsets and viewport geometry. Handlers run
// synchronously on the host's event loop, in registration order, one signal
// at a time.
type SignalSource interface {
	ScrollOffset() float64
	Viewport() (width, height float64)
	OnScroll(fn func(ScrollContext)) CallbackHandle
	OnResize(fn func(ResizeContext)) CallbackHandle
}

// Scroller is the page's vertical scroll position and viewport. It reads
// only what the host feeds it and dispatches every change immediately.
type Scroller struct {
	offset        float64
	width, height float64

	// BoundsEnabled clamps the offset to [0, MaxOffset].
	BoundsEnabled bool
	MaxOffset     float64

	handlers handlerRegistry
	tween    *gween.Tween
}

// NewScroller creates a scroller for a viewport of the given size.
func NewScroller(width, height float64) *Scroller {
	return &Scroller{width: width, height: height}
}

// ScrollOffset returns the current offset from the top of the page.
func (s *Scroller) ScrollOffset() float64 { return s.offset }

// Viewport returns the viewport size.
func (s *Scroller) Viewport() (float64, float64) { return s.width, s.height }

// OnScroll registers a scroll handler.
func (s *Scroller) OnScroll(fn func(ScrollContext)) CallbackHandle {
	return s.handlers.onScroll(fn)
}

// OnResize registers a resize handler.
func (s *Scroller) OnResize(fn func(ResizeContext)) CallbackHandle {
	return s.handlers.onResize(fn)
}

// SetBounds enables clamping to [0, maxOffset].
func (s *Scroller) SetBounds(maxOffset float64) {
	s.BoundsEnabled = true
	s.MaxOffset = maxOffset
}

// SetOffset jumps to offset, cancels any smooth scroll and dispatches.
func (s *Scroller) SetOffset(offset float64) {
	s.tween = nil
	s.moveTo(offset)
}

// ScrollBy moves the offset by delta.
func (s *Scroller) ScrollBy(delta float64) {
	s.SetOffset(s.offset + delta)
}

// ScrollTo animates the offset to target over duration seconds. Each frame
// of the animation is dispatched as its own scroll signal.
func (s *Scroller) ScrollTo(target float64, duration float32, easeFn ease.TweenFunc) {
	if duration <= 0 {
		s.SetOffset(target)
		return
	}
	s.tween = gween.New(float32(s.offset), float32(s.clamp(target)), duration, easeFn)
}

// Scrolling reports whether a smooth scroll is in progress.
func (s *Scroller) Scrolling() bool {
	return s.tween != nil
}

// Resize updates the viewport and dispatches a resize signal.
func (s *Scroller) Resize(width, height float64) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	ctx := ResizeContext{Width: width, Height: height}
	for _, h := range s.handlers.resize {
		h.fn(ctx)
	}
}

// update advances a smooth scroll by dt seconds.
func (s *Scroller) update(dt float32) {
	if s.tween == nil {
		return
	}
	val, done := s.tween.Update(dt)
	if done {
		s.tween = nil
	}
	s.moveTo(float64(val))
}

func (s *Scroller) clamp(offset float64) float64 {
	if !s.BoundsEnabled {
		return offset
	}
	return math.Max(0, math.Min(offset, s.MaxOffset))
}

func (s *Scroller) moveTo(offset float64) {
	offset = s.clamp(offset)
	if offset == s.offset {
		return
	}
	ctx := ScrollContext{Offset: offset, Delta: offset - s.offset}
	s.offset = offset
	for _, h := range s.handlers.scroll {
		h.fn(ctx)
	}
}

// viewMatrix maps page space to screen space.
func (s *Scroller) viewMatrix() [6]float64 {
	return [6]float64{1, 0, 0, 1, 0, -s.offset}
}

// PageToScreen converts page coordinates to screen coordinates.
func (s *Scroller) PageToScreen(x, y float64) (float64, float64) {
	return transformPoint(s.viewMatrix(), x, y)
}

// ScreenToPage converts screen coordinates to page coordinates.
func (s *Scroller) ScreenToPage(x, y float64) (float64, float64) {
	return transformPoint(invertAffine(s.viewMatrix()), x, y)
}

// VisibleBounds returns the page-space rectangle currently in view.
func (s *Scroller) VisibleBounds() Rect {
	return Rect{X: 0, Y: s.offset, Width: s.width, Height: s.height}
}
