package scrollreel

import "fmt"

// TriggerRegion is the scroll-offset span over which progress runs from 0
// to 1. While the offset lies inside [Start, End] and Pin is set, the
// region's content is held fixed in the viewport.
type TriggerRegion struct {
	Start, End float64
	Pin        bool
}

// Span returns End - Start.
func (r TriggerRegion) Span() float64 {
	return r.End - r.Start
}

func (r TriggerRegion) validate() error {
	if !(r.End > r.Start) {
		return fmt.Errorf("trigger region [%g, %g]: %w", r.Start, r.End, ErrDegenerateRegion)
	}
	return nil
}

// TriggerAnchor describes a trigger region in page geometry, so it can be
// re-resolved when the viewport changes size.
//
// The region starts when the trigger's top edge reaches ViewportFraction of
// the viewport height (0 = "top top", 0.5 = "top center") and lasts
// Span + SpanViewports*viewportHeight pixels of scrolling.
type TriggerAnchor struct {
	// Node is the trigger element. When set it identifies the region for
	// attachment bookkeeping and is the content held in place while pinned.
	Node *Node
	// Top is the trigger element's top edge in page coordinates.
	Top              float64
	ViewportFraction float64
	Span             float64
	SpanViewports    float64
	Pin              bool
}

// Resolve computes the scroll-offset region for a viewport of height vh.
func (a TriggerAnchor) Resolve(vh float64) TriggerRegion {
	start := a.Top - a.ViewportFraction*vh
	return TriggerRegion{
		Start: start,
		End:   start + a.Span + a.SpanViewports*vh,
		Pin:   a.Pin,
	}
}

// ProgressState is the progress value published by a ProgressSource.
type ProgressState struct {
	Value     float64
	Direction Direction
	Pinned    bool
}

// ProgressSource converts scroll offsets into ProgressState for one
// trigger region. It is the only writer of its state.
type ProgressSource struct {
	region      TriggerRegion
	state       ProgressState
	initialized bool
}

// NewProgressSource returns a source for region, or ErrDegenerateRegion if
// the region has no extent.
func NewProgressSource(region TriggerRegion) (*ProgressSource, error) {
	if err := region.validate(); err != nil {
		return nil, err
	}
	return &ProgressSource{region: region}, nil
}

// Region returns the current trigger region.
func (s *ProgressSource) Region() TriggerRegion {
	return s.region
}

// State returns the last published state.
func (s *ProgressSource) State() ProgressState {
	return s.state
}

// SetRegion replaces the region after a geometry change. The published
// progress is kept; it follows the new region on the next Update.
func (s *ProgressSource) SetRegion(region TriggerRegion) error {
	if err := region.validate(); err != nil {
		return err
	}
	s.region = region
	return nil
}

// Update maps a scroll offset to progress. It reports whether the state
// changed; outside the region the value holds at 0 or 1 and repeated
// offsets there produce no change.
func (s *ProgressSource) Update(offset float64) (ProgressState, bool) {
	r := s.region
	value := clamp01((offset - r.Start) / (r.End - r.Start))
	pinned := r.Pin && offset >= r.Start && offset <= r.End

	prev := s.state
	next := ProgressState{Value: value, Direction: prev.Direction, Pinned: pinned}
	switch {
	case value > prev.Value:
		next.Direction = Forward
	case value < prev.Value:
		next.Direction = Backward
	}

	changed := !s.initialized || next != prev
	s.state = next
	s.initialized = true
	return next, changed
}

// PinOffset returns how far the pinned content must be translated down the
// page to stay fixed in the viewport at the given offset. It is 0 before the
// region and the full span after it, so content after the region keeps its
// spacing.
func (s *ProgressSource) PinOffset(offset float64) float64 {
	if !s.region.Pin {
		return 0
	}
	d := offset - s.region.Start
	if d < 0 {
		return 0
	}
	if span := s.region.Span(); d > span {
		return span
	}
	return d
}
