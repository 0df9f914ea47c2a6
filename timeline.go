package scrollreel

import (
	"fmt"
	"math"
)

// AnchorKind selects how a track's start is derived.
type AnchorKind uint8

const (
	AnchorAt    AnchorKind = iota // absolute offset on the timeline
	AnchorWith                    // same start as another track, plus offset
	AnchorAfter                   // another track's end, plus offset
)

// Anchor places a track on the timeline. The zero value is At(0).
type Anchor struct {
	Kind   AnchorKind
	Track  string
	Offset float64
}

// At anchors a track at an absolute timeline offset.
func At(offset float64) Anchor { return Anchor{Kind: AnchorAt, Offset: offset} }

// With anchors a track to start together with another track.
func With(track string, offset float64) Anchor {
	return Anchor{Kind: AnchorWith, Track: track, Offset: offset}
}

// After anchors a track to start where another track ends.
func After(track string, offset float64) Anchor {
	return Anchor{Kind: AnchorAfter, Track: track, Offset: offset}
}

func (a Anchor) String() string {
	switch a.Kind {
	case AnchorWith:
		return fmt.Sprintf("with(%s%+g)", a.Track, a.Offset)
	case AnchorAfter:
		return fmt.Sprintf("after(%s%+g)", a.Track, a.Offset)
	default:
		return fmt.Sprintf("at(%g)", a.Offset)
	}
}

// SegmentDecl declares one keyframe segment. Durations and delays are in
// timeline units; the whole timeline is mapped onto progress [0, 1].
//
// From is optional. Keys missing from From start at the value the element
// holds when the segment begins. Relative values in either map resolve
// against that same value.
type SegmentDecl struct {
	Name     string
	Duration float64
	Delay    float64
	From     PropertyMap
	To       PropertyMap
	Ease     EasingFn
}

// TrackDecl declares a track: ordered segments applied to targets.
type TrackDecl struct {
	Name     string
	Targets  []Target
	Anchor   Anchor
	Segments []SegmentDecl
}

// Timeline is the static declaration an Engine is built from. Duration, when
// positive, fixes the timeline length; otherwise it is the latest track end.
type Timeline struct {
	Duration float64
	Tracks   []TrackDecl
}

// trackSpan is a track's resolved placement in timeline units.
type trackSpan struct {
	start, end float64
}

func (d TrackDecl) length() float64 {
	var l float64
	for _, s := range d.Segments {
		l += s.Delay + s.Duration
	}
	return l
}

func (d TrackDecl) validate() error {
	if d.Name == "" {
		return fmt.Errorf("track with %d segments has no name: %w", len(d.Segments), ErrInvalidSegment)
	}
	if len(d.Targets) == 0 {
		return fmt.Errorf("track %q has no targets: %w", d.Name, ErrInvalidSegment)
	}
	if len(d.Segments) == 0 {
		return fmt.Errorf("track %q has no segments: %w", d.Name, ErrInvalidSegment)
	}
	for i, s := range d.Segments {
		if !(s.Duration > 0) || math.IsInf(s.Duration, 0) {
			return fmt.Errorf("track %q segment %d: duration %g: %w", d.Name, i, s.Duration, ErrInvalidSegment)
		}
		if s.Delay < 0 {
			return fmt.Errorf("track %q segment %d: negative delay %g: %w", d.Name, i, s.Delay, ErrInvalidSegment)
		}
		for p, v := range s.To {
			if err := checkValue(p, v); err != nil {
				return fmt.Errorf("track %q segment %d to: %w", d.Name, i, err)
			}
		}
		for p, v := range s.From {
			if err := checkValue(p, v); err != nil {
				return fmt.Errorf("track %q segment %d from: %w", d.Name, i, err)
			}
			if _, ok := s.To[p]; !ok {
				return fmt.Errorf("track %q segment %d: %s has a from value but no to value: %w", d.Name, i, p, ErrInvalidSegment)
			}
		}
		if len(s.To) == 0 {
			return fmt.Errorf("track %q segment %d animates nothing: %w", d.Name, i, ErrInvalidSegment)
		}
	}
	return nil
}

// schedule resolves every track's anchor into absolute timeline units and
// returns the spans (in declaration order) and the total timeline length.
func (tl Timeline) schedule() ([]trackSpan, float64, error) {
	index := make(map[string]int, len(tl.Tracks))
	for i, d := range tl.Tracks {
		if err := d.validate(); err != nil {
			return nil, 0, err
		}
		if _, dup := index[d.Name]; dup {
			return nil, 0, fmt.Errorf("track %q: %w", d.Name, ErrDuplicateTrack)
		}
		index[d.Name] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]uint8, len(tl.Tracks))
	spans := make([]trackSpan, len(tl.Tracks))

	var visit func(i int, path []string) error
	visit = func(i int, path []string) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%v -> %s: %w", path, tl.Tracks[i].Name, ErrAnchorCycle)
		}
		state[i] = visiting
		d := tl.Tracks[i]

		start := d.Anchor.Offset
		if d.Anchor.Kind != AnchorAt {
			j, ok := index[d.Anchor.Track]
			if !ok {
				return fmt.Errorf("track %q anchored %s: %w", d.Name, d.Anchor, ErrUnknownTrack)
			}
			if err := visit(j, append(path, d.Name)); err != nil {
				return err
			}
			if d.Anchor.Kind == AnchorWith {
				start = spans[j].start + d.Anchor.Offset
			} else {
				start = spans[j].end + d.Anchor.Offset
			}
		}
		if start < 0 {
			return fmt.Errorf("track %q starts at %g, before the timeline: %w", d.Name, start, ErrInvalidSegment)
		}
		spans[i] = trackSpan{start: start, end: start + d.length()}
		state[i] = done
		return nil
	}

	var total float64
	for i := range tl.Tracks {
		if err := visit(i, nil); err != nil {
			return nil, 0, err
		}
		total = math.Max(total, spans[i].end)
	}
	if tl.Duration > 0 {
		if total > tl.Duration {
			return nil, 0, fmt.Errorf("tracks end at %g, past timeline duration %g: %w", total, tl.Duration, ErrInvalidSegment)
		}
		total = tl.Duration
	}
	if total == 0 {
		total = 1
	}
	return spans, total, nil
}
