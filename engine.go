package scrollreel

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"
)

// TrackState is where progress sits relative to a track's span.
type TrackState uint8

const (
	NotStarted TrackState = iota // progress before the track's start
	InProgress                   // progress within [start, end)
	Completed                    // progress at or past the track's end
)

func (s TrackState) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Completed:
		return "completed"
	default:
		return "not-started"
	}
}

// Segment is a resolved keyframe segment occupying [Start, End] on the
// progress axis.
type Segment struct {
	Name       string
	Start, End float64

	ease  EasingFn
	track *Track
	index int

	// Completion arming: a boundary event may fire once armed, and re-arms
	// when local progress leaves that boundary.
	fwdArmed bool
	revArmed bool
}

// Local returns the segment's local progress for global progress p,
// clamped to [0, 1].
func (s *Segment) Local(p float64) float64 {
	return clamp01((p - s.Start) / (s.End - s.Start))
}

// Track is a resolved track: its segments, span and targets.
type Track struct {
	Name       string
	Start, End float64
	Segments   []*Segment

	targets []*Node
	state   TrackState
}

// State returns the state computed by the most recent sample.
func (t *Track) State() TrackState { return t.state }

// Targets returns the track's target nodes. MUST NOT be mutated.
func (t *Track) Targets() []*Node { return t.targets }

func (t *Track) stateAt(p float64) TrackState {
	switch {
	case p >= t.End:
		return Completed
	case p < t.Start:
		return NotStarted
	default:
		return InProgress
	}
}

// channelPart is one segment's absolute endpoints for one node property.
type channelPart struct {
	seg      *Segment
	from, to Value
}

// channel is a (node, property) pair and every segment that animates it,
// ordered by segment start then declaration order.
type channel struct {
	node  *Node
	prop  Property
	parts []channelPart
	last  Value
}

type channelKey struct {
	node *Node
	prop Property
}

// active returns the part that owns the channel at p: the last part that
// has started, or the first part before any has.
func (ch *channel) active(p float64) *channelPart {
	i := sort.Search(len(ch.parts), func(i int) bool { return ch.parts[i].seg.Start > p }) - 1
	if i < 0 {
		i = 0
	}
	return &ch.parts[i]
}

func (ch *channel) valueAt(p float64) Value {
	part := ch.active(p)
	return interpolate(part.from, part.to, part.seg.ease(part.seg.Local(p)))
}

// Engine samples a resolved timeline at a progress value and writes the
// results to the target nodes. It is the single writer of those properties.
type Engine struct {
	tracks   []*Track
	byName   map[string]*Track
	channels []*channel
	index    map[channelKey]*channel

	progress float64
	sampled  bool
	released bool

	handlers handlerRegistry
	sink     EventSink
	pending  []CompletionEvent

	logger         *slog.Logger
	debug          bool
	warnedDisposed bool
}

// NewEngine resolves tl against elems. The anchor graph is resolved into
// absolute progress ranges and relative values into absolute endpoints,
// using the targets' current property values as the static starting point.
func NewEngine(tl Timeline, elems Elements) (*Engine, error) {
	spans, total, err := tl.schedule()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		byName: make(map[string]*Track, len(tl.Tracks)),
		index:  make(map[channelKey]*channel),
		logger: slog.New(slog.DiscardHandler),
	}

	type pending struct {
		track, seg int
		startUnit  float64
	}
	var order []pending

	for ti, d := range tl.Tracks {
		targets, err := resolveTargets(d, elems)
		if err != nil {
			return nil, err
		}
		t := &Track{
			Name:    d.Name,
			Start:   spans[ti].start / total,
			End:     spans[ti].end / total,
			targets: targets,
		}
		cursor := spans[ti].start
		for si, sd := range d.Segments {
			cursor += sd.Delay
			startUnit := cursor
			cursor += sd.Duration
			ease := sd.Ease
			if ease == nil {
				ease = Linear
			}
			seg := &Segment{
				Name:  sd.Name,
				Start: startUnit / total,
				End:   cursor / total,
				ease:  ease,
				track: t,
				index: si,
			}
			if !(seg.End > seg.Start) {
				return nil, fmt.Errorf("track %q segment %d collapses to %g: %w", d.Name, si, seg.Start, ErrInvalidSegment)
			}
			t.Segments = append(t.Segments, seg)
			order = append(order, pending{track: ti, seg: si, startUnit: startUnit})
		}
		e.tracks = append(e.tracks, t)
		e.byName[t.Name] = t
	}

	// Implicit from values and relative values resolve against what the
	// channel holds when each segment begins, so resolve in start order.
	sort.SliceStable(order, func(i, j int) bool { return order[i].startUnit < order[j].startUnit })

	for _, o := range order {
		t := e.tracks[o.track]
		seg := t.Segments[o.seg]
		decl := tl.Tracks[o.track].Segments[o.seg]
		props := sortedProps(decl.To)
		for _, n := range t.targets {
			for _, p := range props {
				key := channelKey{node: n, prop: p}
				ch := e.index[key]
				if ch == nil {
					ch = &channel{node: n, prop: p, last: readProperty(n, p)}
					e.index[key] = ch
					e.channels = append(e.channels, ch)
				}
				cur := ch.last
				if len(ch.parts) > 0 {
					cur = ch.valueAt(seg.Start)
				}
				from := cur
				if v, ok := decl.From[p]; ok {
					from = v.resolve(cur)
				}
				to := decl.To[p].resolve(cur)
				ch.parts = append(ch.parts, channelPart{seg: seg, from: from, to: to})
			}
		}
	}
	return e, nil
}

func resolveTargets(d TrackDecl, elems Elements) ([]*Node, error) {
	var out []*Node
	seen := make(map[*Node]bool)
	for _, tgt := range d.Targets {
		nodes, err := elems.resolveTarget(tgt)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", d.Name, err)
		}
		for _, n := range nodes {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out, nil
}

func sortedProps(m PropertyMap) []Property {
	props := make([]Property, 0, len(m))
	for p := range m {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i] < props[j] })
	return props
}

// SetLogger sets the logger used for warnings and debug stats.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetDebugMode enables per-sample timing stats at debug level.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug = enabled
}

// SetEventSink routes completion events to sink after the registered
// callbacks. nil disables the sink.
func (e *Engine) SetEventSink(sink EventSink) {
	e.sink = sink
}

// OnComplete registers fn for forward completion events. Callbacks run
// after all values of the sample have been applied, in track declaration
// order.
func (e *Engine) OnComplete(fn func(CompletionEvent)) CallbackHandle {
	return e.handlers.onComplete(Forward, fn)
}

// OnReverseComplete registers fn for backward completion events, fired when
// a segment's local progress returns to 0 while scrolling up.
func (e *Engine) OnReverseComplete(fn func(CompletionEvent)) CallbackHandle {
	return e.handlers.onComplete(Backward, fn)
}

// Tracks returns the resolved tracks in declaration order. MUST NOT be mutated.
func (e *Engine) Tracks() []*Track { return e.tracks }

// Track returns the named track, or nil.
func (e *Engine) Track(name string) *Track { return e.byName[name] }

// Progress returns the progress of the most recent sample.
func (e *Engine) Progress() float64 { return e.progress }

// Value returns the logical value last written to node's property p
// (rotation in degrees).
func (e *Engine) Value(node *Node, p Property) (Value, bool) {
	ch, ok := e.index[channelKey{node: node, prop: p}]
	if !ok {
		return Value{}, false
	}
	return ch.last, true
}

// Sample computes every channel's value at progress p, applies it, updates
// track states and then fires completion events for boundaries crossed since
// the previous sample. The first sample only arms the hooks. Sampling the
// same p twice leaves the targets unchanged and fires nothing.
func (e *Engine) Sample(p float64) {
	if e.released || math.IsNaN(p) {
		return
	}
	p = clamp01(p)

	var t0 time.Time
	var stats sampleStats
	if e.debug {
		t0 = time.Now()
	}

	for _, ch := range e.channels {
		e.applyChannel(ch, p)
	}
	for _, t := range e.tracks {
		t.state = t.stateAt(p)
	}
	e.collectCompletions(p)
	e.progress = p
	e.sampled = true

	if e.debug {
		stats.applyTime = time.Since(t0)
		stats.channels = len(e.channels)
		stats.events = len(e.pending)
		t0 = time.Now()
	}

	e.dispatch()

	if e.debug {
		stats.dispatchTime = time.Since(t0)
		e.debugLog(p, stats)
	}
}

func (e *Engine) applyChannel(ch *channel, p float64) {
	v := ch.valueAt(p)
	ch.last = v
	if ch.node.IsDisposed() {
		if !e.warnedDisposed {
			e.warnedDisposed = true
			e.logger.Warn("skipping disposed target", "node", ch.node.Name, "property", ch.prop.String())
		}
		return
	}
	writeProperty(ch.node, ch.prop, v)
}

func (e *Engine) collectCompletions(p float64) {
	for _, t := range e.tracks {
		last := len(t.Segments) - 1
		for _, s := range t.Segments {
			l := s.Local(p)
			if !e.sampled {
				s.fwdArmed = l < 1
				s.revArmed = l > 0
				continue
			}
			if l >= 1 {
				if s.fwdArmed {
					s.fwdArmed = false
					e.pending = append(e.pending, CompletionEvent{
						Track: t.Name, Segment: s.index, Name: s.Name,
						Direction: Forward, TrackDone: s.index == last,
					})
				}
			} else {
				s.fwdArmed = true
			}
			if l <= 0 {
				if s.revArmed {
					s.revArmed = false
					e.pending = append(e.pending, CompletionEvent{
						Track: t.Name, Segment: s.index, Name: s.Name,
						Direction: Backward, TrackDone: s.index == last,
					})
				}
			} else {
				s.revArmed = true
			}
		}
	}
}

// dispatch delivers pending events. Callbacks may release the engine or
// remove handlers; the event list is detached first so a nested Sample
// cannot disturb it.
func (e *Engine) dispatch() {
	if len(e.pending) == 0 {
		return
	}
	events := append([]CompletionEvent(nil), e.pending...)
	e.pending = e.pending[:0]

	for _, ev := range events {
		if e.released {
			return
		}
		for _, h := range e.handlers.complete {
			if h.dir != ev.Direction {
				continue
			}
			h.fn(ev)
			if e.released {
				return
			}
		}
		if e.sink != nil {
			e.sink.EmitCompletion(ev)
		}
	}
}

// Release stops all further sampling and drops callbacks. Calling it again
// is a no-op.
func (e *Engine) Release() {
	e.released = true
	e.pending = nil
	e.handlers = handlerRegistry{}
	e.sink = nil
}
