package scrollreel

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
)

type recordingSink struct {
	events []CompletionEvent
}

func (s *recordingSink) EmitCompletion(ev CompletionEvent) {
	s.events = append(s.events, ev)
}

func newTestEngine(t *testing.T, nodes []*Node, tracks ...TrackDecl) *Engine {
	t.Helper()
	e, err := NewEngine(Timeline{Tracks: tracks}, NewElements(SetOf("n", nodes...)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func recordEvents(e *Engine) *[]CompletionEvent {
	var events []CompletionEvent
	record := func(ev CompletionEvent) { events = append(events, ev) }
	e.OnComplete(record)
	e.OnReverseComplete(record)
	return &events
}

func TestSampleInterpolatesWithEase(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n}, TrackDecl{
		Name:    "fade",
		Targets: []Target{All("n")},
		Segments: []SegmentDecl{{
			Duration: 1,
			To:       PropertyMap{PropAlpha: Num(0)},
			Ease:     EaseByName("power1.inOut"),
		}},
	})

	e.Sample(0)
	assertNear(t, "p=0", n.Alpha, 1)
	e.Sample(0.5)
	assertNearTol(t, "p=0.5", n.Alpha, 0.5, 1e-6)
	e.Sample(0.25)
	// inOut is slower than linear near the ends.
	if n.Alpha <= 0.75 {
		t.Errorf("p=0.25 alpha = %v, want > 0.75", n.Alpha)
	}
	e.Sample(1)
	assertNear(t, "p=1", n.Alpha, 0)
}

func TestSampleIsPureFunctionOfProgress(t *testing.T) {
	build := func() (*Node, *Engine) {
		n := NewSprite("n", 10, 10)
		n.SetRotationDegrees(60)
		return n, newTestEngine(t, []*Node{n},
			track("spin", At(0), seg(1, PropertyMap{PropRotation: Rel(-300)})),
			track("move", At(0.5), seg(1, PropertyMap{PropY: Rel(80)})),
		)
	}

	a, ea := build()
	for _, p := range []float64{0, 0.9, 0.1, 1, 0.2, 0.6, 0.6} {
		ea.Sample(p)
	}
	b, eb := build()
	eb.Sample(0.6)

	assertNear(t, "rotation", a.RotationDegrees(), b.RotationDegrees())
	assertNear(t, "y", a.Y, b.Y)

	// Sampling the same progress again changes nothing.
	before := a.Rotation
	ea.Sample(0.6)
	if a.Rotation != before {
		t.Errorf("resample changed rotation: %v -> %v", before, a.Rotation)
	}
}

func TestRelativeValuesResolveAgainstStart(t *testing.T) {
	n := NewSprite("n", 10, 10)
	n.SetRotationDegrees(60)
	e := newTestEngine(t, []*Node{n}, track("spin", At(0),
		seg(1, PropertyMap{PropRotation: Rel(-300)}),
		seg(1, PropertyMap{PropRotation: Rel(30)}),
	))

	e.Sample(0)
	assertNear(t, "start", n.RotationDegrees(), 60)
	e.Sample(0.5)
	assertNear(t, "after first", n.RotationDegrees(), -240)
	e.Sample(0.75)
	assertNear(t, "mid second", n.RotationDegrees(), -225)
	e.Sample(1)
	assertNear(t, "end", n.RotationDegrees(), -210)

	v, ok := e.Value(n, PropRotation)
	if !ok {
		t.Fatal("Value should report the channel")
	}
	assertNear(t, "Value", v.Float(), -210)
	if _, ok := e.Value(n, PropAlpha); ok {
		t.Error("alpha is not animated")
	}
}

func TestFromValuesApplyBeforeStart(t *testing.T) {
	n := NewSprite("mid", 10, 10)
	n.SetPosition(0, 300)
	e := newTestEngine(t, []*Node{n},
		track("wait", At(0), seg(1, PropertyMap{PropAlpha: Num(1)})),
		TrackDecl{
			Name:    "reveal",
			Targets: []Target{All("n")},
			Anchor:  After("wait", 0),
			Segments: []SegmentDecl{{
				Duration: 1,
				From:     PropertyMap{PropScale: Num(0), PropY: Rel(80)},
				To:       PropertyMap{PropScale: Num(1.5), PropY: Rel(0)},
			}},
		},
	)

	e.Sample(0)
	assertNear(t, "scale before", n.ScaleX, 0)
	assertNear(t, "y before", n.Y, 380)
	e.Sample(0.75)
	assertNear(t, "scale mid", n.ScaleY, 0.75)
	assertNear(t, "y mid", n.Y, 340)
	e.Sample(1)
	assertNear(t, "scale end", n.ScaleX, 1.5)
	assertNear(t, "y end", n.Y, 300)
}

func TestOverlapLaterStartWins(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n},
		track("a", At(0), seg(2, PropertyMap{PropX: Num(100)})),
		track("b", At(1), seg(1, PropertyMap{PropX: Num(0)})),
	)

	e.Sample(0.25)
	assertNear(t, "a only", n.X, 25)
	// b takes over from a's value at b's start, without a jump.
	e.Sample(0.5)
	assertNear(t, "handover", n.X, 50)
	e.Sample(0.75)
	assertNear(t, "b", n.X, 25)
	e.Sample(1)
	assertNear(t, "end", n.X, 0)
}

func TestColorTrack(t *testing.T) {
	n := NewSprite("n", 10, 10)
	n.Color = Color{R: 1, G: 1, B: 1, A: 1}
	yellow, _ := ParseHexColor("#FBDE5E")
	e := newTestEngine(t, []*Node{n}, track("paint", At(0), seg(1, PropertyMap{PropTint: RGBA(yellow)})))

	e.Sample(1)
	if n.Color != yellow {
		t.Errorf("end color = %v, want %v", n.Color, yellow)
	}
	e.Sample(0)
	if n.Color != ColorWhite {
		t.Errorf("start color = %v, want white", n.Color)
	}
}

func TestTrackStates(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n},
		track("a", At(0), seg(1, PropertyMap{PropX: Num(1)})),
		track("b", After("a", 0), seg(1, PropertyMap{PropY: Num(1)})),
	)
	a, b := e.Track("a"), e.Track("b")
	assertNear(t, "b start", b.Start, 0.5)

	e.Sample(0.25)
	if a.State() != InProgress || b.State() != NotStarted {
		t.Errorf("p=0.25: %v/%v", a.State(), b.State())
	}
	e.Sample(0.5)
	if a.State() != Completed || b.State() != InProgress {
		t.Errorf("p=0.5: %v/%v", a.State(), b.State())
	}
	e.Sample(1)
	if b.State() != Completed {
		t.Errorf("p=1: %v", b.State())
	}
	if e.Track("missing") != nil {
		t.Error("unknown track should be nil")
	}
	if len(e.Tracks()) != 2 {
		t.Errorf("Tracks() = %d", len(e.Tracks()))
	}
}

func TestCompletionForwardAndBackward(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n},
		track("a", At(0), seg(1, PropertyMap{PropX: Num(1)})),
		track("b", After("a", 0), SegmentDecl{Name: "one", Duration: 0.5, To: PropertyMap{PropY: Num(1)}}, SegmentDecl{Name: "two", Duration: 0.5, To: PropertyMap{PropY: Num(2)}}),
	)
	events := recordEvents(e)

	e.Sample(0) // arms only
	e.Sample(0.4)
	if len(*events) != 0 {
		t.Fatalf("no boundary crossed yet, got %v", *events)
	}

	e.Sample(1)
	want := []CompletionEvent{
		{Track: "a", Segment: 0, Direction: Forward, TrackDone: true},
		{Track: "b", Segment: 0, Name: "one", Direction: Forward},
		{Track: "b", Segment: 1, Name: "two", Direction: Forward, TrackDone: true},
	}
	assertEvents(t, *events, want)

	// Staying at the end fires nothing more.
	*events = nil
	e.Sample(1)
	if len(*events) != 0 {
		t.Errorf("repeat sample fired %v", *events)
	}

	e.Sample(0.6)
	assertEvents(t, *events, []CompletionEvent{{Track: "b", Segment: 1, Name: "two", Direction: Backward, TrackDone: true}})

	*events = nil
	e.Sample(0)
	assertEvents(t, *events, []CompletionEvent{
		{Track: "a", Segment: 0, Direction: Backward, TrackDone: true},
		{Track: "b", Segment: 0, Name: "one", Direction: Backward},
	})
}

func TestCompletionNotFiredOnFirstSample(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n}, track("a", At(0), seg(1, PropertyMap{PropX: Num(1)})))
	events := recordEvents(e)

	e.Sample(1)
	if len(*events) != 0 {
		t.Fatalf("first sample fired %v", *events)
	}
	e.Sample(0)
	assertEvents(t, *events, []CompletionEvent{{Track: "a", Direction: Backward, TrackDone: true}})
}

func TestCompletionOnJumpPastSegment(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n},
		track("a", At(0), seg(1, PropertyMap{PropX: Num(1)})),
		track("b", After("a", 0), seg(1, PropertyMap{PropX: Num(2)})),
	)
	events := recordEvents(e)
	e.Sample(0)
	e.Sample(1)
	if len(*events) != 2 {
		t.Fatalf("jumping to the end should complete both tracks, got %v", *events)
	}
	assertNear(t, "x", n.X, 2)
}

func TestCallbacksSeeAppliedValues(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n},
		track("a", At(0), seg(1, PropertyMap{PropX: Num(10)})),
		track("b", At(0), seg(2, PropertyMap{PropY: Num(10)})),
	)
	var seenY float64
	e.OnComplete(func(ev CompletionEvent) {
		if ev.Track == "a" {
			seenY = n.Y
		}
	})
	e.Sample(0)
	e.Sample(0.75)
	assertNear(t, "y seen by callback", seenY, 7.5)
}

func TestReleaseDuringCallback(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n},
		track("a", At(0), seg(1, PropertyMap{PropX: Num(1)})),
		track("b", At(0), seg(1, PropertyMap{PropY: Num(1)})),
	)
	sink := &recordingSink{}
	e.SetEventSink(sink)
	calls := 0
	e.OnComplete(func(CompletionEvent) {
		calls++
		e.Release()
	})
	e.OnComplete(func(CompletionEvent) { t.Error("handler after release should not run") })

	e.Sample(0)
	e.Sample(1)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(sink.events) != 0 {
		t.Errorf("sink got %v after release", sink.events)
	}

	// Released engines ignore samples.
	e.Sample(0)
	assertNear(t, "x unchanged", n.X, 1)
}

func TestRemoveCallback(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n}, track("a", At(0), seg(1, PropertyMap{PropX: Num(1)})))
	calls := 0
	h := e.OnComplete(func(CompletionEvent) { calls++ })
	e.Sample(0)
	e.Sample(1)
	h.Remove()
	h.Remove()
	e.Sample(0)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSinkAfterCallbacks(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n}, track("a", At(0), seg(1, PropertyMap{PropX: Num(1)})))
	var order []string
	e.OnComplete(func(CompletionEvent) { order = append(order, "callback") })
	e.SetEventSink(sinkFunc(func(CompletionEvent) { order = append(order, "sink") }))
	e.Sample(0)
	e.Sample(1)
	if strings.Join(order, ",") != "callback,sink" {
		t.Errorf("order = %v", order)
	}
}

type sinkFunc func(CompletionEvent)

func (f sinkFunc) EmitCompletion(ev CompletionEvent) { f(ev) }

func TestSampleClampsAndIgnoresNaN(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n}, track("a", At(0), seg(1, PropertyMap{PropX: Num(100)})))
	e.Sample(2)
	assertNear(t, "clamped high", n.X, 100)
	assertNear(t, "progress", e.Progress(), 1)
	e.Sample(math.NaN())
	assertNear(t, "NaN ignored", n.X, 100)
	e.Sample(-1)
	assertNear(t, "clamped low", n.X, 0)
}

func TestDisposedTargetSkipped(t *testing.T) {
	a, b := NewSprite("a", 10, 10), NewSprite("b", 10, 10)
	e := newTestEngine(t, []*Node{a, b}, track("a", At(0), seg(1, PropertyMap{PropX: Num(100)})))
	var buf bytes.Buffer
	e.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	b.Dispose()
	e.Sample(0.5)
	e.Sample(0.6)
	assertNear(t, "live target", a.X, 60)
	assertNear(t, "disposed target untouched", b.X, 0)
	if got := strings.Count(buf.String(), "skipping disposed target"); got != 1 {
		t.Errorf("warnings = %d, want 1", got)
	}
}

func TestDebugModeLogsSamples(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n}, track("a", At(0), seg(1, PropertyMap{PropX: Num(1)})))
	var buf bytes.Buffer
	e.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	e.Sample(0.5)
	if buf.Len() != 0 {
		t.Error("debug stats should be off by default")
	}
	e.SetDebugMode(true)
	e.Sample(0.7)
	if !strings.Contains(buf.String(), "msg=sample") || !strings.Contains(buf.String(), "channels=1") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestNewEngineErrors(t *testing.T) {
	n := NewSprite("n", 10, 10)
	elems := NewElements(SetOf("n", n))
	x := PropertyMap{PropX: Num(1)}

	_, err := NewEngine(Timeline{Tracks: []TrackDecl{{Name: "a", Targets: []Target{All("cards")}, Segments: []SegmentDecl{seg(1, x)}}}}, elems)
	if !errors.Is(err, ErrUnknownSet) {
		t.Errorf("unknown set: err = %v", err)
	}
	_, err = NewEngine(Timeline{Tracks: []TrackDecl{{Name: "a", Targets: []Target{One("n", 4)}, Segments: []SegmentDecl{seg(1, x)}}}}, elems)
	if !errors.Is(err, ErrCountMismatch) {
		t.Errorf("index out of range: err = %v", err)
	}
	_, err = NewEngine(Timeline{Tracks: []TrackDecl{track("a", After("zzz", 0), seg(1, x))}}, elems)
	if !errors.Is(err, ErrUnknownTrack) {
		t.Errorf("unknown anchor: err = %v", err)
	}
}

func TestDuplicateTargetsAnimatedOnce(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n}, TrackDecl{
		Name:     "a",
		Targets:  []Target{All("n"), One("n", 0)},
		Segments: []SegmentDecl{seg(1, PropertyMap{PropX: Rel(10)})},
	})
	if got := len(e.Track("a").Targets()); got != 1 {
		t.Errorf("targets = %d, want 1", got)
	}
	e.Sample(1)
	assertNear(t, "x", n.X, 10)
}

func assertEvents(t *testing.T, got, want []CompletionEvent) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSampleZeroAlloc(t *testing.T) {
	nodes := []*Node{NewSprite("a", 10, 10), NewSprite("b", 10, 10)}
	e := newTestEngine(t, nodes,
		track("spin", At(0), seg(1, PropertyMap{PropRotation: Rel(-300), PropAlpha: Num(0)})),
		track("paint", At(0), seg(1, PropertyMap{PropTint: RGBA(Color{R: 1, G: 0.8, B: 0.3, A: 1})})),
	)
	e.Sample(0.2)
	p := 0.2
	allocs := testing.AllocsPerRun(100, func() {
		p = 0.5 - p // alternate 0.2 / 0.3, never crossing a boundary
		e.Sample(p)
	})
	if allocs != 0 {
		t.Errorf("Sample allocates %v times per call, want 0", allocs)
	}
}

func TestReversalSymmetry(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n},
		TrackDecl{Name: "spin", Targets: []Target{All("n")}, Segments: []SegmentDecl{{
			Duration: 1, To: PropertyMap{PropRotation: Rel(-300)}, Ease: EaseByName("power2"),
		}}},
		TrackDecl{Name: "fade", Targets: []Target{All("n")}, Anchor: With("spin", 0.5), Segments: []SegmentDecl{{
			Duration: 0.5, To: PropertyMap{PropAlpha: Num(0)}, Ease: EaseByName("power1.inOut"),
		}}},
	)

	const steps = 40
	type sample struct{ rot, alpha float64 }
	forward := make([]sample, steps+1)
	for i := 0; i <= steps; i++ {
		e.Sample(float64(i) / steps)
		forward[i] = sample{n.Rotation, n.Alpha}
	}
	for i := steps; i >= 0; i-- {
		e.Sample(float64(i) / steps)
		if got := (sample{n.Rotation, n.Alpha}); got != forward[i] {
			t.Fatalf("step %d: reverse = %+v, forward = %+v", i, got, forward[i])
		}
	}
}

func TestOnCompleteIsForwardOnly(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n}, track("late", At(0.5), seg(0.5, PropertyMap{PropX: Num(1)})))
	sink := &recordingSink{}
	e.SetEventSink(sink)
	var forward, backward int
	e.OnComplete(func(ev CompletionEvent) {
		if ev.Direction != Forward {
			t.Errorf("OnComplete got %v event", ev.Direction)
		}
		forward++
	})
	e.OnReverseComplete(func(ev CompletionEvent) {
		if ev.Direction != Backward {
			t.Errorf("OnReverseComplete got %v event", ev.Direction)
		}
		backward++
	})

	for _, p := range []float64{0, 0.99, 1, 0.4, 0.99, 1} {
		e.Sample(p)
	}
	if forward != 2 {
		t.Errorf("forward completions = %d, want 2", forward)
	}
	if backward != 1 {
		t.Errorf("backward completions = %d, want 1", backward)
	}
	// The sink sees both directions.
	if len(sink.events) != 3 {
		t.Errorf("sink events = %d, want 3", len(sink.events))
	}
}

func TestLinearSegmentIsMonotonic(t *testing.T) {
	n := NewSprite("n", 10, 10)
	e := newTestEngine(t, []*Node{n}, TrackDecl{
		Name:    "move",
		Targets: []Target{All("n")},
		Segments: []SegmentDecl{{
			Duration: 1,
			Ease:     Linear,
			From:     PropertyMap{PropX: Num(10), PropAlpha: Num(1), PropScale: Num(0.35)},
			To:       PropertyMap{PropX: Num(110), PropAlpha: Num(0), PropScale: Num(0.55)},
		}},
	})

	type channelCheck struct {
		name     string
		get      func() float64
		from, to float64
	}
	props := []channelCheck{
		{"x", func() float64 { return n.X }, 10, 110},
		{"alpha", func() float64 { return n.Alpha }, 1, 0},
		{"scale", func() float64 { return n.ScaleX }, 0.35, 0.55},
	}
	prev := make([]float64, len(props))
	for step := 0; step <= 100; step++ {
		e.Sample(float64(step) / 100)
		for i, pr := range props {
			v := pr.get()
			if step == 0 {
				assertNearTol(t, pr.name+" start", v, pr.from, 1e-9)
			} else {
				// Every step moves toward the target, never past it.
				if (pr.to-pr.from)*(v-prev[i]) < 0 {
					t.Fatalf("%s step %d: %v -> %v moves away from %v", pr.name, step, prev[i], v, pr.to)
				}
				if math.Abs(v-pr.from) > math.Abs(pr.to-pr.from)+1e-9 {
					t.Fatalf("%s step %d: %v overshoots %v", pr.name, step, v, pr.to)
				}
			}
			prev[i] = v
		}
	}
	for i, pr := range props {
		assertNearTol(t, pr.name+" end", prev[i], pr.to, 1e-9)
	}
}
