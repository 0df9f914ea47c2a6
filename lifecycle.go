package scrollreel

import (
	"fmt"
	"log/slog"
)

// Config is everything Attach needs to bind a timeline to a trigger region.
type Config struct {
	Trigger  TriggerAnchor
	Sets     []*ElementSet
	Rings    []Ring
	Timeline Timeline

	// Sink, when set, receives completion events of both directions after
	// the registered callbacks.
	Sink   EventSink
	Logger *slog.Logger
	Debug  bool
}

// Handle is a mounted timeline. It owns the engine, its listeners and the
// pin; Release tears all of it down.
type Handle struct {
	src    SignalSource
	anchor TriggerAnchor
	logger *slog.Logger

	source *ProgressSource
	engine *Engine
	rings  []*ringLayout

	owned      []*Node
	pinNode    *Node
	pinBaseY   float64
	pinApplied bool

	scrollHandle CallbackHandle
	resizeHandle CallbackHandle

	released bool
}

// Attach resolves every element, lays out the rings, builds the engine,
// samples the current scroll position (arming completion hooks without
// firing them) and subscribes to src. On error nothing stays attached.
func Attach(src SignalSource, cfg Config) (*Handle, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handle{src: src, anchor: cfg.Trigger, logger: logger}
	attached := false
	defer func() {
		if attached {
			return
		}
		for i := len(h.rings) - 1; i >= 0; i-- {
			h.rings[i].restore()
		}
		h.Release()
	}()

	if src == nil {
		return nil, fmt.Errorf("attach: %w", ErrNoSignalSource)
	}

	elems := NewElements(cfg.Sets...)
	if len(elems) != len(cfg.Sets) {
		return nil, fmt.Errorf("attach: %d sets share names: %w", len(cfg.Sets)-len(elems), ErrCountMismatch)
	}

	if n := cfg.Trigger.Node; n != nil {
		if n.IsDisposed() {
			return nil, fmt.Errorf("attach: trigger %q: %w", n.Name, ErrUnresolvedElement)
		}
		if n.owner != nil {
			return nil, fmt.Errorf("attach: trigger %q: %w", n.Name, ErrAlreadyAttached)
		}
		h.claim(n)
		h.pinNode = n
		h.pinBaseY = n.Y
	}
	for _, set := range cfg.Sets {
		nodes, err := set.Resolve()
		if err != nil {
			return nil, fmt.Errorf("attach: %w", err)
		}
		for _, n := range nodes {
			if n.owner != nil && n.owner != h {
				return nil, fmt.Errorf("attach: set %q element %q: %w", set.Name(), n.Name, ErrTargetOwned)
			}
			h.claim(n)
		}
	}

	_, vh := src.Viewport()
	source, err := NewProgressSource(cfg.Trigger.Resolve(vh))
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	h.source = source

	for _, ring := range cfg.Rings {
		rl, err := newRingLayout(ring, elems)
		if err != nil {
			return nil, fmt.Errorf("attach: %w", err)
		}
		if len(rl.nodes) == 0 {
			return nil, fmt.Errorf("attach: ring %q is empty: %w", ring.Set, ErrCountMismatch)
		}
		rl.apply()
		h.rings = append(h.rings, rl)
	}

	engine, err := NewEngine(cfg.Timeline, elems)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	h.engine = engine
	if h.anchor.Pin && h.pinNode != nil {
		// The pin owns the trigger's y while attached.
		if _, ok := engine.Value(h.pinNode, PropY); ok {
			return nil, fmt.Errorf("attach: pinned trigger %q animates y: %w", h.pinNode.Name, ErrTargetOwned)
		}
	}
	h.engine.SetLogger(logger)
	h.engine.SetEventSink(cfg.Sink)
	h.engine.SetDebugMode(cfg.Debug)

	offset := src.ScrollOffset()
	state, _ := h.source.Update(offset)
	h.applyPin(offset)
	h.engine.Sample(state.Value)

	h.scrollHandle = src.OnScroll(h.onScroll)
	h.resizeHandle = src.OnResize(h.onResize)

	region := h.source.Region()
	logger.Debug("timeline attached",
		"start", region.Start, "end", region.End, "pin", region.Pin,
		"tracks", len(cfg.Timeline.Tracks), "rings", len(h.rings), "progress", state.Value)
	attached = true
	return h, nil
}

func (h *Handle) claim(n *Node) {
	if n.owner == h {
		return
	}
	n.owner = h
	h.owned = append(h.owned, n)
}

func (h *Handle) onScroll(ctx ScrollContext) {
	if h.released {
		return
	}
	state, changed := h.source.Update(ctx.Offset)
	h.applyPin(ctx.Offset)
	if changed {
		h.engine.Sample(state.Value)
	}
}

// onResize recomputes geometry only: the region, ring pivots and the pin.
// Progress is kept and re-applied, which fires nothing.
func (h *Handle) onResize(ctx ResizeContext) {
	if h.released {
		return
	}
	if err := h.source.SetRegion(h.anchor.Resolve(ctx.Height)); err != nil {
		h.logger.Warn("keeping previous trigger region after resize", "height", ctx.Height, "error", err)
	}
	for _, rl := range h.rings {
		rl.relayout()
	}
	h.applyPin(h.src.ScrollOffset())
	h.engine.Sample(h.engine.Progress())
	h.logger.Debug("timeline resized", "width", ctx.Width, "height", ctx.Height)
}

func (h *Handle) applyPin(offset float64) {
	if h.pinNode == nil || !h.anchor.Pin {
		return
	}
	h.pinNode.Y = h.pinBaseY + h.source.PinOffset(offset)
	h.pinNode.MarkDirty()
	h.pinApplied = true
}

// Release unsubscribes every listener, stops the engine, releases the pin
// and gives up ownership of the targets. It is a no-op on a nil, released
// or partially attached handle.
func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.scrollHandle.Remove()
	h.resizeHandle.Remove()
	if h.engine != nil {
		h.engine.Release()
	}
	if h.pinApplied && !h.pinNode.IsDisposed() {
		h.pinNode.Y = h.pinBaseY
		h.pinNode.MarkDirty()
	}
	for _, n := range h.owned {
		if n.owner == h {
			n.owner = nil
		}
	}
	h.owned = nil
	if h.logger != nil {
		h.logger.Debug("timeline released")
	}
}

// Released reports whether Release has been called.
func (h *Handle) Released() bool {
	return h == nil || h.released
}

// Engine returns the handle's engine.
func (h *Handle) Engine() *Engine { return h.engine }

// Progress returns the latest progress state.
func (h *Handle) Progress() ProgressState { return h.source.State() }

// Region returns the current trigger region.
func (h *Handle) Region() TriggerRegion { return h.source.Region() }

// Assignments returns the static angle assignments of the ring laid out for
// set, or nil.
func (h *Handle) Assignments(set string) []AngleAssignment {
	for _, rl := range h.rings {
		if rl.ring.Set == set {
			return rl.assignments
		}
	}
	return nil
}

// OnComplete subscribes to forward completion events.
func (h *Handle) OnComplete(fn func(CompletionEvent)) CallbackHandle {
	return h.engine.OnComplete(fn)
}

// OnReverseComplete subscribes to backward completion events.
func (h *Handle) OnReverseComplete(fn func(CompletionEvent)) CallbackHandle {
	return h.engine.OnReverseComplete(fn)
}

// SetDebugMode toggles per-sample debug stats.
func (h *Handle) SetDebugMode(enabled bool) {
	h.engine.SetDebugMode(enabled)
}
