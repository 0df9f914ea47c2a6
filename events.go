package scrollreel

// CompletionEvent reports that a segment crossed one of its boundaries.
// Forward events fire when the segment's local progress reaches 1 while
// moving forward; Backward events fire when it returns to 0 while moving
// backward. Each fires at most once per traversal.
type CompletionEvent struct {
	Track     string
	Segment   int
	Name      string
	Direction Direction
	// TrackDone is set when Segment is the last segment of its track.
	TrackDone bool
}

// EventSink receives completion events, e.g. to forward them into an ECS.
type EventSink interface {
	EmitCompletion(event CompletionEvent)
}

// --- Handler registry ---

type completionHandler struct {
	id  uint32
	dir Direction
	fn  func(CompletionEvent)
}

type scrollHandler struct {
	id uint32
	fn func(ScrollContext)
}

type resizeHandler struct {
	id uint32
	fn func(ResizeContext)
}

type handlerRegistry struct {
	complete []completionHandler
	scroll   []scrollHandler
	resize   []resizeHandler
	nextID   uint32
}

func (r *handlerRegistry) id() uint32 {
	r.nextID++
	return r.nextID
}

// CallbackHandle allows removing a registered callback. Remove is
// idempotent and safe on the zero value.
type CallbackHandle struct {
	remove func()
}

// Remove unregisters the callback.
func (h *CallbackHandle) Remove() {
	if h == nil || h.remove == nil {
		return
	}
	h.remove()
	h.remove = nil
}

func (r *handlerRegistry) onComplete(dir Direction, fn func(CompletionEvent)) CallbackHandle {
	id := r.id()
	r.complete = append(r.complete, completionHandler{id: id, dir: dir, fn: fn})
	return CallbackHandle{remove: func() {
		for i, h := range r.complete {
			if h.id == id {
				r.complete = append(r.complete[:i:i], r.complete[i+1:]...)
				return
			}
		}
	}}
}

func (r *handlerRegistry) onScroll(fn func(ScrollContext)) CallbackHandle {
	id := r.id()
	r.scroll = append(r.scroll, scrollHandler{id: id, fn: fn})
	return CallbackHandle{remove: func() {
		for i, h := range r.scroll {
			if h.id == id {
				r.scroll = append(r.scroll[:i:i], r.scroll[i+1:]...)
				return
			}
		}
	}}
}

func (r *handlerRegistry) onResize(fn func(ResizeContext)) CallbackHandle {
	id := r.id()
	r.resize = append(r.resize, resizeHandler{id: id, fn: fn})
	return CallbackHandle{remove: func() {
		for i, h := range r.resize {
			if h.id == id {
				r.resize = append(r.resize[:i:i], r.resize[i+1:]...)
				return
			}
		}
	}}
}
