package scrollreel

type signalKind uint8

const (
	signalScrollTo signalKind = iota
	signalScrollBy
	signalResize
)

// syntheticSignal is a single injected scroll or resize signal.
type syntheticSignal struct {
	kind signalKind
	a, b float64
}

// InjectScroll queues a jump to offset. The signal is consumed on the next
// frame in place of real input.
func (s *Scene) InjectScroll(offset float64) {
	s.injectQueue = append(s.injectQueue, syntheticSignal{kind: signalScrollTo, a: offset})
}

// InjectScrollBy queues a relative scroll of delta.
func (s *Scene) InjectScrollBy(delta float64) {
	s.injectQueue = append(s.injectQueue, syntheticSignal{kind: signalScrollBy, a: delta})
}

// InjectResize queues a viewport resize.
func (s *Scene) InjectResize(width, height float64) {
	s.injectQueue = append(s.injectQueue, syntheticSignal{kind: signalResize, a: width, b: height})
}

// InjectSweep queues a scroll from one offset to another, linearly
// interpolated over the given number of frames. Minimum frames is 1.
func (s *Scene) InjectSweep(from, to float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	if frames == 1 {
		s.InjectScroll(to)
		return
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		s.InjectScroll(from + (to-from)*t)
	}
}

// Pending returns the number of queued signals.
func (s *Scene) Pending() int {
	return len(s.injectQueue)
}

// processInjectedSignal pops one signal from the inject queue and feeds it
// to the scroller. Returns true if a signal was consumed.
func (s *Scene) processInjectedSignal() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	sig := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	switch sig.kind {
	case signalScrollTo:
		s.scroller.SetOffset(sig.a)
	case signalScrollBy:
		s.scroller.ScrollBy(sig.a)
	case signalResize:
		s.scroller.Resize(sig.a, sig.b)
	}
	return true
}
