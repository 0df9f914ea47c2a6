package scrollreel

import (
	"encoding/json"
	"errors"
	"fmt"
)

// testStep represents a single action in a scroll script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Offset float64 `json:"offset,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	From   float64 `json:"from,omitempty"`
	To     float64 `json:"to,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a scroll script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected scroll and resize signals across frames.
// Attach to a Scene via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON scroll script, e.g.
//
//	{"steps": [
//	  {"action": "sweep", "from": 0, "to": 2000, "frames": 60},
//	  {"action": "wait", "frames": 10},
//	  {"action": "screenshot", "label": "end"},
//	  {"action": "scroll", "offset": 0}
//	]}
//
// Actions are scroll, scrollBy, sweep, resize, wait and screenshot.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "scroll", "scrollBy", "sweep", "resize", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the scene. The runner steps once per
// frame before input is processed.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps in the script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from Scene.Update.
func (r *TestRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "scroll":
		s.InjectScroll(st.Offset)
	case "scrollBy":
		s.InjectScrollBy(st.Delta)
	case "sweep":
		s.InjectSweep(st.From, st.To, st.Frames)
	case "resize":
		s.InjectResize(st.Width, st.Height)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}
}
