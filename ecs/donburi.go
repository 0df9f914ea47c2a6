package ecs

import (
	"github.com/phanxgames/scrollreel"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// CompletionEventType is the Donburi event type for timeline completion
// events, forward and backward.
var CompletionEventType = events.NewEventType[scrollreel.CompletionEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// queued on CompletionEventType and delivered by ProcessEvents, usually
// from a system's update.
func NewDonburiSink(world donburi.World) scrollreel.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitCompletion(event scrollreel.CompletionEvent) {
	CompletionEventType.Publish(s.world, event)
}
