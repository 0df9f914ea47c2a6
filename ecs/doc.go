// Package ecs provides ECS adapters for scrollreel completion events.
//
// The primary adapter is [NewDonburiSink], which publishes timeline
// completion events into a [Donburi] world as typed events. Subscribe to
// [CompletionEventType] in your ECS systems to receive them.
//
// Usage:
//
//	cfg.Sink = ecs.NewDonburiSink(world)
//	handle, err := scrollreel.Attach(scene.Scroller(), cfg)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
