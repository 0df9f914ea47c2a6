// Package scrollreel drives scene-graph animation from scroll position.
//
// A [Handle] binds a timeline to a trigger region of the page. While the
// viewport scrolls through the region, a [ProgressSource] turns the scroll
// offset into a normalized progress value, the region's content is pinned
// in place, and the [Engine] samples every declared [Track] at that progress
// and writes the interpolated properties to the target [Node]s.
//
// # Quick start
//
//	cards := scrollreel.NewElementSet("cards", 5)
//	for i := range 5 {
//		cards.Set(i, scrollreel.NewSprite(fmt.Sprintf("card%d", i), 300, 450))
//	}
//	h, err := scrollreel.Attach(scene.Scroller(), scrollreel.Config{
//		Trigger: scrollreel.TriggerAnchor{Top: 400, Span: 2000, Pin: true},
//		Sets:    []*scrollreel.ElementSet{cards},
//		Rings:   []scrollreel.Ring{{Set: "cards", Pivot: scrollreel.Pivot{XPercent: 50, YOffset: 1700}}},
//		Timeline: scrollreel.Timeline{Tracks: []scrollreel.TrackDecl{{
//			Name:    "spin",
//			Targets: []scrollreel.Target{scrollreel.All("cards")},
//			Segments: []scrollreel.SegmentDecl{{
//				Duration: 1,
//				To:       scrollreel.PropertyMap{scrollreel.PropRotation: scrollreel.Rel(-300)},
//				Ease:     scrollreel.EaseByName("power2"),
//			}},
//		}}},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer h.Release()
//
// # Timelines
//
// Tracks are scheduled with explicit anchors instead of call order: [At]
// places a track at an absolute offset, [With] starts it together with
// another track and [After] chains it to another track's end. The graph is
// resolved once when the engine is built.
//
// Sampling is a pure function of progress. Values are always computed from
// each segment's fixed endpoints, so sampling the same progress twice, or
// scrolling back and forth, never accumulates drift.
//
// # Completion events
//
// Segments emit a [CompletionEvent] when they finish while moving forward
// and when they unwind back to their start while moving backward. Subscribe
// to forward events with [Engine.OnComplete] and to backward events with
// [Engine.OnReverseComplete], or route both into an ECS world via the
// adapter in scrollreel/ecs.
//
// Timelines can also be written as HCL documents; see scrollreel/decl.
package scrollreel
