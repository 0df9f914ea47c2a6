package decl

import (
	"context"
	"fmt"

	"github.com/phanxgames/scrollreel"
	"github.com/phanxgames/scrollreel/internal/ctxlog"
)

// Nodes maps the names used in a document to mounted nodes: one slice per
// element set, and a single-node slice for the trigger element.
type Nodes map[string][]*scrollreel.Node

// Bind resolves the document against mounted nodes and returns a Config
// ready for scrollreel.Attach. The config's logger comes from ctx.
//
// Every set must be bound to exactly its declared count of nodes. Empty
// slots (nil nodes) are left for Attach to report.
func (d *Document) Bind(ctx context.Context, nodes Nodes) (scrollreel.Config, error) {
	logger := ctxlog.FromContext(ctx)

	cfg := scrollreel.Config{
		Rings:    append([]scrollreel.Ring(nil), d.Rings...),
		Timeline: d.Timeline,
		Logger:   logger,
	}

	t := d.Trigger
	cfg.Trigger = scrollreel.TriggerAnchor{
		ViewportFraction: t.ViewportFraction,
		Span:             t.Span,
		SpanViewports:    t.SpanViewports,
		Pin:              t.Pin,
	}
	if t.Element != "" {
		bound := nodes[t.Element]
		if len(bound) != 1 || bound[0] == nil {
			return scrollreel.Config{}, fmt.Errorf("bind %s: trigger element %q needs exactly one node, got %d: %w",
				d.Filename, t.Element, len(bound), scrollreel.ErrUnresolvedElement)
		}
		n := bound[0]
		cfg.Trigger.Node = n
		cfg.Trigger.Top = n.Y - n.PivotY
	}
	if t.Top != nil {
		cfg.Trigger.Top = *t.Top
	}

	for _, sd := range d.Sets {
		bound, ok := nodes[sd.Name]
		if !ok {
			return scrollreel.Config{}, fmt.Errorf("bind %s: set %q: %w", d.Filename, sd.Name, scrollreel.ErrUnknownSet)
		}
		if len(bound) != sd.Count {
			return scrollreel.Config{}, fmt.Errorf("bind %s: set %q declares %d elements, got %d: %w",
				d.Filename, sd.Name, sd.Count, len(bound), scrollreel.ErrCountMismatch)
		}
		set := scrollreel.NewElementSet(sd.Name, sd.Count)
		for i, n := range bound {
			set.Set(i, n)
		}
		cfg.Sets = append(cfg.Sets, set)
	}

	logger.Debug("Bound timeline document.", "filename", d.Filename, "sets", len(cfg.Sets), "trigger", t.Element)
	return cfg, nil
}
