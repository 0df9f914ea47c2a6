// Package decl loads scroll timelines declared in HCL.
//
// A document names its element sets, the trigger region, optional rings and
// the tracks of the timeline:
//
//	duration = 2
//
//	trigger {
//	  element = "container"
//	  span    = 2000
//	  pin     = true
//	}
//
//	set "cards" { count = 5 }
//
//	ring "cards" {
//	  pivot = ["50%", "1700px"]
//	}
//
//	track "spin" {
//	  targets = ["cards"]
//	  after   = "intro"
//	  segment {
//	    duration = 1
//	    ease     = "power2"
//	    to       = { rotation = "-=300" }
//	  }
//	}
//
// Property values are numbers, relative strings ("+=80", "-=300") or hex
// colors ("#FBDE5E"). Parse validates everything it can without the scene;
// Document.Bind resolves element names against mounted nodes.
package decl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/phanxgames/scrollreel"
	"github.com/phanxgames/scrollreel/internal/ctxlog"
)

// hclDocument is the top-level structure of a timeline file for decoding.
type hclDocument struct {
	Duration *float64    `hcl:"duration,optional"`
	Trigger  *hclTrigger `hcl:"trigger,block"`
	Sets     []*hclSet   `hcl:"set,block"`
	Rings    []*hclRing  `hcl:"ring,block"`
	Tracks   []*hclTrack `hcl:"track,block"`
}

type hclTrigger struct {
	Element       *string  `hcl:"element,optional"`
	Top           *float64 `hcl:"top,optional"`
	Viewport      *float64 `hcl:"viewport,optional"`
	Span          *float64 `hcl:"span,optional"`
	SpanViewports *float64 `hcl:"span_viewports,optional"`
	Pin           *bool    `hcl:"pin,optional"`
}

type hclSet struct {
	Name  string `hcl:"name,label"`
	Count int    `hcl:"count"`
}

type hclRing struct {
	Set   string   `hcl:"set,label"`
	Pivot []string `hcl:"pivot"`
}

type hclTrack struct {
	Name     string        `hcl:"name,label"`
	Targets  []string      `hcl:"targets"`
	At       *float64      `hcl:"at,optional"`
	With     *string       `hcl:"with,optional"`
	After    *string       `hcl:"after,optional"`
	Offset   *float64      `hcl:"offset,optional"`
	Segments []*hclSegment `hcl:"segment,block"`
}

type hclSegment struct {
	Name     *string        `hcl:"name,optional"`
	Duration float64        `hcl:"duration"`
	Delay    *float64       `hcl:"delay,optional"`
	Ease     *string        `hcl:"ease,optional"`
	From     hcl.Expression `hcl:"from,optional"`
	To       hcl.Expression `hcl:"to"`
}

// TriggerDecl is the document's trigger block.
type TriggerDecl struct {
	// Element names a single-node entry passed to Bind; it becomes the
	// trigger (and pinned) node.
	Element string
	// Top overrides the trigger's page offset. When nil the element's
	// untransformed top edge is used.
	Top              *float64
	ViewportFraction float64
	Span             float64
	SpanViewports    float64
	Pin              bool
}

// SetDecl declares an element set and its fixed size.
type SetDecl struct {
	Name  string
	Count int
}

// Document is a parsed and validated timeline document.
type Document struct {
	Filename string
	Trigger  TriggerDecl
	Sets     []SetDecl
	Rings    []scrollreel.Ring
	Timeline scrollreel.Timeline
}

// Set returns the named set declaration.
func (d *Document) Set(name string) (SetDecl, bool) {
	for _, s := range d.Sets {
		if s.Name == name {
			return s, true
		}
	}
	return SetDecl{}, false
}

// Parse decodes an HCL timeline document. filename is used in diagnostics.
func Parse(ctx context.Context, src []byte, filename string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing timeline document.", "filename", filename, "bytes", len(src))

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse timeline %s: %w", filename, diags)
	}

	var raw hclDocument
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode timeline %s: %w", filename, diags)
	}

	doc, diags := newDocument(&raw, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid timeline %s: %w", filename, diags)
	}

	logger.Debug("Parsed timeline document.",
		"filename", filename,
		"sets", len(doc.Sets),
		"rings", len(doc.Rings),
		"tracks", len(doc.Timeline.Tracks),
	)
	return doc, nil
}

// LoadFile reads and parses the timeline document at path.
func LoadFile(ctx context.Context, path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline %s: %w", path, err)
	}
	return Parse(ctx, src, path)
}

func newDocument(raw *hclDocument, filename string) (*Document, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	doc := &Document{Filename: filename}

	if raw.Duration != nil {
		doc.Timeline.Duration = *raw.Duration
	}

	if t := raw.Trigger; t != nil {
		doc.Trigger = TriggerDecl{
			Element:          deref(t.Element, ""),
			Top:              t.Top,
			ViewportFraction: deref(t.Viewport, 0),
			Span:             deref(t.Span, 0),
			SpanViewports:    deref(t.SpanViewports, 0),
			Pin:              deref(t.Pin, false),
		}
		if doc.Trigger.Element == "" && t.Top == nil {
			diags = append(diags, errorDiag("Trigger has no position",
				`A trigger block needs an "element" to bind or an explicit "top".`, nil))
		}
		if doc.Trigger.Span <= 0 && doc.Trigger.SpanViewports <= 0 {
			diags = append(diags, errorDiag("Empty trigger span",
				`Set "span" or "span_viewports" to a positive scroll distance.`, nil))
		}
	} else {
		diags = append(diags, errorDiag("Missing trigger block",
			"A timeline document must declare exactly one trigger block.", nil))
	}

	seen := make(map[string]bool)
	for _, s := range raw.Sets {
		if seen[s.Name] {
			diags = append(diags, errorDiag("Duplicate set", fmt.Sprintf("Set %q is declared twice.", s.Name), nil))
			continue
		}
		seen[s.Name] = true
		if s.Count < 1 {
			diags = append(diags, errorDiag("Invalid set count", fmt.Sprintf("Set %q must hold at least one element.", s.Name), nil))
			continue
		}
		doc.Sets = append(doc.Sets, SetDecl{Name: s.Name, Count: s.Count})
	}

	for _, r := range raw.Rings {
		if !seen[r.Set] {
			diags = append(diags, errorDiag("Unknown set", fmt.Sprintf("Ring refers to undeclared set %q.", r.Set), nil))
			continue
		}
		pivot, err := parsePivot(r.Pivot)
		if err != nil {
			diags = append(diags, errorDiag("Invalid pivot", err.Error(), nil))
			continue
		}
		doc.Rings = append(doc.Rings, scrollreel.Ring{Set: r.Set, Pivot: pivot})
	}

	for _, t := range raw.Tracks {
		td, tdiags := newTrack(t, seen)
		diags = append(diags, tdiags...)
		if !tdiags.HasErrors() {
			doc.Timeline.Tracks = append(doc.Timeline.Tracks, td)
		}
	}
	return doc, diags
}

func newTrack(t *hclTrack, sets map[string]bool) (scrollreel.TrackDecl, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	td := scrollreel.TrackDecl{Name: t.Name}

	for _, ref := range t.Targets {
		tgt, err := parseTarget(ref)
		if err != nil {
			diags = append(diags, errorDiag("Invalid target", err.Error(), nil))
			continue
		}
		if !sets[tgt.Set] {
			diags = append(diags, errorDiag("Unknown set", fmt.Sprintf("Track %q targets undeclared set %q.", t.Name, tgt.Set), nil))
			continue
		}
		td.Targets = append(td.Targets, tgt)
	}

	anchor, err := newAnchor(t)
	if err != nil {
		diags = append(diags, errorDiag("Invalid anchor", err.Error(), nil))
	}
	td.Anchor = anchor

	if len(t.Segments) == 0 {
		diags = append(diags, errorDiag("Empty track", fmt.Sprintf("Track %q has no segment blocks.", t.Name), nil))
	}
	for _, s := range t.Segments {
		sd, sdiags := newSegment(s)
		diags = append(diags, sdiags...)
		td.Segments = append(td.Segments, sd)
	}
	return td, diags
}

func newAnchor(t *hclTrack) (scrollreel.Anchor, error) {
	offset := deref(t.Offset, 0)
	n := 0
	for _, set := range []bool{t.At != nil, t.With != nil, t.After != nil} {
		if set {
			n++
		}
	}
	if n > 1 {
		return scrollreel.Anchor{}, fmt.Errorf("track %q sets more than one of at, with and after", t.Name)
	}
	switch {
	case t.With != nil:
		return scrollreel.With(*t.With, offset), nil
	case t.After != nil:
		return scrollreel.After(*t.After, offset), nil
	case t.At != nil:
		return scrollreel.At(*t.At + offset), nil
	}
	return scrollreel.At(offset), nil
}

func newSegment(s *hclSegment) (scrollreel.SegmentDecl, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	sd := scrollreel.SegmentDecl{
		Name:     deref(s.Name, ""),
		Duration: s.Duration,
		Delay:    deref(s.Delay, 0),
		Ease:     scrollreel.Linear,
	}
	if s.Ease != nil {
		fn, ok := scrollreel.LookupEase(*s.Ease)
		if !ok {
			diags = append(diags, errorDiag("Unknown ease", fmt.Sprintf("Ease %q is not a known easing name.", *s.Ease), s.To.Range().Ptr()))
		} else {
			sd.Ease = fn
		}
	}

	from, fdiags := decodePropertyMap(s.From)
	diags = append(diags, fdiags...)
	to, tdiags := decodePropertyMap(s.To)
	diags = append(diags, tdiags...)
	sd.From, sd.To = from, to
	if len(to) == 0 && !tdiags.HasErrors() {
		diags = append(diags, errorDiag("Empty segment", `The "to" object must set at least one property.`, s.To.Range().Ptr()))
	}
	return sd, diags
}

func errorDiag(summary, detail string, subject *hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  subject,
	}
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
