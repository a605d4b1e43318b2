// Package testdoc builds page tree fixtures and engines for tests.
package testdoc

import (
	"sync/atomic"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/engine/raster"
	"github.com/tsawler/respan/model"
)

// Span returns a black span.
func Span(text string, r model.Rect, font string, size float64, flags int) engine.Span {
	return engine.Span{Text: text, Rect: r, Font: font, Size: size, Color: 0, Flags: flags}
}

// Line returns a line whose rect is the union of its spans.
func Line(spans ...engine.Span) engine.Line {
	l := engine.Line{Spans: spans}
	for i, s := range spans {
		if i == 0 {
			l.Rect = s.Rect
		} else {
			l.Rect = l.Rect.Union(s.Rect)
		}
	}
	return l
}

// TextBlock returns a text block whose rect is the union of its lines.
func TextBlock(lines ...engine.Line) engine.Block {
	b := engine.Block{Type: engine.BlockText, Lines: lines}
	for i, l := range lines {
		if i == 0 {
			b.Rect = l.Rect
		} else {
			b.Rect = b.Rect.Union(l.Rect)
		}
	}
	return b
}

// ImageBlock returns a non-text block.
func ImageBlock(r model.Rect) engine.Block {
	return engine.Block{Type: engine.BlockImage, Rect: r}
}

// Engine returns a raster engine with one Letter-sized page per tree.
func Engine(trees ...*engine.PageTree) *raster.Engine {
	e := raster.New(raster.DefaultOptions())
	for _, t := range trees {
		i := e.AddPage(612, 792)
		_ = e.SetTree(i, t)
	}
	return e
}

// Counting wraps an engine and counts PageTree calls.
type Counting struct {
	engine.Engine
	calls atomic.Int64
}

// NewCounting wraps e.
func NewCounting(e engine.Engine) *Counting {
	return &Counting{Engine: e}
}

// PageTree implements engine.Engine.
func (c *Counting) PageTree(page int) (*engine.PageTree, error) {
	c.calls.Add(1)
	return c.Engine.PageTree(page)
}

// Calls returns how many times PageTree was called.
func (c *Counting) Calls() int {
	return int(c.calls.Load())
}

// ScenarioPage is a page with three text blocks and an image:
//
//	block 0: "Draft" (bold) "Report"
//	block 1: image
//	block 2: two lines, "Summary" (italic, 14pt) "of results" / "Second line"
//	block 3: "Footer"
func ScenarioPage() *engine.PageTree {
	return &engine.PageTree{
		Width:  612,
		Height: 792,
		Blocks: []engine.Block{
			TextBlock(Line(
				Span("Draft", model.Rect{X0: 72, Y0: 72, X1: 110, Y1: 86}, "Helvetica", 12, model.FlagBold),
				Span(" Report", model.Rect{X0: 110, Y0: 72, X1: 160, Y1: 86}, "Helvetica", 12, 0),
			)),
			ImageBlock(model.Rect{X0: 72, Y0: 100, X1: 300, Y1: 200}),
			TextBlock(
				Line(
					Span("Summary", model.Rect{X0: 72, Y0: 210, X1: 130, Y1: 226}, "Helvetica", 14, model.FlagItalic),
					Span(" of results", model.Rect{X0: 130, Y0: 210, X1: 200, Y1: 226}, "Helvetica", 12, 0),
				),
				Line(
					Span("Second line", model.Rect{X0: 72, Y0: 228, X1: 240, Y1: 242}, "Helvetica", 12, 0),
				),
			),
			TextBlock(Line(
				Span("Footer", model.Rect{X0: 72, Y0: 700, X1: 120, Y1: 712}, "Courier", 10, 0),
			)),
		},
	}
}
