// Package runs groups a flat stream of positioned glyphs into
// style-homogeneous runs.
//
// Grouping is a single pass over the glyphs in the order the engine emitted
// them. A run ends when the next glyph's style is not compatible with the
// run's style (see model.Style.Compatible) or when the engine's block or line
// hint changes. Whitespace and punctuation never end a run on their own.
package runs

import (
	"fmt"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/model"
)

// Group builds a page tree from glyphs. Every distinct block hint becomes a
// text block, every distinct line hint within it a line, and every run a
// span. The span style is the style of the run's first glyph and the span
// colour is the normalised model.RGB.
func Group(glyphs []engine.Glyph) (*engine.PageTree, error) {
	g := grouper{}
	for i, gl := range glyphs {
		color, err := model.NormalizeColor(gl.Color)
		if err != nil {
			return nil, fmt.Errorf("glyph %d (%q): %w", i, gl.Text, err)
		}
		st := model.Style{Font: gl.Font, Size: gl.Size, Color: color}.WithFlags(gl.Flags)
		g.add(gl, st)
	}
	g.closeBlock()
	return &engine.PageTree{Blocks: g.blocks}, nil
}

type grouper struct {
	blocks []engine.Block

	block *engine.Block
	line  *engine.Line
	run   *engine.Span
	style model.Style

	blockHint, lineHint int
}

func (g *grouper) add(gl engine.Glyph, st model.Style) {
	switch {
	case g.block == nil || gl.Block != g.blockHint:
		g.closeBlock()
		g.block = &engine.Block{Type: engine.BlockText}
		g.blockHint = gl.Block
		g.openLine(gl.Line)
	case gl.Line != g.lineHint:
		g.closeLine()
		g.openLine(gl.Line)
	case !g.style.Compatible(st):
		g.closeRun()
	}

	if g.run == nil {
		g.run = &engine.Span{
			Rect:  gl.Rect,
			Font:  st.Font,
			Size:  st.Size,
			Color: st.Color,
			Flags: st.Flags(),
		}
		g.style = st
	} else {
		g.run.Rect = g.run.Rect.Union(gl.Rect)
	}
	g.run.Text += gl.Text
}

func (g *grouper) openLine(hint int) {
	g.line = &engine.Line{}
	g.lineHint = hint
}

func (g *grouper) closeRun() {
	if g.run == nil {
		return
	}
	if len(g.line.Spans) == 0 {
		g.line.Rect = g.run.Rect
	} else {
		g.line.Rect = g.line.Rect.Union(g.run.Rect)
	}
	g.line.Spans = append(g.line.Spans, *g.run)
	g.run = nil
}

func (g *grouper) closeLine() {
	if g.line == nil {
		return
	}
	g.closeRun()
	if len(g.line.Spans) > 0 {
		if len(g.block.Lines) == 0 {
			g.block.Rect = g.line.Rect
		} else {
			g.block.Rect = g.block.Rect.Union(g.line.Rect)
		}
		g.block.Lines = append(g.block.Lines, *g.line)
	}
	g.line = nil
}

func (g *grouper) closeBlock() {
	if g.block == nil {
		return
	}
	g.closeLine()
	if len(g.block.Lines) > 0 {
		g.blocks = append(g.blocks, *g.block)
	}
	g.block = nil
}
