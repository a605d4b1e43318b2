package raster

import (
	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/model"
)

var _ engine.GlyphSource = (*Engine)(nil)

// Glyphs implements engine.GlyphSource by splitting every span of the page
// tree into per-character glyphs positioned with the span's font metrics.
// Block and line hints carry the tree position, so regrouping the glyphs
// reproduces the tree's line structure.
func (e *Engine) Glyphs(pageIndex int) ([]engine.Glyph, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return nil, err
	}

	var out []engine.Glyph
	lineID := 0
	for bi, b := range p.tree.Blocks {
		if b.Type != engine.BlockText {
			continue
		}
		for _, l := range b.Lines {
			for _, s := range l.Spans {
				st := model.Style{Font: s.Font, Size: s.Size}.WithFlags(s.Flags)
				face, err := e.fonts.face(st, 1)
				if err != nil {
					return nil, err
				}
				x := s.Rect.X0
				for _, r := range s.Text {
					w := measure(face, string(r))
					out = append(out, engine.Glyph{
						Text:  string(r),
						Rect:  model.Rect{X0: x, Y0: s.Rect.Y0, X1: x + w, Y1: s.Rect.Y1},
						Font:  s.Font,
						Size:  s.Size,
						Color: s.Color,
						Flags: s.Flags,
						Block: bi,
						Line:  lineID,
					})
					x += w
				}
			}
			lineID++
		}
	}
	return out, nil
}
