// Package pagetree adapts an engine's per-page block/line/span tree into
// addressable containers.
//
// Addresses are positional: the block index counts every block the engine
// reports, text or not, and line and span indices count within their parent.
// Non-text blocks produce no containers but their rects are kept so callers
// can ask whether a region is occupied by an image or drawing.
//
// A line aggregate joins its span texts directly; a block aggregate joins its
// lines with "\n". An aggregate's rect is the union of its children and its
// style is the style of its first span.
//
// Pages are built lazily and memoised by a Cache owned by the document.
package pagetree

import (
	"fmt"
	"strings"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/model"
)

// Page is the container view of one page. It is immutable once built and
// safe for concurrent reads. Slices returned by its methods must not be
// modified.
type Page struct {
	Index  int
	Width  float64
	Height float64

	spans    []model.Container
	lines    []model.Container
	blocks   []model.Container
	byAddr   map[model.Address]model.Container
	occupied []model.Rect
}

// Build converts a raw engine tree into a Page. A span colour the model
// cannot normalise fails the whole page with ErrInvalidColorFormat annotated
// with the span address.
func Build(page int, raw *engine.PageTree) (*Page, error) {
	p := &Page{
		Index:  page,
		byAddr: make(map[model.Address]model.Container),
	}
	if raw == nil {
		return p, nil
	}
	p.Width, p.Height = raw.Width, raw.Height

	for bi, b := range raw.Blocks {
		if b.Type != engine.BlockText {
			p.occupied = append(p.occupied, b.Rect)
			continue
		}

		var (
			block     model.Container
			lineTexts []string
			haveBlock bool
		)
		for li, l := range b.Lines {
			var (
				line     model.Container
				haveLine bool
				text     strings.Builder
			)
			for si, s := range l.Spans {
				addr := model.SpanAddress(page, bi, li, si)
				color, err := model.NormalizeColor(s.Color)
				if err != nil {
					return nil, fmt.Errorf("span %s: %w", addr, err)
				}
				span := model.Container{
					Address: addr,
					Text:    s.Text,
					Rect:    s.Rect,
					Style:   model.Style{Font: s.Font, Size: s.Size, Color: color}.WithFlags(s.Flags),
				}
				p.add(span)
				text.WriteString(s.Text)

				if !haveLine {
					line = model.Container{Address: model.LineAddress(page, bi, li), Rect: span.Rect, Style: span.Style}
					haveLine = true
				} else {
					line.Rect = line.Rect.Union(span.Rect)
				}
			}
			if !haveLine {
				continue
			}
			line.Text = text.String()
			p.add(line)
			lineTexts = append(lineTexts, line.Text)

			if !haveBlock {
				block = model.Container{Address: model.BlockAddress(page, bi), Rect: line.Rect, Style: line.Style}
				haveBlock = true
			} else {
				block.Rect = block.Rect.Union(line.Rect)
			}
		}
		if !haveBlock {
			continue
		}
		block.Text = strings.Join(lineTexts, "\n")
		p.add(block)
	}
	return p, nil
}

func (p *Page) add(c model.Container) {
	switch c.Address.Level {
	case model.LevelSpan:
		p.spans = append(p.spans, c)
	case model.LevelLine:
		p.lines = append(p.lines, c)
	case model.LevelBlock:
		p.blocks = append(p.blocks, c)
	}
	p.byAddr[c.Address] = c
}

// Spans returns every span of the page in document order.
func (p *Page) Spans() []model.Container { return p.spans }

// Lines returns every line aggregate in document order.
func (p *Page) Lines() []model.Container { return p.lines }

// Blocks returns every text block aggregate in document order.
func (p *Page) Blocks() []model.Container { return p.blocks }

// Containers returns the containers of one level.
func (p *Page) Containers(level model.Level) []model.Container {
	switch level {
	case model.LevelBlock:
		return p.blocks
	case model.LevelLine:
		return p.lines
	default:
		return p.spans
	}
}

// Within returns the containers of one level whose rect intersects r
// grown by tol on every side, in document order.
func (p *Page) Within(r model.Rect, tol float64, level model.Level) []model.Container {
	area := r.Expand(tol)
	var out []model.Container
	for _, c := range p.Containers(level) {
		if area.Intersects(c.Rect) {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the container at addr, at addr's level.
func (p *Page) Lookup(addr model.Address) (model.Container, bool) {
	if addr.Page != p.Index {
		return model.Container{}, false
	}
	c, ok := p.byAddr[addr]
	return c, ok
}

// Aggregate returns the container addressed by prefix: a block or line
// aggregate, or a single span. It fails with ErrNoMatch when nothing on the
// page has that prefix.
func (p *Page) Aggregate(prefix model.Address) (model.Container, error) {
	c, ok := p.Lookup(prefix)
	if !ok {
		return model.Container{}, fmt.Errorf("%w: no container at %s", model.ErrNoMatch, prefix)
	}
	return c, nil
}

// Occupied reports whether rect intersects a non-text block.
func (p *Page) Occupied(rect model.Rect) bool {
	for _, r := range p.occupied {
		if r.Intersects(rect) {
			return true
		}
	}
	return false
}

// Figures returns the rects of the page's non-text blocks.
func (p *Page) Figures() []model.Rect { return p.occupied }
