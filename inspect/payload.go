// Package inspect builds the inspection payload of a document: every page
// as nested block, line and span records carrying the container id, rect,
// a text sample and the style. External tooling reads it to discover
// container ids before issuing ID selectors.
//
// The payload can be exported as JSON, JSON Lines, CSV, TSV, a Markdown
// report or an HTML report rendered from that Markdown.
package inspect

import (
	"fmt"

	"github.com/tsawler/respan/model"
	"github.com/tsawler/respan/pagetree"
	"github.com/tsawler/respan/runs"
)

// DefaultSampleLength is the number of runes kept in a text sample.
const DefaultSampleLength = 40

// PageSource provides built pages.
type PageSource interface {
	PageCount() int
	Page(index int) (*pagetree.Page, error)
}

// Payload is the inspection payload of a document.
type Payload struct {
	Pages []PageRecord `json:"pages"`
}

// PageRecord describes one page.
type PageRecord struct {
	Index   int           `json:"index"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Blocks  []BlockRecord `json:"blocks"`
	Figures []model.Rect  `json:"figures,omitempty"`
	Palette []runs.Entry  `json:"palette,omitempty"`
}

// Record is the part shared by block, line and span records.
type Record struct {
	ID         string      `json:"id"`
	Rect       model.Rect  `json:"rect"`
	TextSample string      `json:"text_sample"`
	Style      model.Style `json:"style"`
}

// BlockRecord is a block with its lines.
type BlockRecord struct {
	Record
	Lines []LineRecord `json:"lines"`
}

// LineRecord is a line with its spans.
type LineRecord struct {
	Record
	Spans []Record `json:"spans"`
}

// Options controls payload construction.
type Options struct {
	// SampleLength truncates text samples to this many runes (default: 40).
	// Negative keeps full text.
	SampleLength int

	// Pages restricts the payload to these page indices (default: all)
	Pages []int

	// Palette adds each page's style palette
	Palette bool
}

// DefaultOptions returns the default payload options.
func DefaultOptions() Options {
	return Options{SampleLength: DefaultSampleLength, Palette: true}
}

// Build walks pages and returns their payload.
func Build(src PageSource, opts Options) (Payload, error) {
	if opts.SampleLength == 0 {
		opts.SampleLength = DefaultSampleLength
	}

	indices := opts.Pages
	if indices == nil {
		indices = make([]int, src.PageCount())
		for i := range indices {
			indices[i] = i
		}
	}

	payload := Payload{Pages: make([]PageRecord, 0, len(indices))}
	for _, i := range indices {
		p, err := src.Page(i)
		if err != nil {
			return Payload{}, fmt.Errorf("inspect page %d: %w", i, err)
		}
		payload.Pages = append(payload.Pages, pageRecord(p, opts))
	}
	return payload, nil
}

func pageRecord(p *pagetree.Page, opts Options) PageRecord {
	rec := PageRecord{
		Index:   p.Index,
		Width:   p.Width,
		Height:  p.Height,
		Blocks:  []BlockRecord{},
		Figures: p.Figures(),
	}

	blocks := make(map[model.Address]int)
	for _, b := range p.Blocks() {
		blocks[b.Address] = len(rec.Blocks)
		rec.Blocks = append(rec.Blocks, BlockRecord{Record: record(b, opts.SampleLength)})
	}

	type pos struct{ block, line int }
	lines := make(map[model.Address]pos)
	for _, l := range p.Lines() {
		bi := blocks[l.Address.Truncate(model.LevelBlock)]
		b := &rec.Blocks[bi]
		lines[l.Address] = pos{bi, len(b.Lines)}
		b.Lines = append(b.Lines, LineRecord{Record: record(l, opts.SampleLength)})
	}

	var palette *runs.Palette
	if opts.Palette {
		palette = runs.NewPalette()
	}
	for _, s := range p.Spans() {
		at := lines[s.Address.Truncate(model.LevelLine)]
		l := &rec.Blocks[at.block].Lines[at.line]
		l.Spans = append(l.Spans, record(s, opts.SampleLength))
		if palette != nil {
			palette.Add(s.Style, s.Text)
		}
	}
	if palette != nil {
		rec.Palette = palette.Entries()
	}
	return rec
}

func record(c model.Container, n int) Record {
	return Record{
		ID:         c.ID(),
		Rect:       c.Rect,
		TextSample: Sample(c.Text, n),
		Style:      c.Style,
	}
}

// Sample truncates s to n runes, marking the cut with "…". A negative n
// keeps s whole.
func Sample(s string, n int) string {
	if n < 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// Containers flattens the payload to the records of one level in document
// order.
func (p Payload) Containers(level model.Level) []Record {
	var out []Record
	for _, page := range p.Pages {
		for _, b := range page.Blocks {
			if level == model.LevelBlock {
				out = append(out, b.Record)
				continue
			}
			for _, l := range b.Lines {
				if level == model.LevelLine {
					out = append(out, l.Record)
					continue
				}
				out = append(out, l.Spans...)
			}
		}
	}
	return out
}
