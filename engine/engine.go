// Package engine defines the document engine collaborator that respan
// reads structure from and draws into.
//
// An engine owns the file format. respan only needs a read-only structural
// tree per page, a way to blank a rectangle, and a way to lay out text inside
// a rectangle. Engines that only know positioned glyphs can implement
// [GlyphSource] instead of returning spans from PageTree; respan then groups
// the glyphs into runs itself.
package engine

import (
	"github.com/tsawler/respan/model"
)

// Engine is the document engine collaborator.
type Engine interface {
	// PageCount returns the number of pages in the open document.
	PageCount() int

	// PageSize returns the width and height of a page in page units.
	PageSize(page int) (width, height float64, err error)

	// PageTree returns the structural tree of a page.
	PageTree(page int) (*PageTree, error)

	// BlankRegion paints rect with fill, hiding whatever was drawn there.
	BlankRegion(page int, rect model.Rect, fill model.RGB) error

	// DrawText lays out text inside rect with the given style and alignment.
	// It reports whether the text fit; text that does not fit is not drawn.
	DrawText(page int, rect model.Rect, text string, style model.Style, align model.Alignment) (bool, error)
}

// GlyphSource is implemented by engines that expose positioned glyphs
// rather than grouped spans.
type GlyphSource interface {
	Glyphs(page int) ([]Glyph, error)
}

// Saver is implemented by engines that can persist the mutations made by
// BlankRegion and DrawText.
type Saver interface {
	Save() error
}

// BlockType distinguishes text blocks from other page content.
type BlockType int

const (
	BlockText BlockType = iota
	BlockImage
	BlockVector
)

// String returns a string representation of the block type
func (t BlockType) String() string {
	switch t {
	case BlockText:
		return "text"
	case BlockImage:
		return "image"
	case BlockVector:
		return "vector"
	default:
		return "unknown"
	}
}

// PageTree is the engine-native structure of one page.
type PageTree struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Blocks []Block `json:"blocks"`
}

// Block is a text block, or an image/vector block with only a rect.
type Block struct {
	Type  BlockType  `json:"type"`
	Rect  model.Rect `json:"rect"`
	Lines []Line     `json:"lines,omitempty"`
}

// Line is a line of spans.
type Line struct {
	Rect  model.Rect `json:"rect"`
	Spans []Span     `json:"spans"`
}

// Span is a run of text with one style, as reported by the engine.
// Color may use any encoding model.NormalizeColor accepts.
type Span struct {
	Text  string     `json:"text"`
	Rect  model.Rect `json:"rect"`
	Font  string     `json:"font"`
	Size  float64    `json:"size"`
	Color any        `json:"color"`
	Flags int        `json:"flags"`
}

// Glyph is one positioned character. Block and Line are layout hints from
// the engine; glyphs with different hints never share a run.
type Glyph struct {
	Text  string
	Rect  model.Rect
	Font  string
	Size  float64
	Color any
	Flags int
	Block int
	Line  int
}

// TextBlockCount returns the number of text blocks in the tree.
func (t *PageTree) TextBlockCount() int {
	n := 0
	for _, b := range t.Blocks {
		if b.Type == BlockText {
			n++
		}
	}
	return n
}
