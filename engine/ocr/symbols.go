// Package ocr turns scanned page images into positioned glyphs.
//
// Recognition goes through Tesseract (via gosseract) and is only compiled in
// with the "ocr" build tag; without it New returns ErrOCRNotEnabled. The conversion from recognised symbols to engine glyphs
// is independent of Tesseract and always available.
package ocr

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/model"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Symbol is one recognised character with its pixel box and layout
// numbering from Tesseract.
type Symbol struct {
	Box        image.Rectangle
	Text       string
	Block      int
	Par        int
	Line       int
	Word       int
	Confidence float64

	// LineHeight is the pixel height of the enclosing text line.
	LineHeight int
}

type lineKey struct {
	block, par, line int
}

// Font is the font name given to recognised glyphs.
const Font = "ocr"

// Glyphs converts symbols to engine glyphs in page units. scale is the
// number of pixels per page unit. A space glyph is inserted between words of
// the same line. Glyph size is the line height, so all glyphs of a line fall
// into one run unless the line mixes heights.
func Glyphs(symbols []Symbol, scale float64) []engine.Glyph {
	if scale <= 0 {
		scale = 1
	}
	var (
		out     []engine.Glyph
		lineIDs = make(map[lineKey]int)
		prev    *Symbol
	)
	for i := range symbols {
		s := &symbols[i]
		if s.Text == "" {
			continue
		}
		key := lineKey{s.Block, s.Par, s.Line}
		id, ok := lineIDs[key]
		if !ok {
			id = len(lineIDs)
			lineIDs[key] = id
		}

		rect := toRect(s.Box, scale)
		size := float64(s.LineHeight) / scale
		if size <= 0 {
			size = rect.Height()
		}
		size = math.Round(size*10) / 10

		if prev != nil && prev.Word != s.Word && (lineKey{prev.Block, prev.Par, prev.Line}) == key {
			gap := toRect(prev.Box, scale)
			out = append(out, engine.Glyph{
				Text:  " ",
				Rect:  model.Rect{X0: gap.X1, Y0: math.Min(gap.Y0, rect.Y0), X1: math.Max(gap.X1, rect.X0), Y1: math.Max(gap.Y1, rect.Y1)},
				Font:  Font,
				Size:  size,
				Color: 0,
				Block: s.Block,
				Line:  id,
			})
		}

		out = append(out, engine.Glyph{
			Text:  s.Text,
			Rect:  rect,
			Font:  Font,
			Size:  size,
			Color: 0,
			Block: s.Block,
			Line:  id,
		})
		prev = s
	}
	return out
}

func toRect(b image.Rectangle, scale float64) model.Rect {
	return model.Rect{
		X0: float64(b.Min.X) / scale,
		Y0: float64(b.Min.Y) / scale,
		X1: float64(b.Max.X) / scale,
		Y1: float64(b.Max.Y) / scale,
	}
}

// Recognizer is implemented by Client.
type Recognizer interface {
	Symbols(imageData []byte) ([]Symbol, error)
}

// PageImager renders a page to encoded image bytes (PNG, TIFF, ...).
type PageImager func(page int) ([]byte, error)

// Source adds OCR glyphs to an engine whose pages are images. It implements
// engine.Engine by delegation and engine.GlyphSource through recognition.
type Source struct {
	engine.Engine

	rec    Recognizer
	render PageImager
	scale  float64
}

var _ engine.GlyphSource = (*Source)(nil)

// NewSource wraps base. render produces the image of a page at scale pixels
// per page unit.
func NewSource(base engine.Engine, rec Recognizer, render PageImager, scale float64) *Source {
	return &Source{Engine: base, rec: rec, render: render, scale: scale}
}

// Glyphs implements engine.GlyphSource.
func (s *Source) Glyphs(page int) ([]engine.Glyph, error) {
	data, err := s.render(page)
	if err != nil {
		return nil, fmt.Errorf("ocr: render page %d: %w", page, err)
	}
	symbols, err := s.rec.Symbols(data)
	if err != nil {
		return nil, fmt.Errorf("ocr: page %d: %w", page, err)
	}
	return Glyphs(symbols, s.scale), nil
}

// Save implements engine.Saver by delegating to the wrapped engine.
func (s *Source) Save() error {
	if saver, ok := s.Engine.(engine.Saver); ok {
		return saver.Save()
	}
	return model.ErrSaveUnsupported
}
