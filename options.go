package respan

import (
	"io"

	"go.uber.org/zap"

	"github.com/tsawler/respan/engine/ocr"
	"github.com/tsawler/respan/engine/raster"
	"github.com/tsawler/respan/inspect"
	"github.com/tsawler/respan/model"
	"github.com/tsawler/respan/resolver"
)

// Options holds configuration for a Document.
type Options struct {
	logger *zap.Logger

	// Replacement defaults
	fill model.RGB

	// Resolution
	tolerance float64

	// Inspection
	sampleLength int

	// Build page trees from engine glyphs instead of engine spans
	glyphs bool

	// Raster output for documents typeset by FromMarkdown/FromHTML
	output io.Writer

	// Recognizer settings for FromImage and OpenFile
	ocr []ocr.Option
}

// Option configures a Document.
type Option func(*Options)

// defaultOptions returns the default document options.
func defaultOptions() Options {
	return Options{
		logger:       zap.NewNop(),
		fill:         model.White,
		tolerance:    resolver.DefaultTolerance,
		sampleLength: inspect.DefaultSampleLength,
		glyphs:       false,
	}
}

// clone creates a copy of Options.
func (o Options) clone() Options {
	return Options{
		logger:       o.logger,
		fill:         o.fill,
		tolerance:    o.tolerance,
		sampleLength: o.sampleLength,
		glyphs:       o.glyphs,
		output:       o.output,
		ocr:          append([]ocr.Option(nil), o.ocr...),
	}
}

func (o Options) rasterOptions() raster.Options {
	opts := raster.DefaultOptions()
	opts.Logger = o.logger
	opts.Output = o.output
	return opts
}

// WithLogger sets the logger (default: no-op). Cache fills and resolutions
// log at debug level, applied replacements at info, failed ones at warn.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFill sets the default colour used to blank replaced regions
// (default: white). Any encoding model.NormalizeColor accepts is allowed;
// an invalid colour leaves the default in place.
func WithFill(c any) Option {
	return func(o *Options) {
		if rgb, err := model.NormalizeColor(c); err == nil {
			o.fill = rgb
		}
	}
}

// WithTolerance sets the BBox tolerance for selectors that do not set
// their own (default: 1).
func WithTolerance(t float64) Option {
	return func(o *Options) {
		if t >= 0 {
			o.tolerance = t
		}
	}
}

// WithSampleLength sets the text sample length of inspection payloads
// (default: 40). Negative keeps full text.
func WithSampleLength(n int) Option {
	return func(o *Options) {
		if n != 0 {
			o.sampleLength = n
		}
	}
}

// WithGlyphs builds page trees by grouping the engine's glyphs into
// style runs. It has no effect when the engine does not implement
// engine.GlyphSource.
func WithGlyphs() Option {
	return func(o *Options) {
		o.glyphs = true
	}
}

// WithOutput sets where Save writes documents typeset by FromMarkdown and
// FromHTML.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.output = w
	}
}

// WithOCRLanguages sets the Tesseract languages used to recognise images
// (default: eng).
func WithOCRLanguages(langs ...string) Option {
	return func(o *Options) {
		o.ocr = append(o.ocr, ocr.WithLanguages(langs...))
	}
}

// WithOCRPageSegMode sets how Tesseract segments recognised images
// (default: ocr.SegmentAuto).
func WithOCRPageSegMode(mode ocr.PageSegMode) Option {
	return func(o *Options) {
		o.ocr = append(o.ocr, ocr.WithPageSegMode(mode))
	}
}
