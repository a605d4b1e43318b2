// Package respan locates regions of a paginated document and replaces the
// text inside them.
//
// A document is anything that implements engine.Engine: a read-only
// block/line/span tree per page, plus primitives to blank a rectangle and to
// draw text inside one. respan builds addressable containers from the tree,
// resolves selectors to exactly one container, and sequences blank-then-draw
// edits.
//
// Basic usage:
//
//	doc := respan.Open(eng)
//	target, err := doc.Resolve(selector.Text("Draft"))
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(target.ID(), target.Rect, target.Style)
//
// Replacing text:
//
//	id, err := doc.Replace(selector.Text("Draft")).
//	    With("Final").
//	    Padding(1).
//	    Align(model.AlignCenter).
//	    Submit()
//	outcomes := doc.ApplyAll()
//	err = doc.Save()
//
// Documents can also be typeset from Markdown or HTML onto the in-memory
// raster engine:
//
//	doc, err := respan.FromMarkdown(src)
//
// For advanced use cases the lower-level packages (pagetree, selector,
// resolver, replace, inspect) are also available.
package respan

import (
	"bytes"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/engine/htmlsource"
	"github.com/tsawler/respan/engine/markdown"
	"github.com/tsawler/respan/engine/ocr"
	"github.com/tsawler/respan/engine/raster"
)

// Open returns a Document over an engine. The engine must already hold an
// opened document; failing to open or decode the source is the engine's
// error to report.
//
// Example:
//
//	doc := respan.Open(eng, respan.WithLogger(logger), respan.WithTolerance(2))
func Open(e engine.Engine, opts ...Option) *Document {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newDocument(e, o)
}

// FromMarkdown typesets Markdown onto a new raster engine and opens it.
//
// Example:
//
//	doc, err := respan.FromMarkdown([]byte("# Draft\n\nQuarterly numbers."))
func FromMarkdown(src []byte, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	eng, err := markdown.Load(src, markdown.DefaultOptions(), o.rasterOptions())
	if err != nil {
		return nil, err
	}
	return newDocument(eng, o), nil
}

// FromHTML typesets simple HTML onto a new raster engine and opens it.
func FromHTML(src []byte, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	eng, err := htmlsource.Load(bytes.NewReader(src), htmlsource.DefaultOptions(), o.rasterOptions())
	if err != nil {
		return nil, err
	}
	return newDocument(eng, o), nil
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	target := respan.Must(doc.Resolve(selector.Text("Total")))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Raster returns the document's engine as a raster engine, or nil when the
// document was opened over another engine.
func (d *Document) Raster() *raster.Engine {
	switch e := d.eng.(type) {
	case *raster.Engine:
		return e
	case *ocr.Source:
		r, _ := e.Engine.(*raster.Engine)
		return r
	}
	return nil
}
