package respan

import (
	"fmt"
	"io"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/inspect"
	"github.com/tsawler/respan/model"
	"github.com/tsawler/respan/pagetree"
	"github.com/tsawler/respan/replace"
	"github.com/tsawler/respan/resolver"
	"github.com/tsawler/respan/selector"
)

// Document ties an engine to its page cache, resolver and replacement
// orchestrator. It is safe for concurrent use.
type Document struct {
	eng      engine.Engine
	opts     Options
	cache    *pagetree.Cache
	resolver *resolver.Resolver
	orch     *replace.Orchestrator
	closers  []io.Closer
}

func newDocument(e engine.Engine, opts Options) *Document {
	d := &Document{eng: e, opts: opts.clone()}

	load := pagetree.EngineLoader(e)
	if opts.glyphs {
		if gs, ok := e.(engine.GlyphSource); ok {
			load = pagetree.GlyphLoader(e, gs)
		}
	}
	d.cache = pagetree.NewCache(e, load, opts.logger)
	d.resolver = resolver.NewResolver(d.cache,
		resolver.WithTolerance(opts.tolerance),
		resolver.WithLogger(opts.logger),
	)
	d.orch = replace.New(e, d.resolver,
		replace.WithFill(opts.fill),
		replace.WithLogger(opts.logger),
	)
	return d
}

// Engine returns the underlying engine.
func (d *Document) Engine() engine.Engine {
	return d.eng
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.eng.PageCount()
}

// Page returns the container tree of a page, building it on first use.
func (d *Document) Page(index int) (*pagetree.Page, error) {
	return d.cache.Page(index)
}

// Find returns every container matching sel, in document order.
func (d *Document) Find(sel selector.Selector) ([]model.Container, error) {
	return d.resolver.Find(sel)
}

// Resolve returns the single container sel designates.
func (d *Document) Resolve(sel selector.Selector) (model.Container, error) {
	return d.resolver.Resolve(sel)
}

// InRegion returns the containers of one level on page whose rect
// intersects region, widened by the document's bbox tolerance.
func (d *Document) InRegion(page int, region model.Rect, level model.Level) ([]model.Container, error) {
	return d.resolver.InRegion(page, region, level)
}

// Lookup returns the container with the given id, such as "0:2:1".
func (d *Document) Lookup(id string) (model.Container, error) {
	sel, err := selector.ID(id)
	if err != nil {
		return model.Container{}, err
	}
	return d.resolver.Resolve(sel)
}

// Submit queues a replacement operation and returns its ID.
func (d *Document) Submit(op replace.Operation) (int, error) {
	return d.orch.Submit(op)
}

// Apply applies one queued operation.
func (d *Document) Apply(id int) (replace.Outcome, error) {
	return d.orch.Apply(id)
}

// ApplyAll applies every pending operation in submission order. Page trees
// keep describing the document as opened until Reload.
func (d *Document) ApplyAll() []replace.Outcome {
	return d.orch.ApplyAll()
}

// Save persists applied replacements through the engine.
func (d *Document) Save() error {
	return d.orch.Save()
}

// Operations returns the outcome of every operation not yet flushed by
// Save, in submission order.
func (d *Document) Operations() []replace.Outcome {
	return d.orch.Operations()
}

// Pending returns the number of operations waiting to be applied.
func (d *Document) Pending() int {
	return d.orch.Pending()
}

// Reload drops every cached page tree so the next lookup reads the engine
// again.
func (d *Document) Reload() {
	d.cache.Invalidate()
}

// Inspect returns the container payload for the given pages, or for every
// page when none are given.
func (d *Document) Inspect(pages ...int) (inspect.Payload, error) {
	opts := inspect.DefaultOptions()
	opts.SampleLength = d.opts.sampleLength
	if len(pages) > 0 {
		opts.Pages = pages
	}
	return inspect.Build(d.cache, opts)
}

// Export writes the inspection payload of every page in the given format.
func (d *Document) Export(w io.Writer, format inspect.ExportFormat) error {
	p, err := d.Inspect()
	if err != nil {
		return err
	}
	cfg := inspect.DefaultExportConfig()
	cfg.Format = format
	if err := inspect.NewExporterWithConfig(cfg).Export(p, w); err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	return nil
}
