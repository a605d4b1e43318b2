package pagetree

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/runs"
)

// Loader builds the Page for a page index.
type Loader func(page int) (*Page, error)

// EngineLoader builds pages from the engine's span tree.
func EngineLoader(e engine.Engine) Loader {
	return func(page int) (*Page, error) {
		raw, err := e.PageTree(page)
		if err != nil {
			return nil, fmt.Errorf("page tree %d: %w", page, err)
		}
		return Build(page, raw)
	}
}

// GlyphLoader builds pages by grouping the glyphs of src into runs. Text
// blocks come from the grouping; non-text blocks of the engine tree are
// appended after them so their rects still count as occupied.
func GlyphLoader(e engine.Engine, src engine.GlyphSource) Loader {
	return func(page int) (*Page, error) {
		glyphs, err := src.Glyphs(page)
		if err != nil {
			return nil, fmt.Errorf("glyphs %d: %w", page, err)
		}
		tree, err := runs.Group(glyphs)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		raw, err := e.PageTree(page)
		if err != nil {
			return nil, fmt.Errorf("page tree %d: %w", page, err)
		}
		tree.Width, tree.Height = raw.Width, raw.Height
		for _, b := range raw.Blocks {
			if b.Type != engine.BlockText {
				tree.Blocks = append(tree.Blocks, b)
			}
		}
		return Build(page, tree)
	}
}

// Cache memoises pages for the lifetime of a document. The first build of
// each page runs under a page-scoped lock, so concurrent first access builds
// a page once; later reads take no page lock. Failed builds are not cached.
type Cache struct {
	src    engine.Engine
	load   Loader
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[int]*entry
}

type entry struct {
	mu   sync.Mutex
	page atomic.Pointer[Page]
}

// NewCache returns an empty cache over the pages of src. A nil logger is
// replaced by a no-op logger.
func NewCache(src engine.Engine, load Loader, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		src:     src,
		load:    load,
		logger:  logger,
		entries: make(map[int]*entry),
	}
}

// PageCount returns the number of pages of the underlying engine.
func (c *Cache) PageCount() int {
	return c.src.PageCount()
}

// Page returns the built page, building it on first access.
func (c *Cache) Page(index int) (*Page, error) {
	if n := c.src.PageCount(); index < 0 || index >= n {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, n)
	}

	c.mu.RLock()
	e := c.entries[index]
	c.mu.RUnlock()
	if e != nil {
		if p := e.page.Load(); p != nil {
			return p, nil
		}
	}

	c.mu.Lock()
	e = c.entries[index]
	if e == nil {
		e = &entry{}
		c.entries[index] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if p := e.page.Load(); p != nil {
		return p, nil
	}

	p, err := c.load(index)
	if err != nil {
		return nil, err
	}
	e.page.Store(p)
	c.logger.Debug("page tree built",
		zap.Int("page", index),
		zap.Int("blocks", len(p.blocks)),
		zap.Int("spans", len(p.spans)),
	)
	return p, nil
}

// Invalidate drops every cached page.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]*entry)
	c.logger.Debug("page cache invalidated")
}

// Size returns the number of built pages.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if e.page.Load() != nil {
			n++
		}
	}
	return n
}
