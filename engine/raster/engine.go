// Package raster provides an in-memory document engine that paints pages
// onto RGBA canvases.
//
// Pages carry a structural tree that is either set directly with SetTree or
// built by a [Composer] while it typesets styled runs. Text is laid out with
// the embedded Go font family; font names that look monospace (Courier,
// "Mono", ...) select Go Mono, every other name selects Go Regular.
//
// Besides pixels, the engine keeps a list of text placements per page so
// callers can see what is currently visible: blanking a region removes every
// placement that lies entirely inside it.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/model"
)

// Options configures an Engine.
type Options struct {
	// Scale is the number of pixels per page unit (default: 1)
	Scale float64

	// Background is the initial page colour (default: white)
	Background model.RGB

	// LineSpacing is the line height as a multiple of the font size
	// (default: 1.15)
	LineSpacing float64

	// Output receives the TIFF written by Save. Save fails when nil.
	Output io.Writer

	// Logger receives debug output (default: no-op)
	Logger *zap.Logger
}

// DefaultOptions returns the default engine options.
func DefaultOptions() Options {
	return Options{
		Scale:       1,
		Background:  model.White,
		LineSpacing: 1.15,
		Logger:      zap.NewNop(),
	}
}

// Placement is text currently visible on a page.
type Placement struct {
	Rect  model.Rect
	Text  string
	Style model.Style
}

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpBlank OpKind = iota
	OpDraw
)

// Op is one mutation recorded against a page, in call order.
type Op struct {
	Kind  OpKind
	Rect  model.Rect
	Text  string
	Fill  model.RGB
	Style model.Style
	Fit   bool
}

type page struct {
	width, height float64
	canvas        *image.RGBA
	tree          *engine.PageTree
	placements    []Placement
	ops           []Op
}

// Engine is an in-memory engine.Engine implementation.
type Engine struct {
	mu     sync.Mutex
	opts   Options
	fonts  *fontCache
	pages  []*page
	saves  int
	logger *zap.Logger
}

var (
	_ engine.Engine = (*Engine)(nil)
	_ engine.Saver  = (*Engine)(nil)
)

// New creates an empty engine.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.LineSpacing <= 0 {
		opts.LineSpacing = def.LineSpacing
	}
	if opts.Background == (model.RGB{}) {
		opts.Background = def.Background
	}
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}
	return &Engine{
		opts:   opts,
		fonts:  newFontCache(),
		logger: opts.Logger.Named("raster"),
	}
}

// AddPage appends a blank page and returns its index.
func (e *Engine) AddPage(width, height float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addPage(width, height)
}

func (e *Engine) addPage(width, height float64) int {
	w := int(math.Ceil(width * e.opts.Scale))
	h := int(math.Ceil(height * e.opts.Scale))
	p := &page{
		width:  width,
		height: height,
		canvas: image.NewRGBA(image.Rect(0, 0, w, h)),
		tree:   &engine.PageTree{Width: width, Height: height},
	}
	draw.Draw(p.canvas, p.canvas.Bounds(), image.NewUniform(e.opts.Background.NRGBA()), image.Point{}, draw.Src)
	e.pages = append(e.pages, p)
	return len(e.pages) - 1
}

// AddImagePage appends a page showing img and returns its index. The page
// measures the image size divided by the engine scale and has an empty tree.
func (e *Engine) AddImagePage(img image.Image) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := img.Bounds()
	i := e.addPage(float64(b.Dx())/e.opts.Scale, float64(b.Dy())/e.opts.Scale)
	canvas := e.pages[i].canvas
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)
	return i
}

// SetTree replaces the structural tree of a page. The canvas is not touched.
func (e *Engine) SetTree(pageIndex int, tree *engine.PageTree) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return err
	}
	t := cloneTree(tree)
	t.Width, t.Height = p.width, p.height
	p.tree = t
	return nil
}

// PageCount implements engine.Engine.
func (e *Engine) PageCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pages)
}

// PageSize implements engine.Engine.
func (e *Engine) PageSize(pageIndex int) (float64, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return 0, 0, err
	}
	return p.width, p.height, nil
}

// PageTree implements engine.Engine. The returned tree is a copy.
func (e *Engine) PageTree(pageIndex int) (*engine.PageTree, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return nil, err
	}
	return cloneTree(p.tree), nil
}

// BlankRegion implements engine.Engine.
func (e *Engine) BlankRegion(pageIndex int, rect model.Rect, fill model.RGB) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return err
	}

	draw.Draw(p.canvas, e.pixelRect(rect), image.NewUniform(fill.NRGBA()), image.Point{}, draw.Src)

	kept := p.placements[:0]
	for _, pl := range p.placements {
		if !rect.Contains(pl.Rect, epsilon) {
			kept = append(kept, pl)
		}
	}
	p.placements = kept
	p.ops = append(p.ops, Op{Kind: OpBlank, Rect: rect, Fill: fill})

	e.logger.Debug("blank region",
		zap.Int("page", pageIndex),
		zap.Float64s("rect", rect.Slice()),
	)
	return nil
}

// DrawText implements engine.Engine. Text is word-wrapped to the rect
// width; it fits when no word is wider than the rect and all lines fit the
// rect height.
func (e *Engine) DrawText(pageIndex int, rect model.Rect, text string, st model.Style, align model.Alignment) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return false, err
	}
	face, err := e.fonts.face(st, e.opts.Scale)
	if err != nil {
		return false, err
	}

	boxWidth := rect.Width() * e.opts.Scale
	lineHeight := st.Size * e.opts.LineSpacing * e.opts.Scale

	lines, ok := wrapText(face, text, boxWidth)
	fit := ok && float64(len(lines))*lineHeight <= rect.Height()*e.opts.Scale+epsilon
	p.ops = append(p.ops, Op{Kind: OpDraw, Rect: rect, Text: text, Style: st, Fit: fit})
	if !fit {
		e.logger.Debug("text does not fit",
			zap.Int("page", pageIndex),
			zap.String("text", text),
			zap.Float64s("rect", rect.Slice()),
		)
		return false, nil
	}

	ink := image.NewUniform(st.Color.NRGBA())
	x0 := rect.X0 * e.opts.Scale
	top := rect.Y0 * e.opts.Scale
	asc := ascent(face)
	var inked []model.Rect

	for i, line := range lines {
		if len(line.words) == 0 {
			continue
		}
		xs := wordPositions(face, line, boxWidth, align)
		baseline := top + float64(i)*lineHeight + asc
		for j, w := range line.words {
			drawString(p.canvas, ink, face, w, x0+xs[j], baseline)
		}
		last := len(line.words) - 1
		right := xs[last] + measure(face, line.words[last])
		inked = append(inked, model.Rect{
			X0: (x0 + xs[0]) / e.opts.Scale,
			Y0: (top + float64(i)*lineHeight) / e.opts.Scale,
			X1: (x0 + right) / e.opts.Scale,
			Y1: (top + float64(i+1)*lineHeight) / e.opts.Scale,
		})
	}

	if len(inked) > 0 {
		p.placements = append(p.placements, Placement{
			Rect:  model.UnionAll(inked).Intersection(rect),
			Text:  text,
			Style: st,
		})
	}
	return true, nil
}

// Save implements engine.Saver by writing every page, stacked vertically,
// as one TIFF image to Options.Output.
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opts.Output == nil {
		return fmt.Errorf("raster: no output configured")
	}
	if err := tiff.Encode(e.opts.Output, e.sheet(), &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return fmt.Errorf("raster: encode tiff: %w", err)
	}
	e.saves++
	e.logger.Debug("saved", zap.Int("pages", len(e.pages)))
	return nil
}

// PageTIFF encodes one page canvas as TIFF. It satisfies ocr.PageImager.
func (e *Engine) PageTIFF(pageIndex int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, p.canvas, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return nil, fmt.Errorf("raster: encode page %d: %w", pageIndex, err)
	}
	return buf.Bytes(), nil
}

// Saves returns how many times Save succeeded.
func (e *Engine) Saves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saves
}

// Image returns a copy of a page canvas.
func (e *Engine) Image(pageIndex int) (*image.RGBA, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return nil, err
	}
	out := image.NewRGBA(p.canvas.Bounds())
	draw.Draw(out, out.Bounds(), p.canvas, image.Point{}, draw.Src)
	return out, nil
}

// Placements returns the text currently visible on a page, in draw order.
func (e *Engine) Placements(pageIndex int) []Placement {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return nil
	}
	return append([]Placement(nil), p.placements...)
}

// Ops returns the mutations recorded against a page, in call order.
func (e *Engine) Ops(pageIndex int) []Op {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.page(pageIndex)
	if err != nil {
		return nil
	}
	return append([]Op(nil), p.ops...)
}

// MeasureText returns the natural single-line width of text in page units.
func (e *Engine) MeasureText(text string, st model.Style) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	face, err := e.fonts.face(st, e.opts.Scale)
	if err != nil {
		return 0, err
	}
	return measure(face, text) / e.opts.Scale, nil
}

func (e *Engine) page(i int) (*page, error) {
	if i < 0 || i >= len(e.pages) {
		return nil, fmt.Errorf("raster: page %d out of range [0,%d)", i, len(e.pages))
	}
	return e.pages[i], nil
}

func (e *Engine) pixelRect(r model.Rect) image.Rectangle {
	s := e.opts.Scale
	return image.Rect(
		int(math.Floor(r.X0*s)), int(math.Floor(r.Y0*s)),
		int(math.Ceil(r.X1*s)), int(math.Ceil(r.Y1*s)),
	)
}

// sheet stacks all page canvases vertically.
func (e *Engine) sheet() *image.RGBA {
	w, h := 0, 0
	for _, p := range e.pages {
		b := p.canvas.Bounds()
		if b.Dx() > w {
			w = b.Dx()
		}
		h += b.Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(e.opts.Background.NRGBA()), image.Point{}, draw.Src)
	y := 0
	for _, p := range e.pages {
		b := p.canvas.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), p.canvas, image.Point{}, draw.Src)
		y += b.Dy()
	}
	return out
}

func drawString(dst draw.Image, src image.Image, face font.Face, s string, x, baseline float64) {
	d := font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(baseline)},
	}
	d.DrawString(s)
}

func cloneTree(t *engine.PageTree) *engine.PageTree {
	if t == nil {
		return &engine.PageTree{}
	}
	out := &engine.PageTree{Width: t.Width, Height: t.Height, Blocks: make([]engine.Block, len(t.Blocks))}
	for i, b := range t.Blocks {
		nb := engine.Block{Type: b.Type, Rect: b.Rect}
		if b.Lines != nil {
			nb.Lines = make([]engine.Line, len(b.Lines))
			for j, l := range b.Lines {
				nb.Lines[j] = engine.Line{Rect: l.Rect, Spans: append([]engine.Span(nil), l.Spans...)}
			}
		}
		out.Blocks[i] = nb
	}
	return out
}
