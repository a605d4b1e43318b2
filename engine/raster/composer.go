package raster

import (
	"image"
	"math"
	"strings"
	"unicode"

	"golang.org/x/image/draw"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/model"
)

// Run is a piece of text with one style, the input of a Composer.
type Run struct {
	Text  string
	Style model.Style
}

// ComposerOptions configures page geometry for a Composer.
type ComposerOptions struct {
	// PageWidth and PageHeight size new pages (default: US Letter, 612x792)
	PageWidth  float64
	PageHeight float64

	// Margin is applied on all four sides (default: 72)
	Margin float64

	// ParagraphSpacing is the vertical gap after each block (default: 6)
	ParagraphSpacing float64
}

// DefaultComposerOptions returns US Letter pages with one-inch margins.
func DefaultComposerOptions() ComposerOptions {
	return ComposerOptions{
		PageWidth:        612,
		PageHeight:       792,
		Margin:           72,
		ParagraphSpacing: 6,
	}
}

// Composer typesets paragraphs of styled runs top to bottom, adding pages
// as needed. Every paragraph becomes one text block per page it touches;
// every wrapped line becomes a line; consecutive words from the same run on
// a line become one span.
type Composer struct {
	e    *Engine
	opts ComposerOptions
	page int
	y    float64
}

// NewComposer returns a composer that appends to e. The first paragraph
// opens a new page.
func (e *Engine) NewComposer(opts ComposerOptions) *Composer {
	def := DefaultComposerOptions()
	if opts.PageWidth <= 0 {
		opts.PageWidth = def.PageWidth
	}
	if opts.PageHeight <= 0 {
		opts.PageHeight = def.PageHeight
	}
	if opts.Margin < 0 {
		opts.Margin = def.Margin
	}
	return &Composer{e: e, opts: opts, page: -1}
}

// token is one word with the run it came from.
type token struct {
	word  string
	run   int
	space bool // whitespace precedes the word
}

func tokenize(runs []Run) []token {
	var toks []token
	pendingSpace := false
	for i, r := range runs {
		var word strings.Builder
		flush := func() {
			if word.Len() > 0 {
				toks = append(toks, token{word: word.String(), run: i, space: pendingSpace})
				word.Reset()
				pendingSpace = false
			}
		}
		for _, ch := range r.Text {
			if unicode.IsSpace(ch) {
				flush()
				pendingSpace = true
				continue
			}
			word.WriteRune(ch)
		}
		flush()
	}
	if len(toks) > 0 {
		toks[0].space = false
	}
	return toks
}

type placedSpan struct {
	run   int
	text  string
	x0    float64
	x1    float64
	style model.Style
}

// Paragraph typesets one paragraph. Empty paragraphs are ignored.
func (c *Composer) Paragraph(runs ...Run) error {
	toks := tokenize(runs)
	if len(toks) == 0 {
		return nil
	}

	c.e.mu.Lock()
	defer c.e.mu.Unlock()

	left := c.opts.Margin
	right := c.opts.PageWidth - c.opts.Margin

	var (
		block   *engine.Block
		spans   []placedSpan
		x       = left
		lineMax float64
	)

	flushLine := func() error {
		if len(spans) == 0 {
			return nil
		}
		if err := c.ensureRoom(lineMax); err != nil {
			return err
		}
		if block == nil || c.blockPage(block) != c.page {
			block = c.openBlock()
		}
		if err := c.emitLine(block, spans, lineMax); err != nil {
			return err
		}
		spans = nil
		x = left
		lineMax = 0
		return nil
	}

	for _, t := range toks {
		st := runs[t.run].Style
		face, err := c.e.fonts.face(st, 1)
		if err != nil {
			return err
		}
		w := measure(face, t.word)
		gap := 0.0
		if t.space && len(spans) > 0 {
			gap = measure(face, " ")
		}

		if len(spans) > 0 && x+gap+w > right+epsilon {
			if err := flushLine(); err != nil {
				return err
			}
			gap = 0
		}

		lh := st.Size * c.e.opts.LineSpacing
		if lh > lineMax {
			lineMax = lh
		}

		n := len(spans)
		if n > 0 && spans[n-1].run == t.run {
			if gap > 0 {
				spans[n-1].text += " "
			}
			spans[n-1].text += t.word
			spans[n-1].x1 = x + gap + w
		} else {
			if gap > 0 && n > 0 {
				spans[n-1].text += " "
			}
			spans = append(spans, placedSpan{run: t.run, text: t.word, x0: x + gap, x1: x + gap + w, style: st})
		}
		x += gap + w
	}
	if err := flushLine(); err != nil {
		return err
	}
	c.y += c.opts.ParagraphSpacing
	return nil
}

// Image reserves a non-text block of the given size and paints it gray.
func (c *Composer) Image(width, height float64) error {
	c.e.mu.Lock()
	defer c.e.mu.Unlock()

	if err := c.ensureRoom(height); err != nil {
		return err
	}
	rect := model.Rect{X0: c.opts.Margin, Y0: c.y, X1: c.opts.Margin + width, Y1: c.y + height}
	p := c.e.pages[c.page]
	p.tree.Blocks = append(p.tree.Blocks, engine.Block{Type: engine.BlockImage, Rect: rect})
	draw.Draw(p.canvas, c.e.pixelRect(rect), image.NewUniform(model.Gray(0.8).NRGBA()), image.Point{}, draw.Src)
	c.y += height + c.opts.ParagraphSpacing
	return nil
}

// Page returns the index of the page currently being filled, or -1.
func (c *Composer) Page() int {
	return c.page
}

// ensureRoom starts a new page when height does not fit below the cursor.
// Must be called with the engine lock held.
func (c *Composer) ensureRoom(height float64) error {
	bottom := c.opts.PageHeight - c.opts.Margin
	if c.page >= 0 && c.y+height <= bottom+epsilon {
		return nil
	}
	c.page = c.e.addPage(c.opts.PageWidth, c.opts.PageHeight)
	c.y = c.opts.Margin
	return nil
}

func (c *Composer) openBlock() *engine.Block {
	p := c.e.pages[c.page]
	p.tree.Blocks = append(p.tree.Blocks, engine.Block{Type: engine.BlockText})
	return &p.tree.Blocks[len(p.tree.Blocks)-1]
}

// blockPage returns the page whose tree holds block, or -1.
func (c *Composer) blockPage(block *engine.Block) int {
	if c.page < 0 {
		return -1
	}
	blocks := c.e.pages[c.page].tree.Blocks
	if len(blocks) > 0 && &blocks[len(blocks)-1] == block {
		return c.page
	}
	return -1
}

// emitLine draws a line of spans at the cursor and records it in block.
func (c *Composer) emitLine(block *engine.Block, spans []placedSpan, lineHeight float64) error {
	p := c.e.pages[c.page]
	top := c.y
	bottom := top + lineHeight

	var asc float64
	for _, s := range spans {
		face, err := c.e.fonts.face(s.style, c.e.opts.Scale)
		if err != nil {
			return err
		}
		asc = math.Max(asc, ascent(face))
	}
	baseline := top*c.e.opts.Scale + asc

	line := engine.Line{}
	for _, s := range spans {
		face, err := c.e.fonts.face(s.style, c.e.opts.Scale)
		if err != nil {
			return err
		}
		drawString(p.canvas, image.NewUniform(s.style.Color.NRGBA()), face, s.text, s.x0*c.e.opts.Scale, baseline)

		rect := model.Rect{X0: s.x0, Y0: top, X1: s.x1, Y1: bottom}
		line.Spans = append(line.Spans, engine.Span{
			Text:  s.text,
			Rect:  rect,
			Font:  s.style.Font,
			Size:  s.style.Size,
			Color: s.style.Color.Packed(),
			Flags: s.style.Flags(),
		})
		if len(line.Spans) == 1 {
			line.Rect = rect
		} else {
			line.Rect = line.Rect.Union(rect)
		}
	}

	if len(block.Lines) == 0 {
		block.Rect = line.Rect
	} else {
		block.Rect = block.Rect.Union(line.Rect)
	}
	block.Lines = append(block.Lines, line)
	c.y = bottom
	return nil
}
