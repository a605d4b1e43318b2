// Package markdown typesets Markdown onto a raster engine, giving respan a
// realistic paginated document with styled spans to locate and edit.
//
// Headings become bold blocks at larger sizes, emphasis maps to italic and
// bold spans, code spans and code blocks use the monospace font, and list
// items become bulleted blocks.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tsawler/respan/engine/raster"
	"github.com/tsawler/respan/model"
)

// Options configures typesetting.
type Options struct {
	// Font is the body font name (default: "Helvetica")
	Font string

	// MonoFont is used for code (default: "Courier")
	MonoFont string

	// Size is the body font size (default: 11)
	Size float64

	// Color is the text colour (default: black)
	Color model.RGB

	// Layout controls page geometry
	Layout raster.ComposerOptions
}

// DefaultOptions returns the default typesetting options.
func DefaultOptions() Options {
	return Options{
		Font:     "Helvetica",
		MonoFont: "Courier",
		Size:     11,
		Color:    model.Black,
		Layout:   raster.DefaultComposerOptions(),
	}
}

// headingScale maps heading levels 1-6 to a multiple of the body size.
var headingScale = [...]float64{2.0, 1.5, 1.25, 1.1, 1.0, 1.0}

// Load typesets src onto a new raster engine.
func Load(src []byte, opts Options, engineOpts raster.Options) (*raster.Engine, error) {
	e := raster.New(engineOpts)
	if err := Render(e.NewComposer(opts.Layout), src, opts); err != nil {
		return nil, err
	}
	return e, nil
}

// Render typesets src with an existing composer.
func Render(c *raster.Composer, src []byte, opts Options) error {
	opts = withDefaults(opts)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	w := &walker{c: c, src: src, opts: opts}
	if err := w.blocks(doc); err != nil {
		return fmt.Errorf("markdown: %w", err)
	}
	return nil
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Font == "" {
		opts.Font = def.Font
	}
	if opts.MonoFont == "" {
		opts.MonoFont = def.MonoFont
	}
	if opts.Size <= 0 {
		opts.Size = def.Size
	}
	return opts
}

type walker struct {
	c    *raster.Composer
	src  []byte
	opts Options
}

func (w *walker) base() model.Style {
	return model.Style{Font: w.opts.Font, Size: w.opts.Size, Color: w.opts.Color}
}

func (w *walker) blocks(node ast.Node) error {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		var err error
		switch n := child.(type) {
		case *ast.Heading:
			st := w.base()
			st.Bold = true
			level := n.Level
			if level < 1 {
				level = 1
			}
			if level > len(headingScale) {
				level = len(headingScale)
			}
			st.Size = w.opts.Size * headingScale[level-1]
			err = w.c.Paragraph(w.inlines(n, st)...)

		case *ast.Paragraph, *ast.TextBlock:
			err = w.c.Paragraph(w.inlines(n, w.base())...)

		case *ast.List:
			err = w.list(n)

		case *ast.Blockquote:
			err = w.blocks(n)

		case *ast.FencedCodeBlock:
			err = w.code(n)
		case *ast.CodeBlock:
			err = w.code(n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) list(n *ast.List) error {
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				runs := append([]raster.Run{{Text: "• ", Style: w.base()}}, w.inlines(c, w.base())...)
				if err := w.c.Paragraph(runs...); err != nil {
					return err
				}
			case *ast.List:
				if err := w.list(c); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// code emits one monospace block per line of a code block.
func (w *walker) code(n ast.Node) error {
	st := w.base()
	st.Font = w.opts.MonoFont
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.src)), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := w.c.Paragraph(raster.Run{Text: line, Style: st}); err != nil {
			return err
		}
	}
	return nil
}

// inlines flattens inline children into styled runs.
func (w *walker) inlines(node ast.Node, st model.Style) []raster.Run {
	var runs []raster.Run
	add := func(s string, st model.Style) {
		if s == "" {
			return
		}
		if n := len(runs); n > 0 && runs[n-1].Style == st {
			runs[n-1].Text += s
			return
		}
		runs = append(runs, raster.Run{Text: s, Style: st})
	}

	var walk func(n ast.Node, st model.Style)
	walk = func(n ast.Node, st model.Style) {
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.Text:
				add(string(c.Segment.Value(w.src)), st)
				if c.SoftLineBreak() || c.HardLineBreak() {
					add(" ", st)
				}
			case *ast.String:
				add(string(c.Value), st)
			case *ast.Emphasis:
				next := st
				if c.Level >= 2 {
					next.Bold = true
				} else {
					next.Italic = true
				}
				walk(c, next)
			case *ast.CodeSpan:
				next := st
				next.Font = w.opts.MonoFont
				walk(c, next)
			case *ast.AutoLink:
				add(string(c.URL(w.src)), st)
			case *ast.Image:
				// Alt text only; images are not typeset.
				walk(c, st)
			default:
				walk(c, st)
			}
		}
	}
	walk(node, st)
	return runs
}
