// Package htmlsource typesets simple HTML onto a raster engine.
//
// Block elements (headings, paragraphs, list items, preformatted text,
// blockquotes) become text blocks. Inline formatting is carried into span
// styles: <b>/<strong> bold, <i>/<em> italic, <code>/<tt>/<kbd> monospace,
// and inline CSS on any element for color, font-family, font-size,
// font-weight and font-style. <img> with width and height attributes becomes
// an image block.
package htmlsource

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

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

	// Layout controls page geometry
	Layout raster.ComposerOptions
}

// DefaultOptions returns the default typesetting options.
func DefaultOptions() Options {
	return Options{
		Font:     "Helvetica",
		MonoFont: "Courier",
		Size:     11,
		Layout:   raster.DefaultComposerOptions(),
	}
}

// Load parses HTML from r and typesets it onto a new raster engine.
func Load(r io.Reader, opts Options, engineOpts raster.Options) (*raster.Engine, error) {
	e := raster.New(engineOpts)
	if err := Render(e.NewComposer(opts.Layout), r, opts); err != nil {
		return nil, err
	}
	return e, nil
}

// Render parses HTML from r and typesets it with an existing composer.
func Render(c *raster.Composer, r io.Reader, opts Options) error {
	if opts.Font == "" {
		opts.Font = DefaultOptions().Font
	}
	if opts.MonoFont == "" {
		opts.MonoFont = DefaultOptions().MonoFont
	}
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}

	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("htmlsource: parse: %w", err)
	}

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}

	t := &typesetter{c: c, opts: opts}
	base := model.Style{Font: opts.Font, Size: opts.Size, Color: model.Black}
	if err := t.traverse(body, base); err != nil {
		return err
	}
	return t.flush()
}

type typesetter struct {
	c    *raster.Composer
	opts Options
	runs []raster.Run
}

// headingScale maps h1-h6 to a multiple of the body size.
var headingScale = [...]float64{2.0, 1.5, 1.25, 1.1, 1.0, 1.0}

func (t *typesetter) flush() error {
	runs := t.runs
	t.runs = nil
	return t.c.Paragraph(runs...)
}

func (t *typesetter) text(s string, st model.Style) {
	if s == "" {
		return
	}
	if n := len(t.runs); n > 0 && t.runs[n-1].Style == st {
		t.runs[n-1].Text += s
		return
	}
	t.runs = append(t.runs, raster.Run{Text: s, Style: st})
}

// traverse walks the DOM, accumulating runs and flushing a paragraph at
// every block boundary.
func (t *typesetter) traverse(n *html.Node, st model.Style) error {
	switch n.Type {
	case html.TextNode:
		t.text(n.Data, st)
		return nil
	case html.ElementNode:
	default:
		return t.children(n, st)
	}

	if shouldSkipElement(n.Data) {
		return nil
	}

	st = applyInlineCSS(st, attr(n, "style"))

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		st.Bold = true
		st.Size = t.opts.Size * headingScale[level-1]
		return t.block(n, st)

	case "p", "div", "blockquote", "section", "article", "header", "footer", "main", "td", "th", "tr":
		return t.block(n, st)

	case "li":
		if err := t.flush(); err != nil {
			return err
		}
		t.text("• ", st)
		if err := t.children(n, st); err != nil {
			return err
		}
		return t.flush()

	case "pre":
		st.Font = t.opts.MonoFont
		if err := t.flush(); err != nil {
			return err
		}
		for _, line := range strings.Split(getTextContent(n), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := t.c.Paragraph(raster.Run{Text: line, Style: st}); err != nil {
				return err
			}
		}
		return nil

	case "br":
		return t.flush()

	case "img":
		w, errW := strconv.ParseFloat(attr(n, "width"), 64)
		h, errH := strconv.ParseFloat(attr(n, "height"), 64)
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return nil
		}
		if err := t.flush(); err != nil {
			return err
		}
		return t.c.Image(w, h)

	case "b", "strong":
		st.Bold = true
	case "i", "em", "cite":
		st.Italic = true
	case "code", "tt", "kbd", "samp":
		st.Font = t.opts.MonoFont
	case "font":
		st = applyFontTag(st, n)
	}
	return t.children(n, st)
}

func (t *typesetter) block(n *html.Node, st model.Style) error {
	if err := t.flush(); err != nil {
		return err
	}
	if err := t.children(n, st); err != nil {
		return err
	}
	return t.flush()
}

func (t *typesetter) children(n *html.Node, st model.Style) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := t.traverse(c, st); err != nil {
			return err
		}
	}
	return nil
}

// shouldSkipElement returns true for elements without visible text.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "head", "meta", "link", "template", "svg", "nav":
		return true
	}
	return false
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tagName); found != nil {
			return found
		}
	}
	return nil
}

// getTextContent returns all text content of a node, recursively.
func getTextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// applyInlineCSS applies the declarations of a style attribute.
// Unknown properties and unparsable values are ignored.
func applyInlineCSS(st model.Style, css string) model.Style {
	for _, decl := range strings.Split(css, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		switch prop {
		case "color":
			if c, err := model.NormalizeColor(val); err == nil {
				st.Color = c
			}
		case "font-family":
			family := strings.TrimSpace(strings.Split(val, ",")[0])
			if family = strings.Trim(family, `"'`); family != "" {
				st.Font = family
			}
		case "font-size":
			if size, ok := parseLength(val); ok {
				st.Size = size
			}
		case "font-weight":
			weight, err := strconv.Atoi(val)
			st.Bold = val == "bold" || val == "bolder" || (err == nil && weight >= 600)
		case "font-style":
			st.Italic = val == "italic" || val == "oblique"
		}
	}
	return st
}

// applyFontTag handles the legacy <font color face size> element.
func applyFontTag(st model.Style, n *html.Node) model.Style {
	if c, err := model.NormalizeColor(attr(n, "color")); err == nil {
		st.Color = c
	}
	if face := attr(n, "face"); face != "" {
		st.Font = strings.TrimSpace(strings.Split(face, ",")[0])
	}
	if size, ok := parseLength(attr(n, "size")); ok {
		st.Size = size
	}
	return st
}

// parseLength reads "12", "12pt" or "12px" as points.
func parseLength(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	v = strings.TrimSuffix(strings.TrimSuffix(v, "pt"), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}
