package raster

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/model"
)

var mono = model.Style{Font: "Courier", Size: 10, Color: model.Black}

func onePage(t *testing.T, opts Options) *Engine {
	t.Helper()
	e := New(opts)
	require.Equal(t, 0, e.AddPage(612, 792))
	return e
}

func pixel(t *testing.T, e *Engine, x, y int) color.NRGBA {
	t.Helper()
	img, err := e.Image(0)
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestPages(t *testing.T) {
	e := onePage(t, DefaultOptions())
	assert.Equal(t, 1, e.PageCount())

	w, h, err := e.PageSize(0)
	require.NoError(t, err)
	assert.Equal(t, 612.0, w)
	assert.Equal(t, 792.0, h)

	_, _, err = e.PageSize(1)
	assert.Error(t, err)
	_, err = e.PageTree(-1)
	assert.Error(t, err)
	assert.Nil(t, e.Ops(5))
}

func TestPageTreeIsCopy(t *testing.T) {
	e := onePage(t, DefaultOptions())
	tree := &engine.PageTree{Blocks: []engine.Block{{
		Type: engine.BlockText,
		Lines: []engine.Line{{Spans: []engine.Span{{Text: "Total", Font: "Helvetica", Size: 12}}}},
	}}}
	require.NoError(t, e.SetTree(0, tree))
	tree.Blocks[0].Lines[0].Spans[0].Text = "changed"

	got, err := e.PageTree(0)
	require.NoError(t, err)
	assert.Equal(t, 612.0, got.Width)
	assert.Equal(t, "Total", got.Blocks[0].Lines[0].Spans[0].Text)

	got.Blocks[0].Lines[0].Spans[0].Text = "mutated"
	again, err := e.PageTree(0)
	require.NoError(t, err)
	assert.Equal(t, "Total", again.Blocks[0].Lines[0].Spans[0].Text)
}

func TestMeasureMonospace(t *testing.T) {
	e := New(DefaultOptions())
	w, err := e.MeasureText("hello", mono)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, w, 0.05)

	_, err = e.MeasureText("x", model.Style{Font: "Courier"})
	assert.Error(t, err)
}

func TestBlankRegion(t *testing.T) {
	e := onePage(t, DefaultOptions())
	red := model.RGB{R: 1}

	require.NoError(t, e.BlankRegion(0, model.Rect{X0: 10, Y0: 10, X1: 20, Y1: 20}, red))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, pixel(t, e, 15, 15))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, pixel(t, e, 25, 25))

	ops := e.Ops(0)
	require.Len(t, ops, 1)
	assert.Equal(t, OpBlank, ops[0].Kind)
	assert.Equal(t, red, ops[0].Fill)
}

func TestDrawTextFits(t *testing.T) {
	e := onePage(t, DefaultOptions())
	rect := model.Rect{X0: 10, Y0: 10, X1: 110, Y1: 30}

	ok, err := e.DrawText(0, rect, "abc", mono, model.AlignLeft)
	require.NoError(t, err)
	assert.True(t, ok)

	pl := e.Placements(0)
	require.Len(t, pl, 1)
	assert.Equal(t, "abc", pl[0].Text)
	assert.InDelta(t, 10, pl[0].Rect.X0, 0.05)
	assert.InDelta(t, 28, pl[0].Rect.X1, 0.05)
	assert.InDelta(t, 10, pl[0].Rect.Y0, 0.05)
	assert.InDelta(t, 21.5, pl[0].Rect.Y1, 0.05)
}

func TestDrawTextAlignment(t *testing.T) {
	rect := model.Rect{X0: 10, Y0: 10, X1: 110, Y1: 30}
	tests := []struct {
		align  model.Alignment
		x0, x1 float64
	}{
		{model.AlignLeft, 10, 28},
		{model.AlignRight, 92, 110},
		{model.AlignCenter, 51, 69},
	}
	for _, tt := range tests {
		t.Run(tt.align.String(), func(t *testing.T) {
			e := onePage(t, DefaultOptions())
			ok, err := e.DrawText(0, rect, "abc", mono, tt.align)
			require.NoError(t, err)
			require.True(t, ok)
			pl := e.Placements(0)
			require.Len(t, pl, 1)
			assert.InDelta(t, tt.x0, pl[0].Rect.X0, 0.05)
			assert.InDelta(t, tt.x1, pl[0].Rect.X1, 0.05)
		})
	}
}

func TestDrawTextWraps(t *testing.T) {
	e := onePage(t, DefaultOptions())
	// Two lines of 11.5 each fit in 24.
	rect := model.Rect{X0: 0, Y0: 0, X1: 40, Y1: 24}

	ok, err := e.DrawText(0, rect, "abc def", mono, model.AlignLeft)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.DrawText(0, rect, "abc def ghi", mono, model.AlignLeft)
	require.NoError(t, err)
	assert.False(t, ok, "three lines do not fit")
}

func TestDrawTextOverflow(t *testing.T) {
	e := onePage(t, DefaultOptions())

	ok, err := e.DrawText(0, model.Rect{X0: 0, Y0: 0, X1: 20, Y1: 20}, "toolongword", mono, model.AlignLeft)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.DrawText(0, model.Rect{X0: 0, Y0: 0, X1: 100, Y1: 5}, "ab", mono, model.AlignLeft)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Empty(t, e.Placements(0))
	ops := e.Ops(0)
	require.Len(t, ops, 2)
	assert.False(t, ops[0].Fit)
	assert.False(t, ops[1].Fit)
}

func TestBlankRemovesPlacements(t *testing.T) {
	e := onePage(t, DefaultOptions())
	_, err := e.DrawText(0, model.Rect{X0: 10, Y0: 10, X1: 110, Y1: 30}, "old", mono, model.AlignLeft)
	require.NoError(t, err)
	_, err = e.DrawText(0, model.Rect{X0: 10, Y0: 100, X1: 110, Y1: 120}, "other", mono, model.AlignLeft)
	require.NoError(t, err)
	require.Len(t, e.Placements(0), 2)

	require.NoError(t, e.BlankRegion(0, model.Rect{X0: 10, Y0: 10, X1: 110, Y1: 30}, model.White))
	pl := e.Placements(0)
	require.Len(t, pl, 1)
	assert.Equal(t, "other", pl[0].Text)
}

func TestComposerParagraph(t *testing.T) {
	e := New(DefaultOptions())
	c := e.NewComposer(DefaultComposerOptions())
	assert.Equal(t, -1, c.Page())

	bold := mono
	bold.Bold = true
	require.NoError(t, c.Paragraph(
		Run{Text: "Status: ", Style: mono},
		Run{Text: "Draft copy", Style: bold},
	))
	assert.Equal(t, 0, c.Page())

	tree, err := e.PageTree(0)
	require.NoError(t, err)
	require.Len(t, tree.Blocks, 1)
	require.Len(t, tree.Blocks[0].Lines, 1)
	spans := tree.Blocks[0].Lines[0].Spans
	require.Len(t, spans, 2)

	assert.Equal(t, "Status: ", spans[0].Text)
	assert.Equal(t, "Draft copy", spans[1].Text)
	assert.Equal(t, model.FlagBold, spans[1].Flags)

	// The separating space belongs to the first span's text but not to
	// either rect: "Status:" covers 7 cells, "Draft copy" 10 after a gap.
	assert.InDelta(t, 72, spans[0].Rect.X0, 0.05)
	assert.InDelta(t, 114, spans[0].Rect.X1, 0.05)
	assert.InDelta(t, 120, spans[1].Rect.X0, 0.05)
	assert.InDelta(t, 180, spans[1].Rect.X1, 0.05)
	assert.InDelta(t, 72, spans[0].Rect.Y0, 0.05)
	assert.InDelta(t, 83.5, spans[0].Rect.Y1, 0.05)
}

func TestComposerWrapsAndPaginates(t *testing.T) {
	e := New(DefaultOptions())
	opts := ComposerOptions{PageWidth: 200, PageHeight: 100, Margin: 10, ParagraphSpacing: 0}
	c := e.NewComposer(opts)

	// 30 cells per line at 6 per cell in 180 points.
	words := "aaaa bbbb cccc dddd eeee ffff gggg hhhh"
	require.NoError(t, c.Paragraph(Run{Text: words, Style: mono}))

	tree, err := e.PageTree(0)
	require.NoError(t, err)
	require.Len(t, tree.Blocks, 1)
	lines := tree.Blocks[0].Lines
	require.Len(t, lines, 2)
	assert.Equal(t, "aaaa bbbb cccc dddd eeee ffff", lines[0].Spans[0].Text)
	assert.Equal(t, "gggg hhhh", lines[1].Spans[0].Text)

	// Seven more lines of 11.5 overflow the 80 point body.
	for i := 0; i < 7; i++ {
		require.NoError(t, c.Paragraph(Run{Text: "line", Style: mono}))
	}
	assert.Equal(t, 2, e.PageCount())
	assert.Equal(t, 1, c.Page())
}

func TestComposerImage(t *testing.T) {
	e := New(DefaultOptions())
	c := e.NewComposer(DefaultComposerOptions())
	require.NoError(t, c.Paragraph(Run{Text: "Caption", Style: mono}))
	require.NoError(t, c.Image(100, 50))

	tree, err := e.PageTree(0)
	require.NoError(t, err)
	require.Len(t, tree.Blocks, 2)
	assert.Equal(t, engine.BlockImage, tree.Blocks[1].Type)
	assert.InDelta(t, 50, tree.Blocks[1].Rect.Height(), 0.001)
	assert.Equal(t, 1, tree.TextBlockCount())
}

func TestGlyphs(t *testing.T) {
	e := New(DefaultOptions())
	c := e.NewComposer(DefaultComposerOptions())
	require.NoError(t, c.Paragraph(Run{Text: "ab", Style: mono}))
	require.NoError(t, c.Image(10, 10))
	require.NoError(t, c.Paragraph(Run{Text: "cd", Style: mono}))

	glyphs, err := e.Glyphs(0)
	require.NoError(t, err)
	require.Len(t, glyphs, 4)

	assert.Equal(t, "a", glyphs[0].Text)
	assert.Equal(t, 0, glyphs[0].Block)
	assert.Equal(t, 0, glyphs[1].Line)
	assert.Equal(t, "c", glyphs[2].Text)
	assert.Equal(t, 2, glyphs[2].Block, "block hint is the tree index")
	assert.Equal(t, 1, glyphs[2].Line)

	assert.InDelta(t, 72, glyphs[0].Rect.X0, 0.05)
	assert.InDelta(t, 78, glyphs[1].Rect.X0, 0.05)
	assert.InDelta(t, 84, glyphs[1].Rect.X1, 0.05)
}

func TestSave(t *testing.T) {
	e := onePage(t, DefaultOptions())
	assert.Error(t, e.Save(), "no output configured")

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Output = &buf
	e = New(opts)
	e.AddPage(100, 50)
	e.AddPage(80, 30)
	require.NoError(t, e.BlankRegion(1, model.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, model.Black))

	require.NoError(t, e.Save())
	assert.Equal(t, 1, e.Saves())

	img, err := tiff.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())

	r, g, b, _ := img.At(5, 55).RGBA()
	assert.Zero(t, r+g+b, "second page starts below the first")
}

func TestPageTIFF(t *testing.T) {
	e := New(Options{Scale: 2})
	e.AddPage(50, 20)

	data, err := e.PageTIFF(0)
	require.NoError(t, err)
	img, err := tiff.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	_, err = e.PageTIFF(3)
	assert.Error(t, err)
}
