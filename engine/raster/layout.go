package raster

import (
	"strings"

	"golang.org/x/image/font"

	"github.com/tsawler/respan/model"
)

// layoutLine is one wrapped line of replacement text.
type layoutLine struct {
	words []string
	width float64 // natural width with single spaces, in pixels
	last  bool    // last line of a paragraph; never justified
}

// wrapText greedily wraps text into lines no wider than maxWidth pixels.
// Explicit newlines always break. It returns false when a single word is
// wider than maxWidth.
func wrapText(face font.Face, text string, maxWidth float64) ([]layoutLine, bool) {
	space := measure(face, " ")
	var lines []layoutLine

	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, layoutLine{last: true})
			continue
		}

		cur := layoutLine{}
		for _, w := range words {
			ww := measure(face, w)
			if ww > maxWidth+epsilon {
				return nil, false
			}
			if len(cur.words) == 0 {
				cur.words = []string{w}
				cur.width = ww
				continue
			}
			if cur.width+space+ww > maxWidth+epsilon {
				lines = append(lines, cur)
				cur = layoutLine{words: []string{w}, width: ww}
				continue
			}
			cur.words = append(cur.words, w)
			cur.width += space + ww
		}
		cur.last = true
		lines = append(lines, cur)
	}
	return lines, true
}

// wordPositions returns the x offset of every word of a line relative to
// the left edge of a box boxWidth pixels wide.
func wordPositions(face font.Face, line layoutLine, boxWidth float64, align model.Alignment) []float64 {
	space := measure(face, " ")
	gap := space
	start := 0.0

	switch align {
	case model.AlignRight:
		start = boxWidth - line.width
	case model.AlignCenter:
		start = (boxWidth - line.width) / 2
	case model.AlignJustify:
		if !line.last && len(line.words) > 1 {
			gap = space + (boxWidth-line.width)/float64(len(line.words)-1)
		}
	}

	xs := make([]float64, len(line.words))
	x := start
	for i, w := range line.words {
		xs[i] = x
		x += measure(face, w) + gap
	}
	return xs
}

// epsilon absorbs rounding in fixed-point advances.
const epsilon = 1e-6
