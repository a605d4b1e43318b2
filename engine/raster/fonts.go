package raster

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/tsawler/respan/model"
)

// family is one of the two embedded font families.
type family int

const (
	familySans family = iota
	familyMono
)

// Embedded font data by family and variant (regular, bold, italic, bold italic).
var embeddedFonts = map[family][4][]byte{
	familySans: {goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF},
	familyMono: {gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF},
}

// monoHints are substrings of font names that select the monospace family.
var monoHints = []string{"mono", "courier", "consol", "code", "typewriter"}

// familyFor is the font fallback rule: monospace-looking names map to Go
// Mono, everything else to Go Regular.
func familyFor(fontName string) family {
	name := strings.ToLower(fontName)
	for _, hint := range monoHints {
		if strings.Contains(name, hint) {
			return familyMono
		}
	}
	return familySans
}

func variant(bold, italic bool) int {
	v := 0
	if bold {
		v |= 1
	}
	if italic {
		v |= 2
	}
	return v
}

type faceKey struct {
	family  family
	variant int
	size    int // hundredths of a pixel
}

// fontCache parses each embedded font once and caches faces per size.
type fontCache struct {
	mu     sync.Mutex
	parsed map[[2]int]*opentype.Font
	faces  map[faceKey]font.Face
}

func newFontCache() *fontCache {
	return &fontCache{
		parsed: make(map[[2]int]*opentype.Font),
		faces:  make(map[faceKey]font.Face),
	}
}

// face returns a face for the style at the given pixel scale.
func (c *fontCache) face(st model.Style, scale float64) (font.Face, error) {
	if st.Size <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", st.Size)
	}
	fam := familyFor(st.Font)
	v := variant(st.Bold, st.Italic)
	px := st.Size * scale
	key := faceKey{family: fam, variant: v, size: int(math.Round(px * 100))}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.faces[key]; ok {
		return f, nil
	}

	fnt, ok := c.parsed[[2]int{int(fam), v}]
	if !ok {
		var err error
		fnt, err = opentype.Parse(embeddedFonts[fam][v])
		if err != nil {
			return nil, fmt.Errorf("parse embedded font: %w", err)
		}
		c.parsed[[2]int{int(fam), v}] = fnt
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	c.faces[key] = face
	return face, nil
}

// measure returns the advance width of s in pixels.
func measure(face font.Face, s string) float64 {
	return fromFixed(font.MeasureString(face, s))
}

// ascent returns the face ascent in pixels.
func ascent(face font.Face) float64 {
	return fromFixed(face.Metrics().Ascent)
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
