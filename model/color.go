package model

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is a colour with every component in [0,1].
type RGB struct {
	R, G, B float64
}

// Common colours
var (
	Black = RGB{0, 0, 0}
	White = RGB{1, 1, 1}
)

// Gray returns a gray colour with all channels set to v (clamped).
func Gray(v float64) RGB {
	v = clamp01(v)
	return RGB{v, v, v}
}

// Clamped returns the colour with every component clamped to [0,1].
func (c RGB) Clamped() RGB {
	cc := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
	return RGB{R: cc.R, G: cc.G, B: cc.B}
}

// Hex returns the colour formatted as #rrggbb.
func (c RGB) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

// Packed returns the colour packed as 0xRRGGBB.
func (c RGB) Packed() int {
	r, g, b := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().RGB255()
	return int(r)<<16 | int(g)<<8 | int(b)
}

// NRGBA converts the colour for use with image/draw.
func (c RGB) NRGBA() color.NRGBA {
	r, g, b := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// String implements fmt.Stringer
func (c RGB) String() string {
	return c.Hex()
}

// MarshalText encodes the colour as #rrggbb.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText accepts any hex form NormalizeColor accepts.
func (c *RGB) UnmarshalText(b []byte) error {
	v, err := NormalizeColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// NormalizeColor converts the colour encodings found in engine metadata into
// an RGB triple in [0,1]^3.
//
// Accepted shapes:
//
//   - RGB, colorful.Color or any image/color.Color
//   - 3-element float slices/arrays (0-1, or 0-255 when any component is > 1)
//   - 3-element integer slices/arrays (0-255)
//   - 1-element slices and float scalars (single channel, replicated to gray)
//   - integer scalars, read as packed 0xRRGGBB
//   - hex strings ("#rrggbb", "#rgb", with or without the leading '#')
//
// Everything else fails with ErrInvalidColorFormat; there is no default.
func NormalizeColor(raw any) (RGB, error) {
	switch v := raw.(type) {
	case RGB:
		return v.Clamped(), nil
	case *RGB:
		if v == nil {
			break
		}
		return v.Clamped(), nil
	case colorful.Color:
		return RGB{v.R, v.G, v.B}.Clamped(), nil
	case color.Color:
		c, ok := colorful.MakeColor(v)
		if !ok {
			return RGB{}, fmt.Errorf("%w: fully transparent color %v", ErrInvalidColorFormat, v)
		}
		return RGB{c.R, c.G, c.B}.Clamped(), nil

	case float64:
		return Gray(channelFloat(v, v > 1)), nil
	case float32:
		f := float64(v)
		return Gray(channelFloat(f, f > 1)), nil
	case uint8:
		return Gray(float64(v) / 255), nil
	case int:
		return unpack(int64(v))
	case int32:
		return unpack(int64(v))
	case int64:
		return unpack(v)
	case uint32:
		return unpack(int64(v))
	case uint:
		return unpack(int64(v))

	case string:
		return parseHex(v)

	case []float64:
		return fromFloats(v)
	case [3]float64:
		return fromFloats(v[:])
	case []float32:
		fs := make([]float64, len(v))
		for i, f := range v {
			fs[i] = float64(f)
		}
		return fromFloats(fs)
	case []int:
		return fromInts(v)
	case [3]int:
		return fromInts(v[:])
	case []uint8:
		is := make([]int, len(v))
		for i, b := range v {
			is[i] = int(b)
		}
		return fromInts(is)
	case []any:
		return fromAny(v)
	}
	return RGB{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidColorFormat, raw)
}

// MustColor is like NormalizeColor but panics on error. Intended for
// constants in tests and examples.
func MustColor(raw any) RGB {
	c, err := NormalizeColor(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func unpack(v int64) (RGB, error) {
	if v < 0 || v > 0xFFFFFF {
		return RGB{}, fmt.Errorf("%w: packed value %#x out of range", ErrInvalidColorFormat, v)
	}
	return RGB{
		R: float64((v>>16)&0xFF) / 255,
		G: float64((v>>8)&0xFF) / 255,
		B: float64(v&0xFF) / 255,
	}, nil
}

func fromFloats(v []float64) (RGB, error) {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return RGB{}, fmt.Errorf("%w: non-finite component", ErrInvalidColorFormat)
		}
	}
	switch len(v) {
	case 1:
		return Gray(channelFloat(v[0], v[0] > 1)), nil
	case 3:
		// Each channel picks its own scale: values above 1 are 0-255.
		return RGB{
			R: channelFloat(v[0], v[0] > 1),
			G: channelFloat(v[1], v[1] > 1),
			B: channelFloat(v[2], v[2] > 1),
		}, nil
	}
	return RGB{}, fmt.Errorf("%w: %d components", ErrInvalidColorFormat, len(v))
}

func fromInts(v []int) (RGB, error) {
	switch len(v) {
	case 1:
		return Gray(float64(v[0]) / 255), nil
	case 3:
		return RGB{
			R: clamp01(float64(v[0]) / 255),
			G: clamp01(float64(v[1]) / 255),
			B: clamp01(float64(v[2]) / 255),
		}, nil
	}
	return RGB{}, fmt.Errorf("%w: %d components", ErrInvalidColorFormat, len(v))
}

// fromAny handles decoded JSON-style tuples. Mixed int/float tuples are read
// as floats.
func fromAny(v []any) (RGB, error) {
	allInts := true
	fs := make([]float64, len(v))
	for i, item := range v {
		switch n := item.(type) {
		case float64:
			fs[i] = n
			allInts = false
		case float32:
			fs[i] = float64(n)
			allInts = false
		case int:
			fs[i] = float64(n)
		case int64:
			fs[i] = float64(n)
		default:
			return RGB{}, fmt.Errorf("%w: component %d has type %T", ErrInvalidColorFormat, i, item)
		}
	}
	if allInts {
		is := make([]int, len(fs))
		for i, f := range fs {
			is[i] = int(f)
		}
		return fromInts(is)
	}
	return fromFloats(fs)
}

func parseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
	}
	return RGB{c.R, c.G, c.B}.Clamped(), nil
}

func channelFloat(v float64, byteScale bool) float64 {
	if byteScale {
		v /= 255
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
