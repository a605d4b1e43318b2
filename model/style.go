package model

import (
	"fmt"
	"math"
	"strings"
)

// SizeEpsilon is the font size tolerance used when deciding whether two
// styles are the same.
const SizeEpsilon = 0.1

// Font flag bits as reported by engines.
const (
	FlagItalic = 1 << 0
	FlagBold   = 1 << 1
)

// Style is the typographic style attached to a container. It is a value
// type; copy it freely.
type Style struct {
	Font   string  `json:"font"`
	Size   float64 `json:"size"`
	Color  RGB     `json:"color"`
	Bold   bool    `json:"bold"`
	Italic bool    `json:"italic"`
}

// Flags returns the engine flag bitmask for the style.
func (s Style) Flags() int {
	flags := 0
	if s.Italic {
		flags |= FlagItalic
	}
	if s.Bold {
		flags |= FlagBold
	}
	return flags
}

// WithFlags returns a copy of s with bold and italic taken from an engine
// flag bitmask (bit 0 italic, bit 1 bold).
func (s Style) WithFlags(flags int) Style {
	s.Italic = flags&FlagItalic != 0
	s.Bold = flags&FlagBold != 0
	return s
}

// Compatible reports whether two styles belong to the same run: exact font
// name, size within SizeEpsilon, identical bold and italic.
func (s Style) Compatible(other Style) bool {
	return s.Font == other.Font &&
		SameSize(s.Size, other.Size) &&
		s.Bold == other.Bold &&
		s.Italic == other.Italic
}

// Key returns the comparable composite key for the style.
func (s Style) Key() StyleKey {
	return StyleKey{
		Font:      s.Font,
		SizeTenth: int(math.Round(s.Size / SizeEpsilon)),
		Bold:      s.Bold,
		Italic:    s.Italic,
	}
}

// String implements fmt.Stringer
func (s Style) String() string {
	var attrs []string
	if s.Bold {
		attrs = append(attrs, "bold")
	}
	if s.Italic {
		attrs = append(attrs, "italic")
	}
	out := fmt.Sprintf("%s %.1fpt %s", s.Font, s.Size, s.Color.Hex())
	if len(attrs) > 0 {
		out += " " + strings.Join(attrs, " ")
	}
	return out
}

// SameSize reports whether two font sizes are within SizeEpsilon.
func SameSize(a, b float64) bool {
	// A small slack absorbs binary rounding, e.g. 12.0 vs 12.1.
	return math.Abs(a-b) <= SizeEpsilon+1e-9
}

// StyleKey is a comparable style identity usable as a map key. Size is
// quantised to tenths of a point.
type StyleKey struct {
	Font      string
	SizeTenth int
	Bold      bool
	Italic    bool
}

// Size returns the quantised size in points.
func (k StyleKey) Size() float64 {
	return float64(k.SizeTenth) * SizeEpsilon
}

// StyleOverride is a partial style. Nil fields are left unchanged by Compose.
type StyleOverride struct {
	Font   *string  `json:"font,omitempty"`
	Size   *float64 `json:"size,omitempty"`
	Color  *RGB     `json:"color,omitempty"`
	Bold   *bool    `json:"bold,omitempty"`
	Italic *bool    `json:"italic,omitempty"`
}

// IsEmpty returns true if the override changes nothing
func (o StyleOverride) IsEmpty() bool {
	return o.Font == nil && o.Size == nil && o.Color == nil && o.Bold == nil && o.Italic == nil
}

// Clone returns a copy of o that shares no pointers with it.
func (o StyleOverride) Clone() StyleOverride {
	var out StyleOverride
	if o.Font != nil {
		v := *o.Font
		out.Font = &v
	}
	if o.Size != nil {
		v := *o.Size
		out.Size = &v
	}
	if o.Color != nil {
		v := *o.Color
		out.Color = &v
	}
	if o.Bold != nil {
		v := *o.Bold
		out.Bold = &v
	}
	if o.Italic != nil {
		v := *o.Italic
		out.Italic = &v
	}
	return out
}

// Compose applies the specified fields of o on top of base.
func Compose(base Style, o StyleOverride) Style {
	out := base
	if o.Font != nil {
		out.Font = *o.Font
	}
	if o.Size != nil {
		out.Size = *o.Size
	}
	if o.Color != nil {
		out.Color = o.Color.Clamped()
	}
	if o.Bold != nil {
		out.Bold = *o.Bold
	}
	if o.Italic != nil {
		out.Italic = *o.Italic
	}
	return out
}

// Override helpers for building a StyleOverride inline.

// FontOverride returns an override that only changes the font.
func FontOverride(font string) StyleOverride { return StyleOverride{Font: &font} }

// SizeOverride returns an override that only changes the size.
func SizeOverride(size float64) StyleOverride { return StyleOverride{Size: &size} }

// ColorOverride returns an override that only changes the colour.
func ColorOverride(c RGB) StyleOverride { return StyleOverride{Color: &c} }

// BoldOverride returns an override that only changes the bold flag.
func BoldOverride(b bool) StyleOverride { return StyleOverride{Bold: &b} }

// ItalicOverride returns an override that only changes the italic flag.
func ItalicOverride(i bool) StyleOverride { return StyleOverride{Italic: &i} }

// Merge combines overrides; fields set in later overrides win.
func (o StyleOverride) Merge(others ...StyleOverride) StyleOverride {
	out := o
	for _, other := range others {
		if other.Font != nil {
			out.Font = other.Font
		}
		if other.Size != nil {
			out.Size = other.Size
		}
		if other.Color != nil {
			out.Color = other.Color
		}
		if other.Bold != nil {
			out.Bold = other.Bold
		}
		if other.Italic != nil {
			out.Italic = other.Italic
		}
	}
	return out
}

// Alignment is the horizontal alignment of replacement text
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
	AlignJustify
)

// String returns a string representation of the alignment
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	case AlignJustify:
		return "justify"
	default:
		return "unknown"
	}
}

// ParseAlignment parses "left", "right", "center" or "justify".
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	case "center", "centre":
		return AlignCenter, nil
	case "justify", "justified":
		return AlignJustify, nil
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}
