package selector

import (
	"fmt"
	"strings"

	"github.com/tsawler/respan/model"
)

// StylePredicate constrains container styles. Nil fields are wildcards.
type StylePredicate struct {
	Font   *string  `json:"font,omitempty"`
	Size   *float64 `json:"size,omitempty"`
	Bold   *bool    `json:"bold,omitempty"`
	Italic *bool    `json:"italic,omitempty"`
}

// Bold returns a predicate matching bold text.
func Bold() StylePredicate { return StylePredicate{}.WithBold(true) }

// Italic returns a predicate matching italic text.
func Italic() StylePredicate { return StylePredicate{}.WithItalic(true) }

// WithFont requires an exact font name.
func (p StylePredicate) WithFont(font string) StylePredicate {
	p.Font = &font
	return p
}

// WithSize requires a size within model.SizeEpsilon.
func (p StylePredicate) WithSize(size float64) StylePredicate {
	p.Size = &size
	return p
}

// WithBold requires the bold flag to equal b.
func (p StylePredicate) WithBold(b bool) StylePredicate {
	p.Bold = &b
	return p
}

// WithItalic requires the italic flag to equal i.
func (p StylePredicate) WithItalic(i bool) StylePredicate {
	p.Italic = &i
	return p
}

func (p StylePredicate) clone() StylePredicate {
	var out StylePredicate
	if p.Font != nil {
		out = out.WithFont(*p.Font)
	}
	if p.Size != nil {
		out = out.WithSize(*p.Size)
	}
	if p.Bold != nil {
		out = out.WithBold(*p.Bold)
	}
	if p.Italic != nil {
		out = out.WithItalic(*p.Italic)
	}
	return out
}

// IsEmpty returns true if the predicate matches every style
func (p StylePredicate) IsEmpty() bool {
	return p.Font == nil && p.Size == nil && p.Bold == nil && p.Italic == nil
}

// Matches reports whether st satisfies every specified field.
func (p StylePredicate) Matches(st model.Style) bool {
	if p.Font != nil && *p.Font != st.Font {
		return false
	}
	if p.Size != nil && !model.SameSize(*p.Size, st.Size) {
		return false
	}
	if p.Bold != nil && *p.Bold != st.Bold {
		return false
	}
	if p.Italic != nil && *p.Italic != st.Italic {
		return false
	}
	return true
}

// String implements fmt.Stringer
func (p StylePredicate) String() string {
	var parts []string
	if p.Font != nil {
		parts = append(parts, fmt.Sprintf("font=%q", *p.Font))
	}
	if p.Size != nil {
		parts = append(parts, fmt.Sprintf("size=%g", *p.Size))
	}
	if p.Bold != nil {
		parts = append(parts, fmt.Sprintf("bold=%t", *p.Bold))
	}
	if p.Italic != nil {
		parts = append(parts, fmt.Sprintf("italic=%t", *p.Italic))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}
