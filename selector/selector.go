// Package selector defines locators for containers.
//
// A Selector has exactly one discriminant, chosen by its constructor:
//
//	selector.Text("Draft")                      // substring
//	selector.Regex(`Q[1-4] 20\d\d`)             // regular expression search
//	selector.BBox(model.NewRect(100, 100, 200, 120))
//	selector.ID("0:2:1")                        // page:block[:line[:span]]
//	selector.Style(selector.Bold().WithFont("Helvetica"))
//
// and any number of shared constraints added with modifiers that return a
// copy:
//
//	selector.Text("total").OnPage(2).CaseInsensitive().Occurrence(1)
//	selector.Text("Total").Exact().Within(model.NewRect(300, 600, 560, 700))
//
// Text, Regex, BBox and Style selectors match spans unless At chooses the
// line or block level. ID selectors match the level their address names.
// Resolution against a document lives in package resolver.
package selector

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/tsawler/respan/model"
)

// Kind is the discriminant of a Selector.
type Kind int

const (
	KindText Kind = iota
	KindRegex
	KindBBox
	KindID
	KindStyle
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRegex:
		return "regex"
	case KindBBox:
		return "bbox"
	case KindID:
		return "id"
	case KindStyle:
		return "style"
	default:
		return "unknown"
	}
}

// MatchTimeout bounds a single regular expression match.
const MatchTimeout = time.Second

// Selector is an immutable locator. The zero value is not valid; use one of
// the constructors.
type Selector struct {
	kind    Kind
	query   string
	pattern string
	re      *regexp2.Regexp
	bbox    model.Rect
	addr    model.Address
	style   StylePredicate
	exact   bool

	page            int
	hasPage         bool
	caseInsensitive bool
	tolerance       float64
	hasTolerance    bool
	occurrence      int
	hasOccurrence   bool
	region          model.Rect
	hasRegion       bool
	level           model.Level
}

func newSelector(kind Kind) Selector {
	return Selector{kind: kind, level: model.LevelSpan}
}

// Text selects containers whose text contains q. The empty query is
// contained in every text and matches every container.
func Text(q string) Selector {
	s := newSelector(KindText)
	s.query = q
	return s
}

// Regex selects containers whose text contains a match of pattern. The
// pattern is compiled here; a malformed pattern fails with
// ErrInvalidPattern.
func Regex(pattern string) (Selector, error) {
	re, err := compile(pattern, regexp2.None)
	if err != nil {
		return Selector{}, fmt.Errorf("%w: %v", model.ErrInvalidPattern, err)
	}
	s := newSelector(KindRegex)
	s.pattern = pattern
	s.re = re
	return s, nil
}

// MustRegex is like Regex but panics on a malformed pattern.
func MustRegex(pattern string) Selector {
	s, err := Regex(pattern)
	if err != nil {
		panic(err)
	}
	return s
}

// BBox selects containers whose rect is close to r on all four edges.
func BBox(r model.Rect) Selector {
	s := newSelector(KindBBox)
	s.bbox = r
	return s
}

// ID selects the container at a "page:block[:line[:span]]" address. Wrong
// arity or non-numeric parts fail with ErrInvalidAddress.
func ID(id string) (Selector, error) {
	addr, err := model.ParseAddress(id)
	if err != nil {
		return Selector{}, err
	}
	return Address(addr), nil
}

// Address selects the container at addr.
func Address(addr model.Address) Selector {
	s := newSelector(KindID)
	s.addr = addr
	s.level = addr.Level
	return s
}

// Style selects containers whose style satisfies p.
func Style(p StylePredicate) Selector {
	s := newSelector(KindStyle)
	s.style = p.clone()
	return s
}

func compile(pattern string, opts regexp2.RegexOptions) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

// OnPage restricts matches to one zero-based page. A page outside the
// document, negative ones included, matches nothing.
func (s Selector) OnPage(page int) Selector {
	s.page = page
	s.hasPage = true
	return s
}

// Exact makes a Text selector require the whole container text to equal
// the query instead of containing it. Other kinds ignore it.
func (s Selector) Exact() Selector {
	if s.kind == KindText {
		s.exact = true
	}
	return s
}

// Within restricts matches to containers whose rect intersects r grown by
// the bbox tolerance on every side.
func (s Selector) Within(r model.Rect) Selector {
	s.region = r
	s.hasRegion = true
	return s
}

// CaseInsensitive folds case on both sides of Text and Regex matching.
func (s Selector) CaseInsensitive() Selector {
	s.caseInsensitive = true
	if s.kind == KindRegex && s.re != nil {
		// The pattern already compiled without IgnoreCase.
		re, err := compile(s.pattern, regexp2.IgnoreCase)
		if err == nil {
			s.re = re
		}
	}
	return s
}

// Tolerance sets the per-edge tolerance of BBox matching.
func (s Selector) Tolerance(t float64) Selector {
	if t < 0 {
		t = -t
	}
	s.tolerance = t
	s.hasTolerance = true
	return s
}

// Occurrence selects the k-th match (zero-based) in document order. A
// negative k is never in range.
func (s Selector) Occurrence(k int) Selector {
	s.occurrence = k
	s.hasOccurrence = true
	return s
}

// At sets the container level Text, Regex, BBox and Style selectors match.
// It has no effect on ID selectors.
func (s Selector) At(level model.Level) Selector {
	if s.kind == KindID {
		return s
	}
	if level < model.LevelBlock || level > model.LevelSpan {
		level = model.LevelSpan
	}
	s.level = level
	return s
}

// Kind returns the discriminant.
func (s Selector) Kind() Kind { return s.kind }

// Level returns the container level the selector matches.
func (s Selector) Level() model.Level { return s.level }

// Page returns the page restriction, or false when any page matches.
func (s Selector) Page() (int, bool) {
	return s.page, s.hasPage
}

// OccurrenceIndex returns the requested occurrence, or false when all
// matches are wanted.
func (s Selector) OccurrenceIndex() (int, bool) {
	return s.occurrence, s.hasOccurrence
}

// Region returns the Within rect, or false when unset.
func (s Selector) Region() (model.Rect, bool) {
	return s.region, s.hasRegion
}

// ToleranceValue returns the bbox tolerance, or false when unset.
func (s Selector) ToleranceValue() (float64, bool) {
	return s.tolerance, s.hasTolerance
}

// Address returns the target of an ID selector.
func (s Selector) Address() (model.Address, bool) {
	return s.addr, s.kind == KindID
}

// String describes the selector for logs and errors.
func (s Selector) String() string {
	var b strings.Builder
	switch s.kind {
	case KindText:
		fmt.Fprintf(&b, "text(%q)", s.query)
		if s.exact {
			b.WriteString(" exact")
		}
	case KindRegex:
		fmt.Fprintf(&b, "regex(%q)", s.pattern)
	case KindBBox:
		fmt.Fprintf(&b, "bbox(%.2f,%.2f,%.2f,%.2f)", s.bbox.X0, s.bbox.Y0, s.bbox.X1, s.bbox.Y1)
	case KindID:
		fmt.Fprintf(&b, "id(%s)", s.addr)
	case KindStyle:
		fmt.Fprintf(&b, "style(%s)", s.style)
	default:
		b.WriteString("invalid")
	}
	if s.kind != KindID && s.level != model.LevelSpan {
		fmt.Fprintf(&b, " at %s", s.level)
	}
	if s.hasPage {
		fmt.Fprintf(&b, " page=%d", s.page)
	}
	if s.caseInsensitive {
		b.WriteString(" nocase")
	}
	if s.hasTolerance {
		fmt.Fprintf(&b, " tol=%g", s.tolerance)
	}
	if s.hasRegion {
		fmt.Fprintf(&b, " within(%.2f,%.2f,%.2f,%.2f)", s.region.X0, s.region.Y0, s.region.X1, s.region.Y1)
	}
	if s.hasOccurrence {
		fmt.Fprintf(&b, " occurrence=%d", s.occurrence)
	}
	return b.String()
}
