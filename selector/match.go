package selector

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/respan/model"
)

// Matcher tests containers against one selector. It holds a case folder,
// which is not safe for concurrent use; create one Matcher per goroutine.
type Matcher struct {
	sel   Selector
	fold  cases.Caser
	query string
	tol   float64
}

// NewMatcher prepares sel for matching. defaultTolerance applies to BBox
// selectors that did not set their own.
func (s Selector) NewMatcher(defaultTolerance float64) *Matcher {
	m := &Matcher{sel: s, tol: defaultTolerance}
	if s.hasTolerance {
		m.tol = s.tolerance
	}
	if s.kind == KindText {
		m.fold = cases.Fold()
		m.query = m.normalize(s.query)
	}
	return m
}

func (m *Matcher) normalize(s string) string {
	s = norm.NFC.String(s)
	if m.sel.caseInsensitive {
		s = m.fold.String(s)
	}
	return s
}

// Match reports whether c satisfies the selector's discriminant and its
// Within region. Page restriction, level and occurrence are the caller's
// concern. A regular expression that exceeds MatchTimeout returns an error.
func (m *Matcher) Match(c model.Container) (bool, error) {
	s := m.sel
	if s.hasRegion && !s.region.Expand(m.tol).Intersects(c.Rect) {
		return false, nil
	}
	switch s.kind {
	case KindText:
		text := m.normalize(c.Text)
		if s.exact {
			return text == m.query, nil
		}
		return strings.Contains(text, m.query), nil

	case KindRegex:
		if s.re == nil {
			return false, nil
		}
		ok, err := s.re.MatchString(c.Text)
		if err != nil {
			return false, fmt.Errorf("regex %q on %s: %w", s.pattern, c.ID(), err)
		}
		return ok, nil

	case KindBBox:
		return c.Rect.Close(s.bbox, m.tol), nil

	case KindID:
		return c.Address == s.addr, nil

	case KindStyle:
		return s.style.Matches(c.Style), nil
	}
	return false, nil
}
