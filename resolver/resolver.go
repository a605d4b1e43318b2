package resolver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/respan/model"
	"github.com/tsawler/respan/pagetree"
	"github.com/tsawler/respan/selector"
)

// DefaultTolerance is the BBox tolerance used when neither the selector nor
// the resolver sets one.
const DefaultTolerance = 1.0

// PageSource provides built pages. *pagetree.Cache implements it.
type PageSource interface {
	PageCount() int
	Page(index int) (*pagetree.Page, error)
}

// Resolver resolves selectors against a PageSource.
type Resolver struct {
	pages     PageSource
	tolerance float64
	logger    *zap.Logger
}

// Option configures the resolver
type Option func(*Resolver)

// WithTolerance sets the default BBox tolerance (default: 1)
func WithTolerance(t float64) Option {
	return func(r *Resolver) {
		if t >= 0 {
			r.tolerance = t
		}
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a new resolver
func NewResolver(pages PageSource, opts ...Option) *Resolver {
	r := &Resolver{
		pages:     pages,
		tolerance: DefaultTolerance,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Find returns the containers matching sel in document order. With an
// occurrence set, the result holds exactly the k-th match, or the call fails
// with ErrOccurrenceOutOfRange. No match is not an error for Find.
func (r *Resolver) Find(sel selector.Selector) ([]model.Container, error) {
	matches, err := r.all(sel)
	if err != nil {
		return nil, err
	}

	k, ok := sel.OccurrenceIndex()
	if !ok {
		return matches, nil
	}
	if k < 0 || k >= len(matches) {
		if len(matches) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s has %d matches", model.ErrOccurrenceOutOfRange, sel, len(matches))
	}
	return matches[k : k+1], nil
}

// Resolve returns the first container of Find, or ErrNoMatch.
func (r *Resolver) Resolve(sel selector.Selector) (model.Container, error) {
	matches, err := r.Find(sel)
	if err != nil {
		return model.Container{}, err
	}
	if len(matches) == 0 {
		return model.Container{}, fmt.Errorf("%w: %s", model.ErrNoMatch, sel)
	}
	c := matches[0]
	r.logger.Debug("resolved",
		zap.Stringer("selector", sel),
		zap.String("id", c.ID()),
		zap.Float64s("rect", c.Rect.Slice()),
	)
	return c, nil
}

// InRegion returns the containers of one level on page whose rect
// intersects region grown by the resolver's tolerance, in document order.
func (r *Resolver) InRegion(page int, region model.Rect, level model.Level) ([]model.Container, error) {
	if page < 0 || page >= r.pages.PageCount() {
		return nil, fmt.Errorf("%w: page %d of %d", model.ErrNoMatch, page, r.pages.PageCount())
	}
	p, err := r.pages.Page(page)
	if err != nil {
		return nil, err
	}
	return p.Within(region, r.tolerance, level), nil
}

// all returns every match of sel, ignoring its occurrence.
func (r *Resolver) all(sel selector.Selector) ([]model.Container, error) {
	if addr, ok := sel.Address(); ok {
		if page, restricted := sel.Page(); restricted && page != addr.Page {
			return nil, nil
		}
		if addr.Page < 0 || addr.Page >= r.pages.PageCount() {
			return nil, nil
		}
		p, err := r.pages.Page(addr.Page)
		if err != nil {
			return nil, err
		}
		c, ok := p.Lookup(addr)
		if !ok {
			return nil, nil
		}
		if ok, _ := sel.NewMatcher(r.tolerance).Match(c); !ok {
			return nil, nil
		}
		return []model.Container{c}, nil
	}

	first, last := 0, r.pages.PageCount()-1
	if page, restricted := sel.Page(); restricted {
		if page < 0 || page >= r.pages.PageCount() {
			return nil, nil
		}
		first, last = page, page
	}

	m := sel.NewMatcher(r.tolerance)
	var out []model.Container
	for i := first; i <= last; i++ {
		p, err := r.pages.Page(i)
		if err != nil {
			return nil, err
		}
		for _, c := range p.Containers(sel.Level()) {
			ok, err := m.Match(c)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

// Pages is a fixed PageSource over already built pages.
type Pages []*pagetree.Page

// PageCount implements PageSource.
func (p Pages) PageCount() int { return len(p) }

// Page implements PageSource.
func (p Pages) Page(index int) (*pagetree.Page, error) {
	if index < 0 || index >= len(p) {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, len(p))
	}
	return p[index], nil
}

// Find resolves sel against pages with default options.
func Find(pages PageSource, sel selector.Selector) ([]model.Container, error) {
	return NewResolver(pages).Find(sel)
}

// ResolveOne resolves sel against pages with default options.
func ResolveOne(pages PageSource, sel selector.Selector) (model.Container, error) {
	return NewResolver(pages).Resolve(sel)
}
