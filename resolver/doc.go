// Package resolver resolves selectors against the pages of a document.
//
// Pages come from a PageSource, normally the document's page cache. Pages
// are only built when a selector can match on them: a page restriction or an
// ID selector touches a single page.
//
// # Basic Usage
//
//	r := resolver.NewResolver(pages)
//	matches, err := r.Find(selector.Text("Total"))
//	target, err := r.Resolve(selector.Text("Total").Occurrence(1))
//	inside, err := r.InRegion(0, model.NewRect(300, 600, 560, 700), model.LevelSpan)
//
// # Ordering
//
// Matches are ordered by page, then block, line and span index. The order is
// total and stable, so Occurrence(k) always picks the same container while
// the pages are unchanged, and Resolve with Occurrence(k) equals Find(...)[k]
// of the same selector without the occurrence.
//
// # Errors
//
//   - model.ErrNoMatch: nothing matched
//   - model.ErrOccurrenceOutOfRange: fewer than k+1 matches, or a negative k
//
// The tolerance of BBox selectors and Within regions that do not set one is
// configurable:
//
//	r := resolver.NewResolver(pages, resolver.WithTolerance(2))
package resolver
