package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/internal/testdoc"
	"github.com/tsawler/respan/model"
	"github.com/tsawler/respan/pagetree"
	"github.com/tsawler/respan/selector"
)

// mockPages is a PageSource that counts page builds
type mockPages struct {
	trees []*engine.PageTree
	built map[int]int
}

func newMockPages(trees ...*engine.PageTree) *mockPages {
	return &mockPages{trees: trees, built: make(map[int]int)}
}

func (m *mockPages) PageCount() int { return len(m.trees) }

func (m *mockPages) Page(index int) (*pagetree.Page, error) {
	if index < 0 || index >= len(m.trees) {
		return nil, fmt.Errorf("page %d not found", index)
	}
	m.built[index]++
	return pagetree.Build(index, m.trees[index])
}

func ids(cs []model.Container) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID()
	}
	return out
}

// ============================================================================
// Scenarios
// ============================================================================

// TestResolveTextFirstContainer tests that a text selector picks the span
// holding the text and nothing else
func TestResolveTextFirstContainer(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage())

	c, err := ResolveOne(pages, selector.Text("Draft"))
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if c.ID() != "0:0:0:0" {
		t.Errorf("expected 0:0:0:0, got %s", c.ID())
	}
	if !c.Style.Bold {
		t.Error("expected bold style")
	}

	all, err := Find(pages, selector.Text("Draft"))
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 match, got %v", ids(all))
	}
}

// TestResolveBBoxTolerance tests bbox closeness at two tolerances
func TestResolveBBoxTolerance(t *testing.T) {
	tree := &engine.PageTree{Blocks: []engine.Block{
		testdoc.TextBlock(testdoc.Line(testdoc.Span("near", model.Rect{X0: 102, Y0: 101, X1: 198, Y1: 119}, "F", 10, 0))),
		testdoc.TextBlock(testdoc.Line(testdoc.Span("wide", model.Rect{X0: 100, Y0: 100, X1: 210, Y1: 120}, "F", 10, 0))),
	}}
	pages := newMockPages(tree)
	target := model.Rect{X0: 100, Y0: 100, X1: 200, Y1: 120}

	tests := []struct {
		tol  float64
		want []string
	}{
		{5, []string{"0:0:0:0"}},
		{10, []string{"0:0:0:0", "0:1:0:0"}},
		{1, nil},
	}

	for _, tt := range tests {
		got, err := Find(pages, selector.BBox(target).Tolerance(tt.tol))
		if err != nil {
			t.Fatalf("tol %g: %v", tt.tol, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("tol %g: expected %v, got %v", tt.tol, tt.want, ids(got))
			continue
		}
		for i := range got {
			if got[i].ID() != tt.want[i] {
				t.Errorf("tol %g: expected %v, got %v", tt.tol, tt.want, ids(got))
			}
		}
	}
}

// TestResolveBlockAggregate tests that a two-part id resolves to the block
// aggregate
func TestResolveBlockAggregate(t *testing.T) {
	tree := &engine.PageTree{Blocks: []engine.Block{
		testdoc.TextBlock(testdoc.Line(testdoc.Span("first", model.Rect{X0: 10, Y0: 10, X1: 50, Y1: 20}, "F", 10, 0))),
		testdoc.TextBlock(testdoc.Line(testdoc.Span("second", model.Rect{X0: 10, Y0: 30, X1: 60, Y1: 40}, "F", 10, 0))),
		testdoc.TextBlock(
			testdoc.Line(
				testdoc.Span("Head", model.Rect{X0: 10, Y0: 50, X1: 40, Y1: 64}, "Times", 14, model.FlagBold),
				testdoc.Span(" tail", model.Rect{X0: 40, Y0: 52, X1: 80, Y1: 62}, "Times", 10, 0),
			),
			testdoc.Line(
				testdoc.Span("wrapped", model.Rect{X0: 5, Y0: 66, X1: 90, Y1: 76}, "Times", 10, 0),
			),
		),
	}}
	pages := newMockPages(tree)

	sel, err := selector.ID("0:2")
	if err != nil {
		t.Fatalf("failed to parse id: %v", err)
	}
	c, err := ResolveOne(pages, sel)
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	want := model.Rect{X0: 5, Y0: 50, X1: 90, Y1: 76}
	if c.Rect != want {
		t.Errorf("expected rect %v, got %v", want, c.Rect)
	}
	wantStyle := model.Style{Font: "Times", Size: 14, Color: model.Black, Bold: true}
	if c.Style != wantStyle {
		t.Errorf("expected style %v, got %v", wantStyle, c.Style)
	}
	if c.Text != "Head tail\nwrapped" {
		t.Errorf("unexpected text %q", c.Text)
	}
	if c.Address.Level != model.LevelBlock {
		t.Errorf("expected block level, got %s", c.Address.Level)
	}
}

// ============================================================================
// Ordering and occurrence
// ============================================================================

// TestFindOrderStable tests that repeated finds return the same order
func TestFindOrderStable(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage(), testdoc.ScenarioPage())
	sel := selector.Text("e")

	first, err := Find(pages, sel)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	second, err := Find(pages, sel)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("order changed: %v vs %v", ids(first), ids(second))
	}

	for i := 1; i < len(first); i++ {
		if !first[i-1].Address.Less(first[i].Address) {
			t.Errorf("%s sorted after %s", first[i-1].ID(), first[i].ID())
		}
	}

	for k := range first {
		c, err := ResolveOne(pages, sel.Occurrence(k))
		if err != nil {
			t.Fatalf("occurrence %d: %v", k, err)
		}
		if c != first[k] {
			t.Errorf("occurrence %d: expected %s, got %s", k, first[k].ID(), c.ID())
		}
	}

	_, err = ResolveOne(pages, sel.Occurrence(len(first)))
	if !errors.Is(err, model.ErrOccurrenceOutOfRange) {
		t.Errorf("expected ErrOccurrenceOutOfRange, got %v", err)
	}
}

// TestResolveNoMatch tests the no-match error
func TestResolveNoMatch(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage())

	_, err := ResolveOne(pages, selector.Text("missing"))
	if !errors.Is(err, model.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}

	_, err = ResolveOne(pages, selector.Text("missing").Occurrence(3))
	if !errors.Is(err, model.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch for occurrence without matches, got %v", err)
	}

	got, err := Find(pages, selector.Text("missing"))
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty find without error, got %v, %v", got, err)
	}
}

// TestPageRestriction tests that a page restriction only builds one page
func TestPageRestriction(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage(), testdoc.ScenarioPage(), testdoc.ScenarioPage())

	got, err := Find(pages, selector.Text("Footer").OnPage(1))
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "1:3:0:0" {
		t.Errorf("expected [1:3:0:0], got %v", ids(got))
	}
	if pages.built[0] != 0 || pages.built[2] != 0 || pages.built[1] != 1 {
		t.Errorf("unexpected page builds %v", pages.built)
	}

	got, err = Find(pages, selector.Text("Footer").OnPage(7))
	if err != nil || len(got) != 0 {
		t.Errorf("expected no match beyond last page, got %v, %v", ids(got), err)
	}
}

// TestNegativeModifiers tests that negative pages and occurrences never
// widen a selector
func TestNegativeModifiers(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage(), testdoc.ScenarioPage())

	got, err := Find(pages, selector.Text("Footer").OnPage(-3))
	if err != nil || len(got) != 0 {
		t.Errorf("expected no match on a negative page, got %v, %v", ids(got), err)
	}

	_, err = Find(pages, selector.Text("Footer").Occurrence(-1))
	if !errors.Is(err, model.ErrOccurrenceOutOfRange) {
		t.Errorf("expected ErrOccurrenceOutOfRange, got %v", err)
	}

	_, err = ResolveOne(pages, selector.Text("missing").Occurrence(-1))
	if !errors.Is(err, model.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

// TestExactAndWithin tests the exact text mode and the region constraint
func TestExactAndWithin(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage())

	got, err := Find(pages, selector.Text("Second line").Exact())
	if err != nil || len(got) != 1 || got[0].ID() != "0:2:1:0" {
		t.Errorf("expected [0:2:1:0], got %v, %v", ids(got), err)
	}
	got, err = Find(pages, selector.Text("Second").Exact())
	if err != nil || len(got) != 0 {
		t.Errorf("expected no exact match for a prefix, got %v, %v", ids(got), err)
	}

	footer := model.Rect{X0: 60, Y0: 690, X1: 200, Y1: 720}
	got, err = Find(pages, selector.Text("e").Within(footer))
	if err != nil || len(got) != 1 || got[0].ID() != "0:3:0:0" {
		t.Errorf("expected [0:3:0:0], got %v, %v", ids(got), err)
	}

	draft, _ := selector.ID("0:0:0:0")
	if _, err := ResolveOne(pages, draft.Within(footer)); !errors.Is(err, model.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch for an id outside the region, got %v", err)
	}
}

// TestInRegion tests listing the containers of a page region
func TestInRegion(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage())
	r := NewResolver(pages)

	region := model.Rect{X0: 60, Y0: 205, X1: 135, Y1: 245}
	spans, err := r.InRegion(0, region, model.LevelSpan)
	if err != nil {
		t.Fatalf("InRegion failed: %v", err)
	}
	want := []string{"0:2:0:0", "0:2:0:1", "0:2:1:0"}
	if !reflect.DeepEqual(ids(spans), want) {
		t.Errorf("expected %v, got %v", want, ids(spans))
	}

	blocks, err := r.InRegion(0, region, model.LevelBlock)
	if err != nil || len(blocks) != 1 || blocks[0].ID() != "0:2" {
		t.Errorf("expected [0:2], got %v, %v", ids(blocks), err)
	}

	if _, err := r.InRegion(3, region, model.LevelSpan); !errors.Is(err, model.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch for a missing page, got %v", err)
	}
}

// TestIDTouchesOnePage tests that id selectors only build the addressed page
func TestIDTouchesOnePage(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage(), testdoc.ScenarioPage())

	sel, _ := selector.ID("1:0:0:1")
	c, err := ResolveOne(pages, sel)
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if c.Text != " Report" {
		t.Errorf("expected %q, got %q", " Report", c.Text)
	}
	if pages.built[0] != 0 {
		t.Errorf("page 0 should not be built")
	}

	_, err = ResolveOne(pages, sel.OnPage(0))
	if !errors.Is(err, model.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch for conflicting page, got %v", err)
	}

	image, _ := selector.ID("0:1")
	_, err = ResolveOne(pages, image)
	if !errors.Is(err, model.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch for an image block, got %v", err)
	}
}

// TestMatchLevels tests line and block level matching
func TestMatchLevels(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage())

	got, _ := Find(pages, selector.Text("Draft Report"))
	if len(got) != 0 {
		t.Errorf("span level should not match across spans, got %v", ids(got))
	}

	got, _ = Find(pages, selector.Text("Draft Report").At(model.LevelLine))
	if len(got) != 1 || got[0].ID() != "0:0:0" {
		t.Errorf("expected line 0:0:0, got %v", ids(got))
	}

	got, _ = Find(pages, selector.Text("results\nSecond").At(model.LevelBlock))
	if len(got) != 1 || got[0].ID() != "0:2" {
		t.Errorf("expected block 0:2, got %v", ids(got))
	}

	got, _ = Find(pages, selector.Style(selector.Italic()))
	if len(got) != 1 || got[0].Text != "Summary" {
		t.Errorf("expected the italic span, got %v", ids(got))
	}
}

// TestDefaultTolerance tests the resolver-level bbox tolerance
func TestDefaultTolerance(t *testing.T) {
	pages := newMockPages(testdoc.ScenarioPage())
	target := model.Rect{X0: 70, Y0: 70, X1: 112, Y1: 88}

	if got, _ := Find(pages, selector.BBox(target)); len(got) != 0 {
		t.Errorf("default tolerance should not match, got %v", ids(got))
	}
	r := NewResolver(pages, WithTolerance(3))
	got, err := r.Find(selector.BBox(target))
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(got) != 1 || got[0].Text != "Draft" {
		t.Errorf("expected Draft, got %v", ids(got))
	}
}

// TestPagesSource tests the fixed page source
func TestPagesSource(t *testing.T) {
	p, err := pagetree.Build(0, testdoc.ScenarioPage())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	src := Pages{p}
	if src.PageCount() != 1 {
		t.Errorf("expected 1 page, got %d", src.PageCount())
	}
	if _, err := src.Page(1); err == nil {
		t.Error("expected error for missing page")
	}
	if _, err := ResolveOne(src, selector.Text("Footer")); err != nil {
		t.Errorf("failed to resolve: %v", err)
	}
}
