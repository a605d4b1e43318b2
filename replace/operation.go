// Package replace sequences blank-then-draw edits against a document
// engine.
//
// Each submitted Operation moves through
//
//	Pending -> Resolved -> Applied
//	                    \-> Failed
//
// A pending operation is resolved to one target region, the region is
// inset by the operation's padding and blanked with its fill colour, and the
// new text is drawn inside it with the target's style composed with the
// operation's override. Text that does not fit fails the operation with
// model.ErrTextOverflow; the blanked region stays visible.
//
// Operations apply strictly in submission order, so later operations see
// the page left by earlier ones and overlapping edits resolve as last write
// wins.
package replace

import (
	"github.com/tsawler/respan/model"
	"github.com/tsawler/respan/selector"
)

// State is the lifecycle state of an operation.
type State int

const (
	Pending State = iota
	Resolved
	Applied
	Failed
)

// String returns a string representation of the state
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Applied || s == Failed
}

// Target is an explicit region and style, for callers that resolved the
// region themselves.
type Target struct {
	Page  int
	Rect  model.Rect
	Style model.Style
}

// Operation is one replacement. Exactly one of Selector and Target must be
// set.
type Operation struct {
	// ID is assigned by Submit. Resubmitting an operation that carries the
	// ID of a finished operation fails with model.ErrAlreadyApplied.
	ID int

	Selector *selector.Selector
	Target   *Target

	NewText   string
	Padding   float64
	Alignment model.Alignment
	Override  model.StyleOverride

	// Fill is the blanking colour. Nil uses the orchestrator default.
	Fill *model.RGB
}

// Outcome reports what happened to an operation.
type Outcome struct {
	ID    int
	State State
	Err   error

	// Target is the resolved container. Zero when resolution failed.
	Target model.Container

	// Rect is the padded region that was blanked and drawn into.
	Rect model.Rect

	// Style is the composed style snapshot used for drawing.
	Style model.Style
}

// OK reports whether the operation was applied.
func (o Outcome) OK() bool {
	return o.State == Applied
}
