package respan

import (
	"fmt"

	"github.com/tsawler/respan/model"
	"github.com/tsawler/respan/replace"
	"github.com/tsawler/respan/selector"
)

// Edit builds a replacement operation with a fluent interface. Every method
// returns a new Edit, so a partially configured edit can be reused:
//
//	base := doc.Replace(selector.Text("Draft")).Padding(1)
//	base.With("Final").Submit()
//
// Configuration errors are kept and reported by Submit.
type Edit struct {
	doc *Document
	op  replace.Operation
	err error
}

// Replace starts an edit of the container sel resolves to.
func (d *Document) Replace(sel selector.Selector) *Edit {
	return &Edit{doc: d, op: replace.Operation{Selector: &sel}}
}

// ReplaceAll queues one edit per container sel finds, in document order,
// each drawing text. It fails with ErrNoMatch when sel finds nothing.
func (d *Document) ReplaceAll(sel selector.Selector, text string) ([]int, error) {
	return d.Replace(sel).With(text).SubmitEach()
}

// ReplaceAt starts an edit of an explicit region drawn in style st.
func (d *Document) ReplaceAt(page int, rect model.Rect, st model.Style) *Edit {
	return &Edit{doc: d, op: replace.Operation{
		Target: &replace.Target{Page: page, Rect: rect, Style: st},
	}}
}

func (e *Edit) clone() *Edit {
	c := *e
	if e.op.Fill != nil {
		fill := *e.op.Fill
		c.op.Fill = &fill
	}
	return &c
}

// With sets the replacement text.
func (e *Edit) With(text string) *Edit {
	c := e.clone()
	c.op.NewText = text
	return c
}

// Padding shrinks the target region on every side before blanking.
func (e *Edit) Padding(p float64) *Edit {
	c := e.clone()
	c.op.Padding = p
	return c
}

// Align sets the horizontal alignment.
func (e *Edit) Align(a model.Alignment) *Edit {
	c := e.clone()
	c.op.Alignment = a
	return c
}

// Override merges a partial style over the target's style. Later overrides
// win field by field.
func (e *Edit) Override(o model.StyleOverride) *Edit {
	c := e.clone()
	c.op.Override = c.op.Override.Merge(o)
	return c
}

// Font overrides the font name.
func (e *Edit) Font(name string) *Edit {
	return e.Override(model.FontOverride(name))
}

// Size overrides the font size.
func (e *Edit) Size(size float64) *Edit {
	return e.Override(model.SizeOverride(size))
}

// Color overrides the text colour. Accepts any encoding
// model.NormalizeColor does.
func (e *Edit) Color(v any) *Edit {
	c := e.clone()
	rgb, err := model.NormalizeColor(v)
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		return c
	}
	c.op.Override = c.op.Override.Merge(model.ColorOverride(rgb))
	return c
}

// Fill sets the blanking colour for this edit only.
func (e *Edit) Fill(v any) *Edit {
	c := e.clone()
	rgb, err := model.NormalizeColor(v)
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		return c
	}
	c.op.Fill = &rgb
	return c
}

// Operation returns the operation built so far.
func (e *Edit) Operation() (replace.Operation, error) {
	return e.op, e.err
}

// Submit queues the edit and returns its operation ID.
func (e *Edit) Submit() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	return e.doc.Submit(e.op)
}

// Apply submits the edit and applies it immediately.
func (e *Edit) Apply() (replace.Outcome, error) {
	id, err := e.Submit()
	if err != nil {
		return replace.Outcome{}, err
	}
	return e.doc.Apply(id)
}

// SubmitEach queues one operation per container the edit's selector finds
// now, in document order, and returns their IDs. Each operation targets its
// container by address. An edit of an explicit region is queued once.
func (e *Edit) SubmitEach() ([]int, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.op.Selector == nil {
		id, err := e.doc.Submit(e.op)
		if err != nil {
			return nil, err
		}
		return []int{id}, nil
	}

	sel := *e.op.Selector
	matches, err := e.doc.Find(sel)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrNoMatch, sel)
	}

	ids := make([]int, 0, len(matches))
	for _, c := range matches {
		op := e.op
		at := selector.Address(c.Address)
		op.Selector = &at
		id, err := e.doc.Submit(op)
		if err != nil {
			return ids, fmt.Errorf("queue %s: %w", c.ID(), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
