package replace

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/model"
	"github.com/tsawler/respan/selector"
)

// Resolver turns a selector into one container. *resolver.Resolver
// implements it.
type Resolver interface {
	Resolve(sel selector.Selector) (model.Container, error)
}

// Orchestrator applies replacement operations against one engine. All
// methods are safe for concurrent use; apply and save are serialised by a
// single mutex so a blank and its draw appear atomic.
type Orchestrator struct {
	mu sync.Mutex

	eng      engine.Engine
	resolver Resolver
	fill     model.RGB
	logger   *zap.Logger

	ops    []*entry
	byID   map[int]*entry
	done   map[int]State // finished operations flushed by Save
	nextID int
}

type entry struct {
	op      Operation
	outcome Outcome
}

// Option configures the orchestrator
type Option func(*Orchestrator)

// WithFill sets the default blanking colour (default: white)
func WithFill(c model.RGB) Option {
	return func(o *Orchestrator) {
		o.fill = c.Clamped()
	}
}

// WithLogger sets the logger (default: no-op)
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an orchestrator drawing into eng and resolving selectors with
// res.
func New(eng engine.Engine, res Resolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		eng:      eng,
		resolver: res,
		fill:     model.White,
		logger:   zap.NewNop(),
		byID:     make(map[int]*entry),
		done:     make(map[int]State),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit appends op to the pending list and returns its ID. An op carrying
// the ID of a finished operation fails with ErrAlreadyApplied; one carrying
// the ID of a pending operation is not added twice.
func (o *Orchestrator) Submit(op Operation) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if op.ID != 0 {
		if _, ok := o.done[op.ID]; ok {
			return 0, fmt.Errorf("operation %d: %w", op.ID, model.ErrAlreadyApplied)
		}
		e, ok := o.byID[op.ID]
		if !ok {
			return 0, fmt.Errorf("%w: unknown operation id %d", model.ErrInvalidOperation, op.ID)
		}
		if e.outcome.State.Terminal() {
			return 0, fmt.Errorf("operation %d: %w", op.ID, model.ErrAlreadyApplied)
		}
		return op.ID, nil
	}

	if (op.Selector == nil) == (op.Target == nil) {
		return 0, fmt.Errorf("%w: need exactly one of selector and target", model.ErrInvalidOperation)
	}

	o.nextID++
	op.ID = o.nextID
	if op.Selector != nil {
		sel := *op.Selector
		op.Selector = &sel
	}
	if op.Target != nil {
		t := *op.Target
		op.Target = &t
	}
	op.Override = op.Override.Clone()
	if op.Fill != nil {
		fill := *op.Fill
		op.Fill = &fill
	}
	e := &entry{op: op, outcome: Outcome{ID: op.ID, State: Pending}}
	o.ops = append(o.ops, e)
	o.byID[op.ID] = e
	return op.ID, nil
}

// Apply applies one pending operation. Applying a finished operation fails
// with ErrAlreadyApplied. The returned error is the outcome's error.
func (o *Orchestrator) Apply(id int) (Outcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if state, ok := o.done[id]; ok {
		return Outcome{ID: id, State: state}, fmt.Errorf("operation %d: %w", id, model.ErrAlreadyApplied)
	}
	e, ok := o.byID[id]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: unknown operation id %d", model.ErrInvalidOperation, id)
	}
	if e.outcome.State.Terminal() {
		return e.outcome, fmt.Errorf("operation %d: %w", id, model.ErrAlreadyApplied)
	}
	o.apply(e)
	return e.outcome, e.outcome.Err
}

// ApplyAll applies every pending operation in submission order and returns
// their outcomes in the same order.
func (o *Orchestrator) ApplyAll() []Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []Outcome
	for _, e := range o.ops {
		if e.outcome.State.Terminal() {
			continue
		}
		o.apply(e)
		out = append(out, e.outcome)
	}
	return out
}

// Save hands the accumulated mutations to the engine's persistence step
// and flushes finished operations from the list. Pending operations stay.
func (o *Orchestrator) Save() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	saver, ok := o.eng.(engine.Saver)
	if !ok {
		return model.ErrSaveUnsupported
	}
	if err := saver.Save(); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	kept := o.ops[:0]
	flushed := 0
	for _, e := range o.ops {
		if e.outcome.State.Terminal() {
			o.done[e.op.ID] = e.outcome.State
			delete(o.byID, e.op.ID)
			flushed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(o.ops); i++ {
		o.ops[i] = nil
	}
	o.ops = kept

	o.logger.Info("saved", zap.Int("flushed", flushed), zap.Int("pending", len(kept)))
	return nil
}

// Operations returns the outcome of every operation not yet flushed by
// Save, in submission order.
func (o *Orchestrator) Operations() []Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Outcome, len(o.ops))
	for i, e := range o.ops {
		out[i] = e.outcome
	}
	return out
}

// Pending returns the number of operations waiting to be applied.
func (o *Orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := 0
	for _, e := range o.ops {
		if !e.outcome.State.Terminal() {
			n++
		}
	}
	return n
}

// apply runs one operation through its state machine. Must be called with
// the lock held.
func (o *Orchestrator) apply(e *entry) {
	op := e.op
	out := &e.outcome

	fail := func(err error) {
		out.State = Failed
		out.Err = err
		o.logger.Warn("replacement failed",
			zap.Int("op", op.ID),
			zap.String("target", out.Target.ID()),
			zap.Error(err),
		)
	}

	// Pending -> Resolved
	target, err := o.resolve(op)
	if err != nil {
		fail(err)
		return
	}
	out.Target = target
	out.Style = model.Compose(target.Style, op.Override)
	out.State = Resolved

	// Resolved -> Applied | Failed
	if !(op.Padding >= 0) || math.IsInf(op.Padding, 1) {
		fail(fmt.Errorf("%w: invalid padding %g", model.ErrDegenerateRegion, op.Padding))
		return
	}
	rect := target.Rect.Inset(op.Padding)
	if rect.IsDegenerate() {
		fail(fmt.Errorf("%w: padding %g collapses %v", model.ErrDegenerateRegion, op.Padding, target.Rect.Slice()))
		return
	}
	out.Rect = rect

	fill := o.fill
	if op.Fill != nil {
		fill = op.Fill.Clamped()
	}
	page := target.Page()
	if err := o.eng.BlankRegion(page, rect, fill); err != nil {
		fail(fmt.Errorf("blank region: %w", err))
		return
	}

	fit, err := o.eng.DrawText(page, rect, op.NewText, out.Style, op.Alignment)
	if err != nil {
		fail(fmt.Errorf("draw text: %w", err))
		return
	}
	if !fit {
		fail(fmt.Errorf("%w: %q in %v at %s", model.ErrTextOverflow, op.NewText, rect.Slice(), out.Style))
		return
	}

	out.State = Applied
	o.logger.Info("replacement applied",
		zap.Int("op", op.ID),
		zap.String("target", target.ID()),
		zap.String("text", op.NewText),
	)
}

func (o *Orchestrator) resolve(op Operation) (model.Container, error) {
	if op.Target != nil {
		return model.Container{
			Address: model.Address{Page: op.Target.Page},
			Rect:    op.Target.Rect,
			Style:   op.Target.Style,
		}, nil
	}
	if o.resolver == nil {
		return model.Container{}, fmt.Errorf("%w: no resolver for %s", model.ErrInvalidOperation, op.Selector)
	}
	return o.resolver.Resolve(*op.Selector)
}
