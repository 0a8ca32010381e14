// internal/browser/promise/promise.go
package promise

import (
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// State is the settlement state of a Promise.
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrChainingCycle is the rejection reason of a promise resolved with itself.
var ErrChainingCycle = errors.New("chaining cycle detected for promise")

// Rejection carries an arbitrary rejection reason through Go's error channel. A handler
// or executor returning a *Rejection rejects with Reason rather than with the error.
type Rejection struct {
	Reason any
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("promise rejected: %v", r.Reason)
}

// Reject wraps reason so it can be returned from a Handler or Executor.
func Reject(reason any) error {
	return &Rejection{Reason: reason}
}

// reasonOf unwraps an error returned by user code into the value to reject with.
func reasonOf(err error) any {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason
	}
	return err
}

// Thenable is a foreign promise-like value. Resolving a Promise with a Thenable adopts
// its eventual state by calling Then from a queued job.
type Thenable interface {
	Then(resolve, reject func(value any)) error
}

// Handler reacts to a settled value. Its result resolves the promise returned by Then;
// a non-nil error rejects it.
type Handler func(value any) (any, error)

// Executor starts the work behind a new promise. A returned error rejects the promise
// unless resolve or reject was already called.
type Executor func(resolve, reject func(value any)) error

// Engine creates promises and schedules their reactions on a JobQueue. Promises and the
// engine are confined to the goroutine that drains the queue.
type Engine struct {
	queue  JobQueue
	logger *zap.Logger
}

// NewEngine creates an engine scheduling on queue.
func NewEngine(queue JobQueue, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{queue: queue, logger: logger.Named("promise")}
}

// Promise is a single-assignment container for a value that becomes available later.
type Promise struct {
	engine *Engine
	state  State
	value  any

	// settledJobs run once, via the queue, when the promise settles.
	settledJobs []Job
	// dependents are composites built by All or Race that watch this promise.
	dependents []*Promise
	group      *group
}

type group struct {
	members []*Promise
	race    bool
}

func (e *Engine) newPromise() *Promise {
	return &Promise{engine: e}
}

// New runs executor synchronously with the resolving functions of a fresh promise.
func (e *Engine) New(executor Executor) *Promise {
	p := e.newPromise()
	resolve, reject := p.resolvingFunctions()
	if err := e.call(func() error { return executor(resolve, reject) }); err != nil {
		reject(reasonOf(err))
	}
	return p
}

// Resolve returns v itself when it is a *Promise, a promise adopting v when it is a
// Thenable, and a fulfilled promise otherwise.
func (e *Engine) Resolve(v any) *Promise {
	if p, ok := v.(*Promise); ok {
		return p
	}
	p := e.newPromise()
	p.resolve(v)
	return p
}

// Reject returns a promise rejected with reason, which is never unwrapped.
func (e *Engine) Reject(reason any) *Promise {
	p := e.newPromise()
	p.settle(Rejected, reason)
	return p
}

// All fulfills with the values of every member in input order, or rejects with the
// first rejection. An empty input fulfills immediately with an empty slice.
func (e *Engine) All(values iter.Seq[any]) *Promise {
	return e.combine(values, false)
}

// Race settles like the first member to settle. An empty input never settles.
func (e *Engine) Race(values iter.Seq[any]) *Promise {
	return e.combine(values, true)
}

func (e *Engine) combine(values iter.Seq[any], race bool) *Promise {
	composite := e.newPromise()
	g := &group{race: race}
	for v := range values {
		g.members = append(g.members, e.Resolve(v))
	}
	composite.group = g

	for _, m := range g.members {
		m.dependents = append(m.dependents, composite)
	}
	composite.evaluateGroup()
	return composite
}

// evaluateGroup re-checks an All or Race composite after a member changed.
func (p *Promise) evaluateGroup() {
	if p.state != Pending || p.group == nil {
		return
	}
	g := p.group

	if g.race {
		for _, m := range g.members {
			if m.state != Pending {
				p.settle(m.state, m.value)
				return
			}
		}
		return
	}

	values := make([]any, len(g.members))
	for i, m := range g.members {
		switch m.state {
		case Rejected:
			p.settle(Rejected, m.value)
			return
		case Pending:
			return
		}
		values[i] = m.value
	}
	p.settle(Fulfilled, values)
}

// State returns the current state.
func (p *Promise) State() State {
	return p.state
}

// Value returns the fulfillment value or rejection reason; nil while pending.
func (p *Promise) Value() any {
	return p.value
}

// Then registers reactions and returns a promise resolved with the outcome of the one
// that runs. A nil handler passes the settlement through unchanged. Reactions always
// run from the job queue, even when p is already settled.
func (p *Promise) Then(onFulfilled, onRejected Handler) *Promise {
	next := p.engine.newPromise()
	p.whenSettled(func() {
		handler := onFulfilled
		if p.state == Rejected {
			handler = onRejected
		}
		if handler == nil {
			next.settle(p.state, p.value)
			return
		}

		var result any
		err := p.engine.call(func() error {
			var herr error
			result, herr = handler(p.value)
			return herr
		})
		if err != nil {
			next.settle(Rejected, reasonOf(err))
			return
		}
		next.resolve(result)
	})
	return next
}

// Catch is Then(nil, onRejected).
func (p *Promise) Catch(onRejected Handler) *Promise {
	return p.Then(nil, onRejected)
}

// whenSettled schedules job for when p settles, or right away when it already has.
func (p *Promise) whenSettled(job Job) {
	if p.state == Pending {
		p.settledJobs = append(p.settledJobs, job)
		return
	}
	p.engine.queue.Enqueue(job)
}

// resolvingFunctions returns resolve and reject sharing one already-resolved flag, so
// only the first call among them has an effect.
func (p *Promise) resolvingFunctions() (resolve, reject func(any)) {
	done := false
	resolve = func(v any) {
		if done {
			return
		}
		done = true
		p.resolve(v)
	}
	reject = func(reason any) {
		if done {
			return
		}
		done = true
		p.settle(Rejected, reason)
	}
	return resolve, reject
}

// resolve runs the promise resolution procedure for v.
func (p *Promise) resolve(v any) {
	if p.state != Pending {
		return
	}
	switch t := v.(type) {
	case *Promise:
		if t == p {
			p.settle(Rejected, ErrChainingCycle)
			return
		}
		t.whenSettled(func() { p.settle(t.state, t.value) })

	case Thenable:
		resolve, reject := p.resolvingFunctions()
		p.engine.queue.Enqueue(func() {
			if err := p.engine.call(func() error { return t.Then(resolve, reject) }); err != nil {
				reject(reasonOf(err))
			}
		})

	default:
		p.settle(Fulfilled, v)
	}
}

// settle moves a pending promise to its final state, schedules its reactions and
// notifies dependent composites. It is a no-op once p has settled.
func (p *Promise) settle(state State, value any) {
	if p.state != Pending || state == Pending {
		return
	}
	p.state = state
	p.value = value

	jobs := p.settledJobs
	p.settledJobs = nil
	for _, job := range jobs {
		p.engine.queue.Enqueue(job)
	}

	for _, d := range p.dependents {
		d.evaluateGroup()
	}
	p.dependents = nil
}

// call runs fn, converting a panic into a *Rejection carrying the panic value.
func (e *Engine) call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("Recovered panic in promise callback.", zap.Any("panic", r))
			err = &Rejection{Reason: r}
		}
	}()
	return fn()
}
