// internal/browser/jsexec/runtime.go
package jsexec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/unitbrowser/internal/browser/jsbind"
	"github.com/xkilldash9x/unitbrowser/internal/browser/promise"
)

// DefaultTimeout is the fallback execution timeout if the context has no deadline.
const DefaultTimeout = 30 * time.Second

var (
	// ErrPromiseRejected wraps the reason of a script result that settled as rejected.
	ErrPromiseRejected = errors.New("javascript promise rejected")
	// ErrClosed is returned once the runtime's event loop has been stopped.
	ErrClosed = errors.New("javascript runtime is closed")
)

// Options tunes a Runtime.
type Options struct {
	// Timeout bounds scripts whose context carries no deadline. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Runtime provides a persistent environment for executing JavaScript using Goja,
// integrated with the document via the DOMBridge. The VM is owned by an event loop
// goroutine; promise jobs and timers are scheduled on that same loop.
type Runtime struct {
	id      uuid.UUID
	logger  *zap.Logger
	loop    *eventloop.EventLoop
	queue   *LoopQueue
	engine  *promise.Engine
	bridge  *jsbind.DOMBridge
	timeout time.Duration

	// vm is only touched on the loop, except for Interrupt which is goroutine-safe.
	vm *goja.Runtime

	execMutex sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

// NewRuntime starts an event loop and binds the bridge's host objects into its VM.
// Close must be called to stop the loop.
func NewRuntime(logger *zap.Logger, bridge *jsbind.DOMBridge, opts Options) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bridge == nil {
		return nil, errors.New("jsexec: a DOM bridge is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	id := uuid.New()
	log := logger.Named("jsexec").With(zap.String("runtime_id", id.String()))
	loop := eventloop.NewEventLoop()
	queue := NewLoopQueue(loop, log)

	r := &Runtime{
		id:      id,
		logger:  log,
		loop:    loop,
		queue:   queue,
		engine:  promise.NewEngine(queue, log),
		bridge:  bridge,
		timeout: opts.Timeout,
	}

	loop.Start()
	bound := make(chan error, 1)
	if !loop.RunOnLoop(func(vm *goja.Runtime) {
		r.vm = vm
		bound <- bridge.Bind(vm, r.engine)
	}) {
		loop.Terminate()
		return nil, ErrClosed
	}
	if err := <-bound; err != nil {
		loop.Terminate()
		return nil, fmt.Errorf("failed to bind host objects: %w", err)
	}

	log.Debug("JavaScript runtime started.")
	return r, nil
}

// ID identifies the runtime in logs.
func (r *Runtime) ID() uuid.UUID {
	return r.id
}

// GetBridge returns the associated DOMBridge.
func (r *Runtime) GetBridge() *jsbind.DOMBridge {
	return r.bridge
}

// Close terminates the event loop. Pending timers and promise jobs are discarded.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		r.loop.Terminate()
		r.logger.Debug("JavaScript runtime stopped.")
	})
}

// outcome carries a result off the loop. Pending marks a promise still to settle.
type outcome struct {
	value   any
	err     error
	pending bool
}

// ExecuteScript runs a JavaScript snippet within the persistent VM environment.
// It handles context based cancellation, timeouts, and asynchronous Promises: a result
// that is a promise (host or native) is awaited and its settled value returned.
// Args can be passed if the script is structured as a function wrapper.
func (r *Runtime) ExecuteScript(ctx context.Context, script string, args []interface{}) (interface{}, error) {
	r.execMutex.Lock()
	defer r.execMutex.Unlock()
	if r.closed.Load() {
		return nil, ErrClosed
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// The first outcome is the synchronous result; a pending promise sends a second one.
	results := make(chan outcome, 2)
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-stopWatch:
		}
	}()

	if !r.loop.RunOnLoop(func(vm *goja.Runtime) {
		vm.ClearInterrupt()
		results <- r.execute(vm, script, args, results)
	}) {
		return nil, ErrClosed
	}

	var first outcome
	select {
	case first = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("javascript execution interrupted by context: %w", ctx.Err())
	}
	if first.err != nil {
		return nil, r.classify(ctx, first.err)
	}
	if !first.pending {
		return first.value, nil
	}

	select {
	case settled := <-results:
		return settled.value, settled.err
	case <-ctx.Done():
		return nil, fmt.Errorf("context done while waiting for promise: %w", ctx.Err())
	}
}

// execute runs on the loop. A promise result gets reactions that report its settlement
// on results.
func (r *Runtime) execute(vm *goja.Runtime, script string, args []interface{}, results chan<- outcome) outcome {
	var result goja.Value
	var err error
	if r.isFunctionWrapper(script) {
		result, err = r.executeFunctionWrapper(vm, script, args)
	} else {
		if len(args) > 0 {
			r.logger.Debug("Arguments provided to ExecuteScript in snippet mode are ignored.")
		}
		result, err = vm.RunString(script)
	}
	if err != nil {
		return outcome{err: err}
	}

	p, ok := r.bridge.AsPromise(result)
	if !ok {
		return outcome{value: r.bridge.Export(result)}
	}
	p.Then(func(v any) (any, error) {
		results <- outcome{value: r.bridge.Export(v)}
		return nil, nil
	}, func(reason any) (any, error) {
		results <- outcome{err: fmt.Errorf("%w: %s", ErrPromiseRejected, describe(reason))}
		return nil, nil
	})
	return outcome{pending: true}
}

func (r *Runtime) classify(ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("javascript execution interrupted by context: %w", ctx.Err())
	}
	var jsErr *goja.Exception
	if errors.As(err, &jsErr) {
		return fmt.Errorf("javascript exception: %s", jsErr.String())
	}
	return fmt.Errorf("javascript error: %w", err)
}

// describe renders a rejection reason; script errors keep their 'Name: message' form.
func describe(reason any) string {
	switch v := reason.(type) {
	case goja.Value:
		return v.String()
	case error:
		return v.Error()
	}
	return fmt.Sprint(reason)
}

// isFunctionWrapper uses heuristics to detect common function wrappers.
func (r *Runtime) isFunctionWrapper(script string) bool {
	s := strings.TrimSpace(script)
	if len(s) < 5 {
		return false
	}

	return strings.HasPrefix(s, "(function") || strings.HasPrefix(s, "(async function") ||
		strings.HasPrefix(s, "function") || strings.HasPrefix(s, "async function") ||
		strings.HasPrefix(s, "(()=>") || strings.HasPrefix(s, "(() =>") ||
		strings.HasPrefix(s, "(async (")
}

// executeFunctionWrapper evaluates the script and calls the resulting function. A
// wrapper that is invoked in place, such as an async IIFE, already evaluates to its
// result; that value is returned as in snippet mode.
func (r *Runtime) executeFunctionWrapper(vm *goja.Runtime, script string, args []interface{}) (goja.Value, error) {
	prog, err := goja.Compile("", script, false)
	if err != nil {
		return nil, fmt.Errorf("failed to compile function wrapper script: %w", err)
	}

	val, err := vm.RunProgram(prog)
	if err != nil {
		return nil, err
	}

	fn, ok := goja.AssertFunction(val)
	if !ok {
		if len(args) > 0 {
			r.logger.Debug("Script invoked its own wrapper; arguments are ignored.")
		}
		return val, nil
	}

	gojaArgs := make([]goja.Value, len(args))
	for i, arg := range args {
		gojaArgs[i] = vm.ToValue(arg)
	}

	return fn(vm.GlobalObject(), gojaArgs...)
}
