// internal/browser/jsbind/promise.go
package jsbind

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"

	"github.com/dop251/goja"

	"github.com/xkilldash9x/unitbrowser/internal/browser/promise"
)

// installPromise replaces the global Promise with a constructor backed by the bridge's
// promise.Engine, so reactions are scheduled on the engine's queue.
func (b *DOMBridge) installPromise(global *goja.Object) error {
	ctor := b.vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		executor, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			b.throw(errors.New("Promise resolver is not a function"))
		}
		p := b.engine.New(func(resolve, reject func(any)) error {
			_, err := executor(goja.Undefined(), b.settler(resolve, true), b.settler(reject, false))
			return scriptError(err)
		})
		if obj, ok := b.promises[p]; ok {
			return obj
		}
		b.hidden(call.This, p)
		b.promises[p] = call.This
		return call.This
	}).(*goja.Object)

	proto := ctor.Get("prototype").ToObject(b.vm)
	b.proto = proto

	proto.Set("then", func(call goja.FunctionCall) goja.Value {
		p := b.thisPromise(call.This, "then")
		return b.wrapPromise(p.Then(b.handler(call.Argument(0)), b.handler(call.Argument(1))))
	})
	proto.Set("catch", func(call goja.FunctionCall) goja.Value {
		p := b.thisPromise(call.This, "catch")
		return b.wrapPromise(p.Catch(b.handler(call.Argument(0))))
	})
	proto.Set("finally", func(call goja.FunctionCall) goja.Value {
		p := b.thisPromise(call.This, "finally")
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return b.wrapPromise(p.Then(nil, nil))
		}
		return b.wrapPromise(p.Then(func(v any) (any, error) {
			if _, err := fn(goja.Undefined()); err != nil {
				return nil, scriptError(err)
			}
			return v, nil
		}, func(reason any) (any, error) {
			if _, err := fn(goja.Undefined()); err != nil {
				return nil, scriptError(err)
			}
			return nil, promise.Reject(reason)
		}))
	})

	ctor.Set("resolve", func(call goja.FunctionCall) goja.Value {
		return b.wrapPromise(b.engine.Resolve(b.toGo(call.Argument(0))))
	})
	ctor.Set("reject", func(call goja.FunctionCall) goja.Value {
		return b.wrapPromise(b.engine.Reject(call.Argument(0)))
	})
	ctor.Set("all", func(call goja.FunctionCall) goja.Value {
		items, reason := b.iterate(call.Argument(0), "all")
		if reason != nil {
			return b.wrapPromise(b.engine.Reject(reason))
		}
		return b.wrapPromise(b.engine.All(items))
	})
	ctor.Set("race", func(call goja.FunctionCall) goja.Value {
		items, reason := b.iterate(call.Argument(0), "race")
		if reason != nil {
			return b.wrapPromise(b.engine.Reject(reason))
		}
		return b.wrapPromise(b.engine.Race(items))
	})

	if err := global.Set("Promise", ctor); err != nil {
		return fmt.Errorf("failed to install Promise: %w", err)
	}
	return nil
}

// wrapPromise returns the script object for p, creating it on first use.
func (b *DOMBridge) wrapPromise(p *promise.Promise) *goja.Object {
	if obj, ok := b.promises[p]; ok {
		return obj
	}
	obj := b.vm.NewObject()
	if err := obj.SetPrototype(b.proto); err != nil {
		b.throw(err)
	}
	b.hidden(obj, p)
	b.promises[p] = obj
	return obj
}

func (b *DOMBridge) thisPromise(this goja.Value, method string) *promise.Promise {
	if target, ok := b.unwrap(this); ok {
		if p, ok := target.(*promise.Promise); ok {
			return p
		}
	}
	b.throw(fmt.Errorf("Promise.prototype.%s called on incompatible receiver", method))
	return nil
}

// AsPromise returns the engine promise behind v. Host promises are returned as-is and
// foreign thenables (such as the result of an async function) are adopted. Any other
// value reports false.
func (b *DOMBridge) AsPromise(v goja.Value) (*promise.Promise, bool) {
	switch g := b.toGo(v).(type) {
	case *promise.Promise:
		return g, true
	case *jsThenable:
		return b.engine.Resolve(g), true
	}
	return nil, false
}

// Export converts a settled promise value into plain Go data.
func (b *DOMBridge) Export(v any) any {
	switch t := v.(type) {
	case goja.Value:
		if target, ok := b.unwrap(t); ok {
			if p, ok := target.(*promise.Promise); ok {
				return b.Export(p)
			}
		}
		return t.Export()
	case *promise.Promise:
		return fmt.Sprintf("[Promise %s]", t.State())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = b.Export(e)
		}
		return out
	}
	return v
}

// toGo converts a script value for the engine: host promises unwrap to their
// *promise.Promise and objects with a callable 'then' become thenables.
func (b *DOMBridge) toGo(v goja.Value) any {
	if target, ok := b.unwrap(v); ok {
		if p, ok := target.(*promise.Promise); ok {
			return p
		}
	}
	if obj, ok := v.(*goja.Object); ok {
		if then, ok := goja.AssertFunction(obj.Get("then")); ok {
			return &jsThenable{bridge: b, obj: obj, then: then}
		}
	}
	return v
}

// toJS converts an engine value back into the runtime.
func (b *DOMBridge) toJS(v any) goja.Value {
	switch t := v.(type) {
	case nil:
		return goja.Undefined()
	case goja.Value:
		return t
	case *promise.Promise:
		return b.wrapPromise(t)
	case []any:
		items := make([]any, len(t))
		for i, e := range t {
			items[i] = b.toJS(e)
		}
		return b.vm.NewArray(items...)
	case error:
		var exc *goja.Exception
		if errors.As(t, &exc) {
			return exc.Value()
		}
		return b.vm.NewGoError(t)
	}
	return b.vm.ToValue(v)
}

// handler adapts a script callback into a promise.Handler. Non-callables yield nil so
// the engine passes the value through.
func (b *DOMBridge) handler(v goja.Value) promise.Handler {
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil
	}
	return func(value any) (any, error) {
		res, err := fn(goja.Undefined(), b.toJS(value))
		if err != nil {
			return nil, scriptError(err)
		}
		return b.toGo(res), nil
	}
}

// settler exposes a resolving function to script code. Resolution values are converted
// so host promises and thenables are adopted; rejection reasons are kept opaque.
func (b *DOMBridge) settler(fn func(any), resolve bool) goja.Value {
	return b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if resolve {
			fn(b.toGo(call.Argument(0)))
		} else {
			fn(call.Argument(0))
		}
		return goja.Undefined()
	})
}

// iterate reads an iterable through Array.from. A non-iterable argument, or an
// iterator that throws, yields the rejection reason instead.
func (b *DOMBridge) iterate(v goja.Value, method string) (iter.Seq[any], goja.Value) {
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, b.vm.NewTypeError("Promise.%s: %s is not iterable", method, v.String())
	}
	if _, ok := goja.AssertFunction(v.ToObject(b.vm).GetSymbol(goja.SymIterator)); !ok {
		return nil, b.vm.NewTypeError("Promise.%s: %s is not iterable", method, v.String())
	}

	from, ok := goja.AssertFunction(b.vm.Get("Array").ToObject(b.vm).Get("from"))
	if !ok {
		b.throw(errors.New("Array.from is not available"))
	}
	arr, err := from(goja.Undefined(), v)
	if err != nil {
		var exc *goja.Exception
		if errors.As(err, &exc) {
			return nil, exc.Value()
		}
		return nil, b.vm.NewGoError(err)
	}

	obj := arr.ToObject(b.vm)
	n := int(obj.Get("length").ToInteger())
	items := make([]any, n)
	for i := range n {
		items[i] = b.toGo(obj.Get(strconv.Itoa(i)))
	}
	return slices.Values(items), nil
}

// scriptError turns a thrown script value into a rejection carrying that value.
func scriptError(err error) error {
	if err == nil {
		return nil
	}
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return promise.Reject(exc.Value())
	}
	return err
}

// jsThenable lets the engine adopt a script object with a callable 'then'.
type jsThenable struct {
	bridge *DOMBridge
	obj    *goja.Object
	then   goja.Callable
}

func (t *jsThenable) Then(resolve, reject func(any)) error {
	_, err := t.then(t.obj, t.bridge.settler(resolve, true), t.bridge.settler(reject, false))
	return scriptError(err)
}
