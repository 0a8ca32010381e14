// internal/browser/jsbind/bridge.go
package jsbind

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/promise"
	"github.com/xkilldash9x/unitbrowser/internal/browser/style"
)

// wrapperKey is the hidden property linking a script object to its Go value.
const wrapperKey = "__go_wrapper__"

// DOMBridge exposes a parsed document to a goja runtime: the 'window' and 'document'
// globals, element wrappers, computed styles, a console routed to zap, and a Promise
// constructor backed by a promise.Engine.
type DOMBridge struct {
	logger   *zap.Logger
	resolver *style.Resolver
	eval     *dom.XPathEvaluator

	// Set by Bind; all access afterwards happens on the runtime's goroutine.
	vm       *goja.Runtime
	engine   *promise.Engine
	elements map[*html.Node]*goja.Object
	promises map[*promise.Promise]*goja.Object
	proto    *goja.Object

	mu  sync.RWMutex
	doc *html.Node
}

// NewDOMBridge creates a bridge for doc. Computed styles are served by resolver, which
// must style the same document.
func NewDOMBridge(logger *zap.Logger, doc *html.Node, resolver *style.Resolver) *DOMBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = style.NewResolver(doc, style.Options{}, logger)
	}
	return &DOMBridge{
		logger:   logger.Named("dom_bridge"),
		resolver: resolver,
		eval:     dom.NewXPathEvaluator(true),
		doc:      doc,
	}
}

// Document returns the document being scripted.
func (b *DOMBridge) Document() *html.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc
}

// Resolver returns the computed-style resolver.
func (b *DOMBridge) Resolver() *style.Resolver {
	return b.resolver
}

// Bind installs the host objects into vm. Promise reactions are scheduled by engine.
func (b *DOMBridge) Bind(vm *goja.Runtime, engine *promise.Engine) error {
	b.vm = vm
	b.engine = engine
	b.elements = make(map[*html.Node]*goja.Object)
	b.promises = make(map[*promise.Promise]*goja.Object)

	global := vm.GlobalObject()
	for name, value := range map[string]any{
		"window":           global,
		"self":             global,
		"document":         b.newDocument(),
		"console":          b.newConsole(),
		"getComputedStyle": b.getComputedStyle,
		"alert":            b.alert,
	} {
		if err := global.Set(name, value); err != nil {
			return fmt.Errorf("failed to set global %q: %w", name, err)
		}
	}

	if err := b.installPromise(global); err != nil {
		return err
	}
	b.logger.Debug("Host objects installed.")
	return nil
}

// mutated records a change to the document so later style lookups see it.
func (b *DOMBridge) mutated() {
	b.resolver.Invalidate()
}

// throw raises err as a script exception.
func (b *DOMBridge) throw(err error) {
	panic(b.vm.NewGoError(err))
}

func (b *DOMBridge) alert(call goja.FunctionCall) goja.Value {
	b.logger.Info("[JS Alert]", zap.String("message", call.Argument(0).String()))
	return goja.Undefined()
}

func (b *DOMBridge) getComputedStyle(call goja.FunctionCall) goja.Value {
	node, err := b.unwrapNode(call.Argument(0))
	if err != nil || node.Type != html.ElementNode {
		b.throw(fmt.Errorf("getComputedStyle: parameter 1 is not of type 'Element'"))
	}
	return b.vm.NewDynamicObject(&styleObject{bridge: b, element: node})
}

// newConsole routes console output to the bridge's logger.
func (b *DOMBridge) newConsole() *goja.Object {
	console := b.vm.NewObject()
	logFunc := func(level zapcore.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = b.stringify(arg)
			}
			b.logger.Log(level, "[JS Console]", zap.String("message", strings.Join(args, " ")))
			return goja.Undefined()
		}
	}

	console.Set("log", logFunc(zap.InfoLevel))
	console.Set("info", logFunc(zap.InfoLevel))
	console.Set("warn", logFunc(zap.WarnLevel))
	console.Set("error", logFunc(zap.ErrorLevel))
	console.Set("debug", logFunc(zap.DebugLevel))
	return console
}

// stringify renders plain objects and arrays as JSON and everything else with
// ToString.
func (b *DOMBridge) stringify(v goja.Value) string {
	obj, ok := v.(*goja.Object)
	if !ok || obj.Get(wrapperKey) != nil {
		return v.String()
	}
	if _, callable := goja.AssertFunction(obj); callable {
		return v.String()
	}
	stringifyFn, ok := goja.AssertFunction(b.vm.Get("JSON").ToObject(b.vm).Get("stringify"))
	if !ok {
		return v.String()
	}
	out, err := stringifyFn(goja.Undefined(), v)
	if err != nil || goja.IsUndefined(out) {
		return v.String()
	}
	return out.String()
}

// hidden attaches a non-enumerable back-reference to a Go value.
func (b *DOMBridge) hidden(obj *goja.Object, target any) {
	if err := obj.DefineDataProperty(wrapperKey, b.vm.ToValue(target), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE); err != nil {
		b.logger.Error("Failed to attach wrapper reference", zap.Error(err))
	}
}

// unwrap returns the Go value behind a host object.
func (b *DOMBridge) unwrap(v goja.Value) (any, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	ref := obj.Get(wrapperKey)
	if ref == nil || goja.IsUndefined(ref) {
		return nil, false
	}
	return ref.Export(), true
}

// accessor defines a getter and, when set is non-nil, a setter.
func (b *DOMBridge) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := b.vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	setter := goja.Undefined()
	if set != nil {
		setter = b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	if err := obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
		b.logger.Error("Failed to define accessor", zap.String("property", name), zap.Error(err))
	}
}
