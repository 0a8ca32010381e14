// internal/browser/jsbind/style.go
package jsbind

import (
	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
	"github.com/xkilldash9x/unitbrowser/internal/browser/style"
)

// styleObject is the script view of a declaration block. With inline set it writes
// through to the element's 'style' attribute; otherwise it is a live, read-only view of
// the element's computed style and silently ignores writes.
type styleObject struct {
	bridge  *DOMBridge
	inline  *style.Declaration
	element *html.Node
}

func (s *styleObject) computed() *style.ComputedStyle {
	return s.bridge.resolver.ComputedStyle(s.element)
}

var _ goja.DynamicObject = (*styleObject)(nil)

func (s *styleObject) Get(key string) goja.Value {
	vm := s.bridge.vm
	switch key {
	case "getPropertyValue":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(s.value(call.Argument(0).String()))
		})
	case "setProperty":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			s.set(call.Argument(0).String(), call.Argument(1).String())
			return goja.Undefined()
		})
	case "removeProperty":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			name := call.Argument(0).String()
			if s.inline == nil {
				return vm.ToValue(s.value(name))
			}
			old := s.inline.RemoveProperty(name)
			s.bridge.mutated()
			return vm.ToValue(old)
		})
	case "item":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			names := s.names()
			i := int(call.Argument(0).ToInteger())
			if i < 0 || i >= len(names) {
				return vm.ToValue("")
			}
			return vm.ToValue(names[i])
		})
	case "length":
		return vm.ToValue(len(s.names()))
	case "cssText":
		if s.inline != nil {
			return vm.ToValue(s.inline.CSSText())
		}
		return vm.ToValue(s.computed().Declaration().CSSText())
	case wrapperKey:
		return goja.Undefined()
	}
	return vm.ToValue(s.value(key))
}

func (s *styleObject) Set(key string, val goja.Value) bool {
	if s.inline == nil {
		return true
	}
	if key == "cssText" {
		s.inline.SetCSSText(val.String())
	} else {
		s.inline.SetProperty(key, val.String())
	}
	s.bridge.mutated()
	return true
}

func (s *styleObject) Has(key string) bool {
	switch key {
	case "getPropertyValue", "setProperty", "removeProperty", "item", "length", "cssText":
		return true
	}
	return s.value(key) != ""
}

func (s *styleObject) Delete(key string) bool {
	if s.inline != nil && s.inline.RemoveProperty(key) != "" {
		s.bridge.mutated()
	}
	return true
}

func (s *styleObject) Keys() []string {
	names := s.names()
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = css.CamelName(n)
	}
	return keys
}

func (s *styleObject) value(name string) string {
	if s.inline != nil {
		return s.inline.GetPropertyValue(name)
	}
	return s.computed().GetPropertyValue(name)
}

func (s *styleObject) set(name, value string) {
	if s.inline == nil {
		return
	}
	s.inline.SetProperty(name, value)
	s.bridge.mutated()
}

func (s *styleObject) names() []string {
	if s.inline != nil {
		return s.inline.Properties()
	}
	return s.computed().Properties()
}
