// internal/browser/jsbind/element.go
package jsbind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/style"
)

// wrapNodeList converts nodes into a script array.
func (b *DOMBridge) wrapNodeList(nodes []*html.Node) goja.Value {
	wrapped := make([]any, len(nodes))
	for i, n := range nodes {
		wrapped[i] = b.wrapNode(n)
	}
	return b.vm.NewArray(wrapped...)
}

// wrapNode returns the script object for n, creating it on first use so that the same
// node always maps to the same object.
func (b *DOMBridge) wrapNode(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if obj, ok := b.elements[n]; ok {
		return obj
	}

	obj := b.vm.NewObject()
	b.hidden(obj, n)
	b.elements[n] = obj

	obj.Set("nodeType", nodeType(n))
	obj.Set("nodeName", nodeName(n))
	b.accessor(obj, "parentNode", func() goja.Value { return b.wrapNode(n.Parent) }, nil)
	b.accessor(obj, "firstChild", func() goja.Value { return b.wrapNode(n.FirstChild) }, nil)
	b.accessor(obj, "lastChild", func() goja.Value { return b.wrapNode(n.LastChild) }, nil)
	b.accessor(obj, "nextSibling", func() goja.Value { return b.wrapNode(n.NextSibling) }, nil)
	b.accessor(obj, "previousSibling", func() goja.Value { return b.wrapNode(n.PrevSibling) }, nil)
	b.accessor(obj, "childNodes", func() goja.Value {
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		return b.wrapNodeList(children)
	}, nil)
	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := b.mustNode(call.Argument(0), "appendChild")
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		n.AppendChild(child)
		b.mutated()
		return call.Argument(0)
	})
	obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		child := b.mustNode(call.Argument(0), "removeChild")
		if child.Parent != n {
			b.throw(errors.New("removeChild: the node to be removed is not a child of this node"))
		}
		n.RemoveChild(child)
		b.mutated()
		return call.Argument(0)
	})

	switch n.Type {
	case html.ElementNode:
		b.defineElement(obj, n)
	case html.TextNode, html.CommentNode:
		data := func() goja.Value { return b.vm.ToValue(n.Data) }
		setData := func(v goja.Value) { n.Data = v.String() }
		b.accessor(obj, "data", data, setData)
		b.accessor(obj, "nodeValue", data, setData)
		b.accessor(obj, "textContent", data, setData)
	}
	return obj
}

func (b *DOMBridge) defineElement(obj *goja.Object, n *html.Node) {
	obj.Set("tagName", strings.ToUpper(n.Data))
	attrAccessor := func(name string) {
		b.accessor(obj, name, func() goja.Value {
			v, _ := dom.Attr(n, name)
			return b.vm.ToValue(v)
		}, func(v goja.Value) {
			dom.SetAttr(n, name, v.String())
			b.mutated()
		})
	}
	attrAccessor("id")
	b.accessor(obj, "className", func() goja.Value {
		v, _ := dom.Attr(n, "class")
		return b.vm.ToValue(v)
	}, func(v goja.Value) {
		dom.SetAttr(n, "class", v.String())
		b.mutated()
	})

	b.accessor(obj, "textContent", func() goja.Value {
		return b.vm.ToValue(dom.TextContent(n))
	}, func(v goja.Value) {
		removeChildren(n)
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v.String()})
		b.mutated()
	})
	b.accessor(obj, "innerHTML", func() goja.Value {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&sb, c); err != nil {
				b.throw(fmt.Errorf("innerHTML: %w", err))
			}
		}
		return b.vm.ToValue(sb.String())
	}, func(v goja.Value) {
		nodes, err := html.ParseFragment(strings.NewReader(v.String()), n)
		if err != nil {
			b.throw(fmt.Errorf("failed to parse HTML: %w", err))
		}
		removeChildren(n)
		for _, c := range nodes {
			n.AppendChild(c)
		}
		b.mutated()
	})
	b.accessor(obj, "outerHTML", func() goja.Value {
		var sb strings.Builder
		if err := html.Render(&sb, n); err != nil {
			b.throw(fmt.Errorf("outerHTML: %w", err))
		}
		return b.vm.ToValue(sb.String())
	}, nil)
	b.accessor(obj, "children", func() goja.Value {
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				children = append(children, c)
			}
		}
		return b.wrapNodeList(children)
	}, nil)
	b.accessor(obj, "style", func() goja.Value {
		return b.vm.NewDynamicObject(&styleObject{bridge: b, inline: style.InlineStyle(n)})
	}, func(v goja.Value) {
		dom.SetAttr(n, "style", v.String())
		b.mutated()
	})

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := dom.Attr(n, call.Argument(0).String()); ok {
			return b.vm.ToValue(v)
		}
		return goja.Null()
	})
	obj.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		_, ok := dom.Attr(n, call.Argument(0).String())
		return b.vm.ToValue(ok)
	})
	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		dom.SetAttr(n, call.Argument(0).String(), call.Argument(1).String())
		b.mutated()
		return goja.Undefined()
	})
	obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		dom.RemoveAttr(n, call.Argument(0).String())
		b.mutated()
		return goja.Undefined()
	})
	obj.Set("matches", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(dom.Compile(b.parseSelectors(call.Argument(0).String())).Match(n))
	})
	obj.Set("closest", func(call goja.FunctionCall) goja.Value {
		m := dom.Compile(b.parseSelectors(call.Argument(0).String()))
		for p := n; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && m.Match(p) {
				return b.wrapNode(p)
			}
		}
		return goja.Null()
	})
	obj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return b.wrapNode(b.queryFirst(n, call.Argument(0).String()))
	})
	obj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return b.wrapNodeList(b.queryAll(n, call.Argument(0).String()))
	})
	obj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return b.wrapNodeList(dom.ElementsByTagName(n, call.Argument(0).String()))
	})
	obj.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return b.wrapNodeList(dom.ElementsByClassName(n, call.Argument(0).String()))
	})
}

// unwrapNode returns the node behind a wrapped script object.
func (b *DOMBridge) unwrapNode(v goja.Value) (*html.Node, error) {
	if v == nil || goja.IsNull(v) || goja.IsUndefined(v) {
		return nil, errors.New("node is null or undefined")
	}
	target, ok := b.unwrap(v)
	if !ok {
		return nil, errors.New("value is not a recognized DOM node wrapper")
	}
	n, ok := target.(*html.Node)
	if !ok {
		return nil, errors.New("value is not a DOM node")
	}
	return n, nil
}

func (b *DOMBridge) mustNode(v goja.Value, method string) *html.Node {
	n, err := b.unwrapNode(v)
	if err != nil {
		b.throw(fmt.Errorf("%s: invalid argument: %w", method, err))
	}
	return n
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func nodeType(n *html.Node) int {
	switch n.Type {
	case html.ElementNode:
		return 1
	case html.TextNode:
		return 3
	case html.CommentNode:
		return 8
	case html.DocumentNode:
		return 9
	case html.DoctypeNode:
		return 10
	}
	return 0
}

func nodeName(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return strings.ToUpper(n.Data)
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	}
	return n.Data
}
