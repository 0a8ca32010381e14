// internal/browser/jsbind/document.go
package jsbind

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/parser"
	"github.com/xkilldash9x/unitbrowser/internal/browser/stylesheet"
)

func (b *DOMBridge) newDocument() *goja.Object {
	d := b.vm.NewObject()
	root := func() *html.Node { return b.Document() }

	b.accessor(d, "documentElement", func() goja.Value { return b.wrapNode(dom.DocumentElement(root())) }, nil)
	b.accessor(d, "body", func() goja.Value { return b.wrapNode(dom.FindElement(root(), "body")) }, nil)
	b.accessor(d, "head", func() goja.Value { return b.wrapNode(dom.FindElement(root(), "head")) }, nil)
	b.accessor(d, "title", func() goja.Value {
		if t := dom.FindElement(root(), "title"); t != nil {
			return b.vm.ToValue(strings.TrimSpace(dom.TextContent(t)))
		}
		return b.vm.ToValue("")
	}, nil)

	d.Set("nodeType", 9)
	d.Set("nodeName", "#document")
	d.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return b.wrapNode(b.queryFirst(root(), call.Argument(0).String()))
	})
	d.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return b.wrapNodeList(b.queryAll(root(), call.Argument(0).String()))
	})
	d.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return b.wrapNode(dom.ElementByID(root(), call.Argument(0).String()))
	})
	d.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return b.wrapNodeList(dom.ElementsByTagName(root(), call.Argument(0).String()))
	})
	d.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return b.wrapNodeList(dom.ElementsByClassName(root(), call.Argument(0).String()))
	})
	d.Set("createElement", func(call goja.FunctionCall) goja.Value {
		tag := strings.ToLower(call.Argument(0).String())
		return b.wrapNode(&html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))})
	})
	d.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return b.wrapNode(&html.Node{Type: html.TextNode, Data: call.Argument(0).String()})
	})
	return d
}

// parseSelectors parses text or throws a SelectorError into the script.
func (b *DOMBridge) parseSelectors(text string) css.SelectorList {
	list, err := parser.ParseSelectors(text)
	if err != nil {
		b.throw(NewSelectorError(text, err))
	}
	return list
}

// queryAll returns the elements below root matching text, in document order. Groups
// whose selectors all translate are answered with XPath; anything else falls back to
// the compiled matcher.
func (b *DOMBridge) queryAll(root *html.Node, text string) []*html.Node {
	if root == nil {
		return nil
	}
	list := b.parseSelectors(text)

	matched := make(dom.NodeSet)
	for _, sel := range list {
		query, ok := stylesheet.Translate(sel)
		if !ok {
			return dom.Compile(list).QueryAll(root)
		}
		nodes, err := b.eval.Evaluate(query, documentOf(root))
		if err != nil {
			b.logger.Warn("XPath evaluation failed, using the compiled matcher.", zap.String("xpath", query), zap.Error(err))
			return dom.Compile(list).QueryAll(root)
		}
		for _, n := range nodes {
			matched[n] = struct{}{}
		}
	}

	var out []*html.Node
	for n := range dom.Descendants(root) {
		if matched.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

func (b *DOMBridge) queryFirst(root *html.Node, text string) *html.Node {
	if nodes := b.queryAll(root, text); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

func documentOf(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}
