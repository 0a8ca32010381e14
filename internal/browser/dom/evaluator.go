// internal/browser/dom/evaluator.go
package dom

import (
	"fmt"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Evaluator runs a query string against a tree and returns the matches in document
// order.
type Evaluator interface {
	Evaluate(query string, root *html.Node) ([]*html.Node, error)
}

// XPathEvaluator evaluates XPath 1.0 expressions over x/net/html trees. Compiled
// expressions are optionally cached; it is safe for concurrent use.
type XPathEvaluator struct {
	cache    bool
	mu       sync.RWMutex
	compiled map[string]*xpath.Expr
}

// NewXPathEvaluator creates an evaluator. With cache set, each distinct expression is
// compiled once.
func NewXPathEvaluator(cache bool) *XPathEvaluator {
	return &XPathEvaluator{cache: cache, compiled: make(map[string]*xpath.Expr)}
}

// Evaluate compiles query and returns the nodes it selects with root as context. A
// panic raised by the xpath engine while evaluating is returned as an error.
func (e *XPathEvaluator) Evaluate(query string, root *html.Node) (nodes []*html.Node, err error) {
	if root == nil {
		return nil, nil
	}
	expr, err := e.compile(query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			nodes, err = nil, fmt.Errorf("xpath %q evaluation failed: %v", query, r)
		}
	}()
	return htmlquery.QuerySelectorAll(root, expr), nil
}

// Compile validates query without evaluating it.
func (e *XPathEvaluator) Compile(query string) error {
	_, err := e.compile(query)
	return err
}

func (e *XPathEvaluator) compile(query string) (*xpath.Expr, error) {
	if e.cache {
		e.mu.RLock()
		expr, ok := e.compiled[query]
		e.mu.RUnlock()
		if ok {
			return expr, nil
		}
	}

	expr, err := xpath.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", query, err)
	}

	if e.cache {
		e.mu.Lock()
		e.compiled[query] = expr
		e.mu.Unlock()
	}
	return expr, nil
}

// NodeSet is an unordered set of nodes, used for membership tests against a query
// result.
type NodeSet map[*html.Node]struct{}

// NewNodeSet builds a set from nodes.
func NewNodeSet(nodes []*html.Node) NodeSet {
	set := make(NodeSet, len(nodes))
	for _, n := range nodes {
		set[n] = struct{}{}
	}
	return set
}

// Contains reports whether n is in the set.
func (s NodeSet) Contains(n *html.Node) bool {
	_, ok := s[n]
	return ok
}
