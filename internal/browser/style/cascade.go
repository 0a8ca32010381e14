// internal/browser/style/cascade.go
package style

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/stylesheet"
)

type queryKey struct {
	root  *html.Node
	query string
}

// CascadeApplier writes the declarations of matching stylesheet rules into computed
// styles. Membership is decided by translating each selector to XPath and evaluating
// it against the whole document; selectors without a translation are skipped. Rules
// are applied in source order with no specificity ranking, so the last matching rule
// wins.
type CascadeApplier struct {
	translator *stylesheet.Translator
	evaluator  dom.Evaluator
	logger     *zap.Logger

	cacheResults bool
	mu           sync.Mutex
	results      map[queryKey]dom.NodeSet
}

// NewCascadeApplier creates an applier. With cacheResults set, the node set of each
// query is computed once per document until Reset is called.
func NewCascadeApplier(translator *stylesheet.Translator, evaluator dom.Evaluator, logger *zap.Logger, cacheResults bool) *CascadeApplier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if translator == nil {
		translator = stylesheet.NewTranslator(logger, false)
	}
	if evaluator == nil {
		evaluator = dom.NewXPathEvaluator(true)
	}
	return &CascadeApplier{
		translator:   translator,
		evaluator:    evaluator,
		logger:       logger.Named("cascade"),
		cacheResults: cacheResults,
		results:      make(map[queryKey]dom.NodeSet),
	}
}

// Apply merges every rule of sheet that matches the style's element into its
// overrides. It returns the number of rules applied.
func (a *CascadeApplier) Apply(style *ComputedStyle, sheet *stylesheet.Stylesheet) int {
	el := style.Element()
	if el == nil || el.Type != html.ElementNode {
		return 0
	}
	root := documentRoot(el)

	applied := 0
	for rule := range sheet.Rules() {
		if !a.ruleMatches(rule, el, root) {
			continue
		}
		for k, v := range rule.Properties.All() {
			style.SetOverride(k, v)
		}
		applied++
	}
	return applied
}

// ruleMatches tries each selector of the group independently, so one untranslatable
// selector does not disable the others.
func (a *CascadeApplier) ruleMatches(rule stylesheet.StyleRule, el, root *html.Node) bool {
	for _, sel := range rule.Selectors {
		query, ok := a.translator.Translate(sel)
		if !ok {
			continue
		}
		set, err := a.nodeSet(query, root)
		if err != nil {
			a.logger.Warn("Failed to evaluate selector query, skipping.",
				zap.String("selector", rule.SelectorText),
				zap.String("xpath", query),
				zap.Error(err))
			continue
		}
		if set.Contains(el) {
			return true
		}
	}
	return false
}

func (a *CascadeApplier) nodeSet(query string, root *html.Node) (dom.NodeSet, error) {
	key := queryKey{root: root, query: query}
	if a.cacheResults {
		a.mu.Lock()
		set, ok := a.results[key]
		a.mu.Unlock()
		if ok {
			return set, nil
		}
	}

	nodes, err := a.evaluator.Evaluate(query, root)
	if err != nil {
		return nil, err
	}
	set := dom.NewNodeSet(nodes)

	if a.cacheResults {
		a.mu.Lock()
		a.results[key] = set
		a.mu.Unlock()
	}
	return set, nil
}

// Reset discards cached query results, e.g. after the document changed.
func (a *CascadeApplier) Reset() {
	a.mu.Lock()
	a.results = make(map[queryKey]dom.NodeSet)
	a.mu.Unlock()
}

func documentRoot(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}
