// internal/browser/style/resolver.go
package style

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/stylesheet"
)

// Options tunes a Resolver.
type Options struct {
	ViewportWidth       int
	CacheQueries        bool
	LogSkippedSelectors bool
}

// Resolver owns the computed styles of one document. Stylesheets are collected from
// the document's <style> elements on first use; computed styles are created lazily
// and kept until Invalidate.
type Resolver struct {
	doc     *html.Node
	opts    Options
	logger  *zap.Logger
	applier *CascadeApplier

	mu        sync.Mutex
	collected bool
	sheets    []*stylesheet.Stylesheet
	extra     []*stylesheet.Stylesheet
	styles    map[*html.Node]*ComputedStyle
}

// NewResolver creates a Resolver for doc.
func NewResolver(doc *html.Node, opts Options, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	log := logger.Named("style")
	translator := stylesheet.NewTranslator(log, opts.LogSkippedSelectors)
	return &Resolver{
		doc:     doc,
		opts:    opts,
		logger:  log,
		applier: NewCascadeApplier(translator, dom.NewXPathEvaluator(true), log, opts.CacheQueries),
		styles:  make(map[*html.Node]*ComputedStyle),
	}
}

// Document returns the document being styled.
func (r *Resolver) Document() *html.Node {
	return r.doc
}

// AddStylesheet appends a sheet after the document's own sheets and drops computed
// styles so the next lookup sees it.
func (r *Resolver) AddStylesheet(sheet *stylesheet.Stylesheet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extra = append(r.extra, sheet)
	r.styles = make(map[*html.Node]*ComputedStyle)
}

// Stylesheets returns the sheets applied by the cascade, in order.
func (r *Resolver) Stylesheets() []*stylesheet.Stylesheet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stylesheetsLocked()
}

func (r *Resolver) stylesheetsLocked() []*stylesheet.Stylesheet {
	if !r.collected {
		r.sheets = r.collect()
		r.collected = true
	}
	out := make([]*stylesheet.Stylesheet, 0, len(r.sheets)+len(r.extra))
	out = append(out, r.sheets...)
	return append(out, r.extra...)
}

func (r *Resolver) collect() []*stylesheet.Stylesheet {
	media := stylesheet.ScreenMedia(r.opts.ViewportWidth)
	var sheets []*stylesheet.Stylesheet
	for n := range dom.Elements(r.doc) {
		if n.Data != "style" {
			continue
		}
		if t, ok := dom.Attr(n, "type"); ok && t != "" && !strings.EqualFold(t, "text/css") {
			continue
		}
		if m, ok := dom.Attr(n, "media"); ok && !stylesheet.MediaMatches(m, media) {
			r.logger.Debug("Skipping <style> element for other media.", zap.String("media", m))
			continue
		}
		sheets = append(sheets, stylesheet.Parse(dom.TextContent(n), media, r.logger))
	}
	r.logger.Debug("Collected document stylesheets.", zap.Int("count", len(sheets)))
	return sheets
}

// ComputedStyle returns the computed style of el, or nil when el is not an element.
func (r *Resolver) ComputedStyle(el *html.Node) *ComputedStyle {
	if el == nil || el.Type != html.ElementNode {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cs, ok := r.styles[el]; ok {
		return cs
	}

	cs := NewComputedStyle(el, r.opts.ViewportWidth)
	for _, sheet := range r.stylesheetsLocked() {
		r.applier.Apply(cs, sheet)
	}
	r.styles[el] = cs
	return cs
}

// Invalidate forgets computed styles, collected stylesheets and cached query results.
// Call it after the document or an inline style changed.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collected = false
	r.sheets = nil
	r.styles = make(map[*html.Node]*ComputedStyle)
	r.applier.Reset()
}
