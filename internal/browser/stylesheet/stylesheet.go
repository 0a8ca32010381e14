// internal/browser/stylesheet/stylesheet.go
package stylesheet

import (
	"iter"
	"strconv"
	"strings"

	dcss "github.com/aymerick/douceur/css"
	dparser "github.com/aymerick/douceur/parser"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
	"github.com/xkilldash9x/unitbrowser/internal/browser/parser"
)

// StyleRule is one qualified rule: a selector group and the properties it declares.
type StyleRule struct {
	// SelectorText is the prelude as written. Selectors is empty when it failed to parse.
	SelectorText string
	Selectors    css.SelectorList
	Properties   *css.PropertyMap
}

// Media describes the rendering surface @media rules are evaluated against.
type Media struct {
	Type  string
	Width int
}

// ScreenMedia returns a screen of the given width in CSS pixels.
func ScreenMedia(width int) Media {
	return Media{Type: "screen", Width: width}
}

// Stylesheet is an immutable, parsed list of style rules in source order.
type Stylesheet struct {
	ID    string
	rules []StyleRule
}

// Parse builds a Stylesheet from CSS text. Qualified rules are kept in source order,
// including those nested in @media blocks that apply to media. A text that cannot be
// parsed yields an empty stylesheet.
func Parse(text string, media Media, logger *zap.Logger) *Stylesheet {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("stylesheet")

	sheet := &Stylesheet{ID: uuid.NewString()}
	parsed, err := dparser.Parse(text)
	if err != nil {
		log.Warn("Failed to parse stylesheet, treating it as empty.", zap.String("sheet_id", sheet.ID), zap.Error(err))
		return sheet
	}

	sheet.rules = collectRules(parsed.Rules, media, log)
	log.Debug("Parsed stylesheet.", zap.String("sheet_id", sheet.ID), zap.Int("rules", len(sheet.rules)))
	return sheet
}

// FromRules builds a Stylesheet directly from rules, mostly for programmatic use.
func FromRules(rules ...StyleRule) *Stylesheet {
	return &Stylesheet{ID: uuid.NewString(), rules: rules}
}

// Rules yields the style rules in source order.
func (s *Stylesheet) Rules() iter.Seq[StyleRule] {
	return func(yield func(StyleRule) bool) {
		if s == nil {
			return
		}
		for _, r := range s.rules {
			if !yield(r) {
				return
			}
		}
	}
}

// Len returns the number of style rules.
func (s *Stylesheet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

func collectRules(rules []*dcss.Rule, media Media, log *zap.Logger) []StyleRule {
	var out []StyleRule
	for _, r := range rules {
		switch r.Kind {
		case dcss.QualifiedRule:
			out = append(out, newStyleRule(r, log))
		case dcss.AtRule:
			if r.Name != "@media" {
				log.Debug("Skipping at-rule.", zap.String("name", r.Name))
				continue
			}
			if !MediaMatches(r.Prelude, media) {
				log.Debug("Skipping @media block.", zap.String("media", r.Prelude))
				continue
			}
			out = append(out, collectRules(r.Rules, media, log)...)
		}
	}
	return out
}

func newStyleRule(r *dcss.Rule, log *zap.Logger) StyleRule {
	selectors, err := parser.ParseSelectors(r.Prelude)
	if err != nil {
		log.Debug("Malformed selector, rule will not apply.", zap.String("selector", r.Prelude), zap.Error(err))
	}

	props := css.NewPropertyMap()
	for _, d := range r.Declarations {
		props.Set(d.Property, d.Value)
	}
	return StyleRule{SelectorText: r.Prelude, Selectors: selectors, Properties: props}
}

// MediaMatches evaluates a comma-separated media query list. Media types 'all' and the
// media's own type match; 'min-width' and 'max-width' features are compared in pixels.
// Any other feature makes its query fail.
func MediaMatches(queryList string, media Media) bool {
	queryList = strings.TrimSpace(queryList)
	if queryList == "" {
		return true
	}
	for _, query := range strings.Split(queryList, ",") {
		if mediaQueryMatches(strings.ToLower(strings.TrimSpace(query)), media) {
			return true
		}
	}
	return false
}

func mediaQueryMatches(query string, media Media) bool {
	negate := false
	if rest, ok := strings.CutPrefix(query, "not "); ok {
		negate = true
		query = rest
	}
	query = strings.TrimPrefix(query, "only ")

	matched := true
	for i, part := range strings.Split(query, " and ") {
		part = strings.TrimSpace(part)
		if i == 0 && !strings.HasPrefix(part, "(") {
			if part != "all" && part != media.Type {
				matched = false
			}
			continue
		}
		if !mediaFeatureMatches(part, media) {
			matched = false
		}
	}
	return matched != negate
}

func mediaFeatureMatches(feature string, media Media) bool {
	feature = strings.TrimSuffix(strings.TrimPrefix(feature, "("), ")")
	name, value, ok := strings.Cut(feature, ":")
	if !ok {
		return false
	}
	px, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(value), "px"), 64)
	if err != nil {
		return false
	}
	switch strings.TrimSpace(name) {
	case "min-width":
		return float64(media.Width) >= px
	case "max-width":
		return float64(media.Width) <= px
	}
	return false
}
