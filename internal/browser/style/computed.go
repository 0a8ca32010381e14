// internal/browser/style/computed.go
package style

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
)

// DefaultViewportWidth is the width, in CSS pixels, reported for block elements without
// an explicit width.
const DefaultViewportWidth = 1256

// ComputedStyle is the resolved style of one element. It combines a snapshot of the
// element's inline declarations with the overrides written by a CascadeApplier. The
// overrides live in their own table and never reach the element's attributes.
type ComputedStyle struct {
	element       *html.Node
	inline        *css.PropertyMap
	overrides     *css.PropertyMap
	viewportWidth int
}

// NewComputedStyle snapshots el's inline style. A non-positive viewportWidth selects
// DefaultViewportWidth.
func NewComputedStyle(el *html.Node, viewportWidth int) *ComputedStyle {
	if viewportWidth <= 0 {
		viewportWidth = DefaultViewportWidth
	}
	inline := css.NewPropertyMap()
	for k, v := range parseInline(el).All() {
		setExpanded(inline, k, v)
	}
	return &ComputedStyle{
		element:       el,
		inline:        inline,
		overrides:     css.NewPropertyMap(),
		viewportWidth: viewportWidth,
	}
}

// Element returns the element this style belongs to.
func (s *ComputedStyle) Element() *html.Node {
	return s.element
}

// SetOverride records a cascaded value, expanding shorthands. Later writes win.
func (s *ComputedStyle) SetOverride(name, value string) {
	setExpanded(s.overrides, name, value)
}

// ClearOverrides drops every cascaded value.
func (s *ComputedStyle) ClearOverrides() {
	s.overrides = css.NewPropertyMap()
}

// Lookup returns the specified value of name: the inline declaration when present,
// otherwise the cascaded override.
func (s *ComputedStyle) Lookup(name string) (string, bool) {
	if v, ok := s.inline.Get(name); ok && v != "" {
		return v, true
	}
	if v, ok := s.overrides.Get(name); ok && v != "" {
		return v, true
	}
	return "", false
}

// GetPropertyValue returns the computed value of name. Unset properties report their
// default, or "" when none is defined.
func (s *ComputedStyle) GetPropertyValue(name string) string {
	key := css.CanonicalName(name)
	if key == "width" {
		return s.Width()
	}
	if v, ok := s.Lookup(key); ok {
		if isColorProperty(key) && v != "transparent" {
			return NormalizeColor(v)
		}
		return v
	}
	v, _ := Default(key)
	return v
}

// Get is GetPropertyValue with a fallback for properties that have no default.
func (s *ComputedStyle) Get(name, fallback string) string {
	if v := s.GetPropertyValue(name); v != "" {
		return v
	}
	return fallback
}

// Properties returns, in sorted order, every property that has a specified value or a
// default.
func (s *ComputedStyle) Properties() []string {
	names := DefaultedProperties()
	names = append(names, "width")
	names = append(names, s.inline.Names()...)
	names = append(names, s.overrides.Names()...)
	slices.Sort(names)
	return slices.Compact(names)
}

// Map returns every property from Properties with its computed value.
func (s *ComputedStyle) Map() map[string]string {
	out := make(map[string]string)
	for _, name := range s.Properties() {
		out[name] = s.GetPropertyValue(name)
	}
	return out
}

// Declaration returns a read-only declaration over the specified values.
func (s *ComputedStyle) Declaration() *Declaration {
	props := s.overrides.Clone()
	props.Merge(s.inline)
	return readOnly(props)
}

// Width has a default that depends on 'display': 'auto' for elements that are not
// rendered, the viewport width otherwise.
func (s *ComputedStyle) Width() string {
	if v, ok := s.Lookup("width"); ok {
		return v
	}
	if s.Display() == "none" {
		return "auto"
	}
	return strconv.Itoa(s.viewportWidth) + "px"
}

func (s *ComputedStyle) Display() string         { return s.GetPropertyValue("display") }
func (s *ComputedStyle) Position() string        { return s.GetPropertyValue("position") }
func (s *ComputedStyle) Visibility() string      { return s.GetPropertyValue("visibility") }
func (s *ComputedStyle) Cursor() string          { return s.GetPropertyValue("cursor") }
func (s *ComputedStyle) Color() string           { return s.GetPropertyValue("color") }
func (s *ComputedStyle) BackgroundColor() string { return s.GetPropertyValue("background-color") }
func (s *ComputedStyle) Height() string          { return s.GetPropertyValue("height") }
func (s *ComputedStyle) Float() string           { return s.GetPropertyValue("float") }
func (s *ComputedStyle) ZIndex() string          { return s.GetPropertyValue("z-index") }
func (s *ComputedStyle) Opacity() string         { return s.GetPropertyValue("opacity") }
func (s *ComputedStyle) FontSize() string        { return s.GetPropertyValue("font-size") }
func (s *ComputedStyle) FontFamily() string      { return s.GetPropertyValue("font-family") }
func (s *ComputedStyle) FontWeight() string      { return s.GetPropertyValue("font-weight") }
func (s *ComputedStyle) Overflow() string        { return s.GetPropertyValue("overflow") }
func (s *ComputedStyle) TextAlign() string       { return s.GetPropertyValue("text-align") }

func (s *ComputedStyle) BorderBottomColor() string { return s.GetPropertyValue("border-bottom-color") }
func (s *ComputedStyle) BorderTopColor() string    { return s.GetPropertyValue("border-top-color") }
func (s *ComputedStyle) BorderLeftColor() string   { return s.GetPropertyValue("border-left-color") }
func (s *ComputedStyle) BorderRightColor() string  { return s.GetPropertyValue("border-right-color") }

func (s *ComputedStyle) MarginTop() string    { return s.GetPropertyValue("margin-top") }
func (s *ComputedStyle) MarginRight() string  { return s.GetPropertyValue("margin-right") }
func (s *ComputedStyle) MarginBottom() string { return s.GetPropertyValue("margin-bottom") }
func (s *ComputedStyle) MarginLeft() string   { return s.GetPropertyValue("margin-left") }

func (s *ComputedStyle) PaddingTop() string    { return s.GetPropertyValue("padding-top") }
func (s *ComputedStyle) PaddingRight() string  { return s.GetPropertyValue("padding-right") }
func (s *ComputedStyle) PaddingBottom() string { return s.GetPropertyValue("padding-bottom") }
func (s *ComputedStyle) PaddingLeft() string   { return s.GetPropertyValue("padding-left") }

// IsVisible reports whether the element takes part in rendering: neither 'display:
// none' nor 'visibility: hidden|collapse'.
func (s *ComputedStyle) IsVisible() bool {
	if s.Display() == "none" {
		return false
	}
	switch s.Visibility() {
	case "hidden", "collapse":
		return false
	}
	return true
}

func isColorProperty(name string) bool {
	return name == "color" || strings.HasSuffix(name, "-color")
}
