// internal/browser/style/declaration.go
package style

import (
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/parser"
)

// Declaration is a CSS declaration block as seen by scripts. A mutable declaration
// belongs to an element's 'style' attribute and writes every change back to it; a
// read-only one is a view over a computed style and ignores writes.
type Declaration struct {
	props   *css.PropertyMap
	mutable bool
	owner   *html.Node
}

// InlineStyle returns the mutable declaration backed by el's 'style' attribute.
func InlineStyle(el *html.Node) *Declaration {
	return &Declaration{props: parseInline(el), mutable: true, owner: el}
}

func readOnly(props *css.PropertyMap) *Declaration {
	return &Declaration{props: props}
}

// parseInline reads the declarations of el's 'style' attribute in authored order.
func parseInline(el *html.Node) *css.PropertyMap {
	props := css.NewPropertyMap()
	if el == nil {
		return props
	}
	text, ok := dom.Attr(el, "style")
	if !ok {
		return props
	}
	for _, d := range parser.ParseDeclarations(text) {
		props.Set(d.Property, d.Value)
	}
	return props
}

// Mutable reports whether writes take effect.
func (d *Declaration) Mutable() bool {
	return d.mutable
}

// GetPropertyValue returns the declared value of name, or "".
func (d *Declaration) GetPropertyValue(name string) string {
	return d.props.Value(name)
}

// SetProperty sets name to value; an empty value removes the property. It returns
// false, leaving the block untouched, when the declaration is read-only.
func (d *Declaration) SetProperty(name, value string) bool {
	if !d.mutable {
		return false
	}
	if value == "" {
		d.props.Delete(name)
	} else {
		d.props.Set(name, value)
	}
	d.writeBack()
	return true
}

// RemoveProperty deletes name and returns its previous value. Read-only declarations
// report the value without removing it.
func (d *Declaration) RemoveProperty(name string) string {
	old := d.props.Value(name)
	if !d.mutable {
		return old
	}
	if d.props.Delete(name) {
		d.writeBack()
	}
	return old
}

// Length returns the number of declared properties.
func (d *Declaration) Length() int {
	return d.props.Len()
}

// CSSText serializes the block.
func (d *Declaration) CSSText() string {
	return d.props.Text()
}

// SetCSSText replaces the whole block.
func (d *Declaration) SetCSSText(text string) bool {
	if !d.mutable {
		return false
	}
	d.props = css.NewPropertyMap()
	for _, decl := range parser.ParseDeclarations(text) {
		d.props.Set(decl.Property, decl.Value)
	}
	d.writeBack()
	return true
}

// Properties returns the declared property names in sorted order.
func (d *Declaration) Properties() []string {
	return d.props.Names()
}

func (d *Declaration) writeBack() {
	if d.owner == nil {
		return
	}
	if d.props.Len() == 0 {
		dom.RemoveAttr(d.owner, "style")
		return
	}
	dom.SetAttr(d.owner, "style", d.props.Text())
}
