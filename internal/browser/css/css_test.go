// internal/browser/css/css_test.go
package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalName(t *testing.T) {
	tests := map[string]string{
		"color":             "color",
		"backgroundColor":   "background-color",
		"borderBottomColor": "border-bottom-color",
		"BORDER-TOP":        "border-top",
		"cssFloat":          "float",
		"WebkitTransform":   "-webkit-transform",
		"--Main-Color":      "--Main-Color",
		"  width ":          "width",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalName(in), "CanonicalName(%q)", in)
	}
}

func TestCamelName(t *testing.T) {
	assert.Equal(t, "backgroundColor", CamelName("background-color"))
	assert.Equal(t, "cssFloat", CamelName("float"))
	assert.Equal(t, "webkitTransform", CamelName("-webkit-transform"))
	assert.Equal(t, "width", CamelName("width"))
}

func TestPropertyMap(t *testing.T) {
	var m PropertyMap // zero value is usable
	m.Set("color", "red")
	m.Set("backgroundColor", "blue")
	m.Set("Color", "green") // same key, keeps position

	v, ok := m.Get("color")
	assert.True(t, ok)
	assert.Equal(t, "green", v)
	assert.Equal(t, "blue", m.Value("background-color"))
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "color: green; background-color: blue", m.Text())
	assert.Equal(t, []string{"background-color", "color"}, m.Names())

	clone := m.Clone()
	clone.Set("width", "10px")
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 3, clone.Len())

	assert.True(t, m.Delete("backgroundColor"))
	assert.False(t, m.Delete("backgroundColor"))
	assert.Equal(t, "color: green", m.Text())

	var nilMap *PropertyMap
	assert.Equal(t, 0, nilMap.Len())
	_, ok = nilMap.Get("color")
	assert.False(t, ok)
}

func TestPositionalCondition_Matches(t *testing.T) {
	tests := []struct {
		name    string
		cond    PositionalCondition
		matches []int
	}{
		{"first", PositionalCondition{A: 0, B: 1}, []int{1}},
		{"odd", PositionalCondition{A: 2, B: 1}, []int{1, 3, 5}},
		{"even", PositionalCondition{A: 2, B: 0}, []int{2, 4, 6}},
		{"first three", PositionalCondition{A: -1, B: 3}, []int{1, 2, 3}},
		{"from fourth", PositionalCondition{A: 1, B: 4}, []int{4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			for i := 1; i <= 6; i++ {
				if tt.cond.Matches(i) {
					got = append(got, i)
				}
			}
			assert.Equal(t, tt.matches, got)
		})
	}
}

func TestSelectorString(t *testing.T) {
	sel := ChildSelector{
		Parent: ElementSelector{LocalName: "ul"},
		Child: ConditionalSelector{
			Base:      AnySelector{},
			Condition: AndCondition{Left: ClassCondition{Value: "item"}, Right: AttributeEqualsCondition{Name: "data-x", Value: "1"}},
		},
	}
	assert.Equal(t, `ul > .item[data-x="1"]`, sel.String())
	assert.Equal(t, `.item[data-x="1"]`, Subject(sel).String())
	assert.Equal(t, "svg|rect", ElementSelector{LocalName: "rect", Namespace: "svg"}.String())
	assert.Equal(t, ":nth-last-of-type(3n-1)", PositionalCondition{A: 3, B: -1, OfType: true, FromEnd: true}.String())
	assert.Equal(t, "comment()", NodeTypeSelector{Kind: NodeComment}.String())
}
