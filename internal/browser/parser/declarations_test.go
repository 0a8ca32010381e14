// internal/browser/parser/declarations_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func d(prop, val string, important bool) Declaration {
	return Declaration{Property: prop, Value: val, Important: important}
}

func TestParseDeclarations(t *testing.T) {
	input := `
		color: red;
		font-size: 16px !important;
		margin: 10px 20px;
		BORDER: none;
        /* Comment between declarations */
        padding: 0;
		background: url("a;b.png") no-repeat;
		font-family: 'Open Sans', serif
	`

	expected := []Declaration{
		d("color", "red", false),
		d("font-size", "16px", true),
		d("margin", "10px 20px", false),
		d("border", "none", false),
		d("padding", "0", false),
		d("background", `url("a;b.png") no-repeat`, false),
		d("font-family", "'Open Sans', serif", false),
	}

	assert.Equal(t, expected, ParseDeclarations(input))
}

func TestParseDeclarations_EdgeCases(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, ParseDeclarations(""))
		assert.Empty(t, ParseDeclarations(" ; ;; "))
	})

	t.Run("Malformed Declarations Recovery", func(t *testing.T) {
		decls := ParseDeclarations(`color: ; font-size: 12px; border`)
		// Should recover and parse the valid declaration (font-size)
		assert.Equal(t, []Declaration{d("font-size", "12px", false)}, decls)
	})

	t.Run("Missing Colon", func(t *testing.T) {
		decls := ParseDeclarations(`color red; width: calc(100% - (2px; 3px)); display: none`)
		assert.Equal(t, []Declaration{
			d("width", "calc(100% - (2px; 3px))", false),
			d("display", "none", false),
		}, decls)
	})

	t.Run("Important Spacing", func(t *testing.T) {
		decls := ParseDeclarations(`color: blue ! IMPORTANT`)
		assert.Equal(t, []Declaration{d("color", "blue", true)}, decls)
	})

	t.Run("Custom Property", func(t *testing.T) {
		decls := ParseDeclarations(`--main-color: #06c`)
		assert.Equal(t, []Declaration{d("--main-color", "#06c", false)}, decls)
	})

	t.Run("Repeated Property Keeps Order", func(t *testing.T) {
		decls := ParseDeclarations(`color: red; color: blue`)
		assert.Equal(t, []Declaration{d("color", "red", false), d("color", "blue", false)}, decls)
	})
}
