// internal/browser/style/color.go
package style

import (
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Color represents an RGBA color.
type Color struct {
	R, G, B, A uint8
}

// String renders the color the way computed styles report it: 'rgb(r, g, b)' when
// opaque, 'rgba(r, g, b, a)' otherwise.
func (c Color) String() string {
	rgb := strconv.Itoa(int(c.R)) + ", " + strconv.Itoa(int(c.G)) + ", " + strconv.Itoa(int(c.B))
	if c.A == 255 {
		return "rgb(" + rgb + ")"
	}
	alpha := strconv.FormatFloat(float64(c.A)/255.0, 'f', 2, 64)
	alpha = strings.TrimRight(strings.TrimRight(alpha, "0"), ".")
	if alpha == "" {
		alpha = "0"
	}
	return "rgba(" + rgb + ", " + alpha + ")"
}

// ParseColor parses a CSS color: a named color, hex notation or one of the rgb(),
// hsl() and hwb() functions.
func ParseColor(value string) (Color, bool) {
	value = strings.TrimSpace(value)
	// csscolorparser also reads bare hex digits, which CSS treats as a keyword.
	if bareHex(value) {
		return Color{}, false
	}
	parsed, err := csscolorparser.Parse(value)
	if err != nil {
		return Color{}, false
	}
	r, g, b, a := parsed.RGBA255()
	return Color{R: r, G: g, B: b, A: a}, true
}

// NormalizeColor returns the computed form of a color value, or value unchanged when
// it is not a color this package understands (e.g. 'currentcolor', 'inherit').
func NormalizeColor(value string) string {
	if c, ok := ParseColor(value); ok {
		return c.String()
	}
	return value
}

func bareHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
