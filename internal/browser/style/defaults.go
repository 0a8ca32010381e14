// internal/browser/style/defaults.go
package style

import "github.com/xkilldash9x/unitbrowser/internal/browser/css"

// defaults holds the value a computed-style getter reports when neither the inline
// style nor any applied rule sets the property. 'width' is absent on purpose: its
// default depends on 'display' and is handled by ComputedStyle.Width.
var defaults = map[string]string{
	"align-content":       "normal",
	"align-items":         "normal",
	"align-self":          "auto",
	"backface-visibility": "visible",

	"background-attachment": "scroll",
	"background-clip":       "border-box",
	"background-color":      "transparent",
	"background-image":      "none",
	"background-origin":     "padding-box",
	"background-position":   "0% 0%",
	"background-repeat":     "repeat",
	"background-size":       "auto",

	"border-bottom-color": "rgb(0, 0, 0)",
	"border-bottom-style": "none",
	"border-bottom-width": "0px",
	"border-left-color":   "rgb(0, 0, 0)",
	"border-left-style":   "none",
	"border-left-width":   "0px",
	"border-right-color":  "rgb(0, 0, 0)",
	"border-right-style":  "none",
	"border-right-width":  "0px",
	"border-top-color":    "rgb(0, 0, 0)",
	"border-top-style":    "none",
	"border-top-width":    "0px",

	"border-collapse":   "separate",
	"border-spacing":    "0px 0px",
	"bottom":            "auto",
	"box-shadow":        "none",
	"box-sizing":        "content-box",
	"caption-side":      "top",
	"clear":             "none",
	"clip":              "auto",
	"color":             "rgb(0, 0, 0)",
	"column-count":      "auto",
	"column-gap":        "normal",
	"content":           "normal",
	"counter-increment": "none",
	"counter-reset":     "none",
	"cursor":            "auto",
	"direction":         "ltr",
	"display":           "block",
	"empty-cells":       "show",

	"flex-basis":     "auto",
	"flex-direction": "row",
	"flex-grow":      "0",
	"flex-shrink":    "1",
	"flex-wrap":      "nowrap",
	"float":          "none",

	"font-family":  `"Times New Roman"`,
	"font-size":    "16px",
	"font-stretch": "100%",
	"font-style":   "normal",
	"font-variant": "normal",
	"font-weight":  "400",

	"height":          "auto",
	"hyphens":         "manual",
	"image-rendering": "auto",
	"isolation":       "auto",
	"justify-content": "normal",
	"left":            "auto",
	"letter-spacing":  "normal",
	"line-height":     "normal",

	"list-style-image":    "none",
	"list-style-position": "outside",
	"list-style-type":     "disc",

	"margin-bottom": "0px",
	"margin-left":   "0px",
	"margin-right":  "0px",
	"margin-top":    "0px",

	"max-height": "none",
	"max-width":  "none",
	"min-height": "0px",
	"min-width":  "0px",

	"mix-blend-mode": "normal",
	"object-fit":     "fill",
	"opacity":        "1",
	"order":          "0",
	"orphans":        "2",

	"outline-color": "rgb(0, 0, 0)",
	"outline-style": "none",
	"outline-width": "0px",

	"overflow":   "visible",
	"overflow-x": "visible",
	"overflow-y": "visible",

	"padding-bottom": "0px",
	"padding-left":   "0px",
	"padding-right":  "0px",
	"padding-top":    "0px",

	"page-break-after":  "auto",
	"page-break-before": "auto",
	"page-break-inside": "auto",
	"perspective":       "none",
	"pointer-events":    "auto",
	"position":          "static",
	"resize":            "none",
	"right":             "auto",
	"tab-size":          "8",
	"table-layout":      "auto",

	"text-align":      "start",
	"text-align-last": "auto",
	"text-decoration": "none",
	"text-indent":     "0px",
	"text-overflow":   "clip",
	"text-shadow":     "none",
	"text-transform":  "none",

	"top":            "auto",
	"transform":      "none",
	"unicode-bidi":   "normal",
	"user-select":    "auto",
	"vertical-align": "baseline",
	"visibility":     "visible",
	"white-space":    "normal",
	"widows":         "2",
	"will-change":    "auto",
	"word-break":     "normal",
	"word-spacing":   "0px",
	"word-wrap":      "normal",
	"writing-mode":   "horizontal-tb",
	"z-index":        "auto",
}

// Default returns the default computed value of a property and whether one is defined.
// Names may be given in CSS or script (camel-case) form.
func Default(name string) (string, bool) {
	v, ok := defaults[css.CanonicalName(name)]
	return v, ok
}

// DefaultedProperties returns the names of every property with a fixed default.
func DefaultedProperties() []string {
	names := make([]string, 0, len(defaults))
	for k := range defaults {
		names = append(names, k)
	}
	return names
}
