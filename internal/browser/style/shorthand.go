// internal/browser/style/shorthand.go
package style

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
)

var sides = [4]string{"top", "right", "bottom", "left"}

// setExpanded writes name=value into props, followed by the longhands a shorthand
// expands to, so that longhand getters observe shorthand declarations.
func setExpanded(props *css.PropertyMap, name, value string) {
	name = css.CanonicalName(name)
	props.Set(name, value)

	switch name {
	case "margin", "padding":
		expand1To4(props, value, func(side string) string { return name + "-" + side })
	case "border-width", "border-style", "border-color":
		suffix := strings.TrimPrefix(name, "border-")
		expand1To4(props, value, func(side string) string { return "border-" + side + "-" + suffix })
	case "border":
		width, styleVal, color := parseBorder(value)
		for _, side := range sides {
			setBorderSide(props, side, width, styleVal, color)
		}
	case "border-top", "border-right", "border-bottom", "border-left":
		width, styleVal, color := parseBorder(value)
		setBorderSide(props, strings.TrimPrefix(name, "border-"), width, styleVal, color)
	case "flex":
		expandFlex(props, value)
	case "overflow":
		parts := strings.Fields(value)
		if len(parts) == 1 {
			props.Set("overflow-x", parts[0])
			props.Set("overflow-y", parts[0])
		} else if len(parts) == 2 {
			props.Set("overflow-x", parts[0])
			props.Set("overflow-y", parts[1])
		}
	case "background":
		for _, part := range strings.Fields(value) {
			if _, ok := ParseColor(part); ok {
				props.Set("background-color", part)
			}
		}
	}
}

func expand1To4(props *css.PropertyMap, value string, longhand func(side string) string) {
	parts := strings.Fields(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	props.Set(longhand("top"), top)
	props.Set(longhand("right"), right)
	props.Set(longhand("bottom"), bottom)
	props.Set(longhand("left"), left)
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// parseBorder splits a border shorthand into width, style and color. Missing parts come
// back empty.
func parseBorder(value string) (width, styleVal, color string) {
	for _, part := range strings.Fields(value) {
		switch {
		case styleVal == "" && borderStyles[part]:
			styleVal = part
		case width == "" && (isLength(part) || part == "thin" || part == "medium" || part == "thick"):
			width = part
		case color == "":
			if _, ok := ParseColor(part); ok {
				color = part
			}
		}
	}
	return width, styleVal, color
}

func setBorderSide(props *css.PropertyMap, side, width, styleVal, color string) {
	if width != "" {
		props.Set("border-"+side+"-width", width)
	}
	if styleVal != "" {
		props.Set("border-"+side+"-style", styleVal)
	}
	if color != "" {
		props.Set("border-"+side+"-color", color)
	}
}

func expandFlex(props *css.PropertyMap, value string) {
	grow, shrink, basis := "0", "1", "auto"
	parts := strings.Fields(value)

	switch len(parts) {
	case 0:
		return
	case 1:
		switch parts[0] {
		case "none":
			grow, shrink, basis = "0", "0", "auto"
		case "auto":
			grow, shrink, basis = "1", "1", "auto"
		default:
			if isNumber(parts[0]) {
				grow, basis = parts[0], "0%"
			} else {
				grow, shrink, basis = "1", "1", parts[0]
			}
		}
	case 2:
		grow = parts[0]
		if isNumber(parts[1]) {
			shrink, basis = parts[1], "0%"
		} else {
			basis = parts[1]
		}
	default:
		grow, shrink, basis = parts[0], parts[1], parts[2]
	}

	props.Set("flex-grow", grow)
	props.Set("flex-shrink", shrink)
	props.Set("flex-basis", basis)
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// isLength reports whether s looks like a CSS length: a number followed by a unit, or
// a bare zero.
func isLength(s string) bool {
	if s == "0" {
		return true
	}
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.' || s[i] == '-' || s[i] == '+') {
		i++
	}
	if i == 0 || i == len(s) {
		return false
	}
	switch s[i:] {
	case "px", "em", "rem", "%", "vw", "vh", "vmin", "vmax", "pt", "pc", "cm", "mm", "in", "ex", "ch":
		return true
	}
	return false
}
