// internal/browser/dom/path.go
package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// UniqueXPath returns an XPath that selects exactly node. An ancestor-or-self carrying
// an id anchors the path; otherwise the path is absolute from the document.
func UniqueXPath(node *html.Node) string {
	if node == nil {
		return ""
	}

	var steps []string
	for n := node; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		switch n.Type {
		case html.TextNode:
			steps = append(steps, "text()["+strconv.Itoa(sameKindIndex(n))+"]")
			continue
		case html.CommentNode:
			steps = append(steps, "comment()["+strconv.Itoa(sameKindIndex(n))+"]")
			continue
		case html.ElementNode:
		default:
			continue
		}

		// An id is only a usable anchor while it is unique in the document.
		if id, ok := Attr(n, "id"); ok && quotable(id) && countIDs(n, id) == 1 {
			steps = append(steps, "//*[@id="+quote(id)+"]")
			break
		}
		steps = append(steps, n.Data+"["+strconv.Itoa(typeIndex(n, false))+"]")
	}

	if len(steps) == 0 {
		return "/"
	}

	var sb strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		if i == len(steps)-1 && strings.HasPrefix(steps[i], "//") {
			sb.WriteString(steps[i])
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(steps[i])
	}
	return sb.String()
}

func sameKindIndex(n *html.Node) int {
	index := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == n.Type {
			index++
		}
	}
	return index
}

func countIDs(n *html.Node, id string) int {
	doc := n
	for doc.Parent != nil {
		doc = doc.Parent
	}
	count := 0
	for el := range Elements(doc) {
		if v, ok := Attr(el, "id"); ok && v == id {
			count++
		}
	}
	return count
}

func quotable(s string) bool {
	return s != "" && !(strings.Contains(s, "'") && strings.Contains(s, `"`))
}

func quote(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}
