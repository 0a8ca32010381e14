// internal/browser/stylesheet/translator_test.go
package stylesheet_test

import (
	"strings"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/parser"
	"github.com/xkilldash9x/unitbrowser/internal/browser/stylesheet"
)

const page = `
<html lang="en">
<head><title>t</title></head>
<body>
	<div id="main" class="box wide">
		<p class="foo">one</p>
		<p class="foobar">two</p>
		<section><p class="foo bar">three</p></section>
		<a href="http://example.com/doc.pdf" rel="nofollow external" title="it's">pdf</a>
	</div>
	<div lang="en-GB"><span>four</span><p>five</p></div>
	<p lang="fr">six</p>
</body>
</html>`

func translateText(t *testing.T, text string) (string, bool) {
	t.Helper()
	list, err := parser.ParseSelectors(text)
	require.NoError(t, err)
	require.Len(t, list, 1)
	return stylesheet.Translate(list[0])
}

func TestTranslate(t *testing.T) {
	const fooToken = "contains(concat(' ', normalize-space(@class), ' '), ' foo ')"

	tests := []struct {
		selector string
		want     string
	}{
		{"*", "//*"},
		{"div", "//div"},
		{"DIV", "//div"},
		{"div.foo", "//div[" + fooToken + "]"},
		{".foo", "//*[" + fooToken + "]"},
		{"a > b", "//a/b"},
		{"a b", "//a//b"},
		{"a b > c", "//a//b/c"},
		{"* p", "//*//p"},
		{"#main", "//*[@id='main']"},
		{"[title]", "//*[@title]"},
		{`[title="it's"]`, `//*[@title = "it's"]`},
		{`[lang|="en"]`, "//*[(@lang = 'en' or starts-with(@lang, 'en-'))]"},
		{`[rel~="external"]`, "//*[contains(concat(' ', normalize-space(@rel), ' '), ' external ')]"},
		{`[rel~=""]`, "//*[false()]"},
		{`[href^="http"]`, "//*[starts-with(@href, 'http')]"},
		{`[href$=".pdf"]`, "//*[ends-with(@href, '.pdf')]"},
		{`[href*="example"]`, "//*[contains(@href, 'example')]"},
		{"div.foo.bar", "//div[(" + fooToken + " and contains(concat(' ', normalize-space(@class), ' '), ' bar '))]"},
		{":is(.foo, #main)", "//*[(" + fooToken + " or @id='main')]"},
		{":root", "html"},
		{":root > body", "html/body"},
		{":root p", "html//p"},
		{"* > * *", "//*/*//*"},
		{"h1 ~ p", "//h1/following-sibling::p"},
		{"div:defined", "//div"},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, ok := translateText(t, tt.selector)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_Unsupported(t *testing.T) {
	for _, text := range []string{
		"p:first-child",
		"li:nth-child(2n+1)",
		"p:only-child",
		"p:only-of-type",
		"p:last-of-type",
		"a + b",
		"div a + b",
		"p::before",
		"p:after",
		"p:not(.foo)",
		"p:lang(en)",
		"p:hover",
		`p:contains("x")`,
		"div > p:first-child",
		"p:root",
	} {
		t.Run(text, func(t *testing.T) {
			got, ok := translateText(t, text)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}

	_, ok := stylesheet.Translate(nil)
	assert.False(t, ok)
	_, ok = stylesheet.Translate(css.NodeTypeSelector{Kind: css.NodeComment})
	assert.False(t, ok)
	_, ok = stylesheet.Translate(css.NegativeSelector{Simple: css.ElementSelector{LocalName: "p"}})
	assert.False(t, ok)
}

func TestTranslateCondition(t *testing.T) {
	pred, ok := stylesheet.TranslateCondition(css.IDCondition{Value: "x"})
	require.True(t, ok)
	assert.Equal(t, "@id='x'", pred)

	pred, ok = stylesheet.TranslateCondition(css.AttributeEqualsCondition{Name: "data:x", Value: `a'b"c`})
	require.True(t, ok)
	assert.Equal(t, `@*[name()='data:x'] = concat('a', "'", 'b"c')`, pred)

	_, ok = stylesheet.TranslateCondition(css.AndCondition{
		Left:  css.ClassCondition{Value: "a"},
		Right: css.OnlyChildCondition{},
	})
	assert.False(t, ok)

	_, ok = stylesheet.TranslateCondition(css.PseudoClassCondition{Name: "defined"})
	assert.False(t, ok, "an always-true condition has no predicate of its own")
}

func TestTranslator_LogsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr := stylesheet.NewTranslator(zap.New(core), true)

	list, err := parser.ParseSelectors("p:first-child, p")
	require.NoError(t, err)

	_, ok := tr.Translate(list[0])
	assert.False(t, ok)
	xp, ok := tr.Translate(list[1])
	assert.True(t, ok)
	assert.Equal(t, "//p", xp)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "p:first-child", logs.All()[0].ContextMap()["selector"])

	quiet, quietLogs := observer.New(zapcore.DebugLevel)
	_, _ = stylesheet.NewTranslator(zap.New(quiet), false).Translate(list[0])
	assert.Zero(t, quietLogs.Len())
}

// TestTranslate_SelectsSameNodesAsCascadia evaluates translated queries and compares the
// result with an independent CSS engine.
func TestTranslate_SelectsSameNodesAsCascadia(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(page))
	require.NoError(t, err)
	eval := dom.NewXPathEvaluator(true)

	for _, text := range []string{
		"p",
		"div p",
		"div > p",
		"div.foo",
		"p.foo",
		".box.wide > p",
		"#main a",
		"a[title]",
		`a[title="it's"]`,
		`[lang|="en"]`,
		`a[rel~="external"]`,
		`a[rel~="ext"]`,
		`a[href^="http"]`,
		`a[href$=".pdf"]`,
		`a[href*="example"]`,
		":root",
		":root > body > p",
		"span ~ p",
		"p ~ a",
		"*",
	} {
		t.Run(text, func(t *testing.T) {
			xp, ok := translateText(t, text)
			require.True(t, ok)

			nodes, err := eval.Evaluate(xp, doc)
			require.NoError(t, err)

			oracle := cascadia.MustCompile(text)
			want := dom.NewNodeSet(oracle.MatchAll(doc))
			got := dom.NewNodeSet(nodes)

			assert.Equal(t, len(want), len(got), "xpath %s", xp)
			for n := range want {
				assert.True(t, got.Contains(n), "xpath %s misses %s", xp, dom.UniqueXPath(n))
			}
		})
	}
}

// TestTranslate_ChildIsNotDescendant pins the structural difference between '>' and ' '.
func TestTranslate_ChildIsNotDescendant(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(page))
	require.NoError(t, err)
	eval := dom.NewXPathEvaluator(false)

	child, _ := translateText(t, "#main > p")
	desc, _ := translateText(t, "#main p")

	direct, err := eval.Evaluate(child, doc)
	require.NoError(t, err)
	deep, err := eval.Evaluate(desc, doc)
	require.NoError(t, err)

	assert.Len(t, direct, 2)
	assert.Len(t, deep, 3)
	for _, n := range direct {
		assert.Equal(t, "main", htmlquery.SelectAttr(n.Parent, "id"))
	}
}

// TestTranslate_AttributeShorterThanSuffix evaluates suffix selectors against values
// shorter than the suffix and against missing attributes.
func TestTranslate_AttributeShorterThanSuffix(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(
		`<html><body><a id="a" href="x">a</a><a id="b">b</a><a id="c" href="y.pdf">c</a></body></html>`))
	require.NoError(t, err)
	eval := dom.NewXPathEvaluator(false)

	xp, ok := translateText(t, `a[href$=".pdf"]`)
	require.True(t, ok)

	var nodes []*html.Node
	require.NotPanics(t, func() { nodes, err = eval.Evaluate(xp, doc) })
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "c", htmlquery.SelectAttr(nodes[0], "id"))
}

var fragments = []string{
	"*", "div", "p", "a", "li", "x-y", ".foo", "#id", "[title]", "[a='b']", `[a="x'y"]`,
	"[a~=b]", "[a|=b]", "[a^=b]", "[a$=b]", "[a*=b]", ":first-child", ":nth-child(2n+1)",
	":not(p)", ":lang(en)", ":root", "::before", ":hover", ":is(.a, #b)", " ", " > ",
	" + ", " ~ ", ", ", "é", "|", "\\31 23",
}

// FuzzTranslate assembles selectors from grammar fragments. Whatever parses must either
// be rejected by the translator or produce XPath that compiles.
func FuzzTranslate(f *testing.F) {
	f.Add([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	f.Add([]byte{0, 24, 6, 9, 13, 27, 2})
	f.Add([]byte("selector seeds"))

	eval := dom.NewXPathEvaluator(false)
	f.Fuzz(func(t *testing.T, data []byte) {
		c := fuzz.NewConsumer(data)
		count, err := c.GetInt()
		if err != nil {
			return
		}

		var sb strings.Builder
		for i := 0; i < count%8+1; i++ {
			idx, err := c.GetInt()
			if err != nil {
				break
			}
			idx %= len(fragments)
			if idx < 0 {
				idx += len(fragments)
			}
			sb.WriteString(fragments[idx])
		}

		list, err := parser.ParseSelectors(sb.String())
		if err != nil {
			assert.Empty(t, list)
			return
		}
		for _, sel := range list {
			xp, ok := stylesheet.Translate(sel)
			if !ok {
				continue
			}
			again, _ := stylesheet.Translate(sel)
			assert.Equal(t, xp, again)
			assert.NotContains(t, xp, "///")
			assert.NoError(t, eval.Compile(xp), "selector %q", sb.String())
		}
	})
}
