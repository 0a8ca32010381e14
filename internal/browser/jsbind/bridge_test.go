// internal/browser/jsbind/bridge_test.go
package jsbind

import (
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/promise"
	"github.com/xkilldash9x/unitbrowser/internal/browser/style"
)

// -- Test Setup Utilities --

type TestEnvironment struct {
	Bridge *DOMBridge
	VM     *goja.Runtime
	Queue  *promise.FIFOQueue
	Doc    *html.Node
	T      *testing.T
}

func SetupTest(t *testing.T, initialHTML string) *TestEnvironment {
	t.Helper()
	return setupWithLogger(t, initialHTML, zaptest.NewLogger(t))
}

func setupWithLogger(t *testing.T, initialHTML string, logger *zap.Logger) *TestEnvironment {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(initialHTML))
	require.NoError(t, err)

	resolver := style.NewResolver(doc, style.Options{ViewportWidth: 800}, logger)
	bridge := NewDOMBridge(logger, doc, resolver)

	vm := goja.New()
	queue := promise.NewFIFOQueue()
	require.NoError(t, bridge.Bind(vm, promise.NewEngine(queue, logger)))

	return &TestEnvironment{Bridge: bridge, VM: vm, Queue: queue, Doc: doc, T: t}
}

// RunJS runs script and then drains every queued promise job.
func (te *TestEnvironment) RunJS(script string) (goja.Value, error) {
	val, err := te.VM.RunString(script)
	te.Queue.Drain()
	return val, err
}

// MustRunJS is a helper that runs a script and fails the test on error.
func (te *TestEnvironment) MustRunJS(script string) goja.Value {
	te.T.Helper()
	val, err := te.RunJS(script)
	require.NoError(te.T, err)
	return val
}

func (te *TestEnvironment) OuterHTML() string {
	te.T.Helper()
	var sb strings.Builder
	require.NoError(te.T, html.Render(&sb, te.Doc))
	return sb.String()
}

// -- DOM --

func TestDOMManipulation_AppendAndQuery(t *testing.T) {
	te := SetupTest(t, "<html><body><div id='container'></div></body></html>")

	script := `
        const container = document.getElementById('container');
        const newElement = document.createElement('p');
        newElement.textContent = 'Hello';
        newElement.id = 'newP';
        container.appendChild(newElement);

        document.querySelector('#container > #newP').textContent;
    `
	result := te.MustRunJS(script)
	assert.Equal(t, "Hello", result.String())
	assert.Contains(t, te.OuterHTML(), `<div id="container"><p id="newP">Hello</p></div>`)
}

func TestDOMManipulation_RemoveChild(t *testing.T) {
	te := SetupTest(t, "<html><body><div id='parent'><span id='child'>Remove me</span></div></body></html>")

	result := te.MustRunJS(`
        const parent = document.getElementById('parent');
        parent.removeChild(document.getElementById('child'));
        document.getElementById('child') === null;
    `)
	assert.True(t, result.ToBoolean())

	_, err := te.RunJS(`document.body.removeChild(document.createElement('i'))`)
	assert.ErrorContains(t, err, "not a child of this node")
}

func TestAttributeAccess(t *testing.T) {
	te := SetupTest(t, `<html><body><input id="myInput" type="text" value="initial"></body></html>`)

	result := te.MustRunJS(`
        const input = document.getElementById('myInput');
        const type = input.getAttribute('type');
        input.setAttribute('value', 'updated');
        const valueAttr = input.getAttribute('value');
        input.className = 'test-class';
        input.removeAttribute('type');

        ({ type, valueAttr, className: input.className, tagName: input.tagName,
           missing: input.getAttribute('type'), has: input.hasAttribute('value') })
    `)
	resMap := result.Export().(map[string]interface{})

	assert.Equal(t, "text", resMap["type"])
	assert.Equal(t, "updated", resMap["valueAttr"])
	assert.Equal(t, "test-class", resMap["className"])
	assert.Equal(t, "INPUT", resMap["tagName"])
	assert.Nil(t, resMap["missing"])
	assert.Equal(t, true, resMap["has"])
}

func TestWrapperIdentity(t *testing.T) {
	te := SetupTest(t, `<html><body><p id="a"></p></body></html>`)
	result := te.MustRunJS(`document.getElementById('a') === document.querySelector('p')`)
	assert.True(t, result.ToBoolean())
}

func TestQuerySelectorAll_DocumentOrder(t *testing.T) {
	te := SetupTest(t, `<html><body>
        <div id="d1"><p id="p1" class="x"></p></div>
        <p id="p2"></p>
        <span id="s1" class="x"></span>
    </body></html>`)

	result := te.MustRunJS(`Array.from(document.querySelectorAll('span, p.x, #p2')).map(e => e.id).join(',')`)
	assert.Equal(t, "p1,p2,s1", result.String())

	result = te.MustRunJS(`Array.from(document.getElementById('d1').querySelectorAll('p')).map(e => e.id).join(',')`)
	assert.Equal(t, "p1", result.String(), "queries are scoped to descendants")
}

func TestQuerySelector_FallsBackToMatcher(t *testing.T) {
	te := SetupTest(t, `<html><body><ul><li id="a"></li><li id="b"></li><li id="c"></li></ul></body></html>`)

	result := te.MustRunJS(`
        [document.querySelector('li:last-child').id,
         document.querySelector('li + li').id,
         Array.from(document.querySelectorAll('li:not(#b)')).map(e => e.id).join('')].join(',')
    `)
	assert.Equal(t, "c,b,ac", result.String())
}

func TestMatchesAndClosest(t *testing.T) {
	te := SetupTest(t, `<html><body><section class="outer"><div><a id="link" href="#">x</a></div></section></body></html>`)

	result := te.MustRunJS(`
        const link = document.getElementById('link');
        [link.matches('section a'), link.matches('div > p'), link.closest('.outer').tagName,
         link.closest('table') === null].join(',')
    `)
	assert.Equal(t, "true,false,SECTION,true", result.String())
}

func TestQuerySelector_ErrorHandling(t *testing.T) {
	te := SetupTest(t, `<html><body></body></html>`)
	_, err := te.RunJS(`document.querySelector("div[");`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a valid selector")

	var exc *goja.Exception
	require.True(t, errors.As(err, &exc))
	goErr, ok := exc.Value().ToObject(te.VM).Get("value").Export().(error)
	require.True(t, ok)
	var selErr *SelectorError
	require.True(t, errors.As(goErr, &selErr))
	assert.Equal(t, "div[", selErr.Selector)
}

func TestInnerHTMLAndTextContent(t *testing.T) {
	te := SetupTest(t, `<html><body><div id="box"><b>old</b></div></body></html>`)

	result := te.MustRunJS(`
        const box = document.getElementById('box');
        box.innerHTML = '<i>new</i> text';
        [box.innerHTML, box.textContent, box.children.length, box.childNodes.length].join('|')
    `)
	assert.Equal(t, "<i>new</i> text|new text|1|2", result.String())
}

func TestDocumentProperties(t *testing.T) {
	te := SetupTest(t, `<html><head><title> Page </title></head><body></body></html>`)

	result := te.MustRunJS(`[document.title, document.documentElement.tagName, document.body.nodeName,
        document.head.parentNode === document.documentElement, document.nodeType].join(',')`)
	assert.Equal(t, "Page,HTML,BODY,true,9", result.String())
}

// -- Styles --

func TestGetComputedStyle(t *testing.T) {
	te := SetupTest(t, `<html><head><style>
        .hidden { display: none }
        p { color: red }
    </style></head><body><p id="p" class="hidden" style="background-color: blue"></p><div id="d"></div></body></html>`)

	result := te.MustRunJS(`
        const cs = getComputedStyle(document.getElementById('p'));
        [cs.display, cs.getPropertyValue('color'), cs.backgroundColor, cs.width,
         window.getComputedStyle(document.getElementById('d')).width].join('|')
    `)
	assert.Equal(t, "none|rgb(255, 0, 0)|rgb(0, 0, 255)|auto|800px", result.String())

	_, err := te.RunJS(`getComputedStyle(42)`)
	assert.ErrorContains(t, err, "not of type 'Element'")
}

func TestComputedStyle_IsReadOnlyAndLive(t *testing.T) {
	te := SetupTest(t, `<html><body><div id="d"></div></body></html>`)

	result := te.MustRunJS(`
        const el = document.getElementById('d');
        const cs = getComputedStyle(el);
        cs.display = 'none';
        cs.setProperty('display', 'none');
        const before = cs.display;
        el.style.display = 'inline';
        [before, cs.display].join(',')
    `)
	assert.Equal(t, "block,inline", result.String())
}

func TestInlineStyle_WritesBack(t *testing.T) {
	te := SetupTest(t, `<html><body><div id="d" style="color: green"></div></body></html>`)

	result := te.MustRunJS(`
        const el = document.getElementById('d');
        el.style.backgroundColor = 'red';
        el.style.setProperty('margin-top', '4px');
        const removed = el.style.removeProperty('color');
        [removed, el.style.color === '', el.style.length, el.getAttribute('style')].join('|')
    `)
	assert.Equal(t, "green|true|2|background-color: red; margin-top: 4px", result.String())

	el := dom.ElementByID(te.Doc, "d")
	require.NotNil(t, el)
	cs := te.Bridge.Resolver().ComputedStyle(el)
	assert.Equal(t, "rgb(255, 0, 0)", cs.BackgroundColor())

	te.MustRunJS(`document.getElementById('d').style.cssText = ''`)
	_, ok := dom.Attr(el, "style")
	assert.False(t, ok, "an empty block removes the attribute")
}

// -- Console --

func TestConsole_RoutesToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	te := setupWithLogger(t, `<html><body></body></html>`, zap.New(core))

	te.MustRunJS(`console.log('hello', {a: 1}, [1, 2]); console.warn('careful'); alert('hi');
        console.error('bad'); console.debug('trace')`)

	entries := logs.FilterMessage("[JS Console]").All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, `hello {"a":1} [1,2]`, entries[0].ContextMap()["message"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "bad", entries[2].ContextMap()["message"])
	assert.Equal(t, zapcore.DebugLevel, entries[3].Level)
	assert.Equal(t, 1, logs.FilterMessage("[JS Alert]").Len())
}

// -- Promise --

func TestPromise_ThenRunsAsJob(t *testing.T) {
	te := SetupTest(t, `<html><body></body></html>`)

	_, err := te.VM.RunString(`
        var log = [];
        new Promise(resolve => resolve(1)).then(v => log.push('then ' + v));
        log.push('sync');
    `)
	require.NoError(t, err)
	assert.Equal(t, "sync", te.VM.Get("log").String())

	te.Queue.Drain()
	assert.Equal(t, "sync,then 1", te.VM.Get("log").String())
}

func TestPromise_Chaining(t *testing.T) {
	te := SetupTest(t, `<html><body></body></html>`)

	te.MustRunJS(`
        var out;
        Promise.resolve(1)
            .then(v => v + 1)
            .then(v => { throw new Error('at ' + v); })
            .then(() => 'unreachable')
            .catch(e => e.message)
            .then(v => { out = v; });
    `)
	assert.Equal(t, "at 2", te.VM.Get("out").String())
}

func TestPromise_AdoptsPromisesAndThenables(t *testing.T) {
	te := SetupTest(t, `<html><body></body></html>`)

	te.MustRunJS(`
        var out = [];
        const inner = Promise.resolve('inner');
        Promise.resolve(inner).then(v => out.push(v));
        Promise.resolve({ then(res) { res('thenable'); } }).then(v => out.push(v));
        new Promise(res => res(Promise.reject('nested'))).catch(r => out.push('caught ' + r));
        out.push(Promise.resolve(inner) === inner, Promise.resolve(inner) instanceof Promise);
    `)
	assert.ElementsMatch(t, []any{true, true, "inner", "thenable", "caught nested"}, te.VM.Get("out").Export())
}

func TestPromise_AllAndRace(t *testing.T) {
	te := SetupTest(t, `<html><body></body></html>`)

	te.MustRunJS(`
        var all, race, rejected, empty;
        Promise.all([Promise.resolve(1), 2, { then(r) { r(3); } }]).then(v => { all = v.join(','); });
        Promise.race([new Promise(() => {}), Promise.resolve('fast')]).then(v => { race = v; });
        Promise.all([Promise.resolve(1), Promise.reject('bad')]).catch(r => { rejected = r; });
        Promise.all([]).then(v => { empty = v.length; });
    `)
	assert.Equal(t, "1,2,3", te.VM.Get("all").String())
	assert.Equal(t, "fast", te.VM.Get("race").String())
	assert.Equal(t, "bad", te.VM.Get("rejected").String())
	assert.Equal(t, int64(0), te.VM.Get("empty").Export())
}

func TestPromise_AllRejectsNonIterable(t *testing.T) {
	te := SetupTest(t, `<html><body></body></html>`)

	te.MustRunJS(`
        var allErr, raceErr, nullErr, chars;
        Promise.all(5).catch(e => { allErr = (e instanceof TypeError) + ' ' + e.message; });
        Promise.race({}).catch(e => { raceErr = e instanceof TypeError; });
        Promise.all(null).catch(e => { nullErr = e.name; });
        Promise.all('ab').then(v => { chars = v.join('|'); });
    `)
	assert.Equal(t, "true Promise.all: 5 is not iterable", te.VM.Get("allErr").String())
	assert.True(t, te.VM.Get("raceErr").ToBoolean())
	assert.Equal(t, "TypeError", te.VM.Get("nullErr").String())
	assert.Equal(t, "a|b", te.VM.Get("chars").String())
}

func TestPromise_ExecutorThrows(t *testing.T) {
	te := SetupTest(t, `<html><body></body></html>`)

	te.MustRunJS(`
        var reason, fin = false;
        new Promise(() => { throw 'kaput'; }).finally(() => { fin = true; }).catch(r => { reason = r; });
    `)
	assert.Equal(t, "kaput", te.VM.Get("reason").String())
	assert.True(t, te.VM.Get("fin").ToBoolean())

	_, err := te.RunJS(`new Promise(42)`)
	assert.ErrorContains(t, err, "resolver is not a function")
}

func TestAsPromise(t *testing.T) {
	te := SetupTest(t, `<html><body></body></html>`)

	host := te.MustRunJS(`Promise.resolve([1, 'two'])`)
	p, ok := te.Bridge.AsPromise(host)
	require.True(t, ok)
	te.Queue.Drain()
	assert.Equal(t, promise.Fulfilled, p.State())
	assert.Equal(t, []any{int64(1), "two"}, te.Bridge.Export(p.Value()))

	foreign := te.MustRunJS(`({ then(res, rej) { rej('no'); } })`)
	p, ok = te.Bridge.AsPromise(foreign)
	require.True(t, ok)
	te.Queue.Drain()
	assert.Equal(t, promise.Rejected, p.State())
	assert.Equal(t, "no", te.Bridge.Export(p.Value()))

	_, ok = te.Bridge.AsPromise(te.VM.ToValue(5))
	assert.False(t, ok)
}
