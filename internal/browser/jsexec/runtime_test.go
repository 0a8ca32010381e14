package jsexec_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/dom"
	"github.com/xkilldash9x/unitbrowser/internal/browser/jsbind"
	"github.com/xkilldash9x/unitbrowser/internal/browser/jsexec"
	"github.com/xkilldash9x/unitbrowser/internal/browser/style"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testPage = `<html><head><style>
    .note { color: navy; display: inline }
    #hidden { display: none }
</style></head><body>
    <p class="note" id="first">one</p>
    <p id="hidden">two</p>
</body></html>`

// newTestRuntime is a helper to set up a runtime over testPage for each test.
func newTestRuntime(t *testing.T) *jsexec.Runtime {
	t.Helper()
	logger := zaptest.NewLogger(t)

	doc, err := html.Parse(strings.NewReader(testPage))
	require.NoError(t, err)
	bridge := jsbind.NewDOMBridge(logger, doc, style.NewResolver(doc, style.Options{}, logger))

	runtime, err := jsexec.NewRuntime(logger, bridge, jsexec.Options{})
	require.NoError(t, err)
	t.Cleanup(runtime.Close)
	return runtime
}

func TestNewRuntime_RequiresBridge(t *testing.T) {
	_, err := jsexec.NewRuntime(nil, nil, jsexec.Options{})
	assert.Error(t, err)
}

func TestExecuteScript_Basic(t *testing.T) {
	runtime := newTestRuntime(t)

	result, err := runtime.ExecuteScript(context.Background(), `(5 + 5) * 2`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20), result)
}

func TestExecuteScript_WithArgs(t *testing.T) {
	runtime := newTestRuntime(t)

	script := `(function(prefix, message) { return prefix + message; })`
	args := []interface{}{"Log: ", "Hello World"}

	result, err := runtime.ExecuteScript(context.Background(), script, args)
	require.NoError(t, err)
	assert.Equal(t, "Log: Hello World", result)
}

func TestExecuteScript_ReturnObject(t *testing.T) {
	runtime := newTestRuntime(t)

	result, err := runtime.ExecuteScript(context.Background(), `({status: "success", code: 200})`, nil)
	require.NoError(t, err)

	resMap, ok := result.(map[string]interface{})
	require.True(t, ok, "Result should be a map")
	assert.Equal(t, "success", resMap["status"])
	assert.Equal(t, int64(200), resMap["code"])
}

func TestExecuteScript_StatePersists(t *testing.T) {
	runtime := newTestRuntime(t)
	ctx := context.Background()

	_, err := runtime.ExecuteScript(ctx, `var counter = 41;`, nil)
	require.NoError(t, err)
	result, err := runtime.ExecuteScript(ctx, `++counter`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result)
}

func TestExecuteScript_Exception(t *testing.T) {
	runtime := newTestRuntime(t)

	_, err := runtime.ExecuteScript(context.Background(), `throw new Error("Intentional Error");`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "javascript exception:")
	assert.Contains(t, err.Error(), "Intentional Error")
}

func TestExecuteScript_Timeout(t *testing.T) {
	runtime := newTestRuntime(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	startTime := time.Now()
	_, err := runtime.ExecuteScript(ctx, `while(true) {}`, nil)
	duration := time.Since(startTime)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "javascript execution interrupted by context")
	assert.Less(t, duration, time.Second)

	// The runtime stays usable after an interrupted script.
	result, err := runtime.ExecuteScript(context.Background(), `1 + 1`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result)
}

func TestExecuteScript_Cancellation(t *testing.T) {
	runtime := newTestRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		_, err := runtime.ExecuteScript(ctx, `while(true) {}`, nil)
		errChan <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "javascript execution interrupted by context")
	case <-time.After(time.Second):
		t.Fatal("Execution did not stop after cancellation")
	}
}

// -- Promise handling --

func TestExecuteScript_PromiseFulfilled(t *testing.T) {
	runtime := newTestRuntime(t)

	script := `new Promise(resolve => setTimeout(() => resolve('async success'), 20))`
	result, err := runtime.ExecuteScript(context.Background(), script, nil)
	require.NoError(t, err)
	assert.Equal(t, "async success", result)
}

func TestExecuteScript_PromiseChain(t *testing.T) {
	runtime := newTestRuntime(t)

	script := `Promise.all([Promise.resolve(1), new Promise(r => setTimeout(() => r(2), 10))]).then(v => v.map(x => x * 10))`
	result, err := runtime.ExecuteScript(context.Background(), script, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(10), int64(20)}, result)
}

func TestExecuteScript_PromiseRejected(t *testing.T) {
	runtime := newTestRuntime(t)

	script := `new Promise((_, reject) => setTimeout(() => reject(new Error('async failure')), 20))`
	_, err := runtime.ExecuteScript(context.Background(), script, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, jsexec.ErrPromiseRejected)
	assert.Contains(t, err.Error(), "promise rejected")
	assert.Contains(t, err.Error(), "async failure")
}

func TestExecuteScript_AsyncFunction(t *testing.T) {
	runtime := newTestRuntime(t)

	script := `(async function(factor) { const v = await Promise.resolve(2); return v * factor; })`
	result, err := runtime.ExecuteScript(context.Background(), script, []interface{}{21})
	require.NoError(t, err)
	assert.Equal(t, int64(42), result)
}

func TestExecuteScript_AsyncIIFE(t *testing.T) {
	runtime := newTestRuntime(t)

	script := `(async function() { const v = await Promise.resolve(3); return v * 2; })()`
	result, err := runtime.ExecuteScript(context.Background(), script, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6), result)

	// A plain IIFE evaluates to its value directly.
	result, err = runtime.ExecuteScript(context.Background(), `(function() { return 'done'; })()`, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", result)
}

func TestExecuteScript_PromiseTimeout(t *testing.T) {
	runtime := newTestRuntime(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	script := `new Promise(resolve => setTimeout(() => resolve('this should not be seen'), 200))`
	_, err := runtime.ExecuteScript(ctx, script, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "context done while waiting for promise")
}

// -- Document access --

func TestExecuteScript_ComputedStyle(t *testing.T) {
	runtime := newTestRuntime(t)

	script := `
        const first = getComputedStyle(document.querySelector('.note'));
        const hidden = getComputedStyle(document.getElementById('hidden'));
        [first.color, first.display, hidden.display, hidden.width].join('|')
    `
	result, err := runtime.ExecuteScript(context.Background(), script, nil)
	require.NoError(t, err)
	assert.Equal(t, "rgb(0, 0, 128)|inline|none|auto", result)
}

func TestExecuteScript_MutationsVisibleToGo(t *testing.T) {
	runtime := newTestRuntime(t)

	_, err := runtime.ExecuteScript(context.Background(), `document.getElementById('first').style.display = 'none'`, nil)
	require.NoError(t, err)

	bridge := runtime.GetBridge()
	first := dom.ElementByID(bridge.Document(), "first")
	require.NotNil(t, first)
	assert.False(t, bridge.Resolver().ComputedStyle(first).IsVisible())
}

func TestExecuteScript_AfterClose(t *testing.T) {
	runtime := newTestRuntime(t)
	runtime.Close()

	_, err := runtime.ExecuteScript(context.Background(), `1`, nil)
	assert.ErrorIs(t, err, jsexec.ErrClosed)
}

func TestLoopQueue_RunsJobsInOrder(t *testing.T) {
	loop := eventloop.NewEventLoop()
	loop.Start()
	defer loop.Terminate()

	q := jsexec.NewLoopQueue(loop, zaptest.NewLogger(t))
	done := make(chan []int, 1)
	var order []int
	for i := range 3 {
		q.Enqueue(func() { order = append(order, i) })
	}
	q.Enqueue(nil)
	q.Enqueue(func() { done <- order })

	select {
	case got := <-done:
		assert.Equal(t, []int{0, 1, 2}, got)
	case <-time.After(time.Second):
		t.Fatal("queued jobs did not run")
	}
}
