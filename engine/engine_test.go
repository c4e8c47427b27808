package engine

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/aura-studio/kubeless/function"
	"github.com/aura-studio/kubeless/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContext = function.Context{
	FunctionName: "say_hello",
	Runtime:      "go",
	Timeout:      180,
}

func sayHello(ev function.Event, ctx function.Context) string {
	if ev.HasData() {
		return "Hello, " + string(ev.Data)
	}
	return "Hello"
}

func setup(t *testing.T, handler function.Handler, opts ...Option) (*Engine, *metrics.Recorder) {
	recorder, err := metrics.NewRecorder()
	require.NoError(t, err)
	return NewEngine(handler, testContext, recorder, opts...), recorder
}

func TestEngine_Invoke(t *testing.T) {
	e, recorder := setup(t, sayHello)

	rsp, err := e.Invoke(function.Event{Data: []byte("World")})
	require.NoError(t, err)
	assert.Equal(t, "Hello, World", rsp)

	rsp, err = e.Invoke(function.Event{})
	require.NoError(t, err)
	assert.Equal(t, "Hello", rsp)

	assert.Equal(t, float64(2), recorder.Calls())
	assert.Equal(t, float64(0), recorder.Failures())
}

func TestEngine_InvokePassesContext(t *testing.T) {
	var got function.Context
	e, _ := setup(t, func(_ function.Event, ctx function.Context) string {
		got = ctx
		return ""
	})

	_, err := e.Invoke(function.Event{})
	require.NoError(t, err)
	assert.Equal(t, testContext, got)
	assert.Equal(t, testContext, e.Context())
}

func TestEngine_InvokeRecoversPanic(t *testing.T) {
	e, recorder := setup(t, func(function.Event, function.Context) string {
		panic("boom")
	})

	rsp, err := e.Invoke(function.Event{})
	require.Error(t, err)
	assert.Equal(t, "", rsp)
	assert.True(t, errors.Is(err, ErrHandlerPanic))

	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "boom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Equal(t, "panic: boom", err.Error())

	assert.Equal(t, float64(1), recorder.Calls())
	assert.Equal(t, float64(1), recorder.Failures())
}

func TestEngine_InvokeStrictPanics(t *testing.T) {
	e, recorder := setup(t, func(function.Event, function.Context) string {
		panic("boom")
	}, WithStrictPanics())

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = e.Invoke(function.Event{})
	})
	assert.Equal(t, float64(1), recorder.Calls())
	assert.Equal(t, float64(0), recorder.Failures())
}

func TestEngine_Debug(t *testing.T) {
	e, recorder := setup(t, func(ev function.Event, _ function.Context) string {
		fmt.Fprint(os.Stdout, "to stdout")
		fmt.Fprint(os.Stderr, "to stderr")
		return "rsp:" + string(ev.Data)
	})

	trace, err := e.Debug(function.Event{Data: []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, "rsp:x", trace.Response)
	assert.Equal(t, "to stdout", trace.Stdout)
	assert.Equal(t, "to stderr", trace.Stderr)
	assert.Nil(t, trace.Panic)
	assert.Equal(t, float64(1), recorder.Calls())
}

func TestEngine_DebugPanic(t *testing.T) {
	e, recorder := setup(t, func(function.Event, function.Context) string {
		fmt.Print("before")
		panic(errors.New("kaput"))
	}, WithStrictPanics())

	trace, err := e.Debug(function.Event{})
	require.NoError(t, err)

	require.NotNil(t, trace.Panic)
	assert.Equal(t, "panic: kaput", trace.Panic.Error())
	assert.Equal(t, "before", trace.Stdout)
	assert.Equal(t, float64(1), recorder.Failures())
}

func TestEngine_DebugRestoresStdio(t *testing.T) {
	stdout, stderr := os.Stdout, os.Stderr
	e, _ := setup(t, func(function.Event, function.Context) string { panic("x") })

	_, err := e.Debug(function.Event{})
	require.NoError(t, err)

	assert.Same(t, stdout, os.Stdout)
	assert.Same(t, stderr, os.Stderr)
}

func TestEngine_DebugExcludesInvoke(t *testing.T) {
	e, recorder := setup(t, func(function.Event, function.Context) string {
		fmt.Fprint(os.Stdout, ".")
		return "ok"
	})

	const n = 50
	traces := make(chan *Trace, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rsp, err := e.Invoke(function.Event{})
			assert.NoError(t, err)
			assert.Equal(t, "ok", rsp)
		}()
		go func() {
			defer wg.Done()
			trace, err := e.Debug(function.Event{})
			assert.NoError(t, err)
			traces <- trace
		}()
	}
	wg.Wait()
	close(traces)

	for trace := range traces {
		require.NotNil(t, trace)
		assert.Equal(t, ".", trace.Stdout)
	}
	assert.Equal(t, float64(2*n), recorder.Calls())
}

func TestHealth(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		code, body := Health(method)
		assert.Equal(t, http.StatusOK, code, method)
		assert.Equal(t, "OK", body, method)
	}
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions} {
		code, body := Health(method)
		assert.Equal(t, http.StatusBadRequest, code, method)
		assert.Equal(t, "Bad Request", body, method)
	}
}
