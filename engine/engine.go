// Package engine invokes the selected user function. It brackets every
// call with the call metrics and decides what a handler panic turns into.
package engine

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aura-studio/kubeless/function"
	"github.com/aura-studio/kubeless/logging"
	"github.com/aura-studio/kubeless/metrics"
)

var ErrHandlerPanic = errors.New("engine: function panicked")

// PanicError carries a recovered handler panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	return ErrHandlerPanic
}

type Engine struct {
	*Options
	handler  function.Handler
	context  function.Context
	recorder *metrics.Recorder

	// held for writing while Debug swaps os.Stdout and os.Stderr, for
	// reading by every Invoke
	stdioMu sync.RWMutex
}

func NewEngine(handler function.Handler, ctx function.Context, recorder *metrics.Recorder, opts ...Option) *Engine {
	e := &Engine{
		Options:  NewOptions(opts...),
		handler:  handler,
		context:  ctx,
		recorder: recorder,
	}
	if e.Logger == nil {
		e.Logger = logging.Discard()
	}
	return e
}

func (e *Engine) Context() function.Context {
	return e.context
}

func (e *Engine) Recorder() *metrics.Recorder {
	return e.recorder
}

// Invoke calls the function once with ev. The call counter and the
// duration timer bracket the handler only. Unless StrictPanics is set a
// handler panic is recovered, counted as a failure and returned as a
// *PanicError.
//
// No deadline is applied: Context.Timeout is informational and a hung
// handler holds its goroutine until it returns. Invoke waits while a
// Debug capture is running.
func (e *Engine) Invoke(ev function.Event) (string, error) {
	e.stdioMu.RLock()
	defer e.stdioMu.RUnlock()

	var rsp string
	call := func() {
		e.recorder.Observe(func() {
			rsp = e.handler(ev, e.context)
		})
	}

	if e.StrictPanics {
		call()
		return rsp, nil
	}

	if err := doSafe(call); err != nil {
		e.recorder.Failure()
		e.Logger.WithError(err).
			WithField("function", e.context.FunctionName).
			WithField("stack", string(err.Stack)).
			Error("function panicked")
		return "", err
	}
	return rsp, nil
}

// Trace is the outcome of a debug invocation.
type Trace struct {
	Response string
	Stdout   string
	Stderr   string
	Panic    *PanicError
	Duration time.Duration
}

// Debug invokes the function like Invoke while capturing what it writes
// to stdout and stderr. Panics are always recovered into Trace.Panic.
// Debug excludes every other call, Invoke included, until it returns.
func (e *Engine) Debug(ev function.Event) (*Trace, error) {
	e.stdioMu.Lock()
	defer e.stdioMu.Unlock()

	trace := &Trace{}
	stdout, stderr, panicErr, err := doDebug(func() {
		start := time.Now()
		defer func() { trace.Duration = time.Since(start) }()
		e.recorder.Observe(func() {
			trace.Response = e.handler(ev, e.context)
		})
	})
	if err != nil {
		return nil, err
	}
	if panicErr != nil {
		e.recorder.Failure()
		trace.Panic = panicErr
	}
	trace.Stdout = stdout
	trace.Stderr = stderr

	return trace, nil
}

// Health answers a liveness probe made with method.
func Health(method string) (int, string) {
	switch method {
	case http.MethodGet, http.MethodHead:
		return http.StatusOK, "OK"
	default:
		return http.StatusBadRequest, "Bad Request"
	}
}
