// Command hello serves one of a few example functions, picked with
// FUNC_HANDLER.
package main

import (
	"errors"
	"strings"

	"github.com/aura-studio/kubeless/function"
	"github.com/aura-studio/kubeless/server"
)

var errNoData = errors.New("echo_or_panic: request has no data")

func sayHello(ev function.Event, _ function.Context) string {
	if !ev.HasData() {
		return "Hello"
	}
	return "Hello, " + text(ev.Data)
}

func sayGoodbye(ev function.Event, _ function.Context) string {
	if !ev.HasData() {
		return "Goodbye"
	}
	return "Goodbye, " + text(ev.Data)
}

// echoOrPanic echoes the body and panics on requests without one.
func echoOrPanic(ev function.Event, _ function.Context) string {
	if !ev.HasData() {
		panic(errNoData)
	}
	return text(ev.Data)
}

func text(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

func main() {
	server.Main(
		function.Func("say_hello", sayHello),
		function.Func("say_goodbye", sayGoodbye),
		function.Func("echo_or_panic", echoOrPanic),
	)
}
