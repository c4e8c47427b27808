// Package function holds the values handed to a user function and the
// table used to pick which function a process serves.
package function

// Event contains information about one call to the user function.
type Event struct {
	// Data is the request payload. It is nil when the request carried no
	// payload, which is the case for every method but POST.
	Data []byte

	EventID        string
	EventType      string
	EventTime      string
	EventNamespace string
}

// HasData reports whether the call carried a payload. An empty POST body
// still counts as a payload.
func (e Event) HasData() bool {
	return e.Data != nil
}

// Context contains information about the environment the function runs in.
// It is built once at startup and is identical for every call.
type Context struct {
	FunctionName string
	Runtime      string

	// Timeout is advertised in seconds. It is not enforced.
	Timeout int

	// MemoryLimit is advertised in bytes; 0 means no limit was provided.
	MemoryLimit int64
}

// Handler is a function callable by the runtime.
type Handler func(Event, Context) string
