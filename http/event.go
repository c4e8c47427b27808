package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/aura-studio/kubeless/function"
)

const (
	HeaderEventID        = "event-id"
	HeaderEventType      = "event-type"
	HeaderEventTime      = "event-time"
	HeaderEventNamespace = "event-namespace"
)

// NewEvent builds the Event for r. Only POST requests have their body
// read; for every other method Data stays nil.
func NewEvent(r *http.Request) (function.Event, error) {
	ev := function.Event{
		EventID:        headerValue(r.Header, HeaderEventID),
		EventType:      headerValue(r.Header, HeaderEventType),
		EventTime:      headerValue(r.Header, HeaderEventTime),
		EventNamespace: headerValue(r.Header, HeaderEventNamespace),
	}

	if r.Method != http.MethodPost {
		return ev, nil
	}

	data := []byte{}
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return ev, fmt.Errorf("read request body: %w", err)
		}
		if b != nil {
			data = b
		}
	}
	ev.Data = data

	return ev, nil
}

// headerValue returns the first value of key, or "" when it is missing or
// holds anything but visible ASCII and tabs.
func headerValue(h http.Header, key string) string {
	v := h.Get(key)
	for i := 0; i < len(v); i++ {
		if b := v[i]; b != '\t' && (b < 0x20 || b > 0x7e) {
			return ""
		}
	}
	return v
}
