package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aura-studio/kubeless/engine"
	"github.com/aura-studio/kubeless/function"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestDebug_JSONReport(t *testing.T) {
	e, recorder := newTestEngine(t, func(ev function.Event, _ function.Context) string {
		fmt.Print("printing")
		return "done"
	}, nil, WithDebugMode())

	req := httptest.NewRequest(http.MethodPost, "/_/", strings.NewReader(`{"name":"World"}`))
	req.Header.Set("event-id", "42")
	resp, body := serve(e, req)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "42", gjson.Get(body, "event.event_id").String())
	assert.Equal(t, "World", gjson.Get(body, "event.data.name").String())
	assert.Equal(t, "say_hello", gjson.Get(body, "context.function_name").String())
	assert.Equal(t, int64(180), gjson.Get(body, "context.timeout").Int())
	assert.Equal(t, "done", gjson.Get(body, "response").String())
	assert.Equal(t, "printing", gjson.Get(body, "stdout").String())
	assert.Equal(t, gjson.Null, gjson.Get(body, "panic").Type)
	assert.Equal(t, float64(1), recorder.Calls())
}

func TestDebug_NonJSONAndMissingData(t *testing.T) {
	e, _ := newTestEngine(t, sayHello, nil, WithDebugMode())

	_, body := serve(e, httptest.NewRequest(http.MethodPost, "/_/", strings.NewReader("World")))
	assert.Equal(t, "World", gjson.Get(body, "event.data").String())
	assert.Equal(t, "Hello, World", gjson.Get(body, "response").String())

	_, body = serve(e, httptest.NewRequest(http.MethodGet, "/_/", nil))
	assert.Equal(t, gjson.Null, gjson.Get(body, "event.data").Type)
	assert.Equal(t, "Hello", gjson.Get(body, "response").String())
}

func TestDebug_Panic(t *testing.T) {
	e, recorder := newTestEngine(t, func(function.Event, function.Context) string {
		panic("boom")
	}, []engine.Option{engine.WithStrictPanics()}, WithDebugMode())

	resp, body := serve(e, httptest.NewRequest(http.MethodGet, "/_/", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "panic: boom", gjson.Get(body, "panic").String())
	assert.Equal(t, float64(1), recorder.Failures())
}

func TestDebug_ProtobufReport(t *testing.T) {
	e, _ := newTestEngine(t, sayHello, nil, WithDebugMode())

	req := httptest.NewRequest(http.MethodPost, "/_/", strings.NewReader("World"))
	req.Header.Set("Accept", MIMEProtobuf)
	resp, body := serve(e, req)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, MIMEProtobuf, resp.Header.Get("Content-Type"))

	var s structpb.Struct
	require.NoError(t, proto.Unmarshal([]byte(body), &s))
	assert.Equal(t, "Hello, World", s.GetFields()["response"].GetStringValue())
	assert.Equal(t, "say_hello", s.GetFields()["context"].GetStructValue().GetFields()["function_name"].GetStringValue())
}
