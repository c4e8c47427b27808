package http

import (
	"net/http"
	"strings"

	"github.com/aura-studio/kubeless/engine"
	"github.com/aura-studio/kubeless/function"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const MIMEProtobuf = "application/x-protobuf"

// Debug invokes the function like Dispatch and answers with a report of
// the call instead of the bare response.
func (e *Engine) Debug(c *gin.Context) {
	ev, err := NewEvent(c.Request)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		c.Abort()
		return
	}

	trace, err := e.invoker.Debug(ev)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		c.Abort()
		return
	}

	report, err := formatDebug(ev, e.invoker.Context(), trace)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		c.Abort()
		return
	}

	if strings.Contains(c.GetHeader("Accept"), MIMEProtobuf) {
		b, err := protoDebug(report)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			c.Abort()
			return
		}
		c.Data(http.StatusOK, MIMEProtobuf, b)
		c.Abort()
		return
	}

	c.Data(http.StatusOK, gin.MIMEJSON, []byte(report))
	c.Abort()
}

func formatDebug(ev function.Event, ctx function.Context, trace *engine.Trace) (string, error) {
	var (
		report = "{}"
		err    error
	)
	set := func(path string, value any) {
		if err == nil {
			report, err = sjson.Set(report, path, value)
		}
	}

	set("event.event_id", ev.EventID)
	set("event.event_type", ev.EventType)
	set("event.event_time", ev.EventTime)
	set("event.event_namespace", ev.EventNamespace)
	switch {
	case !ev.HasData():
		set("event.data", nil)
	case gjson.ValidBytes(ev.Data):
		if err == nil {
			report, err = sjson.SetRaw(report, "event.data", string(ev.Data))
		}
	default:
		set("event.data", string(ev.Data))
	}

	set("context.function_name", ctx.FunctionName)
	set("context.runtime", ctx.Runtime)
	set("context.timeout", ctx.Timeout)
	set("context.memory_limit", ctx.MemoryLimit)

	set("response", trace.Response)
	set("stdout", trace.Stdout)
	set("stderr", trace.Stderr)
	set("duration_seconds", trace.Duration.Seconds())
	if trace.Panic != nil {
		set("panic", trace.Panic.Error())
	} else {
		set("panic", nil)
	}

	return report, err
}

func protoDebug(report string) ([]byte, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal([]byte(report), &s); err != nil {
		return nil, err
	}
	return proto.Marshal(&s)
}
