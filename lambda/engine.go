// Package lambda serves the selected function behind an API Gateway
// proxy integration instead of a TCP listener.
package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/aura-studio/kubeless/engine"
	"github.com/aura-studio/kubeless/function"
	fnhttp "github.com/aura-studio/kubeless/http"
	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Engine struct {
	invoker *engine.Engine
	logger  *logrus.Logger
}

func NewEngine(invoker *engine.Engine) *Engine {
	return &Engine{
		invoker: invoker,
		logger:  invoker.Logger,
	}
}

// Invoke answers one proxy request with the same routes the HTTP server
// exposes for dispatch and liveness.
func (e *Engine) Invoke(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := req.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := e.logger.WithField(fnhttp.RequestIDKey, requestID)

	method := req.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	switch strings.TrimSuffix(req.Path, "/") {
	case "":
		ev, err := NewEvent(method, req)
		if err != nil {
			logger.WithError(err).Warn("failed to decode request body")
			return text(http.StatusInternalServerError, "Internal Server Error", requestID), nil
		}
		rsp, err := e.invoker.Invoke(ev)
		if err != nil {
			return text(http.StatusInternalServerError, "Internal Server Error", requestID), nil
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{fnhttp.HeaderRequestID: requestID},
			Body:       rsp,
		}, nil
	case "/healthz":
		code, body := engine.Health(method)
		return text(code, body, requestID), nil
	default:
		logger.WithField("path", req.Path).Debug("no route")
		return text(http.StatusNotFound, "404 page not found", requestID), nil
	}
}

// NewEvent mirrors the HTTP event mapping: only POST carries Data and the
// event headers are matched case-insensitively.
func NewEvent(method string, req events.APIGatewayProxyRequest) (function.Event, error) {
	header := http.Header{}
	for key, values := range req.MultiValueHeaders {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	for key, value := range req.Headers {
		if header.Get(key) == "" {
			header.Set(key, value)
		}
	}

	r := &http.Request{Method: method, Header: header}
	if method == http.MethodPost {
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return function.Event{}, err
			}
			body = decoded
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	return fnhttp.NewEvent(r)
}

func text(code int, body, requestID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers: map[string]string{
			"Content-Type":         "text/plain; charset=utf-8",
			fnhttp.HeaderRequestID: requestID,
		},
		Body: body,
	}
}
