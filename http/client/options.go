package client

import (
	"net/http"
	"time"

	"github.com/mohae/deepcopy"
)

// HTTPClient is the subset of *http.Client the client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	HTTPClient     HTTPClient
	BaseURL        string
	DefaultTimeout time.Duration
	Headers        map[string]string
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

var defaultOptions = &Options{
	HTTPClient:     nil,
	BaseURL:        "http://localhost:8080",
	DefaultTimeout: 30 * time.Second,
	Headers:        map[string]string{},
}

func NewOptions(opts ...Option) *Options {
	o := deepcopy.Copy(defaultOptions).(*Options)
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	return o
}

func WithHTTPClient(client HTTPClient) Option {
	return OptionFunc(func(o *Options) {
		o.HTTPClient = client
	})
}

func WithBaseURL(baseURL string) Option {
	return OptionFunc(func(o *Options) {
		o.BaseURL = baseURL
	})
}

func WithTimeout(timeout time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultTimeout = timeout
	})
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return OptionFunc(func(o *Options) {
		o.Headers[key] = value
	})
}
