package engine

import (
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

type Option func(*Options)

type Options struct {
	// StrictPanics lets a handler panic escape Invoke instead of turning
	// it into an error.
	StrictPanics bool
	Logger       *logrus.Logger
}

var defaultOptions = &Options{
	StrictPanics: false,
	Logger:       nil,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

func WithStrictPanics() Option {
	return func(o *Options) {
		o.StrictPanics = true
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
