// Package config reads the runtime configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/aura-studio/kubeless/function"
	"github.com/go-playground/validator/v10"
	"github.com/mohae/deepcopy"
)

const (
	EnvHandler     = "FUNC_HANDLER"
	EnvPort        = "FUNC_PORT"
	EnvTimeout     = "FUNC_TIMEOUT"
	EnvRuntime     = "FUNC_RUNTIME"
	EnvMemoryLimit = "FUNC_MEMORY_LIMIT"
)

const (
	DefaultPort        = 8080
	DefaultTimeout     = 180
	DefaultMemoryLimit = 0
)

const (
	ModeHTTP   = "http"
	ModeLambda = "lambda"
)

var ErrMissingHandler = errors.New("the " + EnvHandler + " environment variable must be provided")

type Config struct {
	// Function
	Handler     string `validate:"required"`
	Runtime     string
	Timeout     int   `validate:"min=0"`
	MemoryLimit int64 `validate:"min=0"`

	// Server
	Host         string
	Port         int    `validate:"min=1,max=65535"`
	Mode         string `validate:"oneof=http lambda"`
	Debug        bool
	StrictPanics bool

	// Log
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	// Fallbacks lists environment variables whose value could not be parsed
	// and was replaced by the default.
	Fallbacks []string
}

type Option func(*Config)

var defaultConfig = &Config{
	Handler:     "",
	Runtime:     "",
	Timeout:     DefaultTimeout,
	MemoryLimit: DefaultMemoryLimit,
	Host:        "",
	Port:        DefaultPort,
	Mode:        ModeHTTP,
	LogLevel:    "info",
	LogFormat:   "text",
	Fallbacks:   []string{},
}

var validate = validator.New()

func New(opts ...Option) *Config {
	c := deepcopy.Copy(defaultConfig).(*Config)
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(string) (string, bool)

// Load builds the configuration from defaults, opts and then the
// environment, and validates the result. Numeric variables that do not
// parse keep the value of the layer below.
func Load(lookup LookupFunc, opts ...Option) (*Config, error) {
	return LoadWithOverrides(lookup, opts, nil)
}

// LoadWithOverrides is Load with a last layer, applied after the
// environment, for command line flags. Validation runs once on the
// merged result.
func LoadWithOverrides(lookup LookupFunc, opts []Option, overrides []Option) (*Config, error) {
	c := New(opts...)
	if lookup != nil {
		c.applyEnv(lookup)
	}
	for _, opt := range overrides {
		if opt != nil {
			opt(c)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup LookupFunc) {
	if v, ok := lookup(EnvHandler); ok && v != "" {
		c.Handler = v
	}
	if v, ok := lookup(EnvRuntime); ok {
		c.Runtime = v
	}
	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || port < 1 || port > 65535 {
			c.Fallbacks = append(c.Fallbacks, EnvPort)
		} else {
			c.Port = port
		}
	}
	if v, ok := lookup(EnvTimeout); ok {
		timeout, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || timeout < 0 {
			c.Fallbacks = append(c.Fallbacks, EnvTimeout)
		} else {
			c.Timeout = timeout
		}
	}
	if v, ok := lookup(EnvMemoryLimit); ok {
		limit, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || limit < 0 {
			c.Fallbacks = append(c.Fallbacks, EnvMemoryLimit)
		} else {
			c.MemoryLimit = limit
		}
	}
}

func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Field() == "Handler" {
			return ErrMissingHandler
		}
		msgs = append(msgs, fmt.Sprintf("%s=%v fails %q", fe.Field(), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(msgs, "; "))
}

// Address is the host:port the HTTP server binds to.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// FunctionContext is the context handed to every call of the function.
func (c *Config) FunctionContext() function.Context {
	return function.Context{
		FunctionName: c.Handler,
		Runtime:      c.Runtime,
		Timeout:      c.Timeout,
		MemoryLimit:  c.MemoryLimit,
	}
}

func WithHandler(name string) Option {
	return func(c *Config) {
		c.Handler = name
	}
}

func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

func WithHost(host string) Option {
	return func(c *Config) {
		c.Host = host
	}
}

func WithMode(mode string) Option {
	return func(c *Config) {
		if mode != "" {
			c.Mode = mode
		}
	}
}

func WithDebug(debug bool) Option {
	return func(c *Config) {
		c.Debug = debug
	}
}

func WithStrictPanics(strict bool) Option {
	return func(c *Config) {
		c.StrictPanics = strict
	}
}

func WithLog(level, format string) Option {
	return func(c *Config) {
		if level != "" {
			c.LogLevel = level
		}
		if format != "" {
			c.LogFormat = format
		}
	}
}
