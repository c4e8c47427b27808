package function

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoFunctions = errors.New("function: no functions registered")

// Function pairs a handler with the name it is selected by.
type Function struct {
	Name    string
	Handler Handler
}

// Func is shorthand for building a Function.
func Func(name string, handler Handler) Function {
	return Function{Name: name, Handler: handler}
}

// NotFoundError is returned by Select when no function carries the
// requested name.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no function named %q available, available functions are: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// Registry is the read-only table of functions a process was built with.
type Registry struct {
	functions  []Function
	index      map[string]Handler
	duplicates []string
}

func NewRegistry(fns ...Function) (*Registry, error) {
	if len(fns) == 0 {
		return nil, ErrNoFunctions
	}

	r := &Registry{
		functions: make([]Function, 0, len(fns)),
		index:     make(map[string]Handler, len(fns)),
	}
	for i, fn := range fns {
		if fn.Name == "" {
			return nil, fmt.Errorf("function: candidate %d has an empty name", i)
		}
		if fn.Handler == nil {
			return nil, fmt.Errorf("function: candidate %q has a nil handler", fn.Name)
		}
		r.functions = append(r.functions, fn)

		// first registration wins
		if _, ok := r.index[fn.Name]; ok {
			r.duplicates = append(r.duplicates, fn.Name)
			continue
		}
		r.index[fn.Name] = fn.Handler
	}

	return r, nil
}

// Names returns every candidate name in registration order, duplicates
// included.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for _, fn := range r.functions {
		names = append(names, fn.Name)
	}
	return names
}

// Duplicates returns names registered more than once, one entry per
// shadowed registration.
func (r *Registry) Duplicates() []string {
	return append([]string(nil), r.duplicates...)
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.index[name]
	return h, ok
}

// Select resolves name to its handler. It is meant to be called once at
// startup; a *NotFoundError is fatal for the process.
func (r *Registry) Select(name string) (Handler, error) {
	if h, ok := r.Lookup(name); ok {
		return h, nil
	}
	return nil, &NotFoundError{Name: name, Available: r.Names()}
}
