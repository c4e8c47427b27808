package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	*Engine
	srv *http.Server
	ln  net.Listener
}

// Listen binds e.Address. A bind failure is reported with the port so
// that startup can fail with a useful message.
func Listen(e *Engine) (*Server, error) {
	ln, err := net.Listen("tcp", e.Address)
	if err != nil {
		port := e.Address
		if _, p, splitErr := net.SplitHostPort(e.Address); splitErr == nil {
			port = p
		}
		return nil, fmt.Errorf("can not bind to port %s: %w", port, err)
	}

	return &Server{
		Engine: e,
		srv: &http.Server{
			Handler:           e,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ln: ln,
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve blocks until ctx is done or the server fails. In-flight requests
// get a few seconds to drain on shutdown.
func (s *Server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Serve listens on e.Address and serves until ctx is done.
func Serve(ctx context.Context, e *Engine) error {
	s, err := Listen(e)
	if err != nil {
		return err
	}
	e.Logger.WithField("address", s.Addr().String()).Info("serving function")
	return s.Serve(ctx)
}
