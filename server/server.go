// Package server wires configuration, the function registry and one of
// the transports into a running function runtime.
package server

import (
	"context"
	"fmt"

	"github.com/aura-studio/kubeless/config"
	"github.com/aura-studio/kubeless/engine"
	"github.com/aura-studio/kubeless/function"
	"github.com/aura-studio/kubeless/http"
	"github.com/aura-studio/kubeless/lambda"
	"github.com/aura-studio/kubeless/metrics"
	"github.com/sirupsen/logrus"
)

// Build selects the configured function out of fns and returns the
// engine that invokes it.
func Build(cfg *config.Config, logger *logrus.Logger, fns ...function.Function) (*engine.Engine, error) {
	registry, err := function.NewRegistry(fns...)
	if err != nil {
		return nil, err
	}
	for _, name := range registry.Duplicates() {
		logger.WithField("function", name).Warn("function registered more than once, keeping the first")
	}
	if len(cfg.Fallbacks) > 0 {
		logger.WithField("variables", cfg.Fallbacks).Debug("unparsable values replaced by defaults")
	}

	handler, err := registry.Select(cfg.Handler)
	if err != nil {
		return nil, err
	}

	recorder, err := metrics.NewRecorder()
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	if cfg.StrictPanics {
		opts = append(opts, engine.WithStrictPanics())
	}

	return engine.NewEngine(handler, cfg.FunctionContext(), recorder, opts...), nil
}

// Run serves the configured function until ctx is done.
func Run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, fns ...function.Function) error {
	e, err := Build(cfg, logger, fns...)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"function": cfg.Handler,
		"runtime":  cfg.Runtime,
		"mode":     cfg.Mode,
		"address":  cfg.Address(),
		"debug":    cfg.Debug,
	}).Info("starting function runtime")

	switch cfg.Mode {
	case config.ModeLambda:
		return lambda.Serve(ctx, lambda.NewEngine(e))
	default:
		opts := []http.Option{
			http.WithAddress(cfg.Address()),
			http.WithLogger(logger),
		}
		if cfg.Debug {
			opts = append(opts, http.WithDebugMode())
		}
		return http.Serve(ctx, http.NewEngine(e, opts...))
	}
}
