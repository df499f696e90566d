package usecase

import (
	"log/slog"

	"search/internal/adapter/metrics"
	"search/internal/logger"
)

type options struct {
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a use case.
type Option func(*options)

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(component string, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.WithComponent(component)
	} else {
		o.logger = o.logger.With("component", component)
	}
	return o
}
