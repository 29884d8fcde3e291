package vte

import (
	"log/slog"

	"github.com/yangle/vte/internal/log"
)

// Option configures a [Builtins] registry.
type Option interface {
	apply(*config)
}

type config struct {
	logger *slog.Logger
	accel  bool
	defs   []builtinDef
}

func newConfig(opts ...Option) config {
	cfg := config{
		logger: log.Noop,
		accel:  true,
		defs:   builtinDefs,
	}
	for _, o := range opts {
		o.apply(&cfg)
	}
	return cfg
}

type withLogger struct {
	logger *slog.Logger
}

func (o withLogger) apply(c *config) {
	if o.logger != nil {
		c.logger = o.logger
	}
}

// WithLogger sets the registry logger. Defaults to a noop logger.
func WithLogger(l *slog.Logger) Option { return withLogger{l} }

type withoutAccel struct{}

func (withoutAccel) apply(c *config) { c.accel = false }

// WithoutAcceleration disables the acceleration tiers; matching falls
// back to unaccelerated scanning with identical results.
func WithoutAcceleration() Option { return withoutAccel{} }

type withDefs struct {
	defs []builtinDef
}

func (o withDefs) apply(c *config) { c.defs = o.defs }
