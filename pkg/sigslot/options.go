package sigslot

import "log/slog"

// Option is a functional option for configuring signals.
type Option func(*options)

// options holds configuration for signal behavior.
type options struct {
	name   string
	logger logger
}

// WithName labels the signal. The name appears in debug logs and is the
// label used by instrumentation wrappers. Unnamed signals share the empty
// label.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger enables structured debug logging of connect, disconnect, and
// emit. By default signals log nothing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger{l: l}
	}
}

// applyOptions applies the given options and returns the resulting config.
func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// logger is a nil-safe wrapper so the hot path needs no nil checks at
// call sites.
type logger struct {
	l *slog.Logger
}

func (lg logger) Debug(msg string, args ...any) {
	if lg.l != nil {
		lg.l.Debug(msg, args...)
	}
}
