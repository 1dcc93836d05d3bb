package bootstrap

import (
	"io"
	"os"

	"github.com/kbukum/svcapp/di"
	"github.com/kbukum/svcapp/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger    *logger.Logger
	container di.Container
	exit      func(code int)
	summary   io.Writer
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{exit: os.Exit}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger. It is equivalent to calling
// UseLogger before Bootstrap.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithContainer supplies an externally owned DI container. The App neither
// bootstraps nor closes it; the caller does.
func WithContainer(c di.Container) Option {
	return func(o *appOptions) {
		o.container = c
	}
}

// WithExitFunc replaces os.Exit as the function receiving the final exit
// code. Tests use it to observe the outcome without ending the process.
func WithExitFunc(fn func(code int)) Option {
	return func(o *appOptions) {
		if fn != nil {
			o.exit = fn
		}
	}
}

// WithSummary prints a startup summary of the managed components to w once
// the program has been started.
func WithSummary(w io.Writer) Option {
	return func(o *appOptions) {
		o.summary = w
	}
}
