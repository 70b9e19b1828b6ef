package command

import (
	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/rx"
)

const defaultName = "command"

type options struct {
	canExecute rx.Source[bool]
	logger     logger.Logger
	name       string
}

// Option configures a command at construction.
type Option func(*options)

// WithCanExecute sets the enablement source. The command subscribes to it
// once, at construction. Without it the command is always enabled.
func WithCanExecute(source rx.Source[bool]) Option {
	return func(o *options) {
		o.canExecute = source
	}
}

// WithLogger sets the logger used by the command.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithName names the command in logs.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func buildOptions(opts []Option) options {
	o := options{name: defaultName}
	for _, opt := range opts {
		opt(&o)
	}
	if o.canExecute == nil {
		o.canExecute = rx.Just(true)
	}
	if o.logger == nil {
		o.logger = logger.Named("rxcommand")
	}
	o.logger = o.logger.Named(o.name)
	return o
}
