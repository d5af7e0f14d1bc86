package option

import (
	"github.com/bgrewell/dvd-kit/pkg/logging"
)

// Options is shared by the decoder, the chain index builder and the navigation cursor.
type Options struct {
	Logger           *logging.Logger
	StrictCategories bool
}

// Option modifies Options.
type Option func(*Options)

// Apply builds Options from the defaults and opts.
func Apply(opts ...Option) *Options {
	o := &Options{
		Logger:           logging.DefaultLogger(),
		StrictCategories: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Logger sets the logger of a component. A nil logger keeps the discarding default.
func Logger(logger *logging.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// StrictCategories selects whether unknown cell block type bits fail the build (true) or are treated as ordinary cells.
func StrictCategories(strict bool) Option {
	return func(o *Options) {
		o.StrictCategories = strict
	}
}
