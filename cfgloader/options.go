package cfgloader

const defaultDir = "./config"

type options struct {
	silent      bool
	dir         string
	environment string
}

// Option configures MustLoad.
type Option func(*options)

// WithSilent disables printing the loaded config.
func WithSilent() Option {
	return func(o *options) {
		o.silent = true
	}
}

// WithDir sets the directory holding the per-environment files.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithEnvironment selects the environment instead of reading ENVIRONMENT.
func WithEnvironment(env string) Option {
	return func(o *options) {
		o.environment = env
	}
}

func buildOptions(opts []Option) options {
	o := options{dir: defaultDir}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
