package httpserver

import (
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"
)

type Option interface {
	Apply(o *Options)
}

type HttpOption func(*Options)

func (f HttpOption) Apply(o *Options) { f(o) }

type Options struct {
	Address   string
	DebugMode bool
	CorsMode  bool
	Stage     string
	Logger    *zap.Logger
}

var defaultOptions = &Options{
	Address:   ":8080",
	DebugMode: false,
	CorsMode:  false,
	Stage:     "$default",
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
}

func (o *Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	if o.DebugMode {
		if l, err := zap.NewDevelopment(); err == nil {
			return l
		}
	}
	return zap.NewNop()
}

// -------------- Http Options ----------------

func WithAddress(addr string) Option {
	return HttpOption(func(o *Options) {
		o.Address = addr
	})
}

func WithDebugMode() Option {
	return HttpOption(func(o *Options) {
		o.DebugMode = true
	})
}

func WithCors() Option {
	return HttpOption(func(o *Options) {
		o.CorsMode = true
	})
}

// WithStage sets the stage name reported in the request context.
func WithStage(stage string) Option {
	return HttpOption(func(o *Options) {
		o.Stage = stage
	})
}

func WithLogger(logger *zap.Logger) Option {
	return HttpOption(func(o *Options) {
		o.Logger = logger
	})
}
