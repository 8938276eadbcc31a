package handler

import (
	"github.com/aura-studio/apifunc/schema"
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	DebugMode          bool
	ResponseValidation bool // enforce the response schema against Success data
	CoerceTypes        bool
	RemoveAdditional   bool
	DefaultHeaders     map[string]string

	Logger     *zap.Logger
	Compiler   *schema.Compiler
	Authorizer any // an Authorizer[B, Q, A] matching the wrapper's type parameters
}

var defaultOptions = &Options{
	DebugMode:          false,
	ResponseValidation: false,
	CoerceTypes:        true,
	RemoveAdditional:   true,
	DefaultHeaders:     map[string]string{},
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

// logger returns the configured logger, building one from DebugMode when
// none was given.
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

// compiler returns the injected compiler or a fresh one honoring the
// coercion policies.
func (o *Options) compiler() *schema.Compiler {
	if o.Compiler != nil {
		return o.Compiler
	}
	return schema.NewCompiler(
		schema.WithCoerceTypes(o.CoerceTypes),
		schema.WithRemoveAdditional(o.RemoveAdditional),
	)
}

// -------------- Handler Options ----------------

func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

func WithLogger(logger *zap.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}

// WithCompiler shares one schema compiler between wrappers. When set, the
// coercion options of this package are ignored in favor of the compiler's.
func WithCompiler(c *schema.Compiler) Option {
	return OptionFunc(func(o *Options) {
		o.Compiler = c
	})
}

// WithAuthorizer installs the authorization gate. Its type parameters must
// match those of the wrapper it is passed to.
func WithAuthorizer[B, Q, A any](fn Authorizer[B, Q, A]) Option {
	return OptionFunc(func(o *Options) {
		if fn == nil {
			o.Authorizer = nil
			return
		}
		o.Authorizer = fn
	})
}

func WithResponseValidation(enforce bool) Option {
	return OptionFunc(func(o *Options) {
		o.ResponseValidation = enforce
	})
}

func WithCoerceTypes(coerce bool) Option {
	return OptionFunc(func(o *Options) {
		o.CoerceTypes = coerce
	})
}

func WithRemoveAdditional(remove bool) Option {
	return OptionFunc(func(o *Options) {
		o.RemoveAdditional = remove
	})
}

// WithDefaultHeader adds a header to every enveloped response that does not
// already set it.
func WithDefaultHeader(key, value string) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultHeaders[key] = value
	})
}
