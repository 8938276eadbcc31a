// Package server starts a wrapped handler either inside the Lambda runtime
// or behind the local HTTP emulator.
package server

import (
	"os"

	"github.com/aura-studio/apifunc/httpserver"
	"github.com/aws/aws-lambda-go/lambda"
)

const (
	ModeLambda = "lambda"
	ModeHTTP   = "http"

	runtimeAPIEnv = "AWS_LAMBDA_RUNTIME_API"
)

func NewOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}
	return options
}

// ResolveMode returns the configured mode, falling back to ModeLambda inside
// the Lambda runtime and ModeHTTP elsewhere.
func (o *Options) ResolveMode() string {
	if o.Mode != "" {
		return o.Mode
	}
	if os.Getenv(runtimeAPIEnv) != "" {
		return ModeLambda
	}
	return ModeHTTP
}

// Handler adapts route to the Lambda runtime.
func Handler(route httpserver.Route) lambda.Handler {
	return lambda.NewHandler(route.Invoke)
}

// Serve blocks serving route. In Lambda mode it never returns.
func Serve(route httpserver.Route, opts ...Option) error {
	options := NewOptions(opts...)

	switch options.ResolveMode() {
	case ModeLambda:
		lambda.Start(route.Invoke)
		return nil
	default:
		return httpserver.Serve([]httpserver.Route{route}, options.Http...)
	}
}

func Close() error {
	return httpserver.Close()
}
