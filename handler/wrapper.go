// Package handler turns typed business logic into an API Gateway HTTP
// handler.
//
// A Wrapper runs every request through a fixed sequence of stages: bind path
// parameters, parse the query string, validate the body, validate the query,
// authorize, call the handler and normalize its result. Any stage may end the
// request with a failure response; nothing escapes Invoke as an error or a
// panic.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/aura-studio/apifunc/response"
	"github.com/aura-studio/apifunc/schema"
	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

type Wrapper[B, Q, A any] struct {
	*Options
	def        Definition
	params     []string
	fn         HandlerFunc[B, Q, A]
	authorizer Authorizer[B, Q, A]
	logger     *zap.Logger

	body     *schema.Validator
	query    *schema.Validator
	response *schema.Validator

	running atomic.Int32
}

// Wrap validates def, compiles its schemas and returns a running wrapper
// around fn.
func Wrap[B, Q, A any](def Definition, fn HandlerFunc[B, Q, A], opts ...Option) (*Wrapper[B, Q, A], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: %s: nil handler", ErrInvalidDefinition, def.Route())
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	w := &Wrapper[B, Q, A]{
		Options: NewOptions(opts...),
		def:     def,
		params:  def.PathParameters(),
		fn:      fn,
	}
	w.logger = w.Options.logger()

	if w.Authorizer != nil {
		authorizer, ok := w.Authorizer.(Authorizer[B, Q, A])
		if !ok {
			return nil, fmt.Errorf("%w: %s: authorizer type %T does not match handler", ErrInvalidDefinition, def.Route(), w.Authorizer)
		}
		w.authorizer = authorizer
	}

	compiler := w.compiler()
	var err error
	if w.body, err = compiler.Compile(def.Body); err != nil {
		return nil, fmt.Errorf("%w: %s: body schema: %v", ErrInvalidDefinition, def.Route(), err)
	}
	if w.query, err = compiler.Compile(def.Query); err != nil {
		return nil, fmt.Errorf("%w: %s: query schema: %v", ErrInvalidDefinition, def.Route(), err)
	}
	if w.response, err = compiler.Compile(def.Response); err != nil {
		return nil, fmt.Errorf("%w: %s: response schema: %v", ErrInvalidDefinition, def.Route(), err)
	}

	w.running.Store(1)
	return w, nil
}

// MustWrap is like Wrap but panics on error. It suits package level
// registration.
func MustWrap[B, Q, A any](def Definition, fn HandlerFunc[B, Q, A], opts ...Option) *Wrapper[B, Q, A] {
	w, err := Wrap(def, fn, opts...)
	if err != nil {
		panic(err)
	}
	return w
}

func (w *Wrapper[B, Q, A]) Definition() Definition {
	return w.def
}

func (w *Wrapper[B, Q, A]) Start() {
	w.running.Store(1)
}

func (w *Wrapper[B, Q, A]) Stop() {
	w.running.Store(0)
}

func (w *Wrapper[B, Q, A]) IsRunning() bool {
	return w.running.Load() == 1
}

// Invoke handles one request. The returned error is always nil: every
// failure, including panics, is turned into a response value.
func (w *Wrapper[B, Q, A]) Invoke(ctx context.Context, req events.APIGatewayV2HTTPRequest) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = w.resolve(fmt.Errorf("panic: %v", r))
		}
	}()

	if !w.IsRunning() {
		return response.Failed(response.NewError(http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))).Envelope(), nil
	}

	if w.DebugMode {
		w.logger.Debug("request",
			zap.String("route", w.def.Route()),
			zap.String("path", req.RawPath),
			zap.String("query", req.RawQueryString),
		)
	}

	out, err := w.dispatch(ctx, &req)
	if err != nil {
		return w.resolve(err), nil
	}
	return out, nil
}

func (w *Wrapper[B, Q, A]) dispatch(ctx context.Context, req *events.APIGatewayV2HTTPRequest) (any, error) {
	path, err := w.bind(req.PathParameters)
	if err != nil {
		return nil, err
	}

	params, err := w.parseQuery(req)
	if err != nil {
		return nil, err
	}

	body, err := w.validateBody(req)
	if err != nil {
		return nil, err
	}

	q, err := w.validateQuery(params)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedEvent[B, Q]{
		APIGatewayV2HTTPRequest: *req,
		Input: Input[B, Q]{
			Body:  body,
			Query: q,
			Path:  path,
		},
	}

	auth, err := w.authorize(ctx, parsed)
	if err != nil {
		return nil, err
	}

	validated := &ValidatedEvent[B, Q, A]{
		APIGatewayV2HTTPRequest: parsed.APIGatewayV2HTTPRequest,
		Input: ValidatedInput[B, Q, A]{
			Body:  parsed.Input.Body,
			Query: parsed.Input.Query,
			Path:  parsed.Input.Path,
			Auth:  auth,
		},
	}

	result, err := w.fn(ctx, validated)
	if err != nil {
		return nil, handlerFailure(err)
	}
	if err := w.checkResponse(result); err != nil {
		return nil, err
	}
	return w.normalize(result)
}

// resolve turns err into the response sent to the caller. A *Failure
// carries its own response; anything else is a fault and gets a generic 500.
func (w *Wrapper[B, Q, A]) resolve(err error) any {
	var f *Failure
	if errors.As(err, &f) {
		w.logger.Debug("request failed",
			zap.String("route", w.def.Route()),
			zap.String("stage", string(f.Stage)),
			zap.Int("status", f.Err.Status),
			zap.Error(err),
		)
		return w.withDefaultHeaders(f.Response().Envelope())
	}

	w.logger.Error("request fault",
		zap.String("route", w.def.Route()),
		zap.Error(err),
	)
	return w.withDefaultHeaders(response.Failed(internalError()).Envelope())
}

// handlerFailure keeps the status of a *response.Error returned by business
// logic; other errors become a 500 carrying their message.
func handlerFailure(err error) error {
	var herr *response.Error
	if errors.As(err, &herr) {
		return fail(StageHandler, herr, err)
	}
	return fail(StageHandler, response.Internal(err.Error()), err)
}

// checkResponse enforces the response schema when configured to. Only data
// passed to response.Success is checked.
func (w *Wrapper[B, Q, A]) checkResponse(result any) error {
	if !w.ResponseValidation || w.response == nil {
		return nil
	}
	var r *response.Response
	switch val := result.(type) {
	case *response.Response:
		r = val
	case response.Response:
		r = &val
	default:
		return nil
	}
	if r == nil {
		return nil
	}
	data, ok := r.Data()
	if !ok {
		return nil
	}

	// typed data must reach the engine as plain JSON values
	generic, err := roundTrip(data)
	if err != nil {
		return fmt.Errorf("%s: %w", StageResponse, err)
	}

	if _, err := w.response.Validate(generic); err != nil {
		var invalid *schema.ValidationError
		if errors.As(err, &invalid) {
			return fail(StageResponse, response.Internal("response does not match its schema").
				WithCode(CodeResponseValidation), err)
		}
		return fmt.Errorf("%s: %w", StageResponse, err)
	}
	return nil
}
