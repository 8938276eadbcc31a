package handler

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
)

// Input is the validated, not yet authorized part of a request.
type Input[B, Q any] struct {
	Body  B
	Query Q
	Path  map[string]string
}

// ParsedEvent is the raw request plus its validated input. It is what the
// authorization gate sees.
type ParsedEvent[B, Q any] struct {
	events.APIGatewayV2HTTPRequest
	Input Input[B, Q]
}

// ValidatedInput extends Input with the authorization context. Auth is nil
// when no gate ran.
type ValidatedInput[B, Q, A any] struct {
	Body  B
	Query Q
	Path  map[string]string
	Auth  *A
}

// ValidatedEvent is the only value handed to business logic.
type ValidatedEvent[B, Q, A any] struct {
	events.APIGatewayV2HTTPRequest
	Input ValidatedInput[B, Q, A]
}

// HandlerFunc is the business logic of a route. It may return a
// *response.Response, an API Gateway response, or any other value, which is
// passed through to the caller unchanged.
type HandlerFunc[B, Q, A any] func(ctx context.Context, ev *ValidatedEvent[B, Q, A]) (any, error)

// Authorizer inspects a parsed event and returns the authorization context.
// A nil context, an error or a panic all deny the request.
type Authorizer[B, Q, A any] func(ctx context.Context, ev *ParsedEvent[B, Q], def *Definition) (*A, error)
