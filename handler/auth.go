package handler

import (
	"context"
	"fmt"

	"github.com/aura-studio/apifunc/response"
	"go.uber.org/zap"
)

// authorize runs the gate. Denials, errors and panics all end in the same
// 403; the reason is only logged.
func (w *Wrapper[B, Q, A]) authorize(ctx context.Context, ev *ParsedEvent[B, Q]) (auth *A, err error) {
	if w.authorizer == nil || w.def.DisableAuth {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			auth, err = nil, w.deny(fmt.Errorf("panic: %v", r))
		}
	}()

	auth, reason := w.authorizer(ctx, ev, &w.def)
	if reason != nil {
		return nil, w.deny(reason)
	}
	if auth == nil {
		return nil, w.deny(ErrUnauthorized)
	}
	return auth, nil
}

func (w *Wrapper[B, Q, A]) deny(reason error) error {
	w.logger.Debug("authorization denied",
		zap.String("route", w.def.Route()),
		zap.Error(reason),
	)
	return fail(StageAuthorize, response.Forbidden(unauthorizedMessage).WithCode(CodeUnauthorized), reason)
}
