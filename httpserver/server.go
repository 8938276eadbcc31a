package httpserver

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var srv *http.Server

// Serve listens on the configured address until Close is called.
func Serve(routes []Route, opts ...Option) error {
	e := NewEngine(opts...)
	for _, route := range routes {
		e.Register(route)
	}

	srv = &http.Server{
		Addr:    e.Address,
		Handler: e,
	}

	e.logger.Info("listening", zap.String("address", e.Address))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}
