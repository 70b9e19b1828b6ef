package command

import (
	"context"

	"github.com/rise-and-shine/rxcommand/handler"
	"github.com/rise-and-shine/rxcommand/rx"
)

// FromSource creates a command whose action returns a stream of values.
func FromSource[P any, R any](action Action[P, R], opts ...Option) *ReactiveCommand[P, R] {
	return newReactiveCommand(action, opts)
}

// FromFunc creates a command whose action produces a single value. The
// function runs on its own goroutine for every invocation; its context is
// cancelled when the invocation is cancelled.
func FromFunc[P any, R any](fn func(ctx context.Context, param P) (R, error), opts ...Option) *ReactiveCommand[P, R] {
	return newReactiveCommand(func(param P) rx.Source[R] {
		return rx.FromFunc(func(ctx context.Context) (R, error) {
			return fn(ctx, param)
		})
	}, opts)
}

// FromHandler creates a command backed by h. Wrap h with the handler/wrapper
// middleware before passing it in to get logging, tracing or timeouts per
// invocation. If h is a handler.Operation its id is the default name;
// handler.Chain keeps that id across the wrappers.
func FromHandler[P any, R any](h handler.Handler[P, R], opts ...Option) *ReactiveCommand[P, R] {
	if op, ok := h.(handler.Operation[P, R]); ok {
		opts = append([]Option{WithName(op.OperationID())}, opts...)
	}
	return FromFunc(h.Execute, opts...)
}

// New creates a command that echoes its parameter as its result. It is
// useful as a no-op command and in tests.
func New[P any](opts ...Option) *ReactiveCommand[P, P] {
	return newReactiveCommand(func(param P) rx.Source[P] {
		return rx.Just(param)
	}, opts)
}
