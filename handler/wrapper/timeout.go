package wrapper

import (
	"context"
	"time"

	"github.com/rise-and-shine/rxcommand/handler"
)

type TimeoutWrapper[I handler.Input, R handler.Result] struct {
	timeout time.Duration
	next    handler.Handler[I, R]
}

// NewTimeoutWrapper bounds every execution by timeout.
func NewTimeoutWrapper[I handler.Input, R handler.Result](timeout time.Duration) handler.WrapFunc[I, R] {
	return func(next handler.Handler[I, R]) handler.Handler[I, R] {
		return &TimeoutWrapper[I, R]{timeout: timeout, next: next}
	}
}

func (w *TimeoutWrapper[I, R]) Execute(ctx context.Context, input I) (R, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	return w.next.Execute(ctx, input)
}
