package wrapper

import (
	"context"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/rxcommand/handler"
	"github.com/rise-and-shine/rxcommand/val"
)

type ValidationWrapper[I handler.Input, R handler.Result] struct {
	next handler.Handler[I, R]
	name string
}

// NewValidationWrapper rejects inputs whose `validate` tags do not hold
// before the handler runs. Non-struct inputs pass through unchecked.
func NewValidationWrapper[I handler.Input, R handler.Result](name string) handler.WrapFunc[I, R] {
	return func(next handler.Handler[I, R]) handler.Handler[I, R] {
		return &ValidationWrapper[I, R]{next: next, name: name}
	}
}

func (w *ValidationWrapper[I, R]) Execute(ctx context.Context, input I) (R, error) {
	if val.IsStruct(input) {
		if err := val.ValidateSchema(input); err != nil {
			var zero R
			return zero, errx.Wrap(err, errx.WithDetails(errx.D{"handler_name": w.name}))
		}
	}
	return w.next.Execute(ctx, input)
}
