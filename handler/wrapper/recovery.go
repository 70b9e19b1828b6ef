package wrapper

import (
	"context"
	"fmt"
	"runtime"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/rxcommand/handler"
	"github.com/rise-and-shine/rxcommand/logger"
)

// CodePanicRecovered is the code of errors produced from recovered panics.
const CodePanicRecovered = "PANIC_RECOVERED"

type RecoveryWrapper[I handler.Input, R handler.Result] struct {
	logger logger.Logger
	next   handler.Handler[I, R]
}

// NewRecoveryWrapper turns a panic in the wrapped handler into an error.
func NewRecoveryWrapper[I handler.Input, R handler.Result](l logger.Logger, name string) handler.WrapFunc[I, R] {
	return func(next handler.Handler[I, R]) handler.Handler[I, R] {
		return &RecoveryWrapper[I, R]{
			logger: l.Named("handler.recovery").With("handler_name", name),
			next:   next,
		}
	}
}

func (w *RecoveryWrapper[I, R]) Execute(ctx context.Context, input I) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			stackTrace := make([]byte, 4096) // 4KB
			stackTrace = stackTrace[:runtime.Stack(stackTrace, false)]

			w.logger.
				WithContext(ctx).
				With("stack_trace", string(stackTrace)).
				With("panic_values", fmt.Sprintf("%v", r)).
				Error("panic recovered in recovery wrapper")

			var zero R
			result = zero
			err = errx.New("panic recovered in recovery wrapper",
				errx.WithCode(CodePanicRecovered),
				errx.WithDetails(errx.D{
					"stack_trace":  string(stackTrace),
					"panic_values": fmt.Sprintf("%v", r),
				}),
			)
		}
	}()

	return w.next.Execute(ctx, input)
}
