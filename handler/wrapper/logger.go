package wrapper

import (
	"context"
	"time"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/rxcommand/handler"
	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/mask"
)

type LoggerWrapper[I handler.Input, R handler.Result] struct {
	logger logger.Logger
	next   handler.Handler[I, R]
	name   string
}

// NewLoggerWrapper logs every execution with its duration and its input, at
// info level on success and at error level, with the errx fields, on
// failure. Struct inputs are logged through mask.Value.
func NewLoggerWrapper[I handler.Input, R handler.Result](l logger.Logger, name string) handler.WrapFunc[I, R] {
	return func(next handler.Handler[I, R]) handler.Handler[I, R] {
		return &LoggerWrapper[I, R]{
			logger: l.Named("handler.logger").With("handler_name", name),
			next:   next,
			name:   name,
		}
	}
}

func (w *LoggerWrapper[I, R]) Execute(ctx context.Context, input I) (R, error) {
	start := time.Now()

	result, err := w.next.Execute(ctx, input)

	log := w.logger.
		WithContext(ctx).
		With("execution_time", time.Since(start).String()).
		With("input", mask.Value(input))

	if err != nil {
		e := errx.AsErrorX(err)
		log.With("error", map[string]any{
			"code":    e.Code(),
			"message": e.Error(),
			"type":    e.Type().String(),
			"trace":   e.Trace(),
			"fields":  e.Fields(),
			"details": e.Details(),
		}).Error("handler failed")
	} else {
		log.Info("handler executed")
	}

	return result, err
}
