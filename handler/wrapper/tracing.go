package wrapper

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/rxcommand/handler"
)

const tracerName = "rxcommand/handler"

type TracingWrapper[I handler.Input, R handler.Result] struct {
	tracer   trace.Tracer
	spanName string
	next     handler.Handler[I, R]
}

// NewTracingWrapper runs every execution in a span named after the handler,
// using the global tracer provider.
func NewTracingWrapper[I handler.Input, R handler.Result](name string) handler.WrapFunc[I, R] {
	return func(next handler.Handler[I, R]) handler.Handler[I, R] {
		return &TracingWrapper[I, R]{
			tracer:   otel.Tracer(tracerName),
			spanName: name,
			next:     next,
		}
	}
}

func (w *TracingWrapper[I, R]) Execute(ctx context.Context, input I) (R, error) {
	ctx, span := w.tracer.Start(ctx, w.spanName, trace.WithAttributes(
		attribute.String("handler.name", w.spanName),
	))
	defer span.End()

	result, err := w.next.Execute(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return result, err
}
