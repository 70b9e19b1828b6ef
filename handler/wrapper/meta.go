package wrapper

import (
	"context"

	"github.com/rise-and-shine/rxcommand/handler"
	"github.com/rise-and-shine/rxcommand/meta"
	"github.com/rise-and-shine/rxcommand/tracing"
)

type MetaInjectWrapper[I handler.Input, R handler.Result] struct {
	name string
	next handler.Handler[I, R]
}

// NewMetaInjectWrapper stores the trace id, the handler name and the service
// info in the context of every execution.
func NewMetaInjectWrapper[I handler.Input, R handler.Result](name string) handler.WrapFunc[I, R] {
	return func(next handler.Handler[I, R]) handler.Handler[I, R] {
		return &MetaInjectWrapper[I, R]{name: name, next: next}
	}
}

func (w *MetaInjectWrapper[I, R]) Execute(ctx context.Context, input I) (R, error) {
	serviceName, serviceVersion := meta.Service()

	metadata := map[meta.ContextKey]string{
		meta.TraceID:        tracing.GetStartingTraceID(ctx),
		meta.CommandName:    w.name,
		meta.ServiceName:    serviceName,
		meta.ServiceVersion: serviceVersion,
	}

	return w.next.Execute(meta.InjectMetaToContext(ctx, metadata), input)
}
