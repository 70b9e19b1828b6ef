// Package handler defines context-aware request/response units of work and
// the middleware type used to decorate them.
//
// Handlers are the synchronous building block behind reactive commands:
// command.FromHandler turns a (wrapped) handler into a command whose every
// invocation runs the handler once.
package handler

import "context"

type (
	// Input represents the input type for a handler.
	Input any

	// Result represents the result type for a handler.
	Result any
)

// Handler runs one unit of work.
type Handler[I Input, R Result] interface {
	// Execute processes the input and returns a result or error.
	//
	// Parameters:
	//   - ctx: Context for cancellation and deadlines.
	//   - input: The handler input.
	Execute(ctx context.Context, input I) (R, error)
}

// Operation is a Handler that carries its own stable identifier, used as
// the name of the command built from it.
type Operation[I Input, R Result] interface {
	Handler[I, R]

	// OperationID returns a unique identifier for the operation.
	OperationID() string
}

// Func adapts a plain function to a Handler.
type Func[I Input, R Result] func(ctx context.Context, input I) (R, error)

func (f Func[I, R]) Execute(ctx context.Context, input I) (R, error) {
	return f(ctx, input)
}

// WrapFunc decorates a Handler with a cross-cutting concern.
type WrapFunc[I Input, R Result] func(Handler[I, R]) Handler[I, R]

// Chain applies wraps to h so that the first wrap is the outermost one. If h
// is an Operation, so is the result, with the same id.
func Chain[I Input, R Result](h Handler[I, R], wraps ...WrapFunc[I, R]) Handler[I, R] {
	op, isOperation := h.(Operation[I, R])

	for i := len(wraps) - 1; i >= 0; i-- {
		h = wraps[i](h)
	}

	if isOperation {
		if _, ok := h.(Operation[I, R]); !ok {
			return operation[I, R]{Handler: h, id: op.OperationID()}
		}
	}
	return h
}

type operation[I Input, R Result] struct {
	Handler[I, R]

	id string
}

func (o operation[I, R]) OperationID() string {
	return o.id
}
