package command

import (
	"context"

	"github.com/rise-and-shine/rxcommand/rx"
)

// Command is something that can be invoked with a parameter.
type Command[P any, R any] interface {
	// Execute returns a handle for one invocation. The action starts when the
	// handle gets its first subscriber; subscribers of the same handle share
	// the invocation and receive only the last value the action produced.
	Execute(param P) rx.Source[R]

	// ExecuteAsync runs one invocation and waits for its last value and for
	// its Finished event to be accounted. It must not be called from an
	// observer of the command's own signals.
	ExecuteAsync(ctx context.Context, param P) (R, error)
}

// ExecutionInfo exposes the observable state of a command.
type ExecutionInfo[R any] interface {
	// Results emits every value produced by every invocation. It never
	// fails and never completes.
	Results() rx.Source[R]

	// Errors emits every failure of an invocation or of the enablement
	// source. It never completes.
	Errors() rx.Source[error]

	// IsExecuting is true while at least one invocation is in flight.
	IsExecuting() rx.Signal[bool]

	// CanExecute is the latest enablement value AND NOT IsExecuting.
	CanExecute() rx.Signal[bool]
}

// Observable is implemented by commands that expose their lifecycle to
// forwarders and recorders.
type Observable[R any] interface {
	Name() string
	Executions() rx.Source[ExecutionEvent[R]]
	Errors() rx.Source[error]
}

// Action is the unit of work behind a command. It is called once per
// activated invocation.
type Action[P any, R any] func(param P) rx.Source[R]
