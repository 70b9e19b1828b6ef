package command

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/rx"
)

// ReactiveCommand is the command engine. Create one with FromSource,
// FromFunc, FromHandler or New.
//
// All lifecycle events of all invocations flow through one internal
// execution channel; the in-flight count and every derived signal are
// updated from it inside a per-command serial queue, so every observer sees
// the same order of events.
type ReactiveCommand[P any, R any] struct {
	action Action[P, R]
	name   string
	logger logger.Logger

	queue serialQueue

	executions  *rx.Subject[ExecutionEvent[R]]
	results     *rx.Subject[R]
	errors      *rx.Subject[error]
	isExecuting *rx.State[bool]
	canExecute  *rx.State[bool]

	// Owned by the serial queue.
	inFlight         int
	enabled          bool
	enablementFailed bool

	lastInvocation atomic.Uint64

	enablement  rx.Subscription
	disposeOnce sync.Once
}

var (
	_ Command[any, any]  = (*ReactiveCommand[any, any])(nil)
	_ ExecutionInfo[any] = (*ReactiveCommand[any, any])(nil)
	_ Observable[any]    = (*ReactiveCommand[any, any])(nil)
)

func newReactiveCommand[P any, R any](action Action[P, R], opts []Option) *ReactiveCommand[P, R] {
	o := buildOptions(opts)

	c := &ReactiveCommand[P, R]{
		action:      action,
		name:        o.name,
		logger:      o.logger,
		executions:  rx.NewSubject[ExecutionEvent[R]](),
		results:     rx.NewSubject[R](),
		errors:      rx.NewSubject[error](),
		isExecuting: rx.NewState(false),
		canExecute:  rx.NewState(true),
		enabled:     true,
	}

	c.executions.Subscribe(rx.OnValue(c.aggregate))

	c.enablement = o.canExecute.Subscribe(rx.ObserverFuncs[bool]{
		Next:  c.onEnablement,
		Error: c.onEnablementError,
	})

	return c
}

// Execute returns the handle of a new invocation. Nothing happens until the
// handle is subscribed.
func (c *ReactiveCommand[P, R]) Execute(param P) rx.Source[R] {
	return &invocation[P, R]{cmd: c, param: param}
}

// ExecuteAsync subscribes to a new invocation and waits for it. It returns
// the last value produced, the action's error unchanged, an error with code
// CodeNoResult if the action produced nothing, or ctx.Err() if ctx is done
// first, in which case the invocation is cancelled. On return the
// invocation's Finished event has been accounted in IsExecuting and
// CanExecute.
//
// Observers of this command's signals run inside its serial queue, and an
// invocation started from one of them cannot progress until that observer
// returns. Calling ExecuteAsync from such an observer therefore waits until
// ctx is done; subscribe to Execute there instead.
func (c *ReactiveCommand[P, R]) ExecuteAsync(ctx context.Context, param P) (R, error) {
	inv := &invocation[P, R]{cmd: c, param: param}

	value, ok, err := rx.Last(ctx, inv)
	inv.awaitFinished(ctx)
	if err != nil {
		return value, err
	}
	if !ok {
		var zero R
		return zero, errx.New("command completed without producing a result",
			errx.WithCode(CodeNoResult),
			errx.WithDetails(errx.D{"command": c.name}),
		)
	}
	return value, nil
}

func (c *ReactiveCommand[P, R]) Results() rx.Source[R] {
	return c.results
}

func (c *ReactiveCommand[P, R]) Errors() rx.Source[error] {
	return c.errors
}

func (c *ReactiveCommand[P, R]) IsExecuting() rx.Signal[bool] {
	return c.isExecuting
}

func (c *ReactiveCommand[P, R]) CanExecute() rx.Signal[bool] {
	return c.canExecute
}

// Executions emits the lifecycle events of every invocation, after the
// derived signals have been updated for that event.
func (c *ReactiveCommand[P, R]) Executions() rx.Source[ExecutionEvent[R]] {
	return c.executions
}

// Name returns the name the command was created with.
func (c *ReactiveCommand[P, R]) Name() string {
	return c.name
}

// Dispose detaches the command from its enablement source. The signals keep
// their current values; invocations keep working.
func (c *ReactiveCommand[P, R]) Dispose() {
	c.disposeOnce.Do(func() {
		c.enablement.Unsubscribe()
	})
}

// emit publishes one lifecycle event. Must run inside the serial queue.
func (c *ReactiveCommand[P, R]) emit(event ExecutionEvent[R]) {
	c.executions.OnNext(event)
}

// aggregate is the first observer of the execution channel.
func (c *ReactiveCommand[P, R]) aggregate(event ExecutionEvent[R]) {
	switch event.State {
	case Began:
		c.inFlight++
	case Produced:
		c.results.OnNext(event.Value)
		return
	case Finished:
		c.inFlight--
	}

	c.logger.With(
		"invocation", event.Invocation,
		"state", event.State.String(),
		"in_flight", c.inFlight,
	).Debug("execution state changed")

	c.isExecuting.Set(c.inFlight > 0)
	c.refreshCanExecute()
}

func (c *ReactiveCommand[P, R]) refreshCanExecute() {
	c.canExecute.Set(c.enabled && !c.enablementFailed && c.inFlight == 0)
}

func (c *ReactiveCommand[P, R]) onEnablement(enabled bool) {
	c.queue.do(func() {
		if c.enablementFailed {
			return
		}
		c.enabled = enabled
		c.refreshCanExecute()
	})
}

func (c *ReactiveCommand[P, R]) onEnablementError(err error) {
	c.queue.do(func() {
		if c.enablementFailed {
			return
		}
		c.enablementFailed = true
		c.enabled = false

		c.logger.Warnx(errx.Wrap(err, errx.WithDetails(errx.D{"command": c.name})))

		c.report(err)
		c.refreshCanExecute()
	})
}

// report publishes err on Errors. Must run inside the serial queue.
func (c *ReactiveCommand[P, R]) report(err error) {
	if !c.errors.HasObservers() {
		c.logger.With("error", err.Error()).Debug("error raised with no observers on Errors")
	}
	c.errors.OnNext(err)
}

// invoke calls the action and subscribes to its source. A panic or a nil
// source is turned into an error.
func (c *ReactiveCommand[P, R]) invoke(param P, observer rx.Observer[R]) (sub rx.Subscription, err error) {
	defer func() {
		if r := recover(); r != nil {
			sub = nil
			err = errx.New("panic recovered in command action",
				errx.WithCode(CodeActionPanicked),
				errx.WithDetails(errx.D{
					"command":      c.name,
					"panic_values": fmt.Sprintf("%v", r),
				}),
			)
		}
	}()

	source := c.action(param)
	if source == nil {
		return nil, errx.New("command action returned a nil source",
			errx.WithCode(CodeNilSource),
			errx.WithDetails(errx.D{"command": c.name}),
		)
	}

	return source.Subscribe(observer), nil
}
