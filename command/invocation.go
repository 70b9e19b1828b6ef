package command

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/rise-and-shine/rxcommand/rx"
)

// callObserver is one subscriber of an invocation handle.
type callObserver[R any] struct {
	observer rx.Observer[R]
	active   atomic.Bool
}

// activation is one run of the action behind a handle.
type activation[R any] struct {
	id       uint64
	upstream rx.Subscription
	last     R
	hasLast  bool
	// ended is set once the activation completed, failed or was cancelled.
	// Whoever sets it owes exactly one call to finish.
	ended bool
	// finished is closed once the Finished event has been accounted.
	finished chan struct{}
}

// outcome is the remembered result of a terminated activation, replayed to
// subscribers that arrive afterwards.
type outcome[R any] struct {
	value    R
	hasValue bool
	err      error
}

func (o outcome[R]) replay(observer rx.Observer[R]) {
	if o.err != nil {
		observer.OnError(o.err)
		return
	}
	if o.hasValue {
		observer.OnNext(o.value)
	}
	observer.OnComplete()
}

// invocation is the handle returned by Execute. Subscribers share a single
// activation; it starts with the first subscriber and is cancelled when the
// last one leaves before it terminates.
type invocation[P any, R any] struct {
	cmd   *ReactiveCommand[P, R]
	param P

	mu        sync.Mutex
	observers []*callObserver[R]
	current   *activation[R]
	result    *outcome[R]
	// settled is the finished channel of the activation that produced result.
	settled chan struct{}
}

func (inv *invocation[P, R]) Subscribe(observer rx.Observer[R]) rx.Subscription {
	inv.mu.Lock()
	if inv.result != nil {
		result := *inv.result
		inv.mu.Unlock()

		result.replay(observer)
		return rx.Nop()
	}

	entry := &callObserver[R]{observer: observer}
	entry.active.Store(true)
	inv.observers = append(inv.observers, entry)

	var started *activation[R]
	if inv.current == nil {
		started = &activation[R]{
			id:       inv.cmd.lastInvocation.Add(1),
			finished: make(chan struct{}),
		}
		inv.current = started
	}
	inv.mu.Unlock()

	if started != nil {
		inv.start(started)
	}

	return rx.OnceSubscription(func() {
		inv.unsubscribe(entry)
	})
}

func (inv *invocation[P, R]) start(run *activation[R]) {
	inv.cmd.queue.do(func() {
		inv.cmd.emit(newBegan[R](run.id))
	})

	upstream, err := inv.cmd.invoke(inv.param, rx.ObserverFuncs[R]{
		Next:     func(value R) { inv.next(run, value) },
		Error:    func(err error) { inv.settle(run, err) },
		Complete: func() { inv.settle(run, nil) },
	})
	if err != nil {
		inv.settle(run, err)
		return
	}

	inv.mu.Lock()
	if run.ended {
		inv.mu.Unlock()
		upstream.Unsubscribe()
		return
	}
	run.upstream = upstream
	inv.mu.Unlock()
}

func (inv *invocation[P, R]) next(run *activation[R], value R) {
	inv.cmd.queue.do(func() {
		inv.mu.Lock()
		if run.ended {
			inv.mu.Unlock()
			return
		}
		run.last, run.hasLast = value, true
		inv.mu.Unlock()

		inv.cmd.emit(newProduced(run.id, value))
	})
}

// settle ends run with err, or with its last value when err is nil. The
// failure goes to Errors first, then to the call's own subscribers. Finished
// is accounted afterwards even if one of those observers panics.
func (inv *invocation[P, R]) settle(run *activation[R], err error) {
	inv.cmd.queue.do(func() {
		observers, result, ok := inv.terminate(run, err)
		if !ok {
			return
		}
		defer inv.finish(run)

		if result.err != nil {
			inv.cmd.report(result.err)
		}
		for _, o := range observers {
			if o.active.Load() {
				result.replay(o.observer)
			}
		}
	})
}

// terminate ends run and hands back its outcome and the observers to notify.
// It reports false if run had already ended.
func (inv *invocation[P, R]) terminate(run *activation[R], err error) ([]*callObserver[R], outcome[R], bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if run.ended {
		return nil, outcome[R]{}, false
	}
	run.ended = true

	result := outcome[R]{err: err}
	if err == nil {
		result.value, result.hasValue = run.last, run.hasLast
	}
	inv.current = nil
	inv.result = &result
	inv.settled = run.finished

	observers := inv.observers
	inv.observers = nil
	return observers, result, true
}

// finish is the single place a Finished event is emitted. Must run inside
// the serial queue.
func (inv *invocation[P, R]) finish(run *activation[R]) {
	defer close(run.finished)
	inv.cmd.emit(newFinished[R](run.id))
}

// awaitFinished blocks until the activation that settled the handle has been
// accounted as finished, or ctx is done. It returns at once if the handle
// never settled.
func (inv *invocation[P, R]) awaitFinished(ctx context.Context) {
	inv.mu.Lock()
	settled := inv.settled
	inv.mu.Unlock()

	if settled == nil {
		return
	}
	select {
	case <-settled:
	case <-ctx.Done():
	}
}

func (inv *invocation[P, R]) unsubscribe(entry *callObserver[R]) {
	entry.active.Store(false)

	inv.mu.Lock()
	inv.observers = lo.Without(inv.observers, entry)

	run := inv.current
	if run == nil || run.ended || len(inv.observers) > 0 {
		inv.mu.Unlock()
		return
	}
	run.ended = true
	inv.current = nil
	upstream := run.upstream
	inv.mu.Unlock()

	defer inv.cmd.queue.do(func() { inv.finish(run) })

	if upstream != nil {
		upstream.Unsubscribe()
	}
}
