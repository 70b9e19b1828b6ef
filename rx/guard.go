package rx

import "sync"

// guard enforces the observer contract on behalf of a producer: nothing is
// delivered after a terminal notification or after stop.
type guard[T any] struct {
	mu     sync.Mutex
	done   bool
	target Observer[T]
	onDone func()
}

func newGuard[T any](target Observer[T], onDone func()) *guard[T] {
	return &guard[T]{target: target, onDone: onDone}
}

func (g *guard[T]) OnNext(value T) {
	g.mu.Lock()
	done := g.done
	g.mu.Unlock()

	if !done {
		g.target.OnNext(value)
	}
}

func (g *guard[T]) OnError(err error) {
	if g.stop() {
		g.target.OnError(err)
	}
}

func (g *guard[T]) OnComplete() {
	if g.stop() {
		g.target.OnComplete()
	}
}

// stop marks the guard done and reports whether this call was the one that
// did it.
func (g *guard[T]) stop() bool {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return false
	}
	g.done = true
	g.mu.Unlock()

	if g.onDone != nil {
		g.onDone()
	}
	return true
}
