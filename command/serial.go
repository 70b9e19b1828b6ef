package command

import "sync"

// serialQueue runs functions one at a time in submission order. The caller
// that finds the queue idle drains it; anyone submitting meanwhile, including
// re-entrant calls from inside a running function, only enqueues. No lock is
// held while a function runs.
type serialQueue struct {
	mu       sync.Mutex
	pending  []func()
	draining bool
}

func (q *serialQueue) do(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true

	for len(q.pending) > 0 {
		next := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.run(next)

		q.mu.Lock()
	}
	q.draining = false
	q.mu.Unlock()
}

// run executes fn and keeps the queue usable if fn panics: the panic is
// re-raised after the draining flag is released.
func (q *serialQueue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.mu.Lock()
			q.draining = false
			q.mu.Unlock()
			panic(r)
		}
	}()
	fn()
}
