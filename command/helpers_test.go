// Package command_test contains tests for the command package.
package command_test

import (
	"sync"
	"testing"

	"github.com/rise-and-shine/rxcommand/command"
	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/rx"
)

// collector records everything an observer is told. Safe for concurrent use.
type collector[T any] struct {
	mu        sync.Mutex
	values    []T
	errs      []error
	completed bool
}

func (c *collector[T]) OnNext(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, value)
}

func (c *collector[T]) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *collector[T]) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = true
}

func (c *collector[T]) Values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.values...)
}

func (c *collector[T]) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}

func (c *collector[T]) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// collect subscribes a new collector to source for the rest of the test.
func collect[T any](t *testing.T, source rx.Source[T]) *collector[T] {
	t.Helper()
	c := &collector[T]{}
	sub := source.Subscribe(c)
	t.Cleanup(sub.Unsubscribe)
	return c
}

// manual is an action whose invocations are driven by hand: every call gets
// a fresh subject the test emits on.
type manual[R any] struct {
	mu       sync.Mutex
	params   []int
	subjects []*rx.Subject[R]
}

func (m *manual[R]) action(param int) rx.Source[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := rx.NewSubject[R]()
	m.params = append(m.params, param)
	m.subjects = append(m.subjects, s)
	return s
}

func (m *manual[R]) call(i int) *rx.Subject[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subjects[i]
}

func (m *manual[R]) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subjects)
}

func quiet(opts ...command.Option) []command.Option {
	return append([]command.Option{command.WithLogger(logger.Nop())}, opts...)
}

func newManual[R any](opts ...command.Option) (*command.ReactiveCommand[int, R], *manual[R]) {
	m := &manual[R]{}
	return command.FromSource(m.action, quiet(opts...)...), m
}

// countStates tallies the execution events of cmd by state.
func countStates[R any](t *testing.T, cmd *command.ReactiveCommand[int, R]) func(command.ExecutionState) int {
	t.Helper()
	events := collect(t, cmd.Executions())
	return func(state command.ExecutionState) int {
		n := 0
		for _, e := range events.Values() {
			if e.State == state {
				n++
			}
		}
		return n
	}
}
