package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/rxcommand/command"
	"github.com/rise-and-shine/rxcommand/rx"
)

var errBoom = errors.New("boom")

func TestExecute_IsLazy(t *testing.T) {
	cmd, m := newManual[string]()
	count := countStates(t, cmd)

	handle := cmd.Execute(1)

	assert.NotNil(t, handle)
	assert.Equal(t, 0, m.calls())
	assert.False(t, cmd.IsExecuting().Value())
	assert.Equal(t, 0, count(command.Began))
}

func TestExecute_PassesParameter(t *testing.T) {
	cmd, m := newManual[string]()

	collect(t, cmd.Execute(42))

	require.Equal(t, 1, m.calls())
	assert.Equal(t, []int{42}, m.params)
}

func TestExecute_DeliversLastValue(t *testing.T) {
	cmd, m := newManual[string]()
	results := collect(t, cmd.Results())
	isExecuting := collect(t, cmd.IsExecuting())

	call := collect(t, cmd.Execute(1))
	assert.Equal(t, []bool{false, true}, isExecuting.Values())

	m.call(0).OnNext("a")
	m.call(0).OnNext("b")
	assert.Empty(t, call.Values())

	m.call(0).OnComplete()

	assert.Equal(t, []string{"b"}, call.Values())
	assert.True(t, call.Completed())
	assert.Equal(t, []string{"a", "b"}, results.Values())
	assert.Equal(t, []bool{false, true, false}, isExecuting.Values())
}

func TestExecute_CompletesWithoutValue(t *testing.T) {
	cmd, m := newManual[string]()

	call := collect(t, cmd.Execute(1))
	m.call(0).OnComplete()

	assert.Empty(t, call.Values())
	assert.Empty(t, call.Errors())
	assert.True(t, call.Completed())
	assert.False(t, cmd.IsExecuting().Value())
}

func TestExecute_EventsOfOneInvocation(t *testing.T) {
	cmd, m := newManual[string]()
	events := collect(t, cmd.Executions())

	collect(t, cmd.Execute(1))
	m.call(0).OnNext("a")
	m.call(0).OnComplete()

	got := events.Values()
	require.Len(t, got, 3)
	assert.Equal(t, command.Began, got[0].State)
	assert.Equal(t, command.Produced, got[1].State)
	assert.Equal(t, "a", got[1].Value)
	assert.True(t, got[1].HasValue())
	assert.Equal(t, command.Finished, got[2].State)
	assert.False(t, got[2].HasValue())

	assert.Equal(t, got[0].Invocation, got[1].Invocation)
	assert.Equal(t, got[0].Invocation, got[2].Invocation)
}

func TestExecute_UnsubscribeCancels(t *testing.T) {
	cmd, m := newManual[string]()
	results := collect(t, cmd.Results())
	count := countStates(t, cmd)

	call := &collector[string]{}
	sub := cmd.Execute(1).Subscribe(call)
	m.call(0).OnNext("a")
	require.True(t, m.call(0).HasObservers())

	sub.Unsubscribe()

	assert.False(t, m.call(0).HasObservers())
	assert.False(t, cmd.IsExecuting().Value())
	assert.True(t, cmd.CanExecute().Value())
	assert.Equal(t, 1, count(command.Finished))

	m.call(0).OnNext("late")
	assert.Equal(t, []string{"a"}, results.Values())
	assert.Empty(t, call.Values())
	assert.False(t, call.Completed())

	sub.Unsubscribe()
	assert.Equal(t, 1, count(command.Finished))
}

func TestExecute_OverlappingInvocations(t *testing.T) {
	t.Run("both complete", func(t *testing.T) {
		cmd, m := newManual[string]()
		isExecuting := collect(t, cmd.IsExecuting())

		collect(t, cmd.Execute(1))
		collect(t, cmd.Execute(2))

		m.call(0).OnComplete()
		assert.True(t, cmd.IsExecuting().Value())

		m.call(1).OnComplete()
		assert.Equal(t, []bool{false, true, false}, isExecuting.Values())
	})

	t.Run("first fails", func(t *testing.T) {
		cmd, m := newManual[string]()
		isExecuting := collect(t, cmd.IsExecuting())
		errs := collect(t, cmd.Errors())

		first := collect(t, cmd.Execute(1))
		collect(t, cmd.Execute(2))

		m.call(0).OnError(errBoom)
		assert.Equal(t, []error{errBoom}, first.Errors())
		assert.Equal(t, []error{errBoom}, errs.Values())
		assert.True(t, cmd.IsExecuting().Value())

		m.call(1).OnNext("b")
		m.call(1).OnComplete()
		assert.Equal(t, []bool{false, true, false}, isExecuting.Values())
	})

	t.Run("first cancelled", func(t *testing.T) {
		cmd, m := newManual[string]()
		isExecuting := collect(t, cmd.IsExecuting())

		sub := cmd.Execute(1).Subscribe(&collector[string]{})
		collect(t, cmd.Execute(2))

		sub.Unsubscribe()
		assert.True(t, cmd.IsExecuting().Value())

		m.call(1).OnComplete()
		assert.Equal(t, []bool{false, true, false}, isExecuting.Values())
	})
}

func TestExecute_ErrorDualDelivery(t *testing.T) {
	cmd, m := newManual[string]()
	call := &collector[string]{}

	var executingWhenReported []bool
	cmd.Errors().Subscribe(rx.OnValue(func(error) {
		executingWhenReported = append(executingWhenReported, cmd.IsExecuting().Value())
		assert.Empty(t, call.Errors(), "shared channel must be told first")
	}))

	cmd.Execute(1).Subscribe(call)
	m.call(0).OnError(errBoom)

	assert.Equal(t, []bool{true}, executingWhenReported)
	assert.Equal(t, []error{errBoom}, call.Errors())
	assert.False(t, call.Completed())
	assert.False(t, cmd.IsExecuting().Value())
	assert.True(t, cmd.CanExecute().Value())
}

func TestExecute_ActionPanics(t *testing.T) {
	cmd := command.FromSource(func(int) rx.Source[string] {
		panic("kaboom")
	}, quiet()...)
	count := countStates(t, cmd)
	errs := collect(t, cmd.Errors())

	call := collect(t, cmd.Execute(1))

	require.Len(t, errs.Values(), 1)
	assert.True(t, errx.IsCodeIn(errs.Values()[0], command.CodeActionPanicked))
	require.Len(t, call.Errors(), 1)
	assert.Equal(t, errs.Values()[0], call.Errors()[0])

	assert.Equal(t, 1, count(command.Began))
	assert.Equal(t, 1, count(command.Finished))
	assert.False(t, cmd.IsExecuting().Value())
}

func TestExecute_NilSource(t *testing.T) {
	cmd := command.FromSource(func(int) rx.Source[string] {
		return nil
	}, quiet()...)
	errs := collect(t, cmd.Errors())

	call := collect(t, cmd.Execute(1))

	require.Len(t, errs.Values(), 1)
	assert.True(t, errx.IsCodeIn(errs.Values()[0], command.CodeNilSource))
	assert.Len(t, call.Errors(), 1)
	assert.False(t, cmd.IsExecuting().Value())
}

func TestExecute_ObserverPanicStillFinishes(t *testing.T) {
	t.Run("errors observer", func(t *testing.T) {
		cmd, m := newManual[string]()
		count := countStates(t, cmd)
		cmd.Errors().Subscribe(rx.OnValue(func(error) {
			panic("observer bug")
		}))

		collect(t, cmd.Execute(1))
		assert.PanicsWithValue(t, "observer bug", func() { m.call(0).OnError(errBoom) })

		assert.Equal(t, 1, count(command.Finished))
		assert.False(t, cmd.IsExecuting().Value())
		assert.True(t, cmd.CanExecute().Value())
	})

	t.Run("caller completion", func(t *testing.T) {
		cmd, m := newManual[string]()
		count := countStates(t, cmd)

		cmd.Execute(1).Subscribe(rx.ObserverFuncs[string]{
			Complete: func() { panic("caller bug") },
		})
		m.call(0).OnNext("done")
		assert.PanicsWithValue(t, "caller bug", func() { m.call(0).OnComplete() })

		assert.Equal(t, 1, count(command.Finished))
		assert.False(t, cmd.IsExecuting().Value())

		next := collect(t, cmd.Execute(2))
		m.call(1).OnNext("again")
		m.call(1).OnComplete()
		assert.Equal(t, []string{"again"}, next.Values())
		assert.False(t, cmd.IsExecuting().Value())
	})
}

func TestExecute_ErrorWithoutObservers(t *testing.T) {
	cmd, m := newManual[string]()

	sub := cmd.Execute(1).Subscribe(&collector[string]{})
	defer sub.Unsubscribe()

	assert.NotPanics(t, func() { m.call(0).OnError(errBoom) })
	assert.False(t, cmd.IsExecuting().Value())
}

func TestExecute_SharedHandle(t *testing.T) {
	cmd, m := newManual[string]()
	count := countStates(t, cmd)
	handle := cmd.Execute(1)

	first := collect(t, handle)
	second := collect(t, handle)
	require.Equal(t, 1, m.calls())

	m.call(0).OnNext("a")
	m.call(0).OnComplete()

	assert.Equal(t, []string{"a"}, first.Values())
	assert.Equal(t, []string{"a"}, second.Values())
	assert.Equal(t, 1, count(command.Began))

	late := collect(t, handle)
	assert.Equal(t, []string{"a"}, late.Values())
	assert.True(t, late.Completed())
	assert.Equal(t, 1, m.calls())
	assert.Equal(t, 1, count(command.Began))
}

func TestExecute_SharedHandleFailureReplay(t *testing.T) {
	cmd, m := newManual[string]()
	handle := cmd.Execute(1)

	collect(t, handle)
	m.call(0).OnError(errBoom)

	late := collect(t, handle)
	assert.Equal(t, []error{errBoom}, late.Errors())
	assert.Equal(t, 1, m.calls())
}

func TestExecute_SharedHandleKeepsRunningWhileSubscribed(t *testing.T) {
	cmd, m := newManual[string]()
	handle := cmd.Execute(1)

	first := handle.Subscribe(&collector[string]{})
	second := collect(t, handle)

	first.Unsubscribe()
	assert.True(t, cmd.IsExecuting().Value())

	m.call(0).OnNext("a")
	m.call(0).OnComplete()
	assert.Equal(t, []string{"a"}, second.Values())
}

func TestExecute_ResubscribeAfterCancel(t *testing.T) {
	cmd, m := newManual[string]()
	count := countStates(t, cmd)
	handle := cmd.Execute(7)

	handle.Subscribe(&collector[string]{}).Unsubscribe()
	call := collect(t, handle)

	require.Equal(t, 2, m.calls())
	assert.Equal(t, []int{7, 7}, m.params)
	m.call(1).OnNext("again")
	m.call(1).OnComplete()

	assert.Equal(t, []string{"again"}, call.Values())
	assert.Equal(t, 2, count(command.Began))
	assert.Equal(t, 2, count(command.Finished))
}

func TestExecute_ReentrantFromResults(t *testing.T) {
	cmd := command.FromSource(func(p int) rx.Source[int] {
		return rx.Just(p)
	}, quiet()...)
	count := countStates(t, cmd)

	var once sync.Once
	results := &collector[int]{}
	cmd.Results().Subscribe(rx.OnValue(func(v int) {
		results.OnNext(v)
		once.Do(func() {
			cmd.Execute(2).Subscribe(&collector[int]{})
		})
	}))

	collect(t, cmd.Execute(1))

	assert.Equal(t, []int{1, 2}, results.Values())
	assert.Equal(t, 2, count(command.Began))
	assert.Equal(t, 2, count(command.Finished))
	assert.False(t, cmd.IsExecuting().Value())
}

func TestExecuteAsync(t *testing.T) {
	ctx := context.Background()

	t.Run("returns last value", func(t *testing.T) {
		cmd := command.FromSource(func(int) rx.Source[bool] {
			return rx.Just(true, false)
		}, quiet()...)

		got, err := cmd.ExecuteAsync(ctx, 1)

		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("no result", func(t *testing.T) {
		cmd := command.FromSource(func(int) rx.Source[bool] {
			return rx.Empty[bool]()
		}, quiet()...)

		_, err := cmd.ExecuteAsync(ctx, 1)

		assert.True(t, errx.IsCodeIn(err, command.CodeNoResult))
	})

	t.Run("action error", func(t *testing.T) {
		cmd := command.FromSource(func(int) rx.Source[bool] {
			return rx.Throw[bool](errBoom)
		}, quiet()...)
		errs := collect(t, cmd.Errors())

		_, err := cmd.ExecuteAsync(ctx, 1)

		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, []error{errBoom}, errs.Values())
	})

	t.Run("context done", func(t *testing.T) {
		cmd := command.FromSource(func(int) rx.Source[bool] {
			return rx.Never[bool]()
		}, quiet()...)

		timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err := cmd.ExecuteAsync(timeoutCtx, 1)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, cmd.IsExecuting().Value())
		assert.True(t, cmd.CanExecute().Value())
	})
}

func TestExecuteAsync_ReleasesBeforeReturning(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		cmd := command.FromFunc(func(_ context.Context, p int) (int, error) {
			return p, nil
		}, quiet()...)

		for i := range 500 {
			got, err := cmd.ExecuteAsync(context.Background(), i)
			require.NoError(t, err)
			require.Equal(t, i, got)
			require.False(t, cmd.IsExecuting().Value(), "still executing after call %d", i)
			require.True(t, cmd.CanExecute().Value(), "still disabled after call %d", i)
		}
	})

	t.Run("failure", func(t *testing.T) {
		cmd := command.FromFunc(func(context.Context, int) (int, error) {
			return 0, errBoom
		}, quiet()...)
		errs := collect(t, cmd.Errors())

		for i := range 500 {
			_, err := cmd.ExecuteAsync(context.Background(), i)
			require.ErrorIs(t, err, errBoom)
			require.False(t, cmd.IsExecuting().Value(), "still executing after call %d", i)
			require.True(t, cmd.CanExecute().Value(), "still disabled after call %d", i)
		}
		assert.Len(t, errs.Values(), 500)
	})
}

func TestExecuteAsync_FromObserverWaitsForContext(t *testing.T) {
	cmd := command.New[int](quiet()...)
	count := countStates(t, cmd)

	var (
		once     sync.Once
		innerErr error
	)
	cmd.Results().Subscribe(rx.OnValue(func(int) {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, innerErr = cmd.ExecuteAsync(ctx, 2)
		})
	}))

	got, err := cmd.ExecuteAsync(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.ErrorIs(t, innerErr, context.DeadlineExceeded)
	assert.Equal(t, 2, count(command.Began))
	assert.Equal(t, 2, count(command.Finished))
	assert.False(t, cmd.IsExecuting().Value())
}

func TestExecute_SubscribeFromObserver(t *testing.T) {
	cmd := command.New[int](quiet()...)

	inner := &collector[int]{}
	var once sync.Once
	cmd.Results().Subscribe(rx.OnValue(func(int) {
		once.Do(func() {
			cmd.Execute(2).Subscribe(inner)
		})
	}))

	_, err := cmd.ExecuteAsync(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []int{2}, inner.Values())
	assert.True(t, inner.Completed())
	assert.False(t, cmd.IsExecuting().Value())
}

func TestCanExecute_FollowsExecution(t *testing.T) {
	cmd, m := newManual[string]()
	canExecute := collect(t, cmd.CanExecute())

	collect(t, cmd.Execute(1))
	assert.False(t, cmd.CanExecute().Value())

	m.call(0).OnComplete()

	assert.Equal(t, []bool{true, false, true}, canExecute.Values())
}

func TestCanExecute_DoesNotGateExecute(t *testing.T) {
	cmd, m := newManual[string](command.WithCanExecute(rx.Just(false)))

	assert.False(t, cmd.CanExecute().Value())
	collect(t, cmd.Execute(1))

	assert.Equal(t, 1, m.calls())
	assert.True(t, cmd.IsExecuting().Value())
}

func TestCanExecute_FollowsEnablement(t *testing.T) {
	enabled := rx.NewSubject[bool]()
	cmd, _ := newManual[string](command.WithCanExecute(enabled))
	canExecute := collect(t, cmd.CanExecute())

	enabled.OnNext(true)
	enabled.OnNext(false)
	enabled.OnNext(false)
	enabled.OnNext(true)

	assert.Equal(t, []bool{true, false, true}, canExecute.Values())
}

func TestCanExecute_EnablementDuringExecution(t *testing.T) {
	t.Run("enabled while busy", func(t *testing.T) {
		enabled := rx.NewSubject[bool]()
		cmd, m := newManual[string](command.WithCanExecute(enabled))
		canExecute := collect(t, cmd.CanExecute())

		collect(t, cmd.Execute(1))
		enabled.OnNext(true)
		assert.False(t, cmd.CanExecute().Value())

		m.call(0).OnComplete()
		assert.Equal(t, []bool{true, false, true}, canExecute.Values())
	})

	t.Run("disabled while busy", func(t *testing.T) {
		enabled := rx.NewSubject[bool]()
		cmd, m := newManual[string](command.WithCanExecute(enabled))
		canExecute := collect(t, cmd.CanExecute())

		collect(t, cmd.Execute(1))
		enabled.OnNext(false)
		m.call(0).OnComplete()

		assert.Equal(t, []bool{true, false}, canExecute.Values())
	})
}

func TestCanExecute_EnablementCompletes(t *testing.T) {
	enabled := rx.NewSubject[bool]()
	cmd, _ := newManual[string](command.WithCanExecute(enabled))
	canExecute := collect(t, cmd.CanExecute())

	enabled.OnNext(false)
	enabled.OnComplete()

	assert.False(t, canExecute.Completed())
	assert.Equal(t, []bool{true, false}, canExecute.Values())
}

func TestCanExecute_EnablementFails(t *testing.T) {
	enabled := rx.NewSubject[bool]()
	cmd, m := newManual[string](command.WithCanExecute(enabled))
	errs := collect(t, cmd.Errors())
	canExecute := collect(t, cmd.CanExecute())

	enabled.OnError(errBoom)

	assert.Equal(t, []error{errBoom}, errs.Values())
	assert.False(t, cmd.CanExecute().Value())

	collect(t, cmd.Execute(1))
	m.call(0).OnComplete()

	assert.False(t, cmd.CanExecute().Value())
	assert.False(t, cmd.IsExecuting().Value())
	assert.Equal(t, []bool{true, false}, canExecute.Values())
	assert.Empty(t, canExecute.Errors())
}

func TestDispose_DetachesEnablement(t *testing.T) {
	enabled := rx.NewSubject[bool]()
	cmd, _ := newManual[string](command.WithCanExecute(enabled))

	cmd.Dispose()
	cmd.Dispose()

	assert.False(t, enabled.HasObservers())
	enabled.OnNext(false)
	assert.True(t, cmd.CanExecute().Value())
}

func TestCommand_ConcurrentInvocations(t *testing.T) {
	cmd := command.FromFunc(func(_ context.Context, p int) (int, error) {
		time.Sleep(time.Millisecond)
		return p * 2, nil
	}, quiet()...)

	var (
		mu       sync.Mutex
		inFlight int
		negative bool
		mismatch bool
	)
	cmd.Executions().Subscribe(rx.OnValue(func(e command.ExecutionEvent[int]) {
		mu.Lock()
		defer mu.Unlock()
		switch e.State {
		case command.Began:
			inFlight++
		case command.Finished:
			inFlight--
		}
		negative = negative || inFlight < 0
		mismatch = mismatch || cmd.IsExecuting().Value() != (inFlight > 0)
	}))

	const n = 50
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cmd.ExecuteAsync(context.Background(), i)
			assert.NoError(t, err)
			assert.Equal(t, i*2, got)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, inFlight)
	assert.False(t, negative)
	assert.False(t, mismatch)
	assert.False(t, cmd.IsExecuting().Value())
	assert.True(t, cmd.CanExecute().Value())
}
