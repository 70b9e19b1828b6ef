package rx

import (
	"context"
	"sync"
)

// Last subscribes to source and blocks until it terminates. It returns the
// last value emitted and whether there was one at all. If the source fails
// its error is returned as is. If ctx is done first the subscription is
// cancelled and ctx.Err() is returned.
func Last[T any](ctx context.Context, source Source[T]) (T, bool, error) {
	var (
		mu      sync.Mutex
		last    T
		hasLast bool
		failure error
	)
	done := make(chan struct{})
	var closeOnce sync.Once
	finish := func() { closeOnce.Do(func() { close(done) }) }

	sub := source.Subscribe(ObserverFuncs[T]{
		Next: func(value T) {
			mu.Lock()
			last, hasLast = value, true
			mu.Unlock()
		},
		Error: func(err error) {
			mu.Lock()
			failure = err
			mu.Unlock()
			finish()
		},
		Complete: finish,
	})

	select {
	case <-done:
	case <-ctx.Done():
		sub.Unsubscribe()
		var zero T
		return zero, false, ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	if failure != nil {
		var zero T
		return zero, false, failure
	}
	return last, hasLast, nil
}

// ToSlice subscribes to source and blocks until it terminates, returning
// every value it emitted.
func ToSlice[T any](ctx context.Context, source Source[T]) ([]T, error) {
	var (
		mu     sync.Mutex
		values []T
	)
	collect := SourceFunc[T](func(observer Observer[T]) Subscription {
		return source.Subscribe(ObserverFuncs[T]{
			Next: func(value T) {
				mu.Lock()
				values = append(values, value)
				mu.Unlock()
			},
			Error:    observer.OnError,
			Complete: observer.OnComplete,
		})
	})

	_, _, err := Last(ctx, collect)

	mu.Lock()
	defer mu.Unlock()
	return values, err
}
