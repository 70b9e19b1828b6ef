package rx

import "context"

// Create returns a cold Source that calls produce once per subscription.
//
// produce runs on the subscribing goroutine and must not block; asynchronous
// work belongs in a goroutine started by produce. The context is cancelled
// when the observer unsubscribes or once produce delivers a terminal
// notification, so long-running work should watch ctx.Done().
func Create[T any](produce func(ctx context.Context, observer Observer[T])) Source[T] {
	return SourceFunc[T](func(observer Observer[T]) Subscription {
		ctx, cancel := context.WithCancel(context.Background())
		g := newGuard(observer, cancel)

		produce(ctx, g)

		return OnceSubscription(func() {
			g.stop()
		})
	})
}

// FromFunc returns a Source that runs fn on its own goroutine for every
// subscription and emits its single result followed by completion, or its
// error. Unsubscribing cancels the context handed to fn and drops whatever fn
// returns afterwards.
func FromFunc[T any](fn func(ctx context.Context) (T, error)) Source[T] {
	return Create(func(ctx context.Context, observer Observer[T]) {
		go func() {
			value, err := fn(ctx)
			if err != nil {
				observer.OnError(err)
				return
			}
			observer.OnNext(value)
			observer.OnComplete()
		}()
	})
}

// FromChannel returns a Source that forwards values received from ch until
// it is closed, then completes. Every subscriber competes for the same
// channel, so it is usually subscribed once.
func FromChannel[T any](ch <-chan T) Source[T] {
	return Create(func(ctx context.Context, observer Observer[T]) {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case value, ok := <-ch:
					if !ok {
						observer.OnComplete()
						return
					}
					observer.OnNext(value)
				}
			}
		}()
	})
}

// Just returns a Source that synchronously emits values and completes.
func Just[T any](values ...T) Source[T] {
	return Create(func(ctx context.Context, observer Observer[T]) {
		for _, value := range values {
			if ctx.Err() != nil {
				return
			}
			observer.OnNext(value)
		}
		observer.OnComplete()
	})
}

// Empty returns a Source that completes immediately without emitting.
func Empty[T any]() Source[T] {
	return Just[T]()
}

// Throw returns a Source that fails immediately with err.
func Throw[T any](err error) Source[T] {
	return Create(func(_ context.Context, observer Observer[T]) {
		observer.OnError(err)
	})
}

// Never returns a Source that never emits and never terminates.
func Never[T any]() Source[T] {
	return SourceFunc[T](func(Observer[T]) Subscription {
		return Nop()
	})
}
