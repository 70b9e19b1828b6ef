package rx

// Source is a stream of values that observers subscribe to.
type Source[T any] interface {
	Subscribe(observer Observer[T]) Subscription
}

// Signal is a Source that always has a current value. New observers receive
// the current value immediately on subscription.
type Signal[T any] interface {
	Source[T]

	// Value returns the current value without subscribing.
	Value() T
}

// SourceFunc adapts a function to a Source.
type SourceFunc[T any] func(observer Observer[T]) Subscription

func (f SourceFunc[T]) Subscribe(observer Observer[T]) Subscription {
	return f(observer)
}
