package rx

import "sync"

// Subscription is returned by Source.Subscribe. Unsubscribe stops delivery to
// the observer and releases whatever the subscription holds. It is safe to
// call more than once.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to a Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}

// Nop returns a Subscription that does nothing.
func Nop() Subscription {
	return SubscriptionFunc(nil)
}

// OnceSubscription returns a Subscription that runs fn on the first
// Unsubscribe only.
func OnceSubscription(fn func()) Subscription {
	var once sync.Once
	return SubscriptionFunc(func() {
		once.Do(fn)
	})
}
