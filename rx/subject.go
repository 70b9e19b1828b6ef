package rx

import (
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// subscriber is one registration on a Subject or State.
type subscriber[T any] struct {
	observer Observer[T]
	active   atomic.Bool
}

// Subject is a hot multicast Source that is also an Observer: whatever it is
// told is forwarded to every observer subscribed at that moment. Observers
// that subscribe after a terminal notification receive that notification
// immediately.
//
// A Subject is safe for concurrent use. Notifications are delivered outside
// its lock, so observers may subscribe or unsubscribe from inside a callback.
type Subject[T any] struct {
	mu          sync.Mutex
	subscribers []*subscriber[T]
	stopped     bool
	err         error
}

// NewSubject creates an empty Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

func (s *Subject[T]) Subscribe(observer Observer[T]) Subscription {
	s.mu.Lock()
	if s.stopped {
		err := s.err
		s.mu.Unlock()

		if err != nil {
			observer.OnError(err)
		} else {
			observer.OnComplete()
		}
		return Nop()
	}

	sub := &subscriber[T]{observer: observer}
	sub.active.Store(true)
	s.subscribers = append(s.subscribers, sub)
	s.mu.Unlock()

	return OnceSubscription(func() {
		sub.active.Store(false)

		s.mu.Lock()
		s.subscribers = lo.Without(s.subscribers, sub)
		s.mu.Unlock()
	})
}

func (s *Subject[T]) OnNext(value T) {
	for _, sub := range s.snapshot(false, nil) {
		if sub.active.Load() {
			sub.observer.OnNext(value)
		}
	}
}

func (s *Subject[T]) OnError(err error) {
	for _, sub := range s.snapshot(true, err) {
		if sub.active.Load() {
			sub.observer.OnError(err)
		}
	}
}

func (s *Subject[T]) OnComplete() {
	for _, sub := range s.snapshot(true, nil) {
		if sub.active.Load() {
			sub.observer.OnComplete()
		}
	}
}

// HasObservers reports whether anyone is currently subscribed.
func (s *Subject[T]) HasObservers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) > 0
}

// snapshot copies the current subscribers. A terminal snapshot also stops the
// subject and drops the registrations.
func (s *Subject[T]) snapshot(terminal bool, err error) []*subscriber[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}

	subs := make([]*subscriber[T], len(s.subscribers))
	copy(subs, s.subscribers)

	if terminal {
		s.stopped = true
		s.err = err
		s.subscribers = nil
	}
	return subs
}
