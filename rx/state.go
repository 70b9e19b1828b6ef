package rx

import (
	"sync"

	"github.com/samber/lo"
)

// stateSubscriber remembers the version of the last value it was given so a
// late initial delivery can never overwrite a newer one.
type stateSubscriber[T comparable] struct {
	mu      sync.Mutex
	version uint64
	active  bool
	target  Observer[T]
}

func (s *stateSubscriber[T]) deliver(value T, version uint64) {
	s.mu.Lock()
	if !s.active || version <= s.version {
		s.mu.Unlock()
		return
	}
	s.version = version
	s.mu.Unlock()

	s.target.OnNext(value)
}

// State is a multicast Signal holding one value. Subscribers receive the
// current value immediately and then every change. Setting a value equal to
// the current one notifies nobody.
//
// Subscribe and Value are safe for concurrent use. Set calls are expected to
// be serialized by the owner; concurrent Set calls are safe but may be
// observed in either order.
type State[T comparable] struct {
	mu          sync.Mutex
	value       T
	version     uint64
	subscribers []*stateSubscriber[T]
}

var _ Signal[bool] = (*State[bool])(nil)

// NewState creates a State holding initial.
func NewState[T comparable](initial T) *State[T] {
	return &State[T]{value: initial, version: 1}
}

// Value returns the current value.
func (s *State[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set stores value and notifies subscribers if it differs from the current
// value. It reports whether the value changed.
func (s *State[T]) Set(value T) bool {
	s.mu.Lock()
	if s.value == value {
		s.mu.Unlock()
		return false
	}
	s.value = value
	s.version++
	version := s.version
	subs := make([]*stateSubscriber[T], len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(value, version)
	}
	return true
}

func (s *State[T]) Subscribe(observer Observer[T]) Subscription {
	sub := &stateSubscriber[T]{target: observer, active: true}

	s.mu.Lock()
	value, version := s.value, s.version
	s.subscribers = append(s.subscribers, sub)
	s.mu.Unlock()

	sub.deliver(value, version)

	return OnceSubscription(func() {
		sub.mu.Lock()
		sub.active = false
		sub.mu.Unlock()

		s.mu.Lock()
		s.subscribers = lo.Without(s.subscribers, sub)
		s.mu.Unlock()
	})
}
