// Package rx provides the small set of push-based stream primitives the
// command package is built on.
//
// A [Source] is anything an [Observer] can subscribe to. Sources created with
// [Create], [FromFunc] and friends are cold: every subscription runs the
// producer again. [Subject] is a hot multicast source, and [State] is a
// multicast source that remembers its latest value, replays it to new
// observers and only notifies when the value actually changes.
//
// Observers receive any number of values followed by at most one terminal
// notification (an error or a completion). Unsubscribing stops delivery; a
// producer that honours the context handed to it by [Create] is told to stop
// as well.
package rx
