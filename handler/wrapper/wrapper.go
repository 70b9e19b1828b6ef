// Package wrapper provides middleware for handlers.
//
// Wrappers add cross-cutting concerns such as logging, panic recovery,
// tracing, timeouts and alerting around a handler without touching its
// logic. Compose them with handler.Chain.
package wrapper
