// Package listener implements the local listener registry: an ordered,
// concurrency-safe mapping from event keys to callback functions.
//
// The registry is a pure data structure. Invocation, scheduling, and error
// isolation are the dispatch engine's concern (core/bus).
package listener
