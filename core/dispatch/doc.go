// Package dispatch turns registered remote targets into concrete network
// and broker operations.
//
// Factory maps target kinds to dispatcher constructors. URLDispatcher posts
// the JSON envelope to webhook targets; QueueDispatcher appends a named
// remote task invocation to the broker stream addressed by the target, with
// one client per distinct broker address. Delivery is best-effort: no
// retries, no acknowledgment protocol, and one target's failure never
// affects another's dispatch.
package dispatch
