// Package event defines the envelope passed uniformly to local listeners
// and remote dispatchers. It is a pure data package with no behavior beyond
// construction and defensive copying.
package event
