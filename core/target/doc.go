// Package target models remote event targets: where an emission is
// forwarded beyond local listeners. A target is identified by its kind tag
// (URL webhook or broker queue), an address, an optional event filter, and
// kind-specific routing fields.
//
// Targets are registered from heterogeneous descriptions (a bare address
// string or a structured map) and parsed into an immutable Target at
// registration time. All configuration errors are raised synchronously by
// Parse; dispatch never sees a malformed target.
package target
