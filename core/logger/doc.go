// Package logger provides slog attribute helpers shared by the core
// packages. Helpers return empty attributes for zero values, which slog
// elides, so call sites stay free of nil checks.
package logger
