package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety, so call sites
// like log.Error("dispatch failed", logger.Error(err)) never need nil checks.

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups multiple non-nil errors under the key "errors", using
// index-based keys to preserve order. Returns an empty Attr when every
// error is nil.
func Errors(errs ...error) slog.Attr {
	count := 0
	for _, err := range errs {
		if err != nil {
			count++
		}
	}
	if count == 0 {
		return slog.Attr{}
	}

	as := make([]slog.Attr, 0, count)
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Component identifies the subsystem producing the log record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event creates an attribute for an event key.
func Event(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("event", key)
}

// Task creates an attribute for a tracked task name.
func Task(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("task", name)
}

// Target creates an attribute for a remote target address.
func Target(address string) slog.Attr {
	if address == "" {
		return slog.Attr{}
	}
	return slog.String("target", address)
}
