package errors

import (
	"errors"
	"log/slog"
	"runtime"
)

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Wrap annotates err with a message and optional slog attributes. The
// resulting error matches err with errors.Is and carries the annotation's
// source location for logging.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	var pcs [1]uintptr
	// Skip runtime.Callers and this function.
	runtime.Callers(2, pcs[:])
	wrapper := AnnotatedError{
		msg:   msg,
		pc:    pcs[0],
		attrs: attrs,
	}
	return wrapper.Wrap(err)
}

// SlogError formats err as a slog attribute for structured error logging.
func SlogError(err error) slog.Attr {
	return slog.Any("error", err)
}
