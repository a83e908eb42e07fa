// Package errors decorates errors with a message, [slog.Attr] annotations and the source location where the error
// was wrapped, so that a single log line carries the context needed to debug it.
//
// It re-exports the functions of the standard library errors package so that callers only need one import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// New, Is, As, Join and Unwrap forward to the standard library.
var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

type annotatedError struct {
	msg         string
	cause       error
	annotations []slog.Attr
	pc          uintptr
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// NewSentinel creates an error meant to be declared as a package level variable and compared with [Is].
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with msg and the given attributes. The caller's source location is recorded and reported by
// [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:         msg,
		cause:       err,
		annotations: attrs,
		pc:          callerPC(3), //nolint:mnd // runtime.Callers, callerPC, Wrap.
	}
}

// DecoratePanic turns a recovered panic value into an error pointing to the line that panicked.
// Returns nil when v is nil.
func DecoratePanic(v any) error {
	if v == nil {
		return nil
	}
	var cause error
	if err, ok := v.(error); ok {
		cause = err
	} else {
		cause = fmt.Errorf("%v", v)
	}
	return &annotatedError{
		msg:         "panic",
		cause:       cause,
		annotations: nil,
		pc:          panicPC(),
	}
}

// SlogError returns an attribute group describing err: its message, the annotations of every wrapping layer and the
// source location of the innermost wrap.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "error", Value: slog.StringValue("<nil>")}
	}

	var (
		annotations []any
		source      string
	)
	for _, ae := range collect(err) {
		for _, a := range ae.annotations {
			annotations = append(annotations, a)
		}
		if ae.pc != 0 {
			source = formatPC(ae.pc)
		}
	}

	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Group("error", attrs...)
}

// collect walks the error tree depth first and returns every annotated layer, outermost first.
func collect(err error) []*annotatedError {
	var out []*annotatedError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if ae, ok := e.(*annotatedError); ok { //nolint:errorlint // walking the tree manually.
			out = append(out, ae)
		}
		switch u := e.(type) { //nolint:errorlint // walking the tree manually.
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}

func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	if runtime.Callers(skip, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

// panicPC finds the frame that called panic by skipping past runtime.gopanic.
func panicPC() uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	afterPanic := false
	for {
		frame, more := frames.Next()
		if afterPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.PC
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			return 0
		}
	}
}

func formatPC(pc uintptr) string {
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}
