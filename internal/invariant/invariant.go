// Package invariant provides contract assertions for the script engine.
//
// A violated internal invariant here is a programming error in the engine
// itself, not a malformed script. Malformed scripts are reported through
// eval.ScriptError instead. Use Precondition and Postcondition to express
// function contracts, Invariant for loop and state consistency checks.
package invariant

import (
	"fmt"
	"reflect"
	"runtime"
)

// Precondition panics with a PRECONDITION VIOLATION if condition is false.
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition panics with a POSTCONDITION VIOLATION if condition is false.
func Postcondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant panics with an INVARIANT VIOLATION if condition is false.
//
// Typical use is a loop progress check:
//
//	prevPos := p.pos
//	for p.pos < len(p.tokens) {
//	    // ... advance p.pos ...
//	    invariant.Invariant(p.pos > prevPos, "parser position must advance")
//	    prevPos = p.pos
//	}
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil, including a typed nil pointer/interface.
func NotNil(value interface{}, name string) {
	if value == nil || isNilValue(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func isNilValue(value interface{}) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// InRange panics if value is outside [min, max].
func InRange(value, minVal, maxVal int, name string) {
	if value < minVal || value > maxVal {
		fail("PRECONDITION", "%s must be in range [%d, %d], got %d", name, minVal, maxVal, value)
	}
}

// MaxLen panics if the length of s exceeds max bytes. Used for the engine's
// bounded fields: identifier names, lexemes, error messages.
func MaxLen(s string, max int, name string) {
	if len(s) > max {
		fail("PRECONDITION", "%s exceeds max length %d (got %d)", name, max, len(s))
	}
}

// fail panics with a formatted message including the call site.
func fail(kind, format string, args ...interface{}) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]interface{}{kind}, args...)...)
	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}
	panic(msg)
}
