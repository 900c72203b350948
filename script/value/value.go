// Package value implements the engine's tagged value model: integers,
// floats, strings, arrays, and opaque host handles, with an explicit
// borrow/own discipline for string and array payloads.
package value

import (
	"errors"
	"fmt"
	"strings"
)

// Tag identifies which payload a Value carries.
type Tag int

const (
	Float Tag = iota
	Integer
	String
	Array
	HostHandle
)

func (t Tag) String() string {
	switch t {
	case Float:
		return "float"
	case Integer:
		return "integer"
	case String:
		return "string"
	case Array:
		return "array"
	case HostHandle:
		return "host handle"
	default:
		return "unknown"
	}
}

// Descriptor exposes native host data to the engine. Any entry may be nil;
// a caller that needs a nil entry fails with TypeMismatch.
type Descriptor struct {
	GetProperty   func(ctx any, name string) (Value, error)
	GetElement    func(ctx any, index int) (Value, error)
	ReleaseHandle func(ctx any, handle any)
	Context       any
}

// Value is the tagged union described by the data model: every value knows
// its tag, carries its payload, and tracks whether it owns that payload.
type Value struct {
	Tag         Tag
	Int         int32
	Flt         float32
	Str         string
	Arr         []Value
	Handle      any
	Descriptor  *Descriptor
	HostContext any
	OwnsPayload bool
}

// New returns the default value: Float 0, not owning anything.
func New() Value {
	return Value{Tag: Float}
}

// Int32 constructs an owned Integer value.
func Int32(i int32) Value {
	return Value{Tag: Integer, Int: i, OwnsPayload: true}
}

// Float32 constructs an owned Float value.
func Float32(f float32) Value {
	return Value{Tag: Float, Flt: f, OwnsPayload: true}
}

// NewString constructs an owned String value (a fresh copy of s).
func NewString(s string) Value {
	return Value{Tag: String, Str: strings.Clone(s), OwnsPayload: true}
}

// BorrowedString constructs a non-owning String view over s. The caller must
// ensure s outlives the Value.
func BorrowedString(s string) Value {
	return Value{Tag: String, Str: s, OwnsPayload: false}
}

// NewArray constructs an owned Array value with the given initial capacity.
func NewArray(capacity int) Value {
	return Value{Tag: Array, Arr: make([]Value, 0, capacity), OwnsPayload: true}
}

// Release discards v's payload per the ownership rule: an owning String or
// Array payload is simply dropped (Go's GC reclaims it); an owning HostHandle
// invokes its descriptor's ReleaseHandle, if any, against the effective host
// context (the value's own HostContext if non-nil, else the descriptor's).
// After Release, v is reset to the default value.
func (v *Value) Release() {
	if v.OwnsPayload && v.Tag == HostHandle && v.Descriptor != nil && v.Descriptor.ReleaseHandle != nil {
		ctx := v.HostContext
		if ctx == nil {
			ctx = v.Descriptor.Context
		}
		v.Descriptor.ReleaseHandle(ctx, v.Handle)
	}
	*v = New()
}

// Clone returns a value that owns its own copy of any String/Array payload,
// duplicating the way scope.Set and array element storage always duplicate
// on write.
func (v Value) Clone() Value {
	switch v.Tag {
	case String:
		return Value{Tag: String, Str: strings.Clone(v.Str), OwnsPayload: true}
	case Array:
		arr := make([]Value, len(v.Arr))
		copy(arr, v.Arr)
		return Value{Tag: Array, Arr: arr, OwnsPayload: true}
	default:
		return v
	}
}

// ToFloat widens Integer and returns Float as-is; other tags fail.
func (v Value) ToFloat() (float32, bool) {
	switch v.Tag {
	case Integer:
		return float32(v.Int), true
	case Float:
		return v.Flt, true
	default:
		return 0, false
	}
}

// IsIntegerValued reports whether f equals its truncation - the rule used
// to decide Integer vs Float storage on assignment.
func IsIntegerValued(f float32) bool {
	return f == float32(int64(f))
}

// Concat requires both operands to be strings and returns a new owned string
// left || right. A Go empty string already behaves like the "null payload as
// empty string" rule, so no extra handling is required.
func Concat(left, right Value) (Value, error) {
	if left.Tag != String || right.Tag != String {
		return Value{}, fmt.Errorf("concat requires two strings, got %s and %s", left.Tag, right.Tag)
	}
	return NewString(left.Str + right.Str), nil
}

// RemoveOccurrences requires both operands to be strings and elides every
// exact, non-overlapping occurrence of pat from src, scanning left to right.
// An empty pattern yields a copy of src.
func RemoveOccurrences(src, pat Value) (Value, error) {
	if src.Tag != String || pat.Tag != String {
		return Value{}, fmt.Errorf("string removal requires two strings, got %s and %s", src.Tag, pat.Tag)
	}
	if pat.Str == "" {
		return NewString(src.Str), nil
	}
	return NewString(strings.ReplaceAll(src.Str, pat.Str, "")), nil
}

// PrepareHostValue normalizes a value returned across a host callback
// boundary: a non-owning string is duplicated into an owned copy, and a
// HostHandle with a nil descriptor or nil context inherits the supplied
// defaults. This step must run at every boundary where a host callback hands
// a Value back to the evaluator, or a borrowed string can outlive its source
// and be read after release.
func PrepareHostValue(v Value, defaultDescriptor *Descriptor, defaultContext any) Value {
	switch v.Tag {
	case String:
		if !v.OwnsPayload {
			return NewString(v.Str)
		}
		return v
	case HostHandle:
		out := v
		if out.Descriptor == nil {
			out.Descriptor = defaultDescriptor
		}
		if out.HostContext == nil {
			out.HostContext = defaultContext
		}
		return out
	default:
		return v
	}
}

// Get returns the element at index for an Array value. Growing the backing
// slice is never implicit on read: a missing element is the caller's concern
// (the evaluator surfaces it as UndefinedVar).
func (v Value) Get(index int) (Value, bool) {
	if v.Tag != Array || index < 0 || index >= len(v.Arr) {
		return Value{}, false
	}
	return v.Arr[index], true
}

// MaxArrayLen bounds how far a single array_set may grow the backing slice.
// A script driving an index this far is treated as a resource exhaustion
// attempt rather than allocated in full (the original engine returns
// out-of-memory from the same situation when its allocator is overrun).
const MaxArrayLen = 1 << 20

// ErrArrayTooLarge is returned by Set when index would grow the array past
// MaxArrayLen.
var ErrArrayTooLarge = errors.New("array index exceeds maximum array length")

// Set writes elem at index, growing the backing slice to exactly index+1
// elements when index is past the current length (the original engine's
// collection type grows on out-of-bounds array_set rather than failing).
func (v *Value) Set(index int, elem Value) error {
	if v.Tag != Array {
		return fmt.Errorf("index assignment requires an array, got %s", v.Tag)
	}
	if index < 0 {
		return fmt.Errorf("array index %d out of range", index)
	}
	if index >= MaxArrayLen {
		return ErrArrayTooLarge
	}
	if index >= len(v.Arr) {
		grown := make([]Value, index+1)
		copy(grown, v.Arr)
		v.Arr = grown
	}
	v.Arr[index] = elem.Clone()
	return nil
}
