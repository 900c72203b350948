package eval

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrCode mirrors the engine's error taxonomy: syntactic, semantic,
// arithmetic, resource, and structural failures.
type ErrCode int

const (
	OK ErrCode = iota
	Syntax
	UndefinedVar
	TypeMismatch
	DivisionByZero
	OutOfMemory
	UnmatchedBrace
)

func (c ErrCode) String() string {
	switch c {
	case OK:
		return "OK"
	case Syntax:
		return "Syntax"
	case UndefinedVar:
		return "UndefinedVar"
	case TypeMismatch:
		return "TypeMismatch"
	case DivisionByZero:
		return "DivisionByZero"
	case OutOfMemory:
		return "OutOfMemory"
	case UnmatchedBrace:
		return "UnmatchedBrace"
	default:
		return "Unknown"
	}
}

// maxMessageLen bounds ScriptError.Message, per the engine's 255-byte error
// message buffer.
const maxMessageLen = 255

// ScriptError is the error surfaced by Execute: one code, one message, the
// first error wins for a given Execute call.
type ScriptError struct {
	Code    ErrCode
	Message string
}

func (e *ScriptError) Error() string {
	return e.Message
}

func newError(code ErrCode, format string, args ...any) *ScriptError {
	msg := fmt.Sprintf(format, args...)
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen]
	}
	return &ScriptError{Code: code, Message: msg}
}

func syntaxErrorAt(line, col int) *ScriptError {
	return newError(Syntax, "Syntax error (l:%d,c:%d)", line, col)
}

func commandFailed(status uint32) *ScriptError {
	return newError(Syntax, "Command failed (0x%08X)", status)
}

var outOfMemory = newError(OutOfMemory, "Out of memory")

func executionError() *ScriptError {
	return newError(Syntax, "Execution error")
}

// undefinedVarError reports an unresolved name with a ranked "did you mean"
// suggestion appended as a second line when a close candidate exists. The
// first line is always the exact spec-mandated message so string-matching
// callers never see it change.
func undefinedVarError(kind, name string, candidates []string) *ScriptError {
	base := fmt.Sprintf("undefined %s: %s", kind, name)
	if suggestion := closestMatch(name, candidates); suggestion != "" {
		base = fmt.Sprintf("%s\ndid you mean %s?", base, suggestion)
	}
	return newError(UndefinedVar, "%s", base)
}

func closestMatch(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}
