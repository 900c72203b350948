package parser

import (
	"fmt"

	"github.com/aledsdavies/escript/script/lexer"
)

// Kind categorizes a parse failure; the driver maps it to the engine's
// ErrCode (Syntax or UnmatchedBrace — these are the only two the parser
// can raise).
type Kind int

const (
	Syntax Kind = iota
	UnmatchedBrace
)

// ParseError is returned by Parse. Its Error() string is informational
// only — callers that need the engine's exact "Syntax error (l:L,c:C)"
// wire format read Kind/Position directly and format it themselves.
type ParseError struct {
	Kind     Kind
	Message  string
	Position lexer.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Position.Line, e.Position.Column, e.Message)
}

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax error"
	case UnmatchedBrace:
		return "unmatched brace"
	default:
		return "parse error"
	}
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Kind: Syntax, Message: fmt.Sprintf(format, args...), Position: p.cur.Position}
}

func (p *Parser) braceErrorf(format string, args ...any) *ParseError {
	return &ParseError{Kind: UnmatchedBrace, Message: fmt.Sprintf(format, args...), Position: p.cur.Position}
}
