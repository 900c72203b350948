// Package ast defines the tree produced by the parser and walked by the
// evaluator: a small set of statement nodes plus a single Expression node
// shape discriminated by flags rather than a sprawling type hierarchy.
package ast

import "github.com/aledsdavies/escript/script/lexer"

// Node is implemented by every statement-level AST node.
type Node interface {
	nodeMarker()
}

// Assignment is `target = value;` or `target[index] = value;`.
type Assignment struct {
	Target string
	Index  *Expression // nil unless this is an indexed assignment
	Value  *Expression
	Pos    lexer.Position
}

func (*Assignment) nodeMarker() {}

// If is `if (cond) then [else else_]`.
type If struct {
	Cond Node
	Then Node
	Else Node // nil if no else branch
	Pos  lexer.Position
}

func (*If) nodeMarker() {}

// For is `for (init; cond; inc) body`. Init and Inc are always Assignment.
type For struct {
	Init *Assignment
	Cond Node
	Inc  *Assignment
	Body Node
	Pos  lexer.Position
}

func (*For) nodeMarker() {}

// Block is a brace-delimited or top-level ordered statement list. Blocks do
// not introduce a new scope: names assigned inside a block persist in the
// surrounding scope.
type Block struct {
	Statements []Node
	Pos        lexer.Position
}

func (*Block) nodeMarker() {}

// Return is `return expr;`.
type Return struct {
	Value *Expression
	Pos   lexer.Position
}

func (*Return) nodeMarker() {}

// ExprKind discriminates an Expression's leaf or operator shape.
type ExprKind int

const (
	Number ExprKind = iota
	String
	Identifier
	Path
	OperatorBinary
	ComparisonBinary
)

// Expression is the single node shape for every value-producing construct:
// literals, identifiers, paths, binary operators/comparisons, and the
// postfix forms (array access, property access, function/shell calls)
// layered on top via the flag set and Base/Index/Property/Argument fields.
type Expression struct {
	Kind ExprKind
	Pos  lexer.Position

	// Number/String literal payload.
	NumberValue float64
	IsFloat     bool
	Text        string // string literal text, identifier/path name, or operator lexeme

	// Binary operator/comparison operands.
	Left  *Expression
	Right *Expression

	// Postfix chain: Base is non-nil when this node wraps an inner
	// expression with a further [index] or .property access.
	Base     *Expression
	Index    *Expression // set when IsArrayAccess
	Property string      // set when IsPropertyAccess

	IsVariable       bool
	IsFunctionCall   bool
	IsArrayAccess    bool
	IsPropertyAccess bool
	IsShellCommand   bool

	// Argument is the single call argument AST (nil if the call took none).
	Argument *Expression
	// CommandLine is the verbatim shell command text when IsShellCommand.
	CommandLine string
}

func (*Expression) nodeMarker() {}
