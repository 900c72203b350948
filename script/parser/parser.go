// Package parser turns a token stream into the AST via recursive descent
// with explicit precedence climbing, exactly the grammar in the engine's
// language definition.
package parser

import (
	"strings"

	"github.com/aledsdavies/escript/script/ast"
	"github.com/aledsdavies/escript/script/lexer"
)

// Parser holds the full pre-scanned token stream plus the original source,
// the latter needed verbatim for shell-command statement capture.
type Parser struct {
	src    string
	tokens []lexer.Token
	pos    int
	cur    lexer.Token
}

// Parse lexes and parses source into a root Block containing every
// top-level statement, stopping at EOF.
func Parse(source string) (*ast.Block, error) {
	p := newParser(source)
	root := &ast.Block{Pos: p.cur.Position}
	for p.cur.Type != lexer.EOF {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		root.Statements = append(root.Statements, stmt)
	}
	return root, nil
}

func newParser(source string) *Parser {
	l := lexer.New(source)
	var tokens []lexer.Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == lexer.EOF {
			break
		}
	}
	p := &Parser{src: source, tokens: tokens}
	p.cur = p.tokens[0]
	return p
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.cur = p.tokens[p.pos]
}

func (p *Parser) peek(ahead int) lexer.Token {
	idx := p.pos + ahead
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	if p.cur.Type != tt {
		return lexer.Token{}, p.errorf("expected %s, got %q", what, p.cur.Lexeme)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

// consumeSemicolon eats a trailing ';' if present. mandatory controls
// whether its absence is an error.
func (p *Parser) consumeSemicolon(mandatory bool) error {
	if p.cur.Type == lexer.SEMICOLON {
		p.advance()
		return nil
	}
	if mandatory {
		return p.errorf("expected ';'")
	}
	return nil
}

func (p *Parser) statement() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.IF:
		return p.ifStmt()
	case lexer.FOR:
		return p.forStmt()
	case lexer.RETURN:
		return p.returnStmt()
	case lexer.LBRACE:
		return p.block()
	case lexer.STRING, lexer.PATH:
		return p.shellStmt()
	case lexer.IDENTIFIER:
		switch p.peek(1).Type {
		case lexer.ASSIGN, lexer.LBRACKET:
			return p.assignStmt()
		case lexer.LPAREN:
			if p.identifierFollowedByParen(p.cur.Position.Offset) {
				return p.exprStmt()
			}
			return p.shellStmt()
		default:
			return p.shellStmt()
		}
	default:
		return p.exprStmt()
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// identifierFollowedByParen reports whether '(' follows the identifier
// starting at src offset start, skipping only spaces and tabs. A newline in
// between means the line is a shell-command statement, not a call: the
// language's call-vs-shell split looks only at the next significant char on
// the same line.
func (p *Parser) identifierFollowedByParen(start int) bool {
	i := start
	for i < len(p.src) && isIdentByte(p.src[i]) {
		i++
	}
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\t') {
		i++
	}
	return i < len(p.src) && p.src[i] == '('
}

func (p *Parser) block() (*ast.Block, error) {
	open, err := p.expect(lexer.LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	blk := &ast.Block{Pos: open.Position}
	for p.cur.Type != lexer.RBRACE {
		if p.cur.Type == lexer.EOF {
			return nil, p.braceErrorf("unmatched '{' opened at %d:%d", open.Position.Line, open.Position.Column)
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		blk.Statements = append(blk.Statements, stmt)
	}
	p.advance() // consume '}'
	return blk, nil
}

func (p *Parser) ifStmt() (ast.Node, error) {
	tok := p.cur
	p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	thenStmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Cond: cond, Then: thenStmt, Pos: tok.Position}
	if p.cur.Type == lexer.ELSE {
		p.advance()
		elseStmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		node.Else = elseStmt
	}
	return node, nil
}

func (p *Parser) forStmt() (ast.Node, error) {
	tok := p.cur
	p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	init, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	cond, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	inc, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.For{Init: init, Cond: cond, Inc: inc, Body: body, Pos: tok.Position}, nil
}

func (p *Parser) returnStmt() (ast.Node, error) {
	tok := p.cur
	p.advance()
	val, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(true); err != nil {
		return nil, err
	}
	return &ast.Return{Value: val, Pos: tok.Position}, nil
}

func (p *Parser) assignStmt() (ast.Node, error) {
	assign, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(true); err != nil {
		return nil, err
	}
	return assign, nil
}

// assignment parses `IDENT [ '[' comparison ']' ] '=' comparison` without
// consuming a trailing semicolon — shared between a bare assignment
// statement and the init/increment clauses of a for loop.
func (p *Parser) assignment() (*ast.Assignment, error) {
	nameTok, err := p.expect(lexer.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	a := &ast.Assignment{Target: nameTok.Lexeme, Pos: nameTok.Position}

	if p.cur.Type == lexer.LBRACKET {
		p.advance()
		idx, err := p.comparison()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
			return nil, err
		}
		a.Index = idx
	}

	if _, err := p.expect(lexer.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	val, err := p.comparison()
	if err != nil {
		return nil, err
	}
	a.Value = val
	return a, nil
}

func (p *Parser) exprStmt() (ast.Node, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(false); err != nil {
		return nil, err
	}
	return expr, nil
}

// shellStmt captures the verbatim source text from the current token's
// start up to the next unquoted ';', '\n', or '\r', trims trailing
// spaces/tabs, and resynchronizes the token cursor past the consumed text.
func (p *Parser) shellStmt() (ast.Node, error) {
	tok := p.cur
	start := tok.Position.Offset
	end := start
	var quote byte
	for end < len(p.src) {
		c := p.src[end]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			end++
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			end++
			continue
		}
		if c == ';' || c == '\n' || c == '\r' {
			break
		}
		end++
	}
	line := strings.TrimRight(p.src[start:end], " \t")

	for p.pos < len(p.tokens)-1 && p.tokens[p.pos].Position.Offset < end {
		p.pos++
	}
	p.cur = p.tokens[p.pos]

	if err := p.consumeSemicolon(false); err != nil {
		return nil, err
	}

	return &ast.Expression{
		Kind:           ast.Identifier,
		IsFunctionCall: true,
		IsShellCommand: true,
		CommandLine:    line,
		Text:           line,
		Pos:            tok.Position,
	}, nil
}

var comparisonOps = map[lexer.TokenType]bool{
	lexer.LT: true, lexer.LT_EQ: true, lexer.GT: true, lexer.GT_EQ: true,
	lexer.EQ_EQ: true, lexer.NOT_EQ: true,
}

func (p *Parser) comparison() (*ast.Expression, error) {
	left, err := p.expression()
	if err != nil {
		return nil, err
	}
	for comparisonOps[p.cur.Type] {
		opTok := p.cur
		p.advance()
		right, err := p.expression()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ComparisonBinary, Text: opTok.Lexeme, Left: left, Right: right, Pos: opTok.Position}
	}
	return left, nil
}

func (p *Parser) expression() (*ast.Expression, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.PLUS || p.cur.Type == lexer.MINUS {
		opTok := p.cur
		p.advance()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.OperatorBinary, Text: opTok.Lexeme, Left: left, Right: right, Pos: opTok.Position}
	}
	return left, nil
}

func (p *Parser) term() (*ast.Expression, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.STAR || p.cur.Type == lexer.SLASH {
		opTok := p.cur
		p.advance()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.OperatorBinary, Text: opTok.Lexeme, Left: left, Right: right, Pos: opTok.Position}
	}
	return left, nil
}

func (p *Parser) factor() (*ast.Expression, error) {
	switch p.cur.Type {
	case lexer.NUMBER:
		tok := p.cur
		p.advance()
		return &ast.Expression{Kind: ast.Number, NumberValue: tok.Number, IsFloat: tok.IsFloat, Pos: tok.Position}, nil
	case lexer.STRING:
		tok := p.cur
		p.advance()
		return &ast.Expression{Kind: ast.String, Text: tok.Lexeme, Pos: tok.Position}, nil
	case lexer.PATH:
		tok := p.cur
		p.advance()
		return &ast.Expression{Kind: ast.Path, Text: tok.Lexeme, Pos: tok.Position}, nil
	case lexer.LPAREN:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.IDENTIFIER:
		return p.primary()
	default:
		return nil, p.errorf("unexpected token %q", p.cur.Lexeme)
	}
}

// primary parses `IDENT [ '(' [comparison] ')' ] { '[' comparison ']' | '.' IDENT }`.
func (p *Parser) primary() (*ast.Expression, error) {
	tok := p.cur
	p.advance()
	node := &ast.Expression{Kind: ast.Identifier, Text: tok.Lexeme, IsVariable: true, Pos: tok.Position}

	if p.cur.Type == lexer.LPAREN {
		node.IsVariable = false
		node.IsFunctionCall = true
		p.advance()
		if p.cur.Type != lexer.RPAREN {
			arg, err := p.comparison()
			if err != nil {
				return nil, err
			}
			node.Argument = arg
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
	}

	for {
		switch p.cur.Type {
		case lexer.LBRACKET:
			p.advance()
			idx, err := p.comparison()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			if node.Base == nil && !node.IsArrayAccess && !node.IsPropertyAccess && !node.IsFunctionCall {
				node.IsArrayAccess = true
				node.Index = idx
			} else {
				node = &ast.Expression{Kind: ast.Identifier, Base: node, IsArrayAccess: true, Index: idx, Pos: tok.Position}
			}
		case lexer.DOT:
			p.advance()
			propTok, err := p.expect(lexer.IDENTIFIER, "identifier")
			if err != nil {
				return nil, err
			}
			// '.name' always wraps the current node as its Base, even on a
			// plain identifier: the evaluator resolves properties through Base.
			node = &ast.Expression{Kind: ast.Identifier, Base: node, IsPropertyAccess: true, Property: propTok.Lexeme, Pos: tok.Position}
		default:
			return node, nil
		}
	}
}
