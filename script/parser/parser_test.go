package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/escript/script/ast"
)

func TestParseSimpleAssignment(t *testing.T) {
	root, err := Parse("a = 1 + 2;")
	require.NoError(t, err)
	require.Len(t, root.Statements, 1)
	assign, ok := root.Statements[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "a", assign.Target)
	assert.Equal(t, ast.OperatorBinary, assign.Value.Kind)
	assert.Equal(t, "+", assign.Value.Text)
}

func TestParseOperatorPrecedence(t *testing.T) {
	root, err := Parse("b = (2 + 3) * 4;")
	require.NoError(t, err)
	assign := root.Statements[0].(*ast.Assignment)
	assert.Equal(t, "*", assign.Value.Text)
	assert.Equal(t, "+", assign.Value.Left.Text)
}

func TestParseForLoop(t *testing.T) {
	root, err := Parse("for (i = 0; i < 10; i = i + 1) { sum = sum + i; }")
	require.NoError(t, err)
	forNode, ok := root.Statements[0].(*ast.For)
	require.True(t, ok)
	assert.Equal(t, "i", forNode.Init.Target)
	assert.Equal(t, "i", forNode.Inc.Target)
	body, ok := forNode.Body.(*ast.Block)
	require.True(t, ok)
	assert.Len(t, body.Statements, 1)
}

func TestParseIfElse(t *testing.T) {
	root, err := Parse("if (a < 1) { b = 1; } else { b = 2; }")
	require.NoError(t, err)
	ifNode, ok := root.Statements[0].(*ast.If)
	require.True(t, ok)
	assert.NotNil(t, ifNode.Then)
	assert.NotNil(t, ifNode.Else)
}

func TestParseArrayIndexAssignment(t *testing.T) {
	root, err := Parse("arr[0] = 10;")
	require.NoError(t, err)
	assign := root.Statements[0].(*ast.Assignment)
	assert.Equal(t, "arr", assign.Target)
	require.NotNil(t, assign.Index)
}

func TestParseChainedPropertyAccess(t *testing.T) {
	root, err := Parse("value = hosts[1].value;")
	require.NoError(t, err)
	assign := root.Statements[0].(*ast.Assignment)
	expr := assign.Value
	require.True(t, expr.IsPropertyAccess)
	assert.Equal(t, "value", expr.Property)
	require.NotNil(t, expr.Base)
	assert.True(t, expr.Base.IsArrayAccess)
	assert.Equal(t, "hosts", expr.Base.Text)
}

func TestParseFunctionCallExpression(t *testing.T) {
	root, err := Parse(`result = greet("world");`)
	require.NoError(t, err)
	assign := root.Statements[0].(*ast.Assignment)
	assert.True(t, assign.Value.IsFunctionCall)
	assert.False(t, assign.Value.IsShellCommand)
	require.NotNil(t, assign.Value.Argument)
	assert.Equal(t, ast.String, assign.Value.Argument.Kind)
}

func TestParseShellCommandStatement(t *testing.T) {
	root, err := Parse("/bin/ls -la;\nresult = 1;")
	require.NoError(t, err)
	require.Len(t, root.Statements, 2)
	shell, ok := root.Statements[0].(*ast.Expression)
	require.True(t, ok)
	assert.True(t, shell.IsShellCommand)
	assert.Equal(t, "/bin/ls -la", shell.CommandLine)
}

func TestParseBareIdentifierStatementIsShellCommand(t *testing.T) {
	root, err := Parse("echo hello world;")
	require.NoError(t, err)
	shell, ok := root.Statements[0].(*ast.Expression)
	require.True(t, ok)
	assert.True(t, shell.IsShellCommand)
	assert.Equal(t, "echo hello world", shell.CommandLine)
}

func TestParseReturnRequiresSemicolon(t *testing.T) {
	_, err := Parse("return 1")
	require.Error(t, err)
}

func TestParseUnmatchedBraceIsReported(t *testing.T) {
	_, err := Parse("if (a < 1) { b = 1;")
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, UnmatchedBrace, perr.Kind)
}

func TestParseShellLineStopsAtUnquotedSemicolon(t *testing.T) {
	root, err := Parse(`echo "a;b" next;`)
	require.NoError(t, err)
	shell := root.Statements[0].(*ast.Expression)
	assert.Equal(t, `echo "a;b" next`, shell.CommandLine)
}
