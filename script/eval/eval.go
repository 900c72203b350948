package eval

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/aledsdavies/escript/script/ast"
	"github.com/aledsdavies/escript/script/hostregistry"
	"github.com/aledsdavies/escript/script/parser"
	"github.com/aledsdavies/escript/script/value"
)

// Execute parses source into an AST and walks it against c. Variables and
// host symbols persist across calls; error and return-value state does not.
func (c *Context) Execute(source string) error {
	c.resetErrorState()

	root, err := parser.Parse(source)
	if err != nil {
		c.applyParseError(err)
		return &ScriptError{Code: c.lastError, Message: c.errorMessage}
	}

	c.execBlock(root)
	if c.lastError != OK {
		return &ScriptError{Code: c.lastError, Message: c.errorMessage}
	}
	return nil
}

func (c *Context) applyParseError(err error) {
	perr, ok := err.(*parser.ParseError)
	if !ok {
		c.fail(executionError())
		return
	}
	if perr.Kind == parser.UnmatchedBrace {
		c.fail(newError(UnmatchedBrace, "Syntax error (l:%d,c:%d)", perr.Position.Line, perr.Position.Column))
		return
	}
	c.fail(syntaxErrorAt(perr.Position.Line, perr.Position.Column))
}

func asExpr(n ast.Node) *ast.Expression {
	e, _ := n.(*ast.Expression)
	return e
}

func (c *Context) execBlock(blk *ast.Block) {
	for _, stmt := range blk.Statements {
		c.execStatement(stmt)
		if c.lastError != OK || c.returnTrigger {
			return
		}
	}
}

// execStatement dispatches one statement node. Blocks never push a new
// scope: variables assigned inside a block persist in the surrounding scope.
func (c *Context) execStatement(node ast.Node) {
	switch n := node.(type) {
	case *ast.Assignment:
		c.execAssignment(n)
	case *ast.If:
		c.execIf(n)
	case *ast.For:
		c.execFor(n)
	case *ast.Block:
		c.execBlock(n)
	case *ast.Return:
		c.execReturn(n)
	case *ast.Expression:
		v := c.evalExpression(n)
		v.Release()
	default:
		c.fail(executionError())
	}
}

func normalizeForStorage(v value.Value) value.Value {
	if v.Tag == value.Float && value.IsIntegerValued(v.Flt) {
		return value.Int32(int32(v.Flt))
	}
	return v
}

func (c *Context) execAssignment(a *ast.Assignment) {
	val := c.evalExpression(a.Value)
	if c.lastError != OK {
		val.Release()
		return
	}
	if val.Tag == value.HostHandle {
		val.Release()
		c.fail(newError(TypeMismatch, "cannot assign a host handle to %q", a.Target))
		return
	}
	if _, ok := c.host.Lookup(a.Target); ok {
		val.Release()
		c.fail(newError(Syntax, "cannot assign to host symbol %q", a.Target))
		return
	}
	val = normalizeForStorage(val)

	if a.Index == nil {
		c.global.Set(a.Target, val)
		val.Release()
		return
	}

	idxVal := c.evalExpression(a.Index)
	if c.lastError != OK {
		val.Release()
		idxVal.Release()
		return
	}
	idxF, ok := idxVal.ToFloat()
	idxVal.Release()
	if !ok {
		val.Release()
		c.fail(newError(TypeMismatch, "array index must be numeric"))
		return
	}

	variable, ok := c.global.Find(a.Target)
	if !ok {
		if int(idxF) >= value.MaxArrayLen {
			val.Release()
			c.fail(outOfMemory)
			return
		}
		variable = c.global.Set(a.Target, value.NewArray(int(idxF)+1))
	}
	if variable.Value.Tag != value.Array {
		val.Release()
		c.fail(newError(TypeMismatch, "%q is not an array", a.Target))
		return
	}
	if err := variable.Value.Set(int(idxF), val); err != nil {
		val.Release()
		if err == value.ErrArrayTooLarge {
			c.fail(outOfMemory)
			return
		}
		c.fail(newError(TypeMismatch, "%s", err))
		return
	}
	val.Release()
}

func (c *Context) execIf(n *ast.If) {
	cond := c.evalExpression(asExpr(n.Cond))
	if c.lastError != OK {
		cond.Release()
		return
	}
	f, ok := cond.ToFloat()
	cond.Release()
	if !ok {
		c.fail(newError(TypeMismatch, "if condition must be numeric"))
		return
	}
	if f != 0 {
		c.execStatement(n.Then)
		return
	}
	if n.Else != nil {
		c.execStatement(n.Else)
	}
}

func (c *Context) execFor(n *ast.For) {
	c.execAssignment(n.Init)
	if c.lastError != OK {
		return
	}

	iterations := 0
	for {
		cond := c.evalExpression(asExpr(n.Cond))
		if c.lastError != OK {
			cond.Release()
			return
		}
		f, ok := cond.ToFloat()
		cond.Release()
		if !ok {
			c.fail(newError(TypeMismatch, "for condition must be numeric"))
			return
		}
		if f == 0 {
			return
		}

		if iterations >= c.maxIterations {
			c.logger.Debug("for loop reached iteration cap", "max", c.maxIterations)
			return
		}
		iterations++

		c.execStatement(n.Body)
		if c.lastError != OK || c.returnTrigger {
			return
		}

		c.execAssignment(n.Inc)
		if c.lastError != OK || c.returnTrigger {
			return
		}
	}
}

func (c *Context) execReturn(n *ast.Return) {
	val := c.evalExpression(n.Value)
	if c.lastError != OK {
		val.Release()
		return
	}
	if val.Tag == value.Array || val.Tag == value.HostHandle {
		tag := val.Tag
		val.Release()
		c.fail(newError(TypeMismatch, "cannot return a %s", tag))
		return
	}
	c.returnValue = val.Clone()
	val.Release()
	c.hasReturnValue = true
	c.returnTrigger = true
}

// evalExpression evaluates e and returns its Value. On failure it sets the
// context's error state and returns the zero Value; callers must check
// c.lastError before using the result.
func (c *Context) evalExpression(e *ast.Expression) value.Value {
	if c.lastError != OK || e == nil {
		return value.Value{}
	}
	switch e.Kind {
	case ast.Number:
		// Numbers always evaluate as Float; the Integer-vs-Float storage
		// rule is applied at assignment time, not at the literal itself.
		return value.Float32(float32(e.NumberValue))
	case ast.String:
		return value.NewString(e.Text)
	case ast.OperatorBinary:
		return c.evalOperator(e)
	case ast.ComparisonBinary:
		return c.evalComparison(e)
	case ast.Identifier, ast.Path:
		return c.evalIdentifierLike(e)
	default:
		c.fail(executionError())
		return value.Value{}
	}
}

func (c *Context) evalOperator(e *ast.Expression) value.Value {
	left := c.evalExpression(e.Left)
	if c.lastError != OK {
		left.Release()
		return value.Value{}
	}
	right := c.evalExpression(e.Right)
	if c.lastError != OK {
		left.Release()
		right.Release()
		return value.Value{}
	}

	op := e.Text
	if left.Tag == value.String || right.Tag == value.String {
		switch op {
		case "+":
			res, err := value.Concat(left, right)
			left.Release()
			right.Release()
			if err != nil {
				c.fail(newError(TypeMismatch, "%s", err))
				return value.Value{}
			}
			return res
		case "-":
			res, err := value.RemoveOccurrences(left, right)
			left.Release()
			right.Release()
			if err != nil {
				c.fail(newError(TypeMismatch, "%s", err))
				return value.Value{}
			}
			return res
		default:
			left.Release()
			right.Release()
			c.fail(newError(TypeMismatch, "operator %q does not apply to strings", op))
			return value.Value{}
		}
	}

	lf, ok1 := left.ToFloat()
	rf, ok2 := right.ToFloat()
	left.Release()
	right.Release()
	if !ok1 || !ok2 {
		c.fail(newError(TypeMismatch, "operator %q requires numeric operands", op))
		return value.Value{}
	}

	switch op {
	case "+":
		return value.Float32(lf + rf)
	case "-":
		return value.Float32(lf - rf)
	case "*":
		return value.Float32(lf * rf)
	case "/":
		if rf == 0 {
			c.fail(newError(DivisionByZero, "division by zero"))
			return value.Value{}
		}
		if value.IsIntegerValued(lf) && value.IsIntegerValued(rf) {
			return value.Float32(float32(int64(lf) / int64(rf)))
		}
		return value.Float32(lf / rf)
	default:
		c.fail(executionError())
		return value.Value{}
	}
}

func (c *Context) evalComparison(e *ast.Expression) value.Value {
	left := c.evalExpression(e.Left)
	if c.lastError != OK {
		left.Release()
		return value.Value{}
	}
	right := c.evalExpression(e.Right)
	if c.lastError != OK {
		left.Release()
		right.Release()
		return value.Value{}
	}
	lf, ok1 := left.ToFloat()
	rf, ok2 := right.ToFloat()
	left.Release()
	right.Release()
	if !ok1 || !ok2 {
		c.fail(newError(TypeMismatch, "comparison requires numeric operands"))
		return value.Value{}
	}

	var result bool
	switch e.Text {
	case "<":
		result = lf < rf
	case "<=":
		result = lf <= rf
	case ">":
		result = lf > rf
	case ">=":
		result = lf >= rf
	case "==":
		result = lf == rf
	case "!=":
		result = lf != rf
	}
	if result {
		return value.Float32(1)
	}
	return value.Float32(0)
}

func (c *Context) evalIdentifierLike(e *ast.Expression) value.Value {
	if e.Kind == ast.Path && !e.IsShellCommand {
		c.fail(newError(Syntax, "unexpected path token %q", e.Text))
		return value.Value{}
	}
	if e.IsFunctionCall {
		return c.evalCall(e)
	}
	if e.Base != nil {
		if e.IsPropertyAccess {
			return c.evalPropertyAccess(e)
		}
		if e.IsArrayAccess {
			return c.evalArrayAccessChain(e)
		}
	}
	if e.IsArrayAccess {
		return c.evalPlainArrayAccess(e)
	}
	return c.evalPlainIdentifier(e)
}

func (c *Context) evalCall(e *ast.Expression) value.Value {
	if e.IsShellCommand {
		if c.callbacks.ExecuteCommand == nil {
			c.fail(newError(Syntax, "No command callback registered"))
			return value.Value{}
		}
		status, err := c.callbacks.ExecuteCommand(e.CommandLine, c.callbacks.UserData)
		if err != nil || status != 0 {
			c.fail(commandFailed(status))
			return value.Value{}
		}
		return value.Float32(float32(status))
	}

	if c.callbacks.CallFunction == nil {
		c.fail(newError(Syntax, "No function callback registered"))
		return value.Value{}
	}
	argText := ""
	if e.Argument != nil {
		argVal := c.evalExpression(e.Argument)
		if c.lastError != OK {
			return value.Value{}
		}
		argText = stringifyArg(argVal)
		argVal.Release()
	}
	status, err := c.callbacks.CallFunction(e.Text, argText, c.callbacks.UserData)
	if err != nil {
		c.fail(newError(Syntax, "%s", err))
		return value.Value{}
	}
	return value.Float32(float32(status))
}

func stringifyArg(v value.Value) string {
	switch v.Tag {
	case value.String:
		return v.Str
	case value.Integer:
		return fmt.Sprintf("%d", v.Int)
	case value.Float:
		if value.IsIntegerValued(v.Flt) {
			return fmt.Sprintf("%d", int64(v.Flt))
		}
		return fmt.Sprintf("%f", v.Flt)
	default:
		return ""
	}
}

func (c *Context) evalPlainArrayAccess(e *ast.Expression) value.Value {
	idxVal := c.evalExpression(e.Index)
	if c.lastError != OK {
		idxVal.Release()
		return value.Value{}
	}
	idxF, ok := idxVal.ToFloat()
	idxVal.Release()
	if !ok {
		c.fail(newError(TypeMismatch, "array index must be numeric"))
		return value.Value{}
	}
	idx := int(idxF)

	if sym, ok := c.host.Lookup(e.Text); ok {
		v, err := hostregistry.GetElement(sym, idx)
		if err != nil {
			c.fail(newError(TypeMismatch, "%s", err))
			return value.Value{}
		}
		return v
	}

	variable, ok := c.global.Find(e.Text)
	if !ok {
		c.fail(undefinedVarError("variable", e.Text, append(c.global.Names(), c.host.Names()...)))
		return value.Value{}
	}
	elem, ok := variable.Value.Get(idx)
	if !ok {
		c.fail(undefinedVarError("array element", fmt.Sprintf("%s[%d]", e.Text, idx), nil))
		return value.Value{}
	}
	return elem.Clone()
}

func (c *Context) evalPlainIdentifier(e *ast.Expression) value.Value {
	if sym, ok := c.host.Lookup(e.Text); ok {
		if sym.Kind == hostregistry.Property {
			v, err := hostregistry.GetProperty(sym)
			if err != nil {
				c.fail(newError(TypeMismatch, "%s", err))
				return value.Value{}
			}
			return v
		}
		ctx := sym.Context
		if ctx == nil {
			ctx = sym.Descriptor.Context
		}
		return value.Value{Tag: value.HostHandle, Handle: sym.Handle, Descriptor: sym.Descriptor, HostContext: ctx}
	}

	variable, ok := c.global.Find(e.Text)
	if !ok {
		if c.callbacks.ResolveVariable != nil {
			if resolved, ok := c.callbacks.ResolveVariable(e.Text, c.callbacks.UserData); ok {
				return value.NewString(resolved)
			}
		}
		c.fail(undefinedVarError("variable", e.Text, append(c.global.Names(), c.host.Names()...)))
		return value.Value{}
	}
	if variable.Value.Tag == value.String {
		return value.BorrowedString(variable.Value.Str)
	}
	return variable.Value
}

func (c *Context) evalPropertyAccess(e *ast.Expression) value.Value {
	base := c.evalExpression(e.Base)
	if c.lastError != OK {
		base.Release()
		return value.Value{}
	}
	if base.Tag != value.HostHandle || base.Descriptor == nil || base.Descriptor.GetProperty == nil {
		base.Release()
		c.fail(newError(TypeMismatch, "%q is not a host object with properties", e.Property))
		return value.Value{}
	}
	ctx := base.HostContext
	if ctx == nil {
		ctx = base.Descriptor.Context
	}
	v, err := base.Descriptor.GetProperty(ctx, e.Property)
	desc, hostCtx := base.Descriptor, ctx
	base.Release()
	if err != nil {
		c.fail(newError(TypeMismatch, "%s", pkgerrors.Wrapf(err, "get_property %q", e.Property)))
		return value.Value{}
	}
	return value.PrepareHostValue(v, desc, hostCtx)
}

func (c *Context) evalArrayAccessChain(e *ast.Expression) value.Value {
	base := c.evalExpression(e.Base)
	if c.lastError != OK {
		base.Release()
		return value.Value{}
	}
	if base.Tag != value.HostHandle || base.Descriptor == nil || base.Descriptor.GetElement == nil {
		base.Release()
		c.fail(newError(TypeMismatch, "base is not a host array"))
		return value.Value{}
	}
	idxVal := c.evalExpression(e.Index)
	if c.lastError != OK {
		base.Release()
		idxVal.Release()
		return value.Value{}
	}
	idxF, ok := idxVal.ToFloat()
	idxVal.Release()
	if !ok {
		base.Release()
		c.fail(newError(TypeMismatch, "array index must be numeric"))
		return value.Value{}
	}
	ctx := base.HostContext
	if ctx == nil {
		ctx = base.Descriptor.Context
	}
	v, err := base.Descriptor.GetElement(ctx, int(idxF))
	desc, hostCtx := base.Descriptor, ctx
	base.Release()
	if err != nil {
		c.fail(newError(TypeMismatch, "%s", pkgerrors.Wrapf(err, "get_element %d", int(idxF))))
		return value.Value{}
	}
	return value.PrepareHostValue(v, desc, hostCtx)
}
