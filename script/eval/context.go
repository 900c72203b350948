// Package eval implements the two-pass execution driver: parse the whole
// script to an AST, then walk it against a Context's scopes, host
// registry, and integration callbacks.
package eval

import (
	"log/slog"

	"github.com/aledsdavies/escript/script/hostregistry"
	"github.com/aledsdavies/escript/script/scope"
	"github.com/aledsdavies/escript/script/value"
)

// Context is top-level interpreter state owned by exactly one caller at a
// time. It is not safe for concurrent use — the engine is single-threaded
// and non-reentrant per Context by design.
type Context struct {
	global  *scope.Scope
	current *scope.Scope
	host    *hostregistry.Registry

	callbacks     Callbacks
	maxIterations int
	logger        *slog.Logger

	lastError    ErrCode
	errorMessage string

	hasReturnValue bool
	returnValue    value.Value
	returnTrigger  bool
}

// NewContext creates a Context with its global scope and host registry
// ready for Execute calls.
func NewContext(opts ...Option) *Context {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	global := scope.NewGlobal()
	return &Context{
		global:        global,
		current:       global,
		host:          hostregistry.New(),
		callbacks:     cfg.callbacks,
		maxIterations: cfg.maxIterations,
		logger:        cfg.logger,
	}
}

// resetErrorState clears the error and return-value state at the start of
// every Execute call; variables and host symbols persist across calls.
func (c *Context) resetErrorState() {
	c.lastError = OK
	c.errorMessage = ""
	c.hasReturnValue = false
	c.returnValue = value.Value{}
	c.returnTrigger = false
	c.current = c.global
}

func (c *Context) fail(err *ScriptError) {
	if c.lastError != OK {
		return // first error wins
	}
	c.lastError = err.Code
	c.errorMessage = err.Message
}

// SetVariable stores v under name in the global scope, following the same
// overwrite-in-parent-chain-or-insert rule as a script-level assignment.
func (c *Context) SetVariable(name string, v value.Value) (*scope.Variable, error) {
	if _, ok := c.host.Lookup(name); ok {
		return nil, newError(Syntax, "cannot assign to host symbol %q", name)
	}
	return c.global.Set(name, v), nil
}

// GetVariable looks up name across the global scope chain.
func (c *Context) GetVariable(name string) (*scope.Variable, bool) {
	return c.global.Find(name)
}

// DeleteVariable removes name from the global scope only.
func (c *Context) DeleteVariable(name string) {
	c.global.Delete(name)
}

// LastError returns the error code from the most recent Execute call.
func (c *Context) LastError() ErrCode {
	return c.lastError
}

// ErrorMessage returns the human-readable message from the most recent
// Execute call, empty when there was none.
func (c *Context) ErrorMessage() string {
	return c.errorMessage
}

// RegisterHostSymbol exposes a piece of native data to scripts under name.
func (c *Context) RegisterHostSymbol(name string, kind hostregistry.Kind, handle any, d *hostregistry.Descriptor, ctx any) error {
	return c.host.Register(name, kind, handle, d, ctx)
}

// UnregisterHostSymbol removes and releases name, if registered.
func (c *Context) UnregisterHostSymbol(name string) {
	c.host.Unregister(name)
}

// ClearHostSymbols releases every registered host symbol.
func (c *Context) ClearHostSymbols() {
	c.host.Clear()
}

// HasReturnValue reports whether the most recent Execute call hit a
// `return` statement.
func (c *Context) HasReturnValue() bool {
	return c.hasReturnValue
}

// ReturnValue returns the value captured by the most recent `return`
// statement, if any.
func (c *Context) ReturnValue() (value.Value, bool) {
	return c.returnValue, c.hasReturnValue
}

// IsScriptFile reports whether name ends in ".e0", case-insensitively —
// an embedder convenience, not consulted by Execute itself.
func IsScriptFile(name string) bool {
	if len(name) < 3 {
		return false
	}
	suffix := name[len(name)-3:]
	return (suffix[0] == '.') &&
		(suffix[1] == 'e' || suffix[1] == 'E') &&
		(suffix[2] == '0')
}
