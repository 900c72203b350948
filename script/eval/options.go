package eval

import (
	"io"
	"log/slog"

	"github.com/aledsdavies/escript/internal/invariant"
)

// Callbacks holds the four integration points the embedder may wire up.
// Every field is optional; Execute checks for nil before invoking one.
type Callbacks struct {
	// Output is reserved: the core never calls it today (spec Open
	// Question). A demo embedder may use it to print script-originated text.
	Output func(message string, userData any)

	// ExecuteCommand runs a shell-command statement's verbatim line.
	// Success is status == 0 (DF_RETURN_SUCCESS).
	ExecuteCommand func(line string, userData any) (status uint32, err error)

	// ResolveVariable, when set, is the fallback resolver for a plain
	// identifier read that matches no host symbol and no variable: the
	// evaluator calls it immediately before failing with UndefinedVar and
	// uses the resolved text as a string value.
	ResolveVariable func(name string, userData any) (string, bool)

	// CallFunction backs a non-shell function-call expression `name(arg)`.
	CallFunction func(name string, argument string, userData any) (status float64, err error)

	UserData any
}

const defaultMaxIterations = 1000

// Option configures a Context at construction time.
type Option func(*config)

type config struct {
	callbacks     Callbacks
	maxIterations int
	logger        *slog.Logger
}

func defaultConfig() config {
	return config{
		maxIterations: defaultMaxIterations,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithCallbacks wires the four embedder integration points.
func WithCallbacks(cb Callbacks) Option {
	return func(c *config) { c.callbacks = cb }
}

// WithMaxIterations overrides the default 1000-iteration `for` cap.
func WithMaxIterations(n int) Option {
	invariant.Precondition(n > 0, "max iterations must be positive, got %d", n)
	return func(c *config) { c.maxIterations = n }
}

// WithLogger overrides the context's diagnostic logger (discarded by default).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}
