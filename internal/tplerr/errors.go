// Package tplerr defines the error taxonomy raised by the TenPlates
// compiler: lexical, syntax, type, name, I/O, assertion, and exec
// failures, each carrying the source file, line, and column of the
// failing directive.
package tplerr

import (
	"fmt"
	"strings"
)

// Kind identifies which class of failure a CompileError represents.
type Kind int

const (
	// Lexical covers unexpected end-of-file inside a delimiter and
	// malformed escapes.
	Lexical Kind = iota
	// Syntax covers unknown directives, mismatched closers, and
	// malformed operator grammar.
	Syntax
	// Type covers cross-variant comparisons and arithmetic on
	// incompatible variants.
	Type
	// Name covers unset of an unknown binding or a call to an unknown
	// function.
	Name
	// Io covers file-not-found, unreadable, or not-a-directory errors.
	Io
	// Assertion covers a false `assert` directive.
	Assertion
	// Exec covers a spawned process failing to start.
	Exec
)

// String returns the human-readable name of the error kind.
func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Type:
		return "type error"
	case Name:
		return "name error"
	case Io:
		return "io error"
	case Assertion:
		return "assertion failure"
	case Exec:
		return "exec error"
	default:
		return "error"
	}
}

// CompileError is a fatal, positioned error raised during compilation.
// Partial output already written to the sink is never rolled back when
// one of these is returned.
type CompileError struct {
	Kind      Kind
	Message   string
	File      string
	Line      int
	Column    int
	Directive string
	Context   string
	Inner     error
}

// New creates a CompileError of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Kind, e.Message))

	if e.File != "" {
		if e.Line > 0 {
			if e.Column > 0 {
				parts = append(parts, fmt.Sprintf("at %s:%d:%d", e.File, e.Line, e.Column))
			} else {
				parts = append(parts, fmt.Sprintf("at %s:%d", e.File, e.Line))
			}
		} else {
			parts = append(parts, fmt.Sprintf("in file %s", e.File))
		}
	} else if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("at <stdin>:%d", e.Line))
	}

	if e.Directive != "" {
		parts = append(parts, fmt.Sprintf("in directive %q", e.Directive))
	}
	if e.Context != "" {
		parts = append(parts, fmt.Sprintf("\nContext: %s", e.Context))
	}
	if e.Inner != nil {
		parts = append(parts, fmt.Sprintf("\nCaused by: %s", e.Inner.Error()))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the wrapped cause, if any.
func (e *CompileError) Unwrap() error {
	return e.Inner
}

// WithFile sets the originating file path ("<stdin>" when reading from
// standard input) and returns the receiver for chaining.
func (e *CompileError) WithFile(file string) *CompileError {
	e.File = file
	return e
}

// WithPos sets the line and column of the failing directive.
func (e *CompileError) WithPos(line, column int) *CompileError {
	e.Line = line
	e.Column = column
	return e
}

// WithDirective annotates the error with the directive name in play.
func (e *CompileError) WithDirective(directive string) *CompileError {
	e.Directive = directive
	return e
}

// WithContext attaches the literal source text relevant to the error
// (used by assert to quote the failing condition).
func (e *CompileError) WithContext(context string) *CompileError {
	e.Context = context
	return e
}

// WithInner wraps an underlying cause (e.g. the os.PathError from a
// failed include).
func (e *CompileError) WithInner(inner error) *CompileError {
	e.Inner = inner
	return e
}

// Collection aggregates multiple CompileErrors, used by callers that
// want to keep going after a non-fatal-to-them failure (e.g. the CLI
// reporting every broken template under its --sweep directory).
type Collection struct {
	Errors []*CompileError
}

// Error implements the error interface.
func (c *Collection) Error() string {
	switch len(c.Errors) {
	case 0:
		return "no errors"
	case 1:
		return c.Errors[0].Error()
	}
	parts := []string{fmt.Sprintf("%d errors:", len(c.Errors))}
	for i, err := range c.Errors {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, err.Error()))
	}
	return strings.Join(parts, "\n")
}

// Add appends an error to the collection.
func (c *Collection) Add(err *CompileError) {
	c.Errors = append(c.Errors, err)
}

// HasErrors reports whether the collection is non-empty.
func (c *Collection) HasErrors() bool {
	return len(c.Errors) > 0
}
