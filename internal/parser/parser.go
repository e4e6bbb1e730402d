// Package parser implements the TenPlates character-level interpreter:
// the lexer/dispatcher of spec §4.1, the directive sub-parsers of
// §4.6-§4.8, the conditional grammar of §4.5, and the tri-ownership
// protocol of §5 translated into Go as methods on a single *Parser —
// since only one call frame is ever active at a time (depth-first
// recursion mirrors move-in/move-out discipline), there is no
// interior mutability and no aliasing of the cursor, sink, or context.
package parser

import (
	"strings"

	"github.com/frankiebaffa/tenplates/internal/context"
	"github.com/frankiebaffa/tenplates/internal/cursor"
	"github.com/frankiebaffa/tenplates/internal/fsys"
	"github.com/frankiebaffa/tenplates/internal/sink"
	"github.com/frankiebaffa/tenplates/internal/tplerr"
)

// Options configures a Parser beyond its required collaborators.
type Options struct {
	MaxIncludeDepth int
}

// DefaultOptions returns the options every top-level compile starts
// with.
func DefaultOptions() Options {
	return Options{MaxIncludeDepth: 64}
}

// Parser is the single owner of one cursor, one sink, and one context
// at any instant. Directive sub-parsers are methods that recurse
// depth-first; there is never more than one active mutator.
type Parser struct {
	cur           *cursor.Cursor
	out           *sink.Sink
	ctx           *context.Context
	fs            fsys.FS
	opts          Options
	includeDepth  int
}

// New builds a top-level parser over cur, writing to out, evaluating
// against ctx, and resolving filesystem operations through fs.
func New(cur *cursor.Cursor, out *sink.Sink, ctx *context.Context, fs fsys.FS, opts Options) *Parser {
	return &Parser{cur: cur, out: out, ctx: ctx, fs: fs, opts: opts}
}

// Parse compiles the entire input to end-of-file.
func (p *Parser) Parse() error {
	_, err := p.run(nil)
	return err
}

// closerName is returned by run to report which closer (or "else")
// stopped it; empty means run reached end-of-input cleanly (only
// valid for the top-level call, where closers is nil).
func (p *Parser) run(closers map[string]bool) (string, error) {
	for {
		r, ok := p.cur.Current()
		if !ok {
			if closers != nil {
				return "", p.errHere(tplerr.Syntax, "unexpected end of input, expected closing tag")
			}
			return "", nil
		}

		switch r {
		case '\\':
			if err := p.handleEscape(); err != nil {
				return "", err
			}
			continue
		case '{', '<':
			next, hasNext := p.cur.Peek()
			if hasNext && next == '%' {
				name, isCloser, err := p.enterStatement(closers)
				if err != nil {
					return "", err
				}
				if isCloser {
					return name, nil
				}
				continue
			}
			if r == '{' && hasNext && next == '{' {
				if err := p.handleExpression(); err != nil {
					return "", err
				}
				continue
			}
			if r == '{' && hasNext && next == '#' {
				if err := p.handleComment(); err != nil {
					return "", err
				}
				continue
			}
			if err := p.writeRune(r); err != nil {
				return "", err
			}
			if err := p.cur.Step(); err != nil {
				return "", err
			}
		default:
			if err := p.writeRune(r); err != nil {
				return "", err
			}
			if err := p.cur.Step(); err != nil {
				return "", err
			}
		}
	}
}

func (p *Parser) writeRune(r rune) error {
	return p.out.WriteString(string(r))
}

// handleEscape implements spec §4.1's escape rules: \<newline> is a
// line continuation that swallows the newline and the following
// line's leading whitespace; \{, \<, \#, \\ emit the following
// character literally and suppress delimiter recognition there; any
// other backslash is written through literally.
func (p *Parser) handleEscape() error {
	if err := p.cur.Step(); err != nil { // consume '\'
		return err
	}
	next, ok := p.cur.Current()
	if !ok {
		return p.errHere(tplerr.Lexical, "unexpected end of input after '\\'")
	}

	switch next {
	case '\n':
		if err := p.cur.Step(); err != nil { // consume '\n'
			return err
		}
		for {
			c, ok := p.cur.Current()
			if !ok || !(c == ' ' || c == '\t') {
				break
			}
			if err := p.cur.Step(); err != nil {
				return err
			}
		}
		return nil
	case '{', '<', '#', '\\':
		if err := p.writeRune(next); err != nil {
			return err
		}
		return p.cur.Step()
	default:
		return p.writeRune('\\')
	}
}

// handleExpression implements {{ EXPR }}.
func (p *Parser) handleExpression() error {
	if err := p.stepN(2); err != nil { // consume "{{"
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
	raw, err := p.readRawUntil("}}")
	if err != nil {
		return err
	}
	if err := p.expectLiteral("}}"); err != nil {
		return err
	}

	v, err := p.evalArithExpr(raw)
	if err != nil {
		return err
	}
	text, err := v.AsText()
	if err != nil {
		return p.errHere(tplerr.Type, "%s", err)
	}
	return p.out.WriteString(text)
}

// handleComment implements {# ... #}, honoring \#} as an escaped
// terminator.
func (p *Parser) handleComment() error {
	if err := p.stepN(2); err != nil { // consume "{#"
		return err
	}
	for {
		r, ok := p.cur.Current()
		if !ok {
			return p.errHere(tplerr.Lexical, "unexpected end of input in comment")
		}
		if r == '\\' {
			n, ok := p.cur.Peek()
			if ok && n == '#' {
				if err := p.stepN(2); err != nil { // consume "\#"
					return err
				}
				if c, ok := p.cur.Current(); ok && c == '}' {
					if err := p.cur.Step(); err != nil {
						return err
					}
				}
				continue
			}
		}
		if r == '#' {
			if n, ok := p.cur.Peek(); ok && n == '}' {
				return p.stepN(2)
			}
		}
		if err := p.cur.Step(); err != nil {
			return err
		}
	}
}

// stepN advances the cursor n times.
func (p *Parser) stepN(n int) error {
	for i := 0; i < n; i++ {
		if err := p.cur.Step(); err != nil {
			return err
		}
	}
	return nil
}

// expectLiteral consumes exactly the given literal sequence or
// returns a syntax error.
func (p *Parser) expectLiteral(lit string) error {
	for _, want := range lit {
		got, ok := p.cur.Current()
		if !ok || got != want {
			return p.errHere(tplerr.Syntax, "expected %q", lit)
		}
		if err := p.cur.Step(); err != nil {
			return err
		}
	}
	return nil
}

// readRawUntil scans raw characters up to (not including) the first
// unquoted occurrence of terminator, honoring quoted-string and
// backtick-literal spans so a terminator sequence inside one is not
// mistaken for the real end.
func (p *Parser) readRawUntil(terminator string) (string, error) {
	var b strings.Builder
	term := []rune(terminator)

	for {
		r, ok := p.cur.Current()
		if !ok {
			return "", p.errHere(tplerr.Lexical, "unexpected end of input, expected %q", terminator)
		}

		if r == '"' {
			lit, err := p.consumeQuotedRaw()
			if err != nil {
				return "", err
			}
			b.WriteString(lit)
			continue
		}
		if r == '`' {
			lit, err := p.consumeBacktickRaw()
			if err != nil {
				return "", err
			}
			b.WriteString(lit)
			continue
		}

		if p.matchesHere(term) {
			return b.String(), nil
		}

		b.WriteRune(r)
		if err := p.cur.Step(); err != nil {
			return "", err
		}
	}
}

// matchesHere reports whether term appears starting at the current
// rune, without consuming anything. Supports terminators of any length
// (the longest in use is the three-rune "/%}" self-closing tag).
func (p *Parser) matchesHere(term []rune) bool {
	for i, want := range term {
		r, ok := p.cur.PeekAt(i)
		if !ok || r != want {
			return false
		}
	}
	return true
}

// consumeQuotedRaw consumes a "..." literal, including its quotes and
// \" / \\ escapes, returning exactly what was read from source.
func (p *Parser) consumeQuotedRaw() (string, error) {
	var b strings.Builder
	b.WriteRune('"')
	if err := p.cur.Step(); err != nil {
		return "", err
	}
	for {
		r, ok := p.cur.Current()
		if !ok {
			return "", p.errHere(tplerr.Lexical, "unterminated string literal")
		}
		if r == '\\' {
			n, ok := p.cur.Peek()
			if ok && (n == '"' || n == '\\') {
				b.WriteRune(r)
				b.WriteRune(n)
				if err := p.stepN(2); err != nil {
					return "", err
				}
				continue
			}
		}
		b.WriteRune(r)
		if err := p.cur.Step(); err != nil {
			return "", err
		}
		if r == '"' {
			return b.String(), nil
		}
	}
}

// consumeBacktickRaw consumes a `...` literal verbatim (no escape
// interpretation).
func (p *Parser) consumeBacktickRaw() (string, error) {
	var b strings.Builder
	b.WriteRune('`')
	if err := p.cur.Step(); err != nil {
		return "", err
	}
	for {
		r, ok := p.cur.Current()
		if !ok {
			return "", p.errHere(tplerr.Lexical, "unterminated backtick literal")
		}
		b.WriteRune(r)
		if err := p.cur.Step(); err != nil {
			return "", err
		}
		if r == '`' {
			return b.String(), nil
		}
	}
}

// errHere builds a CompileError positioned at the cursor's current
// line/column and file.
func (p *Parser) errHere(kind tplerr.Kind, format string, args ...any) error {
	return tplerr.New(kind, format, args...).
		WithFile(p.cur.File()).
		WithPos(p.cur.Line(), p.cur.Column())
}
