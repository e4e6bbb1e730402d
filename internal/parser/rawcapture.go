package parser

import (
	"strings"

	"github.com/frankiebaffa/tenplates/internal/tplerr"
)

// blockDirectives names every directive whose opening tag ends with a
// plain "%}" (not "/%}") and therefore owns a body that must be
// lexically balanced against a matching "{%/ NAME %}" closer.
var blockDirectives = map[string]bool{
	"if": true, "foreach": true, "fordir": true, "forfile": true,
	"function": true, "set": true, "extend": true,
}

// captureRaw scans a block's body without executing anything, tracking
// nested block-directive depth so a closer or "else" belonging to an
// inner block is not mistaken for this call's own. It is used by
// foreach/fordir/forfile to capture a loop body once so it can be
// replayed — fully interpreted — against a fresh context binding per
// iteration, since the interpreter never builds a reusable AST.
func (p *Parser) captureRaw(closers map[string]bool) (raw string, closedAt string, err error) {
	var b strings.Builder
	depth := 0

	for {
		r, ok := p.cur.Current()
		if !ok {
			return "", "", p.errHere(tplerr.Syntax, "unexpected end of input, expected closing tag")
		}

		switch r {
		case '\\':
			if err := p.captureStep(&b); err != nil {
				return "", "", err
			}
			if _, ok := p.cur.Current(); ok {
				if err := p.captureStep(&b); err != nil {
					return "", "", err
				}
			}
			continue
		case '{', '<':
			next, hasNext := p.cur.Peek()
			if !hasNext {
				if err := p.captureStep(&b); err != nil {
					return "", "", err
				}
				continue
			}
			switch {
			case next == '%':
				isCloser, name, selfClosing, err := p.captureStatementTag(&b)
				if err != nil {
					return "", "", err
				}
				switch {
				case isCloser:
					if depth == 0 {
						if closers[name] {
							return b.String(), name, nil
						}
						return "", "", p.errHere(tplerr.Syntax, "unexpected closing tag %q", name)
					}
					depth--
				case name == "else":
					if depth == 0 && closers["else"] {
						return b.String(), "else", nil
					}
				case blockDirectives[name] && !selfClosing:
					depth++
				}
			case r == '{' && next == '#':
				if err := p.captureComment(&b); err != nil {
					return "", "", err
				}
			case r == '{' && next == '{':
				if err := p.captureUntilLiteral(&b, "}}"); err != nil {
					return "", "", err
				}
			default:
				if err := p.captureStep(&b); err != nil {
					return "", "", err
				}
			}
		default:
			if err := p.captureStep(&b); err != nil {
				return "", "", err
			}
		}
	}
}

// captureStep appends the current rune to b and steps past it.
func (p *Parser) captureStep(b *strings.Builder) error {
	r, _ := p.cur.Current()
	b.WriteRune(r)
	return p.cur.Step()
}

// captureUntilLiteral appends characters (honoring quoted and backtick
// spans) up to and including the literal terminator.
func (p *Parser) captureUntilLiteral(b *strings.Builder, terminator string) error {
	raw, err := p.readRawUntil(terminator)
	if err != nil {
		return err
	}
	b.WriteString(raw)
	return p.expectLiteralInto(b, terminator)
}

func (p *Parser) expectLiteralInto(b *strings.Builder, lit string) error {
	for _, want := range lit {
		got, ok := p.cur.Current()
		if !ok || got != want {
			return p.errHere(tplerr.Syntax, "expected %q", lit)
		}
		b.WriteRune(got)
		if err := p.cur.Step(); err != nil {
			return err
		}
	}
	return nil
}

// captureComment appends a {# ... #} comment verbatim, honoring \#} as
// an escaped terminator exactly like handleComment.
func (p *Parser) captureComment(b *strings.Builder) error {
	if err := p.captureStep(b); err != nil { // '{'
		return err
	}
	if err := p.captureStep(b); err != nil { // '#'
		return err
	}
	for {
		r, ok := p.cur.Current()
		if !ok {
			return p.errHere(tplerr.Lexical, "unexpected end of input in comment")
		}
		if r == '\\' {
			if n, ok := p.cur.Peek(); ok && n == '#' {
				if err := p.captureStep(b); err != nil {
					return err
				}
				if err := p.captureStep(b); err != nil {
					return err
				}
				if c, ok := p.cur.Current(); ok && c == '}' {
					if err := p.captureStep(b); err != nil {
						return err
					}
				}
				continue
			}
		}
		if r == '#' {
			if n, ok := p.cur.Peek(); ok && n == '}' {
				if err := p.captureStep(b); err != nil {
					return err
				}
				return p.captureStep(b)
			}
		}
		if err := p.captureStep(b); err != nil {
			return err
		}
	}
}

// captureStatementTag appends one complete "{% ... %}" / "<% ... %>"
// style tag to b and reports whether it was a closer, its directive
// (or closed) name, and whether its opening tag was self-closing
// ("/%}").
func (p *Parser) captureStatementTag(b *strings.Builder) (isCloser bool, name string, selfClosing bool, err error) {
	if err := p.captureStep(b); err != nil { // opener char 1
		return false, "", false, err
	}
	if err := p.captureStep(b); err != nil { // opener char 2 ('%')
		return false, "", false, err
	}
	if err := p.captureWhitespace(b); err != nil {
		return false, "", false, err
	}

	if r, ok := p.cur.Current(); ok && r == '/' {
		isCloser = true
		if err := p.captureStep(b); err != nil {
			return false, "", false, err
		}
		if err := p.captureWhitespace(b); err != nil {
			return false, "", false, err
		}
	}

	name, err = p.captureIdent(b)
	if err != nil {
		return false, "", false, err
	}
	if err := p.captureWhitespace(b); err != nil {
		return false, "", false, err
	}

	if isCloser {
		if err := p.expectLiteralInto(b, "%}"); err != nil {
			return false, "", false, err
		}
		return true, name, false, nil
	}
	if name == "else" {
		if err := p.expectLiteralInto(b, "%}"); err != nil {
			return false, "", false, err
		}
		return false, "else", false, nil
	}

	selfClosing, err = p.captureTagEnd(b)
	return false, name, selfClosing, err
}

func (p *Parser) captureWhitespace(b *strings.Builder) error {
	for {
		r, ok := p.cur.Current()
		if !ok || !(r == ' ' || r == '\t' || r == '\n' || r == '\r') {
			return nil
		}
		if err := p.captureStep(b); err != nil {
			return err
		}
	}
}

func (p *Parser) captureIdent(b *strings.Builder) (string, error) {
	var name strings.Builder
	for {
		r, ok := p.cur.Current()
		if !ok || !isIdentChar(r, name.Len() == 0) {
			break
		}
		name.WriteRune(r)
		if err := p.captureStep(b); err != nil {
			return "", err
		}
	}
	if name.Len() == 0 {
		return "", p.errHere(tplerr.Syntax, "expected an identifier")
	}
	return name.String(), nil
}

// captureTagEnd appends a tag's argument region up to and including
// its terminator ("%}" or "/%}"), honoring quoted/backtick spans, and
// reports whether the terminator was the self-closing form.
func (p *Parser) captureTagEnd(b *strings.Builder) (selfClosing bool, err error) {
	for {
		r, ok := p.cur.Current()
		if !ok {
			return false, p.errHere(tplerr.Lexical, "unexpected end of input, expected end of tag")
		}
		if r == '"' {
			lit, err := p.consumeQuotedRaw()
			if err != nil {
				return false, err
			}
			b.WriteString(lit)
			continue
		}
		if r == '`' {
			lit, err := p.consumeBacktickRaw()
			if err != nil {
				return false, err
			}
			b.WriteString(lit)
			continue
		}
		if r == '/' {
			if n, ok := p.cur.Peek(); ok && n == '%' {
				if err := p.captureStep(b); err != nil { // '/'
					return false, err
				}
				if err := p.expectLiteralInto(b, "%}"); err != nil {
					return false, err
				}
				return true, nil
			}
		}
		if r == '%' {
			if n, ok := p.cur.Peek(); ok && n == '}' {
				if err := p.expectLiteralInto(b, "%}"); err != nil {
					return false, err
				}
				return false, nil
			}
		}
		if err := p.captureStep(b); err != nil {
			return false, err
		}
	}
}
