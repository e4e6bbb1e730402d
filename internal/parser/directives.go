package parser

import (
	"strings"

	"github.com/frankiebaffa/tenplates/internal/tplerr"
)

// directiveTable dispatches a statement tag's name to the function
// that parses and executes it. Closers ("{%/ NAME %}") and "else" are
// recognized directly by enterStatement and never reach this table.
var directiveTable = map[string]func(*Parser) error{
	"set":     (*Parser).parseSet,
	"let":     (*Parser).parseLet,
	"unset":   (*Parser).parseUnset,
	"assert":  (*Parser).parseAssert,
	"if":      (*Parser).parseIfDirective,
	"foreach": (*Parser).parseForeach,
	"fordir":  (*Parser).parseFordir,
	"forfile": (*Parser).parseForfile,
	"include": (*Parser).parseInclude,
	"extend":  (*Parser).parseExtend,
	"call":    (*Parser).parseCall,
	"path":    (*Parser).parsePath,
	"exec":    (*Parser).parseExec,
	"execute": (*Parser).parseExec,
	"function": (*Parser).parseFunction,
}

// enterStatement consumes a "{%" or "<%" already detected by run, and
// either reports a closer/else (handing control back to the enclosing
// run loop) or fully parses and executes a directive before returning.
func (p *Parser) enterStatement(closers map[string]bool) (name string, isCloser bool, err error) {
	if err := p.stepN(2); err != nil { // consume "{%" / "<%"
		return "", false, err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return "", false, err
	}

	if r, ok := p.cur.Current(); ok && r == '/' {
		if err := p.cur.Step(); err != nil {
			return "", false, err
		}
		if err := p.cur.SkipWhitespace(); err != nil {
			return "", false, err
		}
		closed, err := p.readIdent()
		if err != nil {
			return "", false, err
		}
		if err := p.cur.SkipWhitespace(); err != nil {
			return "", false, err
		}
		if err := p.expectLiteral("%}"); err != nil {
			return "", false, err
		}
		if closers != nil && closers[closed] {
			return closed, true, nil
		}
		return "", false, p.errHere(tplerr.Syntax, "unexpected closing tag %q", closed).WithDirective(closed)
	}

	directive, err := p.readIdent()
	if err != nil {
		return "", false, err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return "", false, err
	}

	if directive == "else" {
		if err := p.expectLiteral("%}"); err != nil {
			return "", false, err
		}
		if closers != nil && closers["else"] {
			return "else", true, nil
		}
		return "", false, p.errHere(tplerr.Syntax, "unexpected else").WithDirective("else")
	}

	handler, ok := directiveTable[directive]
	if !ok {
		return "", false, p.errHere(tplerr.Syntax, "unknown directive %q", directive).WithDirective(directive)
	}
	if err := handler(p); err != nil {
		return "", false, err
	}
	return "", false, nil
}

// readIdent reads a bare identifier: a directive name, binding name,
// or loop variable.
func (p *Parser) readIdent() (string, error) {
	var b strings.Builder
	for {
		r, ok := p.cur.Current()
		if !ok || !isIdentChar(r, b.Len() == 0) {
			break
		}
		b.WriteRune(r)
		if err := p.cur.Step(); err != nil {
			return "", err
		}
	}
	if b.Len() == 0 {
		return "", p.errHere(tplerr.Syntax, "expected an identifier")
	}
	return b.String(), nil
}

func isIdentChar(r rune, first bool) bool {
	if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return true
	}
	if !first && isDigit(r) {
		return true
	}
	return false
}

// outerBypassPtr reports the bypass value a nested construct should
// inherit when it opens inside an already-untaken branch: every
// sub-expression is still lexically consumed, but its truth value is
// never actually computed (spec §4.5).
func (p *Parser) outerBypassPtr() *bool {
	if p.out.Bypassed() {
		b := true
		return &b
	}
	return nil
}
