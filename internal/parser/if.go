package parser

import (
	"strings"

	"github.com/frankiebaffa/tenplates/internal/tplerr"
	"github.com/frankiebaffa/tenplates/internal/value"
)

// condTerminator tells parseCondition how to recognize the end of the
// clause it is reading: either a parenthesized group (stop at a bare
// ')') or a directive tag (stop at the tag's own closing delimiter,
// which the caller consumes).
type condTerminator int

const (
	condEOT   condTerminator = iota // stop before the tag's own "%}" or at end of input
	condParen                       // stop at, and consume, a ')'
)

// parseCondition implements the bypass-threaded boolean grammar of
// spec §4.5: a chain of terms joined by && / || (left to right, no
// precedence distinction between them, same as the reference grammar),
// where each term is either a parenthesized sub-condition or a bare
// value / value-relop-value comparison. bypass, when non-nil, means
// the caller already knows the result (because an enclosing branch is
// untaken, or short-circuit evaluation already decided it); every
// sub-expression is still lexically consumed so the cursor ends up in
// the right place, but comparisons are not actually evaluated.
func (p *Parser) parseCondition(bypass *bool, until condTerminator) (bool, error) {
	var result bool
	hasResult := false
	var pendingJoin string
	active := bypass

	for {
		if err := p.cur.SkipWhitespace(); err != nil {
			return false, err
		}

		termResult, err := p.parseConditionTerm(active)
		if err != nil {
			return false, err
		}

		if !hasResult {
			result = termResult
			hasResult = true
		} else {
			switch pendingJoin {
			case "&&":
				result = result && termResult
			case "||":
				result = result || termResult
			}
		}

		if err := p.cur.SkipWhitespace(); err != nil {
			return false, err
		}

		join, ok := p.peekJoinOp()
		if !ok {
			break
		}
		if err := p.stepN(2); err != nil {
			return false, err
		}
		pendingJoin = join
		if err := p.cur.SkipWhitespace(); err != nil {
			return false, err
		}

		switch {
		case bypass != nil:
			// the caller's bypass holds for the whole chain
		case join == "&&" && !result:
			b := false
			active = &b
		case join == "||" && result:
			b := true
			active = &b
		default:
			active = nil
		}
	}

	if until == condParen {
		r, ok := p.cur.Current()
		if !ok || r != ')' {
			return false, p.errHere(tplerr.Syntax, "expected ')' to close condition group")
		}
		if err := p.cur.Step(); err != nil {
			return false, err
		}
	}

	return result, nil
}

// parseConditionTerm reads one term of a condition: a parenthesized
// group, or a value (spec §4.4's arithmetic grammar, so "1 / 0" is one
// value) optionally followed by a relational operator and a second
// value. Operands are read as raw text first (quote/backtick-aware,
// stopped at the next relop/join/paren-close/tag-end boundary) and
// only evaluated through evalArithExpr once the full term has been
// lexically consumed — this is what lets a bypassed right-hand side
// like "1 / 0 == 0" be scanned in full without ever being divided.
func (p *Parser) parseConditionTerm(bypass *bool) (bool, error) {
	r, ok := p.cur.Current()
	if !ok {
		return false, p.errHere(tplerr.Syntax, "expected a condition term, found end of input")
	}
	if r == '(' {
		if err := p.cur.Step(); err != nil {
			return false, err
		}
		return p.parseCondition(bypass, condParen)
	}

	leftRaw, err := p.readCondValueRaw()
	if err != nil {
		return false, err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return false, err
	}

	relop, ok := p.peekRelOp()
	if !ok {
		if bypass != nil {
			return *bypass, nil
		}
		left, err := p.evalArithExpr(leftRaw)
		if err != nil {
			return false, err
		}
		return left.IsTruthy(), nil
	}
	if err := p.stepN(len(relop)); err != nil {
		return false, err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return false, err
	}
	rightRaw, err := p.readCondValueRaw()
	if err != nil {
		return false, err
	}

	if bypass != nil {
		return *bypass, nil
	}
	left, err := p.evalArithExpr(leftRaw)
	if err != nil {
		return false, err
	}
	right, err := p.evalArithExpr(rightRaw)
	if err != nil {
		return false, err
	}
	return evalRelOp(relop, left, right)
}

// readCondValueRaw collects the raw text of one condition operand,
// honoring quoted and backtick spans so a boundary token inside a
// literal is never mistaken for the operand's end.
func (p *Parser) readCondValueRaw() (string, error) {
	var b strings.Builder
	for {
		r, ok := p.cur.Current()
		if !ok {
			return b.String(), nil
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
		if p.atCondValueBoundary() {
			return b.String(), nil
		}
		b.WriteRune(r)
		if err := p.cur.Step(); err != nil {
			return "", err
		}
	}
}

// atCondValueBoundary reports whether the cursor sits at a token that
// ends a condition operand: a join operator, a relational operator, a
// bare ')', or the enclosing directive's own "%}" closer.
func (p *Parser) atCondValueBoundary() bool {
	if r, ok := p.cur.Current(); ok && r == ')' {
		return true
	}
	if _, ok := p.peekJoinOp(); ok {
		return true
	}
	if _, ok := p.peekRelOp(); ok {
		return true
	}
	return p.matchesHere([]rune("%}"))
}

// evalRelOp applies a relational operator between two values,
// following spec §4.5: == and != use Value.Equal (defined within like
// variants, plus Integer/Real); the ordering operators use
// Value.Compare and fail for any unsupported pair.
func evalRelOp(op string, l, r value.Value) (bool, error) {
	switch op {
	case "==":
		return l.Equal(r), nil
	case "!=":
		return !l.Equal(r), nil
	}
	cmp, err := l.Compare(r)
	if err != nil {
		return false, tplerr.New(tplerr.Type, "%s", err)
	}
	switch op {
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	}
	return false, tplerr.New(tplerr.Syntax, "unknown relational operator %q", op)
}

// peekJoinOp reports whether "&&" or "||" appears at the cursor
// without consuming it.
func (p *Parser) peekJoinOp() (string, bool) {
	r, ok := p.cur.Current()
	if !ok || (r != '&' && r != '|') {
		return "", false
	}
	n, ok := p.cur.Peek()
	if !ok || n != r {
		return "", false
	}
	if r == '&' {
		return "&&", true
	}
	return "||", true
}

// peekRelOp reports whether a relational operator appears at the
// cursor without consuming it.
func (p *Parser) peekRelOp() (string, bool) {
	r, ok := p.cur.Current()
	if !ok {
		return "", false
	}
	n, hasNext := p.cur.Peek()
	switch r {
	case '=':
		if hasNext && n == '=' {
			return "==", true
		}
	case '!':
		if hasNext && n == '=' {
			return "!=", true
		}
	case '>':
		if hasNext && n == '=' {
			return ">=", true
		}
		return ">", true
	case '<':
		if hasNext && n == '=' {
			return "<=", true
		}
		return "<", true
	}
	return "", false
}

// parseIfDirective implements the `if` / `else` block of spec §4.6.
// The condition is parsed once; whichever branch is not taken still
// runs through the ordinary interpreter with the sink bypassed, so its
// directives are fully consumed (and any context mutation inside it
// still happens) but nothing it writes reaches the real output.
func (p *Parser) parseIfDirective() error {
	cond, err := p.parseCondition(p.outerBypassPtr(), condEOT)
	if err != nil {
		return err
	}
	if err := p.expectLiteral("%}"); err != nil {
		return err
	}

	if !cond {
		p.out.PushBypass()
	}
	closedAt, err := p.run(map[string]bool{"else": true, "if": true})
	if !cond {
		p.out.PopBypass()
	}
	if err != nil {
		return err
	}
	if closedAt == "if" {
		return nil
	}

	if cond {
		p.out.PushBypass()
	}
	_, err = p.run(map[string]bool{"if": true})
	if cond {
		p.out.PopBypass()
	}
	return err
}
