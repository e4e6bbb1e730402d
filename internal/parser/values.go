package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/frankiebaffa/tenplates/internal/context"
	"github.com/frankiebaffa/tenplates/internal/tplerr"
	"github.com/frankiebaffa/tenplates/internal/value"
	"github.com/frankiebaffa/tenplates/internal/value/exprlex"
)

// parsePrimaryValue reads one self-terminating literal or alias
// reference directly off the cursor: a quoted string, a backtick
// literal, a number, or an alias. It never reads arithmetic operators;
// it reads the bare-value arguments of `call`.
func (p *Parser) parsePrimaryValue() (value.Value, error) {
	r, ok := p.cur.Current()
	if !ok {
		return value.Null, p.errHere(tplerr.Syntax, "expected a value, found end of input")
	}

	switch {
	case r == '"':
		return p.parseQuotedValue()
	case r == '`':
		return p.parseBacktickValue()
	case r == '-' || isDigit(r):
		return p.parseNumberValue()
	case isAliasStart(r):
		return p.parseAliasValue()
	default:
		return value.Null, p.errHere(tplerr.Syntax, "unexpected character %q in value position", r)
	}
}

func (p *Parser) parseQuotedValue() (value.Value, error) {
	raw, err := p.consumeQuotedRaw()
	if err != nil {
		return value.Null, err
	}
	return value.NewText(unquote(raw)), nil
}

func (p *Parser) parseBacktickValue() (value.Value, error) {
	raw, err := p.consumeBacktickRaw()
	if err != nil {
		return value.Null, err
	}
	return value.NewText(strings.Trim(raw, "`")), nil
}

func (p *Parser) parseNumberValue() (value.Value, error) {
	var b strings.Builder
	if r, ok := p.cur.Current(); ok && r == '-' {
		b.WriteRune(r)
		if err := p.cur.Step(); err != nil {
			return value.Null, err
		}
	}
	isReal := false
	for {
		r, ok := p.cur.Current()
		if !ok {
			break
		}
		if isDigit(r) {
			b.WriteRune(r)
			if err := p.cur.Step(); err != nil {
				return value.Null, err
			}
			continue
		}
		if r == '.' && !isReal {
			isReal = true
			b.WriteRune(r)
			if err := p.cur.Step(); err != nil {
				return value.Null, err
			}
			continue
		}
		break
	}
	text := b.String()
	if isReal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return value.Null, p.errHere(tplerr.Syntax, "invalid real literal %q", text)
		}
		return value.NewReal(f), nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return value.Null, p.errHere(tplerr.Syntax, "invalid integer literal %q", text)
	}
	return value.NewInteger(i), nil
}

func (p *Parser) parseAliasValue() (value.Value, error) {
	raw, err := p.readAliasText()
	if err != nil {
		return value.Null, err
	}
	alias, err := context.ParseAlias(raw)
	if err != nil {
		return value.Null, p.errHere(tplerr.Syntax, "%s", err)
	}
	v, _ := p.ctx.Resolve(alias)
	return v, nil
}

// readAliasText collects the raw `name([index])?(.field)*` text under
// the cursor without interpreting it.
func (p *Parser) readAliasText() (string, error) {
	var b strings.Builder
	for {
		r, ok := p.cur.Current()
		if !ok || !isAliasChar(r) {
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

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isAliasStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isAliasChar(r rune) bool {
	return isAliasStart(r) || isDigit(r) || r == '.' || r == '[' || r == ']'
}

// unquote strips the surrounding quotes from a raw "..." literal and
// resolves \" and \\ escapes.
func unquote(raw string) string {
	inner := raw
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) && (inner[i+1] == '"' || inner[i+1] == '\\') {
			b.WriteByte(inner[i+1])
			i++
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

// --- arithmetic expressions (spec §4.4), used by {{ EXPR }} and
// `let NAME = EXPR`. ---

// evalArithExpr tokenizes raw and evaluates it to a single Value,
// resolving Ident tokens against the parser's context.
func (p *Parser) evalArithExpr(raw string) (value.Value, error) {
	tokens, err := exprlex.Tokenize(raw)
	if err != nil {
		return value.Null, p.errHere(tplerr.Lexical, "%s", err)
	}
	if len(tokens) == 0 {
		return value.Null, p.errHere(tplerr.Syntax, "expected an expression")
	}
	e := &exprEval{ctx: p.ctx, tokens: tokens}
	v, err := e.parseAdditive()
	if err != nil {
		return value.Null, p.errHere(tplerr.Syntax, "%s", err)
	}
	if e.pos != len(e.tokens) {
		return value.Null, p.errHere(tplerr.Syntax, "unexpected trailing tokens in expression")
	}
	return v, nil
}

type exprEval struct {
	ctx    *context.Context
	tokens []*exprlex.Token
	pos    int
}

func (e *exprEval) peek() (*exprlex.Token, bool) {
	if e.pos >= len(e.tokens) {
		return nil, false
	}
	return e.tokens[e.pos], true
}

func (e *exprEval) next() *exprlex.Token {
	t := e.tokens[e.pos]
	e.pos++
	return t
}

func (e *exprEval) parseAdditive() (value.Value, error) {
	left, err := e.parseMulDiv()
	if err != nil {
		return value.Null, err
	}
	for {
		t, ok := e.peek()
		if !ok || (t.Kind != exprlex.Plus && t.Kind != exprlex.Minus) {
			return left, nil
		}
		op := e.next().Kind
		right, err := e.parseMulDiv()
		if err != nil {
			return value.Null, err
		}
		left, err = applyArith(op, left, right)
		if err != nil {
			return value.Null, err
		}
	}
}

func (e *exprEval) parseMulDiv() (value.Value, error) {
	left, err := e.parsePower()
	if err != nil {
		return value.Null, err
	}
	for {
		t, ok := e.peek()
		if !ok || (t.Kind != exprlex.Star && t.Kind != exprlex.Slash && t.Kind != exprlex.Percent) {
			return left, nil
		}
		op := e.next().Kind
		right, err := e.parsePower()
		if err != nil {
			return value.Null, err
		}
		left, err = applyArith(op, left, right)
		if err != nil {
			return value.Null, err
		}
	}
}

func (e *exprEval) parsePower() (value.Value, error) {
	left, err := e.parseUnary()
	if err != nil {
		return value.Null, err
	}
	if t, ok := e.peek(); ok && t.Kind == exprlex.StarStar {
		e.next()
		right, err := e.parsePower() // right-associative
		if err != nil {
			return value.Null, err
		}
		return applyArith(exprlex.StarStar, left, right)
	}
	return left, nil
}

func (e *exprEval) parseUnary() (value.Value, error) {
	if t, ok := e.peek(); ok && t.Kind == exprlex.Minus {
		e.next()
		v, err := e.parseUnary()
		if err != nil {
			return value.Null, err
		}
		return negate(v)
	}
	return e.parsePrimary()
}

func (e *exprEval) parsePrimary() (value.Value, error) {
	t, ok := e.peek()
	if !ok {
		return value.Null, fmtErr("unexpected end of expression")
	}
	switch t.Kind {
	case exprlex.LParen:
		e.next()
		v, err := e.parseAdditive()
		if err != nil {
			return value.Null, err
		}
		closer, ok := e.peek()
		if !ok || closer.Kind != exprlex.RParen {
			return value.Null, fmtErr("expected ')'")
		}
		e.next()
		return v, nil
	case exprlex.Number:
		e.next()
		if strings.ContainsRune(t.Text, '.') {
			f, err := strconv.ParseFloat(t.Text, 64)
			if err != nil {
				return value.Null, fmtErr("invalid real literal %q", t.Text)
			}
			return value.NewReal(f), nil
		}
		i, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return value.Null, fmtErr("invalid integer literal %q", t.Text)
		}
		return value.NewInteger(i), nil
	case exprlex.String:
		e.next()
		return value.NewText(unquote(t.Text)), nil
	case exprlex.Backtick:
		e.next()
		return value.NewText(strings.Trim(t.Text, "`")), nil
	case exprlex.Ident:
		e.next()
		alias, err := context.ParseAlias(t.Text)
		if err != nil {
			return value.Null, fmtErr("%s", err)
		}
		v, _ := e.ctx.Resolve(alias)
		return v, nil
	default:
		return value.Null, fmtErr("unexpected token %q in expression", t.Text)
	}
}

func negate(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindInteger:
		i, _ := v.Integer()
		return value.NewInteger(-i), nil
	case value.KindReal:
		r, _ := v.Real()
		return value.NewReal(-r), nil
	default:
		return value.Null, fmtErr("cannot negate a %s value", v.Kind())
	}
}

// applyArith implements spec §4.4's coercion table: any Real operand
// promotes the result to Real; two Integers stay Integer (/ truncates
// toward zero, matching Go's native integer division); + on Text
// concatenates, coercing the other side through AsText; every other
// combination is a type error.
func applyArith(op exprlex.TokenKind, l, r value.Value) (value.Value, error) {
	if op == exprlex.Plus && (l.Kind() == value.KindText || r.Kind() == value.KindText) {
		lt, err := l.AsText()
		if err != nil {
			return value.Null, err
		}
		rt, err := r.AsText()
		if err != nil {
			return value.Null, err
		}
		return value.NewText(lt + rt), nil
	}

	li, lIsInt := l.Integer()
	lr, lIsReal := l.Real()
	ri, rIsInt := r.Integer()
	rr, rIsReal := r.Real()

	if !((lIsInt || lIsReal) && (rIsInt || rIsReal)) {
		return value.Null, fmtErr("arithmetic is not defined between %s and %s", l.Kind(), r.Kind())
	}

	if lIsInt && rIsInt {
		switch op {
		case exprlex.Plus:
			return value.NewInteger(li + ri), nil
		case exprlex.Minus:
			return value.NewInteger(li - ri), nil
		case exprlex.Star:
			return value.NewInteger(li * ri), nil
		case exprlex.Slash:
			if ri == 0 {
				return value.Null, fmtErr("division by zero")
			}
			return value.NewInteger(li / ri), nil
		case exprlex.Percent:
			if ri == 0 {
				return value.Null, fmtErr("division by zero")
			}
			return value.NewInteger(li % ri), nil
		case exprlex.StarStar:
			return value.NewInteger(intPow(li, ri)), nil
		}
	}

	var lf, rf float64
	if lIsInt {
		lf = float64(li)
	} else {
		lf = lr
	}
	if rIsInt {
		rf = float64(ri)
	} else {
		rf = rr
	}
	switch op {
	case exprlex.Plus:
		return value.NewReal(lf + rf), nil
	case exprlex.Minus:
		return value.NewReal(lf - rf), nil
	case exprlex.Star:
		return value.NewReal(lf * rf), nil
	case exprlex.Slash:
		if rf == 0 {
			return value.Null, fmtErr("division by zero")
		}
		return value.NewReal(lf / rf), nil
	case exprlex.Percent:
		if rf == 0 {
			return value.Null, fmtErr("division by zero")
		}
		return value.NewReal(math.Mod(lf, rf)), nil
	case exprlex.StarStar:
		return value.NewReal(math.Pow(lf, rf)), nil
	}
	return value.Null, fmtErr("unsupported operator")
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	var result int64 = 1
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

func fmtErr(format string, args ...any) error {
	return tplerr.New(tplerr.Type, format, args...)
}
