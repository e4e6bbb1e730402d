package parser

import (
	"strings"

	"github.com/frankiebaffa/tenplates/internal/cursor"
	"github.com/frankiebaffa/tenplates/internal/sink"
	"github.com/frankiebaffa/tenplates/internal/tplerr"
	"github.com/frankiebaffa/tenplates/internal/value"
)

// parseSet implements `{% set NAME %}BODY{%/ set %}` (spec §4.3): the
// body is compiled once into a private buffer and bound with
// append-as-list semantics. If set itself sits inside an untaken
// branch, the private buffer inherits the bypass so the bound value
// ends up empty rather than the body's real rendering.
func (p *Parser) parseSet() error {
	name, err := p.readIdent()
	if err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
	if err := p.expectLiteral("%}"); err != nil {
		return err
	}

	var buf strings.Builder
	tempOut := sink.New(&buf)
	if p.out.Bypassed() {
		tempOut.PushBypass()
	}

	orig := p.out
	p.out = tempOut
	_, err = p.run(map[string]bool{"set": true})
	p.out = orig
	if err != nil {
		return err
	}

	p.ctx.Set(name, value.NewText(buf.String()))
	return nil
}

// parseLet implements `{% let NAME = EXPR /%}`: an overwrite binding.
func (p *Parser) parseLet() error {
	name, err := p.readIdent()
	if err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
	if err := p.expectLiteral("="); err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
	raw, err := p.readRawUntil("/%}")
	if err != nil {
		return err
	}
	if err := p.expectLiteral("/%}"); err != nil {
		return err
	}

	v, err := p.evalArithExpr(raw)
	if err != nil {
		return err
	}
	p.ctx.Let(name, v)
	return nil
}

// parseUnset implements `{% unset NAME /%}`.
func (p *Parser) parseUnset() error {
	name, err := p.readIdent()
	if err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
	if err := p.expectLiteral("/%}"); err != nil {
		return err
	}
	if !p.ctx.Unset(name) {
		return p.errHere(tplerr.Name, "unset of unknown binding %q", name).WithDirective("unset")
	}
	return nil
}

// parseAssert implements `{% assert COND /%}`. Inside an untaken
// branch the condition is still lexically consumed but never actually
// checked, matching the bypass treatment applied everywhere else. The
// raw source text of COND is captured first (rather than parsed
// straight off the live cursor) so a failing assertion's diagnostic
// can quote it verbatim, per spec §4.8/§7.
func (p *Parser) parseAssert() error {
	raw, err := p.readRawUntil("/%}")
	if err != nil {
		return err
	}
	if err := p.expectLiteral("/%}"); err != nil {
		return err
	}

	bypass := p.outerBypassPtr()
	cond, err := p.evalConditionText(raw, bypass)
	if err != nil {
		return err
	}
	if bypass == nil && !cond {
		return p.errHere(tplerr.Assertion, "assertion failed").WithDirective("assert").WithContext(raw)
	}
	return nil
}

// evalConditionText parses and evaluates raw as a standalone condition
// (spec §4.5), sharing the caller's context so alias lookups see live
// bindings.
func (p *Parser) evalConditionText(raw string, bypass *bool) (bool, error) {
	sub, err := cursor.New(strings.NewReader(raw), p.cur.File(), p.ctx.Dir())
	if err != nil {
		return false, err
	}
	subParser := &Parser{cur: sub, out: p.out, ctx: p.ctx, fs: p.fs, opts: p.opts, includeDepth: p.includeDepth}
	return subParser.parseCondition(bypass, condEOT)
}
