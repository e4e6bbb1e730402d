package parser

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/frankiebaffa/tenplates/internal/context"
	"github.com/frankiebaffa/tenplates/internal/cursor"
	"github.com/frankiebaffa/tenplates/internal/sink"
	"github.com/frankiebaffa/tenplates/internal/tplerr"
	"github.com/frankiebaffa/tenplates/internal/value"
)

// parseInclude implements `{% include PATH_EXPR /%}`: the referenced
// file compiles inline against an isolated child scope, so bindings
// already in scope are visible to it but anything it binds (via set
// or let) is popped away and invisible to the caller once it closes.
func (p *Parser) parseInclude() error {
	text, err := p.readDirectiveExprArg("/%}")
	if err != nil {
		return err
	}
	return p.compileFileInline(p.resolvePath(text))
}

// parseExtend implements `{% extend PATH_EXPR %}` BODY `{%/ extend %}`
// (spec §4.7): BODY compiles once into a "content" binding, then the
// referenced base template runs with that binding in scope. Extend
// chains compose left-associatively — a base template that itself
// extends another sees its own "content" the same way any other
// template would.
func (p *Parser) parseExtend() error {
	raw, err := p.readRawUntil("%}")
	if err != nil {
		return err
	}
	if err := p.expectLiteral("%}"); err != nil {
		return err
	}
	pathVal, err := p.evalArithExpr(raw)
	if err != nil {
		return err
	}
	pathText, err := pathVal.AsText()
	if err != nil {
		return p.errHere(tplerr.Type, "%s", err)
	}
	resolved := p.resolvePath(pathText)

	var buf strings.Builder
	tempOut := sink.New(&buf)
	if p.out.Bypassed() {
		tempOut.PushBypass()
	}
	orig := p.out
	p.out = tempOut
	_, err = p.run(map[string]bool{"extend": true})
	p.out = orig
	if err != nil {
		return err
	}

	p.ctx.PushScope()
	defer p.ctx.PopScope()
	p.ctx.Let("content", value.NewText(buf.String()))

	return p.compileFileInline(resolved)
}

// compileFileInline reads path and compiles it against the parser's
// current sink, in a scope pushed on top of the caller's context and
// popped when the sub-compilation returns — so bindings the included
// or extended file creates with `let`/`set` never leak back to the
// caller, matching the isolation `call` gets from `Context.Child`.
// The context directory is restored the same way.
func (p *Parser) compileFileInline(path string) error {
	if p.includeDepth+1 > p.opts.MaxIncludeDepth {
		return p.errHere(tplerr.Io, "include/extend depth exceeded %d", p.opts.MaxIncludeDepth)
	}
	data, err := p.fs.Read(path)
	if err != nil {
		return p.errHere(tplerr.Io, "reading %s", path).WithInner(err)
	}

	oldDir := p.ctx.Dir()
	p.ctx.SetDir(filepath.Dir(path))
	sub, err := cursor.New(strings.NewReader(string(data)), path, p.ctx.Dir())
	if err != nil {
		p.ctx.SetDir(oldDir)
		return err
	}
	p.ctx.PushScope()
	subParser := &Parser{cur: sub, out: p.out, ctx: p.ctx, fs: p.fs, opts: p.opts, includeDepth: p.includeDepth + 1}
	err = subParser.Parse()
	p.ctx.PopScope()
	p.ctx.SetDir(oldDir)
	return err
}

// parseCall implements `{% call NAME(arg, arg, ...) /%}`: invokes a
// function registered with `function`, binding its parameters
// positionally in a fresh, isolated child context.
func (p *Parser) parseCall() error {
	name, err := p.readIdent()
	if err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}

	var args []value.Value
	if r, ok := p.cur.Current(); ok && r == '(' {
		args, err = p.parseCallArgs()
		if err != nil {
			return err
		}
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
	if err := p.expectLiteral("/%}"); err != nil {
		return err
	}

	fn, err := p.ctx.Function(name)
	if err != nil {
		return p.errHere(tplerr.Name, "%s", err).WithDirective("call")
	}
	if len(args) != len(fn.Params) {
		return p.errHere(tplerr.Name, "function %q expects %d argument(s), got %d", name, len(fn.Params), len(args)).WithDirective("call")
	}

	child := p.ctx.Child(p.ctx.Dir())
	for i, param := range fn.Params {
		child.Let(param, args[i])
	}

	if p.includeDepth+1 > p.opts.MaxIncludeDepth {
		return p.errHere(tplerr.Io, "call depth exceeded %d", p.opts.MaxIncludeDepth)
	}
	sub, err := cursor.New(strings.NewReader(fn.Body), p.cur.File(), child.Dir())
	if err != nil {
		return err
	}
	subParser := &Parser{cur: sub, out: p.out, ctx: child, fs: p.fs, opts: p.opts, includeDepth: p.includeDepth + 1}
	return subParser.Parse()
}

func (p *Parser) parseCallArgs() ([]value.Value, error) {
	if err := p.cur.Step(); err != nil { // '('
		return nil, err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return nil, err
	}
	var args []value.Value
	if r, ok := p.cur.Current(); ok && r == ')' {
		return args, p.cur.Step()
	}
	for {
		v, err := p.parsePrimaryValue()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if err := p.cur.SkipWhitespace(); err != nil {
			return nil, err
		}
		r, ok := p.cur.Current()
		if !ok {
			return nil, p.errHere(tplerr.Syntax, "unterminated call argument list")
		}
		if r == ',' {
			if err := p.cur.Step(); err != nil {
				return nil, err
			}
			if err := p.cur.SkipWhitespace(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if r, ok := p.cur.Current(); !ok || r != ')' {
		return nil, p.errHere(tplerr.Syntax, "expected ')' to close call arguments")
	}
	return args, p.cur.Step()
}

// parseFunction implements `{% function NAME(p1, p2) %}` BODY
// `{%/ function %}`: the body is captured (never executed here) and
// registered for later invocation by `call`.
func (p *Parser) parseFunction() error {
	name, err := p.readIdent()
	if err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}

	var params []string
	if r, ok := p.cur.Current(); ok && r == '(' {
		if err := p.cur.Step(); err != nil {
			return err
		}
		if err := p.cur.SkipWhitespace(); err != nil {
			return err
		}
		if r, ok := p.cur.Current(); !ok || r != ')' {
			for {
				paramName, err := p.readIdent()
				if err != nil {
					return err
				}
				params = append(params, paramName)
				if err := p.cur.SkipWhitespace(); err != nil {
					return err
				}
				r, ok := p.cur.Current()
				if !ok {
					return p.errHere(tplerr.Syntax, "unterminated parameter list")
				}
				if r == ',' {
					if err := p.cur.Step(); err != nil {
						return err
					}
					if err := p.cur.SkipWhitespace(); err != nil {
						return err
					}
					continue
				}
				break
			}
		}
		if err := p.expectLiteral(")"); err != nil {
			return err
		}
		if err := p.cur.SkipWhitespace(); err != nil {
			return err
		}
	}

	if err := p.expectLiteral("%}"); err != nil {
		return err
	}

	body, _, err := p.captureRaw(map[string]bool{"function": true})
	if err != nil {
		return err
	}

	p.ctx.RegisterFunction(name, context.Function{Params: params, Body: body})
	return nil
}

// parsePath implements `{% path PATH_EXPR /%}`: resolves PATH_EXPR
// relative to the current directory and writes its canonical,
// symlink-resolved form.
func (p *Parser) parsePath() error {
	text, err := p.readDirectiveExprArg("/%}")
	if err != nil {
		return err
	}
	resolved := p.resolvePath(text)
	canon, err := p.fs.Canonicalize(resolved)
	if err != nil {
		return p.errHere(tplerr.Io, "canonicalizing %s", resolved).WithInner(err)
	}
	return p.out.WriteString(canon)
}

// parseExec implements `{% exec EXPR /%}` / `{% execute EXPR /%}`:
// EXPR evaluates to a shell command whose standard output splices
// into the document; standard error passes through to the host
// process's own standard error.
func (p *Parser) parseExec() error {
	text, err := p.readDirectiveExprArg("/%}")
	if err != nil {
		return err
	}

	cmd := exec.Command("sh", "-c", text)
	cmd.Dir = p.ctx.Dir()
	var stdout strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return p.errHere(tplerr.Exec, "running %q", text).WithInner(err)
	}
	return p.out.WriteString(stdout.String())
}

// readDirectiveExprArg evaluates a self-closing directive's single
// arithmetic-expression argument down to Text.
func (p *Parser) readDirectiveExprArg(terminator string) (string, error) {
	raw, err := p.readRawUntil(terminator)
	if err != nil {
		return "", err
	}
	if err := p.expectLiteral(terminator); err != nil {
		return "", err
	}
	v, err := p.evalArithExpr(raw)
	if err != nil {
		return "", err
	}
	text, err := v.AsText()
	if err != nil {
		return "", p.errHere(tplerr.Type, "%s", err)
	}
	return text, nil
}
