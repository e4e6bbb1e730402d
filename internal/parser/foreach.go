package parser

import (
	"path/filepath"
	"strings"

	"github.com/frankiebaffa/tenplates/internal/context"
	"github.com/frankiebaffa/tenplates/internal/cursor"
	"github.com/frankiebaffa/tenplates/internal/fsys"
	"github.com/frankiebaffa/tenplates/internal/tplerr"
	"github.com/frankiebaffa/tenplates/internal/value"
)

// parseForeach implements `{% foreach NAME in ALIAS [as LOOPNAME] %}`
// (spec §4.6). A non-Rows, non-Null value iterates exactly once over
// itself (mirroring Value.Iter); an absent, Null, or empty-Rows value
// with an else branch renders the else branch once instead. The main
// body is captured once and replayed in a freshly pushed scope per
// row, since nothing here builds a reusable AST.
func (p *Parser) parseForeach() error {
	name, err := p.readIdent()
	if err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
	if err := p.expectKeyword("in"); err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
	aliasText, err := p.readAliasText()
	if err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}

	loopVar := "loop"
	if r, ok := p.cur.Current(); ok && r != '%' {
		if err := p.expectKeyword("as"); err != nil {
			return err
		}
		if err := p.cur.SkipWhitespace(); err != nil {
			return err
		}
		loopVar, err = p.readIdent()
		if err != nil {
			return err
		}
		if err := p.cur.SkipWhitespace(); err != nil {
			return err
		}
	}
	if err := p.expectLiteral("%}"); err != nil {
		return err
	}

	alias, err := context.ParseAlias(aliasText)
	if err != nil {
		return p.errHere(tplerr.Syntax, "%s", err)
	}
	bound, ok := p.ctx.Resolve(alias)
	rows := collectIterable(bound, ok)

	body, closedAt, err := p.captureRaw(map[string]bool{"else": true, "foreach": true})
	if err != nil {
		return err
	}

	if len(rows) > 0 {
		for i, row := range rows {
			if err := p.replayLoopBody(body, name, row, loopVar, i, len(rows)); err != nil {
				return err
			}
		}
	}

	if closedAt == "foreach" {
		return nil
	}
	return p.runElseBranch(len(rows) != 0, "foreach")
}

// collectIterable mirrors value.Value.Iter, but additionally treats an
// unresolved or Null binding as zero rows (spec §4.6's "absent" case).
func collectIterable(v value.Value, ok bool) []value.Value {
	if !ok || v.Kind() == value.KindNull {
		return nil
	}
	var out []value.Value
	for item := range v.Iter() {
		out = append(out, item)
	}
	return out
}

// replayLoopBody re-parses body from scratch inside a child scope
// bound to NAME (and to LOOPVAR's index/isfirst/islast metadata),
// writing into the same shared sink as the enclosing document.
func (p *Parser) replayLoopBody(body, name string, item value.Value, loopVar string, index, total int) error {
	p.ctx.PushScope()
	defer p.ctx.PopScope()

	p.ctx.Let(name, item)
	loopMeta := value.Row{}
	_ = loopMeta.Set("index", value.NewInteger(int64(index)))
	_ = loopMeta.Set("isfirst", value.NewInteger(boolInt(index == 0)))
	_ = loopMeta.Set("islast", value.NewInteger(boolInt(index == total-1)))
	p.ctx.Let(loopVar, value.NewRow(loopMeta))

	sub, err := cursor.New(strings.NewReader(body), p.cur.File(), p.ctx.Dir())
	if err != nil {
		return err
	}
	subParser := &Parser{cur: sub, out: p.out, ctx: p.ctx, fs: p.fs, opts: p.opts, includeDepth: p.includeDepth}
	return subParser.Parse()
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// runElseBranch runs the already-positioned else body (if one was
// captured) to its closer, bypassing its output when skip is true.
// The else body executes directly rather than through captureRaw/
// replay since it never repeats.
func (p *Parser) runElseBranch(skip bool, closerName string) error {
	if skip {
		p.out.PushBypass()
	}
	_, err := p.run(map[string]bool{closerName: true})
	if skip {
		p.out.PopBypass()
	}
	return err
}

// parseFordir implements `{% fordir NAME in PATH %}`: NAME is bound to
// the full path of each directory entry directly under PATH, in the
// order OS.ListDir returns (spec documents this as reversed).
func (p *Parser) parseFordir() error {
	return p.parseDirLoop("fordir", false)
}

// parseForfile implements `{% forfile NAME in PATH %}`: like fordir
// but restricted to regular files.
func (p *Parser) parseForfile() error {
	return p.parseDirLoop("forfile", true)
}

func (p *Parser) parseDirLoop(directive string, filesOnly bool) error {
	name, err := p.readIdent()
	if err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
	if err := p.expectKeyword("in"); err != nil {
		return err
	}
	if err := p.cur.SkipWhitespace(); err != nil {
		return err
	}
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
	dirPath, err := pathVal.AsText()
	if err != nil {
		return p.errHere(tplerr.Type, "%s", err)
	}
	dirPath = p.resolvePath(dirPath)

	var paths []string
	if filesOnly {
		paths, err = fsys.ListFilesOnly(p.fs, dirPath)
	} else {
		paths, err = fsys.ListEntryPaths(p.fs, dirPath)
	}
	if err != nil {
		return p.errHere(tplerr.Io, "%s", err).WithDirective(directive)
	}

	body, closedAt, err := p.captureRaw(map[string]bool{"else": true, directive: true})
	if err != nil {
		return err
	}

	items := make([]value.Value, len(paths))
	for i, path := range paths {
		items[i] = value.NewText(path)
	}
	for i, item := range items {
		if err := p.replayLoopBody(body, name, item, "loop", i, len(items)); err != nil {
			return err
		}
	}

	if closedAt == directive {
		return nil
	}
	return p.runElseBranch(len(items) != 0, directive)
}

// resolvePath resolves path against the current context directory
// when it is not already absolute.
func (p *Parser) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.ctx.Dir(), path)
}

// expectKeyword consumes a bare keyword (e.g. "in", "as") or fails.
func (p *Parser) expectKeyword(kw string) error {
	got, err := p.readIdent()
	if err != nil {
		return err
	}
	if got != kw {
		return p.errHere(tplerr.Syntax, "expected %q, found %q", kw, got)
	}
	return nil
}

