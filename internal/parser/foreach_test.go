package parser_test

import (
	"testing"

	"github.com/frankiebaffa/tenplates/internal/context"
	"github.com/frankiebaffa/tenplates/internal/cursor"
	"github.com/frankiebaffa/tenplates/internal/fsys"
	"github.com/frankiebaffa/tenplates/internal/parser"
	"github.com/frankiebaffa/tenplates/internal/sink"
	"github.com/frankiebaffa/tenplates/internal/value"
	"gotest.tools/v3/assert"
	"strings"
)

func TestForeachOverRowsBindsLoopVar(t *testing.T) {
	cur, err := cursor.New(strings.NewReader(
		`{% foreach item in users %}{{ loop.index }}:{{ item.name }} {%/ foreach %}`), "<test>", ".")
	assert.NilError(t, err)
	ctx := context.New(".")
	ctx.Let("users", value.NewRows(value.Rows{
		{"name": value.NewText("a")},
		{"name": value.NewText("b")},
	}))
	var out strings.Builder
	p := parser.New(cur, sink.New(&out), ctx, newMemFS(), parser.DefaultOptions())
	assert.NilError(t, p.Parse())
	assert.Equal(t, out.String(), "0:a 1:b ")
}

func TestForeachEmptyRunsElse(t *testing.T) {
	got := compile(t, newMemFS(), ".", `{% foreach x in missing %}a{% else %}empty{%/ foreach %}`)
	assert.Equal(t, got, "empty")
}

func TestForeachScalarIteratesOnce(t *testing.T) {
	cur, err := cursor.New(strings.NewReader(
		`{% foreach x in v %}{{ x }}{%/ foreach %}`), "<test>", ".")
	assert.NilError(t, err)
	ctx := context.New(".")
	ctx.Let("v", value.NewInteger(9))
	var out strings.Builder
	p := parser.New(cur, sink.New(&out), ctx, newMemFS(), parser.DefaultOptions())
	assert.NilError(t, p.Parse())
	assert.Equal(t, out.String(), "9")
}

func TestForeachCustomLoopVarName(t *testing.T) {
	cur, err := cursor.New(strings.NewReader(
		`{% foreach x in rows as i %}{{ i.islast }}{%/ foreach %}`), "<test>", ".")
	assert.NilError(t, err)
	ctx := context.New(".")
	ctx.Let("rows", value.NewRows(value.Rows{{"a": value.NewInteger(1)}}))
	var out strings.Builder
	p := parser.New(cur, sink.New(&out), ctx, newMemFS(), parser.DefaultOptions())
	assert.NilError(t, p.Parse())
	assert.Equal(t, out.String(), "1")
}

func TestFordirListsDirectoryEntries(t *testing.T) {
	fs := newMemFS()
	fs.dirs["/site"] = []fsys.Entry{{Name: "a.tenplate"}, {Name: "sub", IsDir: true}}

	got := compile(t, fs, "/site", `{% fordir p in "." %}{{ p }} {%/ fordir %}`)
	assert.Equal(t, got, "/site/a.tenplate /site/sub ")
}

func TestForfileExcludesDirectories(t *testing.T) {
	fs := newMemFS()
	fs.dirs["/site"] = []fsys.Entry{{Name: "a.tenplate"}, {Name: "sub", IsDir: true}}

	got := compile(t, fs, "/site", `{% forfile p in "." %}{{ p }} {%/ forfile %}`)
	assert.Equal(t, got, "/site/a.tenplate ")
}
