package parser_test

import (
	"strings"
	"testing"

	"github.com/frankiebaffa/tenplates/internal/context"
	"github.com/frankiebaffa/tenplates/internal/cursor"
	"github.com/frankiebaffa/tenplates/internal/fsys"
	"github.com/frankiebaffa/tenplates/internal/parser"
	"github.com/frankiebaffa/tenplates/internal/sink"
	"gotest.tools/v3/assert"
)

// memFS is a minimal in-memory fsys.FS fake, letting parser tests
// exercise include/extend/fordir/forfile without touching disk.
type memFS struct {
	files map[string]string
	dirs  map[string][]fsys.Entry
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string]string), dirs: make(map[string][]fsys.Entry)}
}

func (m *memFS) put(path, content string) { m.files[path] = content }

func (m *memFS) Read(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, &pathError{path}
	}
	return []byte(data), nil
}

func (m *memFS) ListDir(path string) ([]fsys.Entry, error) {
	return m.dirs[path], nil
}

func (m *memFS) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *memFS) Canonicalize(path string) (string, error) { return path, nil }

type pathError struct{ path string }

func (e *pathError) Error() string { return "no such file: " + e.path }

// compile runs src through a fresh parser with a fresh context rooted
// at dir, writing to a strings.Builder and returning its contents.
func compile(t *testing.T, fs fsys.FS, dir, src string) string {
	t.Helper()
	cur, err := cursor.New(strings.NewReader(src), "<test>", dir)
	assert.NilError(t, err)
	ctx := context.New(dir)
	var out strings.Builder
	p := parser.New(cur, sink.New(&out), ctx, fs, parser.DefaultOptions())
	assert.NilError(t, p.Parse())
	return out.String()
}

func compileErr(t *testing.T, fs fsys.FS, dir, src string) error {
	t.Helper()
	cur, err := cursor.New(strings.NewReader(src), "<test>", dir)
	assert.NilError(t, err)
	ctx := context.New(dir)
	var out strings.Builder
	p := parser.New(cur, sink.New(&out), ctx, fs, parser.DefaultOptions())
	return p.Parse()
}

func TestPlainTextPassesThrough(t *testing.T) {
	got := compile(t, newMemFS(), ".", "hello, world")
	assert.Equal(t, got, "hello, world")
}

func TestEscapesEmitDelimitersLiterally(t *testing.T) {
	got := compile(t, newMemFS(), ".", `\{ \< \# \\`)
	assert.Equal(t, got, `{ < # \`)
}

func TestLineContinuationSwallowsWhitespace(t *testing.T) {
	got := compile(t, newMemFS(), ".", "a\\\n   b")
	assert.Equal(t, got, "ab")
}

func TestCommentIsDropped(t *testing.T) {
	got := compile(t, newMemFS(), ".", "before{# this is a comment #}after")
	assert.Equal(t, got, "beforeafter")
}

func TestCommentHonorsEscapedTerminator(t *testing.T) {
	got := compile(t, newMemFS(), ".", `{# a \#} still comment #}after`)
	assert.Equal(t, got, "after")
}

func TestExpressionEvaluatesArithmetic(t *testing.T) {
	got := compile(t, newMemFS(), ".", "{{ 2 + 3 * 4 }}")
	assert.Equal(t, got, "14")
}

func TestExpressionPowerIsRightAssociative(t *testing.T) {
	got := compile(t, newMemFS(), ".", "{{ 2 ** 3 ** 2 }}")
	assert.Equal(t, got, "512")
}

func TestExpressionRealPromotion(t *testing.T) {
	got := compile(t, newMemFS(), ".", "{{ 1 + 0.5 }}")
	assert.Equal(t, got, "1.5")
}

func TestExpressionTextConcatenation(t *testing.T) {
	got := compile(t, newMemFS(), ".", `{{ "a" + "b" }}`)
	assert.Equal(t, got, "ab")
}

func TestExpressionUnaryMinus(t *testing.T) {
	got := compile(t, newMemFS(), ".", "{{ 5 - -3 }}")
	assert.Equal(t, got, "8")
}

func TestExpressionParensOverridePrecedence(t *testing.T) {
	got := compile(t, newMemFS(), ".", "{{ (2 + 3) * 4 }}")
	assert.Equal(t, got, "20")
}

func TestExpressionDivisionByZeroErrors(t *testing.T) {
	err := compileErr(t, newMemFS(), ".", "{{ 1 / 0 }}")
	assert.ErrorContains(t, err, "division by zero")
}

func TestUnknownDirectiveIsSyntaxError(t *testing.T) {
	err := compileErr(t, newMemFS(), ".", "{% bogus /%}")
	assert.ErrorContains(t, err, "unknown directive")
}
