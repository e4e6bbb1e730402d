package tenplates_test

import (
	"os"
	"strings"
	"testing"

	tenplates "github.com/frankiebaffa/tenplates"
	"github.com/frankiebaffa/tenplates/internal/value"
	"gotest.tools/v3/assert"
)

func TestCompileWritesRenderedOutput(t *testing.T) {
	var out strings.Builder
	err := tenplates.Compile(strings.NewReader("hello {{ 1 + 1 }}"), &out)
	assert.NilError(t, err)
	assert.Equal(t, out.String(), "hello 2")
}

func TestWithParamsSeedsParamsRow(t *testing.T) {
	var out strings.Builder
	err := tenplates.Compile(strings.NewReader("{{ params.name }}"), &out,
		tenplates.WithParams(map[string]string{"name": "alice"}))
	assert.NilError(t, err)
	assert.Equal(t, out.String(), "alice")
}

func TestWithVarsSeedsTopLevelBindings(t *testing.T) {
	var out strings.Builder
	err := tenplates.Compile(strings.NewReader("{{ count }}"), &out,
		tenplates.WithVars(map[string]value.Value{"count": value.NewInteger(3)}))
	assert.NilError(t, err)
	assert.Equal(t, out.String(), "3")
}

func TestCompileWithCtxSeedsParamsRow(t *testing.T) {
	var out strings.Builder
	err := tenplates.CompileWithCtx(strings.NewReader("hi {{ params.who }}"), "page.tenplate", &out,
		map[string]string{"who": "bob"})
	assert.NilError(t, err)
	assert.Equal(t, out.String(), "hi bob")
}

func TestCompileFileReadsFromFilesystem(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.tenplate"
	assert.NilError(t, os.WriteFile(path, []byte("value: {{ 2 * 3 }}"), 0o644))

	var out strings.Builder
	err := tenplates.CompileFile(path, &out)
	assert.NilError(t, err)
	assert.Equal(t, out.String(), "value: 6")
}
