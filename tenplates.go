// Package tenplates compiles TenPlates templates: a streaming,
// character-level text-template language with conditionals, loops
// over bound collections and filesystem directories, includes,
// template inheritance via extend, user-defined functions, and a
// small tagged-union value model. See SPEC_FULL.md for the full
// grammar and internal/parser for the interpreter itself.
package tenplates

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/frankiebaffa/tenplates/internal/context"
	"github.com/frankiebaffa/tenplates/internal/cursor"
	"github.com/frankiebaffa/tenplates/internal/parser"
	"github.com/frankiebaffa/tenplates/internal/sink"
	"github.com/frankiebaffa/tenplates/internal/value"
)

// Compile reads a template from r and writes its rendered output to
// w. Relative include/extend/fordir/forfile paths resolve against the
// process's working directory.
func Compile(r io.Reader, w io.Writer, opts ...Option) error {
	return compileFrom(r, "<stdin>", ".", w, nil, opts)
}

// CompileFile compiles the template at path and writes its rendered
// output to w. Relative paths referenced from within it resolve
// against path's directory.
func CompileFile(path string, w io.Writer, opts ...Option) error {
	c := newCompiler()
	for _, opt := range opts {
		opt(c)
	}
	data, err := c.fs.Read(path)
	if err != nil {
		return err
	}
	return compileFromCompiler(c, strings.NewReader(string(data)), path, filepath.Dir(path), w, nil)
}

// CompileFileToStdout compiles the template at path straight to
// os.Stdout — a convenience wrapper ported from the reference
// implementation's compile_file_to_stdout.
func CompileFileToStdout(path string, opts ...Option) error {
	return CompileFile(path, os.Stdout, opts...)
}

// CompileWithCtx compiles a template from r, seeding a `params` row
// binding (so templates reference `params.NAME`) ahead of compilation
// — used by the HTTP server to inject query parameters per request.
func CompileWithCtx(r io.Reader, file string, w io.Writer, params map[string]string, opts ...Option) error {
	return compileFrom(r, file, filepath.Dir(file), w, params, opts)
}

func compileFrom(r io.Reader, file, dir string, w io.Writer, params map[string]string, opts []Option) error {
	c := newCompiler()
	for _, opt := range opts {
		opt(c)
	}
	return compileFromCompiler(c, r, file, dir, w, params)
}

func compileFromCompiler(c *compiler, r io.Reader, file, dir string, w io.Writer, reqParams map[string]string) error {
	cur, err := cursor.New(r, file, dir)
	if err != nil {
		return err
	}
	ctx := context.New(dir)

	for name, v := range c.vars {
		ctx.Let(name, v)
	}

	paramsRow := value.Row{}
	for k, v := range c.params {
		_ = paramsRow.Set(k, v)
	}
	for k, v := range reqParams {
		_ = paramsRow.Set(k, value.NewText(v))
	}
	if len(paramsRow) > 0 {
		ctx.Let("params", value.NewRow(paramsRow))
	}

	out := sink.New(w)
	p := parser.New(cur, out, ctx, c.fs, parser.Options{MaxIncludeDepth: c.maxIncludeDepth})
	return p.Parse()
}
