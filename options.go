package tenplates

import (
	"github.com/frankiebaffa/tenplates/internal/fsys"
	"github.com/frankiebaffa/tenplates/internal/value"
)

// compiler holds the configuration a chain of Options builds up before
// a single Compile call, mirroring the teacher's functional-options
// shape (gonginx/parser.Option).
type compiler struct {
	fs              fsys.FS
	params          map[string]value.Value
	vars            map[string]value.Value
	maxIncludeDepth int
}

func newCompiler() *compiler {
	return &compiler{
		fs:              fsys.OS{},
		params:          make(map[string]value.Value),
		vars:            make(map[string]value.Value),
		maxIncludeDepth: 64,
	}
}

// Option configures a Compile/CompileFile/CompileWithCtx call.
type Option func(*compiler)

// WithFileSystem overrides the default OS-backed filesystem
// collaborator — used by tests, and by embedding collaborators that
// want to restrict or virtualize template roots.
func WithFileSystem(fs fsys.FS) Option {
	return func(c *compiler) { c.fs = fs }
}

// WithParams seeds `params.NAME` bindings in the root context before
// compilation — used by the CLI's `--param KEY=VALUE` flag and the
// HTTP server's query-parameter injection.
func WithParams(params map[string]string) Option {
	return func(c *compiler) {
		for k, v := range params {
			c.params[k] = value.NewText(v)
		}
	}
}

// WithVars seeds arbitrary top-level root-context bindings (not nested
// under `params`) — used by the CLI's `--vars FILE.yaml` flag, which
// can bind scalars as well as Row/Rows values.
func WithVars(vars map[string]value.Value) Option {
	return func(c *compiler) {
		for k, v := range vars {
			c.vars[k] = v
		}
	}
}

// WithMaxIncludeDepth overrides the default nesting limit for
// include/extend/call chains.
func WithMaxIncludeDepth(depth int) Option {
	return func(c *compiler) { c.maxIncludeDepth = depth }
}
