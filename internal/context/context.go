package context

import (
	"fmt"

	"github.com/frankiebaffa/tenplates/internal/value"
)

// Function describes a user function registered with `function` and
// invoked with `call`: its parameter names, in declaration order, and
// the raw template body captured between `{% function ... %}` and its
// closer — compiled fresh, against a new child context, on every call
// (spec §4.7; the interpreter never retains a reusable AST).
type Function struct {
	Params []string
	Body   string
}

// Context is a non-empty stack of scopes, a current-file directory
// used to resolve relative paths, and a table of user-defined
// functions. The root context is created with a single empty scope at
// compilation start.
type Context struct {
	scopes    []*Scope
	dir       string
	functions map[string]Function
}

// New creates a root context rooted at dir (the process working
// directory, or the parent directory of the file being compiled).
func New(dir string) *Context {
	return &Context{
		scopes:    []*Scope{newScope()},
		dir:       dir,
		functions: make(map[string]Function),
	}
}

// Dir returns the current file directory used to resolve relative
// paths referenced from the top scope.
func (c *Context) Dir() string { return c.dir }

// SetDir replaces the current file directory — used by `extend` while
// its parent template compiles, then restored on return.
func (c *Context) SetDir(dir string) { c.dir = dir }

// PushScope pushes a fresh, empty scope — used by call, foreach
// iterations, and blocks that introduce loop variables.
func (c *Context) PushScope() {
	c.scopes = append(c.scopes, newScope())
}

// PopScope pops the topmost scope. Calling PopScope on a context with
// only the root scope left is a programming error and panics, since
// scope-stack depth must never reach zero.
func (c *Context) PopScope() {
	if len(c.scopes) <= 1 {
		panic("context: cannot pop the root scope")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// Depth returns the current scope-stack depth.
func (c *Context) Depth() int { return len(c.scopes) }

func (c *Context) top() *Scope {
	return c.scopes[len(c.scopes)-1]
}

// Let overwrites a binding in the top scope.
func (c *Context) Let(name string, v value.Value) {
	c.top().Let(name, v, c.dir)
}

// Set applies append-as-list semantics in the top scope.
func (c *Context) Set(name string, v value.Value) {
	c.top().Set(name, v, c.dir)
}

// Unset removes name from the topmost scope that contains it.
func (c *Context) Unset(name string) bool {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if c.scopes[i].Unset(name) {
			return true
		}
	}
	return false
}

// Resolve walks the scope stack top-to-bottom looking up alias.Base,
// then applies field selectors and an optional row index. Returns
// value.Null and ok=false when the base name is unbound anywhere.
func (c *Context) Resolve(alias Alias) (value.Value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		b, ok := c.scopes[i].lookup(alias.Base)
		if !ok {
			continue
		}
		return resolveSelectors(b.value, alias), true
	}
	return value.Null, false
}

// ResolveDir returns the provenance directory of the scope that binds
// alias.Base, for resolving relative paths referenced through it. It
// falls back to the current file directory when the base is unbound.
func (c *Context) ResolveDir(alias Alias) string {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i].lookup(alias.Base); ok {
			return b.dir
		}
	}
	return c.dir
}

func resolveSelectors(v value.Value, alias Alias) value.Value {
	cur := v
	if alias.HasIndex() {
		rows, ok := cur.Rows()
		if !ok {
			return value.Null
		}
		cur = rows.At(*alias.Index)
	}
	for _, field := range alias.Fields {
		switch cur.Kind() {
		case value.KindRow:
			row, _ := cur.Row()
			cur = row.Get(field)
		case value.KindRows:
			rows, _ := cur.Rows()
			cur = rows.Column(field)
		default:
			return value.Null
		}
	}
	return cur
}

// RegisterFunction records a user function defined with `function`.
func (c *Context) RegisterFunction(name string, fn Function) {
	c.functions[name] = fn
}

// Function looks up a previously registered user function.
func (c *Context) Function(name string) (Function, error) {
	fn, ok := c.functions[name]
	if !ok {
		return Function{}, fmt.Errorf("context: unknown function %q", name)
	}
	return fn, nil
}

// Child creates an isolated context for call/include: a fresh scope
// stack with its own root scope, rooted at dir, sharing the function
// table of the parent. Callers push whatever seed
// bindings (call arguments, include-time variables) into the returned
// context's single scope before compiling the child template.
func (c *Context) Child(dir string) *Context {
	return &Context{
		scopes:    []*Scope{newScope()},
		dir:       dir,
		functions: c.functions,
	}
}
