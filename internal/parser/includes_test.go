package parser_test

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestIncludeSeesCallerBindings(t *testing.T) {
	fs := newMemFS()
	fs.put("/site/partial.tenplate", `{{ name }}`)

	got := compile(t, fs, "/site",
		`{% let name = "alice" /%}{% include "partial.tenplate" /%}`)
	assert.Equal(t, got, "alice")
}

func TestIncludeDoesNotLeakBindingsToCaller(t *testing.T) {
	fs := newMemFS()
	fs.put("/site/partial.tenplate", `{% let seen = 1 /%}`)

	got := compile(t, fs, "/site",
		`{% include "partial.tenplate" /%}[{% if seen == 1 %}leaked{%/ if %}]`)
	assert.Equal(t, got, "[]")
}

func TestIncludeMissingFileIsIoError(t *testing.T) {
	err := compileErr(t, newMemFS(), "/site", `{% include "nope.tenplate" /%}`)
	assert.ErrorContains(t, err, "io error")
}

func TestExtendBindsContentIntoBase(t *testing.T) {
	fs := newMemFS()
	fs.put("/site/base.tenplate", `<{{ content }}>`)

	got := compile(t, fs, "/site", `{% extend "base.tenplate" %}body{%/ extend %}`)
	assert.Equal(t, got, "<body>")
}

func TestNestedExtendIsLeftAssociative(t *testing.T) {
	fs := newMemFS()
	fs.put("/site/grandparent.tenplate", `[{{ content }}]`)
	fs.put("/site/parent.tenplate", `{% extend "grandparent.tenplate" %}P-{{ content }}{%/ extend %}`)

	got := compile(t, fs, "/site", `{% extend "parent.tenplate" %}child{%/ extend %}`)
	assert.Equal(t, got, "[P-child]")
}

func TestFunctionAndCallBindParamsInIsolatedScope(t *testing.T) {
	got := compile(t, newMemFS(), ".",
		`{% function greet(name) %}hi {{ name }}{%/ function %}{% call greet("bob") /%}`)
	assert.Equal(t, got, "hi bob")
}

func TestCallDoesNotLeakArgumentsToCaller(t *testing.T) {
	got := compile(t, newMemFS(), ".",
		`{% function noop(name) %}{%/ function %}{% call noop("bob") /%}[{% if name == "bob" %}leaked{%/ if %}]`)
	assert.Equal(t, got, "[]")
}

func TestCallWrongArgCountErrors(t *testing.T) {
	err := compileErr(t, newMemFS(), ".",
		`{% function f(a, b) %}{%/ function %}{% call f("x") /%}`)
	assert.ErrorContains(t, err, "expects 2 argument")
}

func TestCallUnknownFunctionErrors(t *testing.T) {
	err := compileErr(t, newMemFS(), ".", `{% call missing() /%}`)
	assert.ErrorContains(t, err, "unknown function")
}

func TestPathResolvesAndCanonicalizes(t *testing.T) {
	fs := newMemFS()
	got := compile(t, fs, "/site", `{% path "a.tenplate" /%}`)
	assert.Equal(t, got, "/site/a.tenplate")
}

func TestExecSplicesStdout(t *testing.T) {
	got := compile(t, newMemFS(), ".", `{% exec "printf hi" /%}`)
	assert.Equal(t, got, "hi")
}
