package cursor_test

import (
	"strings"
	"testing"

	"github.com/frankiebaffa/tenplates/internal/cursor"
	"gotest.tools/v3/assert"
)

func TestNewPrimesCurrentAndPeek(t *testing.T) {
	c, err := cursor.New(strings.NewReader("ab"), "f.tpl", "/dir")
	assert.NilError(t, err)

	r, ok := c.Current()
	assert.Assert(t, ok)
	assert.Equal(t, r, 'a')

	n, ok := c.Peek()
	assert.Assert(t, ok)
	assert.Equal(t, n, 'b')

	assert.Equal(t, c.File(), "f.tpl")
	assert.Equal(t, c.Dir(), "/dir")
}

func TestStepTracksLineAndColumn(t *testing.T) {
	c, err := cursor.New(strings.NewReader("ab\ncd"), "f", ".")
	assert.NilError(t, err)

	assert.Equal(t, c.Line(), 1)
	assert.Equal(t, c.Column(), 1)

	assert.NilError(t, c.Step()) // consume 'a'
	assert.Equal(t, c.Column(), 2)

	assert.NilError(t, c.Step()) // consume 'b'
	assert.NilError(t, c.Step()) // consume '\n'
	assert.Equal(t, c.Line(), 2)
	assert.Equal(t, c.Column(), 1)

	r, ok := c.Current()
	assert.Assert(t, ok)
	assert.Equal(t, r, 'c')
}

func TestAtEOF(t *testing.T) {
	c, err := cursor.New(strings.NewReader("a"), "f", ".")
	assert.NilError(t, err)
	assert.Assert(t, !c.AtEOF())
	assert.NilError(t, c.Step())
	assert.Assert(t, c.AtEOF())
	// Stepping past EOF is a no-op, not an error.
	assert.NilError(t, c.Step())
}

func TestSkipWhitespace(t *testing.T) {
	c, err := cursor.New(strings.NewReader("  \t\n x"), "f", ".")
	assert.NilError(t, err)
	assert.NilError(t, c.SkipWhitespace())
	r, ok := c.Current()
	assert.Assert(t, ok)
	assert.Equal(t, r, 'x')
}

func TestEmptyInput(t *testing.T) {
	c, err := cursor.New(strings.NewReader(""), "f", ".")
	assert.NilError(t, err)
	_, ok := c.Current()
	assert.Assert(t, !ok)
}

func TestPeekAtLooksArbitrarilyFarAhead(t *testing.T) {
	c, err := cursor.New(strings.NewReader("/%}x"), "f", ".")
	assert.NilError(t, err)

	r0, ok := c.PeekAt(0)
	assert.Assert(t, ok)
	assert.Equal(t, r0, '/')

	r2, ok := c.PeekAt(2)
	assert.Assert(t, ok)
	assert.Equal(t, r2, '}')

	r3, ok := c.PeekAt(3)
	assert.Assert(t, ok)
	assert.Equal(t, r3, 'x')

	// PeekAt must not consume anything.
	cur, ok := c.Current()
	assert.Assert(t, ok)
	assert.Equal(t, cur, '/')
}

func TestPeekAtPastEndOfInputReportsFalse(t *testing.T) {
	c, err := cursor.New(strings.NewReader("ab"), "f", ".")
	assert.NilError(t, err)
	_, ok := c.PeekAt(5)
	assert.Assert(t, !ok)
}
