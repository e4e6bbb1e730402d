// Package cursor implements the character-oriented input cursor: a
// lookahead reader over a buffered byte source that tracks
// line/column for diagnostics and carries the directory of the file
// (if any) that produced the stream, so relative includes resolve
// correctly.
package cursor

import (
	"bufio"
	"fmt"
	"io"
)

// Cursor owns a byte source, a small lookahead queue, a line/column
// pair, and the originating file directory. Only the currently-active
// parser frame may mutate it (spec §5's tri-ownership protocol).
//
// The queue holds the current rune plus at least one rune of further
// lookahead, and PeekAt grows it on demand to any depth; PeekAt(0) is
// always equivalent to Current().
type Cursor struct {
	r      *bufio.Reader
	file   string // "<stdin>" or the source file path
	dir    string // directory to resolve relative includes against
	queue  []rune
	queueOk []bool
	line   int
	col    int
}

// New wraps r as a cursor. file and dir annotate diagnostics and
// relative-path resolution respectively.
func New(r io.Reader, file, dir string) (*Cursor, error) {
	c := &Cursor{
		r:    bufio.NewReader(r),
		file: file,
		dir:  dir,
		line: 1,
		col:  1,
	}
	// Prime the current rune plus one rune of lookahead.
	if err := c.fill(2); err != nil {
		return nil, err
	}
	return c, nil
}

// fill ensures the queue holds at least n entries, reading further
// runes from the source as needed. Past end-of-input it pads the
// queue with ok=false placeholders so PeekAt never has to special-case
// a short queue.
func (c *Cursor) fill(n int) error {
	for len(c.queue) < n {
		r, _, err := c.r.ReadRune()
		switch {
		case err == io.EOF:
			c.queue = append(c.queue, 0)
			c.queueOk = append(c.queueOk, false)
		case err != nil:
			return fmt.Errorf("cursor: reading %s: %w", c.file, err)
		default:
			c.queue = append(c.queue, r)
			c.queueOk = append(c.queueOk, true)
		}
	}
	return nil
}

// Current returns the rune under the cursor and whether one is
// present (false at end-of-input).
func (c *Cursor) Current() (rune, bool) { return c.queue[0], c.queueOk[0] }

// Peek returns the next rune without consuming it.
func (c *Cursor) Peek() (rune, bool) {
	if len(c.queue) < 2 {
		// fill is only fallible on a read error, which New's priming
		// would already have surfaced; treat a late failure as EOF.
		if err := c.fill(2); err != nil {
			return 0, false
		}
	}
	return c.queue[1], c.queueOk[1]
}

// PeekAt returns the rune n runes ahead of the current one (n=0 is
// Current(), n=1 is Peek()) without consuming anything.
func (c *Cursor) PeekAt(n int) (rune, bool) {
	if err := c.fill(n + 1); err != nil {
		return 0, false
	}
	return c.queue[n], c.queueOk[n]
}

// AtEOF reports whether the cursor has exhausted the input.
func (c *Cursor) AtEOF() bool { return !c.queueOk[0] }

// Line returns the 1-based line of the current rune.
func (c *Cursor) Line() int { return c.line }

// Column returns the 1-based column of the current rune.
func (c *Cursor) Column() int { return c.col }

// File returns the originating file path, or "<stdin>".
func (c *Cursor) File() string { return c.file }

// Dir returns the directory relative includes resolve against.
func (c *Cursor) Dir() string { return c.dir }

// Step advances the cursor by one rune, tracking line/column. Stepping
// past end-of-input is a no-op.
func (c *Cursor) Step() error {
	if !c.queueOk[0] {
		return nil
	}
	if c.queue[0] == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	if err := c.fill(2); err != nil {
		return err
	}
	c.queue = c.queue[1:]
	c.queueOk = c.queueOk[1:]
	return nil
}

// SkipWhitespace steps over spaces, tabs, and newlines.
func (c *Cursor) SkipWhitespace() error {
	for c.queueOk[0] && isSpace(c.queue[0]) {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
