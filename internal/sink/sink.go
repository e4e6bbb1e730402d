// Package sink implements the output writer with a bypass counter:
// while bypassed, writes are discarded but still counted, so nested
// parsers can push and pop bypass independently without losing track
// of whether they are inside an untaken branch.
package sink

import "io"

// Sink wraps a byte destination with bypass tracking.
type Sink struct {
	w       io.Writer
	bypass  int
	written int64
}

// New wraps w as a sink, initially not bypassed.
func New(w io.Writer) *Sink {
	return &Sink{w: w}
}

// WriteString writes s unless the sink is currently bypassed. The
// discarded-but-counted byte total is tracked regardless.
func (s *Sink) WriteString(str string) error {
	s.written += int64(len(str))
	if s.Bypassed() {
		return nil
	}
	_, err := io.WriteString(s.w, str)
	return err
}

// PushBypass enters an untaken branch: writes are discarded until the
// matching PopBypass.
func (s *Sink) PushBypass() {
	s.bypass++
}

// PopBypass exits an untaken branch.
func (s *Sink) PopBypass() {
	if s.bypass > 0 {
		s.bypass--
	}
}

// Bypassed reports whether the sink is currently discarding writes.
func (s *Sink) Bypassed() bool {
	return s.bypass > 0
}

// Written returns the total number of bytes that would have been
// written had bypass never been engaged.
func (s *Sink) Written() int64 {
	return s.written
}
