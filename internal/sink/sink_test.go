package sink_test

import (
	"strings"
	"testing"

	"github.com/frankiebaffa/tenplates/internal/sink"
	"gotest.tools/v3/assert"
)

func TestWriteStringPassesThrough(t *testing.T) {
	var buf strings.Builder
	s := sink.New(&buf)
	assert.NilError(t, s.WriteString("hello"))
	assert.Equal(t, buf.String(), "hello")
	assert.Equal(t, s.Written(), int64(5))
}

func TestBypassDiscardsButCounts(t *testing.T) {
	var buf strings.Builder
	s := sink.New(&buf)
	s.PushBypass()
	assert.Assert(t, s.Bypassed())
	assert.NilError(t, s.WriteString("hidden"))
	assert.Equal(t, buf.String(), "")
	assert.Equal(t, s.Written(), int64(6))
	s.PopBypass()
	assert.Assert(t, !s.Bypassed())
	assert.NilError(t, s.WriteString("visible"))
	assert.Equal(t, buf.String(), "visible")
}

func TestNestedBypassIndependentPushPop(t *testing.T) {
	var buf strings.Builder
	s := sink.New(&buf)
	s.PushBypass()
	s.PushBypass()
	s.PopBypass()
	assert.Assert(t, s.Bypassed())
	s.PopBypass()
	assert.Assert(t, !s.Bypassed())
}

func TestPopBypassBelowZeroIsNoop(t *testing.T) {
	var buf strings.Builder
	s := sink.New(&buf)
	s.PopBypass()
	assert.Assert(t, !s.Bypassed())
}
