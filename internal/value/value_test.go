package value_test

import (
	"testing"

	"github.com/frankiebaffa/tenplates/internal/value"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestAsText(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want string
	}{
		{"integer", value.NewInteger(42), "42"},
		{"real", value.NewReal(3.5), "3.5"},
		{"text", value.NewText("hi"), "hi"},
		{"null", value.Null, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.v.AsText()
			assert.NilError(t, err)
			assert.Equal(t, got, c.want)
		})
	}
}

func TestAsTextRowRejected(t *testing.T) {
	_, err := value.NewRow(value.Row{}).AsText()
	assert.ErrorContains(t, err, "cannot be rendered")
}

func TestEqualCrossesIntegerAndReal(t *testing.T) {
	assert.Assert(t, value.NewInteger(4).Equal(value.NewReal(4.0)))
	assert.Assert(t, !value.NewInteger(4).Equal(value.NewReal(4.5)))
}

func TestEqualNullNeverEqual(t *testing.T) {
	assert.Assert(t, !value.Null.Equal(value.Null))
}

func TestCompareOrdersText(t *testing.T) {
	cmp, err := value.NewText("a").Compare(value.NewText("b"))
	assert.NilError(t, err)
	assert.Assert(t, cmp < 0)
}

func TestCompareRejectsCrossVariant(t *testing.T) {
	_, err := value.NewText("a").Compare(value.NewInteger(1))
	assert.ErrorContains(t, err, "cannot compare")
}

func TestIsTruthy(t *testing.T) {
	assert.Assert(t, value.NewInteger(1).IsTruthy())
	assert.Assert(t, !value.NewInteger(0).IsTruthy())
	assert.Assert(t, value.NewInteger(-1).IsTruthy())
	assert.Assert(t, value.NewText("x").IsTruthy())
	assert.Assert(t, !value.NewText("").IsTruthy())
	assert.Assert(t, !value.Null.IsTruthy())
}

func TestIterScalarYieldsItself(t *testing.T) {
	var got []value.Value
	for v := range value.NewInteger(7).Iter() {
		got = append(got, v)
	}
	assert.Assert(t, is.Len(got, 1))
	assert.Assert(t, got[0].Equal(value.NewInteger(7)))
}

func TestIterRowsYieldsEachRow(t *testing.T) {
	rows := value.Rows{
		value.Row{"name": value.NewText("a")},
		value.Row{"name": value.NewText("b")},
	}
	var names []string
	for v := range value.NewRows(rows).Iter() {
		row, ok := v.Row()
		assert.Assert(t, ok)
		text, _ := row.Get("name").Text()
		names = append(names, text)
	}
	assert.DeepEqual(t, names, []string{"a", "b"})
}

func TestRowSetRejectsNestedRow(t *testing.T) {
	row := value.Row{}
	err := row.Set("inner", value.NewRow(value.Row{}))
	assert.ErrorContains(t, err, "cannot contain")
}

func TestRowGetMissingIsNull(t *testing.T) {
	row := value.Row{}
	assert.Assert(t, row.Get("missing").Equal(value.Null) == false)
	assert.Equal(t, row.Get("missing").Kind(), value.KindNull)
}

func TestRowsAtOutOfRangeIsNull(t *testing.T) {
	rows := value.Rows{value.Row{"a": value.NewInteger(1)}}
	assert.Equal(t, rows.At(5).Kind(), value.KindNull)
	assert.Equal(t, rows.At(-1).Kind(), value.KindNull)
}

func TestRowsColumnEmptyIsNull(t *testing.T) {
	assert.Equal(t, value.Rows{}.Column("x").Kind(), value.KindNull)
}
