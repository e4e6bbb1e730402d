// Package value implements the TenPlates value model: five scalar
// variants (Integer, Real, Text, Blob, Null) plus Row (a named map of
// scalars) and Rows (an ordered sequence of Rows). Equality and
// ordering are defined within like variants; Integer and Real compare
// numerically across each other, and every other cross-variant
// comparison is undefined.
package value

import (
	"database/sql/driver"
	"encoding/base64"
	"fmt"
	"iter"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindText
	KindBlob
	KindNull
	KindRow
	KindRows
)

// String names the variant, used in TypeError messages.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindNull:
		return "null"
	case KindRow:
		return "row"
	case KindRows:
		return "rows"
	default:
		return "unknown"
	}
}

// Value is the tagged union shared by every binding, literal, and
// computed expression in a template.
type Value struct {
	kind Kind
	i    int64
	r    float64
	t    string
	b    []byte
	row  Row
	rows Rows
}

// Null is the zero value for the Null variant.
var Null = Value{kind: KindNull}

// NewInteger wraps an int64 as an Integer value.
func NewInteger(i int64) Value { return Value{kind: KindInteger, i: i} }

// NewReal wraps a float64 as a Real value.
func NewReal(r float64) Value { return Value{kind: KindReal, r: r} }

// NewText wraps a string as a Text value.
func NewText(t string) Value { return Value{kind: KindText, t: t} }

// NewBlob wraps a byte slice as a Blob value.
func NewBlob(b []byte) Value { return Value{kind: KindBlob, b: b} }

// NewRow wraps a Row as a Row value.
func NewRow(row Row) Value { return Value{kind: KindRow, row: row} }

// NewRows wraps a Rows as a Rows value.
func NewRows(rows Rows) Value { return Value{kind: KindRows, rows: rows} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Integer returns the underlying int64 and whether the value was an
// Integer.
func (v Value) Integer() (int64, bool) { return v.i, v.kind == KindInteger }

// Real returns the underlying float64 and whether the value was a Real.
func (v Value) Real() (float64, bool) { return v.r, v.kind == KindReal }

// Text returns the underlying string and whether the value was Text.
func (v Value) Text() (string, bool) { return v.t, v.kind == KindText }

// Blob returns the underlying bytes and whether the value was a Blob.
func (v Value) Blob() ([]byte, bool) { return v.b, v.kind == KindBlob }

// Row returns the underlying Row and whether the value was a Row.
func (v Value) Row() (Row, bool) { return v.row, v.kind == KindRow }

// Rows returns the underlying Rows and whether the value was Rows.
func (v Value) Rows() (Rows, bool) { return v.rows, v.kind == KindRows }

// IsTruthy implements the per-variant truthiness rules: a non-null
// nonzero number, or a non-empty text/blob/row/rows.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindInteger:
		return v.i != 0
	case KindReal:
		return v.r != 0
	case KindText:
		return v.t != ""
	case KindBlob:
		return len(v.b) != 0
	case KindRow:
		return len(v.row) != 0
	case KindRows:
		return len(v.rows) != 0
	default:
		return false
	}
}

// AsText renders the value for splicing into the output stream. Row
// and Rows cannot be rendered and return an error; every other variant
// always succeeds.
func (v Value) AsText() (string, error) {
	switch v.kind {
	case KindInteger:
		return fmt.Sprintf("%d", v.i), nil
	case KindReal:
		return fmt.Sprintf("%g", v.r), nil
	case KindText:
		return v.t, nil
	case KindBlob:
		return base64.StdEncoding.EncodeToString(v.b), nil
	case KindNull:
		return "", nil
	default:
		return "", fmt.Errorf("%s cannot be rendered", v.kind)
	}
}

// Equal implements variant-aware equality: Integer and Real compare
// numerically across each other; everything else requires a matching
// variant, and Row/Rows/Null are never equal to anything (including
// themselves, matching the reference implementation).
func (v Value) Equal(other Value) bool {
	switch v.kind {
	case KindInteger:
		switch other.kind {
		case KindInteger:
			return v.i == other.i
		case KindReal:
			return float64(v.i) == other.r
		}
		return false
	case KindReal:
		switch other.kind {
		case KindReal:
			return v.r == other.r
		case KindInteger:
			return v.r == float64(other.i)
		}
		return false
	case KindText:
		return other.kind == KindText && v.t == other.t
	case KindBlob:
		return other.kind == KindBlob && string(v.b) == string(other.b)
	default:
		return false
	}
}

// Compare implements the relational operators (<, <=, >, >=). It
// returns an error for any cross-variant pair other than Integer/Real,
// and for any comparison involving Null, Row, or Rows.
func (v Value) Compare(other Value) (int, error) {
	switch v.kind {
	case KindInteger:
		switch other.kind {
		case KindInteger:
			return cmpOrdered(v.i, other.i), nil
		case KindReal:
			return cmpOrdered(float64(v.i), other.r), nil
		}
	case KindReal:
		switch other.kind {
		case KindReal:
			return cmpOrdered(v.r, other.r), nil
		case KindInteger:
			return cmpOrdered(v.r, float64(other.i)), nil
		}
	case KindText:
		if other.kind == KindText {
			return cmpOrdered(v.t, other.t), nil
		}
	case KindBlob:
		if other.kind == KindBlob {
			return cmpOrdered(string(v.b), string(other.b)), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %s to %s", v.kind, other.kind)
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Iter flattens a Rows value into its elements, or yields the value
// itself once for any other variant — mirroring the reference
// implementation's ValueIter helper, used by foreach.
func (v Value) Iter() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		if v.kind == KindRows {
			for _, row := range v.rows {
				if !yield(NewRow(row)) {
					return
				}
			}
			return
		}
		yield(v)
	}
}

// Scan implements database/sql.Scanner so a Value can receive a
// driver-native column directly, matching the shape of the optional
// SQL value-mapping collaborator referenced by the specification.
func (v *Value) Scan(src any) error {
	switch t := src.(type) {
	case nil:
		*v = Null
	case int64:
		*v = NewInteger(t)
	case float64:
		*v = NewReal(t)
	case string:
		*v = NewText(t)
	case []byte:
		cp := make([]byte, len(t))
		copy(cp, t)
		*v = NewBlob(cp)
	default:
		return fmt.Errorf("value: unsupported scan source %T", src)
	}
	return nil
}

// Value implements database/sql/driver.Valuer so a Value can be bound
// directly as a query parameter.
func (v Value) Value() (driver.Value, error) {
	switch v.kind {
	case KindInteger:
		return v.i, nil
	case KindReal:
		return v.r, nil
	case KindText:
		return v.t, nil
	case KindBlob:
		return v.b, nil
	case KindNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("%s has no SQL representation", v.kind)
	}
}
