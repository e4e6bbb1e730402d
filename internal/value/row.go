package value

// Row is a named map of scalar values. A Row never contains another
// Row or a Rows — Set rejects such values; direct map writes are not
// checked.
type Row map[string]Value

// Rows is an ordered sequence of Rows.
type Rows []Row

// Set inserts a scalar value at the given column, rejecting Row/Rows
// values (a Row can only hold scalars).
func (r Row) Set(column string, v Value) error {
	if v.Kind() == KindRow || v.Kind() == KindRows {
		return errRowCannotNest
	}
	r[column] = v
	return nil
}

// Get looks up a column, returning Null when absent.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null
}

// Column returns the named column of the first row, or Null if there
// are no rows — used when an Alias with no explicit row index selects
// a field directly off a Rows binding.
func (rs Rows) Column(name string) Value {
	if len(rs) == 0 {
		return Null
	}
	return rs[0].Get(name)
}

// At returns the row at the given 0-based index, or Null if out of
// range.
func (rs Rows) At(index int) Value {
	if index < 0 || index >= len(rs) {
		return Null
	}
	return NewRow(rs[index])
}
