package context

import "github.com/frankiebaffa/tenplates/internal/value"

// binding pairs a bound value with the provenance directory of the
// file whose compilation created it, so a path accessed later through
// this binding resolves relative to where the binding came from.
type binding struct {
	value value.Value
	dir   string
}

// Scope is one stack frame of name -> value bindings.
type Scope struct {
	bindings map[string]binding
}

func newScope() *Scope {
	return &Scope{bindings: make(map[string]binding)}
}

// Let unconditionally overwrites the binding for name.
func (s *Scope) Let(name string, v value.Value, dir string) {
	s.bindings[name] = binding{value: v, dir: dir}
}

// Set implements append-as-list semantics: if name is already bound to
// a Rows, v is appended (wrapped as a single-column row if scalar); if
// bound to a scalar, the binding is upgraded to a two-element Rows;
// otherwise a fresh binding is created.
func (s *Scope) Set(name string, v value.Value, dir string) {
	existing, ok := s.bindings[name]
	if !ok {
		s.bindings[name] = binding{value: v, dir: dir}
		return
	}

	switch existing.value.Kind() {
	case value.KindRows:
		rows, _ := existing.value.Rows()
		rows = append(rows, asRow(v))
		s.bindings[name] = binding{value: value.NewRows(rows), dir: dir}
	default:
		rows := value.Rows{asRow(existing.value), asRow(v)}
		s.bindings[name] = binding{value: value.NewRows(rows), dir: dir}
	}
}

// asRow wraps a scalar as a single-column row named "value", or
// returns the row itself unchanged.
func asRow(v value.Value) value.Row {
	if row, ok := v.Row(); ok {
		return row
	}
	return value.Row{"value": v}
}

// Unset removes name from this scope, reporting whether it was
// present.
func (s *Scope) Unset(name string) bool {
	if _, ok := s.bindings[name]; !ok {
		return false
	}
	delete(s.bindings, name)
	return true
}

// lookup returns the raw binding for name, if any.
func (s *Scope) lookup(name string) (binding, bool) {
	b, ok := s.bindings[name]
	return b, ok
}
