package context

import (
	"fmt"
	"strconv"
	"strings"
)

// Alias is a parsed reference of the form `name([index])?(.field)*`.
type Alias struct {
	Base   string
	Fields []string
	Index  *int
}

// ParseAlias parses a reference of the form `name([index])?(.field)*`
// such as `user.profile.name` or `users[2].name`: the row index, when
// present, always sits directly against the base name, since it is
// what turns a bound Rows into the single Row the following field
// selectors then drill into (a Row never contains another Row or a
// Rows, so indexing necessarily comes before field access).
func ParseAlias(raw string) (Alias, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Alias{}, fmt.Errorf("context: empty alias")
	}

	rest := raw
	baseEnd := len(rest)
	for i, r := range rest {
		if r == '.' || r == '[' {
			baseEnd = i
			break
		}
	}
	base := rest[:baseEnd]
	if base == "" {
		return Alias{}, fmt.Errorf("context: invalid alias %q", raw)
	}
	rest = rest[baseEnd:]

	var index *int
	if strings.HasPrefix(rest, "[") {
		close := strings.IndexByte(rest, ']')
		if close < 0 {
			return Alias{}, fmt.Errorf("context: unterminated index in alias %q", raw)
		}
		idxStr := rest[1:close]
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 {
			return Alias{}, fmt.Errorf("context: invalid row index in alias %q", raw)
		}
		index = &idx
		rest = rest[close+1:]
	}

	var fields []string
	if rest != "" {
		if !strings.HasPrefix(rest, ".") {
			return Alias{}, fmt.Errorf("context: invalid alias %q", raw)
		}
		fields = strings.Split(rest[1:], ".")
	}

	return Alias{Base: base, Fields: fields, Index: index}, nil
}

// HasFields reports whether the alias selects into nested fields.
func (a Alias) HasFields() bool { return len(a.Fields) > 0 }

// HasIndex reports whether the alias selects a specific row.
func (a Alias) HasIndex() bool { return a.Index != nil }

// String renders the alias back to its source form.
func (a Alias) String() string {
	var b strings.Builder
	b.WriteString(a.Base)
	if a.Index != nil {
		fmt.Fprintf(&b, "[%d]", *a.Index)
	}
	for _, f := range a.Fields {
		b.WriteByte('.')
		b.WriteString(f)
	}
	return b.String()
}
