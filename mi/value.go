package mi

import (
	"sort"
	"strings"
)

// Value is a value in an MI record payload.
//
// MI values are recursive: a constant string, a tuple of named values, or
// an ordered list of values.
type Value interface {
	// String renders the value in MI wire syntax.
	String() string

	value()
}

// String is a quoted MI constant with its C-style escapes decoded.
type String string

func (s String) value() {}

// String renders the constant in MI wire syntax, re-encoding escapes.
func (s String) String() string {
	return `"` + escapeText(string(s)) + `"`
}

// Tuple is a "{name=value,...}" aggregate. Keys are unique within one
// tuple and insertion order is preserved for rendering.
type Tuple struct {
	keys   []string
	values map[string]Value
}

// NewTuple creates an empty tuple.
func NewTuple() *Tuple {
	return &Tuple{values: make(map[string]Value)}
}

func (t *Tuple) value() {}

// Set adds or replaces a named value, preserving first-seen key order.
func (t *Tuple) Set(name string, v Value) {
	if t.values == nil {
		t.values = make(map[string]Value)
	}
	if _, exists := t.values[name]; !exists {
		t.keys = append(t.keys, name)
	}
	t.values[name] = v
}

// Get returns the value for name.
func (t *Tuple) Get(name string) (Value, bool) {
	if t == nil || t.values == nil {
		return nil, false
	}
	v, ok := t.values[name]
	return v, ok
}

// GetString returns the string constant stored under name.
// Returns false if the key is absent or holds a non-string value.
func (t *Tuple) GetString(name string) (string, bool) {
	v, ok := t.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	if !ok {
		return "", false
	}
	return string(s), true
}

// GetTuple returns the nested tuple stored under name.
func (t *Tuple) GetTuple(name string) (*Tuple, bool) {
	v, ok := t.Get(name)
	if !ok {
		return nil, false
	}
	nested, ok := v.(*Tuple)
	return nested, ok
}

// GetList returns the list stored under name.
func (t *Tuple) GetList(name string) (List, bool) {
	v, ok := t.Get(name)
	if !ok {
		return nil, false
	}
	l, ok := v.(List)
	return l, ok
}

// Keys returns the tuple's keys in insertion order.
func (t *Tuple) Keys() []string {
	if t == nil {
		return nil
	}
	return append([]string{}, t.keys...)
}

// Len returns the number of entries.
func (t *Tuple) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// String renders the tuple in MI wire syntax.
func (t *Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	sb.WriteString(t.renderBody())
	sb.WriteByte('}')
	return sb.String()
}

// renderBody renders "name=value,..." without surrounding braces.
// Result and async records use this for their top-level payload.
func (t *Tuple) renderBody() string {
	if t == nil {
		return ""
	}
	parts := make([]string, 0, len(t.keys))
	for _, k := range t.keys {
		parts = append(parts, k+"="+t.values[k].String())
	}
	return strings.Join(parts, ",")
}

// SortedKeys returns the tuple's keys in lexical order.
// Useful for deterministic inspection in diagnostics.
func (t *Tuple) SortedKeys() []string {
	keys := t.Keys()
	sort.Strings(keys)
	return keys
}

// List is a "[value,...]" sequence. Elements are order-significant and may
// repeat. GDB sometimes emits list members as "name=value" pairs; the
// parser keeps the values and discards those names.
type List []Value

func (l List) value() {}

// String renders the list in MI wire syntax.
func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// escapeText re-encodes the C escapes MI uses inside quoted constants.
func escapeText(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
