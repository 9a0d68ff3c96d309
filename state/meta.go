package state

import "github.com/latexdoc/reader/doctree"

// Meta accumulates the document metadata mapping of spec.md section
// 3.3/4.8: scalar keys (title, date, subtitle, address, dedication,
// abstract) overwrite on repeated assignment, while list keys (author,
// bibliography, nocite) append.
type Meta struct {
	entries map[string]doctree.MetaValue
	order   []string
}

// NewMeta returns an empty Meta.
func NewMeta() *Meta {
	return &Meta{entries: make(map[string]doctree.MetaValue)}
}

// SetScalar overwrites key with value.
func (m *Meta) SetScalar(key string, value doctree.MetaValue) {
	if _, ok := m.entries[key]; !ok {
		m.order = append(m.order, key)
	}
	m.entries[key] = value
}

// Append adds value to the list stored under key, creating it if
// necessary.
func (m *Meta) Append(key string, value doctree.MetaValue) {
	existing, ok := m.entries[key]
	if !ok {
		m.order = append(m.order, key)
		m.entries[key] = doctree.MetaValue{List: []doctree.MetaValue{value}}
		return
	}
	existing.List = append(existing.List, value)
	m.entries[key] = existing
}

// Get returns the value stored under key, if any.
func (m *Meta) Get(key string) (doctree.MetaValue, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Map returns a copy of the accumulated mapping, suitable for attaching
// to a doctree.Doc. As a Go map it carries no key order.
func (m *Meta) Map() map[string]doctree.MetaValue {
	out := make(map[string]doctree.MetaValue, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}
