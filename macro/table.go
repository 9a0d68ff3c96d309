package macro

import "github.com/latexdoc/reader/token"

// Table maps macro and environment names to their rewrite rule.
// Environment bodies are keyed by the bare environment name
// ("itemize"); environment ends are keyed by "end"+name ("enditemize"),
// mirroring how \newenvironment installs its pair (spec.md section
// 4.3).
type Table struct {
	entries map[string]Macro

	// MacrosEnabled gates whether the definition-installing macros
	// (\newcommand and friends) actually write into entries. When the
	// latex_macros extension is off, definitions still parse — their
	// syntax is consumed from the stream — but have no effect,
	// and any \usercommand later in the document is simply an unknown
	// control sequence that falls through to the inline/block engines.
	MacrosEnabled bool

	// Warn, if set, receives a message whenever \newcommand or
	// \newenvironment redefines an existing name (the
	// MacroAlreadyDefined log kind of spec.md section 7). The state
	// package wires this to its Logger when constructing a Table.
	Warn func(pos token.Pos, message string)
}

// NewTable returns a table pre-populated with the built-in
// definition-parsing forms (\newcommand, \renewcommand,
// \providecommand, \newenvironment, \renewenvironment,
// \provideenvironment, \def). These are registered as ordinary macros
// so the expansion loop in expand.go treats them uniformly: they
// consume their own syntax and return no replacement tokens, installing
// a new entry as a side effect.
func NewTable() *Table {
	t := &Table{entries: make(map[string]Macro), MacrosEnabled: true}
	registerDefs(t)
	return t
}

// Lookup returns the macro registered under name, if any.
func (t *Table) Lookup(name string) (Macro, bool) {
	m, ok := t.entries[name]
	return m, ok
}

// Define installs m under name. Reports whether name was already bound
// (the caller logs MacroAlreadyDefined for \newcommand/\newenvironment
// but not for \renewcommand/\def, which overwrite silently).
func (t *Table) Define(name string, m Macro) (existed bool) {
	_, existed = t.entries[name]
	t.entries[name] = m
	return existed
}

// DefineIfAbsent installs m under name only if nothing is bound there
// yet (the behaviour of \providecommand/\provideenvironment).
func (t *Table) DefineIfAbsent(name string, m Macro) {
	if _, ok := t.entries[name]; ok {
		return
	}
	t.entries[name] = m
}

// Clone returns a shallow copy of the table sharing no map storage with
// t, for the re-entrant sub-parses of spec.md section 4.8 (macro bodies
// learned inside a table cell or raw sub-parse must not leak back
// unless the caller explicitly merges them).
func (t *Table) Clone() *Table {
	cp := &Table{entries: make(map[string]Macro, len(t.entries)), MacrosEnabled: t.MacrosEnabled}
	for k, v := range t.entries {
		cp.entries[k] = v
	}
	return cp
}

// MergeFrom copies every entry of src into t, overwriting existing
// bindings of the same name. Used to merge macros learned during a
// sub-parse back into the parent state.
func (t *Table) MergeFrom(src *Table) {
	for k, v := range src.entries {
		t.entries[k] = v
	}
}
