package block

import (
	"os"
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// includeCommands is the set of control sequences that pull in another
// file's content (spec.md section 4.5): \include, \input, \subfile and
// \usepackage all resolve a name to bytes and re-enter the block parser
// over them; \lstinputlisting is handled separately in commands.go since
// it becomes a CodeBlock rather than spliced-in blocks.
var includeCommands = map[string]bool{
	"include":    true,
	"input":      true,
	"subfile":    true,
	"usepackage": true,
}

// pkgInit mirrors the teacher's pkgInit map[string]pkgInitFunc
// (latex/pkg-*.go): package names that, when \usepackage'd, enable
// additional macros/environments beyond file inclusion. amsmath/amsthm
// need no gating here since cmdNewtheorem/cmdDeclareMathOperator are
// always registered; pkgInit exists for packages whose only effect is
// such a toggle (no corresponding .sty file to read).
var pkgInit = map[string]func(e *Engine){}

// include implements \include/\input/\subfile/\usepackage: resolve name
// against the search path (then consulting the include cache), guard
// against include cycles via state.IncludeStack, tokenize the content
// into a cloned sub-state, parse it as blocks, and merge macros/log
// entries back per spec.md section 4.9's merge-back requirement.
func (e *Engine) include(cmdName string) ([]doctree.Block, error) {
	tok, _, err := e.St.Stream.Next() // consume the command token
	if err != nil {
		return nil, err
	}
	name, err := e.readArgText()
	if err != nil {
		return nil, err
	}

	if cmdName == "usepackage" {
		for _, pkg := range strings.Split(name, ",") {
			if init, ok := pkgInit[strings.TrimSpace(pkg)]; ok {
				init(e)
			}
		}
	}

	if e.Includer == nil {
		e.St.Warn(state.CouldNotLoadIncludeFile, tok.Pos, "no file loader configured for \\"+cmdName+"{"+name+"}")
		return nil, nil
	}

	absPath, data, toks, err := e.resolveInclude(name)
	if err != nil {
		e.St.Warn(state.CouldNotLoadIncludeFile, tok.Pos, "could not load \\"+cmdName+"{"+name+"}: "+err.Error())
		return nil, nil
	}

	for _, seen := range e.St.IncludeStack {
		if seen == absPath {
			e.St.Warn(state.CouldNotLoadIncludeFile, tok.Pos, "include cycle detected: "+absPath)
			return nil, nil
		}
	}

	cacheHit := toks != nil
	if !cacheHit {
		toks = capturedTokens(data, absPath)
	}
	sub := tokenizer.New()
	sub.PrependTokens(toks)
	subState := e.St.Clone(sub)
	subState.IncludeStack = append(append([]string{}, e.St.IncludeStack...), absPath)

	blocks, err := e.childEngine(subState).ParseBlocks(nil)
	e.St.MergeBack(subState)
	if err != nil {
		return nil, err
	}

	if e.Cache != nil && !cacheHit {
		e.Cache.Put(absPath, toks)
	}
	return blocks, nil
}

// resolveInclude asks the Includer to read the file, then consults the
// include cache (if any) under the file's resolved absolute path, per
// SPEC_FULL.md section 2's includecache wiring. toks is non-nil on a
// cache hit, in which case data is not re-tokenized.
func (e *Engine) resolveInclude(name string) (absPath string, data []byte, toks token.List, err error) {
	absPath, data, err = e.Includer.Load(name, e.searchPath())
	if err != nil {
		return "", nil, nil, err
	}
	if e.Cache != nil {
		if cached, ok := e.Cache.Get(absPath); ok {
			return absPath, data, cached, nil
		}
	}
	return absPath, data, nil, nil
}

// capturedTokens tokenizes data in full (sources named absPath); the
// caller parses this list through PrependTokens and, on a cache miss,
// stores the same list in the include cache.
func capturedTokens(data []byte, absPath string) token.List {
	s := tokenizer.New()
	s.Prepend(data, absPath)
	var out token.List
	for {
		tok, ok, err := s.Next()
		if err != nil || !ok {
			break
		}
		out = append(out, tok)
	}
	return out
}

// searchPath builds the TEXINPUTS-style lookup order of spec.md section
// 6: the colon-separated TEXINPUTS directories (the current directory
// when TEXINPUTS is unset or empty), then every \graphicspath directory
// accumulated in state.ResourcePath.
func (e *Engine) searchPath() []string {
	var dirs []string
	for _, dir := range strings.Split(os.Getenv("TEXINPUTS"), ":") {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	return append(dirs, e.St.ResourcePath...)
}
