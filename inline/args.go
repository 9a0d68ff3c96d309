package inline

import (
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/token"
)

// readArg parses a single command argument per spec.md section 4.4's
// "tok = grouped inline | nested inline command | single inline" rule.
func (e *Engine) readArg() ([]doctree.Inline, error) {
	if err := e.St.ExpandHead(); err != nil {
		return nil, err
	}
	head, ok, err := e.St.Stream.Peek()
	if err != nil || !ok {
		return nil, err
	}
	if head.Kind == token.Symbol && head.Name == "{" {
		var inlines []doctree.Inline
		err := e.St.Grouped(func() error {
			_, err := e.step(&inlines)
			return err
		})
		return inlines, err
	}
	var out []doctree.Inline
	if _, err := e.step(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// readArgText returns the braced argument's raw source text, unparsed
// and unexpanded, for commands (\url,
// \href's target, \includegraphics's path, \label, \ref) whose argument
// is consumed as a literal string rather than rendered inline content.
func (e *Engine) readArgText() (string, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return "", err
	}
	return body.Raw(), nil
}

// skipOpts discards a bracketed "[...]" option list, if present.
func (e *Engine) skipOpts() error {
	_, _, err := macro.ReadBracketed(e.St.Stream)
	return err
}

// KeyVal is one entry of a parsed keyvals option list (spec.md section
// 4.4).
type KeyVal struct {
	Key   string
	Value string
}

// keyVals parses a bracketed "key=value,key2={braced value}" option
// list. Parsing runs over the list's raw captured text (braces
// balanced, commas/equals outside of them treated as separators) rather
// than re-tokenizing, matching the teacher's own string-oriented
// argument handling.
func (e *Engine) keyVals() ([]KeyVal, error) {
	body, found, err := macro.ReadBracketed(e.St.Stream)
	if err != nil || !found {
		return nil, err
	}
	raw := body.Raw()
	var out []KeyVal
	for _, entry := range splitTopLevel(raw, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := splitTopLevel(entry, '=')
		if len(parts) == 1 {
			out = append(out, KeyVal{Key: strings.TrimSpace(parts[0])})
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(strings.Join(parts[1:], "="))
		value = strings.TrimPrefix(strings.TrimSuffix(value, "}"), "{")
		out = append(out, KeyVal{Key: key, Value: value})
	}
	return out, nil
}

// splitTopLevel splits s on sep, ignoring occurrences inside a balanced
// "{...}" nesting.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}
