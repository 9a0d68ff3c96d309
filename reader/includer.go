package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileIncluder implements block.Includer by resolving a name against a
// TEXINPUTS-style search path and reading it from disk, the filesystem
// counterpart of the teacher's scanner.Scanner.Include (latex/scanner/
// scanner.go), which joins a fixed BaseDir instead of trying several
// candidate directories in turn.
type FileIncluder struct {
	// Extensions are tried in order for a name with no extension of its
	// own (".tex" first, matching \input's usual convention).
	Extensions []string
}

// NewFileIncluder returns a FileIncluder trying ".tex" then the bare
// name, the common case for \include/\input/\subfile targets.
func NewFileIncluder() *FileIncluder {
	return &FileIncluder{Extensions: []string{".tex", ""}}
}

// Load implements block.Includer.
func (f *FileIncluder) Load(name string, searchPath []string) (string, []byte, error) {
	candidates := f.candidateNames(name)
	for _, dir := range searchPath {
		for _, cand := range candidates {
			path := filepath.Join(dir, cand)
			data, err := os.ReadFile(path)
			if err == nil {
				abs, absErr := filepath.Abs(path)
				if absErr != nil {
					abs = path
				}
				return abs, data, nil
			}
		}
	}
	return "", nil, fmt.Errorf("%s: not found in %s", name, strings.Join(searchPath, ":"))
}

func (f *FileIncluder) candidateNames(name string) []string {
	if filepath.Ext(name) != "" {
		return []string{name}
	}
	exts := f.Extensions
	if len(exts) == 0 {
		exts = []string{""}
	}
	out := make([]string, len(exts))
	for i, ext := range exts {
		out[i] = name + ext
	}
	return out
}
