// Package manifest loads .hexlit files: an optional YAML header followed
// by NAME = VALUE entries, one per line, whose values are token streams of
// tagged hex literals.
package manifest

import (
	gotoken "go/token"
	"os"
	"strings"

	"github.com/hexlit-dev/hexlit/pkg/lexer"
	"github.com/hexlit-dev/hexlit/pkg/token"
)

// Manifest is one parsed .hexlit file.
type Manifest struct {
	Path        string
	Package     string // target package name, empty means derive from filename
	Qualifier   string // constructor qualifier override
	ImportPath  string // identifier package import override
	Description string
	Entries     []*Entry
}

// Entry is one NAME = VALUE line.
type Entry struct {
	Name  string
	Doc   []string // comment lines directly above the entry
	Value token.Stream
	Pos   token.Position // position of the name
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(content), path)
}

// Parse parses manifest content. Entry values are lexed with positions
// relative to the whole file, so downstream diagnostics point at the
// manifest line the value came from.
func Parse(content, path string) (*Manifest, error) {
	h, bodyStart, err := extractHeader(content, path)
	if err != nil {
		return nil, err
	}
	if err := validateHeader(h, path); err != nil {
		return nil, err
	}

	m := &Manifest{Path: path}
	if h != nil {
		m.Package = h.Package
		m.Qualifier = h.Qualifier
		m.ImportPath = h.Import
		m.Description = h.Description
	}

	seen := make(map[string]int)
	var doc []string

	lineNo := 1 + strings.Count(content[:bodyStart], "\n")
	offset := bodyStart
	for _, line := range strings.Split(content[bodyStart:], "\n") {
		entry, perr := parseLine(line, path, lineNo, offset, seen, &doc)
		if perr != nil {
			return nil, perr
		}
		if entry != nil {
			seen[entry.Name] = lineNo
			m.Entries = append(m.Entries, entry)
		}
		offset += len(line) + 1
		lineNo++
	}

	return m, nil
}

// parseLine handles one body line. Blank lines reset pending doc comments,
// // lines accumulate them, and NAME = VALUE lines become entries. A nil
// entry with nil error means the line carried no entry.
func parseLine(line, path string, lineNo, offset int, seen map[string]int, doc *[]string) (*Entry, error) {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		*doc = nil
		return nil, nil
	case strings.HasPrefix(trimmed, "//"):
		*doc = append(*doc, strings.TrimSpace(strings.TrimPrefix(trimmed, "//")))
		return nil, nil
	}

	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return nil, newParseErrorf(path, lineNo, "expected NAME = VALUE, got %q", trimmed)
	}

	name := strings.TrimSpace(line[:eq])
	if !isIdent(name) {
		return nil, newParseErrorf(path, lineNo, "invalid entry name %q", name)
	}
	if first, dup := seen[name]; dup {
		return nil, newParseErrorf(path, lineNo, "duplicate entry %q, first defined on line %d", name, first)
	}

	rhs := line[eq+1:]
	base := token.Position{File: path, Line: lineNo, Column: eq + 2, Offset: offset + eq + 1}
	value, err := lexer.NewAt(rhs, path, base).Lex()
	if err != nil {
		return nil, err
	}
	if len(value) == 0 {
		return nil, newParseErrorf(path, lineNo, "entry %q has no value", name)
	}

	nameCol := strings.Index(line, name) + 1
	entry := &Entry{
		Name:  name,
		Doc:   *doc,
		Value: value,
		Pos:   token.Position{File: path, Line: lineNo, Column: nameCol, Offset: offset + nameCol - 1},
	}
	*doc = nil
	return entry, nil
}

// isIdent reports whether name can be declared as a Go variable.
// Keywords are not identifiers.
func isIdent(name string) bool {
	return gotoken.IsIdentifier(name)
}
