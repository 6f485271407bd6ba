// Package gen renders transformed manifests as Go source files.
//
// Each manifest becomes one file of var declarations. A manifest that fails
// to transform becomes a file holding a single diagnostic declaration that
// cannot compile, anchored at the failing manifest line through a line
// directive, so the break surfaces in the downstream build instead of
// silently producing stale identifiers.
package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/hexlit-dev/hexlit/internal/manifest"
	"github.com/hexlit-dev/hexlit/pkg/expand"
	"github.com/hexlit-dev/hexlit/pkg/lexer"
	"github.com/hexlit-dev/hexlit/pkg/render"
	"github.com/hexlit-dev/hexlit/pkg/token"
)

// DefaultImportPath is where generated files pull the identifier types from
// when neither the config nor the manifest header overrides it.
const DefaultImportPath = "github.com/hexlit-dev/hexlit/pkg/oid"

// Options configures a Generator.
type Options struct {
	// ImportPath is the identifier package generated files import.
	// Empty selects DefaultImportPath.
	ImportPath string

	// Qualifier is the package qualifier constructor calls go through.
	// Empty selects the expansion default.
	Qualifier string

	// LineDirectives emits //line comments that map every declaration back
	// to its manifest line.
	LineDirectives bool

	// Goimports formats the output with goimports. Files carrying a
	// diagnostic are never formatted, so the directive anchoring survives.
	Goimports bool
}

// Generator renders manifests into Go source.
type Generator struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Generator. A nil logger discards output.
func New(opts Options, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.ImportPath == "" {
		opts.ImportPath = DefaultImportPath
	}
	if opts.Qualifier == "" {
		opts.Qualifier = expand.DefaultQualifier
	}
	return &Generator{opts: opts, logger: logger}
}

// Result is one generated file.
type Result struct {
	Package  string
	FileName string
	Code     []byte

	// Diag is set when the file carries a compile diagnostic instead of
	// declarations.
	Diag *expand.TransformError
}

// declaration is one rendered manifest entry.
type declaration struct {
	doc  []string
	name string
	pos  token.Position
	expr string
}

// File renders one manifest. The first entry that fails aborts the whole
// file: the output then holds only the diagnostic, mirroring how the pass
// aborts a stream on its first malformed literal.
func (g *Generator) File(m *manifest.Manifest) *Result {
	pkg := PackageName(m)
	qualifier := m.Qualifier
	if qualifier == "" {
		qualifier = g.opts.Qualifier
	}
	importPath := m.ImportPath
	if importPath == "" {
		importPath = g.opts.ImportPath
	}

	exp := expand.New(expand.Options{Qualifier: qualifier})

	var decls []declaration
	var diag *expand.TransformError
	for _, entry := range m.Entries {
		decl, err := g.declare(entry, exp, qualifier)
		if err != nil {
			diag = expand.AsTransformError(err)
			break
		}
		decls = append(decls, decl)
	}

	var buf bytes.Buffer
	g.writeHeader(&buf, m, pkg)

	switch {
	case diag != nil:
		g.writeDiagnostic(&buf, diag)
	case len(decls) > 0:
		g.writeImport(&buf, qualifier, importPath)
		for _, decl := range decls {
			g.writeDeclaration(&buf, decl)
		}
	}

	result := &Result{
		Package:  pkg,
		FileName: OutputName(m.Path),
		Code:     buf.Bytes(),
		Diag:     diag,
	}

	if g.opts.Goimports && diag == nil {
		formatted, err := imports.Process(result.FileName, result.Code, nil)
		if err != nil {
			g.logger.Warn("goimports failed, writing unformatted output",
				"file", result.FileName, "error", err)
		} else {
			result.Code = formatted
		}
	}

	g.logger.Debug("generated file",
		"manifest", m.Path, "package", pkg, "entries", len(decls), "diagnostic", diag != nil)
	return result
}

// ErrorFile renders a diagnostic-only file for a manifest that failed to
// parse. Broken manifests still produce output so a stale generated file
// never survives next to a bad source: the replacement refuses to compile,
// pinned to the failing manifest position.
func (g *Generator) ErrorFile(path string, err error) *Result {
	pos := token.Position{File: path, Line: 1, Column: 1}
	msg := err.Error()

	var parseErr *manifest.ParseError
	var lexErr *lexer.LexError
	var expandErr expand.Error
	switch {
	case errors.As(err, &parseErr):
		pos = token.Position{File: parseErr.File, Line: parseErr.Line, Column: 1}
		msg = parseErr.Message
	case errors.As(err, &lexErr):
		pos = lexErr.Pos
		msg = lexErr.Message
	case errors.As(err, &expandErr):
		pos = expandErr.Position()
		msg = expandErr.Message()
	}

	diag := expand.NewTransformError(pos, msg)
	m := &manifest.Manifest{Path: path}
	pkg := PackageName(m)

	var buf bytes.Buffer
	g.writeHeader(&buf, m, pkg)
	g.writeDiagnostic(&buf, diag)

	g.logger.Debug("generated diagnostic file", "manifest", path, "error", msg)

	return &Result{
		Package:  pkg,
		FileName: OutputName(path),
		Code:     buf.Bytes(),
		Diag:     diag,
	}
}

// declare turns one entry into a declaration. Supported value shapes are a
// single literal, a parenthesized literal, and a brace list of literals.
func (g *Generator) declare(entry *manifest.Entry, exp *expand.Expander, qualifier string) (declaration, error) {
	if entry.Name == qualifier {
		return declaration{}, expand.NewGenerationErrorf(entry.Pos,
			"entry %q shadows the %q package qualifier", entry.Name, qualifier)
	}
	if len(entry.Value) != 1 {
		return declaration{}, expand.NewGenerationErrorf(entry.Pos,
			"entry %q: value must be a single literal, (literal), or {literal, ...}", entry.Name)
	}

	decl := declaration{doc: entry.Doc, name: entry.Name, pos: entry.Value[0].Pos()}

	switch node := entry.Value[0].(type) {
	case *token.Literal:
		out, err := exp.Transform(entry.Value)
		if err != nil {
			return declaration{}, err
		}
		decl.expr = render.Render(out)

	case *token.Group:
		switch node.Delim {
		case token.Paren:
			out, err := exp.Transform(entry.Value)
			if err != nil {
				return declaration{}, err
			}
			decl.expr = render.Render(out)

		case token.Brace:
			out, err := exp.Transform(entry.Value)
			if err != nil {
				return declaration{}, err
			}
			elem, err := listElemType(node, qualifier)
			if err != nil {
				return declaration{}, err
			}
			decl.expr = "[]" + elem + render.Render(out)

		default:
			return declaration{}, expand.NewGenerationErrorf(node.Pos(),
				"entry %q: %s group is not a Go value", entry.Name, node.Delim)
		}

	default:
		return declaration{}, expand.NewGenerationErrorf(entry.Value[0].Pos(),
			"entry %q: value must start with a literal or group", entry.Name)
	}

	return decl, nil
}

// listElemType derives the element type of a brace list from the suffix
// tags of its raw literals. Every element must be a plain literal and all
// tags must agree.
func listElemType(group *token.Group, qualifier string) (string, error) {
	kind := ""
	for _, child := range group.Children {
		switch node := child.(type) {
		case *token.Literal:
			k := tagType(node.Text)
			if kind == "" {
				kind = k
				continue
			}
			if k != kind {
				return "", expand.NewGenerationErrorf(node.Pos(),
					"mixed element kinds in list: %s after %s", k, kind)
			}
		case *token.Atom:
			// Separators survive transformation, so they are fine here.
		default:
			return "", expand.NewGenerationErrorf(child.Pos(),
				"list elements must be plain literals")
		}
	}
	if kind == "" {
		return "", expand.NewGenerationError(group.Pos(), "empty list has no element type")
	}
	return qualifier + "." + kind, nil
}

// tagType maps a literal's suffix tag to the identifier type name. The
// transformation already validated the tag, so unknowns cannot reach here.
func tagType(text string) string {
	if strings.HasSuffix(text, "_address") {
		return "Address"
	}
	return "ObjectID"
}

func (g *Generator) writeHeader(buf *bytes.Buffer, m *manifest.Manifest, pkg string) {
	fmt.Fprintf(buf, "// Code generated by hexlit; DO NOT EDIT.\n")
	fmt.Fprintf(buf, "//\n// Source: %s\n\n", m.Path)
	if m.Description != "" {
		for _, line := range strings.Split(m.Description, "\n") {
			fmt.Fprintf(buf, "// %s\n", line)
		}
	}
	fmt.Fprintf(buf, "package %s\n", pkg)
}

func (g *Generator) writeImport(buf *bytes.Buffer, qualifier, importPath string) {
	base := importPath[strings.LastIndexByte(importPath, '/')+1:]
	if base == qualifier {
		fmt.Fprintf(buf, "\nimport %q\n", importPath)
	} else {
		fmt.Fprintf(buf, "\nimport %s %q\n", qualifier, importPath)
	}
}

func (g *Generator) writeDeclaration(buf *bytes.Buffer, decl declaration) {
	buf.WriteByte('\n')
	for _, line := range decl.doc {
		fmt.Fprintf(buf, "// %s\n", line)
	}
	if g.opts.LineDirectives {
		lineDirective(buf, decl.pos)
	}
	fmt.Fprintf(buf, "var %s = %s\n", decl.name, decl.expr)
}

// writeDiagnostic always anchors with a line directive, so the compile
// failure reports the manifest position even when directives are off for
// plain declarations.
func (g *Generator) writeDiagnostic(buf *bytes.Buffer, diag *expand.TransformError) {
	buf.WriteByte('\n')
	lineDirective(buf, diag.Position())
	fmt.Fprintf(buf, "var _ = %s\n", render.Node(expand.Diagnostic(diag)))
}

// lineDirective maps the next output line back to its manifest position.
func lineDirective(buf *bytes.Buffer, pos token.Position) {
	if !pos.IsValid() || pos.File == "" {
		return
	}
	fmt.Fprintf(buf, "//line %s:%d:%d\n", pos.File, pos.Line, pos.Column)
}

// PackageName resolves the target package: the manifest header wins, then
// the sanitized file name, then a fixed fallback.
func PackageName(m *manifest.Manifest) string {
	if m.Package != "" {
		return m.Package
	}
	base := strings.TrimSuffix(filepath.Base(m.Path), ".hexlit")
	if name := sanitizeIdent(base); name != "" {
		return name
	}
	return "hexlit"
}

// OutputName is the generated file name for a manifest path.
func OutputName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".hexlit")
	return base + ".hexlit.go"
}

// sanitizeIdent lowercases name and drops every rune that cannot appear in
// a Go identifier. Leading digits go too. Empty means unusable.
func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() > 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
