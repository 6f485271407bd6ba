// Package render prints token trees back to source text.
package render

import (
	"bytes"

	"github.com/hexlit-dev/hexlit/pkg/token"
)

// Render returns the source text for a token stream.
func Render(stream token.Stream) string {
	p := NewPrinter()
	p.Stream(stream)
	return p.String()
}

// Node returns the source text for a single node.
func Node(n token.Node) string {
	p := NewPrinter()
	p.Node(n)
	return p.String()
}

// Printer accumulates rendered tokens with expression-style spacing.
type Printer struct {
	output *bytes.Buffer
	last   string
}

// NewPrinter returns an empty printer.
func NewPrinter() *Printer {
	return &Printer{output: &bytes.Buffer{}}
}

// String returns the rendered output.
func (p *Printer) String() string {
	return p.output.String()
}

// Stream renders every node in the stream.
func (p *Printer) Stream(s token.Stream) {
	for _, n := range s {
		p.Node(n)
	}
}

// Node renders one node. Groups with the None delimiter are transparent:
// their children render inline with no surrounding marks.
func (p *Printer) Node(n token.Node) {
	switch node := n.(type) {
	case *token.Group:
		if node.Delim == token.None {
			p.Stream(node.Children)
			return
		}
		p.write(string(node.Delim.Open()))
		p.Stream(node.Children)
		p.write(string(node.Delim.Close()))
	case *token.Literal:
		p.write(node.Text)
	case *token.Atom:
		p.write(node.Text)
	}
}

func (p *Printer) write(text string) {
	if text == "" {
		return
	}
	if p.needSpace(text) {
		p.output.WriteByte(' ')
	}
	p.output.WriteString(text)
	p.last = text
}

// needSpace decides whether a separating space belongs between the last
// emitted token and next. The rules mirror how Go lays out expressions:
// calls and composite literals hug their delimiters, selectors bind tight,
// separators attach to the preceding token, and [n]elem array types stay
// joined.
func (p *Printer) needSpace(next string) bool {
	if p.last == "" {
		return false
	}
	if isOpenDelim(p.last) {
		return false
	}
	if isCloseDelim(next) || next == "," || next == ";" {
		return false
	}
	if next == "." || p.last == "." {
		return false
	}
	if isOpenDelim(next) {
		return !bindsTight(p.last)
	}
	if p.last == "]" {
		return false
	}
	return true
}

// bindsTight reports whether an opener directly after s forms a call,
// index, or composite literal rather than starting a new operand.
func bindsTight(s string) bool {
	if s == ")" || s == "]" {
		return true
	}
	ch := s[0]
	return ch == '_' || (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isOpenDelim(s string) bool {
	return s == "(" || s == "[" || s == "{"
}

func isCloseDelim(s string) bool {
	return s == ")" || s == "]" || s == "}"
}
