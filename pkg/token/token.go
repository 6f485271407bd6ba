// Package token defines the token tree consumed and produced by the literal
// expansion pass.
//
// A tree is a strict hierarchy: groups own their children exclusively, leaves
// are literals and atoms. Every node carries the position of the source text
// it was read from; nodes synthesized by the expander are stamped with the
// position of the literal they replace, so downstream diagnostics keep
// pointing at the original source.
package token

// Delimiter identifies the bracketing of a Group.
type Delimiter int

// Delimiter kinds.
const (
	None    Delimiter = iota // no delimiter; children splice into the surrounding stream
	Paren                    // ( )
	Bracket                  // [ ]
	Brace                    // { }
)

// String returns a human-readable name for the delimiter.
func (d Delimiter) String() string {
	switch d {
	case None:
		return "none"
	case Paren:
		return "paren"
	case Bracket:
		return "bracket"
	case Brace:
		return "brace"
	default:
		return "unknown"
	}
}

// Open returns the opening rune for the delimiter, or 0 for None.
func (d Delimiter) Open() byte {
	switch d {
	case Paren:
		return '('
	case Bracket:
		return '['
	case Brace:
		return '{'
	default:
		return 0
	}
}

// Close returns the closing rune for the delimiter, or 0 for None.
func (d Delimiter) Close() byte {
	switch d {
	case Paren:
		return ')'
	case Bracket:
		return ']'
	case Brace:
		return '}'
	default:
		return 0
	}
}

// Node is the interface for all token tree nodes.
type Node interface {
	Pos() Position
	node() // marker method to restrict implementation
}

// nodeBase provides common Position handling for all nodes.
type nodeBase struct {
	pos Position
}

func (n *nodeBase) Pos() Position { return n.pos }
func (n *nodeBase) node()         {}

// Stream is an ordered sequence of sibling nodes. The expansion pass takes a
// Stream in and hands a Stream back; a single tree is a one-element Stream.
type Stream []Node

// Group is a delimited sequence of child nodes. Children are owned
// exclusively by their group: the tree has no sharing and no cycles.
type Group struct {
	nodeBase
	Delim    Delimiter
	Children Stream
}

// Literal is a constant-value token, e.g. a suffix-tagged hexadecimal
// literal. Text is the raw source spelling.
type Literal struct {
	nodeBase
	Text string
}

// Atom is any leaf that is neither a group nor a literal: an identifier,
// keyword, or punctuation rune. The expansion pass never interprets an
// atom's text beyond the structural separator check.
type Atom struct {
	nodeBase
	Text string
}

// NewGroup creates a group node at the given position.
func NewGroup(delim Delimiter, pos Position, children Stream) *Group {
	return &Group{nodeBase: nodeBase{pos: pos}, Delim: delim, Children: children}
}

// NewLiteral creates a literal node at the given position.
func NewLiteral(text string, pos Position) *Literal {
	return &Literal{nodeBase: nodeBase{pos: pos}, Text: text}
}

// NewAtom creates an atom node at the given position.
func NewAtom(text string, pos Position) *Atom {
	return &Atom{nodeBase: nodeBase{pos: pos}, Text: text}
}
