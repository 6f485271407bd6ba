// Package lexer turns raw source text into the token tree consumed by the
// expansion pass. Bracket structure ((), [], {}) is resolved here, so the
// pass itself only ever sees groups, literals, and atoms.
package lexer

import (
	"github.com/hexlit-dev/hexlit/pkg/token"
)

// Lexer tokenizes source text into a token tree.
type Lexer struct {
	input string
	file  string

	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination

	line       int // current line number (1-based)
	col        int // current column number (1-based)
	baseOffset int // offset of input[0] within the enclosing file
}

// New creates a Lexer for input that starts at the beginning of a file.
func New(input, file string) *Lexer {
	return NewAt(input, file, token.Position{Line: 1, Column: 1})
}

// NewAt creates a Lexer for input that starts at base within a larger file.
// Emitted positions are file-accurate, which keeps diagnostics pointing at
// the original source even when only a fragment is lexed.
func NewAt(input, file string, base token.Position) *Lexer {
	l := &Lexer{
		input:      input,
		file:       file,
		line:       base.Line,
		col:        base.Column - 1,
		baseOffset: base.Offset,
	}
	l.readChar()
	return l
}

// Lex is a convenience wrapper that tokenizes input in one call.
func Lex(input, file string) (token.Stream, error) {
	return New(input, file).Lex()
}

// groupFrame tracks one open delimiter while building the tree.
type groupFrame struct {
	delim    token.Delimiter
	pos      token.Position
	children token.Stream
}

// Lex consumes the whole input and returns the token stream. Unbalanced
// delimiters and unterminated block comments are errors; everything else
// becomes a group, literal, or atom node.
func (l *Lexer) Lex() (token.Stream, error) {
	// The bottom frame collects top-level nodes and is never popped.
	stack := []groupFrame{{delim: token.None}}

	for {
		if err := l.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}
		if l.ch == 0 {
			break
		}

		pos := l.currentPos()

		switch {
		case l.ch == '(' || l.ch == '[' || l.ch == '{':
			stack = append(stack, groupFrame{delim: delimiterFor(l.ch), pos: pos})
			l.readChar()

		case l.ch == ')' || l.ch == ']' || l.ch == '}':
			if len(stack) == 1 {
				return nil, newLexError(pos, "unexpected %q", string(l.ch))
			}
			top := stack[len(stack)-1]
			if top.delim.Close() != l.ch {
				return nil, newLexError(pos, "mismatched %q, expected %q to close group opened at %s",
					string(l.ch), string(top.delim.Close()), top.pos)
			}
			stack = stack[:len(stack)-1]
			group := token.NewGroup(top.delim, top.pos, top.children)
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, group)
			l.readChar()

		case isDigit(l.ch):
			// A leading digit starts a literal; the run covers numeric body
			// and suffix in one token, e.g. 0x1b_object.
			text := l.readRun(isLiteralChar)
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, token.NewLiteral(text, pos))

		case isIdentStart(l.ch):
			text := l.readRun(isIdentChar)
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, token.NewAtom(text, pos))

		default:
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, token.NewAtom(string(l.ch), pos))
			l.readChar()
		}
	}

	if len(stack) > 1 {
		top := stack[len(stack)-1]
		return nil, newLexError(top.pos, "unclosed %q", string(top.delim.Open()))
	}
	return stack[0].children, nil
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		File:   l.file,
		Line:   l.line,
		Column: l.col,
		Offset: l.baseOffset + l.pos,
	}
}

// readRun consumes characters while pred holds and returns the consumed text.
func (l *Lexer) readRun(pred func(byte) bool) string {
	start := l.pos
	for pred(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// skipWhitespaceAndComments advances past spaces, line comments (//) and
// block comments (/* */). An unterminated block comment is an error.
func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()

		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}

		case l.ch == '/' && l.peekChar() == '*':
			start := l.currentPos()
			l.readChar() // consume '/'
			l.readChar() // consume '*'
			for {
				if l.ch == 0 {
					return newLexError(start, "unterminated block comment")
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}

		default:
			return nil
		}
	}
}

func delimiterFor(ch byte) token.Delimiter {
	switch ch {
	case '(':
		return token.Paren
	case '[':
		return token.Bracket
	case '{':
		return token.Brace
	default:
		return token.None
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// isLiteralChar accepts the body of a literal: digits, letters, and
// underscores, which covers hex payloads and their suffix tags.
func isLiteralChar(ch byte) bool {
	return isIdentChar(ch)
}
