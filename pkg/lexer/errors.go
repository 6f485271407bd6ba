package lexer

import (
	"fmt"

	"github.com/hexlit-dev/hexlit/pkg/token"
)

// LexError represents a lexical analysis error with position information.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Message)
}

func newLexError(pos token.Position, format string, args ...any) *LexError {
	return &LexError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
