package expand

import (
	"errors"
	"strconv"

	"github.com/hexlit-dev/hexlit/pkg/token"
)

// DiagnosticSymbol is the deliberately undefined identifier a diagnostic
// expands to. Referencing it fails compilation at the diagnostic's position
// with the message visible inside the invocation.
const DiagnosticSymbol = "__hexlit_compile_error"

// Diagnostic renders err as a stream fragment that cannot compile. The
// fragment carries the error's position so line directives can anchor the
// failure at the offending literal.
func Diagnostic(err error) *token.Group {
	var pos token.Position
	msg := err.Error()
	var exp Error
	if errors.As(err, &exp) {
		pos = exp.Position()
		msg = exp.Message()
	}

	return token.NewGroup(token.None, pos, token.Stream{
		token.NewAtom(DiagnosticSymbol, pos),
		token.NewGroup(token.Paren, pos, token.Stream{
			token.NewLiteral(strconv.Quote(msg), pos),
		}),
	})
}

// IsDiagnostic reports whether n is a diagnostic fragment.
func IsDiagnostic(n token.Node) bool {
	group, ok := n.(*token.Group)
	if !ok || group.Delim != token.None || len(group.Children) == 0 {
		return false
	}
	atom, ok := group.Children[0].(*token.Atom)
	return ok && atom.Text == DiagnosticSymbol
}
