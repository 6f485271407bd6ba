package expand

import (
	"fmt"
	"strconv"

	"github.com/hexlit-dev/hexlit/pkg/lexer"
	"github.com/hexlit-dev/hexlit/pkg/oid"
	"github.com/hexlit-dev/hexlit/pkg/render"
	"github.com/hexlit-dev/hexlit/pkg/token"
)

// construct builds the replacement expression for a parsed literal. The
// result is wrapped in a transparent group carrying the literal's position,
// so splicing it into the surrounding stream keeps diagnostics anchored at
// the original source.
func (e *Expander) construct(lit taggedLiteral, pos token.Position) (*token.Group, error) {
	buf, err := buildBuffer(lit.payload, pos)
	if err != nil {
		return nil, err
	}

	stream := e.objectExpr(buf, pos)
	if lit.target == TargetAddress {
		stream = e.addressExpr(stream, pos)
	}

	// A replacement that does not lex back cleanly would corrupt the
	// surrounding stream, so validate before splicing.
	text := render.Render(stream)
	if _, lerr := lexer.Lex(text, pos.File); lerr != nil {
		return nil, NewGenerationErrorf(pos, "constructed expression %q does not lex: %v", text, lerr)
	}

	return token.NewGroup(token.None, pos, stream), nil
}

// objectExpr builds <qualifier>.NewObjectID([32]byte{0x…, …}).
func (e *Expander) objectExpr(buf [oid.Size]byte, pos token.Position) token.Stream {
	limbs := make(token.Stream, 0, 2*oid.Size-1)
	for i, b := range buf {
		if i > 0 {
			limbs = append(limbs, token.NewAtom(",", pos))
		}
		limbs = append(limbs, token.NewLiteral(fmt.Sprintf("0x%02x", b), pos))
	}

	arg := token.Stream{
		token.NewGroup(token.Bracket, pos, token.Stream{
			token.NewLiteral(strconv.Itoa(oid.Size), pos),
		}),
		token.NewAtom("byte", pos),
		token.NewGroup(token.Brace, pos, limbs),
	}

	return e.call("NewObjectID", arg, pos)
}

// addressExpr wraps an object expression in the address derivation.
func (e *Expander) addressExpr(object token.Stream, pos token.Position) token.Stream {
	return e.call("AddressFromObject", object, pos)
}

// call builds <qualifier>.<name>(args).
func (e *Expander) call(name string, args token.Stream, pos token.Position) token.Stream {
	return token.Stream{
		token.NewAtom(e.qualifier, pos),
		token.NewAtom(".", pos),
		token.NewAtom(name, pos),
		token.NewGroup(token.Paren, pos, args),
	}
}
