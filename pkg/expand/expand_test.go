package expand

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexlit-dev/hexlit/pkg/lexer"
	"github.com/hexlit-dev/hexlit/pkg/oid"
	"github.com/hexlit-dev/hexlit/pkg/render"
	"github.com/hexlit-dev/hexlit/pkg/token"
)

const fullHex = "0x01b0d52321ce82d032430f859c6df0c52eb9ce1a337a81d56d89445db2d624f0"

// objectExprFor builds the expected constructor text for a hex payload by
// asking the identifier type itself, so tests compare against the value
// semantics rather than a second copy of the formatting.
func objectExprFor(t *testing.T, hexStr string) string {
	t.Helper()
	id, err := oid.ObjectIDFromHex(hexStr)
	require.NoError(t, err)

	parts := make([]string, oid.Size)
	for i, b := range id.Bytes() {
		parts[i] = fmt.Sprintf("0x%02x", b)
	}
	return "oid.NewObjectID([32]byte{" + strings.Join(parts, ", ") + "})"
}

func transformText(t *testing.T, input string) (token.Stream, error) {
	t.Helper()
	stream, err := lexer.Lex(input, "test.hexlit")
	require.NoError(t, err)
	return New(Options{}).Transform(stream)
}

func TestTransformObject(t *testing.T) {
	out, err := transformText(t, fullHex+"_object")
	require.NoError(t, err)
	assert.Equal(t, objectExprFor(t, fullHex), render.Render(out))
}

func TestTransformAddress(t *testing.T) {
	out, err := transformText(t, fullHex+"_address")
	require.NoError(t, err)
	assert.Equal(t, "oid.AddressFromObject("+objectExprFor(t, fullHex)+")", render.Render(out))
}

func TestTransformShortPayloadFillsLeadingBytes(t *testing.T) {
	out, err := transformText(t, "0xdead_object")
	require.NoError(t, err)

	rendered := render.Render(out)
	assert.Equal(t, objectExprFor(t, "0xdead"), rendered)
	assert.Contains(t, rendered, "{0xde, 0xad, 0x00")
	assert.True(t, strings.HasSuffix(rendered, "0x00})"))
}

func TestTransformEmptyPayload(t *testing.T) {
	out, err := transformText(t, "0x_object")
	require.NoError(t, err)
	assert.Equal(t, objectExprFor(t, "0x"), render.Render(out))
}

func TestTransformDigitSeparators(t *testing.T) {
	out, err := transformText(t, "0x1b_42_object")
	require.NoError(t, err)
	assert.Equal(t, objectExprFor(t, "0x1b42"), render.Render(out))
}

func TestTransformPreservesNesting(t *testing.T) {
	out, err := transformText(t, "[(0x01_object), {0x02_address}]")
	require.NoError(t, err)
	require.Len(t, out, 1)

	outer, ok := out[0].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, token.Bracket, outer.Delim)
	require.Len(t, outer.Children, 3)

	paren, ok := outer.Children[0].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, token.Paren, paren.Delim)
	require.Len(t, paren.Children, 1)
	replacement, ok := paren.Children[0].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, token.None, replacement.Delim)

	sep, ok := outer.Children[1].(*token.Atom)
	require.True(t, ok)
	assert.Equal(t, ",", sep.Text)

	brace, ok := outer.Children[2].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, token.Brace, brace.Delim)
	assert.Contains(t, render.Render(token.Stream{brace}), "oid.AddressFromObject(")
}

func TestTransformKeepsPositions(t *testing.T) {
	input := "(\n  0x2a_object)"
	stream, err := lexer.Lex(input, "pos.hexlit")
	require.NoError(t, err)

	out, err := New(Options{}).Transform(stream)
	require.NoError(t, err)
	require.Len(t, out, 1)

	group, ok := out[0].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, 1, group.Pos().Line)

	replacement, ok := group.Children[0].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, token.None, replacement.Delim)
	assert.Equal(t, 2, replacement.Pos().Line)
	assert.Equal(t, 3, replacement.Pos().Column)
	assert.Equal(t, "pos.hexlit", replacement.Pos().File)
}

func TestTransformErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		inner   any
		wantMsg string
	}{
		{"unknown suffix", "0xaa_foo", new(*ParseError), `unknown suffix "foo"`},
		{"missing delimiter", "0xaa", new(*ParseError), "missing a suffix delimiter"},
		{"empty suffix", "0xaa_", new(*ParseError), "has an empty suffix"},
		{"case sensitive tag", "0x01_Object", new(*ParseError), `unknown suffix "Object"`},
		{"invalid hex", "0xzz_object", new(*ParseError), "invalid hex"},
		{"odd digits", "0x1b4_object", new(*ParseError), "invalid hex"},
		{"oversize payload", "0x" + strings.Repeat("ab", oid.Size+1) + "_object", new(*GenerationError),
			"payload is 33 bytes, expected at most 32"},
		{"bare word", "foo 0x01_object", new(*TransformError),
			"only grouped and literal tokens are permitted"},
		{"untagged number", "42", new(*ParseError), "missing a suffix delimiter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transformText(t, tt.input)
			require.Error(t, err)

			var terr *TransformError
			require.ErrorAs(t, err, &terr, "transform must surface a TransformError")
			assert.True(t, terr.Position().IsValid())
			assert.Contains(t, terr.Message(), tt.wantMsg)
			require.ErrorAs(t, err, tt.inner, "underlying error type must stay reachable")
		})
	}
}

func TestTransformErrorKeepsInnerPosition(t *testing.T) {
	_, err := transformText(t, "(\n  0xzz_object)")
	require.Error(t, err)

	var terr *TransformError
	require.ErrorAs(t, err, &terr)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, perr.Position(), terr.Position())
	assert.Equal(t, 2, terr.Position().Line)
	assert.Equal(t, 3, terr.Position().Column)
}

func TestTransformFailFast(t *testing.T) {
	// The bad literal comes first, so the valid one after it must not mask
	// the abort.
	_, err := transformText(t, "[0xzz_object, 0x01_object]")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message(), "invalid hex")
}

func TestTransformSeparators(t *testing.T) {
	t.Run("defaults pass through", func(t *testing.T) {
		out, err := transformText(t, "0x01_object, 0x02_object; 0x03_address")
		require.NoError(t, err)

		rendered := render.Render(out)
		assert.Contains(t, rendered, "}), oid.NewObjectID(")
		assert.Contains(t, rendered, "}); oid.AddressFromObject(")
	})

	t.Run("custom set rejects others", func(t *testing.T) {
		stream, err := lexer.Lex("0x01_object; 0x02_object", "")
		require.NoError(t, err)

		_, err = New(Options{Separators: []string{","}}).Transform(stream)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unexpected token ";"`)
	})
}

func TestTransformQualifierOption(t *testing.T) {
	stream, err := lexer.Lex("0x2a_address", "")
	require.NoError(t, err)

	out, err := New(Options{Qualifier: "ids"}).Transform(stream)
	require.NoError(t, err)

	rendered := render.Render(out)
	assert.True(t, strings.HasPrefix(rendered, "ids.AddressFromObject(ids.NewObjectID("))
}

func TestConstructValidatesOutput(t *testing.T) {
	// An unbalanced qualifier makes the constructed expression unlexable,
	// which the pass must catch before splicing.
	stream, err := lexer.Lex("0x2a_object", "")
	require.NoError(t, err)

	_, err = New(Options{Qualifier: "("}).Transform(stream)
	require.Error(t, err)

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Message(), "does not lex")
}

func TestTransformDeepNesting(t *testing.T) {
	const depth = 10000
	input := strings.Repeat("[", depth) + "0x2a_object" + strings.Repeat("]", depth)

	stream, err := lexer.Lex(input, "")
	require.NoError(t, err)

	out, err := New(Options{}).Transform(stream)
	require.NoError(t, err)
	require.Len(t, out, 1)

	node := out[0]
	for i := 0; i < depth; i++ {
		group, ok := node.(*token.Group)
		require.True(t, ok, "depth %d: expected group, got %T", i, node)
		require.Len(t, group.Children, 1)
		node = group.Children[0]
	}
	assert.True(t, strings.HasPrefix(render.Render(token.Stream{node}), "oid.NewObjectID("))
}

func TestExpandEmitsDiagnostic(t *testing.T) {
	stream, err := lexer.Lex("0xaa_foo", "diag.hexlit")
	require.NoError(t, err)

	out := New(Options{}).Expand(stream)
	require.Len(t, out, 1)
	assert.True(t, IsDiagnostic(out[0]))

	rendered := render.Render(out)
	assert.Contains(t, rendered, DiagnosticSymbol+`("`)
	assert.Contains(t, rendered, `unknown suffix`)

	assert.Equal(t, "diag.hexlit", out[0].Pos().File)
	assert.Equal(t, 1, out[0].Pos().Line)
}

func TestExpandPassesValidInputThrough(t *testing.T) {
	stream, err := lexer.Lex("0x2a_object", "")
	require.NoError(t, err)

	out := New(Options{}).Expand(stream)
	require.Len(t, out, 1)
	assert.False(t, IsDiagnostic(out[0]))
	assert.Equal(t, objectExprFor(t, "0x2a"), render.Render(out))
}

func TestDiagnosticShape(t *testing.T) {
	diag := Diagnostic(NewParseError(token.Position{File: "f.hexlit", Line: 3, Column: 7}, `unknown suffix "foo"`))

	require.Len(t, diag.Children, 2)
	sym, ok := diag.Children[0].(*token.Atom)
	require.True(t, ok)
	assert.Equal(t, DiagnosticSymbol, sym.Text)

	call, ok := diag.Children[1].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, token.Paren, call.Delim)
	require.Len(t, call.Children, 1)

	msg, ok := call.Children[0].(*token.Literal)
	require.True(t, ok)
	assert.Equal(t, `"unknown suffix \"foo\""`, msg.Text)

	assert.Equal(t, 3, diag.Pos().Line)
	assert.Equal(t, 7, diag.Pos().Column)
}

func TestDiagnosticFromPlainError(t *testing.T) {
	diag := Diagnostic(errors.New("boom"))
	assert.True(t, IsDiagnostic(diag))
	assert.Equal(t, DiagnosticSymbol+`("boom")`, render.Render(token.Stream{diag}))
}

func TestIsDiagnosticRejectsOtherNodes(t *testing.T) {
	pos := token.Position{Line: 1, Column: 1}
	assert.False(t, IsDiagnostic(token.NewLiteral("0x01", pos)))
	assert.False(t, IsDiagnostic(token.NewAtom(DiagnosticSymbol, pos)))
	assert.False(t, IsDiagnostic(token.NewGroup(token.Paren, pos, nil)))
	assert.False(t, IsDiagnostic(token.NewGroup(token.None, pos, nil)))
}

func TestAsTransformError(t *testing.T) {
	pos := token.Position{File: "f", Line: 2, Column: 4}

	t.Run("parse error converts", func(t *testing.T) {
		inner := NewParseError(pos, "bad literal")
		terr := AsTransformError(inner)
		assert.Equal(t, pos, terr.Position())
		assert.Equal(t, "bad literal", terr.Message())
		assert.ErrorIs(t, terr, inner)
	})

	t.Run("generation error converts", func(t *testing.T) {
		inner := NewGenerationError(pos, "too wide")
		terr := AsTransformError(inner)
		assert.Equal(t, pos, terr.Position())
		assert.Equal(t, "too wide", terr.Message())
		assert.ErrorIs(t, terr, inner)
	})

	t.Run("transform error passes through", func(t *testing.T) {
		inner := NewTransformError(pos, "stuck")
		assert.Same(t, inner, AsTransformError(inner))
	})

	t.Run("plain error gains invalid position", func(t *testing.T) {
		terr := AsTransformError(errors.New("boom"))
		assert.False(t, terr.Position().IsValid())
		assert.Equal(t, "boom", terr.Message())
	})
}

func TestInspect(t *testing.T) {
	stream, err := lexer.Lex("(0x06_object, 0xdead_address)", "in.hexlit")
	require.NoError(t, err)

	infos, err := Inspect(stream)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "0x06_object", infos[0].Text)
	assert.Equal(t, TargetObject, infos[0].Target)
	assert.Equal(t, 1, infos[0].Payload)
	assert.Equal(t, 1, infos[0].Pos.Line)
	assert.Equal(t, 2, infos[0].Pos.Column)
	assert.True(t, infos[0].Span.IsValid())
	assert.Equal(t, 13, infos[0].Span.End.Column, "span end is exclusive")

	assert.Equal(t, "0xdead_address", infos[1].Text)
	assert.Equal(t, TargetAddress, infos[1].Target)
	assert.Equal(t, 2, infos[1].Payload)
}

func TestInspect_BadLiteral(t *testing.T) {
	stream, err := lexer.Lex("0xzz_object", "in.hexlit")
	require.NoError(t, err)

	_, err = Inspect(stream)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid hex")
}
