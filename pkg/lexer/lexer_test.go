package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexlit-dev/hexlit/pkg/token"
)

func TestLexLiterals(t *testing.T) {
	stream, err := Lex("0x1b42_object", "test.hexlit")
	require.NoError(t, err)
	require.Len(t, stream, 1)

	lit, ok := stream[0].(*token.Literal)
	require.True(t, ok, "expected literal, got %T", stream[0])
	assert.Equal(t, "0x1b42_object", lit.Text)
	assert.Equal(t, 1, lit.Pos().Line)
	assert.Equal(t, 1, lit.Pos().Column)
	assert.Equal(t, "test.hexlit", lit.Pos().File)
}

func TestLexGroups(t *testing.T) {
	tests := []struct {
		name  string
		input string
		delim token.Delimiter
	}{
		{"paren", "(0x2b_object)", token.Paren},
		{"bracket", "[0x2b_object]", token.Bracket},
		{"brace", "{0x2b_object}", token.Brace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream, err := Lex(tt.input, "")
			require.NoError(t, err)
			require.Len(t, stream, 1)

			group, ok := stream[0].(*token.Group)
			require.True(t, ok, "expected group, got %T", stream[0])
			assert.Equal(t, tt.delim, group.Delim)
			require.Len(t, group.Children, 1)

			lit, ok := group.Children[0].(*token.Literal)
			require.True(t, ok)
			assert.Equal(t, "0x2b_object", lit.Text)
		})
	}
}

func TestLexNested(t *testing.T) {
	stream, err := Lex("[(0x01_object), {0x02_address}]", "")
	require.NoError(t, err)
	require.Len(t, stream, 1)

	outer, ok := stream[0].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, token.Bracket, outer.Delim)
	require.Len(t, outer.Children, 3)

	first, ok := outer.Children[0].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, token.Paren, first.Delim)

	sep, ok := outer.Children[1].(*token.Atom)
	require.True(t, ok)
	assert.Equal(t, ",", sep.Text)

	second, ok := outer.Children[2].(*token.Group)
	require.True(t, ok)
	assert.Equal(t, token.Brace, second.Delim)
}

func TestLexAtoms(t *testing.T) {
	stream, err := Lex("oid.NewObjectID", "")
	require.NoError(t, err)
	require.Len(t, stream, 3)

	word, ok := stream[0].(*token.Atom)
	require.True(t, ok)
	assert.Equal(t, "oid", word.Text)

	dot, ok := stream[1].(*token.Atom)
	require.True(t, ok)
	assert.Equal(t, ".", dot.Text)

	ident, ok := stream[2].(*token.Atom)
	require.True(t, ok)
	assert.Equal(t, "NewObjectID", ident.Text)
}

func TestLexPositions(t *testing.T) {
	input := "0x01_object\n  0x02_object"
	stream, err := Lex(input, "lit.hexlit")
	require.NoError(t, err)
	require.Len(t, stream, 2)

	assert.Equal(t, 1, stream[0].Pos().Line)
	assert.Equal(t, 1, stream[0].Pos().Column)
	assert.Equal(t, 0, stream[0].Pos().Offset)

	assert.Equal(t, 2, stream[1].Pos().Line)
	assert.Equal(t, 3, stream[1].Pos().Column)
	assert.Equal(t, 14, stream[1].Pos().Offset)
}

func TestLexAtBasePosition(t *testing.T) {
	// Fragments lexed mid-file must carry positions relative to the file,
	// not the fragment.
	base := token.Position{File: "m.hexlit", Line: 7, Column: 11, Offset: 120}
	stream, err := NewAt("0xff_object", "m.hexlit", base).Lex()
	require.NoError(t, err)
	require.Len(t, stream, 1)

	pos := stream[0].Pos()
	assert.Equal(t, 7, pos.Line)
	assert.Equal(t, 11, pos.Column)
	assert.Equal(t, 120, pos.Offset)
}

func TestLexComments(t *testing.T) {
	input := "// leading comment\n0x01_object /* inline */ 0x02_object"
	stream, err := Lex(input, "")
	require.NoError(t, err)
	require.Len(t, stream, 2)

	first, ok := stream[0].(*token.Literal)
	require.True(t, ok)
	assert.Equal(t, "0x01_object", first.Text)
	assert.Equal(t, 2, first.Pos().Line)
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unclosed paren", "(0x01_object", `unclosed "("`},
		{"unclosed bracket", "[0x01_object", `unclosed "["`},
		{"stray closer", "0x01_object)", `unexpected ")"`},
		{"mismatched pair", "(0x01_object]", `mismatched "]"`},
		{"unterminated comment", "/* no end", "unterminated block comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input, "test.hexlit")
			require.Error(t, err)

			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Contains(t, lexErr.Error(), tt.wantMsg)
			assert.True(t, lexErr.Pos.IsValid())
		})
	}
}

func TestLexMismatchNamesOpenPosition(t *testing.T) {
	_, err := Lex("(\n  0x01_object]", "f.hexlit")
	require.Error(t, err)

	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Contains(t, lexErr.Error(), "opened at f.hexlit:1:1")
	assert.Equal(t, 2, lexErr.Pos.Line)
}

func TestLexEmpty(t *testing.T) {
	for _, input := range []string{"", "   \n\t", "// only a comment\n", "/* only */"} {
		stream, err := Lex(input, "")
		require.NoError(t, err)
		assert.Empty(t, stream)
	}
}

func TestLexDeepNesting(t *testing.T) {
	const depth = 500
	input := strings.Repeat("[", depth) + "0x2a_object" + strings.Repeat("]", depth)

	stream, err := Lex(input, "")
	require.NoError(t, err)
	require.Len(t, stream, 1)

	node := stream[0]
	for i := 0; i < depth; i++ {
		group, ok := node.(*token.Group)
		require.True(t, ok, "depth %d: expected group, got %T", i, node)
		require.Len(t, group.Children, 1)
		node = group.Children[0]
	}
	lit, ok := node.(*token.Literal)
	require.True(t, ok)
	assert.Equal(t, "0x2a_object", lit.Text)
}
