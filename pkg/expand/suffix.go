package expand

import (
	"encoding/hex"
	"strings"

	"github.com/hexlit-dev/hexlit/pkg/token"
)

// taggedLiteral is the parsed form of a suffix-tagged hex literal.
type taggedLiteral struct {
	payload []byte
	target  TargetKind
}

// parseTagged splits a literal of the form 0x<digits>_<tag> at its last
// underscore, resolves the tag, and decodes the hex payload. Underscores
// inside the digits are separators and carry no value; the 0x prefix is
// optional and lowercase only.
func parseTagged(lit *token.Literal) (taggedLiteral, error) {
	pos := lit.Pos()
	text := lit.Text

	idx := strings.LastIndexByte(text, '_')
	if idx < 0 {
		return taggedLiteral{}, NewParseErrorf(pos, "literal %q is missing a suffix delimiter", text)
	}
	body, tag := text[:idx], text[idx+1:]
	if tag == "" {
		return taggedLiteral{}, NewParseErrorf(pos, "literal %q has an empty suffix", text)
	}

	target, ok := targetForTag(tag)
	if !ok {
		return taggedLiteral{}, NewParseErrorf(pos, "unknown suffix %q in %q: want %q or %q",
			tag, text, tagObject, tagAddress)
	}

	digits := strings.TrimPrefix(body, "0x")
	digits = strings.ReplaceAll(digits, "_", "")

	payload, err := hex.DecodeString(digits)
	if err != nil {
		return taggedLiteral{}, NewParseErrorf(pos, "invalid hex in %q: %v", text, err)
	}

	return taggedLiteral{payload: payload, target: target}, nil
}
