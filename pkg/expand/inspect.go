package expand

import (
	"github.com/hexlit-dev/hexlit/pkg/token"
)

// LiteralInfo describes one tagged literal without expanding it.
type LiteralInfo struct {
	Text    string     // literal text as written
	Target  TargetKind // constructor the literal selects
	Payload int        // decoded payload length in bytes
	Pos     token.Position
	Span    token.Span // full source range of the literal text
}

// Inspect reports every tagged literal in stream in source order. Groups
// are descended, atoms skipped. The first malformed literal aborts with a
// positioned error.
func Inspect(stream token.Stream) ([]LiteralInfo, error) {
	var infos []LiteralInfo
	if err := inspect(stream, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// literalSpan derives the source range a literal occupies. Literal tokens
// never contain newlines, so the end position is the start advanced by the
// text length.
func literalSpan(lit *token.Literal) token.Span {
	start := lit.Pos()
	end := start
	end.Column += len(lit.Text)
	end.Offset += len(lit.Text)
	return token.Span{Start: start, End: end}
}

func inspect(stream token.Stream, infos *[]LiteralInfo) error {
	for _, node := range stream {
		switch n := node.(type) {
		case *token.Group:
			if err := inspect(n.Children, infos); err != nil {
				return err
			}
		case *token.Literal:
			parsed, err := parseTagged(n)
			if err != nil {
				return err
			}
			*infos = append(*infos, LiteralInfo{
				Text:    n.Text,
				Target:  parsed.target,
				Payload: len(parsed.payload),
				Pos:     n.Pos(),
				Span:    literalSpan(n),
			})
		}
	}
	return nil
}
