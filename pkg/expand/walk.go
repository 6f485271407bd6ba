package expand

import (
	"github.com/hexlit-dev/hexlit/pkg/token"
)

// walkFrame holds one partially rebuilt group during iteration.
type walkFrame struct {
	in    token.Stream
	idx   int
	delim token.Delimiter
	pos   token.Position
	out   token.Stream
}

// walk rebuilds the stream with every tagged literal replaced by its
// constructor expression. Groups are rebuilt around their transformed
// children with delimiter and position kept, separator atoms pass through,
// and any other atom aborts the whole pass. An explicit stack keeps
// arbitrarily deep nesting off the goroutine stack.
func (e *Expander) walk(stream token.Stream) (token.Stream, error) {
	stack := []walkFrame{{in: stream, delim: token.None}}

	for {
		top := &stack[len(stack)-1]

		if top.idx == len(top.in) {
			if len(stack) == 1 {
				return top.out, nil
			}
			group := token.NewGroup(top.delim, top.pos, top.out)
			stack = stack[:len(stack)-1]
			parent := &stack[len(stack)-1]
			parent.out = append(parent.out, group)
			continue
		}

		node := top.in[top.idx]
		top.idx++

		switch n := node.(type) {
		case *token.Group:
			stack = append(stack, walkFrame{in: n.Children, delim: n.Delim, pos: n.Pos()})
		case *token.Literal:
			replaced, err := e.transformLiteral(n)
			if err != nil {
				return nil, err
			}
			top.out = append(top.out, replaced)
		case *token.Atom:
			if !e.separators[n.Text] {
				return nil, NewTransformErrorf(n.Pos(),
					"unexpected token %q: only grouped and literal tokens are permitted", n.Text)
			}
			top.out = append(top.out, token.NewAtom(n.Text, n.Pos()))
		default:
			return nil, NewTransformErrorf(node.Pos(), "unsupported node %T", node)
		}
	}
}

// transformLiteral parses one tagged literal and constructs its replacement.
func (e *Expander) transformLiteral(lit *token.Literal) (token.Node, error) {
	parsed, err := parseTagged(lit)
	if err != nil {
		return nil, err
	}
	return e.construct(parsed, lit.Pos())
}
