// Package expand rewrites suffix-tagged hex literals into 32-byte
// identifier and address constructor expressions.
//
// A literal of the form 0x<digits>_object becomes a call that builds an
// object identifier from the decoded bytes, and 0x<digits>_address wraps
// that call in the address derivation. Payloads shorter than 32 bytes fill
// the leading bytes of the identifier; the rest stays zero. The pass walks
// a whole token stream, rebuilds nested groups around the rewritten
// literals, and aborts on the first malformed input.
package expand

import (
	"github.com/hexlit-dev/hexlit/pkg/token"
)

// DefaultQualifier is the package qualifier constructor calls are
// addressed through when Options leaves it empty.
const DefaultQualifier = "oid"

// Options configures an Expander.
type Options struct {
	// Qualifier is the package qualifier for constructor calls.
	// Empty selects DefaultQualifier.
	Qualifier string

	// Separators are the atom texts allowed to pass through between
	// elements. Nil selects "," and ";".
	Separators []string
}

// Expander rewrites tagged hex literals inside token streams.
type Expander struct {
	qualifier  string
	separators map[string]bool
}

// New creates an Expander. Zero-value options select the defaults.
func New(opts Options) *Expander {
	qualifier := opts.Qualifier
	if qualifier == "" {
		qualifier = DefaultQualifier
	}
	seps := opts.Separators
	if seps == nil {
		seps = []string{",", ";"}
	}
	set := make(map[string]bool, len(seps))
	for _, s := range seps {
		set[s] = true
	}
	return &Expander{qualifier: qualifier, separators: set}
}

// Transform rewrites every tagged literal in stream and returns the
// rebuilt stream. The first failure aborts the whole pass; the returned
// error is always a *TransformError positioned at the offending token,
// with the underlying parse or generation error reachable through Unwrap.
func (e *Expander) Transform(stream token.Stream) (token.Stream, error) {
	out, err := e.walk(stream)
	if err != nil {
		return nil, AsTransformError(err)
	}
	return out, nil
}

// Expand rewrites stream and always returns a stream: a failed
// transformation yields a single diagnostic fragment that fails
// compilation at the error's position instead of an error value.
func (e *Expander) Expand(stream token.Stream) token.Stream {
	out, err := e.Transform(stream)
	if err != nil {
		return token.Stream{Diagnostic(err)}
	}
	return out
}
