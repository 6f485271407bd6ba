package expand

import (
	"github.com/hexlit-dev/hexlit/pkg/oid"
	"github.com/hexlit-dev/hexlit/pkg/token"
)

// buildBuffer lays payload into a fixed-width buffer. Shorter payloads fill
// the leading bytes and leave the rest zero; longer ones cannot fit and
// abort generation.
func buildBuffer(payload []byte, pos token.Position) ([oid.Size]byte, error) {
	var buf [oid.Size]byte
	if len(payload) > oid.Size {
		return buf, NewGenerationErrorf(pos, "payload is %d bytes, expected at most %d", len(payload), oid.Size)
	}
	copy(buf[:], payload)
	return buf, nil
}
