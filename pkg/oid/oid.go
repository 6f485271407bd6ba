// Package oid defines the 32-byte object identifier and address value
// types referenced by generated code.
package oid

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// Size is the width of an object identifier in bytes.
const Size = 32

// ObjectID is a 32-byte object identifier.
type ObjectID [Size]byte

// NewObjectID wraps a full-width byte array in an ObjectID.
func NewObjectID(b [Size]byte) ObjectID {
	return ObjectID(b)
}

// ObjectIDFromBytes builds an ObjectID from up to Size bytes. Shorter input
// occupies the leading bytes and the remainder stays zero. Longer input is
// an error.
func ObjectIDFromBytes(b []byte) (ObjectID, error) {
	if len(b) > Size {
		return ObjectID{}, fmt.Errorf("object id: %d bytes exceeds maximum of %d", len(b), Size)
	}
	var id ObjectID
	copy(id[:], b)
	return id, nil
}

// ObjectIDFromHex parses a hex string, with or without a 0x prefix, into an
// ObjectID. The digit count must be even and decode to at most Size bytes.
func ObjectIDFromHex(s string) (ObjectID, error) {
	digits := strings.TrimPrefix(s, "0x")
	if len(digits)%2 != 0 {
		return ObjectID{}, fmt.Errorf("object id: odd number of hex digits in %q", s)
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return ObjectID{}, fmt.Errorf("object id: invalid hex in %q: %w", s, err)
	}
	return ObjectIDFromBytes(raw)
}

// Bytes returns a copy of the identifier's bytes.
func (id ObjectID) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, id[:])
	return b
}

// Hex returns the identifier as 0x followed by 64 lowercase hex digits.
func (id ObjectID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// String implements fmt.Stringer.
func (id ObjectID) String() string {
	return id.Hex()
}

// IsZero reports whether every byte of the identifier is zero.
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// MarshalText implements encoding.TextMarshaler.
func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ObjectID) UnmarshalText(text []byte) error {
	parsed, err := ObjectIDFromHex(string(bytes.TrimSpace(text)))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Address is a 32-byte account address.
type Address [Size]byte

// AddressFromObject derives the address form of an object identifier. The
// two share bytes; the types differ so the compiler keeps them apart.
func AddressFromObject(id ObjectID) Address {
	return Address(id)
}

// Bytes returns a copy of the address's bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, a[:])
	return b
}

// Hex returns the address as 0x followed by 64 lowercase hex digits.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// IsZero reports whether every byte of the address is zero.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	id, err := ObjectIDFromHex(string(bytes.TrimSpace(text)))
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}
	*a = AddressFromObject(id)
	return nil
}
