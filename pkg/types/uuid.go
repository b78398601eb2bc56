package types

import (
	"encoding/binary"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// UUID is a 128-bit entity identifier
type UUID struct {
	uuid.UUID
}

// NilUUID is the all-zero identifier
var NilUUID = UUID{}

// NewUUID generates a random v4 identifier
func NewUUID() UUID {
	return UUID{uuid.New()}
}

// ParseUUID parses a dashed or plain hex UUID string
func ParseUUID(s string) (UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return UUID{}, WrapError(KindUUID, err, "invalid UUID %q", s)
	}
	return UUID{id}, nil
}

// MustParseUUID panics when s is not a UUID
func MustParseUUID(s string) UUID {
	id, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// UUIDFromBig builds a UUID from its u128 value
func UUIDFromBig(v *big.Int) (UUID, error) {
	if v == nil || v.Sign() < 0 || v.BitLen() > 128 {
		return UUID{}, NewError(KindUUID, "value %v does not fit u128", v)
	}
	var id UUID
	v.FillBytes(id.UUID[:])
	return id, nil
}

// UUIDFromDecimal parses a decimal u128 string
func UUIDFromDecimal(s string) (UUID, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return UUID{}, NewError(KindUUID, "invalid u128 %q", s)
	}
	return UUIDFromBig(v)
}

// UUIDFromLE builds a UUID from 16 little-endian bytes
func UUIDFromLE(b [16]byte) UUID {
	var id UUID
	for i := 0; i < 16; i++ {
		id.UUID[i] = b[15-i]
	}
	return id
}

// Big returns the u128 value
func (u UUID) Big() *big.Int {
	return new(big.Int).SetBytes(u.UUID[:])
}

// Decimal returns the u128 value in base 10
func (u UUID) Decimal() string {
	return u.Big().String()
}

// BigEndian returns the u128 value as big-endian bytes
func (u UUID) BigEndian() [16]byte {
	return u.UUID
}

// LittleEndian returns the u128 value as little-endian bytes
func (u UUID) LittleEndian() [16]byte {
	var out [16]byte
	for i := 0; i < 16; i++ {
		out[i] = u.UUID[15-i]
	}
	return out
}

// Halves returns the high and low 64-bit words
func (u UUID) Halves() (hi, lo uint64) {
	return binary.BigEndian.Uint64(u.UUID[:8]), binary.BigEndian.Uint64(u.UUID[8:])
}

// IsNil reports whether the identifier is all zeroes
func (u UUID) IsNil() bool {
	return u.UUID == uuid.Nil
}

// MarshalJSON encodes the dashed form
func (u UUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON accepts the dashed form or a decimal u128 string
func (u *UUID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return NewError(KindUUID, "invalid UUID %s", string(data))
		}
		s = n.String()
	}
	if id, err := ParseUUID(s); err == nil {
		*u = id
		return nil
	}
	id, err := UUIDFromDecimal(s)
	if err != nil {
		return err
	}
	*u = id
	return nil
}
