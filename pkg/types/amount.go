package types

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Amount is an unsigned 256-bit token amount
type Amount struct {
	v uint256.Int
}

// NewAmount creates an amount from a uint64
func NewAmount(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// ParseAmount parses a decimal string
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if err := a.v.SetFromDecimal(strings.TrimSpace(s)); err != nil {
		return Amount{}, WrapError(KindInvalidData, err, "invalid amount %q", s)
	}
	return a, nil
}

// AmountFromBig converts a non-negative big.Int
func AmountFromBig(b *big.Int) (Amount, error) {
	var a Amount
	if b == nil {
		return a, nil
	}
	if b.Sign() < 0 {
		return Amount{}, NewError(KindInvalidData, "negative amount %s", b)
	}
	if overflow := a.v.SetFromBig(b); overflow {
		return Amount{}, NewError(KindInvalidData, "amount %s overflows 256 bits", b)
	}
	return a, nil
}

// Big returns the value as big.Int
func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}

// Uint64 returns the value truncated to 64 bits and whether it fits
func (a Amount) Uint64() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

// U128 returns the value as two 64-bit words when it fits 128 bits
func (a Amount) U128() (lo, hi uint64, ok bool) {
	ok = a.v[2] == 0 && a.v[3] == 0
	return a.v[0], a.v[1], ok
}

// IsZero reports a zero amount
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp compares two amounts
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// String returns the decimal form
func (a Amount) String() string {
	return a.v.Dec()
}

// MarshalJSON encodes the decimal string form
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return NewError(KindInvalidData, "invalid amount %s", string(data))
		}
		s = n.String()
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
