package chantypes

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Amount is an unbounded, non-negative integer. All arithmetic
// performed on an Amount is checked by construction: big.Int cannot
// overflow, and Sub/negative results are reported as errors rather
// than wrapping.
type Amount struct {
	v *big.Int
}

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{v: big.NewInt(0)}

// NewAmount constructs an Amount from a non-negative int64.
func NewAmount(v int64) Amount {
	if v < 0 {
		panic("chantypes: NewAmount called with a negative value")
	}
	return Amount{v: big.NewInt(v)}
}

// AmountFromBigInt wraps v, which must be non-negative.
func AmountFromBigInt(v *big.Int) (Amount, error) {
	if v.Sign() < 0 {
		return Amount{}, fmt.Errorf("chantypes: amount must be non-negative, got %s", v)
	}
	return Amount{v: new(big.Int).Set(v)}, nil
}

func (a Amount) bigInt() *big.Int {
	if a.v == nil {
		return big.NewInt(0)
	}
	return a.v
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.bigInt(), b.bigInt())}
}

// Sub returns a - b. It errors if the result would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	r := new(big.Int).Sub(a.bigInt(), b.bigInt())
	if r.Sign() < 0 {
		return Amount{}, fmt.Errorf("chantypes: amount underflow: %s - %s", a, b)
	}
	return Amount{v: r}, nil
}

// Cmp compares a to b the way big.Int.Cmp does.
func (a Amount) Cmp(b Amount) int {
	return a.bigInt().Cmp(b.bigInt())
}

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.Cmp(b) < 0
}

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool {
	return a.bigInt().Sign() == 0
}

// String renders the amount in base 10.
func (a Amount) String() string {
	return a.bigInt().String()
}

// SumAmounts adds together a list of amounts, used for allocation
// totals.
func SumAmounts(amounts []Amount) Amount {
	total := ZeroAmount
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// EncodeForSigning returns the canonical length-prefixed little-endian
// magnitude encoding of a: a uint32 little-endian byte count, followed
// by that many little-endian magnitude bytes. The length prefix is a
// deliberate protocol-version departure from an unprefixed LE
// encoding: without it, allocations like [257] and [1, 1] would both
// encode to the byte stream 0x01 0x01 and could be confused by a
// signer.
func (a Amount) EncodeForSigning() []byte {
	mag := a.bigInt().Bytes() // big-endian magnitude, no leading zero byte
	le := make([]byte, len(mag))
	for i, b := range mag {
		le[len(mag)-1-i] = b
	}
	prefix := make([]byte, 4)
	binary.LittleEndian.PutUint32(prefix, uint32(len(le)))
	return append(prefix, le...)
}

// MarshalText implements encoding.TextMarshaler for JSON interop.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.bigInt().String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON interop.
func (a *Amount) UnmarshalText(text []byte) error {
	v, ok := new(big.Int).SetString(string(text), 10)
	if !ok {
		return fmt.Errorf("chantypes: invalid amount %q", text)
	}
	if v.Sign() < 0 {
		return fmt.Errorf("chantypes: amount must be non-negative, got %s", v)
	}
	a.v = v
	return nil
}
