package codec

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"
)

// Uint128 represents a 128-bit unsigned integer, the width the host ledger
// uses for balances.
type Uint128 struct {
	Low  uint64
	High uint64
}

// NewUint128 builds a Uint128 from a 16-byte little-endian buffer.
func NewUint128(buf []byte) (Uint128, error) {
	if len(buf) != 16 {
		return Uint128{}, fmt.Errorf("invalid length for Uint128: %d", len(buf))
	}
	return Uint128{
		Low:  binary.LittleEndian.Uint64(buf[:8]),
		High: binary.LittleEndian.Uint64(buf[8:]),
	}, nil
}

// Uint128FromUint64 widens v to 128 bits.
func Uint128FromUint64(v uint64) Uint128 {
	return Uint128{Low: v}
}

// Uint128FromBig converts a non-negative big.Int that fits in 128 bits.
func Uint128FromBig(b *big.Int) (Uint128, error) {
	if b == nil || b.Sign() < 0 || b.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("value does not fit in Uint128: %v", b)
	}
	var out Uint128
	buf := b.Bytes() // big-endian, minimal
	for i := 0; i < len(buf); i++ {
		byteIndex := len(buf) - 1 - i // position from the little end
		if byteIndex < 8 {
			out.Low |= uint64(buf[i]) << (8 * byteIndex)
		} else {
			out.High |= uint64(buf[i]) << (8 * (byteIndex - 8))
		}
	}
	return out, nil
}

// Bytes converts the Uint128 value into a byte slice in little-endian order.
func (i Uint128) Bytes() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[:8], i.Low)
	binary.LittleEndian.PutUint64(buf[8:], i.High)
	return buf
}

// Big returns the value as a big.Int.
func (i Uint128) Big() *big.Int {
	out := new(big.Int).SetUint64(i.High)
	out.Lsh(out, 64)
	return out.Or(out, new(big.Int).SetUint64(i.Low))
}

// IsZero reports whether the value is zero.
func (i Uint128) IsZero() bool {
	return i.Low == 0 && i.High == 0
}

// Add returns i+o and whether the addition overflowed 128 bits.
func (i Uint128) Add(o Uint128) (Uint128, bool) {
	low, carry := bits.Add64(i.Low, o.Low, 0)
	high, carry := bits.Add64(i.High, o.High, carry)
	return Uint128{Low: low, High: high}, carry != 0
}

// String renders the value in decimal.
func (i Uint128) String() string {
	return i.Big().String()
}
