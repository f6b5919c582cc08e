package xcc

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrBalanceOverflow means the attached balance plus the one-time
	// storage-stake top-up no longer fits in 128 bits.
	ErrBalanceOverflow = errors.New("attached balance overflows u128")

	// ErrMalformedResultBuffer means the promise-result precompile returned
	// bytes that do not decode as a result sequence.
	ErrMalformedResultBuffer = errors.New("malformed promise result buffer")
)

// BoundsError is returned when a promise result is requested at an index at
// or beyond the number of results available in the current context.
type BoundsError struct {
	Index  uint32
	Length uint32
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("promise result index %d out of bounds (%d results)", e.Index, e.Length)
}

// SystemInterfaceError is returned when a precompile call itself fails. The
// failure payload is carried verbatim; Error renders it unmodified so the
// host-side reason reaches the caller untouched.
type SystemInterfaceError struct {
	Precompile common.Address
	Payload    []byte
}

func (e *SystemInterfaceError) Error() string {
	if len(e.Payload) == 0 {
		return fmt.Sprintf("precompile %s call failed", e.Precompile)
	}
	return string(e.Payload)
}
