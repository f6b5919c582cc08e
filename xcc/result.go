package xcc

import (
	"bytes"
	"fmt"

	"github.com/nearbridge/xcc/codec"
)

// PromiseResultCount returns how many promise results are available in the
// current execution context.
func PromiseResultCount(rt Runtime) (uint32, error) {
	_, count, err := resultBuffer(rt)
	return count, err
}

// ReadPromiseResult decodes the result of the promise at index from the
// buffer the host populated for the current context. Entries before index
// are skipped without decoding their payload.
//
// Only meaningful inside a callback the host itself triggered; in the
// original scheduling transaction the buffer is empty and every index is out
// of bounds.
func ReadPromiseResult(rt Runtime, index uint32) (PromiseResult, error) {
	d, count, err := resultBuffer(rt)
	if err != nil {
		return PromiseResult{}, err
	}
	if index >= count {
		return PromiseResult{}, &BoundsError{Index: index, Length: count}
	}

	for i := uint32(0); i < index; i++ {
		if err := skipPromiseResult(d); err != nil {
			return PromiseResult{}, fmt.Errorf("%w: entry %d: %v", ErrMalformedResultBuffer, i, err)
		}
	}

	out, err := decodePromiseResult(d)
	if err != nil {
		return PromiseResult{}, fmt.Errorf("%w: entry %d: %v", ErrMalformedResultBuffer, index, err)
	}
	return out, nil
}

// DecodePromiseResults fully decodes a raw result buffer: u32 count followed
// by count encoded entries. Used by tooling and engine-side tests; contract
// code should prefer ReadPromiseResult, which skips rather than decodes.
func DecodePromiseResults(buf []byte) ([]PromiseResult, error) {
	d := codec.NewDecoder(bytes.NewReader(buf))
	count, err := d.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: missing result count: %v", ErrMalformedResultBuffer, err)
	}
	out := make([]PromiseResult, 0, count)
	for i := uint32(0); i < count; i++ {
		res, err := decodePromiseResult(d)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedResultBuffer, i, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func resultBuffer(rt Runtime) (*codec.Decoder, uint32, error) {
	ret, ok := rt.Call(PromiseResultPrecompile, nil)
	if !ok {
		return nil, 0, &SystemInterfaceError{Precompile: PromiseResultPrecompile, Payload: ret}
	}

	d := codec.NewDecoder(bytes.NewReader(ret))
	count, err := d.ReadU32()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: missing result count: %v", ErrMalformedResultBuffer, err)
	}
	return d, count, nil
}

// skipPromiseResult consumes one result entry without materializing its
// payload: the status byte, plus the length-prefixed output for Successful.
func skipPromiseResult(d *codec.Decoder) error {
	status, err := d.ReadU8()
	if err != nil {
		return err
	}
	switch PromiseResultStatus(status) {
	case NotReady, Failed:
		return nil
	case Successful:
		return d.SkipBytes()
	default:
		return fmt.Errorf("unknown result status: %d", status)
	}
}

func decodePromiseResult(d *codec.Decoder) (PromiseResult, error) {
	status, err := d.ReadU8()
	if err != nil {
		return PromiseResult{}, err
	}
	out := PromiseResult{Status: PromiseResultStatus(status)}
	switch out.Status {
	case NotReady, Failed:
		return out, nil
	case Successful:
		out.Output, err = d.ReadBytes()
		return out, err
	default:
		return PromiseResult{}, fmt.Errorf("unknown result status: %d", status)
	}
}
